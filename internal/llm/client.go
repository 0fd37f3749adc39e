package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/koe/internal/logging"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
	Retry      RetryPolicy
	Logger     *logging.Logger
}

// Summarize asks for a markdown report over formatted response lines.
// grounding, when not empty, is prepended as precomputed statistics.
func (c *Client) Summarize(ctx context.Context, lines []string, hasAttributes bool, grounding string) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("llm: no responses to summarize")
	}
	return c.Chat(ctx, SummaryPrompt(hasAttributes), userPrompt(lines, grounding))
}

// Structured asks for opinion clusters with sentiment, constrained by
// ClusterSchema.
func (c *Client) Structured(ctx context.Context, lines []string, hasAttributes bool) (*Clusters, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("llm: no responses to cluster")
	}
	zero := 0.0
	req := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: ClusterPrompt(hasAttributes)},
			{Role: "user", Content: userPrompt(lines, "")},
		},
		Temperature: &zero,
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: "survey_clusters", Strict: true, Schema: ClusterSchema},
		},
	}
	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var out Clusters
	if err := json.Unmarshal([]byte(stripFence(content)), &out); err != nil {
		return nil, fmt.Errorf("llm returned invalid JSON: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("llm response violates schema: %w", err)
	}
	return &out, nil
}

// Chat sends one system and one user message and returns the reply text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, chatRequest{
		Messages: []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
	})
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	req.Model = c.Model

	var payload *chatResponse
	err := c.Retry.Do(ctx, func(attempt int) error {
		var err error
		payload, err = c.send(ctx, req)
		if err != nil {
			c.Logger.Warn("llm attempt %d failed: %v", attempt, err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("llm: empty response")
	}
	c.Logger.Debug("llm usage - prompt_tokens: %d, completion_tokens: %d, total_tokens: %d",
		payload.Usage.PromptTokens, payload.Usage.CompletionTokens, payload.Usage.TotalTokens)
	return strings.TrimSpace(payload.Choices[0].Message.Content), nil
}

func (c *Client) send(ctx context.Context, body chatRequest) (*chatResponse, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	msg := http.StatusText(resp.StatusCode)
	var payload chatResponse
	if json.Unmarshal(body, &payload) == nil && payload.Error != nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Body: string(body)}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 120 * time.Second}
}

// stripFence removes a ```json fence some models wrap around JSON output.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
