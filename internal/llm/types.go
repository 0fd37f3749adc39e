package llm

import "fmt"

// APIError is a non-200 response from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Sentiment labels used by structured output.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Cluster is one opinion group found by the model.
type Cluster struct {
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Share     float64  `json:"share"` // fraction of sampled responses, 0..1
	Examples  []string `json:"examples"`
}

// Clusters is the structured analysis of a sample.
type Clusters struct {
	Overall  string    `json:"overall"`
	Clusters []Cluster `json:"clusters"`
}

// ClusterSchema is the JSON schema sent as response_format for Structured.
var ClusterSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"overall", "clusters"},
	"properties": map[string]any{
		"overall": map[string]any{"type": "string"},
		"clusters": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name", "summary", "sentiment", "share", "examples"},
				"properties": map[string]any{
					"name":      map[string]any{"type": "string"},
					"summary":   map[string]any{"type": "string"},
					"sentiment": map[string]any{"type": "string", "enum": []string{SentimentPositive, SentimentNeutral, SentimentNegative}},
					"share":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"examples":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
	},
}

// Validate checks a decoded response against the constraints of
// ClusterSchema that JSON decoding does not enforce.
func (c *Clusters) Validate() error {
	for i, cl := range c.Clusters {
		switch cl.Sentiment {
		case SentimentPositive, SentimentNeutral, SentimentNegative:
		default:
			return fmt.Errorf("cluster %d: unknown sentiment %q", i, cl.Sentiment)
		}
		if cl.Share < 0 || cl.Share > 1 {
			return fmt.Errorf("cluster %d: share %v outside [0,1]", i, cl.Share)
		}
		if cl.Name == "" {
			return fmt.Errorf("cluster %d: missing name", i)
		}
	}
	return nil
}
