package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s　]+`)
	spacePattern = regexp.MustCompile(`[\s　]+`)
)

// Clean strips HTML markup and URLs from free text exported from web forms
// and collapses runs of whitespace, including the ideographic space.
func Clean(text string) string {
	if strings.ContainsRune(text, '<') {
		text = stripMarkup(text)
	}
	text = urlPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func stripMarkup(text string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed markup: keep what was recovered.
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawTextTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawTextTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

func isRawTextTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
