package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Extractor turns a stage's raw response into a structured payload. A nil result
// means nothing usable was found; extractors never fail outward.
type Extractor interface {
	Extract(text string) any
}

type Mode string

const (
	ModeJSON     Mode = "json"
	ModeSections Mode = "sections"
)

const (
	jsonFence = "```json"
	fence     = "```"
)

type JSONExtractor struct {
}

func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

func (e *JSONExtractor) Extract(text string) any {
	return ExtractJSON(text)
}

// ExtractJSON looks for a ```json fence, then any fence, then falls back to the whole
// text, and decodes the candidate as exactly one JSON object or array.
func ExtractJSON(text string) any {
	var payload any
	if err := json.Unmarshal([]byte(jsonCandidate(text)), &payload); err != nil {
		return nil
	}

	switch payload.(type) {
	case map[string]any, []any:
		return payload
	default:
		return nil
	}
}

func jsonCandidate(text string) string {
	if start := strings.Index(text, jsonFence); start >= 0 {
		return strings.TrimSpace(fenceBody(text, start+len(jsonFence)))
	}

	if start := strings.Index(text, fence); start >= 0 {
		body := fenceBody(text, start+len(fence))
		return strings.TrimSpace(dropLanguageTag(body))
	}

	return strings.TrimSpace(text)
}

// fenceBody returns the text from start up to the next fence, or to the end when the
// fence is never closed.
func fenceBody(text string, start int) string {
	end := strings.Index(text[start:], fence)
	if end < 0 {
		return text[start:]
	}
	return text[start : start+end]
}

var languageTag = regexp.MustCompile(`^[A-Za-z][\w+-]*\n`)

func dropLanguageTag(body string) string {
	if loc := languageTag.FindStringIndex(body); loc != nil {
		return body[loc[1]:]
	}
	return body
}
