package util

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no parseable JSON in text")

// ExtractJSON pulls a JSON document out of free text and unmarshals it into v.
// Generation providers wrap their JSON in prose or markdown fences more often
// than not, so this tries the stripped fence body first, then the widest
// object/array span, then the raw text.
func ExtractJSON(text string, v interface{}) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoJSON
	}

	for _, candidate := range jsonCandidates(text) {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}
	return ErrNoJSON
}

func jsonCandidates(text string) []string {
	var out []string

	if body, ok := fencedBody(text); ok {
		out = append(out, body)
	}

	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := strings.LastIndexByte(text, '}'); end > start {
			out = append(out, text[start:end+1])
		}
	}
	if start := strings.IndexByte(text, '['); start >= 0 {
		if end := strings.LastIndexByte(text, ']'); end > start {
			out = append(out, text[start:end+1])
		}
	}

	return append(out, text)
}

// fencedBody returns the contents of the first ``` block, tolerating a
// language tag after the opening fence.
func fencedBody(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
