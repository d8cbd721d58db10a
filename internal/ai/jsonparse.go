package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON means the model output held no decodable JSON object.
var ErrNoJSON = errors.New("ai: no JSON object in model output")

// DecodeObject pulls one JSON object out of raw model output. The whole text
// is tried first; failing that, the first balanced {...} span. Only syntax is
// checked here, field types are the caller's business.
func DecodeObject(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)

	// A literal null decodes into a nil map without error; it is not an object.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return json.RawMessage(text), nil
	}

	span := firstObject(text)
	if span == "" {
		return nil, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, errors.Join(ErrNoJSON, err)
	}
	return json.RawMessage(span), nil
}

// firstObject returns the first '{' through its matching '}', ignoring
// braces inside string literals. Empty if nothing balances.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
