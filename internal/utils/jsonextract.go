package utils

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when no balanced JSON object can be located in
// the input text.
var ErrNoJSONObject = errors.New("no JSON object found in text")

// ExtractJSONObject returns the first balanced JSON object embedded in free
// text. Model responses often wrap the object in prose or markdown code
// fences; both are tolerated. Braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	cleaned := stripCodeFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
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
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSONObject
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.ReplaceAll(trimmed, "```json", "```")
	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return trimmed
}
