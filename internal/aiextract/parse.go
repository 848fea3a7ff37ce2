package aiextract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// CleanJSON strips markdown fences and returns the first balanced {...}
// object in text, or "" if there is none.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(strings.TrimPrefix(text, "json"), "JSON")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return firstObject(text)
}

// firstObject scans for the first '{' and returns through its matching
// '}', ignoring braces inside JSON strings.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
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

// ParseResponse turns raw model text into a validated extraction.
func ParseResponse(text string) (*model.AIExtraction, error) {
	obj := CleanJSON(text)
	if obj == "" {
		return nil, eris.Wrap(ErrParse, "no JSON object in response")
	}

	var raw any
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, eris.Wrap(ErrParse, err.Error())
	}

	out := validate.AIResponse(raw)
	if out == nil {
		return nil, eris.Wrap(ErrParse, "response is not a JSON object")
	}
	return out, nil
}
