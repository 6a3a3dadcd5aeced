package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value for rules a JSON schema cannot
// express. Returns nil if valid.
type SchemaValidator[T any] func(T) error

// ExtractJSON pulls the first JSON object out of raw model output, checks it
// against schema when one is given, decodes it into T and finally runs
// validator. Markdown fences and prose around the object are ignored.
func ExtractJSON[T any](raw string, schema *Schema, validator SchemaValidator[T]) (T, error) {
	var zero T

	doc := firstObject(raw)
	if doc == "" {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	if schema != nil {
		if err := schema.Validate([]byte(doc)); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}

	var result T
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// firstObject copies the first balanced {...} block of s in one pass. Outside
// string values it drops // and /* */ comments and writes numbers such as
// ".5" or "-.5" as "0.5" and "-0.5", both of which small models emit.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) - start)
	depth := 0
	inString, escaped := false, false
	var prev byte

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				prev = c
			}
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return ""
			}
			i += end + 3
			continue
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(prev):
			b.WriteByte('0')
		}

		b.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
		if depth == 0 {
			return b.String()
		}
	}
	return ""
}

// startsNumber reports whether a value may begin right after c.
func startsNumber(c byte) bool {
	switch c {
	case ':', ',', '[', '-':
		return true
	default:
		return false
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
