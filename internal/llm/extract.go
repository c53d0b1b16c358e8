package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNoJSON means no balanced JSON object was found in the text
var ErrNoJSON = errors.New("no JSON object found in model response")

// ExtractJSONObject strips markdown fences and returns the first balanced
// top-level {...} in text. Braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	obj, ok := firstObject(stripFences(text))
	if !ok {
		return "", ErrNoJSON
	}
	return obj, nil
}

// DecodeObject decodes the first balanced object in text that parses into v,
// which must be a non-nil pointer. Each candidate decodes into a fresh value
// and v is only written on success.
func DecodeObject(text string, v any) error {
	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decoding model JSON: need a non-nil pointer, got %T", v)
	}

	var lastErr error
	for rest := stripFences(text); ; {
		obj, err := ExtractJSONObject(rest)
		if err != nil {
			break
		}
		fresh := reflect.New(target.Elem().Type())
		lastErr = json.Unmarshal([]byte(obj), fresh.Interface())
		if lastErr == nil {
			target.Elem().Set(fresh.Elem())
			return nil
		}
		rest = rest[strings.Index(rest, obj)+len(obj):]
	}

	if lastErr != nil {
		return fmt.Errorf("parsing model JSON: %w", lastErr)
	}
	return ErrNoJSON
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	return strings.ReplaceAll(text, "```", "")
}

// firstObject returns the first balanced object in text
func firstObject(text string) (string, bool) {
	for from := 0; from < len(text); {
		idx := strings.IndexByte(text[from:], '{')
		if idx < 0 {
			break
		}
		start := from + idx
		if end, ok := matchBrace(text, start); ok {
			return text[start:end], true
		}
		from = start + 1
	}
	return "", false
}

// matchBrace returns the index after the brace closing text[start]
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i + 1, true
			}
		}
	}
	return 0, false
}
