package coerce

import (
	"encoding/json"
	"strconv"
	"strings"
)

// String coerces v to text. Strings pass through, objects and arrays are
// serialized to compact JSON, numbers and booleans are formatted, nil is "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		b, err := marshalCompact(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// StringSlice coerces v to a list of strings. Arrays keep their non-empty
// elements, a lone non-empty string becomes a one-element list, anything else
// becomes an empty list. The result is never nil.
func StringSlice(v any) []string {
	out := make([]string, 0)
	switch s := v.(type) {
	case []any:
		for _, item := range s {
			text := strings.TrimSpace(String(item))
			if text != "" {
				out = append(out, text)
			}
		}
	case []string:
		for _, item := range s {
			if text := strings.TrimSpace(item); text != "" {
				out = append(out, text)
			}
		}
	case string:
		if text := strings.TrimSpace(s); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Truthy reports whether v counts as a usable value: non-nil, a non-empty
// string, a non-zero number, true, or any object or array.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case *Object:
		return t != nil
	default:
		return true
	}
}
