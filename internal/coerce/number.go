package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigits     = regexp.MustCompile(`\D`)
	decimalToken  = regexp.MustCompile(`-?\d[\d.,]*`)
	trailingSeps  = ",."
	maxSafeDigits = 18
)

// Int coerces v to an integer.
//
// Numbers pass through (rounded to the nearest integer). Strings have every
// non-digit character removed and the remainder parsed, so "1.250.000 TL"
// becomes 1250000. Anything else, or a string without digits, yields fallback.
func Int(v any, fallback int64) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(math.Round(f))
		}
		return fallback
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return int64(math.Round(n))
	case float32:
		return Int(float64(n), fallback)
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case string:
		digits := nonDigits.ReplaceAllString(n, "")
		if digits == "" {
			return fallback
		}
		if len(digits) > maxSafeDigits {
			digits = digits[:maxSafeDigits]
		}
		i, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return fallback
		}
		return i
	default:
		return fallback
	}
}

// Float coerces v to a float64 using the same string rule as Int.
func Float(v any, fallback float64) float64 {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return fallback
		}
		return f
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return float64(Int(n, int64(fallback)))
	default:
		return fallback
	}
}

// Decimal coerces v to a float64, reading strings as the first decimal number
// they contain. Both "." and "," are accepted as the decimal separator; a
// separator that occurs more than once is treated as a thousands separator.
// "%5,2" yields 5.2, "7.5/10" yields 7.5 and "1.250.000" yields 1250000.
func Decimal(v any, fallback float64) float64 {
	s, ok := v.(string)
	if !ok {
		return Float(v, fallback)
	}

	token := strings.TrimRight(decimalToken.FindString(s), trailingSeps)
	if token == "" || token == "-" {
		return fallback
	}

	last := strings.LastIndexAny(token, trailingSeps)
	if last < 0 {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return fallback
		}
		return f
	}

	sep := string(token[last])
	stripSeps := strings.NewReplacer(".", "", ",", "")
	if strings.Count(token, sep) > 1 {
		f, err := strconv.ParseFloat(stripSeps.Replace(token), 64)
		if err != nil {
			return fallback
		}
		return f
	}

	normalized := stripSeps.Replace(token[:last]) + "." + token[last+1:]
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Clamp bounds v to [lo, hi].
func Clamp[T int | int64 | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsNumber reports whether v holds a JSON or Go numeric value.
func IsNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}
