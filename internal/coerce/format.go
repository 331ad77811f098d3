package coerce

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatThousands renders n with sep between groups of three digits.
// FormatThousands(1250000, ".") returns "1.250.000".
func FormatThousands(n int64, sep string) string {
	neg := n < 0
	digits := strconv.FormatInt(n, 10)
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatNumber renders a numeric value in Turkish notation: "." between
// thousands and "," before any fractional part. Non-numeric values fall back
// to String.
func FormatNumber(v any) string {
	if !IsNumber(v) {
		return String(v)
	}
	f := Float(v, 0)
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	wholeText, fracText, _ := strings.Cut(strconv.FormatFloat(f, 'f', 2, 64), ".")
	whole, err := strconv.ParseInt(wholeText, 10, 64)
	if err != nil {
		return String(v)
	}
	out := sign + FormatThousands(whole, ".")
	if fracText = strings.TrimRight(fracText, "0"); fracText != "" {
		out += "," + fracText
	}
	return out
}

// Titleize turns a snake_case, kebab-case or camelCase key into a spaced,
// title-cased label: "parking_spots" and "parkingSpots" both become
// "Parking Spots".
func Titleize(key string) string {
	var sb strings.Builder
	prev := rune(0)
	for _, r := range key {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
		prev = r
	}
	spaced := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(sb.String())), " ")
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}
