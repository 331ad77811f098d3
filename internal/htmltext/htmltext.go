// Package htmltext flattens the rich-text listing descriptions produced by the
// editor into plain text suitable for prompts and brochures.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote, section, article"

// PlainText converts an HTML fragment to text. Block elements and <br> become
// line breaks, list items are prefixed with "- ", runs of whitespace inside a
// line collapse to a single space and blank lines are dropped.
func PlainText(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &ParseError{Cause: err}
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find(blockSelector).AppendHtml("\n")

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

// Summary returns PlainText truncated to maxRunes. Input that fails to parse
// is returned truncated as is.
func Summary(html string, maxRunes int) string {
	text, err := PlainText(html)
	if err != nil {
		text = html
	}
	return Truncate(text, maxRunes)
}

// Truncate shortens s to at most maxRunes runes, ending with "…" when cut.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:maxRunes-1])) + "…"
}

// ParseError is returned when the HTML cannot be parsed.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return "failed to parse HTML: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
