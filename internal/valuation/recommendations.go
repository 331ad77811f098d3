package valuation

import (
	"math"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
)

const (
	notesKey       = "notes"
	currencySuffix = " TL"
	listSeparator  = ", "
)

// Label maps a recommendation key to its display text. Money values get
// thousands separators and the currency suffix.
type Label struct {
	Key   string
	Text  string
	Money bool
}

// RecommendationLabels are emitted in this order after the notes.
var RecommendationLabels = []Label{
	{Key: "suggested_list_price", Text: "Önerilen Liste Fiyatı", Money: true},
	{Key: "minimum_acceptable_price", Text: "Minimum Kabul Edilebilir Fiyat", Money: true},
	{Key: "quick_sale_price", Text: "Hızlı Satış Fiyatı", Money: true},
	{Key: "negotiation_margin", Text: "Pazarlık Payı"},
	{Key: "expected_sale_duration", Text: "Tahmini Satış Süresi"},
	{Key: "target_buyer_profile", Text: "Hedef Alıcı Profili"},
	{Key: "marketing_strategy", Text: "Pazarlama Stratejisi"},
	{Key: "improvement_suggestions", Text: "İyileştirme Önerileri"},
}

var labeledKeys = func() map[string]bool {
	keys := map[string]bool{notesKey: true}
	for _, l := range RecommendationLabels {
		keys[l.Key] = true
	}
	return keys
}()

// AssembleRecommendations renders the recommendations value as text.
//
// Strings are returned verbatim. For objects the notes come first, then every
// labeled key in RecommendationLabels order, then the remaining scalar keys
// in their original order with a titleized key as label; nested objects,
// arrays and nulls among the remaining keys are skipped. Lines are joined
// with "\n". An object that yields no line is returned as compact JSON.
func AssembleRecommendations(v any) string {
	switch t := v.(type) {
	case nil:
		return DefaultRecommendation
	case string:
		return t
	case *coerce.Object:
		return assembleObject(t)
	case []any:
		lines := coerce.StringSlice(t)
		if len(lines) == 0 {
			return DefaultRecommendation
		}
		return strings.Join(lines, "\n")
	default:
		return coerce.String(t)
	}
}

func assembleObject(obj *coerce.Object) string {
	lines := make([]string, 0, obj.Len())

	if notes, ok := obj.Get(notesKey); ok && coerce.Truthy(notes) {
		if list, isList := notes.([]any); isList {
			lines = append(lines, coerce.StringSlice(list)...)
		} else {
			lines = append(lines, coerce.String(notes))
		}
	}

	for _, label := range RecommendationLabels {
		v, ok := obj.Get(label.Key)
		if !ok || !present(v) {
			continue
		}
		lines = append(lines, label.Text+": "+formatValue(v, label.Money))
	}

	for _, key := range obj.Keys() {
		if labeledKeys[key] {
			continue
		}
		v, _ := obj.Get(key)
		switch v.(type) {
		case nil, *coerce.Object, []any:
			continue
		}
		lines = append(lines, coerce.Titleize(key)+": "+formatValue(v, false))
	}

	if len(lines) == 0 {
		return coerce.String(obj)
	}
	return strings.Join(lines, "\n")
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(coerce.StringSlice(t)) > 0
	default:
		return true
	}
}

func formatValue(v any, money bool) string {
	switch t := v.(type) {
	case []any:
		return strings.Join(coerce.StringSlice(t), listSeparator)
	case string:
		if money && isAmount(t) {
			return coerce.FormatThousands(amount(t), ".") + currencySuffix
		}
		return t
	}
	if coerce.IsNumber(v) {
		text := coerce.FormatNumber(v)
		if money {
			text += currencySuffix
		}
		return text
	}
	return coerce.String(v)
}

// amount reads a bare amount string. Separators are thousands groups unless
// the last one is followed by one or two digits, which are then kuruş:
// "450.000" is 450000, "1.250,50" rounds to 1251.
func amount(s string) int64 {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, ".,")
	if i < 0 || len(s)-i-1 > 2 || len(s)-i-1 == 0 {
		return coerce.Int(s, 0)
	}
	whole := coerce.Int(s[:i], 0)
	frac := s[i+1:]
	if coerce.Int(frac, 0)*2 >= int64(math.Pow10(len(frac))) {
		whole++
	}
	return whole
}

// isAmount reports whether s is a bare amount such as "4500000" or
// "4.500.000", so it can be reformatted without losing any words.
func isAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
