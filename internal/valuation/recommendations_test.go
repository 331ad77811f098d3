package valuation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendations_Missing(t *testing.T) {
	assert.Equal(t, DefaultRecommendation, Normalize(mustParse(t, `{"price": 1}`)).Recommendations)
	assert.Equal(t, DefaultRecommendation, Normalize(mustParse(t, `{"recommendations": null}`)).Recommendations)
	assert.Equal(t, DefaultRecommendation, Normalize(mustParse(t, `{"recommendations": ""}`)).Recommendations)
}

func TestRecommendations_StringVerbatim(t *testing.T) {
	inputs := []string{
		"Fiyatı 4.500.000 TL'ye çekin.",
		"  boşluklu  metin  ",
		"Satır 1\nSatır 2",
		`{"not": "json"}`,
	}
	for _, in := range inputs {
		obj := mustParse(t, `{}`)
		obj.Set("recommendations", in)
		assert.Equal(t, in, Normalize(obj).Recommendations)
	}
}

func TestRecommendations_OnlyNotes(t *testing.T) {
	got := Normalize(mustParse(t, `{"recommendations": {"notes": "Ev bakımlı, fotoğrafları yenileyin."}}`)).Recommendations
	assert.Equal(t, "Ev bakımlı, fotoğrafları yenileyin.", got)
}

func TestRecommendations_MixedKeysOrder(t *testing.T) {
	raw := `{"recommendations": {
		"parking_spots": 2,
		"marketing_strategy": "Sosyal medya ve portallar",
		"notes": "Genel durum iyi.",
		"suggested_list_price": 4750000,
		"extra": {"ignored": true},
		"open_house": "Cumartesi",
		"tags": ["a", "b"],
		"empty_value": null,
		"quick_sale_price": "4.300.000",
		"improvement_suggestions": ["Boya", "Mutfak yenileme"]
	}}`

	got := Normalize(mustParse(t, raw)).Recommendations
	want := strings.Join([]string{
		"Genel durum iyi.",
		"Önerilen Liste Fiyatı: 4.750.000 TL",
		"Hızlı Satış Fiyatı: 4.300.000 TL",
		"Pazarlama Stratejisi: Sosyal medya ve portallar",
		"İyileştirme Önerileri: Boya, Mutfak yenileme",
		"Parking Spots: 2",
		"Open House: Cumartesi",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRecommendations_UnknownScalarKeysOnly(t *testing.T) {
	got := Normalize(mustParse(t, `{"recommendations": {"budget_buffer": 250000, "view_type": "deniz", "furnished": true}}`)).Recommendations
	assert.Equal(t, "Budget Buffer: 250.000\nView Type: deniz\nFurnished: true", got)
}

func TestRecommendations_NothingEmittedFallsBackToJSON(t *testing.T) {
	got := Normalize(mustParse(t, `{"recommendations": {"details": {"a": 1}, "list": [1, 2], "notes": ""}}`)).Recommendations
	assert.Equal(t, `{"details":{"a":1},"list":[1,2],"notes":""}`, got)
}

func TestRecommendations_AlternateShapes(t *testing.T) {
	assert.Equal(t, "Boya\nKombi değişimi", Normalize(mustParse(t, `{"suggestions": ["Boya", "Kombi değişimi"]}`)).Recommendations)
	assert.Equal(t, "42", AssembleRecommendations(json.Number("42")))
	assert.Equal(t, DefaultRecommendation, AssembleRecommendations([]any{}))
}

func TestFormatValue(t *testing.T) {
	obj := mustParse(t, `{"a": 1250000, "b": 12.5}`)
	a, _ := obj.Get("a")
	b, _ := obj.Get("b")

	assert.Equal(t, "1.250.000 TL", formatValue(a, true))
	assert.Equal(t, "1.250.000", formatValue(a, false))
	assert.Equal(t, "12,5", formatValue(b, false))
	assert.Equal(t, "yaklaşık 2 milyon", formatValue("yaklaşık 2 milyon", true))
	assert.Equal(t, "3.100.000 TL", formatValue("3100000", true))
	assert.Equal(t, "450.000 TL", formatValue("450.000", true))
	assert.Equal(t, "4.500 TL", formatValue("4.500", true))
	assert.Equal(t, "1.251 TL", formatValue("1.250,50", true))
	assert.Equal(t, "1.250 TL", formatValue("1.250,4", true))
	assert.Equal(t, "4.500.000 TL", formatValue("4,500,000", true))
}

func TestRecommendations_ThousandsGroupedPrice(t *testing.T) {
	got := Normalize(mustParse(t, `{"recommendations": {"suggested_list_price": "4.500", "quick_sale_price": "450.000"}}`)).Recommendations
	assert.Equal(t, "Önerilen Liste Fiyatı: 4.500 TL\nHızlı Satış Fiyatı: 450.000 TL", got)
}

func TestRecommendations_CamelCaseKeys(t *testing.T) {
	got := Normalize(mustParse(t, `{"recommendations": {"parkingSpots": 2}}`)).Recommendations
	assert.Equal(t, "Parking Spots: 2", got)
}
