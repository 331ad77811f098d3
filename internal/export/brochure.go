// Package export renders listing brochures to PDF and stores them.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/htmltext"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

//go:embed templates/brochure.html
var templateFS embed.FS

var brochureTemplate = template.Must(template.ParseFS(templateFS, "templates/brochure.html"))

// maxImages caps the photos printed on a brochure.
const maxImages = 4

// Fact is one labelled row of the brochure's fact table.
type Fact struct {
	Label string
	Value string
}

// Brochure is the data the brochure template renders.
type Brochure struct {
	Title      string
	Location   string
	Price      string
	Facts      []Fact
	Images     []string
	Paragraphs []string
	Features   []string
	Agent      *types.Agent
}

var listingTypeLabels = map[string]string{
	"apartment":  "Daire",
	"villa":      "Villa",
	"detached":   "Müstakil Ev",
	"land":       "Arsa",
	"commercial": "İşyeri",
	"office":     "Ofis",
}

// NewBrochure collects what the brochure shows about listing.
func NewBrochure(listing *types.Listing, agent *types.Agent) (Brochure, error) {
	b := Brochure{
		Title:    listing.Title,
		Location: strings.Join(nonEmpty(listing.District, listing.City), ", "),
		Features: listing.Features,
		Agent:    agent,
	}
	if listing.Price > 0 {
		b.Price = Money(listing.Price, listing.Currency)
	}

	addFact := func(label, value string) {
		if value != "" {
			b.Facts = append(b.Facts, Fact{Label: label, Value: value})
		}
	}
	typeLabel := listingTypeLabels[listing.Type]
	if typeLabel == "" {
		typeLabel = listing.Type
	}
	addFact("Tür", typeLabel)
	addFact("Oda", listing.Rooms)
	if listing.Sqm > 0 {
		addFact("Alan", strconv.Itoa(listing.Sqm)+" m²")
	}
	if listing.Age != nil {
		addFact("Bina Yaşı", strconv.Itoa(*listing.Age))
	}
	if listing.Floor != nil {
		addFact("Kat", strconv.Itoa(*listing.Floor))
	}
	addFact("Adres", listing.Address)

	if len(listing.Images) > maxImages {
		b.Images = listing.Images[:maxImages]
	} else {
		b.Images = listing.Images
	}

	text, err := htmltext.PlainText(listing.Description)
	if err != nil {
		return Brochure{}, fmt.Errorf("failed to read listing description: %w", err)
	}
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			b.Paragraphs = append(b.Paragraphs, line)
		}
	}
	return b, nil
}

// RenderHTML renders the brochure page.
func RenderHTML(listing *types.Listing, agent *types.Agent) ([]byte, error) {
	b, err := NewBrochure(listing, agent)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := brochureTemplate.Execute(&buf, b); err != nil {
		return nil, fmt.Errorf("failed to render brochure: %w", err)
	}
	return buf.Bytes(), nil
}

// Money formats an amount with dot thousands separators and a currency label.
func Money(amount int64, currency string) string {
	label := currency
	if label == "" || label == "TRY" {
		label = "TL"
	}
	return coerce.FormatThousands(amount, ".") + " " + label
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
