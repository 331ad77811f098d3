package valuation

import (
	"fmt"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/htmltext"
	"github.com/canpog/realestate-app-sub000/internal/prompts"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

const (
	promptFile          = "valuation.json"
	descriptionMaxRunes = 600
)

// BuildPrompt renders the system prompt and user message for a valuation.
// listing may be nil for a manual valuation.
func BuildPrompt(params types.ValuationParams, listing *types.Listing) (system, user string) {
	description := "-"
	if listing != nil {
		if text := htmltext.Summary(listing.Description, descriptionMaxRunes); text != "" {
			description = text
		}
	}

	system = prompts.MustGet(promptFile, "system")
	user = prompts.Format(prompts.MustGet(promptFile, "user"), map[string]string{
		"Property":    describeProperty(params, listing),
		"Description": description,
	})
	return system, user
}

func describeProperty(p types.ValuationParams, listing *types.Listing) string {
	lines := make([]string, 0, 10)
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}

	location := p.City
	if p.District != "" {
		location += " / " + p.District
	}
	if listing != nil {
		add("Title", listing.Title)
	}
	add("Location", location)
	add("Type", p.Type)
	add("Rooms", p.Rooms)
	add("Area", fmt.Sprintf("%d m²", p.Sqm))
	if p.Age != nil {
		add("Building age", fmt.Sprintf("%d", *p.Age))
	}
	if p.Floor != nil {
		add("Floor", fmt.Sprintf("%d", *p.Floor))
	}
	add("Features", strings.Join(p.Features, ", "))
	if listing != nil && listing.Price > 0 {
		add("Asking price", coerce.FormatThousands(listing.Price, ".")+" TL")
	}
	return strings.Join(lines, "\n")
}
