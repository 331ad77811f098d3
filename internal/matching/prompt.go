package matching

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/htmltext"
	"github.com/canpog/realestate-app-sub000/internal/prompts"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

const (
	promptFile          = "matching.json"
	descriptionMaxRunes = 160
	notPresent          = "-"
)

// BuildPrompt renders the system prompt and user message for a matching run.
// extraNotes are appended after the client's own notes, one per line.
func BuildPrompt(client *types.Client, candidates []types.Listing, extraNotes ...string) (system, user string) {
	system = prompts.MustGet(promptFile, "system")
	user = prompts.Format(prompts.MustGet(promptFile, "user"), map[string]string{
		"Client":   describeClient(client),
		"Notes":    clientNotes(client, extraNotes),
		"Count":    strconv.Itoa(len(candidates)),
		"Listings": listingTable(candidates),
		"Limit":    strconv.Itoa(MaxMatches),
	})
	return system, user
}

func describeClient(c *types.Client) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", c.Name)
	fmt.Fprintf(&sb, "Preferred type: %s\n", orDash(c.PreferredType))
	fmt.Fprintf(&sb, "Preferred cities: %s\n", orDash(strings.Join(c.PreferredCities, ", ")))
	if c.MinRooms > 0 {
		fmt.Fprintf(&sb, "Minimum rooms: %d\n", c.MinRooms)
	}
	sb.WriteString("Budget: " + budgetText(c))
	return sb.String()
}

func budgetText(c *types.Client) string {
	var lo, hi string
	if c.BudgetMin != nil && *c.BudgetMin > 0 {
		lo = money(*c.BudgetMin)
	}
	if c.HasBudget() {
		hi = money(*c.BudgetMax)
	}
	switch {
	case lo != "" && hi != "":
		return lo + " - " + hi
	case hi != "":
		return "up to " + hi
	case lo != "":
		return "from " + lo
	default:
		return "not stated"
	}
}

func clientNotes(c *types.Client, extra []string) string {
	lines := make([]string, 0, len(extra)+1)
	if text := strings.TrimSpace(c.Notes); text != "" {
		lines = append(lines, text)
	}
	for _, note := range extra {
		if text := strings.TrimSpace(note); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return notPresent
	}
	return strings.Join(lines, "\n")
}

func listingTable(listings []types.Listing) string {
	rows := make([]string, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		location := l.City
		if l.District != "" {
			location += "/" + l.District
		}
		summary := htmltext.Summary(l.Description, descriptionMaxRunes)
		rows = append(rows, strings.Join([]string{
			l.ID.String(),
			cell(l.Title),
			orDash(l.Type),
			cell(location),
			money(l.Price),
			orDash(l.Rooms),
			intCell(l.Sqm),
			intPtrCell(l.Age),
			intPtrCell(l.Floor),
			orDash(cell(strings.Join(l.Features, ", "))),
			orDash(cell(summary)),
		}, " | "))
	}
	return strings.Join(rows, "\n")
}

func money(v int64) string {
	return coerce.FormatThousands(v, ".") + " TL"
}

// cell keeps a value on one table row.
func cell(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "|", "/")), " ")
}

func intCell(v int) string {
	if v <= 0 {
		return notPresent
	}
	return strconv.Itoa(v)
}

func intPtrCell(v *int) string {
	if v == nil {
		return notPresent
	}
	return strconv.Itoa(*v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return notPresent
	}
	return s
}
