// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/finance"
	"github.com/canpog/realestate-app-sub000/internal/htmltext"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, htmltext.Truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if utf8.RuneCountInString(line) > boxWidth-4 {
			line = htmltext.Truncate(line, boxWidth-4)
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMatches outputs the ranked matches and summary of a matching run.
// titles maps listing ids to titles; missing entries show the id.
func (p *Printer) PrintMatches(resp *types.MatchResponse, titles map[string]string) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	if len(resp.Matches) == 0 {
		sb.WriteString("No matches.\n")
	}
	for i, m := range resp.Matches {
		name := titles[m.ListingID]
		if name == "" {
			name = m.ListingID
		}
		sb.WriteString(fmt.Sprintf("%d. [%3d] %s\n", i+1, m.Score, name))
		if m.Reason != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", m.Reason))
		}
		writeList(&sb, "   + ", m.Pros)
		writeList(&sb, "   - ", m.Cons)
	}
	if resp.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(resp.Summary)
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("MATCHES (%d)", len(resp.Matches)), sb.String())
}

// PrintValuation outputs a normalized valuation.
func (p *Printer) PrintValuation(result *types.ValuationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Estimate:     %s\n", money(result.EstimatedMarketPrice)))
	sb.WriteString(fmt.Sprintf("Range:        %s - %s\n", money(result.PriceRange.Min), money(result.PriceRange.Max)))
	sb.WriteString(fmt.Sprintf("Price score:  %s / 10\n", coerce.FormatNumber(result.PriceScore)))
	if result.RentalYield != nil {
		sb.WriteString(fmt.Sprintf("Rental yield: %%%s\n", coerce.FormatNumber(*result.RentalYield)))
	}
	sb.WriteString("\nMarket comparison:\n")
	sb.WriteString(result.MarketComparison)
	sb.WriteString("\n\nRecommendations:\n")
	sb.WriteString(result.Recommendations)
	sb.WriteString("\n")

	p.printBox("VALUATION", sb.String())
}

// PrintBreakdown outputs a commission breakdown.
func (p *Printer) PrintBreakdown(b *finance.Breakdown) {
	if b == nil {
		return
	}

	rows := []struct {
		label string
		value int64
	}{
		{"Sale price", b.SalePrice},
		{"Commission", b.Commission},
		{"Commission VAT", b.CommissionVAT},
		{"Commission total", b.CommissionTotal},
		{"Title deed fee", b.TitleDeedFee},
		{"  buyer share", b.BuyerDeedShare},
		{"  seller share", b.SellerDeedShare},
		{"Agent share", b.AgentShare},
		{"Office share", b.OfficeShare},
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-18s %%%s\n", "Commission rate", coerce.FormatNumber(b.CommissionRate*100)))
	sb.WriteString(fmt.Sprintf("%-18s %%%s\n", "Agent split", coerce.FormatNumber(b.AgentSplit*100)))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-18s %20s\n", r.label, money(r.value)))
	}

	p.printBox("COMMISSION", sb.String())
}

func writeList(sb *strings.Builder, prefix string, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(prefix + items[i] + "\n")
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("%s... and %d more\n", strings.Repeat(" ", len(prefix)), len(items)-maxItemsToShow))
	}
}

func money(v int64) string {
	return coerce.FormatThousands(v, ".") + " TL"
}
