package quotes

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/renoquote/internal/pricing"
)

var renderLanguage = language.BritishEnglish

// RenderText formats a saved quote as plain text. Only selected work items
// are listed.
func RenderText(q Quote) string {
	p := message.NewPrinter(renderLanguage)
	b := q.Breakdown
	money := moneyFormatter(p, b.Currency)

	var sb strings.Builder
	line := func(label, value string) {
		p.Fprintf(&sb, "%-30s %s\n", label, value)
	}

	title := q.Title
	if title == "" {
		title = "Renovation quote"
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(title))) + "\n")
	line("Quote", q.ID)
	line("Created", q.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	line("Rate card", b.RateCardVersion)
	sb.WriteString("\n")

	in := q.Input
	line("Property", describeProperty(in))
	line("Area", p.Sprintf("%.1f sqm", in.AreaSqm))
	line("Rooms", p.Sprintf("%d bedrooms, %d bathrooms, %d kitchens", in.Rooms.Bedrooms, in.Rooms.Bathrooms, in.Rooms.Kitchens))
	sb.WriteString("\n")

	m := b.Multipliers
	line("Base cost", money(b.BaseCost))
	line("Multiplier", p.Sprintf("x%.4f (size %s %.2f, location %.2f, property %.2f, era %.2f, floor %.2f, complexity %.2f)",
		m.Composite, m.SizeBracket, m.Size, m.Location, m.Property, m.Era, m.Floor, m.Complexity))
	line("Multiplied base", money(b.MultipliedBase))
	for _, it := range b.Items {
		if it.Amount == 0 {
			continue
		}
		line("  "+it.Label, money(it.Amount))
	}
	line("Adjusted cost", money(b.AdjustedCost))
	line(fmt.Sprintf("Contingency (%s, %s)", b.ContingencyTier, percent(b.ContingencyRate)), money(b.Contingency))
	line(fmt.Sprintf("VAT (%s)", percent(b.VATRate)), money(b.VAT))
	line("Total", money(b.Total))
	line("Cost per sqm", money(b.CostPerSqm))
	line("Estimated duration", p.Sprintf("%d weeks", b.DurationWeeks))

	if q.Notes != "" {
		sb.WriteString("\nNotes:\n")
		sb.WriteString(q.Notes + "\n")
	}
	return sb.String()
}

func moneyFormatter(p *message.Printer, code string) func(float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return func(v float64) string {
			return strings.TrimSpace(p.Sprintf("%s %.2f", code, v))
		}
	}
	return func(v float64) string {
		return p.Sprint(currency.Symbol(unit.Amount(v)))
	}
}

func describeProperty(in pricing.Input) string {
	parts := []string{string(in.PropertyType), string(in.Location), string(in.Era)}
	if in.PropertyType.IsMultiFloorUnit() {
		parts = append(parts, string(in.FloorLevel)+" floor")
	}
	return strings.Join(parts, ", ")
}

func percent(rate float64) string {
	return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", rate*100), "0"), ".0") + "%"
}
