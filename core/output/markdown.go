package output

import (
	"fmt"
	"io"
	"strings"

	"catering-finance/core/determinism"
	"catering-finance/internal/errors"
)

// MarkdownFormatter renders a markdown report, e.g. for an event proposal
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	fin := report.Financials
	if fin == nil {
		return errors.Input("report has no financials")
	}

	var b strings.Builder
	title := "Event Financials"
	if fin.EventID != "" {
		title += ": " + fin.EventID
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	fmt.Fprintf(&b, "%s event, %d guests (%d adults, %d children)\n\n", fin.Category, fin.GuestCount, fin.Adults, fin.Children)

	b.WriteString("| | Amount |\n|---|---:|\n")
	row := func(label, value string) { fmt.Fprintf(&b, "| %s | %s |\n", label, value) }
	row("Subtotal", money(fin.Subtotal))
	row("Gratuity ("+percent(fin.GratuityPercent)+")", money(fin.Gratuity))
	row("Distance fee", money(fin.DistanceFee))
	row("**Total charged**", "**"+money(fin.TotalCharged)+"**")
	row("Food cost", money(fin.FoodCost))
	row("Supplies", money(fin.SuppliesCost))
	row("Transportation", money(fin.TransportationCost))
	row("Labor", money(fin.TotalLaborPaid))
	row("**Gross profit**", "**"+money(fin.GrossProfit)+"**")
	row("Margin", margin(fin))
	b.WriteString("\n")

	b.WriteString("### Labor\n\n")
	b.WriteString("| Slot | Role | Raw | Paid | To profit |\n|---|---|---:|---:|---:|\n")
	for _, e := range fin.Labor {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", e.SlotID, e.Role, money(e.RawPay), money(e.FinalPay), money(e.ExcessToProfit))
	}
	b.WriteString("\n")

	b.WriteString("### Distribution\n\n")
	b.WriteString("| Share | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Retained | %s |\n", money(fin.RetainedAmount))
	for _, owner := range determinism.SortedKeys(fin.OwnerDistributions) {
		fmt.Fprintf(&b, "| %s | %s |\n", owner, money(fin.OwnerDistributions[owner]))
	}

	if len(fin.MissingMenuItemIDs) > 0 {
		fmt.Fprintf(&b, "\nMissing from catalog: %s\n", strings.Join(fin.MissingMenuItemIDs, ", "))
	}

	if len(fin.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, warning := range fin.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	if report.Metadata.RulesHash != "" {
		fmt.Fprintf(&b, "\n<sub>rules %s</sub>\n", report.Metadata.RulesHash)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
