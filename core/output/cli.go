package output

import (
	"io"
	"strconv"
	"strings"

	"catering-finance/core/determinism"
	"catering-finance/core/types"
	"catering-finance/core/ui"
	"catering-finance/internal/errors"
)

// CLIFormatter renders tables for a terminal
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

func (f *CLIFormatter) Format() Format { return FormatCLI }

func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	fin := report.Financials
	if fin == nil {
		return errors.Input("report has no financials")
	}
	out := ui.NewWriter(w, f.noColor)

	title := "Event Financials"
	if fin.EventID != "" {
		title += ": " + fin.EventID
	}
	out.Header(title)
	out.Println("%s event, %d guests (%d adults, %d children)", fin.Category, fin.GuestCount, fin.Adults, fin.Children)
	out.Println("")

	summary := out.NewSummary()
	summary.TotalCharged = money(fin.TotalCharged)
	summary.GrossProfit = money(fin.GrossProfit)
	summary.Margin = margin(fin)
	summary.Loss = fin.GrossProfit.IsNegative()
	summary.Warnings = len(fin.Warnings)
	summary.Render()

	out.Header("Revenue")
	rev := out.NewTable("Line", "Amount").AlignRight(1)
	subtotal := "Subtotal"
	if fin.UsedSubtotalOverride {
		subtotal += " (override)"
	}
	rev.AddRow(subtotal, money(fin.Subtotal))
	rev.AddRow("Gratuity ("+percent(fin.GratuityPercent)+")", money(fin.Gratuity))
	rev.AddRow("Distance fee", money(fin.DistanceFee))
	rev.AddRow("Total charged", money(fin.TotalCharged))
	rev.Render()

	out.Header("Costs")
	costs := out.NewTable("Line", "Amount").AlignRight(1)
	food := "Food"
	if fin.UsedFoodCostOverride {
		food += " (override)"
	}
	costs.AddRow(food, money(fin.FoodCost))
	costs.AddRow("Supplies", money(fin.SuppliesCost))
	costs.AddRow("Transportation", money(fin.TransportationCost))
	costs.AddRow("Total costs", money(fin.TotalCosts))
	costs.Render()

	out.Header("Labor")
	out.Println("Staffing: %d staff, %s", fin.StaffingPlan.TotalStaff, planSource(fin.StaffingPlan))
	out.Println("")
	labor := out.NewTable("Slot", "Base", "Gratuity", "Raw", "Cap", "Paid", "To profit").AlignRight(1, 2, 3, 4, 5, 6)
	for _, e := range fin.Labor {
		slot := e.SlotID
		if e.Overridden {
			slot += "*"
		}
		limit := "-"
		if e.Cap.Valid {
			limit = money(e.Cap.Decimal)
		}
		labor.AddRow(slot, money(e.BasePay), money(e.GratuityShare), money(e.RawPay), limit, money(e.FinalPay), money(e.ExcessToProfit))
	}
	labor.Render()
	out.Println("Total labor paid %s (%s of revenue)", money(fin.TotalLaborPaid), percent(fin.LaborPercent))

	out.Header("Profit")
	dist := out.NewTable("Share", "Amount").AlignRight(1)
	dist.AddRow("Gross profit", money(fin.GrossProfit))
	dist.AddRow("Retained", money(fin.RetainedAmount))
	for _, owner := range determinism.SortedKeys(fin.OwnerDistributions) {
		dist.AddRow(owner, money(fin.OwnerDistributions[owner]))
	}
	dist.Render()

	if report.Menu != nil && len(report.Menu.Guests) > 0 {
		out.Header("Menu")
		guests := out.NewTable("Guest", "Cost", "Price", "Missing").AlignRight(1, 2)
		for _, g := range report.Menu.Guests {
			guests.AddRow(g.GuestID, money(g.Cost), money(g.Price), strings.Join(g.Missing, ", "))
		}
		guests.Render()
	}

	if len(fin.Warnings) > 0 {
		out.Header("Warnings")
		for _, warning := range fin.Warnings {
			out.Warning("%s", warning)
		}
	}

	if report.Metadata.SnapshotID != "" {
		out.Println("")
		out.Success("saved as record %s against snapshot %s", report.Metadata.RecordID, report.Metadata.SnapshotID)
	}
	return nil
}

func planSource(p types.StaffingPlan) string {
	switch p.Source {
	case types.PlanSourceExplicit:
		return "profile " + strconv.Quote(p.ProfileID) + " (requested)"
	case types.PlanSourceProfile:
		return "profile " + strconv.Quote(p.ProfileID)
	default:
		return "default formula"
	}
}
