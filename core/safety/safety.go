// Package safety computes advisory ratios and the warnings they trigger.
// Nothing here alters a computed amount.
package safety

import (
	"fmt"

	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// Ratios are the monitored percentages of one event
type Ratios struct {
	LaborPercent    decimal.Decimal
	FoodCostPercent decimal.Decimal
}

// Compute returns labor as a share of total charged and food cost as a
// share of subtotal; a zero denominator yields zero.
func Compute(totalLaborPaid, totalCharged, foodCost, subtotal decimal.Decimal) Ratios {
	return Ratios{
		LaborPercent:    types.Ratio(totalLaborPaid, totalCharged),
		FoodCostPercent: types.Ratio(foodCost, subtotal),
	}
}

// Check returns the warnings for ratios above the configured limits.
// It returns nothing when warnings are disabled.
func Check(r Ratios, limits rules.SafetyLimits) []string {
	if !limits.EnableWarnings {
		return nil
	}

	var warnings []string
	if limits.MaxLaborPercent.IsPositive() && r.LaborPercent.GreaterThan(limits.MaxLaborPercent) {
		warnings = append(warnings, fmt.Sprintf("labor is %s%% of revenue, above the %s%% limit",
			r.LaborPercent.StringFixed(2), limits.MaxLaborPercent))
	}
	if limits.MaxFoodCostPercent.IsPositive() && r.FoodCostPercent.GreaterThan(limits.MaxFoodCostPercent) {
		warnings = append(warnings, fmt.Sprintf("food cost is %s%% of subtotal, above the %s%% limit",
			r.FoodCostPercent.StringFixed(2), limits.MaxFoodCostPercent))
	}
	return warnings
}

// PremiumAddOn warns when a non-zero add-on falls outside the advisory bounds
func PremiumAddOn(addOn decimal.Decimal, p rules.PricingRules, limits rules.SafetyLimits) []string {
	if !limits.EnableWarnings || addOn.IsZero() {
		return nil
	}
	if addOn.LessThan(p.PremiumAddOnMin) || (p.PremiumAddOnMax.IsPositive() && addOn.GreaterThan(p.PremiumAddOnMax)) {
		return []string{fmt.Sprintf("premium add-on %s per guest is outside the advised range %s-%s",
			addOn, p.PremiumAddOnMin, p.PremiumAddOnMax)}
	}
	return nil
}

// Configuration surfaces rule document inconsistencies as warnings
func Configuration(cfg *rules.Configuration) []string {
	if !cfg.SafetyLimits.EnableWarnings {
		return nil
	}
	issues := cfg.Validate()
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.String())
	}
	return out
}
