// Package profit splits gross profit into retained earnings and owner shares.
package profit

import (
	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// Distribution is the split of one event's gross profit
type Distribution struct {
	GrossProfit   decimal.Decimal
	Retained      decimal.Decimal
	Distributable decimal.Decimal
	OwnerShares   map[string]decimal.Decimal
}

// GrossProfit is revenue less costs less labor actually paid. Capped
// excess never left TotalCharged, so it is already included here.
func GrossProfit(totalCharged, totalCosts, totalLaborPaid decimal.Decimal) decimal.Decimal {
	return totalCharged.Sub(totalCosts).Sub(totalLaborPaid)
}

// Distribute applies the retained and owner percentages exactly as
// configured. Percentages that do not sum to 100 are not normalized.
// A loss distributes nothing: retained and owner shares are zero.
func Distribute(grossProfit decimal.Decimal, d rules.DistributionRules) Distribution {
	base := types.NonNegative(grossProfit)

	out := Distribution{
		GrossProfit:   grossProfit,
		Retained:      types.Percent(base, d.BusinessRetainedPercent),
		Distributable: types.Percent(base, d.OwnerDistributionPercent),
		OwnerShares:   make(map[string]decimal.Decimal, len(d.Owners)),
	}

	for _, o := range d.Owners {
		share := types.Percent(out.Distributable, o.EquityPercent)
		// Owners listed twice accumulate
		out.OwnerShares[o.ID] = out.OwnerShares[o.ID].Add(share)
	}

	return out
}
