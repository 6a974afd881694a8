// Package revenue computes what an event charges and what it costs to run.
// Costs derive from the subtotal only; labor never feeds back into them.
package revenue

import (
	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// Result holds revenue and operating-cost figures for one event
type Result struct {
	BasePrice       decimal.Decimal
	Subtotal        decimal.Decimal
	GratuityPercent decimal.Decimal
	Gratuity        decimal.Decimal
	DistanceFee     decimal.Decimal
	TotalCharged    decimal.Decimal

	FoodCost           decimal.Decimal
	SuppliesCost       decimal.Decimal
	TransportationCost decimal.Decimal
	TotalCosts         decimal.Decimal

	UsedSubtotalOverride bool
	UsedFoodCostOverride bool
}

// Calculate derives revenue and costs from guest counts and the rules.
// Subtotal, food cost and gratuity percent overrides are used verbatim.
func Calculate(in types.EventInput, cfg *rules.Configuration) Result {
	var r Result

	r.BasePrice = cfg.BasePrice(in.Category)

	if in.Overrides.Subtotal.Valid {
		r.Subtotal = in.Overrides.Subtotal.Decimal
		r.UsedSubtotalOverride = true
	} else {
		r.Subtotal = Subtotal(in.Adults, in.Children, r.BasePrice, cfg.Pricing.ChildDiscountPercent, in.PremiumAddOnPerGuest)
	}

	r.GratuityPercent = cfg.Pricing.DefaultGratuityPercent
	if in.Overrides.GratuityPercent.Valid {
		r.GratuityPercent = in.Overrides.GratuityPercent.Decimal
	}
	r.Gratuity = types.Percent(r.Subtotal, r.GratuityPercent)

	r.DistanceFee = DistanceFee(in.DistanceMiles, cfg.Distance)
	r.TotalCharged = r.Subtotal.Add(r.Gratuity).Add(r.DistanceFee)

	if in.Overrides.FoodCost.Valid {
		r.FoodCost = in.Overrides.FoodCost.Decimal
		r.UsedFoodCostOverride = true
	} else {
		r.FoodCost = types.Percent(r.Subtotal, cfg.FoodCostPercent(in.Category))
	}
	r.SuppliesCost = types.Percent(r.Subtotal, cfg.Costs.SuppliesCostPercent)
	r.TransportationCost = cfg.Costs.TransportationStipend
	r.TotalCosts = r.FoodCost.Add(r.SuppliesCost).Add(r.TransportationCost)

	return r
}

// Subtotal prices adults at the base price, children at the discounted
// base price, and every guest at the premium add-on.
func Subtotal(adults, children int, basePrice, childDiscountPercent, premiumAddOn decimal.Decimal) decimal.Decimal {
	a := decimal.NewFromInt(int64(adults))
	c := decimal.NewFromInt(int64(children))

	childPrice := basePrice.Sub(types.Percent(basePrice, childDiscountPercent))

	return a.Mul(basePrice).
		Add(c.Mul(childPrice)).
		Add(a.Add(c).Mul(premiumAddOn))
}

// DistanceFee charges nothing up to the free threshold, then the base fee
// plus one fee per started increment beyond it.
func DistanceFee(miles decimal.Decimal, d rules.DistanceRules) decimal.Decimal {
	if miles.LessThanOrEqual(d.FreeMiles) {
		return decimal.Zero
	}
	return d.BaseFee.Add(Increments(miles.Sub(d.FreeMiles), d.IncrementMiles).Mul(d.FeePerIncrement))
}

// Increments counts increments of size step needed to cover excess,
// billing a partial increment as a full one. A non-positive step
// yields zero increments.
func Increments(excess, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 || excess.Sign() <= 0 {
		return decimal.Zero
	}
	q, rem := excess.QuoRem(step, 0)
	if rem.Sign() > 0 {
		q = q.Add(decimal.NewFromInt(1))
	}
	return q
}
