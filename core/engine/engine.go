// Package engine is the financial facade: it composes revenue, staffing,
// labor, profit and safety into one EventFinancials per event.
// CLI and HTTP are thin wrappers around this package.
//
// Calculation is pure. The rule document and menu catalog are only read,
// and identical inputs produce identical results, so an Engine may be
// shared by any number of goroutines.
package engine

import (
	"go.uber.org/zap"

	"catering-finance/core/labor"
	"catering-finance/core/menu"
	"catering-finance/core/profit"
	"catering-finance/core/revenue"
	"catering-finance/core/rules"
	"catering-finance/core/safety"
	"catering-finance/core/staffing"
	"catering-finance/core/types"
)

// Engine computes event financials
type Engine struct {
	logger *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine
func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate computes financials with a silent engine
func Calculate(in types.EventInput, cfg *rules.Configuration) *types.EventFinancials {
	return New().Calculate(in, cfg)
}

// Calculate derives the complete financial picture of one event. A nil
// rule document means the built-in defaults.
func (e *Engine) Calculate(in types.EventInput, cfg *rules.Configuration) *types.EventFinancials {
	if cfg == nil {
		cfg = rules.Default()
	}
	log := e.logger.With(zap.String("event_id", in.EventID), zap.String("category", in.Category.String()))

	rev := revenue.Calculate(in, cfg)

	plan := staffing.Resolve(staffing.RequestFor(in), cfg)
	log.Debug("staffing resolved",
		zap.String("source", string(plan.Source)),
		zap.String("profile", plan.ProfileID),
		zap.Int("staff", plan.TotalStaff))

	pay := labor.Calculate(plan, rev.Subtotal, rev.Gratuity, cfg, in.SlotOverrides)
	for _, entry := range pay.Entries {
		if entry.WasCapped {
			log.Debug("labor capped",
				zap.String("slot", entry.SlotID),
				zap.Stringer("raw", entry.RawPay),
				zap.Stringer("cap", entry.Cap.Decimal))
		}
	}

	gross := profit.GrossProfit(rev.TotalCharged, rev.TotalCosts, pay.TotalPaid)
	dist := profit.Distribute(gross, cfg.ProfitDistribution)

	ratios := safety.Compute(pay.TotalPaid, rev.TotalCharged, rev.FoodCost, rev.Subtotal)

	warnings := make([]string, 0)
	warnings = append(warnings, pay.Warnings...)
	warnings = append(warnings, safety.Check(ratios, cfg.SafetyLimits)...)
	warnings = append(warnings, safety.PremiumAddOn(in.PremiumAddOnPerGuest, cfg.Pricing, cfg.SafetyLimits)...)
	warnings = append(warnings, safety.Configuration(cfg)...)
	if len(warnings) > 0 {
		log.Debug("advisory warnings", zap.Strings("warnings", warnings))
	}

	return &types.EventFinancials{
		EventID:    in.EventID,
		Category:   in.Category,
		GuestCount: in.TotalGuests(),
		Adults:     in.Adults,
		Children:   in.Children,

		BasePrice:       rev.BasePrice,
		Subtotal:        rev.Subtotal,
		GratuityPercent: rev.GratuityPercent,
		Gratuity:        rev.Gratuity,
		DistanceFee:     rev.DistanceFee,
		TotalCharged:    rev.TotalCharged,

		FoodCost:           rev.FoodCost,
		SuppliesCost:       rev.SuppliesCost,
		TransportationCost: rev.TransportationCost,
		TotalCosts:         rev.TotalCosts,

		StaffingPlan:   plan,
		Labor:          pay.Entries,
		TotalLaborPaid: pay.TotalPaid,
		LaborPercent:   ratios.LaborPercent,

		FoodCostPercent: ratios.FoodCostPercent,

		GrossProfit:        gross,
		RetainedAmount:     dist.Retained,
		OwnerDistributions: dist.OwnerShares,

		UsedSubtotalOverride: rev.UsedSubtotalOverride,
		UsedFoodCostOverride: rev.UsedFoodCostOverride,
		Warnings:             warnings,
	}
}

// MenuRequest carries the menu side of a menu-priced event
type MenuRequest struct {
	Selections []menu.GuestSelection `json:"selections"`
	Catalog    []menu.CatalogItem    `json:"catalog"`

	// SideItemIDs overrides the catalog ids of the four side flags
	SideItemIDs [4]string `json:"side_item_ids"`
}

// CalculateWithMenu prices the event from its menu selections: the menu
// subtotal and food cost replace the formula figures, using the rule
// document's child discount and the event's premium add-on. Missing
// catalog ids are reported on the result and as warnings.
func (e *Engine) CalculateWithMenu(in types.EventInput, cfg *rules.Configuration, req MenuRequest) (*types.EventFinancials, menu.Result) {
	if cfg == nil {
		cfg = rules.Default()
	}

	params := menu.Params{
		ChildDiscountPercent: cfg.Pricing.ChildDiscountPercent,
		PremiumAddOnPerGuest: in.PremiumAddOnPerGuest,
		SideItemIDs:          req.SideItemIDs,
	}
	priced := menu.Aggregate(req.Selections, req.Catalog, params)

	overrides := priced.Overrides()
	overrides.GratuityPercent = in.Overrides.GratuityPercent
	in.Overrides = overrides

	fin := e.Calculate(in, cfg)
	fin.MissingMenuItemIDs = priced.MissingItemIDs
	for _, id := range priced.MissingItemIDs {
		fin.Warnings = append(fin.Warnings, "menu item "+id+" is not in the catalog and was priced at zero")
	}
	if len(priced.MissingItemIDs) > 0 {
		e.logger.Debug("menu items missing from catalog",
			zap.String("event_id", in.EventID),
			zap.Strings("ids", priced.MissingItemIDs))
	}

	return fin, priced
}

// Conserves reports whether a result satisfies
// total charged - total costs - labor paid = gross profit exactly
func Conserves(f *types.EventFinancials) bool {
	return f.TotalCharged.Sub(f.TotalCosts).Sub(f.TotalLaborPaid).Equal(f.GrossProfit)
}
