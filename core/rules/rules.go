// Package rules defines the business-rules document the financial engine
// computes against. The document is composed of one sub-config per policy
// area and is treated as immutable for the duration of a calculation.
package rules

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"catering-finance/core/types"
)

// UnboundedGuests as a profile's MaxGuests means "no upper bound"
const UnboundedGuests = 9999

// Configuration is the complete rule document
type Configuration struct {
	Pricing            PricingRules      `json:"pricing"`
	Staffing           StaffingRules     `json:"staffing"`
	Labor              LaborRules        `json:"labor"`
	Costs              CostRules         `json:"costs"`
	Distance           DistanceRules     `json:"distance"`
	ProfitDistribution DistributionRules `json:"profit_distribution"`
	SafetyLimits       SafetyLimits      `json:"safety_limits"`
}

// PricingRules controls revenue
type PricingRules struct {
	BasePricePerGuest map[types.EventCategory]decimal.Decimal `json:"base_price_per_guest"`

	// Premium add-on bounds are advisory only
	PremiumAddOnMin decimal.Decimal `json:"premium_add_on_min"`
	PremiumAddOnMax decimal.Decimal `json:"premium_add_on_max"`

	DefaultGratuityPercent decimal.Decimal `json:"default_gratuity_percent"`
	ChildDiscountPercent   decimal.Decimal `json:"child_discount_percent"`
}

// StaffingRules controls how many staff of which roles an event needs
type StaffingRules struct {
	Categories map[types.EventCategory]CategoryStaffing `json:"categories"`

	// AssistantRole is the tag appended by the default formula
	AssistantRole types.RoleTag `json:"assistant_role"`

	// Profiles are matched in order; first match wins
	Profiles []StaffingProfile `json:"profiles"`
}

// CategoryStaffing is the default-formula policy for one category
type CategoryStaffing struct {
	MaxGuestsPerChef  int  `json:"max_guests_per_chef"`
	AssistantRequired bool `json:"assistant_required"`

	// LeadRole staffs the first chef, FullRole the rest. Uniform
	// categories such as buffets use the same tag for both.
	LeadRole types.RoleTag `json:"lead_role"`
	FullRole types.RoleTag `json:"full_role"`
}

// StaffingProfile maps a category and guest range to a role list
type StaffingProfile struct {
	ID        string              `json:"id"`
	Name      string              `json:"name,omitempty"`
	Category  types.EventCategory `json:"category"`
	MinGuests int                 `json:"min_guests"`
	MaxGuests int                 `json:"max_guests"`
	Roles     []types.RoleTag     `json:"roles"`
}

// Contains reports whether guests falls inside the inclusive range
func (p StaffingProfile) Contains(guests int) bool {
	if guests < p.MinGuests {
		return false
	}
	return p.MaxGuests >= UnboundedGuests || guests <= p.MaxGuests
}

// LaborRules controls per-role compensation
type LaborRules struct {
	Roles map[types.RoleTag]RoleRule `json:"roles"`

	// GratuitySplits is the share of the gratuity pool per role group
	GratuitySplits map[string]decimal.Decimal `json:"gratuity_splits"`
}

// RoleRule is the default compensation for one role tag
type RoleRule struct {
	// BasePayPercent is a percentage of subtotal
	BasePayPercent decimal.Decimal `json:"base_pay_percent"`

	// CapPercent is a percentage of subtotal plus gratuity; null or zero is uncapped
	CapPercent decimal.NullDecimal `json:"cap_percent"`

	// GratuityGroup selects the entry in LaborRules.GratuitySplits
	GratuityGroup string `json:"gratuity_group"`
}

// CostRules controls operating costs
type CostRules struct {
	FoodCostPercent       map[types.EventCategory]decimal.Decimal `json:"food_cost_percent"`
	SuppliesCostPercent   decimal.Decimal                         `json:"supplies_cost_percent"`
	TransportationStipend decimal.Decimal                         `json:"transportation_stipend"`
}

// DistanceRules controls the travel fee
type DistanceRules struct {
	FreeMiles       decimal.Decimal `json:"free_miles"`
	BaseFee         decimal.Decimal `json:"base_fee"`
	FeePerIncrement decimal.Decimal `json:"fee_per_increment"`
	IncrementMiles  decimal.Decimal `json:"increment_miles"`
}

// DistributionRules splits gross profit
type DistributionRules struct {
	BusinessRetainedPercent  decimal.Decimal `json:"business_retained_percent"`
	OwnerDistributionPercent decimal.Decimal `json:"owner_distribution_percent"`
	Owners                   []Owner         `json:"owners"`
}

// Owner holds an equity stake in distributed profit
type Owner struct {
	ID            string          `json:"id"`
	Name          string          `json:"name,omitempty"`
	EquityPercent decimal.Decimal `json:"equity_percent"`
}

// SafetyLimits are advisory thresholds
type SafetyLimits struct {
	MaxLaborPercent    decimal.Decimal `json:"max_labor_percent"`
	MaxFoodCostPercent decimal.Decimal `json:"max_food_cost_percent"`
	EnableWarnings     bool            `json:"enable_warnings"`
}

// BasePrice returns the per-guest price for a category, zero if unpriced
func (c *Configuration) BasePrice(category types.EventCategory) decimal.Decimal {
	return c.Pricing.BasePricePerGuest[category]
}

// FoodCostPercent returns the food-cost percentage for a category
func (c *Configuration) FoodCostPercent(category types.EventCategory) decimal.Decimal {
	return c.Costs.FoodCostPercent[category]
}

// CategoryStaffing returns the default-formula policy for a category
func (c *Configuration) CategoryStaffing(category types.EventCategory) (CategoryStaffing, bool) {
	cs, ok := c.Staffing.Categories[category]
	return cs, ok
}

// Profile finds a staffing profile by id
func (c *Configuration) Profile(id string) (StaffingProfile, bool) {
	for _, p := range c.Staffing.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return StaffingProfile{}, false
}

// Role returns the compensation rule for a role tag
func (c *Configuration) Role(role types.RoleTag) (RoleRule, bool) {
	r, ok := c.Labor.Roles[role]
	return r, ok
}

// GratuitySplitFor returns the gratuity percentage of the role's group
func (c *Configuration) GratuitySplitFor(role types.RoleTag) decimal.Decimal {
	r, ok := c.Labor.Roles[role]
	if !ok {
		return decimal.Zero
	}
	return c.Labor.GratuitySplits[r.GratuityGroup]
}

// Clone returns a deep copy so callers can freeze a snapshot
func (c *Configuration) Clone() *Configuration {
	out := *c

	out.Pricing.BasePricePerGuest = maps.Clone(c.Pricing.BasePricePerGuest)
	out.Staffing.Categories = maps.Clone(c.Staffing.Categories)
	out.Staffing.Profiles = make([]StaffingProfile, len(c.Staffing.Profiles))
	for i, p := range c.Staffing.Profiles {
		p.Roles = slices.Clone(p.Roles)
		out.Staffing.Profiles[i] = p
	}
	out.Labor.Roles = maps.Clone(c.Labor.Roles)
	out.Labor.GratuitySplits = maps.Clone(c.Labor.GratuitySplits)
	out.Costs.FoodCostPercent = maps.Clone(c.Costs.FoodCostPercent)
	out.ProfitDistribution.Owners = slices.Clone(c.ProfitDistribution.Owners)

	return &out
}
