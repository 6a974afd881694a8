// Package types - Computed financial result types
package types

import "github.com/shopspring/decimal"

// PlanSource records how a staffing plan was resolved
type PlanSource string

const (
	PlanSourceExplicit PlanSource = "explicit-profile"
	PlanSourceProfile  PlanSource = "matched-profile"
	PlanSourceDefault  PlanSource = "default-formula"
)

// StaffingSlot is one position to fill in a staffing plan
type StaffingSlot struct {
	// Index is the 0-based plan position
	Index int `json:"index"`

	// ID is "<role>-<n>", n being the 1-based occurrence of the role
	ID string `json:"id"`

	Role RoleTag `json:"role"`
}

// StaffingPlan is derived on every call and never persisted
type StaffingPlan struct {
	Slots           []StaffingSlot `json:"slots"`
	AssistantNeeded bool           `json:"assistant_needed"`
	TotalStaff      int            `json:"total_staff"`
	Source          PlanSource     `json:"source"`
	ProfileID       string         `json:"profile_id,omitempty"`
}

// Roles returns the plan's role tags in order
func (p StaffingPlan) Roles() []RoleTag {
	roles := make([]RoleTag, len(p.Slots))
	for i, s := range p.Slots {
		roles[i] = s.Role
	}
	return roles
}

// LaborCompensationEntry is the pay computed for one slot
type LaborCompensationEntry struct {
	SlotIndex int     `json:"slot_index"`
	SlotID    string  `json:"slot_id"`
	Role      RoleTag `json:"role"`

	BasePayPercent       decimal.Decimal `json:"base_pay_percent"`
	GratuitySplitPercent decimal.Decimal `json:"gratuity_split_percent"`

	BasePay       decimal.Decimal `json:"base_pay"`
	GratuityShare decimal.Decimal `json:"gratuity_share"`
	RawPay        decimal.Decimal `json:"raw_pay"`

	// Cap is null when the slot is uncapped
	Cap            decimal.NullDecimal `json:"cap"`
	WasCapped      bool                `json:"was_capped"`
	ExcessToProfit decimal.Decimal     `json:"excess_to_profit"`
	FinalPay       decimal.Decimal     `json:"final_pay"`

	Overridden bool `json:"overridden,omitempty"`
}

// EventFinancials is the complete per-event result
type EventFinancials struct {
	EventID  string        `json:"event_id,omitempty"`
	Category EventCategory `json:"category"`

	GuestCount int `json:"guest_count"`
	Adults     int `json:"adults"`
	Children   int `json:"children"`

	BasePrice       decimal.Decimal `json:"base_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	GratuityPercent decimal.Decimal `json:"gratuity_percent"`
	Gratuity        decimal.Decimal `json:"gratuity"`
	DistanceFee     decimal.Decimal `json:"distance_fee"`
	TotalCharged    decimal.Decimal `json:"total_charged"`

	FoodCost           decimal.Decimal `json:"food_cost"`
	SuppliesCost       decimal.Decimal `json:"supplies_cost"`
	TransportationCost decimal.Decimal `json:"transportation_cost"`
	TotalCosts         decimal.Decimal `json:"total_costs"`

	StaffingPlan   StaffingPlan             `json:"staffing_plan"`
	Labor          []LaborCompensationEntry `json:"labor"`
	TotalLaborPaid decimal.Decimal          `json:"total_labor_paid"`
	LaborPercent   decimal.Decimal          `json:"labor_percent"`

	FoodCostPercent decimal.Decimal `json:"food_cost_percent"`

	// GrossProfit may be negative; that is a signal, not an error
	GrossProfit        decimal.Decimal            `json:"gross_profit"`
	RetainedAmount     decimal.Decimal            `json:"retained_amount"`
	OwnerDistributions map[string]decimal.Decimal `json:"owner_distributions"`

	UsedSubtotalOverride bool     `json:"used_subtotal_override,omitempty"`
	UsedFoodCostOverride bool     `json:"used_food_cost_override,omitempty"`
	MissingMenuItemIDs   []string `json:"missing_menu_item_ids,omitempty"`
	Warnings             []string `json:"warnings"`
}

// CappedExcess sums the amounts redirected to profit by caps
func (f *EventFinancials) CappedExcess() decimal.Decimal {
	total := decimal.Zero
	for _, e := range f.Labor {
		total = total.Add(e.ExcessToProfit)
	}
	return total
}

// Margin returns gross profit as a percentage of total charged
func (f *EventFinancials) Margin() decimal.Decimal {
	return Ratio(f.GrossProfit, f.TotalCharged)
}
