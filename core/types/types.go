// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventCategory is the type of catered event
type EventCategory string

const (
	CategoryPrivateDinner EventCategory = "private-dinner"
	CategoryBuffet        EventCategory = "buffet"

	// CategoryAny matches every category in staffing profiles
	CategoryAny EventCategory = "any"
)

// String returns the string representation of the category
func (c EventCategory) String() string {
	return string(c)
}

// Matches reports whether a profile category applies to an event category
func (c EventCategory) Matches(event EventCategory) bool {
	return c == CategoryAny || c == event
}

// RoleTag identifies a staff role to fill
type RoleTag string

const (
	RoleLead      RoleTag = "lead"
	RoleFull      RoleTag = "full"
	RoleBuffet    RoleTag = "buffet"
	RoleAssistant RoleTag = "assistant"
)

// String returns the string representation of the role
func (r RoleTag) String() string {
	return string(r)
}

// EventInput is everything the engine needs to know about one event
type EventInput struct {
	// EventID is an opaque caller reference, echoed into the result
	EventID string `json:"event_id,omitempty"`

	Adults   int           `json:"adults"`
	Children int           `json:"children"`
	Category EventCategory `json:"category"`

	// EventDate is informational; rules are not date-versioned
	EventDate time.Time `json:"event_date"`

	DistanceMiles        decimal.Decimal `json:"distance_miles"`
	PremiumAddOnPerGuest decimal.Decimal `json:"premium_add_on_per_guest"`

	// StaffingProfileID forces a configured profile instead of range matching
	StaffingProfileID string `json:"staffing_profile_id,omitempty"`

	// SlotOverrides adjust pay for individual staffing slots
	SlotOverrides []SlotOverride `json:"slot_overrides,omitempty"`

	// Overrides replace formula-derived figures, e.g. from menu pricing
	Overrides FinancialOverrides `json:"overrides"`
}

// TotalGuests returns adults plus children
func (e EventInput) TotalGuests() int {
	return e.Adults + e.Children
}

// FinancialOverrides replace the default revenue/cost formulas verbatim
type FinancialOverrides struct {
	Subtotal        decimal.NullDecimal `json:"subtotal"`
	FoodCost        decimal.NullDecimal `json:"food_cost"`
	GratuityPercent decimal.NullDecimal `json:"gratuity_percent"`
}

// SlotOverride adjusts the compensation of one staffing slot.
// Unset fields fall back to the role's configured defaults.
type SlotOverride struct {
	// SlotIndex is the StaffingSlot.Index this override targets
	SlotIndex int `json:"slot_index"`

	// Role, when set, must equal the slot's role or the override is ignored
	Role RoleTag `json:"role,omitempty"`

	BasePayPercent       decimal.NullDecimal `json:"base_pay_percent"`
	GratuitySplitPercent decimal.NullDecimal `json:"gratuity_split_percent"`

	// Cap is an absolute amount; zero means uncapped
	Cap decimal.NullDecimal `json:"cap"`
}
