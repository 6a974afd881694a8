// Package api - Request and response types
package api

import (
	"time"

	"catering-finance/core/engine"
	"catering-finance/core/menu"
	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// FinancialsRequest asks for one event's financials
type FinancialsRequest struct {
	// Event is the event to price
	Event types.EventInput `json:"event"`

	// Rules is an inline rule document; it takes precedence over SnapshotID
	Rules *rules.Configuration `json:"rules,omitempty"`

	// SnapshotID selects a stored rule snapshot
	SnapshotID string `json:"snapshot_id,omitempty"`

	// Menu prices the event from guest selections instead of the formula
	Menu *engine.MenuRequest `json:"menu,omitempty"`

	// Save stores the rules and the result
	Save bool `json:"save,omitempty"`
}

// FinancialsResponse is the result of a financials request
type FinancialsResponse struct {
	RequestID  string                 `json:"request_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Status     string                 `json:"status"`
	Financials *types.EventFinancials `json:"financials,omitempty"`
	Menu       *menu.Result           `json:"menu,omitempty"`
	Metadata   *ResponseMetadata      `json:"metadata,omitempty"`
	Errors     []ErrorDetail          `json:"errors,omitempty"`
}

// ResponseMetadata identifies what a result was computed against
type ResponseMetadata struct {
	InputHash     string `json:"input_hash"`
	RulesHash     string `json:"rules_hash"`
	SnapshotID    string `json:"snapshot_id,omitempty"`
	RecordID      string `json:"record_id,omitempty"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// MenuOverrideRequest prices guest selections against a catalog
type MenuOverrideRequest struct {
	Selections []menu.GuestSelection `json:"selections"`
	Catalog    []menu.CatalogItem    `json:"catalog"`
	Params     menu.Params           `json:"params"`
}

// ValidateRulesResponse lists the consistency issues of a rule document
type ValidateRulesResponse struct {
	Valid  bool          `json:"valid"`
	Hash   string        `json:"hash"`
	Issues []rules.Issue `json:"issues"`
}

// ErrorDetail is one error in an error response
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
