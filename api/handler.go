// Package api - HTTP handler for event financials
// This handler wraps the engine - it contains NO pricing logic.
// All logic is delegated to core packages.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"catering-finance/adapters/storage"
	"catering-finance/core/determinism"
	"catering-finance/core/engine"
	"catering-finance/core/menu"
	"catering-finance/core/rules"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
)

// Handler executes financials requests
type Handler struct {
	engine  *engine.Engine
	store   storage.Store
	rules   *rules.Configuration
	logger  *zap.Logger
	version string
}

// NewHandler creates a handler computing against cfg; a nil cfg means
// the built-in defaults. store may be nil, which disables saving.
func NewHandler(version string, cfg *rules.Configuration, store storage.Store, logger *zap.Logger) *Handler {
	if cfg == nil {
		cfg = rules.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine:  engine.New(engine.WithLogger(logger.Named("engine"))),
		store:   store,
		rules:   cfg,
		logger:  logger,
		version: version,
	}
}

func (h *Handler) execute(ctx context.Context, requestID string, req *FinancialsRequest) (*FinancialsResponse, error) {
	start := time.Now()

	if err := ValidateEvent(req.Event); err != nil {
		return nil, err
	}

	cfg, snapshotID, err := h.resolveRules(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &FinancialsResponse{
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    "success",
	}

	if req.Menu != nil {
		fin, priced := h.engine.CalculateWithMenu(req.Event, cfg, *req.Menu)
		resp.Financials = fin
		resp.Menu = &priced
	} else {
		resp.Financials = h.engine.Calculate(req.Event, cfg)
	}
	if len(resp.Financials.Warnings) > 0 {
		resp.Status = "warning"
	}

	rulesHash, err := storage.HashRules(cfg)
	if err != nil {
		return nil, err
	}
	resp.Metadata = &ResponseMetadata{
		InputHash:     computeInputHash(req),
		RulesHash:     rulesHash,
		SnapshotID:    snapshotID,
		EngineVersion: h.version,
	}

	if req.Save {
		if h.store == nil {
			return nil, errors.NotSupported("save without a snapshot store")
		}
		if snapshotID == "" {
			snap, err := h.store.SaveSnapshot(ctx, "api", cfg)
			if err != nil {
				return nil, err
			}
			resp.Metadata.SnapshotID = snap.ID
		}
		rec := &storage.Record{
			SnapshotID: resp.Metadata.SnapshotID,
			Input:      req.Event,
			Result:     resp.Financials,
		}
		if err := h.store.SaveRecord(ctx, rec); err != nil {
			return nil, err
		}
		resp.Metadata.RecordID = rec.ID
	}

	resp.Metadata.DurationMs = time.Since(start).Milliseconds()
	return resp, nil
}

// resolveRules picks the inline document, then the requested snapshot,
// then the handler's rules
func (h *Handler) resolveRules(ctx context.Context, req *FinancialsRequest) (*rules.Configuration, string, error) {
	if req.Rules != nil {
		return req.Rules, "", nil
	}
	if req.SnapshotID != "" {
		if h.store == nil {
			return nil, "", errors.NotSupported("snapshot lookup without a snapshot store")
		}
		snap, err := h.store.GetSnapshot(ctx, req.SnapshotID)
		if err != nil {
			return nil, "", err
		}
		return snap.Rules, snap.ID, nil
	}
	return h.rules, "", nil
}

func (h *Handler) priceMenu(req *MenuOverrideRequest) menu.Result {
	return menu.Aggregate(req.Selections, req.Catalog, req.Params)
}

// ValidateEvent rejects inputs the engine expects callers to have sanitized
func ValidateEvent(in types.EventInput) error {
	switch {
	case in.Adults < 0:
		return errors.Input("adults must not be negative")
	case in.Children < 0:
		return errors.Input("children must not be negative")
	case in.Category == "":
		return errors.Input("category is required")
	case in.DistanceMiles.IsNegative():
		return errors.Input("distance_miles must not be negative")
	case in.PremiumAddOnPerGuest.IsNegative():
		return errors.Input("premium_add_on_per_guest must not be negative")
	}
	for i, ov := range in.SlotOverrides {
		if ov.SlotIndex < 0 {
			return errors.Input(fmt.Sprintf("slot_overrides[%d]: slot_index must not be negative", i))
		}
	}
	return nil
}

// errorStatus maps a domain error to an error code and HTTP status
func errorStatus(err error) (string, int) {
	switch {
	case errors.IsType(err, errors.TypeInput):
		return "VALIDATION_ERROR", http.StatusBadRequest
	case errors.IsType(err, errors.TypeParsing):
		return "INVALID_RULES", http.StatusBadRequest
	case errors.IsType(err, errors.TypeNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case errors.IsType(err, errors.TypeNotSupported):
		return "NOT_SUPPORTED", http.StatusNotImplemented
	case errors.IsType(err, errors.TypeStorage):
		return "STORAGE_ERROR", http.StatusInternalServerError
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

func computeInputHash(req *FinancialsRequest) string {
	hash, err := determinism.HashJSON(req)
	if err != nil {
		return ""
	}
	return hash.Hex()
}

func generateRequestID() string {
	return fmt.Sprintf("fin-%d", time.Now().UnixNano())
}
