// Package api - Rule comparison requests
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"catering-finance/adapters/storage"
	"catering-finance/core/diff"
	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// DiffRequest is the request for POST /v1/rules/diff
type DiffRequest struct {
	Event types.EventInput `json:"event"`
	Base  DiffRef          `json:"base"`
	Head  DiffRef          `json:"head"`

	// Tolerance is the largest delta still reported as unchanged
	Tolerance decimal.Decimal `json:"tolerance"`
}

// DiffRef identifies one side of a comparison. An empty ref means the
// server's rules.
type DiffRef struct {
	Rules      *rules.Configuration `json:"rules,omitempty"`
	SnapshotID string               `json:"snapshot_id,omitempty"`
}

// DiffResponse is the response for POST /v1/rules/diff
type DiffResponse struct {
	RequestID string       `json:"request_id"`
	BaseHash  string       `json:"base_hash"`
	HeadHash  string       `json:"head_hash"`
	Summary   string       `json:"summary"`
	Diff      *diff.Result `json:"diff"`
}

func (h *Handler) diff(ctx context.Context, requestID string, req *DiffRequest) (*DiffResponse, error) {
	if err := ValidateEvent(req.Event); err != nil {
		return nil, err
	}

	base, _, err := h.resolveRules(ctx, &FinancialsRequest{Rules: req.Base.Rules, SnapshotID: req.Base.SnapshotID})
	if err != nil {
		return nil, err
	}
	head, _, err := h.resolveRules(ctx, &FinancialsRequest{Rules: req.Head.Rules, SnapshotID: req.Head.SnapshotID})
	if err != nil {
		return nil, err
	}

	result := diff.NewDiffer(req.Tolerance).Diff(
		h.engine.Calculate(req.Event, base),
		h.engine.Calculate(req.Event, head),
	)

	resp := &DiffResponse{RequestID: requestID, Summary: result.Summary(), Diff: result}
	if resp.BaseHash, err = storage.HashRules(base); err != nil {
		return nil, err
	}
	if resp.HeadHash, err = storage.HashRules(head); err != nil {
		return nil, err
	}
	return resp, nil
}

// handleDiff handles POST /v1/rules/diff
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	requestID := generateRequestID()

	var req DiffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, requestID, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.handler.diff(r.Context(), requestID, &req)
	if err != nil {
		code, status := errorStatus(err)
		s.writeError(w, requestID, code, err.Error(), status)
		return
	}
	s.writeJSON(w, resp, http.StatusOK)
}
