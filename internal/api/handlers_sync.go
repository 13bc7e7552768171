// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/validation"
)

// SyncTriggerRequest is the optional body for the batch sync trigger.
type SyncTriggerRequest struct {
	// Limit caps how many quotes this run processes. Zero uses the
	// configured batch limit.
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// TriggerSync starts a batch sync run over all eligible quotes.
// POST /api/v1/sync
//
// The run executes synchronously; the response carries the full result
// including per-record errors. Partial failure is a 200 with
// success=false inside the result, not an HTTP error.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var req SyncTriggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse request body", err)
			return
		}
	}
	if vErr := validation.ValidateStruct(&req); vErr != nil {
		respondError(w, http.StatusBadRequest, vErr.Error(), nil)
		return
	}

	logging.Ctx(r.Context()).Info().Int("limit", req.Limit).Msg("Manual batch sync triggered")

	result, err := h.manager.SyncAll(r.Context(), req.Limit)
	if err != nil {
		respondError(w, http.StatusBadGateway, "sync run failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, result)
}

// TriggerQuoteSync synchronizes one quote by ID.
// POST /api/v1/sync/quotes/{quoteID}
//
// An ineligible quote returns 200 with a skipped result.
func (h *Handler) TriggerQuoteSync(w http.ResponseWriter, r *http.Request) {
	quoteID, err := strconv.ParseInt(chi.URLParam(r, "quoteID"), 10, 64)
	if err != nil || quoteID <= 0 {
		respondError(w, http.StatusBadRequest, "quoteID must be a positive integer", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("quote_id", quoteID).Msg("Manual quote sync triggered")

	result, err := h.manager.SyncQuote(r.Context(), quoteID)
	if err != nil {
		if syncpkgIsNotFound(err) {
			respondError(w, http.StatusNotFound, "quote not found", err)
			return
		}
		respondError(w, http.StatusBadGateway, "quote sync failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, result)
}
