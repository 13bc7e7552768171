// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jgreen210/quotebridge/internal/models"
)

// healthPingTimeout bounds each remote probe so a hung dependency
// cannot stall the health endpoint.
const healthPingTimeout = 5 * time.Second

// HealthLive reports process liveness.
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady reports whether QuoteBridge can serve traffic. Readiness
// only requires the process to be up; remote outages degrade the full
// health report instead of flapping readiness.
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// Health probes both remote platforms and reports overall status.
// GET /api/v1/health
//
// Returns 200 when both remotes answer, 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:       "healthy",
		FieldService: "ok",
		Board:        "ok",
		Version:      Version,
	}

	if err := h.fieldService.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.FieldService = err.Error()
	}
	if err := h.board.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Board = err.Error()
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, &models.APIResponse{Success: status.Status == "healthy", Data: status})
}
