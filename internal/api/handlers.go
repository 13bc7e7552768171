// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"context"
	"time"

	"github.com/jgreen210/quotebridge/internal/config"
	"github.com/jgreen210/quotebridge/internal/models"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// SyncService triggers sync runs. Implemented by sync.Manager.
type SyncService interface {
	SyncAll(ctx context.Context, limit int) (*models.SyncResult, error)
	SyncQuote(ctx context.Context, quoteID int64) (*models.SyncResult, error)
}

// WebhookService handles source webhook events. Implemented by
// sync.WebhookProcessor.
type WebhookService interface {
	ProcessEvent(ctx context.Context, eventType string, quoteID int64) (*models.SyncResult, error)
}

// Pinger probes a remote platform's reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains the dependencies for the API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_webhook.go: webhook receivers for both platforms
//   - handlers_sync.go: manual sync triggers
//   - handlers_health.go: liveness, readiness and health endpoints
type Handler struct {
	manager      SyncService
	webhooks     WebhookService
	fieldService Pinger
	board        Pinger
	config       *config.Config
	startTime    time.Time
}

// NewHandler creates an API handler.
func NewHandler(manager SyncService, webhooks WebhookService, fieldService, board Pinger, cfg *config.Config) *Handler {
	return &Handler{
		manager:      manager,
		webhooks:     webhooks,
		fieldService: fieldService,
		board:        board,
		config:       cfg,
		startTime:    time.Now(),
	}
}
