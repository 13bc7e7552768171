// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Command server runs the QuoteBridge daemon.
//
// QuoteBridge mirrors sales quotes from a field service platform onto a
// work management board: one account item per customer, one contact item
// per quote contact, one deal item per quote. The daemon exposes an HTTP
// API for webhooks and manual sync triggers, and can additionally run a
// periodic batch sync when an interval is configured.
//
// Startup sequence:
//
//  1. Load configuration from environment variables (QB_ prefix) and an
//     optional config file, then validate it.
//  2. Initialize zerolog with the configured level and format.
//  3. Build the field service client (wrapped in a circuit breaker) and
//     the rate-limited board client.
//  4. Assemble the sync pipeline: classifier, mapper, resolver, upserter,
//     manager, webhook processor.
//  5. Mount the chi router and hand the sync loop and HTTP server to a
//     suture supervisor tree.
//
// Shutdown is triggered by SIGINT or SIGTERM. The supervisor cancels the
// sync loop and drains the HTTP server before the process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgreen210/quotebridge/internal/api"
	"github.com/jgreen210/quotebridge/internal/cache"
	"github.com/jgreen210/quotebridge/internal/config"
	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/supervisor"
	"github.com/jgreen210/quotebridge/internal/sync"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", api.Version).Msg("Starting QuoteBridge")

	if cfg.Webhook.SigningSecret == "" {
		logging.Warn().Msg("Webhook signature verification is DISABLED (QB_WEBHOOK_SIGNING_SECRET is empty)")
		logging.Warn().Msg("Anyone who can reach the webhook endpoint can trigger syncs. Set a signing secret outside development.")
	}

	logging.Info().
		Str("field_service_url", cfg.FieldService.BaseURL).
		Int64("account_board", cfg.Board.AccountBoardID).
		Int64("contact_board", cfg.Board.ContactBoardID).
		Int64("deal_board", cfg.Board.DealBoardID).
		Dur("sync_interval", cfg.Sync.Interval).
		Msg("Configuration loaded")

	// Source side: REST client behind a circuit breaker so a flapping
	// field service API fails fast instead of stalling every sync.
	fieldService := sync.NewCircuitBreakerClient(sync.NewFieldServiceClient(sync.FieldServiceClientConfig{
		BaseURL:     cfg.FieldService.BaseURL,
		AccessToken: cfg.FieldService.AccessToken,
		CompanyID:   cfg.FieldService.CompanyID,
		PageSize:    cfg.FieldService.PageSize,
		Timeout:     cfg.FieldService.Timeout,
	}))

	// Target side: GraphQL client that paces requests and honors the
	// board's rate limit protocol.
	board := sync.NewBoardClient(sync.BoardClientConfig{
		APIURL:            cfg.Board.APIURL,
		APIToken:          cfg.Board.APIToken,
		Timeout:           cfg.Board.Timeout,
		RequestsPerSecond: cfg.Board.RequestsPerSecond,
	})

	resolver := sync.NewResolver(board, cfg.Board.SearchPageSize, cfg.Board.MaxSearchPages)
	classifier := sync.NewClassifier(cfg.Sync.ActiveStages, cfg.Sync.ActiveStatuses, cfg.Sync.TerminalKeepStatuses)
	mapper := sync.NewMapper(cfg.Sync.SalespersonOwners)

	upserter := sync.NewUpserter(board, resolver, sync.UpserterConfig{
		AccountBoardID: cfg.Board.AccountBoardID,
		ContactBoardID: cfg.Board.ContactBoardID,
		DealBoardID:    cfg.Board.DealBoardID,
		Columns: sync.BoardColumnIDs{
			AccountForeignKey: cfg.Board.Columns.AccountForeignKey,
			ContactForeignKey: cfg.Board.Columns.ContactForeignKey,
			DealForeignKey:    cfg.Board.Columns.DealForeignKey,
			ContactEmail:      cfg.Board.Columns.ContactEmail,
			ContactPhone:      cfg.Board.Columns.ContactPhone,
			ContactAccount:    cfg.Board.Columns.ContactAccount,
			DealValue:         cfg.Board.Columns.DealValue,
			DealStage:         cfg.Board.Columns.DealStage,
			DealDueDate:       cfg.Board.Columns.DealDueDate,
			DealContacts:      cfg.Board.Columns.DealContacts,
			DealAccount:       cfg.Board.Columns.DealAccount,
			DealOwner:         cfg.Board.Columns.DealOwner,
		},
		DefaultCountryCode: cfg.Board.DefaultCountryCode,
	})

	manager := sync.NewManager(fieldService, board, classifier, mapper, upserter, sync.ManagerConfig{
		MinQuoteValue: cfg.Sync.MinQuoteValue,
		BatchLimit:    cfg.Sync.BatchLimit,
		Interval:      cfg.Sync.Interval,
	})

	debounce := cache.NewTTL(cfg.Webhook.DebounceTTL)
	existence := cache.NewExistence(cfg.Webhook.ExistenceTTL)

	webhooks := sync.NewWebhookProcessor(manager, resolver, debounce, existence, sync.WebhookProcessorConfig{
		DealBoardID:     cfg.Board.DealBoardID,
		DealForeignKey:  cfg.Board.Columns.DealForeignKey,
		DealStageColumn: cfg.Board.Columns.DealStage,
		ConfirmAttempts: cfg.Webhook.ExistenceAttempts,
	})

	handler := api.NewHandler(manager, webhooks, fieldService, board, cfg)
	router := api.NewRouter(handler, cfg).Setup()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog
	slogLogger := slog.New(logging.NewSlogHandler())

	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.AddSyncService(manager)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tree.AddAPIService(supervisor.NewHTTPServerService(addr, router, cfg.Server.Timeout))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel; it closes when the supervisor has stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("QuoteBridge stopped gracefully")
}
