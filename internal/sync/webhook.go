// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jgreen210/quotebridge/internal/cache"
	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// confirmStep is the base delay between existence-confirmation
// attempts; attempt n waits n*confirmStep.
const confirmStep = 2 * time.Second

// WebhookProcessorConfig carries webhook event-handling knobs.
type WebhookProcessorConfig struct {
	DealBoardID     int64
	DealForeignKey  string
	DealStageColumn string
	ConfirmAttempts int
}

// WebhookProcessor turns field-service webhook events into sync runs.
// The debounce cache collapses the event bursts the source emits for a
// single user action into one run; the existence cache remembers deals
// recently confirmed on the board so follow-up events skip the
// confirmation scan.
type WebhookProcessor struct {
	manager   *Manager
	resolver  *Resolver
	debounce  *cache.TTLCache
	existence *cache.ExistenceCache
	cfg       WebhookProcessorConfig

	// step between confirmation attempts; shortened in tests.
	step time.Duration
}

// NewWebhookProcessor creates a webhook processor.
func NewWebhookProcessor(manager *Manager, resolver *Resolver, debounce *cache.TTLCache, existence *cache.ExistenceCache, cfg WebhookProcessorConfig) *WebhookProcessor {
	if cfg.ConfirmAttempts <= 0 {
		cfg.ConfirmAttempts = 3
	}
	return &WebhookProcessor{
		manager:   manager,
		resolver:  resolver,
		debounce:  debounce,
		existence: existence,
		cfg:       cfg,
		step:      confirmStep,
	}
}

// ProcessEvent handles one webhook event. Duplicate events inside the
// debounce window and ineligible quotes come back as skipped results,
// not errors, so the caller can acknowledge the webhook either way.
func (p *WebhookProcessor) ProcessEvent(ctx context.Context, eventType string, quoteID int64) (*models.SyncResult, error) {
	log := logging.Ctx(ctx)

	debounceKey := fmt.Sprintf("%s:%d", eventType, quoteID)
	if !p.debounce.TryClaim(debounceKey) {
		metrics.CacheOperations.WithLabelValues("debounce", "reject").Inc()
		log.Info().Str("event", eventType).Int64("quote_id", quoteID).Msg("Duplicate event inside debounce window, skipping")
		return &models.SyncResult{
			Success: true,
			Skipped: true,
			Message: fmt.Sprintf("duplicate %s event for quote %d within debounce window", eventType, quoteID),
		}, nil
	}
	metrics.CacheOperations.WithLabelValues("debounce", "claim").Inc()

	if eventType == models.EventQuoteDeleted {
		return p.processDeleted(ctx, quoteID)
	}

	result, err := p.manager.SyncQuoteWithDealFinder(ctx, quoteID, p.guardedDealFinder(quoteID))
	if err != nil {
		return nil, err
	}
	if !result.Skipped && result.DealItemID != "" {
		p.existence.Remember(quoteID, result.DealItemID, "")
	}
	return result, nil
}

func (p *WebhookProcessor) processDeleted(ctx context.Context, quoteID int64) (*models.SyncResult, error) {
	deleted, err := p.manager.DeleteQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	p.existence.Forget(quoteID)

	message := fmt.Sprintf("quote %d deleted, no board deal to remove", quoteID)
	if deleted {
		message = fmt.Sprintf("quote %d deleted, board deal removed", quoteID)
	}
	return &models.SyncResult{Success: true, Message: message, Processed: 1}, nil
}

// guardedDealFinder builds the deal lookup used during webhook-driven
// syncs. The board's read-after-write consistency lags, so a single
// search can miss a deal another delivery created moments ago; that is
// exactly how duplicates get made. The finder checks the existence
// cache first and otherwise retries the board search with increasing
// delays before it lets the upserter conclude the deal is absent.
func (p *WebhookProcessor) guardedDealFinder(quoteID int64) DealFinder {
	return func(ctx context.Context, foreignID string) (*models.BoardItem, error) {
		if entry, ok := p.existence.Lookup(quoteID); ok {
			metrics.CacheOperations.WithLabelValues("existence", "hit").Inc()
			return &models.BoardItem{ID: entry.ItemID, Name: entry.ItemName}, nil
		}
		metrics.CacheOperations.WithLabelValues("existence", "miss").Inc()

		var found *models.BoardItem
		err := retryLinear(ctx, p.cfg.ConfirmAttempts, p.step, func() error {
			item, err := p.resolver.FindByForeignID(ctx, p.cfg.DealBoardID, p.cfg.DealForeignKey, foreignID, p.cfg.DealStageColumn)
			if err != nil {
				return err
			}
			found = item
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("deal lookup for quote %d: %w", quoteID, err)
		}

		p.existence.Remember(quoteID, found.ID, found.Name)
		logging.Ctx(ctx).Debug().Int64("quote_id", quoteID).Str("item_id", found.ID).Msg("Deal confirmed on board before upsert")
		return found, nil
	}
}
