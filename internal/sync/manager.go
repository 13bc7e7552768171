// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// quoteListColumns is the projection requested when scanning quotes in
// batch mode. The summary carries enough to pre-filter by value before
// paying for a full quote fetch.
var quoteListColumns = []string{"ID", "Total", "Stage", "Status", "IsClosed"}

// ManagerConfig carries the sync policy knobs.
type ManagerConfig struct {
	MinQuoteValue float64
	BatchLimit    int
	Interval      time.Duration
}

// Manager orchestrates quote synchronization. Records within a batch
// are processed sequentially; one failing quote is recorded and the
// batch moves on.
type Manager struct {
	fieldService FieldServiceAPI
	board        BoardAPI
	classifier   *Classifier
	mapper       *Mapper
	upserter     *Upserter
	cfg          ManagerConfig
}

// NewManager creates a sync manager.
func NewManager(fieldService FieldServiceAPI, board BoardAPI, classifier *Classifier, mapper *Mapper, upserter *Upserter, cfg ManagerConfig) *Manager {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 50
	}
	return &Manager{
		fieldService: fieldService,
		board:        board,
		classifier:   classifier,
		mapper:       mapper,
		upserter:     upserter,
		cfg:          cfg,
	}
}

// SyncAll scans open quotes and synchronizes every eligible one, up to
// limit records (0 uses the configured batch limit). Both remote
// systems are pinged before any work starts so a dead dependency fails
// the run fast instead of half-way through.
func (m *Manager) SyncAll(ctx context.Context, limit int) (*models.SyncResult, error) {
	if limit <= 0 {
		limit = m.cfg.BatchLimit
	}

	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx)
	start := time.Now()
	defer func() {
		metrics.ObserveSyncRun("batch", time.Since(start))
	}()

	if err := m.pingRemotes(ctx); err != nil {
		return nil, err
	}

	result := &models.SyncResult{Success: true, RunID: runID}
	log.Info().Int("limit", limit).Msg("Starting batch sync run")

	for page := 1; result.Processed < limit; page++ {
		summaries, err := m.fieldService.ListQuotes(ctx, page, false, quoteListColumns)
		if err != nil {
			return nil, fmt.Errorf("list quotes page %d: %w", page, err)
		}
		if len(summaries) == 0 {
			break
		}

		for i := range summaries {
			if result.Processed >= limit {
				break
			}
			summary := &summaries[i]
			if !m.classifier.ValuePasses(summary, m.cfg.MinQuoteValue) {
				continue
			}

			result.Processed++
			if err := m.syncQuoteByID(ctx, summary.ID, result); err != nil {
				result.Success = false
				result.Errors = append(result.Errors, fmt.Sprintf("quote %d: %v", summary.ID, err))
				metrics.SyncRecordsProcessed.WithLabelValues("batch", "error").Inc()
				log.Error().Err(err).Int64("quote_id", summary.ID).Msg("Quote sync failed, continuing batch")
			} else {
				metrics.SyncRecordsProcessed.WithLabelValues("batch", "ok").Inc()
			}
		}
	}

	result.Message = fmt.Sprintf("processed %d quotes, %d errors", result.Processed, len(result.Errors))
	log.Info().
		Int("processed", result.Processed).
		Int("errors", len(result.Errors)).
		Dur("elapsed", time.Since(start)).
		Msg("Batch sync run finished")
	return result, nil
}

// SyncQuote synchronizes a single quote by ID. An ineligible quote is
// not an error: the result comes back with Skipped set and the reason
// in Message.
func (m *Manager) SyncQuote(ctx context.Context, quoteID int64) (*models.SyncResult, error) {
	return m.SyncQuoteWithDealFinder(ctx, quoteID, nil)
}

// SyncQuoteWithDealFinder is SyncQuote with the deal existence lookup
// swapped out. The webhook path passes a finder that guards against
// duplicate deal creation on racing deliveries.
func (m *Manager) SyncQuoteWithDealFinder(ctx context.Context, quoteID int64, find DealFinder) (*models.SyncResult, error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.GenerateRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	start := time.Now()
	defer func() {
		metrics.ObserveSyncRun("single", time.Since(start))
	}()

	quote, err := m.fieldService.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %d: %w", quoteID, err)
	}

	if !m.classifier.IsSyncEligible(quote, m.cfg.MinQuoteValue) {
		reason := m.classifier.SkipReason(quote, m.cfg.MinQuoteValue)
		metrics.SyncRecordsProcessed.WithLabelValues("single", "skipped").Inc()
		logging.Ctx(ctx).Info().Int64("quote_id", quoteID).Str("reason", reason).Msg("Quote not eligible, skipping")
		return &models.SyncResult{
			Success: true,
			Skipped: true,
			RunID:   runID,
			Message: fmt.Sprintf("quote %d skipped: %s", quoteID, reason),
		}, nil
	}

	result := &models.SyncResult{Success: true, RunID: runID, Processed: 1}
	if err := m.syncQuote(ctx, quote, result, find); err != nil {
		metrics.SyncRecordsProcessed.WithLabelValues("single", "error").Inc()
		return nil, err
	}
	metrics.SyncRecordsProcessed.WithLabelValues("single", "ok").Inc()
	if len(result.Errors) > 0 {
		result.Message = fmt.Sprintf("quote %d synchronized with %d errors", quoteID, len(result.Errors))
	} else {
		result.Message = fmt.Sprintf("quote %d synchronized", quoteID)
	}
	return result, nil
}

// DeleteQuote handles a quote removed at the source. The matching deal
// is deleted unless it reached a terminal stage.
func (m *Manager) DeleteQuote(ctx context.Context, quoteID int64) (bool, error) {
	return m.upserter.DeleteDeal(ctx, quoteID)
}

func (m *Manager) syncQuoteByID(ctx context.Context, quoteID int64, result *models.SyncResult) error {
	quote, err := m.fieldService.GetQuote(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	if !m.classifier.IsSyncEligible(quote, m.cfg.MinQuoteValue) {
		logging.Ctx(ctx).Debug().
			Int64("quote_id", quoteID).
			Str("reason", m.classifier.SkipReason(quote, m.cfg.MinQuoteValue)).
			Msg("Quote filtered after full fetch")
		return nil
	}
	return m.syncQuote(ctx, quote, result, nil)
}

// syncQuote pushes one eligible quote onto the boards: account first,
// then contacts, then the deal linked to both. A nil finder uses the
// upserter's single board search for the deal.
func (m *Manager) syncQuote(ctx context.Context, quote *models.Quote, result *models.SyncResult, find DealFinder) error {
	customerContact, siteContact, err := m.fetchContacts(ctx, quote)
	if err != nil {
		return err
	}

	mapping := m.mapper.ToSyncMapping(quote, customerContact, siteContact)

	// Some quotes carry a bare customer reference; the full customer
	// record has the company name.
	if mapping.Account.Name == "" && quote.Customer.ID != 0 {
		customer, err := m.fieldService.GetCustomer(ctx, quote.Customer.ID)
		if err != nil {
			return fmt.Errorf("customer %d: %w", quote.Customer.ID, err)
		}
		mapping.Account.Name = customer.CompanyName
	}

	account, err := m.upserter.UpsertAccount(ctx, &mapping.Account)
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	tally(&result.Created.Accounts, &result.Updated.Accounts, account.Created)

	// A contact that fails to upsert is recorded and left off the deal;
	// the remaining contacts and the deal itself still go through.
	contactItemIDs := make([]string, 0, len(mapping.Contacts))
	for i := range mapping.Contacts {
		contact, err := m.upserter.UpsertContact(ctx, &mapping.Contacts[i], account.ItemID)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("quote %d: contact %d: %v", quote.ID, mapping.Contacts[i].ForeignID, err))
			logging.Ctx(ctx).Warn().Err(err).
				Int64("quote_id", quote.ID).
				Int64("contact_id", mapping.Contacts[i].ForeignID).
				Msg("Contact upsert failed, continuing with record")
			continue
		}
		tally(&result.Created.Contacts, &result.Updated.Contacts, contact.Created)
		contactItemIDs = append(contactItemIDs, contact.ItemID)
	}

	deal, err := m.upserter.UpsertDealWithFinder(ctx, &mapping.Deal, account.ItemID, contactItemIDs, find)
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	tally(&result.Created.Deals, &result.Updated.Deals, deal.Created)
	result.DealItemID = deal.ItemID

	logging.Ctx(ctx).Info().
		Int64("quote_id", quote.ID).
		Str("deal_item_id", deal.ItemID).
		Bool("deal_created", deal.Created).
		Msg("Quote synchronized")
	return nil
}

// fetchContacts loads the customer and site contact records for a
// quote. A missing contact reference is fine; a referenced contact that
// fails to load is not.
func (m *Manager) fetchContacts(ctx context.Context, quote *models.Quote) (customerContact, siteContact *models.Contact, err error) {
	if ref := quote.CustomerContact; ref != nil && ref.ID != 0 {
		customerContact, err = m.fieldService.GetContact(ctx, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("customer contact %d: %w", ref.ID, err)
		}
	}
	if ref := quote.SiteContact; ref != nil && ref.ID != 0 {
		if quote.CustomerContact != nil && ref.ID == quote.CustomerContact.ID {
			return customerContact, customerContact, nil
		}
		siteContact, err = m.fieldService.GetContact(ctx, ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("site contact %d: %w", ref.ID, err)
		}
	}
	return customerContact, siteContact, nil
}

func (m *Manager) pingRemotes(ctx context.Context) error {
	if err := m.fieldService.Ping(ctx); err != nil {
		return fmt.Errorf("field service unreachable: %w", err)
	}
	if err := m.board.Ping(ctx); err != nil {
		return fmt.Errorf("board unreachable: %w", err)
	}
	return nil
}

func tally(created, updated *int, wasCreated bool) {
	if wasCreated {
		*created++
	} else {
		*updated++
	}
}

// Serve runs periodic batch syncs until the context is canceled,
// satisfying the supervisor service contract. A zero interval disables
// the loop.
func (m *Manager) Serve(ctx context.Context) error {
	if m.cfg.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", m.cfg.Interval).Msg("Periodic sync loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.SyncAll(ctx, 0); err != nil {
				logging.Error().Err(err).Msg("Periodic sync run failed")
			}
		}
	}
}

func (m *Manager) String() string { return "sync-manager" }
