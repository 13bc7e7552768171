// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jgreen210/quotebridge/internal/cache"
	"github.com/jgreen210/quotebridge/internal/models"
)

func newTestWebhookProcessor(fs *fakeFieldService, board *fakeBoard) *WebhookProcessor {
	cfg := testUpserterConfig()
	manager := newTestManager(fs, board)
	resolver := NewResolver(board, 10, 40)
	p := NewWebhookProcessor(manager, resolver,
		cache.NewTTL(30*time.Second),
		cache.NewExistence(5*time.Minute),
		WebhookProcessorConfig{
			DealBoardID:     cfg.DealBoardID,
			DealForeignKey:  cfg.Columns.DealForeignKey,
			DealStageColumn: cfg.Columns.DealStage,
			ConfirmAttempts: 3,
		})
	p.step = time.Millisecond
	return p
}

func TestProcessEventSyncsQuote(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	seedQuote(fs, 1001, 25000)

	p := newTestWebhookProcessor(fs, board)
	result, err := p.ProcessEvent(context.Background(), models.EventQuoteCreated, 1001)
	if err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}
	if result.Skipped {
		t.Fatalf("result = %+v, want synced", result)
	}
	if len(board.items[3]) != 1 {
		t.Errorf("deal board has %d items, want 1", len(board.items[3]))
	}

	// The deal was confirmed and remembered.
	if _, ok := p.existence.Lookup(1001); !ok {
		t.Error("existence cache should remember the confirmed deal")
	}
}

func TestProcessEventDebouncesDuplicates(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	seedQuote(fs, 1001, 25000)

	p := newTestWebhookProcessor(fs, board)
	if _, err := p.ProcessEvent(context.Background(), models.EventQuoteUpdated, 1001); err != nil {
		t.Fatalf("first ProcessEvent() error = %v", err)
	}
	createsAfterFirst := len(board.creates)

	second, err := p.ProcessEvent(context.Background(), models.EventQuoteUpdated, 1001)
	if err != nil {
		t.Fatalf("second ProcessEvent() error = %v", err)
	}
	if !second.Skipped {
		t.Fatal("duplicate inside the debounce window should be skipped")
	}
	if !strings.Contains(second.Message, "debounce") {
		t.Errorf("message = %q", second.Message)
	}
	if len(board.creates) != createsAfterFirst {
		t.Error("duplicate event must not touch the board")
	}
}

func TestProcessEventDistinctEventTypesNotDebounced(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	seedQuote(fs, 1001, 25000)

	p := newTestWebhookProcessor(fs, board)
	if _, err := p.ProcessEvent(context.Background(), models.EventQuoteCreated, 1001); err != nil {
		t.Fatalf("created event error = %v", err)
	}
	result, err := p.ProcessEvent(context.Background(), models.EventQuoteStatus, 1001)
	if err != nil {
		t.Fatalf("status event error = %v", err)
	}
	if result.Skipped {
		t.Error("a different event type for the same quote is not a duplicate")
	}
}

func TestProcessEventIneligibleQuoteSkipped(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	seedQuote(fs, 1001, 500)

	p := newTestWebhookProcessor(fs, board)
	result, err := p.ProcessEvent(context.Background(), models.EventQuoteCreated, 1001)
	if err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}
	if !result.Skipped {
		t.Fatal("ineligible quote should produce a skipped result")
	}
	if _, ok := p.existence.Lookup(1001); ok {
		t.Error("skipped quote must not be recorded as existing")
	}
}

// A lagging board index must not cause racing deliveries for the same
// new quote to create two deals: the second delivery has to find the
// first one's deal through the existence cache or the retried search
// before it is allowed to create.
func TestProcessEventRacingDeliveriesCreateOneDeal(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	seedQuote(fs, 77, 25000)
	board.blindBoards = map[int64]bool{3: true}

	p := newTestWebhookProcessor(fs, board)
	if _, err := p.ProcessEvent(context.Background(), models.EventQuoteCreated, 77); err != nil {
		t.Fatalf("created event error = %v", err)
	}
	if _, err := p.ProcessEvent(context.Background(), models.EventQuoteUpdated, 77); err != nil {
		t.Fatalf("updated event error = %v", err)
	}

	dealCreates := 0
	for _, c := range board.creates {
		if c.boardID == 3 {
			dealCreates++
		}
	}
	if dealCreates != 1 {
		t.Errorf("deal creates = %d, want 1", dealCreates)
	}
}

func TestGuardedDealFinderRetriesBeforeConcludingAbsent(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	board.blindBoards = map[int64]bool{3: true}

	p := newTestWebhookProcessor(fs, board)
	_, err := p.guardedDealFinder(42)(context.Background(), "42")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound after retries", err)
	}
	if board.searchCalls != 3 {
		t.Errorf("search calls = %d, want 3 before concluding the deal is absent", board.searchCalls)
	}
}

func TestGuardedDealFinderUsesExistenceCache(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()

	p := newTestWebhookProcessor(fs, board)
	p.existence.Remember(42, "d7", "Quote #42 - Job")

	item, err := p.guardedDealFinder(42)(context.Background(), "42")
	if err != nil {
		t.Fatalf("finder error = %v", err)
	}
	if item.ID != "d7" {
		t.Errorf("item ID = %q, want d7", item.ID)
	}
	if board.searchCalls != 0 {
		t.Errorf("search calls = %d, cache hit must skip the board scan", board.searchCalls)
	}
}

func TestProcessEventDeleted(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	board.addItem(3, models.BoardItem{
		ID:           "d1",
		ColumnValues: map[string]string{"text_deal": "1001", "status": StageProposalSent},
	})

	p := newTestWebhookProcessor(fs, board)
	p.existence.Remember(1001, "d1", "Quote #1001")

	result, err := p.ProcessEvent(context.Background(), models.EventQuoteDeleted, 1001)
	if err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}
	if !strings.Contains(result.Message, "removed") {
		t.Errorf("message = %q", result.Message)
	}
	if len(board.deletes) != 1 {
		t.Errorf("deletes = %d, want 1", len(board.deletes))
	}
	if _, ok := p.existence.Lookup(1001); ok {
		t.Error("existence entry should be forgotten after deletion")
	}
}

func TestProcessEventDeletedKeepsTerminalDeal(t *testing.T) {
	fs := newFakeFieldService()
	board := newFakeBoard()
	board.addItem(3, models.BoardItem{
		ID:           "d1",
		ColumnValues: map[string]string{"text_deal": "1001", "status": StageWon},
	})

	p := newTestWebhookProcessor(fs, board)
	result, err := p.ProcessEvent(context.Background(), models.EventQuoteDeleted, 1001)
	if err != nil {
		t.Fatalf("ProcessEvent() error = %v", err)
	}
	if len(board.deletes) != 0 {
		t.Error("won deal must be kept after source deletion")
	}
	if strings.Contains(result.Message, "deal removed") {
		t.Errorf("message = %q", result.Message)
	}
}
