// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/models"
)

func testUpserterConfig() UpserterConfig {
	return UpserterConfig{
		AccountBoardID: 1,
		ContactBoardID: 2,
		DealBoardID:    3,
		Columns: BoardColumnIDs{
			AccountForeignKey: "text_acct",
			ContactForeignKey: "text_contact",
			DealForeignKey:    "text_deal",
			ContactEmail:      "email",
			ContactPhone:      "phone",
			ContactAccount:    "rel_account",
			DealValue:         "numbers",
			DealStage:         "status",
			DealDueDate:       "date",
			DealContacts:      "rel_contacts",
			DealAccount:       "rel_deal_account",
			DealOwner:         "person",
		},
		DefaultCountryCode: "AU",
	}
}

func newTestUpserter(board *fakeBoard) *Upserter {
	cfg := testUpserterConfig()
	return NewUpserter(board, NewResolver(board, 10, 40), cfg)
}

func TestUpsertAccountCreatesOnce(t *testing.T) {
	board := newFakeBoard()
	u := newTestUpserter(board)
	payload := &AccountPayload{ForeignID: 300, Name: "Acme Industrial"}

	first, err := u.UpsertAccount(context.Background(), payload)
	if err != nil {
		t.Fatalf("first UpsertAccount() error = %v", err)
	}
	if !first.Created {
		t.Fatal("first upsert should create")
	}

	second, err := u.UpsertAccount(context.Background(), payload)
	if err != nil {
		t.Fatalf("second UpsertAccount() error = %v", err)
	}
	if second.Created {
		t.Error("second upsert should reuse, not create")
	}
	if second.ItemID != first.ItemID {
		t.Errorf("second ItemID = %q, want %q", second.ItemID, first.ItemID)
	}
	if len(board.creates) != 1 {
		t.Errorf("creates = %d, want 1", len(board.creates))
	}
}

func TestUpsertContactCreatesWithDetail(t *testing.T) {
	board := newFakeBoard()
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "Pat@Acme.Example", Phone: "(03) 9555 1234"}

	result, err := u.UpsertContact(context.Background(), payload, "5000")
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if !result.Created {
		t.Fatal("expected creation")
	}

	created := board.creates[0]
	if created.boardID != 2 {
		t.Errorf("boardID = %d, want 2", created.boardID)
	}
	if email, ok := created.columns["email"].(EmailValue); !ok || email != "pat@acme.example" {
		t.Errorf("email column = %v", created.columns["email"])
	}
	if phone, ok := created.columns["phone"].(PhoneValue); !ok || phone.Number != "0395551234" {
		t.Errorf("phone column = %v", created.columns["phone"])
	}
	if _, ok := created.columns["rel_account"]; !ok {
		t.Error("account relation column missing")
	}
}

func TestUpsertContactOmitsInvalidDetail(t *testing.T) {
	board := newFakeBoard()
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "not-an-email", Phone: "1234"}

	if _, err := u.UpsertContact(context.Background(), payload, ""); err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}

	created := board.creates[0]
	if _, ok := created.columns["email"]; ok {
		t.Error("invalid email should be omitted, not sent")
	}
	if _, ok := created.columns["phone"]; ok {
		t.Error("invalid phone should be omitted, not sent")
	}
}

func TestUpsertContactBackfillsOnlyEmptyColumns(t *testing.T) {
	board := newFakeBoard()
	board.addItem(2, models.BoardItem{
		ID:   "e1",
		Name: "Pat Lee",
		ColumnValues: map[string]string{
			"text_contact": "10",
			"email":        "existing@acme.example",
			"phone":        "",
			"rel_account":  "",
		},
	})
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "new@acme.example", Phone: "0395551234"}

	result, err := u.UpsertContact(context.Background(), payload, "5000")
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if result.Created || result.ItemID != "e1" {
		t.Fatalf("result = %+v, want reuse of e1", result)
	}

	if len(board.creates) != 0 {
		t.Fatalf("creates = %d, want 0", len(board.creates))
	}
	touched := make(map[string]bool)
	for _, update := range board.updates {
		touched[update.columnID] = true
		if update.itemID != "e1" {
			t.Errorf("update targeted %q, want e1", update.itemID)
		}
	}
	if touched["email"] {
		t.Error("populated email column must not be overwritten")
	}
	if !touched["phone"] || !touched["rel_account"] {
		t.Errorf("empty columns not backfilled, touched = %v", touched)
	}
}

// The account relation is best-effort: a rejected link must not fail
// the contact upsert or stop the other backfill columns.
func TestUpsertContactAccountLinkFailureNonFatal(t *testing.T) {
	board := newFakeBoard()
	board.addItem(2, models.BoardItem{
		ID:   "e1",
		Name: "Pat Lee",
		ColumnValues: map[string]string{
			"text_contact": "10",
			"email":        "",
			"phone":        "",
			"rel_account":  "",
		},
	})
	board.updateErrColumns = map[string]error{"rel_account": errors.New("link rejected")}
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "pat@acme.example", Phone: "0395551234"}

	result, err := u.UpsertContact(context.Background(), payload, "5000")
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if result.ItemID != "e1" {
		t.Fatalf("result = %+v, want reuse of e1", result)
	}

	touched := make(map[string]bool)
	for _, update := range board.updates {
		touched[update.columnID] = true
	}
	if !touched["email"] || !touched["phone"] {
		t.Errorf("email and phone must still be backfilled, touched = %v", touched)
	}
	if touched["rel_account"] {
		t.Error("rejected relation update should not be recorded as applied")
	}
}

func TestUpsertContactLogsDroppedInvalidDetail(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	defer logging.Init(logging.DefaultConfig())

	board := newFakeBoard()
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "not-an-email", Phone: "1234"}

	if _, err := u.UpsertContact(context.Background(), payload, ""); err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Dropping invalid contact email") {
		t.Errorf("invalid email not logged, output = %q", out)
	}
	if !strings.Contains(out, "Dropping invalid contact phone") {
		t.Errorf("invalid phone not logged, output = %q", out)
	}
}

func TestUpsertContactNoOpWhenFullyPopulated(t *testing.T) {
	board := newFakeBoard()
	board.addItem(2, models.BoardItem{
		ID: "e1",
		ColumnValues: map[string]string{
			"text_contact": "10",
			"email":        "existing@acme.example",
			"phone":        "0395551234",
			"rel_account":  "Acme",
		},
	})
	u := newTestUpserter(board)
	payload := &ContactPayload{ForeignID: 10, Name: "Pat Lee", Email: "new@acme.example", Phone: "0400000000"}

	if _, err := u.UpsertContact(context.Background(), payload, "5000"); err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if len(board.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(board.updates))
	}
}

func TestUpsertDealCreateSetsStageInSecondCall(t *testing.T) {
	board := newFakeBoard()
	u := newTestUpserter(board)
	payload := &DealPayload{ForeignID: 1001, Name: "Quote #1001 - Generator", Value: 25000, Stage: StageProposalSent, DueDate: "2026-09-30", OwnerID: 9001}

	result, err := u.UpsertDeal(context.Background(), payload, "5000", []string{"6000", "6001"})
	if err != nil {
		t.Fatalf("UpsertDeal() error = %v", err)
	}
	if !result.Created {
		t.Fatal("expected creation")
	}

	created := board.creates[0]
	if _, ok := created.columns["status"]; ok {
		t.Error("stage must not be part of the create call")
	}
	if len(board.updates) != 1 {
		t.Fatalf("updates = %d, want 1 stage update", len(board.updates))
	}
	update := board.updates[0]
	if update.columnID != "status" || update.itemID != result.ItemID {
		t.Errorf("stage update = %+v", update)
	}
	if stage, ok := update.value.(StatusValue); !ok || string(stage) != StageProposalSent {
		t.Errorf("stage value = %v", update.value)
	}
}

func TestUpsertDealExistingOnlyTerminalTransitions(t *testing.T) {
	tests := []struct {
		name         string
		currentStage string
		incoming     string
		wantUpdate   bool
	}{
		{"non-terminal churn ignored", StageDiscovery, StageProposalSent, false},
		{"same terminal stage ignored", StageWon, StageWon, false},
		{"transition to won", StageProposalSent, StageWon, true},
		{"transition to lost", StageDiscovery, StageLost, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newFakeBoard()
			board.addItem(3, models.BoardItem{
				ID:           "d1",
				ColumnValues: map[string]string{"text_deal": "1001", "status": tt.currentStage},
			})
			u := newTestUpserter(board)
			payload := &DealPayload{ForeignID: 1001, Name: "Quote #1001", Value: 25000, Stage: tt.incoming}

			result, err := u.UpsertDeal(context.Background(), payload, "", nil)
			if err != nil {
				t.Fatalf("UpsertDeal() error = %v", err)
			}
			if result.Created || result.ItemID != "d1" {
				t.Fatalf("result = %+v, want reuse of d1", result)
			}
			if got := len(board.updates) == 1; got != tt.wantUpdate {
				t.Errorf("stage updated = %v, want %v", got, tt.wantUpdate)
			}
			if len(board.creates) != 0 {
				t.Errorf("creates = %d, want 0", len(board.creates))
			}
		})
	}
}

func TestDeleteDeal(t *testing.T) {
	tests := []struct {
		name       string
		stage      string
		wantDelete bool
	}{
		{"in-flight deal deleted", StageProposalSent, true},
		{"won deal kept", StageWon, false},
		{"lost deal kept", StageLost, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newFakeBoard()
			board.addItem(3, models.BoardItem{
				ID:           "d1",
				ColumnValues: map[string]string{"text_deal": "1001", "status": tt.stage},
			})
			u := newTestUpserter(board)

			deleted, err := u.DeleteDeal(context.Background(), 1001)
			if err != nil {
				t.Fatalf("DeleteDeal() error = %v", err)
			}
			if deleted != tt.wantDelete {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDelete)
			}
			if got := len(board.deletes) == 1; got != tt.wantDelete {
				t.Errorf("board deletes = %d", len(board.deletes))
			}
		})
	}
}

func TestDeleteDealMissingQuoteIsNoOp(t *testing.T) {
	u := newTestUpserter(newFakeBoard())
	deleted, err := u.DeleteDeal(context.Background(), 404)
	if err != nil {
		t.Fatalf("DeleteDeal() error = %v", err)
	}
	if deleted {
		t.Error("nothing to delete, deleted should be false")
	}
}
