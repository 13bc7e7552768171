// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// BoardColumnIDs names the board columns written by the upserters.
type BoardColumnIDs struct {
	AccountForeignKey string
	ContactForeignKey string
	DealForeignKey    string
	ContactEmail      string
	ContactPhone      string
	ContactAccount    string
	DealValue         string
	DealStage         string
	DealDueDate       string
	DealContacts      string
	DealAccount       string
	DealOwner         string
}

// UpserterConfig carries the board topology for the upserter.
type UpserterConfig struct {
	AccountBoardID     int64
	ContactBoardID     int64
	DealBoardID        int64
	Columns            BoardColumnIDs
	DefaultCountryCode string
}

// UpsertResult reports the board item an upsert resolved to.
type UpsertResult struct {
	ItemID  string
	Created bool
}

// Upserter materializes account, contact, and deal records on their
// boards. Each kind is keyed by the source identifier stored in a text
// column; a record that already exists is reused rather than
// duplicated, so replaying the same source quote is idempotent.
type Upserter struct {
	board    BoardAPI
	resolver *Resolver
	cfg      UpserterConfig
}

// NewUpserter creates an upserter.
func NewUpserter(board BoardAPI, resolver *Resolver, cfg UpserterConfig) *Upserter {
	return &Upserter{board: board, resolver: resolver, cfg: cfg}
}

// UpsertAccount ensures an account item exists for the payload and
// returns its board item ID. Existing accounts are reused untouched.
func (u *Upserter) UpsertAccount(ctx context.Context, payload *AccountPayload) (*UpsertResult, error) {
	foreignID := strconv.FormatInt(payload.ForeignID, 10)
	existing, err := u.resolver.FindByForeignID(ctx, u.cfg.AccountBoardID, u.cfg.Columns.AccountForeignKey, foreignID)
	if err == nil {
		metrics.UpsertOperations.WithLabelValues("account", "reused").Inc()
		return &UpsertResult{ItemID: existing.ID}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	columns := ColumnMap{
		u.cfg.Columns.AccountForeignKey: TextValue(foreignID),
	}
	itemID, err := u.board.CreateItem(ctx, u.cfg.AccountBoardID, payload.Name, columns)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	metrics.UpsertOperations.WithLabelValues("account", "created").Inc()
	logging.Ctx(ctx).Info().Str("item_id", itemID).Str("account", payload.Name).Msg("Created account item")
	return &UpsertResult{ItemID: itemID, Created: true}, nil
}

// UpsertContact ensures a contact item exists and is linked to its
// account. When the contact already exists, only columns that are
// currently empty are filled in; populated values are never
// overwritten.
func (u *Upserter) UpsertContact(ctx context.Context, payload *ContactPayload, accountItemID string) (*UpsertResult, error) {
	cols := u.cfg.Columns
	foreignID := strconv.FormatInt(payload.ForeignID, 10)
	existing, err := u.resolver.FindByForeignID(ctx, u.cfg.ContactBoardID, cols.ContactForeignKey, foreignID,
		cols.ContactEmail, cols.ContactPhone, cols.ContactAccount)
	if err == nil {
		return u.backfillContact(ctx, existing.ID, existing.ColumnValues, payload, accountItemID)
	}
	if !isNotFound(err) {
		return nil, err
	}

	columns := ColumnMap{
		cols.ContactForeignKey: TextValue(foreignID),
	}
	u.addContactDetail(ctx, columns, payload, accountItemID)

	itemID, err := u.board.CreateItem(ctx, u.cfg.ContactBoardID, payload.Name, columns)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	metrics.UpsertOperations.WithLabelValues("contact", "created").Inc()
	logging.Ctx(ctx).Info().Str("item_id", itemID).Str("contact", payload.Name).Msg("Created contact item")
	return &UpsertResult{ItemID: itemID, Created: true}, nil
}

func (u *Upserter) backfillContact(ctx context.Context, itemID string, current map[string]string, payload *ContactPayload, accountItemID string) (*UpsertResult, error) {
	cols := u.cfg.Columns
	updates := ColumnMap{}

	if strings.TrimSpace(current[cols.ContactEmail]) == "" {
		if email, err := CleanEmail(payload.Email); err == nil {
			updates[cols.ContactEmail] = email
		} else if payload.Email != "" {
			logging.Ctx(ctx).Warn().Err(err).Int64("contact_id", payload.ForeignID).Msg("Dropping invalid contact email")
		}
	}
	if strings.TrimSpace(current[cols.ContactPhone]) == "" {
		if phone, err := CleanPhone(payload.Phone, u.cfg.DefaultCountryCode); err == nil {
			updates[cols.ContactPhone] = phone
		} else if payload.Phone != "" {
			logging.Ctx(ctx).Warn().Err(err).Int64("contact_id", payload.ForeignID).Msg("Dropping invalid contact phone")
		}
	}
	if strings.TrimSpace(current[cols.ContactAccount]) == "" && accountItemID != "" {
		updates[cols.ContactAccount] = RelationFromItemIDs(accountItemID)
	}

	applied := 0
	for columnID, value := range updates {
		if err := u.board.UpdateColumn(ctx, u.cfg.ContactBoardID, itemID, columnID, value); err != nil {
			// The account link is best-effort; the contact record itself
			// is worth more than the relation.
			if columnID == cols.ContactAccount {
				logging.Ctx(ctx).Warn().Err(err).Str("item_id", itemID).Msg("Contact account link failed, keeping record")
				continue
			}
			return nil, fmt.Errorf("backfill contact column %s: %w", columnID, err)
		}
		applied++
	}

	if applied > 0 {
		metrics.UpsertOperations.WithLabelValues("contact", "backfilled").Inc()
		logging.Ctx(ctx).Info().Str("item_id", itemID).Int("columns", applied).Msg("Backfilled empty contact columns")
	} else {
		metrics.UpsertOperations.WithLabelValues("contact", "reused").Inc()
	}
	return &UpsertResult{ItemID: itemID}, nil
}

func (u *Upserter) addContactDetail(ctx context.Context, columns ColumnMap, payload *ContactPayload, accountItemID string) {
	cols := u.cfg.Columns
	if email, err := CleanEmail(payload.Email); err == nil {
		columns[cols.ContactEmail] = email
	} else if payload.Email != "" {
		logging.Ctx(ctx).Warn().Err(err).Int64("contact_id", payload.ForeignID).Msg("Dropping invalid contact email")
	}
	if phone, err := CleanPhone(payload.Phone, u.cfg.DefaultCountryCode); err == nil {
		columns[cols.ContactPhone] = phone
	} else if payload.Phone != "" {
		logging.Ctx(ctx).Warn().Err(err).Int64("contact_id", payload.ForeignID).Msg("Dropping invalid contact phone")
	}
	if accountItemID != "" {
		columns[cols.ContactAccount] = RelationFromItemIDs(accountItemID)
	}
}

// DealFinder locates the board deal item for a stringified quote id,
// returning a wrapped ErrNotFound when none exists. The default finder
// searches the board once; the webhook path substitutes a guarded
// finder that consults the existence cache and retries the search
// before concluding the deal is absent.
type DealFinder func(ctx context.Context, foreignID string) (*models.BoardItem, error)

func (u *Upserter) findDeal(ctx context.Context, foreignID string) (*models.BoardItem, error) {
	return u.resolver.FindByForeignID(ctx, u.cfg.DealBoardID, u.cfg.Columns.DealForeignKey, foreignID, u.cfg.Columns.DealStage)
}

// UpsertDeal ensures a deal item exists for the quote. New deals are
// created with their full column set, then the stage label is set in a
// follow-up call. Existing deals are only touched when the incoming
// stage is terminal and differs from the one on the board; in-flight
// stage churn never rewrites board state.
func (u *Upserter) UpsertDeal(ctx context.Context, payload *DealPayload, accountItemID string, contactItemIDs []string) (*UpsertResult, error) {
	return u.UpsertDealWithFinder(ctx, payload, accountItemID, contactItemIDs, nil)
}

// UpsertDealWithFinder is UpsertDeal with the existence lookup swapped
// out. A nil finder uses the single board search.
func (u *Upserter) UpsertDealWithFinder(ctx context.Context, payload *DealPayload, accountItemID string, contactItemIDs []string, find DealFinder) (*UpsertResult, error) {
	if find == nil {
		find = u.findDeal
	}
	cols := u.cfg.Columns
	foreignID := strconv.FormatInt(payload.ForeignID, 10)
	existing, err := find(ctx, foreignID)
	if err == nil {
		return u.updateDealStage(ctx, existing.ID, existing.ColumnValues[cols.DealStage], payload.Stage)
	}
	if !isNotFound(err) {
		return nil, err
	}

	columns := ColumnMap{
		cols.DealForeignKey: TextValue(foreignID),
		cols.DealValue:      NumberValue(payload.Value),
	}
	if payload.DueDate != "" {
		columns[cols.DealDueDate] = DateValue(payload.DueDate)
	}
	if accountItemID != "" {
		columns[cols.DealAccount] = RelationFromItemIDs(accountItemID)
	}
	if len(contactItemIDs) > 0 {
		columns[cols.DealContacts] = RelationFromItemIDs(contactItemIDs...)
	}
	if payload.OwnerID != 0 {
		columns[cols.DealOwner] = PersonValue(payload.OwnerID)
	}

	itemID, err := u.board.CreateItem(ctx, u.cfg.DealBoardID, payload.Name, columns)
	if err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}

	// Stage labels are set after creation so a label rejected by the
	// board leaves a usable item behind.
	if err := u.board.UpdateColumn(ctx, u.cfg.DealBoardID, itemID, cols.DealStage, StatusValue(payload.Stage)); err != nil {
		return nil, fmt.Errorf("set deal stage: %w", err)
	}

	metrics.UpsertOperations.WithLabelValues("deal", "created").Inc()
	logging.Ctx(ctx).Info().Str("item_id", itemID).Str("deal", payload.Name).Str("stage", payload.Stage).Msg("Created deal item")
	return &UpsertResult{ItemID: itemID, Created: true}, nil
}

func (u *Upserter) updateDealStage(ctx context.Context, itemID, currentStage, incomingStage string) (*UpsertResult, error) {
	if !IsTerminalStage(incomingStage) || strings.EqualFold(strings.TrimSpace(currentStage), incomingStage) {
		metrics.UpsertOperations.WithLabelValues("deal", "reused").Inc()
		return &UpsertResult{ItemID: itemID}, nil
	}

	if err := u.board.UpdateColumn(ctx, u.cfg.DealBoardID, itemID, u.cfg.Columns.DealStage, StatusValue(incomingStage)); err != nil {
		return nil, fmt.Errorf("update deal stage: %w", err)
	}

	metrics.UpsertOperations.WithLabelValues("deal", "updated").Inc()
	logging.Ctx(ctx).Info().Str("item_id", itemID).Str("from", currentStage).Str("to", incomingStage).Msg("Moved deal to terminal stage")
	return &UpsertResult{ItemID: itemID}, nil
}

// DeleteDeal removes the deal item for a quote, unless its stage is
// terminal. Won and Lost deals are kept as history.
func (u *Upserter) DeleteDeal(ctx context.Context, quoteID int64) (bool, error) {
	cols := u.cfg.Columns
	foreignID := strconv.FormatInt(quoteID, 10)
	existing, err := u.resolver.FindByForeignID(ctx, u.cfg.DealBoardID, cols.DealForeignKey, foreignID, cols.DealStage)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if IsTerminalStage(strings.TrimSpace(existing.ColumnValues[cols.DealStage])) {
		logging.Ctx(ctx).Info().Str("item_id", existing.ID).Int64("quote_id", quoteID).Msg("Keeping terminal-stage deal after source deletion")
		return false, nil
	}

	if err := u.board.DeleteItem(ctx, existing.ID); err != nil {
		return false, fmt.Errorf("delete deal: %w", err)
	}
	metrics.UpsertOperations.WithLabelValues("deal", "deleted").Inc()
	logging.Ctx(ctx).Info().Str("item_id", existing.ID).Int64("quote_id", quoteID).Msg("Deleted deal for removed quote")
	return true, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
