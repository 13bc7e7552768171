// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// Resolver locates board items by the source-system identifier stored
// in a dedicated text column. Boards have no server-side filter on that
// column, so lookup is a cursor-paginated linear scan capped at a page
// ceiling.
type Resolver struct {
	client   BoardAPI
	pageSize int
	maxPages int
}

// NewResolver creates a resolver. pageSize and maxPages fall back to
// 100 and 40 when zero.
func NewResolver(client BoardAPI, pageSize, maxPages int) *Resolver {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxPages <= 0 {
		maxPages = 40
	}
	return &Resolver{client: client, pageSize: pageSize, maxPages: maxPages}
}

// FindByForeignID scans a board for the item whose foreign-key column
// exactly matches foreignID after trimming. Blank column values never
// match. Extra column IDs are projected onto the returned item so the
// caller can inspect current values without a second fetch. Returns
// ErrNotFound when the board is exhausted or the page ceiling is
// reached without a match.
func (r *Resolver) FindByForeignID(ctx context.Context, boardID int64, columnID, foreignID string, extraColumns ...string) (*models.BoardItem, error) {
	want := strings.TrimSpace(foreignID)
	if want == "" {
		return nil, &ValidationError{Field: "foreignID", Value: foreignID, Reason: "must not be blank"}
	}

	projection := make([]string, 0, 1+len(extraColumns))
	projection = append(projection, columnID)
	for _, extra := range extraColumns {
		if extra != "" {
			projection = append(projection, extra)
		}
	}
	cursor := ""
	pages := 0
	for pages < r.maxPages {
		page, err := r.client.SearchPage(ctx, boardID, cursor, r.pageSize, projection)
		if err != nil {
			return nil, fmt.Errorf("search board %d: %w", boardID, err)
		}
		pages++

		for i := range page.Items {
			item := &page.Items[i]
			if got := item.ForeignID(columnID); got != "" && got == want {
				metrics.BoardSearchPages.Observe(float64(pages))
				return item, nil
			}
		}

		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	metrics.BoardSearchPages.Observe(float64(pages))
	logging.Debug().
		Int64("board_id", boardID).
		Str("column_id", columnID).
		Str("foreign_id", want).
		Int("pages_scanned", pages).
		Msg("No board item matched foreign ID")
	return nil, fmt.Errorf("board %d item with %s=%q: %w", boardID, columnID, want, ErrNotFound)
}
