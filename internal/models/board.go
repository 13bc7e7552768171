// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package models

import "strings"

// BoardItem is a record (account, contact or deal) on the work board.
// The ID is opaque to QuoteBridge; it is parsed to an integer only when
// building relation column values.
//
// Each mirrored item carries exactly one dedicated text column holding the
// stringified quote ID that originated it. That column is the foreign key
// by convention and is authoritative for duplicate detection; it is never
// used for anything else.
type BoardItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// ColumnValues holds the text projection of the columns requested in
	// the search, keyed by column id. Only columns named in the field
	// projection are present.
	ColumnValues map[string]string `json:"column_values"`
}

// ForeignID returns the trimmed value of the foreign-key column, or ""
// when the column is absent or blank. Blank never matches any quote ID.
func (b *BoardItem) ForeignID(columnID string) string {
	return strings.TrimSpace(b.ColumnValues[columnID])
}

// BoardPage is one page of a cursor-paginated board search. A nil or empty
// Cursor means the collection is exhausted.
type BoardPage struct {
	Items  []BoardItem `json:"items"`
	Cursor string      `json:"cursor"`
}
