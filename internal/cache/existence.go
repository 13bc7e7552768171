// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package cache

import (
	"strconv"
	"time"
)

// ExistenceEntry records that a quote already has a board counterpart, so
// repeated webhook deliveries within the TTL window skip the paginated
// board search entirely.
type ExistenceEntry struct {
	QuoteID   int64
	ItemID    string
	ItemName  string
	UpdatedAt time.Time
}

// ExistenceCache is a typed wrapper around TTLCache keyed by quote ID.
type ExistenceCache struct {
	cache *TTLCache
}

// NewExistence creates an existence cache with the given TTL.
func NewExistence(ttl time.Duration, opts ...Option) *ExistenceCache {
	return &ExistenceCache{cache: NewTTL(ttl, opts...)}
}

// Lookup returns the cached board item for a quote, if fresh.
func (e *ExistenceCache) Lookup(quoteID int64) (ExistenceEntry, bool) {
	value, ok := e.cache.Get(existenceKey(quoteID))
	if !ok {
		return ExistenceEntry{}, false
	}
	entry, ok := value.(ExistenceEntry)
	return entry, ok
}

// Remember records that quoteID is mirrored by the given board item.
func (e *ExistenceCache) Remember(quoteID int64, itemID, itemName string) {
	e.cache.Set(existenceKey(quoteID), ExistenceEntry{
		QuoteID:   quoteID,
		ItemID:    itemID,
		ItemName:  itemName,
		UpdatedAt: e.cache.now(),
	})
}

// Forget drops the cached entry for a quote, typically after a delete
// event so the next webhook re-searches the board.
func (e *ExistenceCache) Forget(quoteID int64) {
	e.cache.Delete(existenceKey(quoteID))
}

// GetStats exposes the underlying cache counters.
func (e *ExistenceCache) GetStats() Stats {
	return e.cache.GetStats()
}

func existenceKey(quoteID int64) string {
	return strconv.FormatInt(quoteID, 10)
}
