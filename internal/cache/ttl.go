// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its expiry deadline.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Claims    int64
	Rejects   int64
	TotalKeys int64
	LastSweep time.Time
}

// TTLCache is a thread-safe in-memory cache with per-entry expiry.
//
// Expired entries are removed lazily when read and eagerly whenever a
// write triggers the opportunistic sweep. There is no background cleanup
// goroutine; memory stays bounded as long as the cache keeps being
// written to, which holds for both webhook caches.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	stats   Stats

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock replaces the cache's time source. Tests use this to step
// through TTL windows without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		c.now = now
	}
}

// NewTTL creates a TTL cache whose entries expire after ttl.
func NewTTL(ttl time.Duration, opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a fresh value by key. An expired entry is deleted and
// reported as a miss.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
		return nil, false
	}

	c.stats.Hits++
	return entry.Data, true
}

// Set stores a value with the default TTL and sweeps expired entries.
func (c *TTLCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL and sweeps expired entries.
func (c *TTLCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.sweepLocked()
}

// TryClaim atomically claims a key for the debounce window. It returns
// true when the caller now owns processing for that key; false means the
// key was claimed within the window and the event should be suppressed.
//
// The check and the set happen under one lock acquisition. Two racing
// deliveries of the same event can never both see true.
func (c *TTLCache) TryClaim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, exists := c.entries[key]; exists && now.Before(entry.ExpiresAt) {
		c.stats.Rejects++
		return false
	}

	c.entries[key] = Entry{
		Data:      now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.stats.Claims++
	c.sweepLocked()
	return true
}

// Delete removes a key. Safe to call for absent keys.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
	}
}

// Clear removes all entries.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.stats.TotalKeys = 0
}

// Len returns the number of entries currently held, expired or not.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache counters.
func (c *TTLCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.TotalKeys = int64(len(c.entries))
	return stats
}

// HitRate returns the cache hit rate as a percentage.
func (c *TTLCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// sweepLocked removes every expired entry. Caller must hold mu.
func (c *TTLCache) sweepLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastSweep = now
}
