// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package cache provides the in-memory TTL caches backing webhook
// deduplication: a short-window debounce cache that collapses duplicate
// event deliveries, and a longer-lived existence cache that remembers
// which quotes already have a board counterpart.
//
// Entries expire lazily on read; every write additionally triggers an
// opportunistic sweep of expired entries, bounding memory without a
// background scheduler. TryClaim is the single atomic check-and-set used
// on the webhook path, so two racing deliveries can never both claim the
// same event key.
//
// Caches are constructed in main and injected; there is no package-level
// instance. Tests substitute the clock via WithClock.
package cache
