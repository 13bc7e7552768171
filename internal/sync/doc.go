// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package sync implements the quote-to-board synchronization pipeline.
//
// The pipeline, leaves first:
//
//   - FieldServiceClient / BoardClient: transport wrappers for the two
//     remote systems. The board client owns rate-limit handling; the
//     field service client is wrapped by a circuit breaker.
//   - Resolver: finds an existing board item by the quote ID stored in a
//     dedicated text column, via cursor-paginated linear scan.
//   - Upserter: per-entity create-or-reuse on top of the resolver, with
//     gap-only backfill for contacts and terminal-stage updates for deals.
//   - Classifier: pure eligibility rules (value floor, stage and status
//     allow-lists, closed-flag with terminal-keep exception).
//   - Mapper: pure translation of one quote into account, contact and
//     deal payloads.
//   - Manager: the orchestrator driving batch and single-record runs,
//     plus the periodic loop when supervised.
//   - WebhookProcessor: debounce, existence caching and multi-attempt
//     existence confirmation in front of the single-record path.
//
// Batch runs are strictly sequential: the board system's rate limiting
// makes concurrent fan-out counterproductive, and serial processing keeps
// the duplicate-creation window closed without per-key locking.
package sync
