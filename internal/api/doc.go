// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package api provides the HTTP surface of QuoteBridge: webhook
// receivers for the two remote platforms, manual sync triggers, and
// health endpoints. Routing uses Chi with per-group rate limits; every
// response is wrapped in the uniform JSON envelope from
// internal/models.
package api
