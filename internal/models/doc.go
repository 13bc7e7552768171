// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package models defines the data structures exchanged with the field
// service platform and the work board platform, plus the API response
// types served by QuoteBridge itself.
//
// Source-system types (Quote, QuoteSummary, Customer, Contact) mirror the
// field service REST API and are read-only: QuoteBridge never writes back
// to the source. Board types (BoardItem) mirror the board GraphQL API.
// SyncMapping is the ephemeral translation product between the two and is
// never persisted.
package models
