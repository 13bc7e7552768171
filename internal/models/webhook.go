// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package models

import "strings"

// Quote event types delivered by the field service webhook.
const (
	EventQuoteCreated = "quote.created"
	EventQuoteUpdated = "quote.updated"
	EventQuoteStatus  = "quote.status"
	EventQuoteDeleted = "quote.deleted"
)

// FieldServiceWebhook is the change notification posted by the field
// service platform. ID is the event type ("quote.updated" etc); non-quote
// event types are acknowledged and ignored.
type FieldServiceWebhook struct {
	ID        string           `json:"ID"`
	Reference WebhookReference `json:"reference"`
}

// WebhookReference identifies the record an event refers to. Both IDs are
// required for quote events.
type WebhookReference struct {
	QuoteID   int64 `json:"quoteID"`
	CompanyID int64 `json:"companyID"`
}

// IsQuoteEvent reports whether the event type is in the quote.* family.
func (w *FieldServiceWebhook) IsQuoteEvent() bool {
	return strings.HasPrefix(w.ID, "quote.")
}

// BoardWebhook is the verification payload posted by the board platform.
// A non-empty Challenge must be echoed back verbatim; anything else is
// acknowledged and dropped (the sync is one-way).
type BoardWebhook struct {
	Challenge string `json:"challenge,omitempty"`
}
