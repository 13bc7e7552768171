// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package models

// SyncCounts tallies upsert outcomes per entity kind within one run.
type SyncCounts struct {
	Accounts int `json:"accounts"`
	Contacts int `json:"contacts"`
	Deals    int `json:"deals"`
}

// SyncResult is the structured outcome of a batch or single-record sync.
// Public entry points always return one of these; they never panic out.
type SyncResult struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`

	Processed int        `json:"processed"`
	Created   SyncCounts `json:"created"`
	Updated   SyncCounts `json:"updated"`

	// Errors holds one entry per failed record. A non-empty list with
	// Success=false signals partial completion, not a total failure.
	Errors []string `json:"errors,omitempty"`

	// DealItemID is the board deal the quote resolved to. Set on
	// single-quote runs only.
	DealItemID string `json:"deal_item_id,omitempty"`
}

// APIResponse is the uniform JSON envelope for HTTP endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthStatus reports liveness of QuoteBridge and its two remotes.
type HealthStatus struct {
	Status       string `json:"status"`
	FieldService string `json:"field_service"`
	Board        string `json:"board"`
	Version      string `json:"version,omitempty"`
}
