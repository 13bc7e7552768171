// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"github.com/jgreen210/quotebridge/internal/models"
)

// Classifier decides whether a quote qualifies for sync. It is pure: no
// remote calls, no clock, no mutation. Batch and webhook paths share the
// one instance so the rules cannot drift apart.
type Classifier struct {
	activeStages   []string
	activeStatuses []string
	terminalKeep   []string
}

// NewClassifier builds a classifier from the deployment's allow-lists.
// The lists are matched against normalized status labels, so entries may
// be written with any colon spacing.
func NewClassifier(activeStages, activeStatuses, terminalKeepStatuses []string) *Classifier {
	return &Classifier{
		activeStages:   activeStages,
		activeStatuses: activeStatuses,
		terminalKeep:   terminalKeepStatuses,
	}
}

// IsSyncEligible applies all four rules: value floor, stage allow-list,
// normalized status allow-list, and the closed flag with its terminal-keep
// exception. Monotone in minValue: raising the floor never makes an
// ineligible quote eligible.
func (c *Classifier) IsSyncEligible(q *models.Quote, minValue float64) bool {
	if q.Total.ExTax < minValue {
		return false
	}
	if !containsFold(c.activeStages, q.Stage) {
		return false
	}
	if !c.statusAllowed(q.Status.Name) {
		return false
	}
	if q.Closed && !c.isTerminalKeep(q.Status.Name) {
		return false
	}
	return true
}

// ValuePasses is the cheap pre-filter run on list summaries before any
// detail fetch is paid for.
func (c *Classifier) ValuePasses(s *models.QuoteSummary, minValue float64) bool {
	return s.Total.ExTax >= minValue
}

// isTerminalKeep reports whether a status is in the terminal-keep set
// (won, archived not won): the quote stays sync-worthy even once closed,
// so winning a quote does not erase it from the board.
func (c *Classifier) isTerminalKeep(status string) bool {
	for _, keep := range c.terminalKeep {
		if StatusEqual(status, keep) {
			return true
		}
	}
	return false
}

func (c *Classifier) statusAllowed(status string) bool {
	for _, allowed := range c.activeStatuses {
		if StatusEqual(status, allowed) {
			return true
		}
	}
	return false
}

func containsFold(list []string, value string) bool {
	for _, entry := range list {
		if StatusEqual(value, entry) {
			return true
		}
	}
	return false
}

// SkipReason explains why a quote failed classification, for the webhook
// path's non-error "skipped" results.
func (c *Classifier) SkipReason(q *models.Quote, minValue float64) string {
	switch {
	case q.Total.ExTax < minValue:
		return "below minimum value"
	case !containsFold(c.activeStages, q.Stage):
		return "stage not in active list"
	case !c.statusAllowed(q.Status.Name):
		return "status not in active list"
	case q.Closed && !c.isTerminalKeep(q.Status.Name):
		return "quote is closed"
	default:
		return ""
	}
}
