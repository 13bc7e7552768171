// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package config

import (
	"fmt"
	"strings"

	"github.com/jgreen210/quotebridge/internal/validation"
)

// Validate checks the configuration. Struct tags cover the per-field
// rules; the cross-field rules live here. Called by Load; an invalid
// configuration never reaches the rest of the program.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	// Every terminal-keep status must also be in the active allow-list,
	// otherwise a closed-but-won quote would pass the closed-flag check
	// and then fail the status check anyway.
	active := make(map[string]struct{}, len(c.Sync.ActiveStatuses))
	for _, s := range c.Sync.ActiveStatuses {
		active[normalizeForCompare(s)] = struct{}{}
	}
	for _, s := range c.Sync.TerminalKeepStatuses {
		if _, ok := active[normalizeForCompare(s)]; !ok {
			return fmt.Errorf("terminal-keep status %q is not in sync.active_statuses", s)
		}
	}

	// The three boards must be distinct; a shared board would let one
	// entity kind's foreign-key match another's.
	if c.Board.AccountBoardID == c.Board.ContactBoardID ||
		c.Board.AccountBoardID == c.Board.DealBoardID ||
		c.Board.ContactBoardID == c.Board.DealBoardID {
		return fmt.Errorf("account, contact and deal board ids must be distinct")
	}

	return nil
}

// normalizeForCompare applies the same trim/whitespace/colon folding the
// classifier uses, so config validation agrees with runtime matching.
func normalizeForCompare(s string) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	s = strings.ReplaceAll(s, " :", ":")
	s = strings.ReplaceAll(s, ": ", ":")
	return strings.ToLower(s)
}
