// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import "strings"

// Board stage labels. The board's deal stage column is a single-select
// over exactly these four values.
const (
	StageDiscovery    = "Discovery"
	StageProposalSent = "Proposal Sent"
	StageWon          = "Won"
	StageLost         = "Lost"
)

// NormalizeStatus canonicalizes a free-text status label: trim, collapse
// internal whitespace runs to single spaces, and fold colon spacing so
// "Quote : Sent" and "Quote: Sent" compare equal. Idempotent.
func NormalizeStatus(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.ReplaceAll(s, " :", ":")
	s = strings.ReplaceAll(s, ": ", ":")
	return strings.ReplaceAll(s, ":", ": ")
}

// StatusEqual compares two status labels after normalization, ignoring
// case.
func StatusEqual(a, b string) bool {
	return strings.EqualFold(NormalizeStatus(a), NormalizeStatus(b))
}

// MapToBoardStage classifies a source status or stage string onto the
// four board stage labels by substring. The collapse is deliberately
// lossy: most source statuses land on Discovery.
func MapToBoardStage(sourceStatusOrStage string) string {
	s := strings.ToLower(NormalizeStatus(sourceStatusOrStage))

	switch {
	case strings.Contains(s, "won") && !strings.Contains(s, "not won"):
		return StageWon
	case strings.Contains(s, "archived") && strings.Contains(s, "not won"):
		return StageLost
	case strings.Contains(s, "sent"):
		return StageProposalSent
	default:
		return StageDiscovery
	}
}

// stageIndexes gives each label the positional index the board's
// single-select column uses.
var stageIndexes = map[string]int{
	StageDiscovery:    0,
	StageProposalSent: 1,
	StageWon:          2,
	StageLost:         3,
}

// BoardStageIndex returns the numeric index for a board stage label, for
// board APIs that want a position rather than a label. Unknown labels map
// to the Discovery index.
func BoardStageIndex(label string) int {
	if idx, ok := stageIndexes[label]; ok {
		return idx
	}
	return stageIndexes[StageDiscovery]
}

// IsTerminalStage reports whether a board stage label is terminal (won or
// lost). Existing deals are only ever moved between stages on terminal
// transitions.
func IsTerminalStage(label string) bool {
	return label == StageWon || label == StageLost
}
