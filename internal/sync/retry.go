// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits attempt*step between tries: 2s after the first
// failure, 4s after the second, and so on, up to maxAttempts tries in
// total.
type linearBackOff struct {
	step        time.Duration
	maxAttempts int
	attempt     int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.attempt >= b.maxAttempts {
		return backoff.Stop
	}
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// retryLinear runs op with a context-aware linear backoff.
func retryLinear(ctx context.Context, attempts int, step time.Duration, op backoff.Operation) error {
	policy := &linearBackOff{step: step, maxAttempts: attempts}
	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}
