// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is the non-failure outcome of a resolver search: no board
// item carries the foreign id, proceed to create.
var ErrNotFound = errors.New("board record not found")

// TransportError is a network-level failure reaching a remote system.
// Always retryable by caller policy.
type TransportError struct {
	System string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure during %s: %v", e.System, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError means a credential was rejected. Fatal, never retried.
type AuthError struct {
	System     string
	Credential string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected, check %s", e.System, e.Credential)
}

// RateLimitError is a rate-limit signal from the board system, either an
// HTTP 429 or a complexity-budget error embedded in the response payload.
// RetryAfter is the parsed wait duration (default 30s when the payload
// gives no usable figure).
type RateLimitError struct {
	System     string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s: %s", e.System, e.RetryAfter, e.Message)
}

// RemoteError means the remote system processed the request but reported
// a logical failure. Not retried; surfaced as-is.
type RemoteError struct {
	System     string
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s failed (status %d): %s", e.System, e.Op, e.StatusCode, e.Message)
}

// ValidationError is a locally detected bad input value (malformed email,
// short phone number). The offending field is omitted from upstream
// payloads and processing continues; this error is only ever logged.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsRetryable reports whether a retry policy may re-attempt the operation
// that produced err. Rate limits have their own single-retry handling in
// the board client and are excluded here.
func IsRetryable(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
