// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// CircuitBreakerClient wraps the field service client with a circuit
// breaker, so a down or slow source API sheds load fast instead of
// stalling every sync run on timeouts.
//
// The breaker uses real time for its interval and timeout calculations;
// unit tests exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client FieldServiceAPI
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client with a circuit breaker.
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(client FieldServiceAPI) *CircuitBreakerClient {
	cbName := "field-service-api"

	metrics.CircuitBreakerState.Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(_ string, from, to gobreaker.State) {
			logging.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.Set(stateToFloat(to))
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps one source API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		}
		return nil, err
	}
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ListQuotes fetches a summary page with circuit breaker protection.
func (cbc *CircuitBreakerClient) ListQuotes(ctx context.Context, page int, includeClosed bool, columns []string) ([]models.QuoteSummary, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.ListQuotes(ctx, page, includeClosed, columns)
	})
	if err != nil {
		return nil, err
	}
	quotes, ok := result.([]models.QuoteSummary)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return quotes, nil
}

// GetQuote fetches quote detail with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error) {
	return castResult[models.Quote](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetQuote(ctx, quoteID)
	}))
}

// GetCustomer fetches a customer with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	return castResult[models.Customer](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetCustomer(ctx, customerID)
	}))
}

// GetContact fetches a contact with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetContact(ctx context.Context, contactID int64) (*models.Contact, error) {
	return castResult[models.Contact](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetContact(ctx, contactID)
	}))
}

// Ping verifies connectivity with circuit breaker protection.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}
