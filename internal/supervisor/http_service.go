// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jgreen210/quotebridge/internal/logging"
)

// HTTPServerService adapts an http.Server to the suture.Service
// interface with graceful shutdown on context cancellation.
type HTTPServerService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPServerService creates a supervised HTTP server.
func NewHTTPServerService(addr string, handler http.Handler, timeout time.Duration) *HTTPServerService {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPServerService{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  2 * timeout,
		},
		shutdownTimeout: 10 * time.Second,
	}
}

// Serve implements suture.Service. It blocks until the listener fails
// or the context is canceled, then shuts the server down gracefully.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *HTTPServerService) String() string { return "http-server" }
