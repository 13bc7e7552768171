// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jgreen210/quotebridge/internal/config"
	"github.com/jgreen210/quotebridge/internal/middleware"
)

// Router wires handlers into the Chi route tree.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a router.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", fieldServiceSignatureHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.PrometheusMetrics)

	// Health endpoints: permissive rate limit for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Webhook receivers: sized for the source platform's event bursts.
	// Authenticity comes from the body signature, not the rate limit.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.Server.RateLimitRequests, router.cfg.Server.RateLimitWindow))
		r.Post("/field-service", router.handler.FieldServiceWebhook)
		r.Post("/board", router.handler.BoardWebhook)
	})

	// Manual sync triggers: strict limit, a batch run is expensive.
	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/", router.handler.TriggerSync)
		r.Post("/quotes/{quoteID}", router.handler.TriggerQuoteSync)
	})

	// Prometheus scrape endpoint.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
