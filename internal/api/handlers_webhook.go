// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

// fieldServiceSignatureHeader carries the hex HMAC-SHA1 of the raw
// request body, keyed with the shared signing secret.
const fieldServiceSignatureHeader = "X-Webhook-Signature"

// FieldServiceWebhook handles change notifications from the field
// service platform.
// POST /api/v1/webhooks/field-service
//
// The signature is verified over the raw body before any parsing.
// Non-quote events and ineligible quotes are acknowledged with 200 so
// the source does not retry them; only transport, auth and processing
// failures surface as errors.
func (h *Handler) FieldServiceWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("field_service", "bad_request").Inc()
		respondError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}
	defer r.Body.Close()

	if secret := h.config.Webhook.SigningSecret; secret != "" {
		signature := r.Header.Get(fieldServiceSignatureHeader)
		if signature == "" {
			metrics.WebhooksReceived.WithLabelValues("field_service", "unauthorized").Inc()
			respondError(w, http.StatusUnauthorized, fieldServiceSignatureHeader+" header required", nil)
			return
		}
		if !verifyWebhookSignature(body, signature, secret) {
			metrics.WebhooksReceived.WithLabelValues("field_service", "unauthorized").Inc()
			respondError(w, http.StatusUnauthorized, "webhook signature verification failed", nil)
			return
		}
	}

	var webhook models.FieldServiceWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		metrics.WebhooksReceived.WithLabelValues("field_service", "bad_request").Inc()
		respondError(w, http.StatusBadRequest, "failed to parse webhook JSON", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("event", sanitizeLogValue(webhook.ID)).
		Int64("quote_id", webhook.Reference.QuoteID).
		Int64("company_id", webhook.Reference.CompanyID).
		Msg("Webhook received")

	if !webhook.IsQuoteEvent() {
		metrics.WebhooksReceived.WithLabelValues("field_service", "ignored").Inc()
		respondSuccess(w, http.StatusOK, map[string]interface{}{
			"received": true,
			"event":    webhook.ID,
			"handled":  false,
		})
		return
	}

	if webhook.Reference.QuoteID == 0 || webhook.Reference.CompanyID == 0 {
		metrics.WebhooksReceived.WithLabelValues("field_service", "bad_request").Inc()
		respondError(w, http.StatusBadRequest, "quote event is missing reference.quoteID or reference.companyID", nil)
		return
	}

	result, err := h.webhooks.ProcessEvent(r.Context(), webhook.ID, webhook.Reference.QuoteID)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("field_service", "error").Inc()
		respondError(w, http.StatusInternalServerError, "webhook processing failed", err)
		return
	}

	disposition := "processed"
	if result.Skipped {
		disposition = "skipped"
	}
	metrics.WebhooksReceived.WithLabelValues("field_service", disposition).Inc()
	respondSuccess(w, http.StatusOK, result)
}

// verifyWebhookSignature checks the hex HMAC-SHA1 of the payload in
// constant time. The source platform signs with SHA-1; that choice is
// theirs, not ours.
func verifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// BoardWebhook handles callbacks from the board platform.
// POST /api/v1/webhooks/board
//
// The board verifies endpoint ownership by posting a challenge that
// must be echoed back verbatim. All other board events are acknowledged
// and dropped: the sync is one-way and board-side edits never flow back.
func (h *Handler) BoardWebhook(w http.ResponseWriter, r *http.Request) {
	var webhook models.BoardWebhook
	if err := json.NewDecoder(r.Body).Decode(&webhook); err != nil {
		metrics.WebhooksReceived.WithLabelValues("board", "bad_request").Inc()
		respondError(w, http.StatusBadRequest, "failed to parse webhook JSON", err)
		return
	}

	if webhook.Challenge != "" {
		metrics.WebhooksReceived.WithLabelValues("board", "challenge").Inc()
		logging.Ctx(r.Context()).Info().Msg("Answering board webhook challenge")
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(models.BoardWebhook{Challenge: webhook.Challenge}); err != nil {
			logging.Error().Err(err).Msg("Failed to write challenge response")
		}
		return
	}

	metrics.WebhooksReceived.WithLabelValues("board", "ignored").Inc()
	respondSuccess(w, http.StatusOK, map[string]interface{}{"received": true})
}
