// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

const fieldServiceSystem = "field service"

// FieldServiceAPI is the read-only surface of the source system used by
// the sync pipeline. Satisfied by FieldServiceClient and by its circuit
// breaker wrapper.
type FieldServiceAPI interface {
	ListQuotes(ctx context.Context, page int, includeClosed bool, columns []string) ([]models.QuoteSummary, error)
	GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error)
	GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error)
	GetContact(ctx context.Context, contactID int64) (*models.Contact, error)
	Ping(ctx context.Context) error
}

// FieldServiceClient is the stateless REST transport for the source
// system. It fails fast: any non-2xx response is surfaced immediately,
// with 401 special-cased into an AuthError naming the access token.
type FieldServiceClient struct {
	baseURL     string
	accessToken string
	companyID   int64
	pageSize    int
	httpClient  *http.Client
}

// FieldServiceClientConfig carries the client settings, mirrored from
// the config package to keep this package free of config imports.
type FieldServiceClientConfig struct {
	BaseURL     string
	AccessToken string
	CompanyID   int64
	PageSize    int
	Timeout     time.Duration
}

// NewFieldServiceClient creates a source system client.
func NewFieldServiceClient(cfg FieldServiceClientConfig) *FieldServiceClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = 250
	}

	return &FieldServiceClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		companyID:   cfg.CompanyID,
		pageSize:    pageSize,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// ListQuotes fetches one page of quote summaries with a narrow column
// projection. The returned slice is empty once the listing is exhausted.
func (c *FieldServiceClient) ListQuotes(ctx context.Context, page int, includeClosed bool, columns []string) ([]models.QuoteSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	if !includeClosed {
		query.Set("IsClosed", "false")
	}
	if len(columns) > 0 {
		query.Set("columns", strings.Join(columns, ","))
	}

	var quotes []models.QuoteSummary
	if err := c.doRequest(ctx, "list quotes", c.companyPath("quotes/"), query, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetQuote fetches one quote's full detail.
func (c *FieldServiceClient) GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error) {
	var quote models.Quote
	path := c.companyPath(fmt.Sprintf("quotes/%d", quoteID))
	if err := c.doRequest(ctx, "get quote", path, nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetCustomer fetches a customer company record.
func (c *FieldServiceClient) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	var customer models.Customer
	path := c.companyPath(fmt.Sprintf("customers/%d", customerID))
	if err := c.doRequest(ctx, "get customer", path, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetContact fetches a person record with email and phone detail.
func (c *FieldServiceClient) GetContact(ctx context.Context, contactID int64) (*models.Contact, error) {
	var contact models.Contact
	path := c.companyPath(fmt.Sprintf("contacts/%d", contactID))
	if err := c.doRequest(ctx, "get contact", path, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Ping verifies connectivity and credentials with a minimal request.
func (c *FieldServiceClient) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("pageSize", "1")
	query.Set("columns", "ID")

	var quotes []models.QuoteSummary
	return c.doRequest(ctx, "ping", c.companyPath("quotes/"), query, &quotes)
}

func (c *FieldServiceClient) companyPath(suffix string) string {
	return fmt.Sprintf("/api/v1.0/companies/%d/%s", c.companyID, suffix)
}

// doRequest executes one GET against the source API and decodes the JSON
// response into result.
func (c *FieldServiceClient) doRequest(ctx context.Context, op, path string, query url.Values, result interface{}) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.FieldServiceRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return &TransportError{System: fieldServiceSystem, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{System: fieldServiceSystem, Credential: "access token"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &RemoteError{
			System:     fieldServiceSystem,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
