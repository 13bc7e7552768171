// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/jgreen210/quotebridge/internal/logging"
	"github.com/jgreen210/quotebridge/internal/metrics"
	"github.com/jgreen210/quotebridge/internal/models"
)

const (
	boardSystem = "board"

	// defaultRateLimitWait applies when a rate-limit payload carries no
	// parseable retry-after figure.
	defaultRateLimitWait = 30 * time.Second
)

// BoardAPI is the board-system surface used by the resolver and the
// upsert services.
type BoardAPI interface {
	CreateItem(ctx context.Context, boardID int64, name string, columns ColumnMap) (string, error)
	UpdateColumn(ctx context.Context, boardID int64, itemID, columnID string, value ColumnValue) error
	SearchPage(ctx context.Context, boardID int64, cursor string, pageSize int, columnIDs []string) (*models.BoardPage, error)
	DeleteItem(ctx context.Context, itemID string) error
	Ping(ctx context.Context) error
}

// BoardClient is the GraphQL transport for the work board. Every call
// funnels through execute, which owns the rate-limit protocol:
//
//   - a token bucket paces outbound requests below the board's budget;
//   - on a rate-limit response the retry-after duration is parsed from
//     the payload (retry_in_seconds field or "reset in N seconds" text,
//     default 30s), the client sleeps and retries exactly once, and a
//     second consecutive rate limit is surfaced as fatal;
//   - while the client is known rate-limited (stored reset timestamp),
//     new operations proactively wait until that timestamp rather than
//     issuing calls guaranteed to fail.
type BoardClient struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu      sync.Mutex
	resetAt time.Time
}

// BoardClientConfig carries the board client settings.
type BoardClientConfig struct {
	APIURL            string
	APIToken          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// NewBoardClient creates a board client.
func NewBoardClient(cfg BoardClientConfig) *BoardClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 5
	}

	return &BoardClient{
		apiURL:     cfg.APIURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// boardResponse is the response envelope. A rate-limit signal can arrive
// as an HTTP 429 or embedded in the error payload of a 200.
type boardResponse struct {
	Data           json.RawMessage `json:"data"`
	Errors         []boardError    `json:"errors"`
	ErrorCode      string          `json:"error_code"`
	ErrorMessage   string          `json:"error_message"`
	RetryInSeconds float64         `json:"retry_in_seconds"`
	StatusCode     int             `json:"status_code"`
}

type boardError struct {
	Message string `json:"message"`
}

func (r *boardResponse) errorText() string {
	if len(r.Errors) > 0 {
		parts := make([]string, len(r.Errors))
		for i, e := range r.Errors {
			parts[i] = e.Message
		}
		return strings.Join(parts, "; ")
	}
	return r.ErrorMessage
}

// execute runs one GraphQL operation, applying the full rate-limit
// protocol. At most two attempts are made; the retry happens only after
// a first rate-limit failure.
func (c *BoardClient) execute(ctx context.Context, op, query string, variables map[string]interface{}, out interface{}) error {
	if err := c.waitForReset(ctx); err != nil {
		return err
	}

	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.doExecute(ctx, op, query, variables, out)
		if err == nil {
			c.clearReset()
			return nil
		}

		var rateLimit *RateLimitError
		if !errors.As(err, &rateLimit) {
			return err
		}

		metrics.BoardRateLimitHits.Inc()
		c.storeReset(rateLimit.RetryAfter)

		if attempt == maxAttempts {
			// Second consecutive rate limit: fatal for this operation.
			return err
		}

		logging.Warn().Str("operation", op).Dur("retry_after", rateLimit.RetryAfter).Msg("Board API rate limited, retrying once")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rateLimit.RetryAfter):
		}
	}

	return fmt.Errorf("unreachable: retry loop must return")
}

// doExecute performs a single request without retry handling.
func (c *BoardClient) doExecute(ctx context.Context, op, query string, variables map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BoardRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return &TransportError{System: boardSystem, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{System: boardSystem, Credential: "API token"}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			System:     boardSystem,
			RetryAfter: retryAfterFromHeader(resp.Header.Get("Retry-After")),
			Message:    "HTTP 429",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &RemoteError{
			System:     boardSystem,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(raw)),
		}
	}

	var envelope boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if errText := envelope.errorText(); errText != "" || envelope.ErrorCode != "" {
		if wait, limited := parseRateLimitSignal(&envelope); limited {
			return &RateLimitError{System: boardSystem, RetryAfter: wait, Message: errText}
		}
		return &RemoteError{
			System:     boardSystem,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errText,
		}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

var resetInPattern = regexp.MustCompile(`reset in (\d+) seconds`)

// parseRateLimitSignal recognizes a rate-limit error embedded in the
// response payload and extracts the wait duration. Recognized shapes: a
// retry_in_seconds numeric field, or "reset in N seconds" in the error
// text. Default 30s when the signal is present but unparseable.
func parseRateLimitSignal(envelope *boardResponse) (time.Duration, bool) {
	errText := envelope.errorText()
	limited := envelope.ErrorCode == "ComplexityException" ||
		strings.Contains(strings.ToLower(errText), "rate limit") ||
		strings.Contains(strings.ToLower(errText), "complexity budget")
	if !limited {
		return 0, false
	}

	if envelope.RetryInSeconds > 0 {
		return time.Duration(envelope.RetryInSeconds * float64(time.Second)), true
	}
	if match := resetInPattern.FindStringSubmatch(errText); match != nil {
		if seconds, err := strconv.Atoi(match[1]); err == nil {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return defaultRateLimitWait, true
}

func retryAfterFromHeader(header string) time.Duration {
	if header != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRateLimitWait
}

// waitForReset blocks until any stored rate-limit reset timestamp has
// passed, so calls issued during a known limited window do not burn the
// single retry on a guaranteed failure.
func (c *BoardClient) waitForReset(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Until(c.resetAt)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	logging.Debug().Dur("wait", wait).Msg("Board client in known rate-limited state, waiting for reset")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (c *BoardClient) storeReset(after time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resetAt := time.Now().Add(after); resetAt.After(c.resetAt) {
		c.resetAt = resetAt
	}
}

func (c *BoardClient) clearReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = time.Time{}
}

const createItemQuery = `mutation ($boardId: ID!, $name: String!, $columnValues: JSON) {
  create_item(board_id: $boardId, item_name: $name, column_values: $columnValues) {
    id
  }
}`

// CreateItem creates a board item with its column values set in the
// same mutation and returns the new item ID.
func (c *BoardClient) CreateItem(ctx context.Context, boardID int64, name string, columns ColumnMap) (string, error) {
	columnJSON, err := json.Marshal(columns.BoardValues())
	if err != nil {
		return "", fmt.Errorf("encode column values: %w", err)
	}

	var result struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	}
	err = c.execute(ctx, "create_item", createItemQuery, map[string]interface{}{
		"boardId":      strconv.FormatInt(boardID, 10),
		"name":         name,
		"columnValues": string(columnJSON),
	}, &result)
	if err != nil {
		return "", err
	}
	if result.CreateItem.ID == "" {
		return "", &RemoteError{System: boardSystem, Op: "create_item", Message: "no item id in response"}
	}
	return result.CreateItem.ID, nil
}

const updateColumnQuery = `mutation ($boardId: ID!, $itemId: ID!, $columnId: String!, $value: JSON!) {
  change_column_value(board_id: $boardId, item_id: $itemId, column_id: $columnId, value: $value) {
    id
  }
}`

// UpdateColumn sets a single column value on an existing item.
func (c *BoardClient) UpdateColumn(ctx context.Context, boardID int64, itemID, columnID string, value ColumnValue) error {
	valueJSON, err := json.Marshal(value.BoardValue())
	if err != nil {
		return fmt.Errorf("encode column value: %w", err)
	}

	return c.execute(ctx, "change_column_value", updateColumnQuery, map[string]interface{}{
		"boardId":  strconv.FormatInt(boardID, 10),
		"itemId":   itemID,
		"columnId": columnID,
		"value":    string(valueJSON),
	}, nil)
}

const firstPageQuery = `query ($boardId: [ID!], $limit: Int!, $columnIds: [String!]) {
  boards(ids: $boardId) {
    items_page(limit: $limit) {
      cursor
      items {
        id
        name
        column_values(ids: $columnIds) {
          id
          text
        }
      }
    }
  }
}`

const nextPageQuery = `query ($cursor: String!, $limit: Int!, $columnIds: [String!]) {
  next_items_page(cursor: $cursor, limit: $limit) {
    cursor
    items {
      id
      name
      column_values(ids: $columnIds) {
        id
        text
      }
    }
  }
}`

type boardItemPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ColumnValues []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"column_values"`
}

type boardPagePayload struct {
	Cursor string             `json:"cursor"`
	Items  []boardItemPayload `json:"items"`
}

// SearchPage fetches one page of board items with the requested columns
// projected. An empty cursor fetches the first page; the returned page
// carries the cursor for the next call, empty when the board is
// exhausted.
func (c *BoardClient) SearchPage(ctx context.Context, boardID int64, cursor string, pageSize int, columnIDs []string) (*models.BoardPage, error) {
	var page boardPagePayload

	if cursor == "" {
		var result struct {
			Boards []struct {
				ItemsPage boardPagePayload `json:"items_page"`
			} `json:"boards"`
		}
		err := c.execute(ctx, "items_page", firstPageQuery, map[string]interface{}{
			"boardId":   []string{strconv.FormatInt(boardID, 10)},
			"limit":     pageSize,
			"columnIds": columnIDs,
		}, &result)
		if err != nil {
			return nil, err
		}
		if len(result.Boards) == 0 {
			return nil, &RemoteError{System: boardSystem, Op: "items_page", Message: fmt.Sprintf("board %d not found", boardID)}
		}
		page = result.Boards[0].ItemsPage
	} else {
		var result struct {
			NextItemsPage boardPagePayload `json:"next_items_page"`
		}
		err := c.execute(ctx, "next_items_page", nextPageQuery, map[string]interface{}{
			"cursor":    cursor,
			"limit":     pageSize,
			"columnIds": columnIDs,
		}, &result)
		if err != nil {
			return nil, err
		}
		page = result.NextItemsPage
	}

	out := &models.BoardPage{Cursor: page.Cursor, Items: make([]models.BoardItem, 0, len(page.Items))}
	for _, item := range page.Items {
		values := make(map[string]string, len(item.ColumnValues))
		for _, cv := range item.ColumnValues {
			values[cv.ID] = cv.Text
		}
		out.Items = append(out.Items, models.BoardItem{ID: item.ID, Name: item.Name, ColumnValues: values})
	}
	return out, nil
}

const deleteItemQuery = `mutation ($itemId: ID!) {
  delete_item(item_id: $itemId) {
    id
  }
}`

// DeleteItem removes an item from its board.
func (c *BoardClient) DeleteItem(ctx context.Context, itemID string) error {
	return c.execute(ctx, "delete_item", deleteItemQuery, map[string]interface{}{
		"itemId": itemID,
	}, nil)
}

const pingQuery = `query { me { id } }`

// Ping verifies reachability and credentials.
func (c *BoardClient) Ping(ctx context.Context) error {
	var result struct {
		Me struct {
			ID string `json:"id"`
		} `json:"me"`
	}
	return c.execute(ctx, "me", pingQuery, nil, &result)
}
