// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package config defines and loads the QuoteBridge configuration.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then environment variables (highest priority). The status
// allow-lists, stage labels and board column ids live here deliberately:
// the substring classification in the stage normalizer is stable logic,
// but the exact literal lists differ per deployment and are validated at
// startup rather than hardcoded.
package config

import "time"

// Config is the root configuration.
type Config struct {
	FieldService FieldServiceConfig `koanf:"field_service" validate:"required"`
	Board        BoardConfig        `koanf:"board" validate:"required"`
	Sync         SyncConfig         `koanf:"sync" validate:"required"`
	Webhook      WebhookConfig      `koanf:"webhook"`
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// FieldServiceConfig points at the source system's REST API.
type FieldServiceConfig struct {
	BaseURL     string `koanf:"base_url" validate:"required,url"`
	AccessToken string `koanf:"access_token" validate:"required"`
	CompanyID   int64  `koanf:"company_id" validate:"required,gt=0"`

	Timeout time.Duration `koanf:"timeout"`

	// PageSize caps the quote list page size.
	PageSize int `koanf:"page_size" validate:"gt=0,lte=250"`
}

// BoardConfig points at the work board's GraphQL API and names the three
// mirrored boards plus their column ids.
type BoardConfig struct {
	APIURL   string `koanf:"api_url" validate:"required,url"`
	APIToken string `koanf:"api_token" validate:"required"`

	AccountBoardID int64 `koanf:"account_board_id" validate:"required,gt=0"`
	ContactBoardID int64 `koanf:"contact_board_id" validate:"required,gt=0"`
	DealBoardID    int64 `koanf:"deal_board_id" validate:"required,gt=0"`

	Columns BoardColumns `koanf:"columns"`

	Timeout time.Duration `koanf:"timeout"`

	// SearchPageSize caps the resolver's items_page size.
	SearchPageSize int `koanf:"search_page_size" validate:"gt=0,lte=100"`

	// MaxSearchPages bounds the linear scan on corrupt or circular cursors.
	MaxSearchPages int `koanf:"max_search_pages" validate:"gt=0"`

	// RequestsPerSecond paces outbound board calls.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`

	// DefaultCountryCode is attached to cleaned phone numbers.
	DefaultCountryCode string `koanf:"default_country_code" validate:"required"`
}

// BoardColumns maps logical column roles to board-specific column ids.
// The ForeignKey columns are the text columns holding the quote ID.
type BoardColumns struct {
	AccountForeignKey string `koanf:"account_foreign_key" validate:"required"`
	ContactForeignKey string `koanf:"contact_foreign_key" validate:"required"`
	DealForeignKey    string `koanf:"deal_foreign_key" validate:"required"`

	ContactEmail   string `koanf:"contact_email" validate:"required"`
	ContactPhone   string `koanf:"contact_phone" validate:"required"`
	ContactAccount string `koanf:"contact_account" validate:"required"`

	DealValue    string `koanf:"deal_value" validate:"required"`
	DealStage    string `koanf:"deal_stage" validate:"required"`
	DealDueDate  string `koanf:"deal_due_date"`
	DealContacts string `koanf:"deal_contacts" validate:"required"`
	DealAccount  string `koanf:"deal_account" validate:"required"`
	DealOwner    string `koanf:"deal_owner"`
}

// SyncConfig controls classification and the batch loop.
type SyncConfig struct {
	// MinQuoteValue is the ex-tax floor below which quotes are ignored.
	MinQuoteValue float64 `koanf:"min_quote_value" validate:"gte=0"`

	// ActiveStages is the lifecycle-stage allow-list.
	ActiveStages []string `koanf:"active_stages" validate:"required,min=1"`

	// ActiveStatuses is the allow-list matched against normalized status
	// labels.
	ActiveStatuses []string `koanf:"active_statuses" validate:"required,min=1"`

	// TerminalKeepStatuses are normalized statuses that stay sync-worthy
	// even on closed quotes (won, archived not won).
	TerminalKeepStatuses []string `koanf:"terminal_keep_statuses" validate:"required,min=1"`

	// Interval between periodic batch runs. Zero disables the loop;
	// batch runs then happen only via the HTTP trigger.
	Interval time.Duration `koanf:"interval"`

	// BatchLimit caps records per batch run. Zero means unlimited.
	BatchLimit int `koanf:"batch_limit" validate:"gte=0"`

	// SalespersonOwners maps source salesperson ids to board user ids
	// for the deal owner column. Static lookup, not algorithmic.
	SalespersonOwners map[string]int64 `koanf:"salesperson_owners"`
}

// WebhookConfig controls inbound webhook verification and debounce.
type WebhookConfig struct {
	// SigningSecret verifies inbound field service webhooks (HMAC-SHA1
	// over the raw body). Empty disables verification; refuse that
	// outside development.
	SigningSecret string `koanf:"signing_secret"`

	DebounceTTL  time.Duration `koanf:"debounce_ttl" validate:"gt=0"`
	ExistenceTTL time.Duration `koanf:"existence_ttl" validate:"gt=0"`

	// ExistenceAttempts is the number of board searches made before
	// concluding a record does not exist (read-after-write guard).
	ExistenceAttempts int `koanf:"existence_attempts" validate:"gt=0,lte=10"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gt=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// layered first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		FieldService: FieldServiceConfig{
			Timeout:  30 * time.Second,
			PageSize: 250,
		},
		Board: BoardConfig{
			APIURL:             "https://api.monday.com/v2",
			Timeout:            30 * time.Second,
			SearchPageSize:     100,
			MaxSearchPages:     40,
			RequestsPerSecond:  5,
			DefaultCountryCode: "AU",
		},
		Sync: SyncConfig{
			MinQuoteValue:        15000,
			ActiveStages:         []string{"Complete", "Approved"},
			ActiveStatuses:       []string{"Quote: Sent", "Quote: To Review", "Quote: Accepted", "Quote: Won", "Quote: Archived - Not Won"},
			TerminalKeepStatuses: []string{"Quote: Won", "Quote: Archived - Not Won"},
			Interval:             0,
			BatchLimit:           0,
		},
		Webhook: WebhookConfig{
			DebounceTTL:       30 * time.Second,
			ExistenceTTL:      5 * time.Minute,
			ExistenceAttempts: 3,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			Timeout:           60 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
