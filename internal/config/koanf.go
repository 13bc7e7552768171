// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quotebridge/config.yaml",
	"/etc/quotebridge/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults. The result is validated before it
// is returned; an invalid configuration never reaches the rest of the
// program.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// QB_BOARD_API_TOKEN -> board.api_token, etc.
	envProvider := env.Provider("QB_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists the config paths parsed as comma-separated
// slices when supplied through environment variables.
var sliceConfigPaths = []string{
	"sync.active_stages",
	"sync.active_statuses",
	"sync.terminal_keep_statuses",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects
// slices; YAML-sourced slices pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps QB_-prefixed environment variable names to koanf
// config paths.
//
// Examples:
//   - QB_FIELD_SERVICE_ACCESS_TOKEN -> field_service.access_token
//   - QB_BOARD_API_TOKEN            -> board.api_token
//   - QB_MIN_QUOTE_VALUE            -> sync.min_quote_value
//   - QB_HTTP_PORT                  -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "QB_"))

	envMappings := map[string]string{
		// Field service (source system)
		"field_service_base_url":     "field_service.base_url",
		"field_service_access_token": "field_service.access_token",
		"field_service_company_id":   "field_service.company_id",
		"field_service_timeout":      "field_service.timeout",
		"field_service_page_size":    "field_service.page_size",

		// Board (target system)
		"board_api_url":              "board.api_url",
		"board_api_token":            "board.api_token",
		"board_account_board_id":     "board.account_board_id",
		"board_contact_board_id":     "board.contact_board_id",
		"board_deal_board_id":        "board.deal_board_id",
		"board_timeout":              "board.timeout",
		"board_search_page_size":     "board.search_page_size",
		"board_max_search_pages":     "board.max_search_pages",
		"board_requests_per_second":  "board.requests_per_second",
		"board_default_country_code": "board.default_country_code",

		// Board column ids
		"board_column_account_fk":      "board.columns.account_foreign_key",
		"board_column_contact_fk":      "board.columns.contact_foreign_key",
		"board_column_deal_fk":         "board.columns.deal_foreign_key",
		"board_column_contact_email":   "board.columns.contact_email",
		"board_column_contact_phone":   "board.columns.contact_phone",
		"board_column_contact_account": "board.columns.contact_account",
		"board_column_deal_value":      "board.columns.deal_value",
		"board_column_deal_stage":      "board.columns.deal_stage",
		"board_column_deal_due_date":   "board.columns.deal_due_date",
		"board_column_deal_contacts":   "board.columns.deal_contacts",
		"board_column_deal_account":    "board.columns.deal_account",
		"board_column_deal_owner":      "board.columns.deal_owner",

		// Sync policy
		"min_quote_value":        "sync.min_quote_value",
		"active_stages":          "sync.active_stages",
		"active_statuses":        "sync.active_statuses",
		"terminal_keep_statuses": "sync.terminal_keep_statuses",
		"sync_interval":          "sync.interval",
		"sync_batch_limit":       "sync.batch_limit",

		// Webhook layer
		"webhook_signing_secret":     "webhook.signing_secret",
		"webhook_debounce_ttl":       "webhook.debounce_ttl",
		"webhook_existence_ttl":      "webhook.existence_ttl",
		"webhook_existence_attempts": "webhook.existence_attempts",

		// Server
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"rate_limit_requests": "server.rate_limit_requests",
		"rate_limit_window":   "server.rate_limit_window",
		"cors_origins":        "server.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown variables are dropped rather than guessed into paths.
	return ""
}
