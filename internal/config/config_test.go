// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a fully populated configuration that passes
// validation, for tests to mutate.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.FieldService.BaseURL = "https://api.fieldservice.example"
	cfg.FieldService.AccessToken = "token"
	cfg.FieldService.CompanyID = 1
	cfg.Board.APIToken = "token"
	cfg.Board.AccountBoardID = 100
	cfg.Board.ContactBoardID = 200
	cfg.Board.DealBoardID = 300
	cfg.Board.Columns = BoardColumns{
		AccountForeignKey: "text_account_fk",
		ContactForeignKey: "text_contact_fk",
		DealForeignKey:    "text_deal_fk",
		ContactEmail:      "email",
		ContactPhone:      "phone",
		ContactAccount:    "connect_account",
		DealValue:         "numbers",
		DealStage:         "status",
		DealContacts:      "connect_contacts",
		DealAccount:       "connect_account",
	}
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.FieldService.AccessToken = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection for missing access token")
	}
}

func TestValidateRejectsSharedBoardIDs(t *testing.T) {
	cfg := validConfig()
	cfg.Board.ContactBoardID = cfg.Board.AccountBoardID

	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection for duplicate board ids")
	}
}

func TestValidateRejectsOrphanTerminalStatus(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.TerminalKeepStatuses = append(cfg.Sync.TerminalKeepStatuses, "Quote: Abandoned")

	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection for terminal-keep status missing from active list")
	}
}

func TestTerminalStatusMatchingIgnoresColonSpacing(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.ActiveStatuses = []string{"Quote: Won"}
	cfg.Sync.TerminalKeepStatuses = []string{"Quote : Won"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("colon spacing should not affect matching: %v", err)
	}
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
field_service:
  base_url: https://api.fieldservice.example
  access_token: file-token
  company_id: 7
board:
  api_token: board-token
  account_board_id: 100
  contact_board_id: 200
  deal_board_id: 300
  columns:
    account_foreign_key: text_account_fk
    contact_foreign_key: text_contact_fk
    deal_foreign_key: text_deal_fk
    contact_email: email
    contact_phone: phone
    contact_account: connect_account
    deal_value: numbers
    deal_stage: status
    deal_contacts: connect_contacts
    deal_account: connect_account
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("QB_FIELD_SERVICE_ACCESS_TOKEN", "env-token")
	t.Setenv("QB_MIN_QUOTE_VALUE", "12000")
	t.Setenv("QB_ACTIVE_STAGES", "Complete, Approved ,Progress")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FieldService.AccessToken != "env-token" {
		t.Errorf("env should override file, got %q", cfg.FieldService.AccessToken)
	}
	if cfg.FieldService.CompanyID != 7 {
		t.Errorf("file value lost, company id = %d", cfg.FieldService.CompanyID)
	}
	if cfg.Sync.MinQuoteValue != 12000 {
		t.Errorf("min quote value = %f, want 12000", cfg.Sync.MinQuoteValue)
	}
	if len(cfg.Sync.ActiveStages) != 3 || cfg.Sync.ActiveStages[2] != "Progress" {
		t.Errorf("slice env parsing failed: %v", cfg.Sync.ActiveStages)
	}
	if cfg.Webhook.DebounceTTL != 30*time.Second {
		t.Errorf("default debounce TTL lost: %v", cfg.Webhook.DebounceTTL)
	}
}

func TestEnvTransformDropsUnknownKeys(t *testing.T) {
	if got := envTransformFunc("QB_SOMETHING_ELSE"); got != "" {
		t.Errorf("unknown env var mapped to %q, want empty", got)
	}
	if got := envTransformFunc("QB_BOARD_API_TOKEN"); got != "board.api_token" {
		t.Errorf("QB_BOARD_API_TOKEN mapped to %q", got)
	}
}
