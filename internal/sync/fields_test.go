// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"errors"
	"reflect"
	"testing"
)

func TestCleanEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    EmailValue
		wantErr bool
	}{
		{"valid", "ops@example.com", "ops@example.com", false},
		{"uppercased and padded", "  Ops@Example.COM ", "ops@example.com", false},
		{"subdomain", "a@b.co.nz", "a@b.co.nz", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"no at sign", "example.com", "", true},
		{"no tld", "ops@example", "", true},
		{"embedded space", "op s@example.com", "", true},
		{"double at", "a@b@c.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanEmail(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanEmail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("CleanEmail(%q) error type = %T, want *ValidationError", tt.in, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CleanEmail(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain digits", "0395551234", "0395551234", false},
		{"formatted", "(03) 9555-1234", "0395551234", false},
		{"international", "+61 3 9555 1234", "+61395551234", false},
		{"leading plus after padding", "  +61 3 9555 1234", "+61395551234", false},
		{"plus mid string dropped", "03+95551234", "0395551234", false},
		{"too short", "95551", "", true},
		{"empty", "", "", true},
		{"letters only", "call reception", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPhone(tt.in, "AU")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanPhone(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Number != tt.want {
				t.Errorf("CleanPhone(%q).Number = %q, want %q", tt.in, got.Number, tt.want)
			}
			if got.CountryCode != "AU" {
				t.Errorf("CleanPhone(%q).CountryCode = %q, want AU", tt.in, got.CountryCode)
			}
		})
	}
}

func TestRelationFromItemIDs(t *testing.T) {
	got := RelationFromItemIDs("123", " 456 ", "garbage", "")
	want := RelationValue([]int64{123, 456})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RelationFromItemIDs() = %v, want %v", got, want)
	}
}

func TestColumnMapBoardValues(t *testing.T) {
	m := ColumnMap{
		"text_col":   TextValue("Q-42"),
		"number_col": NumberValue(15000),
		"email_col":  EmailValue("ops@example.com"),
		"status_col": StatusValue("Won"),
		"rel_col":    RelationValue([]int64{7}),
		"person_col": PersonValue(99),
	}

	values := m.BoardValues()
	if len(values) != len(m) {
		t.Fatalf("BoardValues() has %d entries, want %d", len(values), len(m))
	}
	if values["text_col"] != "Q-42" {
		t.Errorf("text column = %v, want Q-42", values["text_col"])
	}
	if values["number_col"] != float64(15000) {
		t.Errorf("number column = %v, want 15000", values["number_col"])
	}
	email, ok := values["email_col"].(map[string]interface{})
	if !ok || email["email"] != "ops@example.com" {
		t.Errorf("email column = %v, want email payload", values["email_col"])
	}
}
