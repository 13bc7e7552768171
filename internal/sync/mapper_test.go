// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"strings"
	"testing"

	"github.com/jgreen210/quotebridge/internal/models"
)

func TestDealName(t *testing.T) {
	tests := []struct {
		name string
		q    *models.Quote
		want string
	}{
		{
			"uses quote name",
			&models.Quote{ID: 42, Name: "Switchboard upgrade"},
			"Quote #42 - Switchboard upgrade",
		},
		{
			"falls back to description with html stripped",
			&models.Quote{ID: 42, Description: "<p>Replace <b>mains</b> cabling</p>"},
			"Quote #42 - Replace mains cabling",
		},
		{
			"falls back to Service",
			&models.Quote{ID: 42},
			"Quote #42 - Service",
		},
		{
			"whitespace name falls through",
			&models.Quote{ID: 42, Name: "   "},
			"Quote #42 - Service",
		},
		{
			"html-only description falls through",
			&models.Quote{ID: 42, Description: "<p></p>"},
			"Quote #42 - Service",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DealName(tt.q); got != tt.want {
				t.Errorf("DealName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDealNameTruncatesLongDescriptions(t *testing.T) {
	q := &models.Quote{ID: 7, Description: strings.Repeat("x", 80)}
	got := DealName(q)
	want := "Quote #7 - " + strings.Repeat("x", 50) + "..."
	if got != want {
		t.Errorf("DealName() = %q, want %q", got, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>hello</p>", "hello"},
		{"<div><span>a</span> b</div>", "a b"},
		{"plain text", "plain text"},
		{"line<br/>break", "line break"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToSyncMapping(t *testing.T) {
	m := NewMapper(map[string]int64{"55": 9001})
	q := &models.Quote{
		ID:          1001,
		Name:        "Generator install",
		Total:       models.QuoteTotal{ExTax: 25000},
		Status:      models.QuoteStatus{Name: "Quote: Sent"},
		DueDate:     "2026-09-30",
		Customer:    models.Ref{ID: 300, Name: "Acme Industrial"},
		Salesperson: &models.Ref{ID: 55, Name: "Jo"},
	}
	customerContact := &models.Contact{ID: 10, GivenName: "Pat", FamilyName: "Lee", Email: "pat@acme.example", CellPhone: "0400000000"}
	siteContact := &models.Contact{ID: 11, GivenName: "Sam", FamilyName: "Roe"}

	mapping := m.ToSyncMapping(q, customerContact, siteContact)

	if mapping.Account.ForeignID != 300 || mapping.Account.Name != "Acme Industrial" {
		t.Errorf("account = %+v", mapping.Account)
	}
	if len(mapping.Contacts) != 2 {
		t.Fatalf("contacts = %d, want 2", len(mapping.Contacts))
	}
	if mapping.Contacts[0].Name != "Pat Lee" || mapping.Contacts[0].Phone != "0400000000" {
		t.Errorf("customer contact = %+v", mapping.Contacts[0])
	}
	if mapping.Deal.ForeignID != 1001 {
		t.Errorf("deal foreign id = %d, want 1001", mapping.Deal.ForeignID)
	}
	if mapping.Deal.Stage != StageProposalSent {
		t.Errorf("deal stage = %q, want %q", mapping.Deal.Stage, StageProposalSent)
	}
	if mapping.Deal.OwnerID != 9001 {
		t.Errorf("deal owner = %d, want 9001", mapping.Deal.OwnerID)
	}
}

func TestToSyncMappingDeduplicatesSharedContact(t *testing.T) {
	m := NewMapper(nil)
	q := &models.Quote{ID: 1, Customer: models.Ref{ID: 2, Name: "Acme"}}
	shared := &models.Contact{ID: 10, GivenName: "Pat", FamilyName: "Lee"}

	mapping := m.ToSyncMapping(q, shared, shared)
	if len(mapping.Contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(mapping.Contacts))
	}
}

func TestToSyncMappingSkipsNamelessContacts(t *testing.T) {
	m := NewMapper(nil)
	q := &models.Quote{ID: 1, Customer: models.Ref{ID: 2, Name: "Acme"}}
	nameless := &models.Contact{ID: 10}

	mapping := m.ToSyncMapping(q, nameless, nil)
	if len(mapping.Contacts) != 0 {
		t.Fatalf("contacts = %d, want 0", len(mapping.Contacts))
	}
	if mapping.Deal.OwnerID != 0 {
		t.Errorf("deal owner = %d, want 0 for unmapped salesperson", mapping.Deal.OwnerID)
	}
}
