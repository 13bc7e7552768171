// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jgreen210/quotebridge/internal/models"
)

// AccountPayload is the account upsert input derived from the quote's
// customer. The foreign id is the customer id.
type AccountPayload struct {
	ForeignID int64
	Name      string
}

// ContactPayload is a contact upsert input. The foreign id is the source
// contact id. Email and Phone are raw values; cleaning happens when the
// column map is built so invalid data is dropped, never sent.
type ContactPayload struct {
	ForeignID int64
	Name      string
	Email     string
	Phone     string
}

// DealPayload is the deal upsert input. The foreign id is the quote id.
type DealPayload struct {
	ForeignID int64
	Name      string
	Value     float64
	Stage     string
	DueDate   string
	OwnerID   int64
}

// SyncMapping holds the three upsert payloads produced from one quote.
// Ephemeral; it lives for one sync operation and is never persisted.
type SyncMapping struct {
	Account  AccountPayload
	Contacts []ContactPayload
	Deal     DealPayload
}

// Mapper translates classified quotes into board payloads. Pure.
type Mapper struct {
	// salespersonOwners maps source salesperson ids to board user ids.
	salespersonOwners map[string]int64
}

// NewMapper builds a mapper with the deployment's salesperson-to-owner
// lookup table.
func NewMapper(salespersonOwners map[string]int64) *Mapper {
	return &Mapper{salespersonOwners: salespersonOwners}
}

// ToSyncMapping converts one quote, plus any fetched contact detail
// records, into the account/contacts/deal payload set.
//
// Contact extraction emits zero, one or two payloads: the customer
// contact and the site contact, each only when it carries a non-empty
// name. When both roles reference the same person, only the customer
// contact is emitted.
func (m *Mapper) ToSyncMapping(q *models.Quote, customerContact, siteContact *models.Contact) *SyncMapping {
	mapping := &SyncMapping{
		Account: AccountPayload{
			ForeignID: q.Customer.ID,
			Name:      q.Customer.Name,
		},
		Deal: DealPayload{
			ForeignID: q.ID,
			Name:      DealName(q),
			Value:     q.Total.ExTax,
			Stage:     MapToBoardStage(q.Status.Name),
			DueDate:   q.DueDate,
			OwnerID:   m.ownerFor(q.Salesperson),
		},
	}

	if customerContact != nil && customerContact.FullName() != "" {
		mapping.Contacts = append(mapping.Contacts, contactPayload(customerContact))
	}
	if siteContact != nil && siteContact.FullName() != "" {
		if customerContact == nil || siteContact.ID != customerContact.ID {
			mapping.Contacts = append(mapping.Contacts, contactPayload(siteContact))
		}
	}

	return mapping
}

func contactPayload(c *models.Contact) ContactPayload {
	return ContactPayload{
		ForeignID: c.ID,
		Name:      c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone(),
	}
}

// ownerFor resolves a salesperson reference through the static lookup
// table. Zero means no owner is set on the deal.
func (m *Mapper) ownerFor(salesperson *models.Ref) int64 {
	if salesperson == nil {
		return 0
	}
	return m.salespersonOwners[strconv.FormatInt(salesperson.ID, 10)]
}

// maxDealNameRunes caps the description-derived part of a deal name.
const maxDealNameRunes = 50

// DealName derives the deal display name: "Quote #<id> - <name>" where
// <name> is the quote's own name, else its description with HTML stripped
// and truncated, else "Service".
func DealName(q *models.Quote) string {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		name = truncateRunes(StripHTML(q.Description), maxDealNameRunes)
	}
	if name == "" {
		name = "Service"
	}
	return fmt.Sprintf("Quote #%d - %s", q.ID, name)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup tags and collapses the remaining whitespace.
// Quote descriptions arrive as rich text from the source system's editor.
func StripHTML(s string) string {
	return strings.Join(strings.Fields(htmlTagPattern.ReplaceAllString(s, " ")), " ")
}

// truncateRunes shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
