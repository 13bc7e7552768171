// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package models

import "strings"

// Ref is a lightweight id + display-name reference used throughout the
// field service API for customers, sites and staff.
type Ref struct {
	ID   int64  `json:"ID"`
	Name string `json:"Name"`
}

// ContactRef references a person attached to a quote (customer contact or
// site contact). GivenName/FamilyName may both be empty for placeholder
// contacts, which are ignored during mapping.
type ContactRef struct {
	ID         int64  `json:"ID"`
	GivenName  string `json:"GivenName"`
	FamilyName string `json:"FamilyName"`
}

// FullName returns "GivenName FamilyName" with surrounding whitespace trimmed.
func (c ContactRef) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.GivenName) + " " + strings.TrimSpace(c.FamilyName))
}

// HasName reports whether the contact carries any usable name at all.
func (c ContactRef) HasName() bool {
	return c.FullName() != ""
}

// QuoteTotal is the monetary breakdown on a quote. Classification and the
// board mirror use the ex-tax figure only.
type QuoteTotal struct {
	ExTax  float64 `json:"ExTax"`
	IncTax float64 `json:"IncTax"`
	Tax    float64 `json:"Tax"`
}

// QuoteStatus is the free-text status label attached to a quote. The Name
// value is operator-entered and arrives with inconsistent spacing around
// punctuation ("Quote : Sent", "Quote: Sent").
type QuoteStatus struct {
	ID   int64  `json:"ID"`
	Name string `json:"Name"`
}

// QuoteSummary is the slim projection returned by the list endpoint. It
// carries just enough to run the cheap value pre-filter before paying for
// a detail fetch.
type QuoteSummary struct {
	ID     int64      `json:"ID"`
	Total  QuoteTotal `json:"Total"`
	Stage  string     `json:"Stage"`
	Status string     `json:"Status"`
	Closed bool       `json:"IsClosed"`
}

// Quote is a sales quote in the field service platform. The quote ID is
// immutable and globally unique within the source system; it is the sync
// key for every mirrored board record. Quotes are read-only to QuoteBridge.
type Quote struct {
	ID          int64       `json:"ID"`
	Name        string      `json:"Name"`
	Description string      `json:"Description"`
	Total       QuoteTotal  `json:"Total"`
	Stage       string      `json:"Stage"`
	Status      QuoteStatus `json:"Status"`
	Closed      bool        `json:"IsClosed"`
	DateIssued  string      `json:"DateIssued"`
	DueDate     string      `json:"DueDate"`

	Customer        Ref         `json:"Customer"`
	CustomerContact *ContactRef `json:"CustomerContact,omitempty"`
	SiteContact     *ContactRef `json:"SiteContact,omitempty"`
	Site            *Ref        `json:"Site,omitempty"`
	Salesperson     *Ref        `json:"Salesperson,omitempty"`
}

// Customer is the company record a quote belongs to.
type Customer struct {
	ID          int64  `json:"ID"`
	CompanyName string `json:"CompanyName"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone"`
	Address     string `json:"Address"`
}

// Contact is the full person record behind a ContactRef, fetched when the
// mapper needs email and phone details.
type Contact struct {
	ID         int64  `json:"ID"`
	GivenName  string `json:"GivenName"`
	FamilyName string `json:"FamilyName"`
	Email      string `json:"Email"`
	WorkPhone  string `json:"WorkPhone"`
	CellPhone  string `json:"CellPhone"`
}

// FullName returns "GivenName FamilyName" with surrounding whitespace trimmed.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.GivenName) + " " + strings.TrimSpace(c.FamilyName))
}

// Phone returns the preferred phone number: cell first, then work.
func (c Contact) Phone() string {
	if strings.TrimSpace(c.CellPhone) != "" {
		return c.CellPhone
	}
	return c.WorkPhone
}
