// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"regexp"
	"strconv"
	"strings"
)

// ColumnValue is one typed value for a board column. Each board field
// kind gets its own variant so the validation rules are enforced where
// the value is built, not at serialization time.
type ColumnValue interface {
	// BoardValue returns the JSON-marshalable shape the board API
	// expects for this column kind.
	BoardValue() interface{}
}

// TextValue is a plain text column value.
type TextValue string

func (v TextValue) BoardValue() interface{} { return string(v) }

// NumberValue is a numeric column value; monetary totals pass through raw.
type NumberValue float64

func (v NumberValue) BoardValue() interface{} { return float64(v) }

// EmailValue is a validated email column value.
type EmailValue string

func (v EmailValue) BoardValue() interface{} {
	return map[string]interface{}{"email": string(v), "text": string(v)}
}

// PhoneValue is a cleaned phone number plus the deployment's default
// country code.
type PhoneValue struct {
	Number      string
	CountryCode string
}

func (v PhoneValue) BoardValue() interface{} {
	return map[string]interface{}{"phone": v.Number, "countryShortName": v.CountryCode}
}

// DateValue is a date column value in YYYY-MM-DD form.
type DateValue string

func (v DateValue) BoardValue() interface{} {
	return map[string]interface{}{"date": string(v)}
}

// StatusValue is a single-select column value addressed by label.
type StatusValue string

func (v StatusValue) BoardValue() interface{} {
	return map[string]interface{}{"label": string(v)}
}

// RelationValue links to other board items by numeric item id.
type RelationValue []int64

func (v RelationValue) BoardValue() interface{} {
	return map[string]interface{}{"item_ids": []int64(v)}
}

// PersonValue assigns a board user, for the deal owner column.
type PersonValue int64

func (v PersonValue) BoardValue() interface{} {
	return map[string]interface{}{
		"personsAndTeams": []map[string]interface{}{
			{"id": int64(v), "kind": "person"},
		},
	}
}

// ColumnMap is the set of column values sent with a create or update.
type ColumnMap map[string]ColumnValue

// BoardValues flattens the map into the JSON shape for the board API.
func (m ColumnMap) BoardValues() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for id, value := range m {
		out[id] = value.BoardValue()
	}
	return out
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CleanEmail trims, lowercases and validates an email address. A failed
// validation returns a *ValidationError; callers log it and omit the
// field rather than sending bad data to the board.
func CleanEmail(raw string) (EmailValue, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", &ValidationError{Field: "email", Value: raw, Reason: "empty"}
	}
	if !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: "email", Value: raw, Reason: "does not match local@domain.tld"}
	}
	return EmailValue(email), nil
}

// CleanPhone strips everything except digits and a leading '+', and
// requires at least 8 characters to survive. The deployment's default
// country code is attached for the board's phone field shape.
func CleanPhone(raw, countryCode string) (PhoneValue, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if len(cleaned) < 8 {
		return PhoneValue{}, &ValidationError{Field: "phone", Value: raw, Reason: "fewer than 8 significant characters"}
	}
	return PhoneValue{Number: cleaned, CountryCode: countryCode}, nil
}

// RelationFromItemIDs parses board item id strings into a relation value.
// Unparseable ids are dropped; board item ids are numeric in practice.
func RelationFromItemIDs(itemIDs ...string) RelationValue {
	ids := make([]int64, 0, len(itemIDs))
	for _, raw := range itemIDs {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return RelationValue(ids)
}
