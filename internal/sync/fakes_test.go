// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package sync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jgreen210/quotebridge/internal/models"
)

type createCall struct {
	boardID int64
	name    string
	columns ColumnMap
}

type updateCall struct {
	boardID  int64
	itemID   string
	columnID string
	value    ColumnValue
}

// fakeBoard is an in-memory BoardAPI. Items live in per-board slices and
// SearchPage paginates them with numeric offsets as cursors.
type fakeBoard struct {
	items map[int64][]models.BoardItem

	nextID      int
	searchCalls int
	creates     []createCall
	updates     []updateCall
	deletes     []string

	searchErr error
	createErr error

	// createErrBoards rejects creates on specific boards only.
	createErrBoards map[int64]error
	// updateErrColumns rejects updates of specific columns only.
	updateErrColumns map[string]error
	// blindBoards makes searches on these boards come back empty, the
	// way a lagging index does, while creates still land.
	blindBoards map[int64]bool
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{items: make(map[int64][]models.BoardItem), nextID: 1000}
}

func (f *fakeBoard) addItem(boardID int64, item models.BoardItem) {
	f.items[boardID] = append(f.items[boardID], item)
}

func (f *fakeBoard) SearchPage(ctx context.Context, boardID int64, cursor string, pageSize int, columnIDs []string) (*models.BoardPage, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.blindBoards[boardID] {
		return &models.BoardPage{}, nil
	}

	all := f.items[boardID]
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
	}
	end := start + pageSize
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	} else {
		end = len(all)
	}
	return &models.BoardPage{Items: all[start:end], Cursor: next}, nil
}

func (f *fakeBoard) CreateItem(ctx context.Context, boardID int64, name string, columns ColumnMap) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if err := f.createErrBoards[boardID]; err != nil {
		return "", err
	}
	f.creates = append(f.creates, createCall{boardID: boardID, name: name, columns: columns})

	f.nextID++
	id := strconv.Itoa(f.nextID)
	values := make(map[string]string, len(columns))
	for columnID, value := range columns {
		if text, ok := value.(TextValue); ok {
			values[columnID] = string(text)
		}
	}
	f.addItem(boardID, models.BoardItem{ID: id, Name: name, ColumnValues: values})
	return id, nil
}

func (f *fakeBoard) UpdateColumn(ctx context.Context, boardID int64, itemID, columnID string, value ColumnValue) error {
	if err := f.updateErrColumns[columnID]; err != nil {
		return err
	}
	f.updates = append(f.updates, updateCall{boardID: boardID, itemID: itemID, columnID: columnID, value: value})
	return nil
}

func (f *fakeBoard) DeleteItem(ctx context.Context, itemID string) error {
	f.deletes = append(f.deletes, itemID)
	for boardID, items := range f.items {
		for i := range items {
			if items[i].ID == itemID {
				f.items[boardID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeBoard) Ping(ctx context.Context) error { return nil }

// fakeFieldService is an in-memory FieldServiceAPI backed by maps.
type fakeFieldService struct {
	summaries []models.QuoteSummary
	quotes    map[int64]*models.Quote
	customers map[int64]*models.Customer
	contacts  map[int64]*models.Contact

	quoteErr error
	pingErr  error
}

func newFakeFieldService() *fakeFieldService {
	return &fakeFieldService{
		quotes:    make(map[int64]*models.Quote),
		customers: make(map[int64]*models.Customer),
		contacts:  make(map[int64]*models.Contact),
	}
}

func (f *fakeFieldService) ListQuotes(ctx context.Context, page int, includeClosed bool, columns []string) ([]models.QuoteSummary, error) {
	if page > 1 {
		return nil, nil
	}
	return f.summaries, nil
}

func (f *fakeFieldService) GetQuote(ctx context.Context, quoteID int64) (*models.Quote, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q, ok := f.quotes[quoteID]
	if !ok {
		return nil, fmt.Errorf("quote %d: %w", quoteID, ErrNotFound)
	}
	return q, nil
}

func (f *fakeFieldService) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
	}
	return c, nil
}

func (f *fakeFieldService) GetContact(ctx context.Context, contactID int64) (*models.Contact, error) {
	c, ok := f.contacts[contactID]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", contactID, ErrNotFound)
	}
	return c, nil
}

func (f *fakeFieldService) Ping(ctx context.Context) error { return f.pingErr }
