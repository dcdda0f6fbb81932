// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tejzpr/affinity-mcp/internal/database"
	"gorm.io/gorm"
)

// SQLStore persists entries in the affection_entries table
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps a migrated gorm connection
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

// Get returns the value stored under (scope, key)
func (s *SQLStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	value, _, found, err := s.GetVersioned(ctx, scope, key)
	return value, found, err
}

// Set upserts value unconditionally
func (s *SQLStore) Set(ctx context.Context, scope, key, value string) error {
	return database.PutEntry(ctx, s.db, scope, key, value)
}

// GetVersioned returns the value with its row version
func (s *SQLStore) GetVersioned(ctx context.Context, scope, key string) (string, int64, bool, error) {
	entry, err := database.GetEntry(ctx, s.db, scope, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to load entry: %w", err)
	}
	return entry.Value, entry.Version, true, nil
}

// SetIfVersion inserts when version is 0, otherwise updates only if the row
// is still at version
func (s *SQLStore) SetIfVersion(ctx context.Context, scope, key, value string, version int64) error {
	if version == 0 {
		return database.CreateEntry(ctx, s.db, scope, key, value)
	}
	return database.UpdateEntryWithVersion(ctx, s.db, scope, key, version, value)
}

// Keys lists the keys of a scope in lexical order
func (s *SQLStore) Keys(ctx context.Context, scope string) ([]string, error) {
	return database.ListStoreKeys(ctx, s.db, scope)
}
