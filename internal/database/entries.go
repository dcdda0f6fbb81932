// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tejzpr/affinity-mcp/internal/locking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query constants
const (
	queryScopeAndKey = "scope_key = ? AND store_key = ?"
)

// GetEntry loads the entry stored under (scope, key).
// It returns gorm.ErrRecordNotFound when no entry exists.
func GetEntry(ctx context.Context, db *gorm.DB, scope, key string) (*AffectionEntry, error) {
	var entry AffectionEntry
	err := db.WithContext(ctx).Where(queryScopeAndKey, scope, key).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PutEntry inserts or overwrites the value under (scope, key), bumping its version
func PutEntry(ctx context.Context, db *gorm.DB, scope, key, value string) error {
	now := time.Now()
	entry := AffectionEntry{
		ScopeKey:  scope,
		StoreKey:  key,
		Value:     value,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope_key"}, {Name: "store_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": now,
			"version":    gorm.Expr("affection_entries.version + 1"),
		}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// CreateEntry inserts a new entry at version 1.
// It returns a ConflictError if an entry already exists under (scope, key).
func CreateEntry(ctx context.Context, db *gorm.DB, scope, key, value string) error {
	entry := AffectionEntry{
		ScopeKey: scope,
		StoreKey: key,
		Value:    value,
		Version:  1,
	}

	result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to create entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &locking.ConflictError{Key: scope + "/" + key, ExpectedVersion: 0, ActualVersion: -1}
	}
	return nil
}

// UpdateEntryWithVersion performs an optimistic locking update.
// Returns ConflictError if the stored version is not currentVersion.
func UpdateEntryWithVersion(ctx context.Context, db *gorm.DB, scope, key string, currentVersion int64, value string) error {
	result := db.WithContext(ctx).Model(&AffectionEntry{}).
		Where(queryScopeAndKey+" AND version = ?", scope, key, currentVersion).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update entry: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := GetEntry(ctx, db, scope, key)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &locking.ConflictError{Key: scope + "/" + key, ExpectedVersion: currentVersion, ActualVersion: 0}
		}
		if err != nil {
			return fmt.Errorf("failed to check entry version: %w", err)
		}
		return &locking.ConflictError{Key: scope + "/" + key, ExpectedVersion: currentVersion, ActualVersion: current.Version}
	}

	return nil
}

// ListStoreKeys returns the keys stored under a scope, ordered by key
func ListStoreKeys(ctx context.Context, db *gorm.DB, scope string) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).Model(&AffectionEntry{}).
		Where("scope_key = ?", scope).
		Order("store_key").
		Pluck("store_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
