// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"
)

// AffectionEntry is one serialized value stored under (scope, key).
// Version starts at 1 and increases on every write.
type AffectionEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ScopeKey  string    `gorm:"uniqueIndex:idx_entries_scope_store;not null" json:"scope_key"`
	StoreKey  string    `gorm:"uniqueIndex:idx_entries_scope_store;not null" json:"store_key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for AffectionEntry
func (AffectionEntry) TableName() string {
	return "affection_entries"
}
