// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package store persists serialized affection records keyed by
// (scope, key). Scopes are opaque conversation identifiers.
package store

import (
	"context"
	"errors"
	"strings"
)

// KeyPrefix is prepended to a character id to form its store key
const KeyPrefix = "affection_"

// ErrUnsupportedStore is returned when a configured backend is unknown
var ErrUnsupportedStore = errors.New("unsupported store type")

// Store is the key-value contract every backend satisfies
type Store interface {
	// Get returns the stored value and whether it exists
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
}

// Versioned is implemented by backends that support compare-and-set writes.
// Version 0 means "not yet stored".
type Versioned interface {
	Store
	GetVersioned(ctx context.Context, scope, key string) (value string, version int64, found bool, err error)
	// SetIfVersion writes value only when the stored version still equals
	// version, returning *locking.ConflictError otherwise.
	SetIfVersion(ctx context.Context, scope, key, value string, version int64) error
}

// Lister is implemented by backends that can enumerate the keys of a scope
type Lister interface {
	Keys(ctx context.Context, scope string) ([]string, error)
}

// Journaler is implemented by backends that keep a change history per key
type Journaler interface {
	// History returns change descriptions for (scope, key), newest first.
	// A limit of zero or less returns everything.
	History(ctx context.Context, scope, key string, limit int) ([]string, error)
}

// Pinger is implemented by backends with a remote connection to check
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreKey returns the key under which a character's record is stored
func StoreKey(characterID string) string {
	return KeyPrefix + characterID
}

// CharacterID reverses StoreKey. ok is false for keys that do not hold a record.
func CharacterID(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefix) || len(key) == len(KeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, KeyPrefix), true
}
