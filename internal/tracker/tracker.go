// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tracker exposes the affection operations over a store.Store.
// Every read-modify-write of a record is serialized per (scope, character)
// and, on versioned backends, committed with compare-and-set.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/locking"
	"github.com/tejzpr/affinity-mcp/internal/store"
)

// DefaultHistoryLimit is used by GetHistory when no positive limit is given
const DefaultHistoryLimit = 10

// unknownCharacterName names transient records built for unseen characters
const unknownCharacterName = "Unknown"

var (
	// ErrInvalidArgument is returned for missing character ids or descriptions
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrListUnsupported is returned when the store cannot enumerate keys
	ErrListUnsupported = errors.New("store does not support listing")
	// ErrJournalUnsupported is returned when the store keeps no change history
	ErrJournalUnsupported = errors.New("store does not keep a change journal")
)

// Settings are the tunables read from configuration
type Settings struct {
	DefaultAffection int
	MaxHistoryEvents int
	PromptLimit      int
	EnableBonds      bool
	DefaultScope     string
}

// DefaultSettings mirrors the configuration defaults
func DefaultSettings() Settings {
	return Settings{
		DefaultAffection: 0,
		MaxHistoryEvents: 20,
		PromptLimit:      5,
		EnableBonds:      true,
		DefaultScope:     "default",
	}
}

// Tracker runs affection operations against a store
type Tracker struct {
	store    store.Store
	settings Settings
	bonds    affection.BondTable
	logger   zerolog.Logger
	locks    *locking.KeyedMutex
	now      func() time.Time
}

// Option customizes a Tracker
type Option func(*Tracker)

// WithBondTable replaces the built-in bond table
func WithBondTable(table affection.BondTable) Option {
	return func(t *Tracker) { t.bonds = table }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker over s
func New(s store.Store, settings Settings, opts ...Option) *Tracker {
	if settings.MaxHistoryEvents < 1 {
		settings.MaxHistoryEvents = 1
	}
	if settings.DefaultScope == "" {
		settings.DefaultScope = "default"
	}
	t := &Tracker{
		store:    s,
		settings: settings,
		bonds:    affection.DefaultBonds(),
		logger:   zerolog.Nop(),
		locks:    locking.NewKeyedMutex(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Settings returns the effective settings
func (t *Tracker) Settings() Settings {
	return t.settings
}

// BondTable returns the bond table in evaluation order
func (t *Tracker) BondTable() affection.BondTable {
	return t.bonds
}

// Ping checks the backing store when it has a connection to check
func (t *Tracker) Ping(ctx context.Context) error {
	if p, ok := t.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (t *Tracker) scope(scope string) string {
	if scope == "" {
		return t.settings.DefaultScope
	}
	return scope
}

func (t *Tracker) unix() int64 {
	return t.now().Unix()
}

// load reads and decodes a record; found is false when none is stored
func (t *Tracker) load(ctx context.Context, scope, characterID string) (*affection.Record, bool, error) {
	data, found, err := t.store.Get(ctx, scope, store.StoreKey(characterID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load character %s: %w", characterID, err)
	}
	if !found {
		return nil, false, nil
	}
	rec, err := affection.UnmarshalRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("character %s: %w", characterID, err)
	}
	return rec, true, nil
}

// mutation receives the stored record (nil when absent) and returns the
// record to persist, or nil to leave the store untouched. It may run more
// than once when a concurrent writer wins a compare-and-set race.
type mutation func(rec *affection.Record) (*affection.Record, error)

// update applies fn to the record stored under (scope, characterID)
func (t *Tracker) update(ctx context.Context, scope, characterID string, fn mutation) error {
	return t.locks.WithLock(scope+"\x00"+characterID, func() error {
		return t.apply(ctx, scope, characterID, fn)
	})
}

// apply runs one read-modify-write; the caller holds the key lock
func (t *Tracker) apply(ctx context.Context, scope, characterID string, fn mutation) error {
	key := store.StoreKey(characterID)

	versioned, ok := t.store.(store.Versioned)
	if !ok {
		rec, _, err := t.load(ctx, scope, characterID)
		if err != nil {
			return err
		}
		out, err := fn(rec)
		if err != nil || out == nil {
			return err
		}
		return t.save(out, func(data string) error {
			return t.store.Set(ctx, scope, key, data)
		})
	}

	return locking.RetryWithBackoff(ctx, locking.MaxRetries, locking.RetryDelay, func() error {
		data, version, found, err := versioned.GetVersioned(ctx, scope, key)
		if err != nil {
			return fmt.Errorf("failed to load character %s: %w", characterID, err)
		}
		var rec *affection.Record
		if found {
			if rec, err = affection.UnmarshalRecord(data); err != nil {
				return fmt.Errorf("character %s: %w", characterID, err)
			}
		}
		out, err := fn(rec)
		if err != nil || out == nil {
			return err
		}
		err = t.save(out, func(data string) error {
			return versioned.SetIfVersion(ctx, scope, key, data, version)
		})
		if locking.IsConflict(err) {
			t.logger.Debug().Str("scope", scope).Str("character_id", characterID).Msg("version conflict, retrying")
		}
		return err
	})
}

func (t *Tracker) save(rec *affection.Record, write func(string) error) error {
	data, err := affection.MarshalRecord(rec)
	if err != nil {
		return err
	}
	if err := write(data); err != nil {
		if locking.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to save character %s: %w", rec.CharacterID, err)
	}
	return nil
}

func validateID(characterID string) error {
	if characterID == "" {
		return fmt.Errorf("%w: character_id is required", ErrInvalidArgument)
	}
	return nil
}
