// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tejzpr/affinity-mcp/internal/locking"
)

type memoryEntry struct {
	value   string
	version int64
}

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]memoryEntry)}
}

// Get returns the value stored under (scope, key)
func (m *MemoryStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	value, _, found, err := m.GetVersioned(ctx, scope, key)
	return value, found, err
}

// Set stores value unconditionally
func (m *MemoryStore) Set(ctx context.Context, scope, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.scopeLocked(scope)[key]
	m.entries[scope][key] = memoryEntry{value: value, version: entry.version + 1}
	return nil
}

// GetVersioned returns the value with its version
func (m *MemoryStore) GetVersioned(ctx context.Context, scope, key string) (string, int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[scope][key]
	if !ok {
		return "", 0, false, nil
	}
	return entry.value, entry.version, true, nil
}

// SetIfVersion writes value only if the entry is still at version
func (m *MemoryStore) SetIfVersion(ctx context.Context, scope, key, value string, version int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.scopeLocked(scope)[key]
	if entry.version != version {
		return &locking.ConflictError{Key: scope + "/" + key, ExpectedVersion: version, ActualVersion: entry.version}
	}
	m.entries[scope][key] = memoryEntry{value: value, version: version + 1}
	return nil
}

// Keys lists the keys of a scope in lexical order
func (m *MemoryStore) Keys(ctx context.Context, scope string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries[scope]))
	for k := range m.entries[scope] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) scopeLocked(scope string) map[string]memoryEntry {
	entries, ok := m.entries[scope]
	if !ok {
		entries = make(map[string]memoryEntry)
		m.entries[scope] = entries
	}
	return entries
}
