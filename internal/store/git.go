// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tejzpr/affinity-mcp/internal/git"
)

const gitEntryExt = ".json"

var safeSegment = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

// GitStore writes each entry to <repo>/<scope>/<key>.json and commits every
// change, so the repository log doubles as an audit trail.
type GitStore struct {
	mu   sync.Mutex
	repo *git.Repository
}

// NewGitStore opens the repository at path, creating it if needed
func NewGitStore(path string) (*GitStore, error) {
	repo, err := git.OpenOrInit(path)
	if err != nil {
		return nil, err
	}
	return &GitStore{repo: repo}, nil
}

// Get returns the value stored under (scope, key)
func (g *GitStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.entryPath(scope, key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read entry: %w", err)
	}
	return string(data), true, nil
}

// Set writes the entry file and commits it
func (g *GitStore) Set(ctx context.Context, scope, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.entryPath(scope, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create scope directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	msg := git.CommitMessageFormats{}.WriteEntry(scope, key)
	if err := g.repo.CommitFile(path, msg); err != nil && !errors.Is(err, git.ErrNoChanges) {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// Keys lists the keys of a scope in lexical order
func (g *GitStore) Keys(ctx context.Context, scope string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(g.repo.Path, encodeSegment(scope)))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list scope: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, gitEntryExt) {
			continue
		}
		key, ok := decodeSegment(strings.TrimSuffix(name, gitEntryExt))
		if ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// History returns the commit messages that touched (scope, key), newest first
func (g *GitStore) History(ctx context.Context, scope, key string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	commits, err := g.repo.GetFileHistory(g.entryPath(scope, key), limit)
	if err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, strings.TrimSpace(c.Message))
	}
	return messages, nil
}

func (g *GitStore) entryPath(scope, key string) string {
	return filepath.Join(g.repo.Path, encodeSegment(scope), encodeSegment(key)+gitEntryExt)
}

// encodeSegment maps an arbitrary scope or key to a single safe path
// element. Names that are not already safe are hex-encoded behind a "~".
func encodeSegment(s string) string {
	if safeSegment.MatchString(s) {
		return s
	}
	return "~" + hex.EncodeToString([]byte(s))
}

func decodeSegment(s string) (string, bool) {
	if !strings.HasPrefix(s, "~") {
		return s, safeSegment.MatchString(s)
	}
	raw, err := hex.DecodeString(s[1:])
	if err != nil {
		return "", false
	}
	return string(raw), true
}
