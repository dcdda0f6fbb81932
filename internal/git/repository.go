// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package git keeps store entries in a local git repository so every
// write leaves a commit behind.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository is a local, non-bare repository rooted at Path
type Repository struct {
	Path string
	repo *git.Repository
}

// InitRepository creates the directory and an empty repository inside it
func InitRepository(path string) (*Repository, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git repository: %w", err)
	}
	return &Repository{Path: path, repo: repo}, nil
}

// OpenRepository opens an existing repository
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &Repository{Path: path, repo: repo}, nil
}

// OpenOrInit opens the repository at path. A missing repository is created
// with an empty initial commit so HEAD always resolves.
func OpenOrInit(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err == nil {
		return &Repository{Path: path, repo: repo}, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	r, err := InitRepository(path)
	if err != nil {
		return nil, err
	}

	opts := DefaultCommitOptions()
	opts.Message = CommitMessageFormats{}.InitialCommit()
	opts.AllowEmpty = true
	if err := r.AddAndCommit(nil, opts); err != nil {
		return nil, err
	}
	return r, nil
}

// RelPath converts a path under the repository root to the slash-separated
// form git expects. Relative paths are taken as already rooted.
func (r *Repository) RelPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", fmt.Errorf("path %s is outside repository: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// IsClean reports whether the worktree has no uncommitted changes
func (r *Repository) IsClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// GetHeadCommit returns the current HEAD reference
func (r *Repository) GetHeadCommit() (*plumbing.Reference, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref, nil
}
