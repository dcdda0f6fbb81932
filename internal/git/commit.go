// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrNoChanges is returned when a commit would be empty
var ErrNoChanges = errors.New("no changes to commit")

// CommitOptions holds options for creating commits
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	AllowEmpty bool
}

// DefaultCommitOptions returns default commit options
func DefaultCommitOptions() *CommitOptions {
	return &CommitOptions{
		Author:     "Affinity",
		Email:      "store@affinity.local",
		AllowEmpty: false,
	}
}

// CommitFile commits a single file to the repository
func (r *Repository) CommitFile(filePath, message string) error {
	opts := DefaultCommitOptions()
	opts.Message = message
	return r.AddAndCommit([]string{filePath}, opts)
}

// AddAndCommit stages files and commits them
func (r *Repository) AddAndCommit(files []string, opts *CommitOptions) error {
	if opts == nil {
		opts = DefaultCommitOptions()
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, file := range files {
		relPath, err := r.RelPath(file)
		if err != nil {
			return err
		}
		if _, err := worktree.Add(relPath); err != nil {
			return fmt.Errorf("failed to add file %s: %w", relPath, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status.IsClean() && !opts.AllowEmpty {
		return ErrNoChanges
	}

	_, err = worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetFileHistory returns up to maxCount commits touching path, newest
// first. A maxCount of zero or less returns every commit.
func (r *Repository) GetFileHistory(relPath string, maxCount int) ([]*object.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	path, err := r.RelPath(relPath)
	if err != nil {
		return nil, err
	}
	commitIter, err := r.repo.Log(&git.LogOptions{
		From:     ref.Hash(),
		FileName: &path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer commitIter.Close()

	var commits []*object.Commit
	err = commitIter.ForEach(func(c *object.Commit) error {
		if maxCount > 0 && len(commits) >= maxCount {
			return storer.ErrStop
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return commits, nil
}

// CommitMessageFormats provides standard commit message formats
type CommitMessageFormats struct{}

// WriteEntry returns a commit message for writing a store entry
func (CommitMessageFormats) WriteEntry(scope, key string) string {
	return fmt.Sprintf("update: Write %s/%s", scope, key)
}

// InitialCommit returns a commit message for repository initialization
func (CommitMessageFormats) InitialCommit() string {
	return "chore: Initialize Affinity store"
}
