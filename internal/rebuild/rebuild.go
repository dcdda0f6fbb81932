// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rebuild copies affection records from one store into another,
// for example to rebuild a database index from the git audit store.
package rebuild

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/store"
)

// Source is a store whose keys can be enumerated
type Source interface {
	store.Store
	store.Lister
}

// Options configures rebuild behavior
type Options struct {
	Force bool // Overwrite records that already exist in the destination
}

// Result contains statistics from the rebuild operation
type Result struct {
	RecordsProcessed int
	RecordsCopied    int
	RecordsSkipped   int
	Errors           []string
}

// Rebuild copies every affection record in the given scopes from src to dst.
// Records that fail to decode are reported in Result.Errors and skipped.
// Storage failures abort the rebuild.
func Rebuild(ctx context.Context, src Source, dst store.Store, scopes []string, opts Options, logger zerolog.Logger) (*Result, error) {
	result := &Result{}

	for _, scope := range scopes {
		keys, err := src.Keys(ctx, scope)
		if err != nil {
			return result, fmt.Errorf("failed to list scope %s: %w", scope, err)
		}

		logger.Info().Str("scope", scope).Int("keys", len(keys)).Msg("rebuilding scope")

		for _, key := range keys {
			if _, ok := store.CharacterID(key); !ok {
				continue
			}
			result.RecordsProcessed++

			copied, err := copyRecord(ctx, src, dst, scope, key, opts)
			if err != nil {
				if isDecodeError(err) {
					result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", scope, key, err))
					continue
				}
				return result, err
			}
			if copied {
				result.RecordsCopied++
			} else {
				result.RecordsSkipped++
			}
		}
	}

	return result, nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	_, ok := err.(*decodeError)
	return ok
}

// copyRecord returns false when the record was left alone
func copyRecord(ctx context.Context, src, dst store.Store, scope, key string, opts Options) (bool, error) {
	if !opts.Force {
		_, exists, err := dst.Get(ctx, scope, key)
		if err != nil {
			return false, fmt.Errorf("failed to check %s/%s: %w", scope, key, err)
		}
		if exists {
			return false, nil
		}
	}

	value, found, err := src.Get(ctx, scope, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s/%s: %w", scope, key, err)
	}
	if !found {
		return false, nil
	}

	rec, err := affection.UnmarshalRecord(value)
	if err != nil {
		return false, &decodeError{err: err}
	}

	// Re-encode so the destination always holds the canonical form
	data, err := affection.MarshalRecord(rec)
	if err != nil {
		return false, &decodeError{err: err}
	}

	if err := dst.Set(ctx, scope, key, data); err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", scope, key, err)
	}
	return true, nil
}
