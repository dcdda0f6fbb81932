// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/config"
	"github.com/tejzpr/affinity-mcp/internal/store"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
)

// NewTracker opens the configured store and builds a tracker over it.
// The returned CloseFunc releases the store.
func NewTracker(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*tracker.Tracker, store.CloseFunc, error) {
	table := affection.DefaultBonds()
	if cfg.Affection.BondsFile != "" {
		loaded, err := affection.LoadBondTable(cfg.Affection.BondsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load bonds file: %w", err)
		}
		table = loaded
		logger.Info().Str("path", cfg.Affection.BondsFile).Int("bonds", len(table)).Msg("loaded bond table")
	}

	s, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	logger.Info().Str("store", cfg.Store.Type).Msg("store ready")

	settings := tracker.Settings{
		DefaultAffection: cfg.Affection.DefaultAffection,
		MaxHistoryEvents: cfg.Affection.MaxHistoryEvents,
		PromptLimit:      cfg.Affection.PromptLimit,
		EnableBonds:      cfg.Affection.EnableBonds,
		DefaultScope:     cfg.Affection.DefaultScope,
	}

	tr := tracker.New(s, settings,
		tracker.WithBondTable(table),
		tracker.WithLogger(logger.With().Str("component", "tracker").Logger()),
	)
	return tr, closeStore, nil
}
