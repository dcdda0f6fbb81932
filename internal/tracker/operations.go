// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tracker

import (
	"context"
	"fmt"

	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/store"
)

// GetOrCreate returns the stored record, seeding and persisting a new one
// at the default affection on first sight
func (t *Tracker) GetOrCreate(ctx context.Context, scope, characterID, characterName string) (*affection.Record, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}
	scope = t.scope(scope)

	var result *affection.Record
	err := t.update(ctx, scope, characterID, func(rec *affection.Record) (*affection.Record, error) {
		if rec != nil {
			result = rec
			return nil, nil
		}
		result = affection.NewRecord(characterID, characterName, t.settings.DefaultAffection, t.unix())
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status returns the relationship summary for a character, creating the
// record if needed
func (t *Tracker) Status(ctx context.Context, scope, characterID, characterName string) (*Status, error) {
	rec, err := t.GetOrCreate(ctx, scope, characterID, characterName)
	if err != nil {
		return nil, err
	}

	tier := rec.Tier()
	status := &Status{
		CharacterID:     rec.CharacterID,
		CharacterName:   rec.CharacterName,
		AffectionValue:  rec.AffectionValue,
		Tier:            tier,
		TierLabel:       tier.Label(),
		TotalPositive:   rec.TotalPositive,
		TotalNegative:   rec.TotalNegative,
		FirstMet:        rec.FirstMetTime,
		LastInteraction: rec.LastInteractionTime,
		UnlockedBonds:   []string{},
		BondDetails:     []BondSummary{},
		RecentEvents:    rec.RecentEvents(t.settings.PromptLimit),
		Relationship:    tier.Describe(),
	}

	if t.settings.EnableBonds {
		status.UnlockedBonds = rec.UnlockedBonds()
		for _, id := range status.UnlockedBonds {
			// Bonds removed from a custom table stay listed by id only
			if def, ok := t.bonds.Lookup(id); ok {
				status.BondDetails = append(status.BondDetails, BondSummary{ID: def.ID, Name: def.Name, Description: def.Description})
			}
		}
	}

	return status, nil
}

// RecordEvent applies one event to a character and evaluates bonds
func (t *Tracker) RecordEvent(ctx context.Context, scope, characterID, characterName string, delta int, eventType affection.EventType, description, eventContext string) (*EventResult, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}
	scope = t.scope(scope)

	var result *EventResult
	err := t.update(ctx, scope, characterID, func(rec *affection.Record) (*affection.Record, error) {
		now := t.unix()
		if rec == nil {
			rec = affection.NewRecord(characterID, characterName, t.settings.DefaultAffection, now)
		}

		oldTier := rec.Tier()
		affection.ApplyEvent(rec, delta, eventType, description, eventContext, t.settings.MaxHistoryEvents, now)
		newTier := rec.Tier()

		unlocked := []string{}
		if t.settings.EnableBonds {
			unlocked = affection.EvaluateBonds(rec, t.bonds, now)
		}

		result = &EventResult{
			Success:       true,
			NewAffection:  rec.AffectionValue,
			TierChanged:   oldTier != newTier,
			NewTier:       newTier,
			NewTierLabel:  newTier.Label(),
			UnlockedBonds: unlocked,
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	log := t.logger.Info().
		Str("scope", scope).
		Str("character_id", characterID).
		Int("delta", affection.ClampChange(delta)).
		Str("event_type", string(eventType)).
		Bool("custom_event_type", !eventType.IsKnown()).
		Int("affection", result.NewAffection)
	if result.TierChanged {
		log = log.Str("tier", result.NewTier.String())
	}
	if len(result.UnlockedBonds) > 0 {
		log = log.Strs("unlocked_bonds", result.UnlockedBonds)
	}
	log.Msg("affection event recorded")

	return result, nil
}

// GetHistory returns up to limit of the most recent events, oldest first.
// An unknown character has no history.
func (t *Tracker) GetHistory(ctx context.Context, scope, characterID string, limit int) ([]affection.Event, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rec, found, err := t.load(ctx, t.scope(scope), characterID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []affection.Event{}, nil
	}
	return rec.RecentEvents(limit), nil
}

// GetBondInfo reports progress toward every bond. Unknown characters are
// evaluated as a fresh record that is not persisted.
func (t *Tracker) GetBondInfo(ctx context.Context, scope, characterID string) (*BondInfo, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}

	rec, found, err := t.load(ctx, t.scope(scope), characterID)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = affection.NewRecord(characterID, unknownCharacterName, t.settings.DefaultAffection, t.unix())
	}

	info := &BondInfo{
		Enabled:    t.settings.EnableBonds,
		TotalBonds: len(t.bonds),
		Bonds:      make([]BondView, 0, len(t.bonds)),
	}

	for _, def := range t.bonds {
		view := BondView{
			ID:                   def.ID,
			Name:                 def.Name,
			Description:          def.Description,
			RequiredTier:         def.RequiredTier,
			ProgressPercent:      affection.ProgressPercent(def.Condition, rec),
			ConditionDescription: affection.ConditionText(def.Condition, rec),
		}
		if t.settings.EnableBonds && rec.IsUnlocked(def.ID) {
			view.Unlocked = true
			view.UnlockTime = rec.Bonds[def.ID].UnlockTime
		}
		if view.Unlocked {
			info.UnlockedCount++
		}
		info.Bonds = append(info.Bonds, view)
	}

	return info, nil
}

// ResetCharacter replaces a character's record with a fresh one. A missing
// character yields an unsuccessful result rather than an error.
func (t *Tracker) ResetCharacter(ctx context.Context, scope, characterID, reason string) (*ResetResult, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}
	scope = t.scope(scope)

	var result *ResetResult
	err := t.update(ctx, scope, characterID, func(rec *affection.Record) (*affection.Record, error) {
		if rec == nil {
			result = &ResetResult{Success: false, Message: fmt.Sprintf("character %s not found", characterID)}
			return nil, nil
		}

		fresh, oldValue, oldTier := affection.Reset(rec, reason, t.settings.DefaultAffection, t.unix())
		result = &ResetResult{
			Success:  true,
			Message:  fmt.Sprintf("reset affection for %s", fresh.CharacterName),
			OldValue: oldValue,
			OldTier:  oldTier,
			NewValue: fresh.AffectionValue,
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		t.logger.Warn().
			Str("scope", scope).
			Str("character_id", characterID).
			Str("reason", reason).
			Int("old_affection", result.OldValue).
			Msg("affection reset")
	}
	return result, nil
}

// ListCharacters summarizes every character stored in a scope, ordered by id
func (t *Tracker) ListCharacters(ctx context.Context, scope string) ([]CharacterSummary, error) {
	lister, ok := t.store.(store.Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	scope = t.scope(scope)

	keys, err := lister.Keys(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	summaries := make([]CharacterSummary, 0, len(keys))
	for _, key := range keys {
		id, ok := store.CharacterID(key)
		if !ok {
			continue
		}
		rec, found, err := t.load(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		// Expired between listing and loading
		if !found {
			continue
		}
		tier := rec.Tier()
		summaries = append(summaries, CharacterSummary{
			CharacterID:     rec.CharacterID,
			CharacterName:   rec.CharacterName,
			AffectionValue:  rec.AffectionValue,
			Tier:            tier,
			TierLabel:       tier.Label(),
			LastInteraction: rec.LastInteractionTime,
		})
	}
	return summaries, nil
}

// Journal returns the store's change log for a character, newest first.
// Only journaling backends such as the git store keep one.
func (t *Tracker) Journal(ctx context.Context, scope, characterID string, limit int) ([]string, error) {
	if err := validateID(characterID); err != nil {
		return nil, err
	}
	journaler, ok := t.store.(store.Journaler)
	if !ok {
		return nil, ErrJournalUnsupported
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	entries, err := journaler.History(ctx, t.scope(scope), store.StoreKey(characterID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal for %s: %w", characterID, err)
	}
	return entries, nil
}
