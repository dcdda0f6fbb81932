// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tracker

import "github.com/tejzpr/affinity-mcp/internal/affection"

// Status summarizes a character's relationship
type Status struct {
	CharacterID     string            `json:"character_id"`
	CharacterName   string            `json:"character_name"`
	AffectionValue  int               `json:"affection_value"`
	Tier            affection.Tier    `json:"tier"`
	TierLabel       string            `json:"tier_name"`
	TotalPositive   int               `json:"total_positive"`
	TotalNegative   int               `json:"total_negative"`
	FirstMet        int64             `json:"first_met"`
	LastInteraction int64             `json:"last_interaction"`
	UnlockedBonds   []string          `json:"unlocked_bonds"`
	BondDetails     []BondSummary     `json:"bond_details"`
	RecentEvents    []affection.Event `json:"recent_events"`
	Relationship    string            `json:"relationship"`
}

// BondSummary names an unlocked bond
type BondSummary struct {
	ID          string `json:"bond_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EventResult is returned by RecordEvent
type EventResult struct {
	Success       bool           `json:"success"`
	NewAffection  int            `json:"new_affection"`
	TierChanged   bool           `json:"tier_changed"`
	NewTier       affection.Tier `json:"new_tier"`
	NewTierLabel  string         `json:"new_tier_name"`
	UnlockedBonds []string       `json:"unlocked_bonds"`
}

// BondInfo reports every bond in the table for one character
type BondInfo struct {
	Enabled       bool       `json:"enabled"`
	TotalBonds    int        `json:"total_bonds"`
	UnlockedCount int        `json:"unlocked_count"`
	Bonds         []BondView `json:"bonds"`
}

// BondView is the per-bond entry of BondInfo
type BondView struct {
	ID                   string         `json:"bond_id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	RequiredTier         affection.Tier `json:"required_tier"`
	Unlocked             bool           `json:"unlocked"`
	UnlockTime           int64          `json:"unlock_time"`
	ProgressPercent      float64        `json:"progress"`
	ConditionDescription string         `json:"condition_description"`
}

// ResetResult is returned by ResetCharacter. The value fields are only
// meaningful when Success is true.
type ResetResult struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	OldValue int            `json:"old_value"`
	OldTier  affection.Tier `json:"old_tier"`
	NewValue int            `json:"new_value"`
}

// CharacterSummary is one row of ListCharacters
type CharacterSummary struct {
	CharacterID     string         `json:"character_id"`
	CharacterName   string         `json:"character_name"`
	AffectionValue  int            `json:"affection_value"`
	Tier            affection.Tier `json:"tier"`
	TierLabel       string         `json:"tier_name"`
	LastInteraction int64          `json:"last_interaction"`
}
