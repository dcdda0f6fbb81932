// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is the durable affection state for one character in one scope
type Record struct {
	CharacterID         string                 `json:"character_id"`
	CharacterName       string                 `json:"character_name"`
	AffectionValue      int                    `json:"affection_value"`
	TotalPositive       int                    `json:"total_positive"`
	TotalNegative       int                    `json:"total_negative"`
	FirstMetTime        int64                  `json:"first_met_time"`
	LastInteractionTime int64                  `json:"last_interaction_time"`
	Events              []Event                `json:"events"`
	Bonds               map[string]*BondStatus `json:"bonds"`
}

// NewRecord seeds a record for a character met at time now
func NewRecord(characterID, characterName string, initialAffection int, now int64) *Record {
	return &Record{
		CharacterID:         characterID,
		CharacterName:       characterName,
		AffectionValue:      ClampAffection(initialAffection),
		FirstMetTime:        now,
		LastInteractionTime: now,
		Events:              []Event{},
		Bonds:               make(map[string]*BondStatus),
	}
}

// Tier returns the tier for the current affection value
func (r *Record) Tier() Tier {
	return TierOf(r.AffectionValue)
}

// RecentEvents returns up to n of the most recent events, oldest first
func (r *Record) RecentEvents(n int) []Event {
	if n <= 0 {
		return []Event{}
	}
	start := len(r.Events) - n
	if start < 0 {
		start = 0
	}
	out := make([]Event, len(r.Events)-start)
	copy(out, r.Events[start:])
	return out
}

// IsUnlocked reports whether the bond has been unlocked
func (r *Record) IsUnlocked(bondID string) bool {
	status, ok := r.Bonds[bondID]
	return ok && status.Unlocked
}

// UnlockedBonds returns the ids of unlocked bonds ordered by unlock time
func (r *Record) UnlockedBonds() []string {
	statuses := make([]*BondStatus, 0, len(r.Bonds))
	for _, status := range r.Bonds {
		if status.Unlocked {
			statuses = append(statuses, status)
		}
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].UnlockTime != statuses[j].UnlockTime {
			return statuses[i].UnlockTime < statuses[j].UnlockTime
		}
		return statuses[i].BondID < statuses[j].BondID
	})

	ids := make([]string, len(statuses))
	for i, status := range statuses {
		ids[i] = status.BondID
	}
	return ids
}

// MarshalRecord serializes a record to JSON
func MarshalRecord(r *Record) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode affection record: %w", err)
	}
	return string(data), nil
}

// UnmarshalRecord decodes a record produced by MarshalRecord
func UnmarshalRecord(data string) (*Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode affection record: %w", err)
	}
	if r.Events == nil {
		r.Events = []Event{}
	}
	if r.Bonds == nil {
		r.Bonds = make(map[string]*BondStatus)
	}
	return &r, nil
}
