// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

// BondDefinition describes a milestone that can be unlocked once per record.
// RequiredTier is informational; unlocking is decided by Condition alone.
type BondDefinition struct {
	ID           string
	Name         string
	Description  string
	RequiredTier Tier
	Condition    Condition
}

// BondStatus tracks one bond for one character
type BondStatus struct {
	BondID     string `json:"bond_id"`
	Unlocked   bool   `json:"unlocked"`
	UnlockTime int64  `json:"unlock_time"`
	Level      int    `json:"level"`
}

// NewBondStatus returns a locked status at level 1
func NewBondStatus(bondID string) *BondStatus {
	return &BondStatus{BondID: bondID, Level: 1}
}

// BondTable is an ordered set of bond definitions. Order is the unlock-check order.
type BondTable []BondDefinition

// Lookup returns the definition with the given id
func (t BondTable) Lookup(id string) (BondDefinition, bool) {
	for _, def := range t {
		if def.ID == id {
			return def, true
		}
	}
	return BondDefinition{}, false
}

// DefaultBonds returns the built-in bond table
func DefaultBonds() BondTable {
	return BondTable{
		{
			ID:           "first_meet",
			Name:         "First Meeting",
			Description:  "The memory of the first time you met",
			RequiredTier: TierStranger,
			Condition:    Always{},
		},
		{
			ID:           "shared_laugh",
			Name:         "Shared Laughter",
			Description:  "Sharing happy moments together",
			RequiredTier: TierFriend,
			Condition:    PositiveEventsAtLeast{Threshold: 5},
		},
		{
			ID:           "deep_conversation",
			Name:         "Deep Conversation",
			Description:  "Had a heartfelt, in-depth conversation",
			RequiredTier: TierCloseFriend,
			Condition:    PositiveEventsAtLeast{Threshold: 10},
		},
		{
			ID:           "trusted_confidant",
			Name:         "Trusted Confidant",
			Description:  "Became someone the other can confide in",
			RequiredTier: TierSoulmate,
			Condition:    PositiveEventsAtLeast{Threshold: 20},
		},
		{
			ID:           "storm_together",
			Name:         "Weathering the Storm",
			Description:  "Faced and overcame hardship together",
			RequiredTier: TierFriend,
			Condition:    CrisisHandledAtLeast{Threshold: 3},
		},
		{
			ID:           "heart_to_heart",
			Name:         "Heart to Heart",
			Description:  "Built a deep emotional bond",
			RequiredTier: TierSoulmate,
			Condition:    AffectionAtLeast{Threshold: 80},
		},
	}
}
