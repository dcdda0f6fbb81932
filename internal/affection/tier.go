// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

import "fmt"

// Tier is a relationship band derived from an affection value.
// Tiers are ordered: a higher ordinal means a closer relationship.
type Tier int

// Relationship tiers, lowest first
const (
	TierEnemy Tier = iota
	TierStranger
	TierAcquaintance
	TierFriend
	TierCloseFriend
	TierSoulmate
)

// Affection value bounds
const (
	MinAffection = -100
	MaxAffection = 100
)

// tierInfo is the single table consulted for every tier rendering
var tierInfo = [...]struct {
	id          string
	label       string
	description string
}{
	TierEnemy:        {"enemy", "Enemy", "They seem guarded or hostile toward you; interact carefully."},
	TierStranger:     {"stranger", "Stranger", "You have only just met and don't know each other well yet."},
	TierAcquaintance: {"acquaintance", "Acquaintance", "You know each other and have some understanding."},
	TierFriend:       {"friend", "Friend", "You are friends and get along well."},
	TierCloseFriend:  {"close_friend", "Close Friend", "You are close friends who trust each other."},
	TierSoulmate:     {"soulmate", "Soulmate", "You are soulmates with a very deep bond."},
}

// AllTiers returns every tier in ascending order
func AllTiers() []Tier {
	return []Tier{TierEnemy, TierStranger, TierAcquaintance, TierFriend, TierCloseFriend, TierSoulmate}
}

// TierOf derives the tier for an affection value.
// Bands are checked from the top down so each integer maps to exactly one tier.
func TierOf(value int) Tier {
	switch {
	case value >= 81:
		return TierSoulmate
	case value >= 51:
		return TierCloseFriend
	case value >= 11:
		return TierFriend
	case value >= -19:
		return TierAcquaintance
	case value >= -59:
		return TierStranger
	default:
		return TierEnemy
	}
}

// Valid reports whether t is one of the six defined tiers
func (t Tier) Valid() bool {
	return t >= TierEnemy && t <= TierSoulmate
}

// String returns the stable identifier, e.g. "close_friend"
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierInfo[t].id
}

// Label returns the display name of the tier
func (t Tier) Label() string {
	if !t.Valid() {
		return t.String()
	}
	return tierInfo[t].label
}

// Describe returns a one-line description of the relationship at this tier
func (t Tier) Describe() string {
	if !t.Valid() {
		return ""
	}
	return tierInfo[t].description
}

// ParseTier parses a tier identifier as returned by String
func ParseTier(s string) (Tier, error) {
	for _, t := range AllTiers() {
		if tierInfo[t].id == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier: %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier: %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
