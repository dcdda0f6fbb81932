// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Condition kinds accepted in a bond table file
const (
	KindAlways                = "always"
	KindAffectionAtLeast      = "affection_at_least"
	KindPositiveEventsAtLeast = "positive_events_at_least"
	KindCrisisHandledAtLeast  = "crisis_handled_at_least"
	KindTierAtLeast           = "tier_at_least"
)

// bondFile is the on-disk layout of a bond table
type bondFile struct {
	Bonds []bondEntry `yaml:"bonds"`
}

type bondEntry struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	RequiredTier string         `yaml:"required_tier"`
	Condition    conditionEntry `yaml:"condition"`
}

type conditionEntry struct {
	Kind      string `yaml:"kind"`
	Threshold int    `yaml:"threshold"`
	Tier      string `yaml:"tier"`
}

// LoadBondTable reads a bond table from a YAML file
func LoadBondTable(path string) (BondTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bond table: %w", err)
	}
	return ParseBondTable(data)
}

// ParseBondTable parses a YAML bond table. Condition kinds are limited to
// the fixed set supported by Satisfied.
func ParseBondTable(data []byte) (BondTable, error) {
	var file bondFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bond table: %w", err)
	}
	if len(file.Bonds) == 0 {
		return nil, fmt.Errorf("bond table is empty")
	}

	seen := make(map[string]bool, len(file.Bonds))
	table := make(BondTable, 0, len(file.Bonds))
	for i, entry := range file.Bonds {
		if entry.ID == "" {
			return nil, fmt.Errorf("bond %d: id is required", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("bond %q: duplicate id", entry.ID)
		}
		seen[entry.ID] = true

		cond, err := entry.Condition.build()
		if err != nil {
			return nil, fmt.Errorf("bond %q: %w", entry.ID, err)
		}

		requiredTier := TierStranger
		if entry.RequiredTier != "" {
			requiredTier, err = ParseTier(entry.RequiredTier)
			if err != nil {
				return nil, fmt.Errorf("bond %q: %w", entry.ID, err)
			}
		}

		name := entry.Name
		if name == "" {
			name = entry.ID
		}

		table = append(table, BondDefinition{
			ID:           entry.ID,
			Name:         name,
			Description:  entry.Description,
			RequiredTier: requiredTier,
			Condition:    cond,
		})
	}
	return table, nil
}

func (c conditionEntry) build() (Condition, error) {
	switch c.Kind {
	case KindAlways:
		return Always{}, nil
	case KindAffectionAtLeast:
		if c.Threshold < MinAffection || c.Threshold > MaxAffection {
			return nil, fmt.Errorf("affection threshold must be between %d and %d, got %d", MinAffection, MaxAffection, c.Threshold)
		}
		return AffectionAtLeast{Threshold: c.Threshold}, nil
	case KindPositiveEventsAtLeast:
		if c.Threshold < 1 {
			return nil, fmt.Errorf("positive events threshold must be at least 1, got %d", c.Threshold)
		}
		return PositiveEventsAtLeast{Threshold: c.Threshold}, nil
	case KindCrisisHandledAtLeast:
		if c.Threshold < 1 {
			return nil, fmt.Errorf("crisis threshold must be at least 1, got %d", c.Threshold)
		}
		return CrisisHandledAtLeast{Threshold: c.Threshold}, nil
	case KindTierAtLeast:
		tier, err := ParseTier(c.Tier)
		if err != nil {
			return nil, err
		}
		return TierAtLeast{Tier: tier}, nil
	case "":
		return nil, fmt.Errorf("condition kind is required")
	default:
		return nil, fmt.Errorf("unsupported condition kind: %q", c.Kind)
	}
}
