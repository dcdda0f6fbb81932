// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

import (
	"fmt"
	"math"
)

// Condition gates a bond unlock. The set of implementations is closed:
// Always, AffectionAtLeast, PositiveEventsAtLeast, CrisisHandledAtLeast
// and TierAtLeast.
type Condition interface {
	condition()
}

// Always is satisfied unconditionally
type Always struct{}

// AffectionAtLeast is satisfied when the affection value reaches Threshold
type AffectionAtLeast struct {
	Threshold int
}

// PositiveEventsAtLeast is satisfied when the cumulative positive total reaches Threshold
type PositiveEventsAtLeast struct {
	Threshold int
}

// CrisisHandledAtLeast is satisfied when the retained history holds at least
// Threshold crisis events with a positive change. Events trimmed out of the
// bounded history no longer count.
type CrisisHandledAtLeast struct {
	Threshold int
}

// TierAtLeast is satisfied when the current tier is Tier or higher
type TierAtLeast struct {
	Tier Tier
}

func (Always) condition()                {}
func (AffectionAtLeast) condition()      {}
func (PositiveEventsAtLeast) condition() {}
func (CrisisHandledAtLeast) condition()  {}
func (TierAtLeast) condition()           {}

// CrisisHandledCount counts crisis events with a positive change in the
// record's retained history
func CrisisHandledCount(rec *Record) int {
	count := 0
	for _, e := range rec.Events {
		if e.handledCrisis() {
			count++
		}
	}
	return count
}

// Satisfied evaluates a condition against the current record state
func Satisfied(cond Condition, rec *Record) bool {
	switch c := cond.(type) {
	case Always:
		return true
	case AffectionAtLeast:
		return rec.AffectionValue >= c.Threshold
	case PositiveEventsAtLeast:
		return rec.TotalPositive >= c.Threshold
	case CrisisHandledAtLeast:
		return CrisisHandledCount(rec) >= c.Threshold
	case TierAtLeast:
		return rec.Tier() >= c.Tier
	default:
		return false
	}
}

// Progress returns how close the record is to satisfying a condition, in [0, 1]
func Progress(cond Condition, rec *Record) float64 {
	switch c := cond.(type) {
	case Always:
		return 1.0
	case AffectionAtLeast:
		return ratio(rec.AffectionValue, c.Threshold)
	case PositiveEventsAtLeast:
		return ratio(rec.TotalPositive, c.Threshold)
	case CrisisHandledAtLeast:
		return ratio(CrisisHandledCount(rec), c.Threshold)
	case TierAtLeast:
		// The lowest tier is reached by every record
		if c.Tier == TierEnemy {
			return 1.0
		}
		return ratio(int(rec.Tier()), int(c.Tier))
	default:
		return 0
	}
}

// ProgressPercent returns Progress as a percentage rounded to one decimal
func ProgressPercent(cond Condition, rec *Record) float64 {
	return math.Round(Progress(cond, rec)*1000) / 10
}

// ConditionText describes a condition together with the record's current value
func ConditionText(cond Condition, rec *Record) string {
	switch c := cond.(type) {
	case Always:
		return "unlocked on first meeting"
	case AffectionAtLeast:
		return fmt.Sprintf("affection >= %d (current: %d)", c.Threshold, rec.AffectionValue)
	case PositiveEventsAtLeast:
		return fmt.Sprintf("cumulative positive affection >= %d (current: %d)", c.Threshold, rec.TotalPositive)
	case CrisisHandledAtLeast:
		return fmt.Sprintf("crises weathered together >= %d (current: %d)", c.Threshold, CrisisHandledCount(rec))
	case TierAtLeast:
		return fmt.Sprintf("relationship at %s or above (current: %s)", c.Tier.Label(), rec.Tier().Label())
	default:
		return "unknown condition"
	}
}

func ratio(current, threshold int) float64 {
	if threshold <= 0 {
		return 1.0
	}
	r := float64(current) / float64(threshold)
	return math.Max(0, math.Min(1.0, r))
}
