// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

import "fmt"

// ApplyEvent records one occurrence on the record and updates its score.
// The change is clamped to [MinChange, MaxChange] and the history is trimmed
// from the oldest end to maxHistory entries.
func ApplyEvent(r *Record, delta int, eventType EventType, description, context string, maxHistory int, now int64) Event {
	delta = ClampChange(delta)

	event := Event{
		Timestamp:    now,
		ChangeAmount: delta,
		EventType:    eventType,
		Description:  description,
		Context:      context,
	}

	r.Events = append(r.Events, event)
	trimHistory(r, maxHistory)
	r.LastInteractionTime = event.Timestamp

	switch {
	case delta > 0:
		r.TotalPositive += delta
	case delta < 0:
		r.TotalNegative += -delta
	}

	r.AffectionValue = ClampAffection(r.AffectionValue + delta)
	return event
}

func trimHistory(r *Record, maxHistory int) {
	if maxHistory < 1 {
		maxHistory = 1
	}
	if overflow := len(r.Events) - maxHistory; overflow > 0 {
		kept := make([]Event, maxHistory)
		copy(kept, r.Events[overflow:])
		r.Events = kept
	}
}

// EvaluateBonds unlocks every bond in the table whose condition now holds.
// Already unlocked bonds are never re-fired. It returns the ids unlocked by
// this call, in table order.
func EvaluateBonds(r *Record, table BondTable, now int64) []string {
	if r.Bonds == nil {
		r.Bonds = make(map[string]*BondStatus)
	}

	unlocked := []string{}
	for _, def := range table {
		status, ok := r.Bonds[def.ID]
		if !ok {
			status = NewBondStatus(def.ID)
			r.Bonds[def.ID] = status
		}
		if status.Unlocked {
			continue
		}
		if Satisfied(def.Condition, r) {
			status.Unlocked = true
			status.UnlockTime = now
			unlocked = append(unlocked, def.ID)
		}
	}
	return unlocked
}

// Reset replaces a record with a fresh one that keeps only the character's
// identity, and logs a single neutral event describing the prior state.
// Bond progress and history are discarded.
func Reset(r *Record, reason string, defaultAffection int, now int64) (fresh *Record, oldValue int, oldTier Tier) {
	oldValue = r.AffectionValue
	oldTier = r.Tier()

	fresh = NewRecord(r.CharacterID, r.CharacterName, defaultAffection, now)
	fresh.Events = append(fresh.Events, Event{
		Timestamp:    now,
		ChangeAmount: 0,
		EventType:    EventNeutral,
		Description:  fmt.Sprintf("affection reset (reason: %s)", reason),
		Context:      fmt.Sprintf("before reset: %d (%s)", oldValue, oldTier),
	})
	return fresh, oldValue, oldTier
}
