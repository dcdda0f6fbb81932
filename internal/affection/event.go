// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package affection

// EventType categorizes an affection event. Values outside the known set
// are accepted and stored verbatim.
type EventType string

// Known event types
const (
	EventPositive EventType = "positive"
	EventNegative EventType = "negative"
	EventNeutral  EventType = "neutral"
	EventCrisis   EventType = "crisis"
)

// Per-event change bounds
const (
	MinChange = -20
	MaxChange = 20
)

// IsKnown reports whether the type is one of the built-in categories
func (e EventType) IsKnown() bool {
	switch e {
	case EventPositive, EventNegative, EventNeutral, EventCrisis:
		return true
	}
	return false
}

// Event is one affection-changing occurrence. Events are never modified
// after they are appended to a record.
type Event struct {
	Timestamp    int64     `json:"timestamp"`
	ChangeAmount int       `json:"change_amount"`
	EventType    EventType `json:"event_type"`
	Description  string    `json:"description"`
	Context      string    `json:"context,omitempty"`
}

// handledCrisis reports whether the event counts as a crisis handled well
func (e Event) handledCrisis() bool {
	return e.EventType == EventCrisis && e.ChangeAmount > 0
}

// ClampChange bounds a requested change to [MinChange, MaxChange]
func ClampChange(delta int) int {
	return clamp(delta, MinChange, MaxChange)
}

// ClampAffection bounds an affection value to [MinAffection, MaxAffection]
func ClampAffection(value int) int {
	return clamp(value, MinAffection, MaxAffection)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
