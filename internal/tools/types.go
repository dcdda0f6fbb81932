// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
)

// Shared argument names
const (
	argScope         = "scope"
	argCharacterID   = "character_id"
	argCharacterName = "character_name"
	scopeDescription = "Conversation scope the character belongs to. Defaults to the server's default scope."
)

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Tracker *tracker.Tracker
}

// NewToolContext creates a new tool context
func NewToolContext(t *tracker.Tracker) *ToolContext {
	return &ToolContext{Tracker: t}
}

// jsonResult encodes v as the text content of a tool result
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult converts a tracker error into a tool error
func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, tracker.ErrInvalidArgument) ||
		errors.Is(err, tracker.ErrListUnsupported) ||
		errors.Is(err, tracker.ErrJournalUnsupported) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("affection store error: %v", err))
}

// intArg reads a numeric argument, rounding to the nearest integer and
// clamping to [lo, hi]
func intArg(request mcp.CallToolRequest, name string, defaultValue, lo, hi int) int {
	return clampRound(request.GetFloat(name, float64(defaultValue)), lo, hi)
}

// clampRound bounds f before converting so out-of-range floats never wrap.
// NaN maps to lo.
func clampRound(f float64, lo, hi int) int {
	switch {
	case math.IsNaN(f):
		return lo
	case f <= float64(lo):
		return lo
	case f >= float64(hi):
		return hi
	}
	return int(math.Round(f))
}
