// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/affection"
)

// NewRecordTool creates the affection_record tool definition
func NewRecordTool() mcp.Tool {
	return mcp.NewTool("affection_record",
		mcp.WithDescription("Record an interaction that changes how a character feels. Updates the affection value (kept within -100..100), appends the event to history and unlocks any bonds whose conditions are now met."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithString(argCharacterName,
			mcp.Required(),
			mcp.Description("Display name of the character"),
		),
		mcp.WithNumber("change_amount",
			mcp.Required(),
			mcp.Description("Affection change, from -20 to 20. Values outside the range are clamped."),
		),
		mcp.WithString("event_type",
			mcp.Required(),
			mcp.Description("Kind of event: positive, negative, neutral or crisis. Other values are stored as-is."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Short description of what happened"),
		),
		mcp.WithString("context",
			mcp.Description("Optional extra context"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// RecordHandler handles the affection_record tool
func RecordHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		characterName, err := request.RequireString(argCharacterName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		change, err := request.RequireFloat("change_amount")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		eventType, err := request.RequireString("event_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		description, err := request.RequireString("description")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		eventContext := request.GetString("context", "")
		scope := request.GetString(argScope, "")

		result, err := ctx.Tracker.RecordEvent(c, scope, characterID, characterName,
			clampRound(change, affection.MinChange, affection.MaxChange), affection.EventType(eventType), description, eventContext)
		if err != nil {
			return errorResult(err), nil
		}

		return jsonResult(result)
	}
}
