// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
)

// maxHistoryLimit bounds the limit argument; stored history is far shorter
const maxHistoryLimit = 1000

// NewHistoryTool creates the affection_history tool definition
func NewHistoryTool() mcp.Tool {
	return mcp.NewTool("affection_history",
		mcp.WithDescription("List a character's most recent affection events, oldest first. Returns an empty list for characters that have never been seen."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum events to return. Default: 10"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// HistoryHandler handles the affection_history tool
func HistoryHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := intArg(request, "limit", tracker.DefaultHistoryLimit, 0, maxHistoryLimit)
		scope := request.GetString(argScope, "")

		events, err := ctx.Tracker.GetHistory(c, scope, characterID, limit)
		if err != nil {
			return errorResult(err), nil
		}

		return jsonResult(events)
	}
}
