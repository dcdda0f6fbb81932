// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
)

// NewJournalTool creates the affection_journal tool definition
func NewJournalTool() mcp.Tool {
	return mcp.NewTool("affection_journal",
		mcp.WithDescription("Show the storage audit trail for a character, newest first. Only available when the server uses the git store, where every change is a commit."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return. Default: 10"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// JournalHandler handles the affection_journal tool
func JournalHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := intArg(request, "limit", tracker.DefaultHistoryLimit, 0, maxHistoryLimit)
		scope := request.GetString(argScope, "")

		entries, err := ctx.Tracker.Journal(c, scope, characterID, limit)
		if err != nil {
			return errorResult(err), nil
		}

		return jsonResult(entries)
	}
}
