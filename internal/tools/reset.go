// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewResetTool creates the affection_reset tool definition
func NewResetTool() mcp.Tool {
	return mcp.NewTool("affection_reset",
		mcp.WithDescription("Reset a character's relationship to the default affection, clearing history and bonds. Use sparingly; the reason is kept in the new history."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("Why the relationship is being reset"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// ResetHandler handles the affection_reset tool
func ResetHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reason, err := request.RequireString("reason")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		scope := request.GetString(argScope, "")

		result, err := ctx.Tracker.ResetCharacter(c, scope, characterID, reason)
		if err != nil {
			return errorResult(err), nil
		}

		if !result.Success {
			return jsonResult(map[string]interface{}{
				"success": false,
				"message": result.Message,
			})
		}
		return jsonResult(result)
	}
}
