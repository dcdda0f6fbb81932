// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewBondsTool creates the affection_bonds tool definition
func NewBondsTool() mcp.Tool {
	return mcp.NewTool("affection_bonds",
		mcp.WithDescription("Show every bond milestone for a character: whether it is unlocked, progress toward it as a percentage and what it takes to unlock."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// BondsHandler handles the affection_bonds tool
func BondsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		scope := request.GetString(argScope, "")

		info, err := ctx.Tracker.GetBondInfo(c, scope, characterID)
		if err != nil {
			return errorResult(err), nil
		}

		return jsonResult(info)
	}
}
