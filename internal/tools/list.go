// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewListTool creates the affection_list tool definition
func NewListTool() mcp.Tool {
	return mcp.NewTool("affection_list",
		mcp.WithDescription("List every character tracked in a scope with their current affection and tier."),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// ListHandler handles the affection_list tool
func ListHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scope := request.GetString(argScope, "")

		characters, err := ctx.Tracker.ListCharacters(c, scope)
		if err != nil {
			return errorResult(err), nil
		}

		return jsonResult(characters)
	}
}
