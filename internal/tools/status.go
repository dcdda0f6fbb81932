// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/tracker"
)

// NewStatusTool creates the affection_status tool definition
func NewStatusTool() mcp.Tool {
	return mcp.NewTool("affection_status",
		mcp.WithDescription("Summarize the relationship with a character in plain text: tier, affection, how the relationship feels, recent interactions and unlocked bonds. Useful before replying to the character."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character"),
		),
		mcp.WithString(argCharacterName,
			mcp.Required(),
			mcp.Description("Display name of the character"),
		),
		mcp.WithString(argScope,
			mcp.Description(scopeDescription),
		),
	)
}

// StatusHandler handles the affection_status tool
func StatusHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		characterID, err := request.RequireString(argCharacterID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		characterName, err := request.RequireString(argCharacterName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		scope := request.GetString(argScope, "")

		status, err := ctx.Tracker.Status(c, scope, characterID, characterName)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(formatStatus(status)), nil
	}
}

// formatStatus renders a status summary as markdown
func formatStatus(status *tracker.Status) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("## Relationship with %s\n", status.CharacterName))
	output.WriteString(fmt.Sprintf("- Tier: %s\n", status.TierLabel))
	output.WriteString(fmt.Sprintf("- Affection: %d/%d\n", status.AffectionValue, affection.MaxAffection))
	output.WriteString(fmt.Sprintf("- Feeling: %s\n", status.Relationship))

	output.WriteString("\n### Recent interactions\n")
	if len(status.RecentEvents) == 0 {
		output.WriteString("- No interactions yet\n")
	}
	for _, event := range status.RecentEvents {
		when := time.Unix(event.Timestamp, 0).UTC().Format("01-02 15:04")
		output.WriteString(fmt.Sprintf("- %s [%s] %s\n", changeMarker(event.ChangeAmount), when, event.Description))
	}

	if len(status.BondDetails) > 0 {
		output.WriteString("\n### Unlocked bonds\n")
		for _, bond := range status.BondDetails {
			output.WriteString(fmt.Sprintf("- %s: %s\n", bond.Name, bond.Description))
		}
	}

	return output.String()
}

func changeMarker(change int) string {
	switch {
	case change > 0:
		return fmt.Sprintf("(+%d)", change)
	case change < 0:
		return fmt.Sprintf("(%d)", change)
	default:
		return "(=)"
	}
}
