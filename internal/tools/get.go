// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/affinity-mcp/internal/affection"
)

// NewGetTool creates the affection_get tool definition
func NewGetTool() mcp.Tool {
	return mcp.NewTool("affection_get",
		mcp.WithDescription("Get a character's current affection value and relationship tier. Creates a new record at the default affection the first time a character is seen."),
		mcp.WithString(argCharacterID,
			mcp.Required(),
			mcp.Description("Unique identifier of the character (usually a user id)"),
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

type getResponse struct {
	CharacterID     string         `json:"character_id"`
	CharacterName   string         `json:"character_name"`
	AffectionValue  int            `json:"affection_value"`
	Tier            affection.Tier `json:"tier"`
	TierLabel       string         `json:"tier_name"`
	TotalPositive   int            `json:"total_positive"`
	TotalNegative   int            `json:"total_negative"`
	FirstMet        int64          `json:"first_met"`
	LastInteraction int64          `json:"last_interaction"`
	UnlockedBonds   []string       `json:"unlocked_bonds"`
}

// GetHandler handles the affection_get tool
func GetHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

		return jsonResult(getResponse{
			CharacterID:     status.CharacterID,
			CharacterName:   status.CharacterName,
			AffectionValue:  status.AffectionValue,
			Tier:            status.Tier,
			TierLabel:       status.TierLabel,
			TotalPositive:   status.TotalPositive,
			TotalNegative:   status.TotalNegative,
			FirstMet:        status.FirstMet,
			LastInteraction: status.LastInteraction,
			UnlockedBonds:   status.UnlockedBonds,
		})
	}
}
