package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/regicide/internal/game"
)

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func decodeResponse(t *testing.T, res *mcp.CallToolResult) ToolResponse {
	t.Helper()
	require.False(t, res.IsError, textOf(t, res))
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &resp))
	return resp
}

func TestStartGame(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)

	resp := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": 11.0}))
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.GameOver)
	require.NotNil(t, resp.State)
	assert.Len(t, resp.State.Hand, 8)
	require.NotNil(t, resp.Legal)
	assert.Contains(t, resp.Legal.Tools, "play_cards")
	assert.Contains(t, resp.Legal.Tools, "use_jester")
	assert.NotEmpty(t, resp.Events)
	assert.Equal(t, 1, tools.Registry.Len())
}

func TestStartGameSameSeedSameDeal(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)

	a := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": "42"}))
	b := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": 42}))
	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.Equal(t, a.State.Hand, b.State.Hand)
	assert.Equal(t, a.State.Enemy, b.State.Enemy)
}

func TestStartGamePlayerCount(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)

	resp := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"players": "3", "seed": 1}))
	assert.Len(t, resp.State.Players, 3)
	assert.Len(t, resp.State.Hand, 6)
	assert.NotContains(t, resp.Legal.Tools, "use_jester")

	res := call(t, tools.handleStartGame, map[string]any{"players": 9})
	assert.True(t, res.IsError)
}

func TestToolsWithoutGame(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)

	res := call(t, tools.handleYieldTurn, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "start_game")

	res = call(t, tools.handleGetGameState, map[string]any{"session_id": "nope"})
	assert.True(t, res.IsError)
}

func TestPlayCardsRejectedKeepsState(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)
	start := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": 3}))

	resp := decodeResponse(t, call(t, tools.handlePlayCards, map[string]any{"indices": "42"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_SELECTION", resp.Error.Code)
	assert.Equal(t, start.State.Hand, resp.State.Hand)
	assert.Empty(t, resp.Events)

	res := call(t, tools.handlePlayCards, map[string]any{"indices": "one"})
	assert.True(t, res.IsError)
}

func TestPlayCardsAdvancesGame(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)
	start := decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": 3}))

	resp := decodeResponse(t, call(t, tools.handlePlayCards, map[string]any{
		"session_id": start.SessionID,
		"indices":    []any{0.0},
	}))
	assert.Nil(t, resp.Error)
	require.NotEmpty(t, resp.Events)

	var types []string
	for _, ev := range resp.Events {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, "Play")
	assert.NotEqual(t, start.State.Hand, resp.State.Hand)
}

func TestYieldThenDiscard(t *testing.T) {
	tools := NewTools(game.SoloRules(), nil)
	decodeResponse(t, call(t, tools.handleStartGame, map[string]any{"seed": 21}))

	resp := decodeResponse(t, call(t, tools.handleYieldTurn, map[string]any{}))
	require.Nil(t, resp.Error)
	if resp.GameOver {
		assert.Equal(t, "Defeat", resp.State.Phase)
		assert.Equal(t, 0, tools.Registry.Len())
		return
	}
	require.NotNil(t, resp.Legal)
	assert.Equal(t, []string{"discard_cards", "use_jester"}, resp.Legal.Tools)
	assert.Positive(t, resp.State.PendingAttack)
}

func TestDecodeArgs(t *testing.T) {
	var ca cardsArgs
	require.NoError(t, decodeArgs(map[string]any{"indices": "0, 2 3", "session_id": "x"}, &ca))
	assert.Equal(t, []int{0, 2, 3}, ca.Indices)
	assert.Equal(t, "x", ca.SessionID)

	ca = cardsArgs{}
	require.NoError(t, decodeArgs(map[string]any{"indices": []any{1.0, "4"}}, &ca))
	assert.Equal(t, []int{1, 4}, ca.Indices)

	var na nominateArgs
	require.NoError(t, decodeArgs(map[string]any{"player": "2"}, &na))
	assert.Equal(t, 2, na.Player)

	var sa startArgs
	require.NoError(t, decodeArgs(map[string]any{"seed": "18446744073709551615"}, &sa))
	assert.Equal(t, uint64(18446744073709551615), sa.Seed)

	assert.Error(t, decodeArgs(map[string]any{"player": "two"}, &na))
}
