package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/game"
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

// Tools serves the game tools over one MCP server.
type Tools struct {
	Rules    game.Rules // defaults for start_game
	Registry *Registry
	Logger   *zap.Logger

	// NewSeed picks a seed when start_game does not give one.
	NewSeed func() uint64
}

// NewTools creates a tool set with an empty registry.
func NewTools(rules game.Rules, lg *zap.Logger) *Tools {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Tools{Rules: rules, Registry: NewRegistry(), Logger: lg}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(playCardsTool(), t.handlePlayCards)
	s.AddTool(discardCardsTool(), t.handleDiscardCards)
	s.AddTool(useJesterTool(), t.handleUseJester)
	s.AddTool(yieldTurnTool(), t.handleYieldTurn)
	s.AddTool(nominateNextTool(), t.handleNominateNext)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// --- Tool definitions ---

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Game to act on. Defaults to the most recently started game."))
}

func indicesParam(desc string) mcp.ToolOption {
	return mcp.WithString("indices", mcp.Required(), mcp.Description(desc))
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Deal a new game of Regicide. You act for whichever player is active. "+
			"Returns the session id, the opening events and the table as seen by the active player."),
		mcp.WithNumber("players", mcp.Description("Number of players, 1-4 (default from server config)")),
		mcp.WithNumber("seed", mcp.Description("Shuffle seed; the same seed deals the same game")),
	)
}

func playCardsTool() mcp.Tool {
	return mcp.NewTool("play_cards",
		mcp.WithDescription("Play cards from the active player's hand against the enemy. Legal plays: one card, "+
			"a Jester alone, 2-4 cards of one rank totalling 10 or less, or an Ace with one other card."),
		sessionParam(),
		indicesParam("Space-separated 0-based hand indices, e.g. '0 3'"),
	)
}

func discardCardsTool() mcp.Tool {
	return mcp.NewTool("discard_cards",
		mcp.WithDescription("Discard cards to survive the enemy attack. Their total value must reach the pending attack."),
		sessionParam(),
		indicesParam("Space-separated 0-based hand indices to discard"),
	)
}

func useJesterTool() mcp.Tool {
	return mcp.NewTool("use_jester",
		mcp.WithDescription("Solo only: spend a Jester charge to discard the hand and draw back to full."),
		sessionParam(),
	)
}

func yieldTurnTool() mcp.Tool {
	return mcp.NewTool("yield_turn",
		mcp.WithDescription("Play nothing this turn. The enemy still attacks. "+
			"Not allowed when the previous player yielded and nobody has played since."),
		sessionParam(),
	)
}

func nominateNextTool() mcp.Tool {
	return mcp.NewTool("nominate_next",
		mcp.WithDescription("After a Jester, choose which player takes the next turn."),
		sessionParam(),
		mcp.WithNumber("player", mcp.Required(), mcp.Description("0-based seat of the next player")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the table, undelivered events and the tools that fit the current phase. Read-only."),
		sessionParam(),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args startArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.Players < 0 || args.Players > game.MaxPlayers {
		return mcp.NewToolResultErrorf("players must be %d-%d", game.MinPlayers, game.MaxPlayers), nil
	}
	rules := t.Rules
	if args.Players != 0 && args.Players != rules.Players {
		enemies := rules.Enemies
		rules = game.DefaultRules(args.Players)
		rules.Enemies = enemies
	}
	seed := args.Seed
	if seed == 0 && t.NewSeed != nil {
		seed = t.NewSeed()
	}

	sess, err := NewGameSession(rules, seed, t.Logger)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.Registry.Add(sess)
	t.Logger.Info("game started",
		zap.String("session", sess.ID), zap.Int("players", rules.Players), zap.Uint64("seed", seed))

	return mcp.NewToolResultText(respondJSON(sess.View())), nil
}

func (t *Tools) handlePlayCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args cardsArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.act(args.SessionID, rnet.ClientMessage{Type: rnet.MsgPlay, Indices: args.Indices})
}

func (t *Tools) handleDiscardCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args cardsArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.act(args.SessionID, rnet.ClientMessage{Type: rnet.MsgDiscard, Indices: args.Indices})
}

func (t *Tools) handleUseJester(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.act(args.SessionID, rnet.ClientMessage{Type: rnet.MsgJester})
}

func (t *Tools) handleYieldTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.act(args.SessionID, rnet.ClientMessage{Type: rnet.MsgYield})
}

func (t *Tools) handleNominateNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args nominateArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.act(args.SessionID, rnet.ClientMessage{Type: rnet.MsgNominate, Player: args.Player})
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := decodeArgs(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := t.Registry.Get(args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.View())), nil
}

// act applies one action. A rejected action is reported in the response
// body, not as a tool error, so the agent keeps the unchanged table.
func (t *Tools) act(id string, msg rnet.ClientMessage) (*mcp.CallToolResult, error) {
	sess, err := t.Registry.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sess.Act(msg)
	if resp.Error != nil {
		t.Logger.Debug("action rejected",
			zap.String("session", sess.ID), zap.String("type", msg.Type), zap.String("code", resp.Error.Code))
	}
	if resp.GameOver {
		t.Logger.Info("game over",
			zap.String("session", sess.ID), zap.String("result", resp.Result), zap.String("ranking", resp.Ranking))
		t.Registry.Remove(sess.ID)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
