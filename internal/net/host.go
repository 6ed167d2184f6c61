package net

import (
	"errors"
	"fmt"
	"sync"

	"github.com/peterkuimelis/regicide/internal/game"
)

var (
	// ErrNotYourTurn rejects actions from a seat that is not acting.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrUnknownMessage rejects message types the host does not handle.
	ErrUnknownMessage = errors.New("unknown message type")
)

// Update is the result of one accepted action.
type Update struct {
	Turn   game.TurnEvent
	Events []EventView // events logged since the previous update
}

// Host owns one game and applies client messages to it. It is the single
// point of serialization for every transport: TCP, websocket and MCP.
type Host struct {
	mu     sync.Mutex
	engine *game.Engine
	sent   int // events already handed out in updates
}

// NewHost wraps an engine. Events logged before the first action (the deal
// and first enemy) are delivered with the first update.
func NewHost(engine *game.Engine) *Host {
	return &Host{engine: engine}
}

// Handle validates and applies one message from the given seat.
func (h *Host) Handle(seat int, msg ClientMessage) (Update, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.engine
	snap := e.Snapshot()
	if !snap.Phase.Terminal() && seat != snap.Active {
		return Update{}, fmt.Errorf("%w: P%d is acting", ErrNotYourTurn, snap.Active+1)
	}

	var (
		ev  game.TurnEvent
		err error
	)
	switch msg.Type {
	case MsgPlay:
		var sel game.Selection
		if sel, err = e.ProposeSelection(msg.Indices); err == nil {
			ev, err = e.CommitPlay(sel)
		}
	case MsgDiscard:
		var sel game.Selection
		if sel, err = e.ProposeSelection(msg.Indices); err == nil {
			ev, err = e.CommitDiscard(sel)
		}
	case MsgJester:
		ev, err = e.UseJester()
	case MsgYield:
		ev, err = e.YieldTurn()
	case MsgNominate:
		ev, err = e.NominateNext(msg.Player)
	default:
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	if err != nil {
		return Update{}, err
	}
	return Update{Turn: ev, Events: h.drain()}, nil
}

// Pending returns events not yet handed out and marks them delivered.
func (h *Host) Pending() []EventView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.drain()
}

func (h *Host) drain() []EventView {
	events := h.engine.Events()
	if h.sent >= len(events) {
		return nil
	}
	out := EventViews(events[h.sent:])
	h.sent = len(events)
	return out
}

// State returns the view for one seat.
func (h *Host) State(seat int) *StateView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return BuildStateView(h.engine.Snapshot(), seat)
}

// ActiveState returns the view for whoever is acting.
func (h *Host) ActiveState() *StateView {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := h.engine.Snapshot()
	return BuildStateView(snap, snap.Active)
}

// Snapshot returns the engine snapshot.
func (h *Host) Snapshot() game.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.Snapshot()
}

// Players returns the number of seats.
func (h *Host) Players() int {
	return h.engine.Rules().Players
}

// Over reports whether the game has ended.
func (h *Host) Over() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.Over()
}

// GameOverMessage builds the final message for a seat.
func (h *Host) GameOverMessage(seat int) ServerMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := h.engine.Snapshot()
	return ServerMessage{
		Type:    MsgGameOver,
		State:   BuildStateView(snap, seat),
		Ranking: snap.Ranking.String(),
		Result:  snap.Result,
	}
}

// ErrorMessage converts a rejected action into a wire error.
func ErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: MsgError, Error: &ErrorView{Code: ErrorCode(err), Message: err.Error()}}
}

// ErrorCode returns the wire code for an error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, ErrUnknownMessage):
		return "UNKNOWN_MESSAGE"
	}
	if code := game.CodeOf(err); code != "" {
		return string(code)
	}
	return "INTERNAL"
}
