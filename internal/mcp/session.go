package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/game"
	"github.com/peterkuimelis/regicide/internal/log"
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

// ErrNoSession is returned when a tool names a session that does not exist,
// or names none while no game is running.
var ErrNoSession = errors.New("no game is running")

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string           `json:"session_id"`
	Events    []rnet.EventView `json:"events"`
	State     *rnet.StateView  `json:"state,omitempty"`
	Legal     *LegalView       `json:"legal,omitempty"`
	GameOver  bool             `json:"game_over"`
	Result    string           `json:"result,omitempty"`
	Ranking   string           `json:"ranking,omitempty"`
	Error     *rnet.ErrorView  `json:"error,omitempty"`
}

// LegalView tells the agent which tools make sense for the current phase.
type LegalView struct {
	Tools  []string `json:"tools"`
	Prompt string   `json:"prompt"`
}

// GameSession is one game driven by the agent. The agent acts for whichever
// seat is active, so a multi-player session is played cooperatively by one
// caller.
type GameSession struct {
	ID      string
	Created time.Time
	host    *rnet.Host
}

// NewGameSession deals a new game.
func NewGameSession(rules game.Rules, seed uint64, lg *zap.Logger) (*GameSession, error) {
	id := uuid.NewString()
	if lg == nil {
		lg = zap.NewNop()
	}
	engine, err := game.NewEngine(game.EngineConfig{
		Rules:  rules,
		Seed:   seed,
		Logger: log.NewZapLogger(lg.With(zap.String("session", id))),
	})
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return &GameSession{ID: id, Created: time.Now(), host: rnet.NewHost(engine)}, nil
}

// Act applies one message for the active seat. Rejected actions come back as
// a response carrying the error so the agent sees the unchanged state.
func (s *GameSession) Act(msg rnet.ClientMessage) *ToolResponse {
	active := s.host.Snapshot().Active
	upd, err := s.host.Handle(active, msg)
	if err != nil {
		resp := s.view(nil)
		resp.Error = rnet.ErrorMessage(err).Error
		return resp
	}
	return s.view(upd.Events)
}

// View reports the state plus any events not yet handed out.
func (s *GameSession) View() *ToolResponse {
	return s.view(s.host.Pending())
}

func (s *GameSession) view(events []rnet.EventView) *ToolResponse {
	if events == nil {
		events = []rnet.EventView{}
	}
	snap := s.host.Snapshot()
	resp := &ToolResponse{
		SessionID: s.ID,
		Events:    events,
		State:     rnet.BuildStateView(snap, snap.Active),
		GameOver:  snap.Phase.Terminal(),
		Result:    snap.Result,
	}
	if resp.GameOver {
		resp.Ranking = snap.Ranking.String()
		return resp
	}
	resp.Legal = legalFor(resp.State)
	return resp
}

func legalFor(sv *rnet.StateView) *LegalView {
	switch {
	case sv.PendingAttack > 0:
		lv := &LegalView{
			Tools:  []string{"discard_cards"},
			Prompt: fmt.Sprintf("P%d must discard cards worth at least %d.", sv.Active+1, sv.PendingAttack),
		}
		if hasJesterCharge(sv) {
			lv.Tools = append(lv.Tools, "use_jester")
		}
		return lv
	case sv.AwaitingNomination:
		return &LegalView{
			Tools:  []string{"play_cards", "nominate_next"},
			Prompt: fmt.Sprintf("P%d played a Jester and may choose who goes next.", sv.Active+1),
		}
	}
	lv := &LegalView{
		Tools:  []string{"play_cards"},
		Prompt: fmt.Sprintf("P%d plays a card or combo against %s.", sv.Active+1, enemyName(sv)),
	}
	if sv.CanYield {
		lv.Tools = append(lv.Tools, "yield_turn")
	}
	if hasJesterCharge(sv) {
		lv.Tools = append(lv.Tools, "use_jester")
	}
	return lv
}

func hasJesterCharge(sv *rnet.StateView) bool {
	for _, p := range sv.Players {
		if p.Active && p.JesterCharges > 0 {
			return true
		}
	}
	return false
}

func enemyName(sv *rnet.StateView) string {
	if sv.Enemy == nil {
		return "no one"
	}
	return sv.Enemy.Name
}

// Over reports whether the session's game has ended.
func (s *GameSession) Over() bool {
	return s.host.Over()
}

// --- Registry ---

// Registry holds the sessions of one MCP server process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*GameSession
	latest   string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*GameSession)}
}

// Add stores a session and makes it the default for calls without an id.
func (r *Registry) Add(s *GameSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.latest = s.ID
}

// Get finds a session by id, or the most recent one when id is empty.
func (r *Registry) Get(id string) (*GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = r.latest
	}
	s, ok := r.sessions[id]
	if !ok {
		if id == "" {
			return nil, fmt.Errorf("%w: use start_game first", ErrNoSession)
		}
		return nil, fmt.Errorf("%w: unknown session %q", ErrNoSession, id)
	}
	return s, nil
}

// Remove forgets a finished session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	if r.latest == id {
		r.latest = ""
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
