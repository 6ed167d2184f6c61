package web

import (
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

// ErrGameNotFound is returned for unknown game ids.
var ErrGameNotFound = errors.New("game not found")

// subscriberBuffer is how many messages a slow websocket may fall behind
// before it is dropped.
const subscriberBuffer = 64

// Game is one hosted game plus the websockets watching it.
type Game struct {
	ID      string
	Created time.Time
	host    *rnet.Host

	mu   sync.Mutex // orders actions with their broadcasts; guards subs
	subs map[*Subscription]struct{}
}

// Subscription is one websocket's feed of a game.
type Subscription struct {
	seat int
	send chan rnet.ServerMessage
}

// C returns the message channel.
func (s *Subscription) C() <-chan rnet.ServerMessage {
	return s.send
}

// Seat returns the subscribed seat.
func (s *Subscription) Seat() int {
	return s.seat
}

// offer queues msgs without blocking and reports whether all fit.
func (s *Subscription) offer(msgs []rnet.ServerMessage) bool {
	for _, m := range msgs {
		select {
		case s.send <- m:
		default:
			return false
		}
	}
	return true
}

// Act applies one message and pushes the resulting events and views to every
// subscriber before returning.
func (g *Game) Act(seat int, msg rnet.ClientMessage) (rnet.Update, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	upd, err := g.host.Handle(seat, msg)
	if err != nil {
		return rnet.Update{}, err
	}
	g.publishLocked(upd.Events)
	return upd, nil
}

// Subscribe registers a websocket for seat. The returned channel first
// carries the welcome and the current state view, then every later update.
// It is closed by Unsubscribe or when the subscriber falls too far behind.
func (g *Game) Subscribe(seat int) *Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub := &Subscription{seat: seat, send: make(chan rnet.ServerMessage, subscriberBuffer)}
	sub.send <- rnet.ServerMessage{Type: rnet.MsgWelcome, Seat: seat, Players: g.host.Players()}
	sub.send <- g.finalOr(seat)
	g.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (g *Game) Unsubscribe(sub *Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.subs[sub]; ok {
		delete(g.subs, sub)
		close(sub.send)
	}
}

func (g *Game) publishLocked(events []rnet.EventView) {
	for sub := range g.subs {
		msgs := make([]rnet.ServerMessage, 0, len(events)+1)
		for i := range events {
			msgs = append(msgs, rnet.ServerMessage{Type: rnet.MsgEvent, Event: &events[i]})
		}
		msgs = append(msgs, g.finalOr(sub.seat))

		if !sub.offer(msgs) {
			delete(g.subs, sub)
			close(sub.send)
		}
	}
}

// finalOr returns the game over message once the game has ended, otherwise
// the seat's state view.
func (g *Game) finalOr(seat int) rnet.ServerMessage {
	if g.host.Over() {
		return g.host.GameOverMessage(seat)
	}
	return rnet.ServerMessage{Type: rnet.MsgState, State: g.host.State(seat)}
}

// State returns the seat's view.
func (g *Game) State(seat int) *rnet.StateView {
	return g.host.State(seat)
}

// Log returns the recent event log.
func (g *Game) Log() []rnet.EventView {
	return rnet.EventViews(g.host.Snapshot().LogTail)
}

// Transcript renders the recent log as text, one event per line.
func (g *Game) Transcript() string {
	return log.FormatAll(g.host.Snapshot().LogTail)
}

// Players returns the number of seats.
func (g *Game) Players() int {
	return g.host.Players()
}

// ActiveSeat returns the seat expected to act.
func (g *Game) ActiveSeat() int {
	return g.host.Snapshot().Active
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.host.Over()
}

// Subscribers returns the number of attached websockets.
func (g *Game) Subscribers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// --- Store ---

// Store holds the games of one web server.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game
	log   *zap.Logger
}

// NewStore creates an empty store.
func NewStore(lg *zap.Logger) *Store {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Store{games: make(map[string]*Game), log: lg}
}

// Create deals a new game.
func (s *Store) Create(rules game.Rules, seed uint64) (*Game, error) {
	id := uuid.NewString()
	engine, err := game.NewEngine(game.EngineConfig{
		Rules:  rules,
		Seed:   seed,
		Logger: log.NewZapLogger(s.log.With(zap.String("game", id))),
	})
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	g := &Game{
		ID:      id,
		Created: time.Now(),
		host:    rnet.NewHost(engine),
		subs:    make(map[*Subscription]struct{}),
	}
	// The deal is reported through State and Log; updates start after it.
	g.host.Pending()

	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()
	return g, nil
}

// Get finds a game by id.
func (s *Store) Get(id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, nil
}

// Delete removes a game.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len returns the number of games.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
