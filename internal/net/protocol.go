package net

import (
	"github.com/peterkuimelis/regicide/internal/game"
	"github.com/peterkuimelis/regicide/internal/log"
)

// Message types for the newline-delimited JSON protocol.
const (
	// Client → Server
	MsgHello    = "hello"
	MsgPlay     = "play"
	MsgDiscard  = "discard"
	MsgJester   = "jester"
	MsgYield    = "yield"
	MsgNominate = "nominate"
	MsgState    = "state"

	// Server → Client
	MsgWelcome  = "welcome"
	MsgEvent    = "event"
	MsgError    = "error"
	MsgGameOver = "game_over"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	Seat    int `json:"seat,omitempty"`
	Players int `json:"players,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "state" and "game_over"
	State *StateView `json:"state,omitempty"`

	// For "error"
	Error *ErrorView `json:"error,omitempty"`

	// For "game_over"
	Ranking string `json:"ranking,omitempty"`
	Result  string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Details string `json:"details"`
}

// ErrorView describes a rejected message.
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CardView is one card in the viewer's hand.
type CardView struct {
	Index int    `json:"index"` // 0-based hand position
	Card  string `json:"card"`
	Suit  string `json:"suit,omitempty"`
	Value int    `json:"value"`
}

// PlayerView shows one seat's public information.
type PlayerView struct {
	Seat          int  `json:"seat"`
	HandCount     int  `json:"hand_count"`
	MaxHand       int  `json:"max_hand"`
	JesterCharges int  `json:"jester_charges"`
	JestersUsed   int  `json:"jesters_used"`
	Active        bool `json:"active,omitempty"`
}

// EnemyView describes the enemy being fought.
type EnemyView struct {
	Name              string `json:"name"`
	Card              string `json:"card"`
	HP                int    `json:"hp"`
	MaxHP             int    `json:"max_hp"`
	Attack            int    `json:"attack"`
	BaseAttack        int    `json:"base_attack"`
	Shield            int    `json:"shield"`
	Immunity          string `json:"immunity"`
	ImmunityCancelled bool   `json:"immunity_cancelled,omitempty"`
	PendingSpades     int    `json:"pending_spades,omitempty"`
}

// StateView is the game state from one seat's perspective. Other seats'
// hands are reduced to counts.
type StateView struct {
	Seat       int    `json:"seat"`
	Turn       int    `json:"turn"`
	Phase      string `json:"phase"`
	Active     int    `json:"active"`
	IsYourTurn bool   `json:"is_your_turn"`

	Hand    []CardView   `json:"hand"`
	Players []PlayerView `json:"players"`
	Enemy   *EnemyView   `json:"enemy,omitempty"`

	TavernCount        int      `json:"tavern_count"`
	TavernDiscardCount int      `json:"tavern_discard_count"`
	CastleCount        int      `json:"castle_count"`
	CastleDiscardCount int      `json:"castle_discard_count"`
	Played             []string `json:"played,omitempty"`
	Captured           int      `json:"captured,omitempty"`

	PendingAttack      int  `json:"pending_attack,omitempty"`
	CanYield           bool `json:"can_yield"`
	AwaitingNomination bool `json:"awaiting_nomination,omitempty"`

	Ranking string `json:"ranking,omitempty"`
	Result  string `json:"result,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "play" and "discard": 0-based hand positions
	Indices []int `json:"indices,omitempty"`

	// For "nominate": 0-based seat
	Player int `json:"player,omitempty"`

	// For "hello"
	Name string `json:"name,omitempty"`
}

// --- Views ---

// BuildStateView creates a StateView from the perspective of the given seat.
func BuildStateView(snap game.Snapshot, seat int) *StateView {
	sv := &StateView{
		Seat:               seat,
		Turn:               snap.Turn,
		Phase:              snap.Phase.String(),
		Active:             snap.Active,
		IsYourTurn:         snap.Active == seat && !snap.Phase.Terminal(),
		TavernCount:        snap.TavernCount,
		TavernDiscardCount: snap.TavernDiscardCount,
		CastleCount:        snap.CastleCount,
		CastleDiscardCount: snap.CastleDiscardCount,
		Played:             game.CardNames(snap.Played),
		Captured:           snap.Captured,
		PendingAttack:      snap.PendingAttack,
		CanYield:           snap.CanYield && snap.Active == seat,
		AwaitingNomination: snap.AwaitingNomination,
		Ranking:            snap.Ranking.String(),
		Result:             snap.Result,
	}

	for i, p := range snap.Players {
		sv.Players = append(sv.Players, PlayerView{
			Seat:          i,
			HandCount:     len(p.Hand),
			MaxHand:       p.MaxHand,
			JesterCharges: p.JesterCharges,
			JestersUsed:   p.JestersUsed,
			Active:        i == snap.Active,
		})
	}

	if seat >= 0 && seat < len(snap.Players) {
		sv.Hand = HandView(snap.Players[seat].Hand)
	}

	if en := snap.Enemy; en != nil {
		sv.Enemy = &EnemyView{
			Name:              en.Name,
			Card:              en.Card.String(),
			HP:                en.CurrentHP,
			MaxHP:             en.MaxHP,
			Attack:            en.EffectiveAttack,
			BaseAttack:        en.BaseAttack,
			Shield:            en.Shield,
			Immunity:          en.Card.Suit.String(),
			ImmunityCancelled: en.ImmunityCancelled,
			PendingSpades:     en.PendingSpadeValue,
		}
	}
	return sv
}

// HandView numbers the cards of a hand.
func HandView(hand []game.Card) []CardView {
	out := make([]CardView, 0, len(hand))
	for i, c := range hand {
		cv := CardView{Index: i, Card: c.String(), Value: c.Value()}
		if !c.IsJester() {
			cv.Suit = c.Suit.String()
		}
		out = append(out, cv)
	}
	return out
}

// NewEventView converts a logged event for the wire.
func NewEventView(ev log.GameEvent) EventView {
	return EventView{
		Seq:     ev.Seq,
		Turn:    ev.Turn,
		Phase:   ev.Phase,
		Player:  ev.Player,
		Type:    ev.Type.String(),
		Card:    ev.Card,
		Amount:  ev.Amount,
		Details: ev.Details,
	}
}

// EventViews converts a batch of logged events.
func EventViews(events []log.GameEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, ev := range events {
		out = append(out, NewEventView(ev))
	}
	return out
}
