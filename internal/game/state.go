package game

import "fmt"

// Pile names a card location for move records.
type Pile int

const (
	PileHand Pile = iota
	PileTavern
	PileTavernDiscard
	PileCastle
	PileCastleDiscard
	PilePlayed
	PileEnemy
)

func (p Pile) String() string {
	switch p {
	case PileHand:
		return "hand"
	case PileTavern:
		return "tavern"
	case PileTavernDiscard:
		return "tavern discard"
	case PileCastle:
		return "castle"
	case PileCastleDiscard:
		return "castle discard"
	case PilePlayed:
		return "played"
	case PileEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// TurnState holds the complete authoritative state of a game. Only the
// Engine mutates it.
type TurnState struct {
	Phase Phase
	Turn  int // 1-based turn counter

	Enemy         *Enemy
	Tavern        *Deck
	TavernDiscard *Deck
	Castle        *Deck
	CastleDiscard *Deck
	Played        *Deck // cards in play against the current enemy
	Captured      int   // enemies captured into the tavern so far

	Players  []*Player
	Active   int   // index of the acting player
	Selected []int // toggled hand indices, not yet committed

	// Per-turn flags
	JesterPlayed  bool
	PendingAttack int // discard value owed during Enemy Attack

	// Yield tracking across actors
	ConsecutiveYields  int
	AwaitingNomination bool

	// Game result
	Ranking Ranking
	Result  string
}

// ActivePlayer returns the acting player.
func (s *TurnState) ActivePlayer() *Player {
	return s.Players[s.Active]
}

// NextPlayer returns the index of the player after the active one.
func (s *TurnState) NextPlayer() int {
	return (s.Active + 1) % len(s.Players)
}

// HandCards returns the number of cards across all hands.
func (s *TurnState) HandCards() int {
	n := 0
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// TavernFamily counts every card that started in, or was captured into, the
// tavern: draw pile, discard, hands and cards in play.
func (s *TurnState) TavernFamily() int {
	return s.Tavern.Len() + s.TavernDiscard.Len() + s.HandCards() + s.Played.Len()
}

// CastleFamily counts every enemy card: undrawn, current, defeated and captured.
func (s *TurnState) CastleFamily() int {
	n := s.Castle.Len() + s.CastleDiscard.Len() + s.Captured
	if s.Enemy != nil {
		n++
	}
	return n
}

// --- Turn records ---

// Action names the caller entry point that produced a TurnEvent.
type Action int

const (
	ActionPlay Action = iota
	ActionDiscard
	ActionJesterPower
	ActionYield
	ActionNominate
)

func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionDiscard:
		return "discard"
	case ActionJesterPower:
		return "jester"
	case ActionYield:
		return "yield"
	case ActionNominate:
		return "nominate"
	default:
		return "unknown"
	}
}

// PowerResult records one suit power during resolution.
type PowerResult struct {
	Suit    Suit
	Blocked bool
	Amount  int // cards healed/drawn, shield added, or damage after doubling
}

// CardMove records cards moving between piles.
type CardMove struct {
	Cards []Card
	From  Pile
	To    Pile
}

func (m CardMove) String() string {
	return fmt.Sprintf("%d card(s) %s → %s", len(m.Cards), m.From, m.To)
}

// TurnEvent is the structured result of one accepted action.
type TurnEvent struct {
	Action Action
	Player int
	From   Phase
	To     Phase
	Phases []Phase // phases entered while resolving, in order

	Cards  []Card
	Combo  ComboKind
	Attack int
	Damage int
	Powers []PowerResult
	Moves  []CardMove

	Enemy       string // enemy fought during this action
	Outcome     Outcome
	Shield      int
	RetroShield int
	EnemyAttack int    // attack owed when entering Enemy Attack
	NextEnemy   string // newly revealed enemy, if any

	Ranking Ranking
	Result  string
}

// Visited reports whether the event passed through the given phase.
func (ev *TurnEvent) Visited(p Phase) bool {
	for _, v := range ev.Phases {
		if v == p {
			return true
		}
	}
	return false
}

// Power returns the result for a suit, if that power was considered.
func (ev *TurnEvent) Power(s Suit) (PowerResult, bool) {
	for _, p := range ev.Powers {
		if p.Suit == s {
			return p, true
		}
	}
	return PowerResult{}, false
}

func (ev *TurnEvent) move(cards []Card, from, to Pile) {
	if len(cards) == 0 {
		return
	}
	c := make([]Card, len(cards))
	copy(c, cards)
	ev.Moves = append(ev.Moves, CardMove{Cards: c, From: from, To: to})
}
