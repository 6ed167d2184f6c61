package game

import (
	"sort"
	"testing"

	"github.com/peterkuimelis/regicide/internal/log"
	"github.com/stretchr/testify/require"
)

// testSetup describes a hand-built game position. Decks list the top card first.
type testSetup struct {
	rules   Rules
	enemy   Card
	hands   [][]Card
	tavern  []Card
	discard []Card
	castle  []Card // cards still in the castle below the current enemy
}

// newTestEngine builds an engine directly from a position, bypassing the
// shuffle and deal of NewEngine.
func newTestEngine(t *testing.T, s testSetup) (*Engine, *log.MemoryLogger) {
	t.Helper()

	rules := s.rules
	if rules.Players == 0 {
		rules = SoloRules()
	}
	require.NoError(t, rules.Validate())

	st := &TurnState{
		Phase:         PhaseInput,
		Turn:          1,
		Tavern:        NewDeck(s.tavern...),
		TavernDiscard: NewDeck(s.discard...),
		Castle:        NewDeck(s.castle...),
		CastleDiscard: NewDeck(),
		Played:        NewDeck(),
	}
	for i := 0; i < rules.Players; i++ {
		p := &Player{MaxHand: rules.MaxHandSize, JesterCharges: rules.JesterCharges}
		if i < len(s.hands) {
			p.Hand = append([]Card(nil), s.hands[i]...)
		}
		st.Players = append(st.Players, p)
	}
	st.Enemy = NewEnemy(s.enemy, rules.Enemies)

	logger := log.NewMemoryLogger()
	return newEngine(st, rules, logger, NewRand(7)), logger
}

// hand is shorthand for a single-player hand list.
func hand(cards ...Card) [][]Card {
	return [][]Card{cards}
}

func c(r Rank, s Suit) Card {
	return NewCard(r, s)
}

// indexOf returns the position of each card in the active hand.
func indexOf(t *testing.T, e *Engine, cards ...Card) []int {
	t.Helper()
	h := e.state.ActivePlayer().Hand
	used := make(map[int]bool)
	var out []int
	for _, want := range cards {
		found := -1
		for i, have := range h {
			if have == want && !used[i] {
				found = i
				break
			}
		}
		require.GreaterOrEqual(t, found, 0, "card %s not in hand %v", want, h)
		used[found] = true
		out = append(out, found)
	}
	return out
}

// mustPlay plays the given cards from the active hand and fails on error.
func mustPlay(t *testing.T, e *Engine, cards ...Card) TurnEvent {
	t.Helper()
	sel, err := e.ProposeSelection(indexOf(t, e, cards...))
	require.NoError(t, err)
	ev, err := e.CommitPlay(sel)
	require.NoError(t, err)
	return ev
}

// tryPlay plays the given cards and returns the engine's answer.
func tryPlay(t *testing.T, e *Engine, cards ...Card) (TurnEvent, error) {
	t.Helper()
	sel, err := e.ProposeSelection(indexOf(t, e, cards...))
	require.NoError(t, err)
	return e.CommitPlay(sel)
}

// mustDiscard pays the enemy attack with the given cards.
func mustDiscard(t *testing.T, e *Engine, cards ...Card) TurnEvent {
	t.Helper()
	sel, err := e.ProposeSelection(indexOf(t, e, cards...))
	require.NoError(t, err)
	ev, err := e.CommitDiscard(sel)
	require.NoError(t, err)
	return ev
}

// greedyDiscard picks the highest cards until the attack is covered.
// It returns nil when the whole hand is not enough.
func greedyDiscard(h []Card, attack int) []int {
	idx := make([]int, len(h))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return h[idx[a]].Value() > h[idx[b]].Value() })
	total := 0
	var out []int
	for _, i := range idx {
		out = append(out, i)
		total += h[i].Value()
		if total >= attack {
			return out
		}
	}
	return nil
}

// highestCard returns the index of the highest-value non-Jester card, or of a
// Jester when that is all the hand holds.
func highestCard(h []Card) int {
	best := 0
	for i, card := range h {
		if h[best].IsJester() || (!card.IsJester() && card.Value() > h[best].Value()) {
			best = i
		}
	}
	return best
}
