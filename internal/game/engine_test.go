package game

import (
	"testing"

	"github.com/peterkuimelis/regicide/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewEngineDeal: a fresh solo game deals 8 cards and reveals a Jack.
func TestNewEngineDeal(t *testing.T) {
	e, err := NewEngine(EngineConfig{Seed: 42})
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Equal(t, PhaseInput, snap.Phase)
	assert.Len(t, snap.Hand(), 8)
	assert.Equal(t, 2, snap.Players[0].JesterCharges)
	assert.Equal(t, 32, snap.TavernCount)
	assert.Equal(t, 11, snap.CastleCount)
	require.NotNil(t, snap.Enemy)
	assert.Equal(t, Jack, snap.Enemy.Card.Rank)
	assert.Equal(t, 20, snap.Enemy.CurrentHP)
	assert.Equal(t, 10, snap.Enemy.EffectiveAttack)
	assert.True(t, snap.CanYield)
}

// TestNewEngineSameSeed: equal seeds produce equal deals.
func TestNewEngineSameSeed(t *testing.T) {
	a, err := NewEngine(EngineConfig{Seed: 9})
	require.NoError(t, err)
	b, err := NewEngine(EngineConfig{Seed: 9})
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot().Hand(), b.Snapshot().Hand())
	assert.Equal(t, a.Snapshot().Enemy.Card, b.Snapshot().Enemy.Card)
}

// TestNewEngineRejectsBadRules: invalid rules never produce an engine.
func TestNewEngineRejectsBadRules(t *testing.T) {
	rules := DefaultRules(2)
	rules.MaxHandSize = 0
	_, err := NewEngine(EngineConfig{Rules: rules})
	require.Error(t, err)
}

// TestNewEngineMultiplayer: three players get six cards each and one Jester
// sits in the tavern.
func TestNewEngineMultiplayer(t *testing.T) {
	e, err := NewEngine(EngineConfig{Rules: DefaultRules(3), Seed: 3})
	require.NoError(t, err)

	snap := e.Snapshot()
	require.Len(t, snap.Players, 3)
	for _, p := range snap.Players {
		assert.Len(t, p.Hand, 6)
		assert.Equal(t, 0, p.JesterCharges)
	}
	assert.Equal(t, 41-18, snap.TavernCount)
	assert.Equal(t, 41, e.state.TavernFamily())
}

// TestCardConservation: across whole games every card stays in exactly one
// place. The tavern family grows only by captured enemies and the castle
// family never changes.
func TestCardConservation(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		e, err := NewEngine(EngineConfig{Seed: seed})
		require.NoError(t, err)
		st := e.state

		for step := 0; step < 1000 && !e.Over(); step++ {
			switch e.Phase() {
			case PhaseInput:
				h := st.ActivePlayer().Hand
				if len(h) == 0 {
					_, err = e.YieldTurn()
				} else {
					var sel Selection
					sel, err = e.ProposeSelection([]int{highestCard(h)})
					require.NoError(t, err)
					_, err = e.CommitPlay(sel)
				}
			case PhaseEnemyAttack:
				h := st.ActivePlayer().Hand
				if idx := greedyDiscard(h, st.PendingAttack); idx != nil {
					var sel Selection
					sel, err = e.ProposeSelection(idx)
					require.NoError(t, err)
					_, err = e.CommitDiscard(sel)
				} else {
					_, err = e.UseJester()
				}
			default:
				t.Fatalf("seed %d: resting in %s", seed, e.Phase())
			}
			require.NoError(t, err, "seed %d step %d", seed, step)

			require.Equal(t, 40+st.Captured, st.TavernFamily(), "seed %d step %d", seed, step)
			require.Equal(t, 12, st.CastleFamily(), "seed %d step %d", seed, step)
			require.LessOrEqual(t, len(st.ActivePlayer().Hand), st.ActivePlayer().MaxHand)
		}
	}
}

// TestExactCapture: damage equal to remaining HP puts the enemy face-down on
// top of the tavern.
func TestExactCapture(t *testing.T) {
	jackClubs := c(Jack, Clubs)
	e, logger := newTestEngine(t, testSetup{
		enemy:  jackClubs,
		hands:  hand(c(Five, Hearts), c(Two, Diamonds)),
		tavern: []Card{c(Seven, Clubs)},
		castle: []Card{c(Queen, Hearts)},
	})
	e.state.Enemy.CurrentHP = 5

	ev := mustPlay(t, e, c(Five, Hearts))

	assert.Equal(t, OutcomeCaptured, ev.Outcome)
	top, ok := e.state.Tavern.Peek()
	require.True(t, ok)
	assert.Equal(t, jackClubs, top)
	assert.Equal(t, 10, top.Value())
	assert.Equal(t, 2, e.state.Tavern.Len())
	assert.Equal(t, 0, e.state.CastleDiscard.Len())
	assert.Equal(t, 1, e.state.Captured)

	// The played card joins the discard once the enemy falls.
	assert.Equal(t, []Card{c(Five, Hearts)}, e.state.TavernDiscard.Cards())
	assert.Equal(t, 0, e.state.Played.Len())

	// The same player faces the next enemy without an attack.
	assert.False(t, ev.Visited(PhaseEnemyAttack))
	assert.Equal(t, PhaseInput, ev.To)
	assert.Equal(t, "Queen of Hearts", ev.NextEnemy)
	assert.Equal(t, 30, e.state.Enemy.CurrentHP)
	assert.Len(t, logger.EventsOfType(log.EventCapture), 1)
}

// TestOverkill: damage above remaining HP discards the enemy to the castle
// discard and the next enemy starts clean.
func TestOverkill(t *testing.T) {
	jackClubs := c(Jack, Clubs)
	e, _ := newTestEngine(t, testSetup{
		enemy:  jackClubs,
		hands:  hand(c(Five, Spades), c(Two, Diamonds)),
		tavern: []Card{c(Seven, Clubs)},
		castle: []Card{c(Queen, Hearts)},
	})
	e.state.Enemy.CurrentHP = 3

	ev := mustPlay(t, e, c(Five, Spades))

	assert.Equal(t, OutcomeOverkill, ev.Outcome)
	assert.Equal(t, []Card{jackClubs}, e.state.CastleDiscard.Cards())
	assert.Equal(t, 1, e.state.Tavern.Len())
	assert.Equal(t, 0, e.state.Captured)
	assert.Equal(t, 0, e.state.Enemy.Shield)
	assert.Equal(t, 15, e.state.Enemy.EffectiveAttack())
}

// TestHeartsImmunity: Hearts against a Hearts enemy moves nothing until a
// Jester cancels the immunity.
func TestHeartsImmunity(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy:   c(Jack, Hearts),
		hands:   hand(c(Five, Hearts), JesterCard(), c(Four, Hearts), c(Ten, Spades), c(Ten, Diamonds)),
		tavern:  []Card{c(Six, Clubs)},
		discard: []Card{c(Two, Clubs), c(Three, Clubs), c(Four, Clubs)},
	})

	ev := mustPlay(t, e, c(Five, Hearts))
	p, ok := ev.Power(Hearts)
	require.True(t, ok)
	assert.True(t, p.Blocked)
	assert.Equal(t, 1, e.state.Tavern.Len())
	assert.Equal(t, 3, e.state.TavernDiscard.Len())
	assert.Len(t, logger.EventsOfType(log.EventPowerBlocked), 1)

	mustDiscard(t, e, c(Ten, Spades))
	mustPlay(t, e, JesterCard())

	ev = mustPlay(t, e, c(Four, Hearts))
	p, ok = ev.Power(Hearts)
	require.True(t, ok)
	assert.False(t, p.Blocked)
	assert.Equal(t, 4, p.Amount)
	assert.Equal(t, 5, e.state.Tavern.Len())
	assert.Equal(t, 0, e.state.TavernDiscard.Len())

	// Healed cards go under the tavern, not on top.
	top, _ := e.state.Tavern.Peek()
	assert.Equal(t, c(Six, Clubs), top)
}

// TestDiamondsImmunity: Diamonds against a Diamonds enemy draws nothing.
func TestDiamondsImmunity(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(Jack, Diamonds),
		hands:  hand(c(Five, Diamonds), c(Ten, Spades)),
		tavern: []Card{c(Two, Clubs), c(Three, Clubs), c(Four, Clubs), c(Five, Clubs), c(Six, Clubs)},
	})

	ev := mustPlay(t, e, c(Five, Diamonds))

	p, _ := ev.Power(Diamonds)
	assert.True(t, p.Blocked)
	assert.Equal(t, []Card{c(Ten, Spades)}, e.state.ActivePlayer().Hand)
	assert.Equal(t, 5, e.state.Tavern.Len())
	assert.Equal(t, 15, e.state.Enemy.CurrentHP)
}

// TestRetroactiveSpades: 5♠ blocked, Jester, then 3♠ leaves a shield of 8.
func TestRetroactiveSpades(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy:  c(Jack, Spades),
		hands:  hand(c(Five, Spades), JesterCard(), c(Three, Spades), c(Ten, Hearts), c(Ten, Diamonds)),
		tavern: []Card{c(Two, Clubs)},
	})

	ev := mustPlay(t, e, c(Five, Spades))
	assert.Equal(t, 0, e.state.Enemy.Shield)
	assert.Equal(t, 5, e.state.Enemy.PendingSpadeValue)
	assert.Equal(t, 10, ev.EnemyAttack)
	assert.Equal(t, PhaseEnemyAttack, ev.To)

	mustDiscard(t, e, c(Ten, Hearts))

	ev = mustPlay(t, e, JesterCard())
	assert.Equal(t, 5, ev.RetroShield)
	assert.Equal(t, 5, e.state.Enemy.Shield)
	assert.Equal(t, 0, e.state.Enemy.PendingSpadeValue)
	assert.True(t, e.state.Enemy.ImmunityCancelled)
	cancelled := logger.EventsOfType(log.EventImmunityCancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "Spades powers now work against Jack of Spades", cancelled[0].Details)
	assert.False(t, ev.Visited(PhaseEnemyAttack))
	assert.Equal(t, PhaseInput, ev.To)

	ev = mustPlay(t, e, c(Three, Spades))
	assert.Equal(t, 8, e.state.Enemy.Shield)
	assert.Equal(t, 8, ev.Shield)
	assert.Equal(t, 2, ev.EnemyAttack)
	assert.Equal(t, 12, e.state.Enemy.CurrentHP)

	var retro int
	for _, s := range logger.EventsOfType(log.EventShield) {
		if s.Amount == 5 {
			retro++
			assert.Contains(t, s.Details, "retroactively")
		}
	}
	assert.Equal(t, 1, retro)
}

// TestRetroactiveSpadesAppliedOnce: a second Jester adds nothing.
func TestRetroactiveSpadesAppliedOnce(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(Jack, Spades),
		hands:  hand(c(Four, Spades), JesterCard(), JesterCard(), c(Ten, Hearts), c(Nine, Hearts)),
		tavern: []Card{c(Two, Clubs)},
	})

	mustPlay(t, e, c(Four, Spades))
	mustDiscard(t, e, c(Ten, Hearts))
	mustPlay(t, e, JesterCard())
	assert.Equal(t, 4, e.state.Enemy.Shield)

	ev := mustPlay(t, e, JesterCard())
	assert.Equal(t, 0, ev.RetroShield)
	assert.Equal(t, 4, e.state.Enemy.Shield)
}

// TestClubsNotPersistent: Clubs doubles only its own play.
func TestClubsNotPersistent(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(Jack, Hearts),
		hands:  hand(c(Five, Clubs), c(Five, Spades), c(Ten, Diamonds), c(Nine, Diamonds)),
		tavern: []Card{c(Two, Clubs)},
	})

	ev := mustPlay(t, e, c(Five, Clubs))
	assert.Equal(t, 10, ev.Damage)
	assert.Equal(t, 10, e.state.Enemy.CurrentHP)

	mustDiscard(t, e, c(Ten, Diamonds))

	ev = mustPlay(t, e, c(Five, Spades))
	assert.Equal(t, 5, ev.Damage)
	assert.Equal(t, 5, e.state.Enemy.CurrentHP)
	assert.Equal(t, 5, e.state.Enemy.Shield)
}

// TestBlockedClubsNeverDoubleLater: blocked Clubs are remembered but a Jester
// does not double past or future damage from them.
func TestBlockedClubsNeverDoubleLater(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(Jack, Clubs),
		hands:  hand(c(Four, Clubs), JesterCard(), c(Three, Hearts), c(Ten, Diamonds), c(Ten, Spades)),
		tavern: []Card{c(Two, Clubs)},
	})

	ev := mustPlay(t, e, c(Four, Clubs))
	assert.Equal(t, 4, ev.Damage)
	assert.True(t, e.state.Enemy.PendingClubsSeen)
	assert.Equal(t, 16, e.state.Enemy.CurrentHP)

	mustDiscard(t, e, c(Ten, Diamonds))

	mustPlay(t, e, JesterCard())
	assert.Equal(t, 16, e.state.Enemy.CurrentHP)
	assert.Equal(t, 0, e.state.Enemy.Shield)

	ev = mustPlay(t, e, c(Three, Hearts))
	assert.Equal(t, 3, ev.Damage)
	assert.Equal(t, 13, e.state.Enemy.CurrentHP)
}

// TestJesterSkipsEnemyAttack: the enemy never attacks on a Jester turn.
func TestJesterSkipsEnemyAttack(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(King, Diamonds),
		hands: hand(JesterCard(), c(Two, Clubs)),
	})
	turn := e.state.Turn

	ev := mustPlay(t, e, JesterCard())

	assert.Equal(t, []Phase{PhaseResolution, PhaseVictoryCheck, PhaseInput}, ev.Phases)
	assert.Equal(t, PhaseInput, e.Phase())
	assert.Equal(t, turn+1, e.state.Turn)
	assert.Equal(t, 0, e.state.PendingAttack)
	assert.True(t, e.state.JesterPlayed)
	assert.False(t, e.state.AwaitingNomination)
	assert.Equal(t, 40, e.state.Enemy.CurrentHP)
}

// TestSurvivedEnemyRouting: a surviving enemy attacks unless a Jester was
// played this turn.
func TestSurvivedEnemyRouting(t *testing.T) {
	for _, jester := range []bool{false, true} {
		e, _ := newTestEngine(t, testSetup{
			enemy: c(Queen, Spades),
			hands: hand(c(Two, Clubs), c(Nine, Hearts)),
		})
		e.state.JesterPlayed = jester
		ev := e.begin(ActionPlay)
		e.enemySurvived(&ev)

		assert.Equal(t, OutcomeSurvived, ev.Outcome)
		if jester {
			assert.Equal(t, PhaseInput, e.Phase())
			assert.Equal(t, 0, e.state.PendingAttack)
		} else {
			assert.Equal(t, PhaseEnemyAttack, e.Phase())
			assert.Equal(t, 15, e.state.PendingAttack)
		}
	}
}

// TestPowerOrderHeartsBeforeDiamonds: Hearts refills the tavern before
// Diamonds draws from it.
func TestPowerOrderHeartsBeforeDiamonds(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy:   c(Jack, Spades),
		hands:   hand(c(Ace, Hearts), c(Four, Diamonds), c(Six, Spades), c(Five, Spades)),
		discard: []Card{c(Two, Clubs), c(Three, Clubs), c(Six, Clubs)},
	})

	ev := mustPlay(t, e, c(Ace, Hearts), c(Four, Diamonds))
	assert.Equal(t, ComboCompanion, ev.Combo)
	require.Len(t, ev.Powers, 2)
	assert.Equal(t, PowerResult{Suit: Hearts, Amount: 3}, ev.Powers[0])
	assert.Equal(t, PowerResult{Suit: Diamonds, Amount: 3}, ev.Powers[1])
	assert.Len(t, e.state.ActivePlayer().Hand, 5)
	assert.Equal(t, 0, e.state.Tavern.Len())
	assert.Empty(t, logger.EventsOfType(log.EventShuffle))

	heal, draw := -1, -1
	for i, le := range logger.Events() {
		switch le.Type {
		case log.EventHeal:
			heal = i
		case log.EventDraw:
			draw = i
		}
	}
	require.GreaterOrEqual(t, heal, 0)
	assert.Less(t, heal, draw)
}

// TestCompanionBothSuits: an Ace companion sums values and activates both suits.
func TestCompanionBothSuits(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Ace, Spades), c(Seven, Clubs), c(Ten, Diamonds)),
	})

	ev := mustPlay(t, e, c(Ace, Spades), c(Seven, Clubs))
	assert.Equal(t, 8, ev.Attack)
	assert.Equal(t, 16, ev.Damage)
	assert.Equal(t, 8, e.state.Enemy.Shield)
	assert.Equal(t, 2, ev.EnemyAttack)
}

// TestDiamondsCapsAtHandSize: draws stop at the maximum hand size.
func TestDiamondsCapsAtHandSize(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(Jack, Spades),
		hands:  hand(c(Nine, Diamonds), c(Two, Clubs), c(Three, Clubs), c(Four, Clubs), c(Five, Clubs), c(Six, Clubs), c(Seven, Clubs), c(Eight, Clubs)),
		tavern: []Card{c(Two, Hearts), c(Three, Hearts), c(Four, Hearts), c(Five, Hearts), c(Six, Hearts)},
	})

	ev := mustPlay(t, e, c(Nine, Diamonds))
	p, _ := ev.Power(Diamonds)
	assert.Equal(t, 1, p.Amount)
	assert.Len(t, e.state.ActivePlayer().Hand, 8)
	assert.Equal(t, 4, e.state.Tavern.Len())
}

// TestDiamondsRoundRobin: draws alternate between players starting with the
// active one and skip full hands.
func TestDiamondsRoundRobin(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		rules: DefaultRules(2),
		enemy: c(Jack, Spades),
		hands: [][]Card{
			{c(Four, Diamonds), c(Two, Clubs)},
			{c(Two, Hearts), c(Three, Hearts), c(Four, Hearts), c(Five, Hearts), c(Six, Hearts), c(Seven, Hearts)},
		},
		tavern: []Card{c(Two, Spades), c(Three, Spades), c(Four, Spades), c(Five, Spades), c(Six, Spades)},
	})

	mustPlay(t, e, c(Four, Diamonds))

	assert.Len(t, e.state.Players[0].Hand, 4)
	assert.Len(t, e.state.Players[1].Hand, 7)
	assert.Equal(t, c(Three, Spades), e.state.Players[1].Hand[6])
	assert.Equal(t, 1, e.state.Tavern.Len())
}

// TestTavernRecycle: Diamonds with an empty tavern shuffles the discard back
// in, and stops quietly once both are empty.
func TestTavernRecycle(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy:   c(Jack, Spades),
		hands:   hand(c(Five, Diamonds)),
		discard: []Card{c(Two, Clubs), c(Three, Clubs)},
	})

	ev := mustPlay(t, e, c(Five, Diamonds))

	p, _ := ev.Power(Diamonds)
	assert.Equal(t, 2, p.Amount)
	assert.ElementsMatch(t, []Card{c(Two, Clubs), c(Three, Clubs)}, e.state.ActivePlayer().Hand)
	assert.Len(t, logger.EventsOfType(log.EventShuffle), 1)

	// Hand worth 5 against 10 with charges left: the player must act.
	assert.Equal(t, PhaseEnemyAttack, e.Phase())
}

// TestDrawFromEmptyTavern: with both tavern piles empty a draw reports EmptyDeck.
func TestDrawFromEmptyTavern(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Spades),
		hands: hand(c(Five, Diamonds)),
	})

	_, err := e.drawTavern(nil)
	require.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, CodeEmptyDeck, CodeOf(err))
}

// TestDiscardAndPass: a sufficient discard ends the turn.
func TestDiscardAndPass(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy: c(Queen, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs), c(Five, Diamonds), c(Three, Hearts)),
	})

	ev := mustPlay(t, e, c(Two, Spades))
	assert.Equal(t, 13, ev.EnemyAttack)

	// Not enough: state is untouched.
	before := e.Snapshot()
	sel, err := e.ProposeSelection(indexOf(t, e, c(Ten, Clubs)))
	require.NoError(t, err)
	_, err = e.CommitDiscard(sel)
	require.ErrorIs(t, err, ErrIllegalDiscard)
	assert.Equal(t, before, e.Snapshot())

	_, err = e.CommitDiscard(Selection{})
	require.ErrorIs(t, err, ErrIllegalDiscard)

	ev = mustDiscard(t, e, c(Ten, Clubs), c(Three, Hearts))
	assert.Equal(t, PhaseInput, ev.To)
	assert.Equal(t, []Card{c(Five, Diamonds)}, e.state.ActivePlayer().Hand)
	assert.Equal(t, 2, e.state.TavernDiscard.Len())
	assert.Equal(t, 0, e.state.PendingAttack)

	last := logger.EventsOfType(log.EventDiscard)
	require.Len(t, last, 1)
	assert.Equal(t, 13, last[0].Amount)
}

// TestShieldCoversAttack: a fully shielded enemy deals nothing and the turn passes.
func TestShieldCoversAttack(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Ten, Spades), c(Two, Clubs)),
	})

	ev := mustPlay(t, e, c(Ten, Spades))
	assert.True(t, ev.Visited(PhaseEnemyAttack))
	assert.Equal(t, 0, ev.EnemyAttack)
	assert.Equal(t, PhaseInput, ev.To)
}

// TestIllegalPlayLeavesStateUnchanged: rejected plays change nothing.
func TestIllegalPlayLeavesStateUnchanged(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Five, Hearts), c(Five, Spades), c(Five, Diamonds), c(Four, Clubs), JesterCard()),
	})
	before := e.Snapshot()
	events := len(logger.Events())

	for _, cards := range [][]Card{
		{c(Five, Hearts), c(Five, Spades), c(Five, Diamonds)},
		{c(Five, Hearts), c(Four, Clubs)},
		{JesterCard(), c(Four, Clubs)},
	} {
		_, err := tryPlay(t, e, cards...)
		require.ErrorIs(t, err, ErrIllegalPlay)
		assert.Equal(t, CodeIllegalPlay, CodeOf(err))
	}

	_, err := e.CommitPlay(Selection{})
	require.ErrorIs(t, err, ErrIllegalPlay)

	assert.Equal(t, before, e.Snapshot())
	assert.Len(t, logger.Events(), events)
}

// TestWrongPhase: actions outside their phase are rejected.
func TestWrongPhase(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs)),
	})

	_, err := e.CommitDiscard(Selection{})
	require.ErrorIs(t, err, ErrWrongPhase)

	mustPlay(t, e, c(Two, Spades))
	require.Equal(t, PhaseEnemyAttack, e.Phase())

	_, err = tryPlay(t, e, c(Ten, Clubs))
	require.ErrorIs(t, err, ErrWrongPhase)
	_, err = e.YieldTurn()
	require.ErrorIs(t, err, ErrWrongPhase)
	assert.False(t, e.CanYield())
}

// TestSoloRanking: jesters used at victory decide the grade.
func TestSoloRanking(t *testing.T) {
	tests := []struct {
		used int
		want Ranking
	}{
		{0, RankingGold},
		{1, RankingSilver},
		{2, RankingBronze},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			e, logger := newTestEngine(t, testSetup{
				enemy: c(King, Hearts),
				hands: hand(c(Two, Spades)),
			})
			e.state.Enemy.CurrentHP = 1
			e.state.Players[0].JestersUsed = tt.used
			e.state.Players[0].JesterCharges = 2 - tt.used

			ev := mustPlay(t, e, c(Two, Spades))

			assert.Equal(t, PhaseVictory, ev.To)
			assert.Equal(t, tt.want, ev.Ranking)
			assert.Equal(t, tt.want, e.Snapshot().Ranking)
			assert.Nil(t, e.Snapshot().Enemy)
			assert.True(t, e.Over())

			v := logger.EventsOfType(log.EventVictory)
			require.Len(t, v, 1)
			assert.Contains(t, v[0].Details, tt.want.String())
		})
	}
}

// TestDefeatHalts: an unpayable attack with no charges ends the game and every
// later action is refused.
func TestDefeatHalts(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy: c(King, Spades),
		hands: hand(c(Two, Hearts), c(Three, Diamonds)),
	})
	e.state.Players[0].JesterCharges = 0

	ev := mustPlay(t, e, c(Two, Hearts))
	assert.Equal(t, PhaseDefeat, ev.To)
	assert.True(t, e.Over())
	assert.Contains(t, ev.Result, "Defeat")
	assert.Len(t, logger.EventsOfType(log.EventDefeat), 1)

	before := e.Snapshot()

	_, err := e.ProposeSelection([]int{0})
	require.ErrorIs(t, err, ErrGameOver)
	_, err = e.CommitPlay(Selection{})
	require.ErrorIs(t, err, ErrGameOver)
	_, err = e.CommitDiscard(Selection{})
	require.ErrorIs(t, err, ErrGameOver)
	_, err = e.UseJester()
	require.ErrorIs(t, err, ErrGameOver)
	_, err = e.YieldTurn()
	require.ErrorIs(t, err, ErrGameOver)
	require.ErrorIs(t, e.ToggleSelection(0), ErrGameOver)

	assert.Equal(t, before, e.Snapshot())
}

// TestJesterPowerSavesTurn: with a charge left the player may refresh the hand
// during the enemy attack.
func TestJesterPowerSavesTurn(t *testing.T) {
	tavern := []Card{
		c(Ten, Hearts), c(Ten, Clubs), c(Nine, Hearts), c(Nine, Clubs),
		c(Eight, Hearts), c(Eight, Clubs), c(Seven, Hearts), c(Seven, Clubs), c(Six, Hearts),
	}
	e, logger := newTestEngine(t, testSetup{
		enemy:  c(King, Spades),
		hands:  hand(c(Two, Hearts), c(Three, Diamonds)),
		tavern: tavern,
	})

	// Diamonds are not in this play, so the hand stays small.
	mustPlay(t, e, c(Two, Hearts))
	require.Equal(t, PhaseEnemyAttack, e.Phase())

	ev, err := e.UseJester()
	require.NoError(t, err)
	assert.Equal(t, PhaseEnemyAttack, ev.To)
	p := e.state.ActivePlayer()
	assert.Len(t, p.Hand, 8)
	assert.Equal(t, 1, p.JesterCharges)
	assert.Equal(t, 1, p.JestersUsed)
	assert.Contains(t, e.state.TavernDiscard.Cards(), c(Three, Diamonds))
	assert.Len(t, logger.EventsOfType(log.EventJesterPower), 1)

	// The refresh draws from the tavern top in order.
	assert.Equal(t, tavern[:8], p.Hand)
}

// TestJesterPowerCannotSave: a refresh that still cannot cover the attack
// with no charges left is a defeat.
func TestJesterPowerCannotSave(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy:  c(King, Spades),
		hands:  hand(c(Two, Hearts), c(Three, Diamonds)),
		tavern: []Card{c(Two, Clubs), c(Two, Diamonds), c(Two, Spades), c(Ace, Clubs)},
	})
	e.state.Players[0].JesterCharges = 1

	mustPlay(t, e, c(Two, Hearts))
	require.Equal(t, PhaseEnemyAttack, e.Phase())

	ev, err := e.UseJester()
	require.NoError(t, err)
	assert.Equal(t, PhaseDefeat, ev.To)
}

// TestNoJesterCharge: the solo power needs a charge.
func TestNoJesterCharge(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades)),
	})
	e.state.Players[0].JesterCharges = 0
	before := e.Snapshot()

	_, err := e.UseJester()
	require.ErrorIs(t, err, ErrNoJesterCharge)
	assert.Equal(t, before, e.Snapshot())
}

// TestSoloYield: solo players may always yield; the enemy attacks at once.
func TestSoloYield(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Ten, Spades), c(Two, Clubs)),
	})

	ev, err := e.YieldTurn()
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseEnemyAttack}, ev.Phases)
	assert.Equal(t, 10, ev.EnemyAttack)

	mustDiscard(t, e, c(Ten, Spades))
	assert.True(t, e.CanYield())
	_, err = e.YieldTurn()
	require.NoError(t, err)
	assert.Len(t, logger.EventsOfType(log.EventYield), 2)
}

// TestSoloShieldedYieldContinues: a solo player with nothing left but a full
// shield keeps yielding; the game neither advances nor ends.
func TestSoloShieldedYieldContinues(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(),
	})
	e.state.Players[0].JesterCharges = 0
	e.state.Enemy.Shield = 10

	for i := 0; i < 20; i++ {
		require.True(t, e.CanYield())
		ev, err := e.YieldTurn()
		require.NoError(t, err)
		assert.Equal(t, 0, ev.EnemyAttack)
		assert.Equal(t, PhaseInput, ev.To)
	}
	assert.False(t, e.Over())
}

// TestCannotYield: in a two-player game the second consecutive yield is refused.
func TestCannotYield(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		rules: DefaultRules(2),
		enemy: c(Jack, Hearts),
		hands: [][]Card{
			{c(Ten, Spades), c(Two, Clubs)},
			{c(Nine, Diamonds), c(Three, Clubs), c(Four, Spades)},
		},
	})

	_, err := e.YieldTurn()
	require.NoError(t, err)
	mustDiscard(t, e, c(Ten, Spades))
	require.Equal(t, 1, e.state.Active)

	assert.False(t, e.CanYield())
	before := e.Snapshot()
	_, err = e.YieldTurn()
	require.ErrorIs(t, err, ErrCannotYield)
	assert.Equal(t, before, e.Snapshot())

	ev := mustPlay(t, e, c(Three, Clubs))
	assert.Equal(t, 6, ev.Damage)
	mustDiscard(t, e, c(Nine, Diamonds), c(Four, Spades))

	require.Equal(t, 0, e.state.Active)
	assert.True(t, e.CanYield())
}

// TestYieldRefusedAfterPreviousYield: with three players a yield is refused
// as soon as the previous actor yielded, not only once everyone has.
func TestYieldRefusedAfterPreviousYield(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		rules: DefaultRules(3),
		enemy: c(Jack, Hearts),
		hands: [][]Card{
			{c(Ten, Spades), c(Two, Clubs)},
			{c(Nine, Diamonds), c(Three, Clubs), c(Four, Spades)},
			{c(Ten, Hearts), c(Two, Spades)},
		},
	})

	_, err := e.YieldTurn()
	require.NoError(t, err)
	mustDiscard(t, e, c(Ten, Spades))
	require.Equal(t, 1, e.state.Active)

	assert.False(t, e.CanYield())
	before := e.Snapshot()
	_, err = e.YieldTurn()
	require.ErrorIs(t, err, ErrCannotYield)
	assert.Equal(t, CodeCannotYield, CodeOf(err))
	assert.Equal(t, before, e.Snapshot())

	// A play clears the streak for the next player.
	mustPlay(t, e, c(Three, Clubs))
	mustDiscard(t, e, c(Nine, Diamonds), c(Four, Spades))
	require.Equal(t, 2, e.state.Active)
	assert.True(t, e.CanYield())

	_, err = e.YieldTurn()
	require.NoError(t, err)
	mustDiscard(t, e, c(Ten, Hearts))
	require.Equal(t, 0, e.state.Active)
	assert.False(t, e.CanYield())
}

// TestEmptyHandNoYieldIsDefeat: a player who can neither play nor yield loses.
func TestEmptyHandNoYieldIsDefeat(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		rules: DefaultRules(2),
		enemy: c(Jack, Hearts),
		hands: [][]Card{
			{c(Ten, Spades), c(Two, Clubs)},
			{},
		},
	})

	_, err := e.YieldTurn()
	require.NoError(t, err)
	ev := mustDiscard(t, e, c(Ten, Spades))

	assert.Equal(t, PhaseDefeat, ev.To)
}

// TestJesterNomination: in multiplayer the Jester player picks who goes next.
func TestJesterNomination(t *testing.T) {
	e, logger := newTestEngine(t, testSetup{
		rules: DefaultRules(3),
		enemy: c(Jack, Clubs),
		hands: [][]Card{
			{JesterCard(), c(Five, Hearts)},
			{c(Two, Spades)},
			{c(Three, Diamonds)},
		},
	})

	_, err := e.NominateNext(1)
	require.ErrorIs(t, err, ErrInvalidNomination)

	ev := mustPlay(t, e, JesterCard())
	assert.Equal(t, PhaseInput, ev.To)
	assert.True(t, e.Snapshot().AwaitingNomination)

	_, err = e.NominateNext(5)
	require.ErrorIs(t, err, ErrInvalidNomination)

	ev, err = e.NominateNext(2)
	require.NoError(t, err)
	assert.Equal(t, ActionNominate, ev.Action)
	assert.Equal(t, 2, e.state.Active)
	assert.False(t, e.state.AwaitingNomination)
	assert.Len(t, logger.EventsOfType(log.EventNominate), 1)

	_, err = e.NominateNext(0)
	require.ErrorIs(t, err, ErrInvalidNomination)
}

// TestStaleSelection: a proposal made before the hand changed cannot commit.
func TestStaleSelection(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs), c(Four, Hearts)),
	})

	stale, err := e.ProposeSelection([]int{1})
	require.NoError(t, err)

	mustPlay(t, e, c(Two, Spades))
	mustDiscard(t, e, c(Ten, Clubs))

	_, err = e.CommitPlay(stale)
	require.ErrorIs(t, err, ErrInvalidSelection)
}

// TestProposeSelectionValidation: bad indices are refused, nothing changes.
func TestProposeSelectionValidation(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs)),
	})
	before := e.Snapshot()

	_, err := e.ProposeSelection([]int{2})
	require.ErrorIs(t, err, ErrInvalidSelection)
	_, err = e.ProposeSelection([]int{0, 0})
	require.ErrorIs(t, err, ErrInvalidSelection)
	_, err = e.ProposeSelection([]int{-1})
	require.ErrorIs(t, err, ErrInvalidSelection)

	sel, err := e.ProposeSelection([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []Card{c(Ten, Clubs), c(Two, Spades)}, sel.Cards)
	assert.Equal(t, 12, sel.Value())

	assert.Equal(t, before, e.Snapshot())
}

// TestToggleSelection: toggling builds the pending selection and clearing drops it.
func TestToggleSelection(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Two, Clubs), c(Ten, Clubs)),
	})

	require.NoError(t, e.ToggleSelection(0))
	require.NoError(t, e.ToggleSelection(1))
	require.NoError(t, e.ToggleSelection(2))
	require.NoError(t, e.ToggleSelection(2))
	require.ErrorIs(t, e.ToggleSelection(3), ErrInvalidSelection)

	sel, err := e.Selected()
	require.NoError(t, err)
	assert.Equal(t, []Card{c(Two, Spades), c(Two, Clubs)}, sel.Cards)
	assert.Equal(t, []int{0, 1}, e.Snapshot().Selected)

	ev, err := e.CommitPlay(sel)
	require.NoError(t, err)
	assert.Equal(t, ComboSet, ev.Combo)
	assert.Empty(t, e.Snapshot().Selected)

	require.NoError(t, e.ToggleSelection(0))
	e.ClearSelection()
	assert.Empty(t, e.Snapshot().Selected)
}

// TestSnapshotIsDetached: mutating a snapshot never reaches the engine.
func TestSnapshotIsDetached(t *testing.T) {
	e, _ := newTestEngine(t, testSetup{
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs)),
	})

	snap := e.Snapshot()
	snap.Players[0].Hand[0] = c(King, Hearts)
	snap.Enemy.CurrentHP = 1

	assert.Equal(t, c(Two, Spades), e.state.Players[0].Hand[0])
	assert.Equal(t, 20, e.state.Enemy.CurrentHP)
}

// TestSnapshotLogTail: the snapshot carries at most LogTail events.
func TestSnapshotLogTail(t *testing.T) {
	rules := SoloRules()
	rules.LogTail = 3
	e, logger := newTestEngine(t, testSetup{
		rules: rules,
		enemy: c(Jack, Hearts),
		hands: hand(c(Two, Spades), c(Ten, Clubs)),
	})

	mustPlay(t, e, c(Two, Spades))

	snap := e.Snapshot()
	require.Len(t, snap.LogTail, 3)
	events := logger.Events()
	assert.Equal(t, events[len(events)-1], snap.LogTail[2])
}
