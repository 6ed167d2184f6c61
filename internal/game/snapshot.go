package game

import "github.com/peterkuimelis/regicide/internal/log"

// EnemyView is a detached copy of the current enemy.
type EnemyView struct {
	Card              Card
	Name              string
	MaxHP             int
	CurrentHP         int
	BaseAttack        int
	EffectiveAttack   int
	Shield            int
	ImmunityCancelled bool
	PendingSpadeValue int
	PendingClubsSeen  bool
}

// PlayerView is a detached copy of one player.
type PlayerView struct {
	Hand          []Card
	MaxHand       int
	JesterCharges int
	JestersUsed   int
}

// Snapshot is an immutable view of the game; the only channel to rendering.
type Snapshot struct {
	Phase   Phase
	Turn    int
	Active  int
	Players []PlayerView

	Enemy *EnemyView // nil after victory

	TavernCount        int
	TavernDiscardCount int
	CastleCount        int
	CastleDiscardCount int
	Played             []Card
	Captured           int

	Selected           []int
	PendingAttack      int
	CanYield           bool
	AwaitingNomination bool

	Ranking Ranking
	Result  string
	LogTail []log.GameEvent
}

// Hand returns the acting player's hand.
func (s Snapshot) Hand() []Card {
	return s.Players[s.Active].Hand
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	st := e.state
	snap := Snapshot{
		Phase:              st.Phase,
		Turn:               st.Turn,
		Active:             st.Active,
		TavernCount:        st.Tavern.Len(),
		TavernDiscardCount: st.TavernDiscard.Len(),
		CastleCount:        st.Castle.Len(),
		CastleDiscardCount: st.CastleDiscard.Len(),
		Played:             st.Played.Cards(),
		Captured:           st.Captured,
		Selected:           append([]int(nil), st.Selected...),
		PendingAttack:      st.PendingAttack,
		CanYield:           e.CanYield(),
		AwaitingNomination: st.AwaitingNomination,
		Ranking:            st.Ranking,
		Result:             st.Result,
		LogTail:            log.Tail(e.logger.Events(), e.rules.LogTail),
	}

	for _, p := range st.Players {
		snap.Players = append(snap.Players, PlayerView{
			Hand:          append([]Card(nil), p.Hand...),
			MaxHand:       p.MaxHand,
			JesterCharges: p.JesterCharges,
			JestersUsed:   p.JestersUsed,
		})
	}

	if en := st.Enemy; en != nil {
		snap.Enemy = &EnemyView{
			Card:              en.Card,
			Name:              en.Name(),
			MaxHP:             en.MaxHP,
			CurrentHP:         en.CurrentHP,
			BaseAttack:        en.BaseAttack,
			EffectiveAttack:   en.EffectiveAttack(),
			Shield:            en.Shield,
			ImmunityCancelled: en.ImmunityCancelled,
			PendingSpadeValue: en.PendingSpadeValue,
			PendingClubsSeen:  en.PendingClubsSeen,
		}
	}
	return snap
}
