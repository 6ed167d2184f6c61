package game

import (
	"errors"

	"github.com/peterkuimelis/regicide/internal/log"
)

// resolution carries the running values of one play through the powers.
type resolution struct {
	attack     int
	multiplier int
}

type powerFunc func(e *Engine, r *resolution, ev *TurnEvent) PowerResult

// suitPowers is the closed dispatch table, indexed by Suit. Resolution walks
// Suits in order, so Hearts refills the tavern before Diamonds draws from it.
var suitPowers = [Spades + 1]powerFunc{
	Hearts:   heartsPower,
	Diamonds: diamondsPower,
	Clubs:    clubsPower,
	Spades:   spadesPower,
}

// applyPowers resolves each distinct suit among the played cards and returns
// the final damage.
func (e *Engine) applyPowers(cards []Card, ev *TurnEvent) int {
	enemy := e.state.Enemy
	r := &resolution{attack: TotalValue(cards), multiplier: 1}

	for _, s := range ActiveSuits(cards) {
		if enemy.IsImmuneTo(s) {
			switch s {
			case Spades:
				enemy.BlockSpades(r.attack)
			case Clubs:
				enemy.PendingClubsSeen = true
			}
			ev.Powers = append(ev.Powers, PowerResult{Suit: s, Blocked: true})
			e.log(log.NewPowerBlockedEvent(e.state.Turn, e.state.Active, s.String(), enemy.Name()))
			continue
		}
		ev.Powers = append(ev.Powers, suitPowers[s](e, r, ev))
	}

	return r.attack * r.multiplier
}

// heartsPower shuffles the discard pile and moves up to N cards from it to the
// bottom of the tavern.
func heartsPower(e *Engine, r *resolution, ev *TurnEvent) PowerResult {
	st := e.state
	st.TavernDiscard.Shuffle(e.rng)
	healed := st.TavernDiscard.DrawN(r.attack)
	st.Tavern.PushBottom(healed...)
	ev.move(healed, PileTavernDiscard, PileTavern)
	e.log(log.NewHealEvent(st.Turn, st.Active, len(healed)))
	return PowerResult{Suit: Hearts, Amount: len(healed)}
}

// diamondsPower deals up to N cards, one at a time starting with the active
// player and skipping full hands. Draws that do not fit are not taken.
func diamondsPower(e *Engine, r *resolution, ev *TurnEvent) PowerResult {
	st := e.state
	drawn := 0
	perPlayer := make([]int, len(st.Players))
	remaining := r.attack

deal:
	for remaining > 0 {
		dealt := false
		for off := 0; off < len(st.Players) && remaining > 0; off++ {
			idx := (st.Active + off) % len(st.Players)
			p := st.Players[idx]
			if p.IsHandFull() {
				continue
			}
			card, err := e.drawTavern(ev)
			if err != nil {
				break deal
			}
			p.AddToHand(card)
			ev.move([]Card{card}, PileTavern, PileHand)
			perPlayer[idx]++
			drawn++
			remaining--
			dealt = true
		}
		if !dealt {
			break
		}
	}

	for idx, n := range perPlayer {
		if n > 0 {
			e.log(log.NewDrawEvent(st.Turn, st.Phase.String(), idx, n))
		}
	}
	return PowerResult{Suit: Diamonds, Amount: drawn}
}

// clubsPower doubles this resolution's damage. Nothing is stored on the enemy.
func clubsPower(e *Engine, r *resolution, ev *TurnEvent) PowerResult {
	r.multiplier = 2
	e.log(log.NewClubsEvent(e.state.Turn, e.state.Active, r.attack))
	return PowerResult{Suit: Clubs, Amount: r.attack * 2}
}

// spadesPower adds N to the enemy's shield for the rest of the encounter.
func spadesPower(e *Engine, r *resolution, ev *TurnEvent) PowerResult {
	enemy := e.state.Enemy
	enemy.AddShield(r.attack)
	e.log(log.NewShieldEvent(e.state.Turn, e.state.Active, r.attack, enemy.Shield, false))
	return PowerResult{Suit: Spades, Amount: r.attack}
}

// drawTavern draws one card from the tavern. An empty tavern is refilled by
// shuffling the discard pile into it; ErrEmptyDeck only when both are empty.
func (e *Engine) drawTavern(ev *TurnEvent) (Card, error) {
	st := e.state
	if st.Tavern.Empty() {
		if st.TavernDiscard.Empty() {
			return Card{}, ErrEmptyDeck
		}
		recycled := st.TavernDiscard.TakeAll()
		st.Tavern.PushBottom(recycled...)
		st.Tavern.Shuffle(e.rng)
		if ev != nil {
			ev.move(recycled, PileTavernDiscard, PileTavern)
		}
		e.log(log.NewShuffleEvent(st.Turn, st.Phase.String(), "the discard pile", len(recycled)))
	}
	card, _ := st.Tavern.Draw()
	return card, nil
}

// drawInto draws up to n cards into a hand, stopping quietly when both tavern
// piles run dry.
func (e *Engine) drawInto(p *Player, n int, ev *TurnEvent) int {
	drawn := 0
	for drawn < n {
		card, err := e.drawTavern(ev)
		if errors.Is(err, ErrEmptyDeck) {
			break
		}
		p.AddToHand(card)
		drawn++
	}
	return drawn
}
