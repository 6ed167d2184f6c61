package game

import (
	"math/rand/v2"
)

// Deck is an ordered pile of cards. Index 0 is the top (next to draw).
// The same type backs the Tavern, the Castle and both discard piles.
type Deck struct {
	cards []Card
}

// NewDeck creates a deck holding the given cards, first card on top.
func NewDeck(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Empty reports whether the deck has no cards.
func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the deck contents, top first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Peek returns the top card without removing it.
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

// Draw removes and returns the top card, or false if the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// DrawN removes and returns up to n cards from the top.
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out
}

// PushTop places cards on top of the deck; cards[0] becomes the new top.
func (d *Deck) PushTop(cards ...Card) {
	merged := make([]Card, 0, len(cards)+len(d.cards))
	merged = append(merged, cards...)
	d.cards = append(merged, d.cards...)
}

// PushBottom places cards at the bottom of the deck in the given order.
func (d *Deck) PushBottom(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// TakeAll empties the deck and returns its former contents.
func (d *Deck) TakeAll() []Card {
	out := d.cards
	d.cards = nil
	return out
}

// Shuffle randomizes the deck order (Fisher–Yates).
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Count returns how many cards in the deck satisfy pred.
func (d *Deck) Count(pred func(Card) bool) int {
	n := 0
	for _, c := range d.cards {
		if pred(c) {
			n++
		}
	}
	return n
}

// --- Construction ---

// NewCastleDeck builds the enemy deck: each face rank forms a shuffled layer,
// stacked so all Jacks are faced first and all Kings last.
func NewCastleDeck(rng *rand.Rand) *Deck {
	castle := &Deck{}
	for _, rank := range []Rank{Jack, Queen, King} {
		layer := &Deck{}
		for _, s := range Suits {
			layer.PushBottom(NewCard(rank, s))
		}
		layer.Shuffle(rng)
		castle.PushBottom(layer.cards...)
	}
	return castle
}

// NewTavernDeck builds the player deck: Ace through 10 of every suit plus the
// given number of Jesters, fully shuffled.
func NewTavernDeck(jesters int, rng *rand.Rand) *Deck {
	tavern := &Deck{}
	for _, s := range Suits {
		for r := Ace; r <= Ten; r++ {
			tavern.PushBottom(NewCard(r, s))
		}
	}
	for i := 0; i < jesters; i++ {
		tavern.PushBottom(JesterCard())
	}
	tavern.Shuffle(rng)
	return tavern
}

// NewRand returns the engine's random source. A zero seed picks a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
