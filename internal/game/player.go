package game

import "sort"

// Player represents one player's hand and solo Jester charges.
type Player struct {
	Hand          []Card
	MaxHand       int
	JesterCharges int // remaining solo Jester powers
	JestersUsed   int
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// Room returns how many more cards fit in the hand.
func (p *Player) Room() int {
	if n := p.MaxHand - len(p.Hand); n > 0 {
		return n
	}
	return 0
}

// IsHandFull reports whether the hand is at its maximum size.
func (p *Player) IsHandFull() bool {
	return p.Room() == 0
}

// AddToHand appends cards to the hand without checking capacity.
func (p *Player) AddToHand(cards ...Card) {
	p.Hand = append(p.Hand, cards...)
}

// HandValue returns the summed value of every card in hand.
func (p *Player) HandValue() int {
	return TotalValue(p.Hand)
}

// CardsAt returns the cards at the given hand indices, in index order given.
func (p *Player) CardsAt(indices []int) []Card {
	out := make([]Card, 0, len(indices))
	for _, i := range indices {
		out = append(out, p.Hand[i])
	}
	return out
}

// RemoveIndices removes the cards at the given indices and returns them in
// ascending index order. Indices must be valid and distinct.
func (p *Player) RemoveIndices(indices []int) []Card {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	removed := make([]Card, 0, len(sorted))
	keep := make([]Card, 0, len(p.Hand)-len(sorted))
	next := 0
	for i, c := range p.Hand {
		if next < len(sorted) && sorted[next] == i {
			removed = append(removed, c)
			next++
			continue
		}
		keep = append(keep, c)
	}
	p.Hand = keep
	return removed
}

// TakeHand empties the hand and returns its former contents.
func (p *Player) TakeHand() []Card {
	out := p.Hand
	p.Hand = nil
	return out
}
