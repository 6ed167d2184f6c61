package game

import "fmt"

// Card is an immutable playing card. The zero Suit is used only by Jesters.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a suited card.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// JesterCard returns the suitless wildcard.
func JesterCard() Card {
	return Card{Rank: Jester, Suit: SuitNone}
}

// Value returns the attack/discard value of the card. Face cards only reach a
// hand after being captured and count 10/15/20 there.
func (c Card) Value() int {
	switch c.Rank {
	case Jester, RankNone:
		return 0
	case Jack:
		return 10
	case Queen:
		return 15
	case King:
		return 20
	default:
		return int(c.Rank)
	}
}

// IsJester reports whether the card is the wildcard.
func (c Card) IsJester() bool {
	return c.Rank == Jester
}

// IsCompanion reports whether the card is an Ace (animal companion).
func (c Card) IsCompanion() bool {
	return c.Rank == Ace
}

// String returns the short display form, e.g. "10♠" or "*".
func (c Card) String() string {
	if c.IsJester() {
		return "*"
	}
	return c.Rank.String() + c.Suit.Symbol()
}

// Name returns the long display form used for enemies, e.g. "Queen of Hearts".
func (c Card) Name() string {
	if c.IsJester() {
		return "Jester"
	}
	return fmt.Sprintf("%s of %s", c.Rank.Name(), c.Suit)
}

// CardNames returns the short names of the given cards.
func CardNames(cards []Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.String()
	}
	return names
}

// TotalValue sums the values of the given cards.
func TotalValue(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}
