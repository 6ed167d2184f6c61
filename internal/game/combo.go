package game

// ComboKind classifies a legal play.
type ComboKind int

const (
	ComboInvalid ComboKind = iota
	ComboSingle
	ComboJester
	ComboSet       // 2-4 cards of one rank, total ≤ 10
	ComboCompanion // Ace + one other card
)

func (k ComboKind) String() string {
	switch k {
	case ComboSingle:
		return "single"
	case ComboJester:
		return "jester"
	case ComboSet:
		return "set"
	case ComboCompanion:
		return "companion"
	default:
		return "invalid"
	}
}

// ValidatePlay checks whether the given cards form a legal play.
func ValidatePlay(cards []Card) (ComboKind, error) {
	if len(cards) == 0 {
		return ComboInvalid, ruleErrorf(CodeIllegalPlay, "must play at least one card")
	}

	jesters := 0
	aces := 0
	for _, c := range cards {
		if c.IsJester() {
			jesters++
		}
		if c.IsCompanion() {
			aces++
		}
	}

	if jesters > 0 {
		if len(cards) > 1 {
			return ComboInvalid, ruleErrorf(CodeIllegalPlay, "the Jester must be played alone")
		}
		return ComboJester, nil
	}

	if len(cards) == 1 {
		return ComboSingle, nil
	}

	if len(cards) == 2 && aces == 1 {
		return ComboCompanion, nil
	}

	if len(cards) > ComboMaxCards {
		return ComboInvalid, ruleErrorf(CodeIllegalPlay, "cannot play more than %d cards at once", ComboMaxCards)
	}

	rank := cards[0].Rank
	for _, c := range cards[1:] {
		if c.Rank != rank {
			if aces > 0 {
				return ComboInvalid, ruleErrorf(CodeIllegalPlay, "an Ace pairs with exactly one other card")
			}
			return ComboInvalid, ruleErrorf(CodeIllegalPlay, "combo cards must share one rank (or pair an Ace with one card)")
		}
	}

	if total := TotalValue(cards); total > ComboMaxValue {
		return ComboInvalid, ruleErrorf(CodeIllegalPlay, "combo total %d exceeds %d", total, ComboMaxValue)
	}

	return ComboSet, nil
}

// ActiveSuits returns the distinct suits among the cards in resolution order.
func ActiveSuits(cards []Card) []Suit {
	var seen [Spades + 1]bool
	for _, c := range cards {
		seen[c.Suit] = true
	}
	var out []Suit
	for _, s := range Suits {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}
