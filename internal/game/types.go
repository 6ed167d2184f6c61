package game

import "strconv"

// --- Enums ---

type Suit int

const (
	SuitNone Suit = iota // Jester
	Hearts
	Diamonds
	Clubs
	Spades
)

// Suits lists the four real suits in power-resolution order.
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Spades:
		return "Spades"
	default:
		return "None"
	}
}

// Symbol returns the suit glyph used in card names.
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return ""
	}
}

type Rank int

const (
	RankNone Rank = iota
	Ace
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Jester
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Jester:
		return "*"
	case RankNone:
		return "?"
	default:
		return strconv.Itoa(int(r))
	}
}

// Name returns the long name of a face rank ("Jack"), or the short form otherwise.
func (r Rank) Name() string {
	switch r {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Jester:
		return "Jester"
	case Ace:
		return "Ace"
	default:
		return r.String()
	}
}

// IsFace reports whether the rank is an enemy rank (Jack, Queen, King).
func (r Rank) IsFace() bool {
	return r == Jack || r == Queen || r == King
}

type Phase int

const (
	PhaseInput Phase = iota
	PhaseResolution
	PhaseVictoryCheck
	PhaseEnemyAttack
	PhaseVictory
	PhaseDefeat
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhaseResolution:
		return "Resolution"
	case PhaseVictoryCheck:
		return "Victory Check"
	case PhaseEnemyAttack:
		return "Enemy Attack"
	case PhaseVictory:
		return "Victory"
	case PhaseDefeat:
		return "Defeat"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further actions are accepted.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// Ranking grades a solo victory by the number of Jester charges spent.
type Ranking int

const (
	RankingNone Ranking = iota
	RankingGold
	RankingSilver
	RankingBronze
)

func (r Ranking) String() string {
	switch r {
	case RankingGold:
		return "Gold"
	case RankingSilver:
		return "Silver"
	case RankingBronze:
		return "Bronze"
	default:
		return ""
	}
}

// RankingFor maps jesters used at victory to a grade.
func RankingFor(jestersUsed int) Ranking {
	switch jestersUsed {
	case 0:
		return RankingGold
	case 1:
		return RankingSilver
	case 2:
		return RankingBronze
	default:
		return RankingNone
	}
}

// Outcome describes what happened to the enemy during a victory check.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSurvived
	OutcomeCaptured
	OutcomeOverkill
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSurvived:
		return "survived"
	case OutcomeCaptured:
		return "captured"
	case OutcomeOverkill:
		return "overkill"
	default:
		return "none"
	}
}
