package game

import "fmt"

const (
	MinPlayers     = 1
	MaxPlayers     = 4
	ComboMaxValue  = 10
	ComboMaxCards  = 4
	DefaultLogTail = 100
)

// Rules holds the tunable parameters of a game.
type Rules struct {
	Players       int                 `yaml:"players"`
	MaxHandSize   int                 `yaml:"max_hand_size"`
	TavernJesters int                 `yaml:"tavern_jesters"`
	JesterCharges int                 `yaml:"jester_charges"` // solo hand-refresh powers
	LogTail       int                 `yaml:"log_tail"`
	Enemies       map[Rank]EnemyStats `yaml:"-"`
}

// DefaultEnemyTable returns HP and attack per enemy rank.
func DefaultEnemyTable() map[Rank]EnemyStats {
	return map[Rank]EnemyStats{
		Jack:  {HP: 20, Attack: 10},
		Queen: {HP: 30, Attack: 15},
		King:  {HP: 40, Attack: 20},
	}
}

// DefaultRules returns the standard rules for the given player count.
// Out-of-range counts fall back to solo.
func DefaultRules(players int) Rules {
	r := Rules{
		Players: players,
		LogTail: DefaultLogTail,
		Enemies: DefaultEnemyTable(),
	}
	switch players {
	case 2:
		r.MaxHandSize = 7
	case 3:
		r.MaxHandSize = 6
		r.TavernJesters = 1
	case 4:
		r.MaxHandSize = 5
		r.TavernJesters = 2
	default:
		r.Players = 1
		r.MaxHandSize = 8
		r.JesterCharges = 2
	}
	return r
}

// SoloRules returns the single-player rules.
func SoloRules() Rules {
	return DefaultRules(1)
}

// Solo reports whether the rules describe a one-player game.
func (r Rules) Solo() bool {
	return r.Players == 1
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	if r.Players < MinPlayers || r.Players > MaxPlayers {
		return fmt.Errorf("players must be %d-%d, got %d", MinPlayers, MaxPlayers, r.Players)
	}
	if r.MaxHandSize < 1 {
		return fmt.Errorf("max hand size must be positive, got %d", r.MaxHandSize)
	}
	if r.MaxHandSize*r.Players > 40 {
		return fmt.Errorf("max hand size %d too large for %d player(s)", r.MaxHandSize, r.Players)
	}
	if r.TavernJesters < 0 || r.JesterCharges < 0 {
		return fmt.Errorf("jester counts must not be negative")
	}
	for _, rank := range []Rank{Jack, Queen, King} {
		s, ok := r.Enemies[rank]
		if !ok {
			return fmt.Errorf("enemy table missing %s", rank.Name())
		}
		if s.HP < 1 || s.Attack < 0 {
			return fmt.Errorf("invalid %s stats: hp %d attack %d", rank.Name(), s.HP, s.Attack)
		}
	}
	return nil
}
