package game

// EnemyStats is one row of the enemy table.
type EnemyStats struct {
	HP     int `yaml:"hp"`
	Attack int `yaml:"attack"`
}

// Enemy is the castle card currently being fought, plus the effect state that
// lives exactly as long as the encounter.
type Enemy struct {
	Card       Card
	MaxHP      int
	CurrentHP  int
	BaseAttack int

	// Shield accumulates active Spades; it only grows during an encounter.
	Shield int
	// ImmunityCancelled is set by a Jester for the rest of the encounter.
	ImmunityCancelled bool
	// PendingSpadeValue holds Spades blocked by immunity, applied once on cancel.
	PendingSpadeValue int
	// PendingClubsSeen records that a Clubs power was blocked. It never doubles
	// damage after the fact.
	PendingClubsSeen bool
}

// NewEnemy creates a fresh enemy from a castle card using the given table.
func NewEnemy(card Card, table map[Rank]EnemyStats) *Enemy {
	stats := table[card.Rank]
	return &Enemy{
		Card:       card,
		MaxHP:      stats.HP,
		CurrentHP:  stats.HP,
		BaseAttack: stats.Attack,
	}
}

// Name returns the enemy's display name.
func (e *Enemy) Name() string {
	return e.Card.Name()
}

// Suit returns the enemy's suit, which is also its immunity.
func (e *Enemy) Suit() Suit {
	return e.Card.Suit
}

// IsImmuneTo reports whether the given suit's power is blocked.
func (e *Enemy) IsImmuneTo(s Suit) bool {
	return !e.ImmunityCancelled && e.Card.Suit == s
}

// EffectiveAttack returns the attack after shields, never negative.
func (e *Enemy) EffectiveAttack() int {
	if e.Shield >= e.BaseAttack {
		return 0
	}
	return e.BaseAttack - e.Shield
}

// TakeDamage applies damage and returns the signed remainder: zero means an
// exact kill, negative means overkill. CurrentHP itself never drops below zero.
func (e *Enemy) TakeDamage(damage int) int {
	remaining := e.CurrentHP - damage
	if remaining < 0 {
		e.CurrentHP = 0
	} else {
		e.CurrentHP = remaining
	}
	return remaining
}

// AddShield adds active Spades to the shield.
func (e *Enemy) AddShield(n int) {
	if n > 0 {
		e.Shield += n
	}
}

// BlockSpades remembers Spades that immunity blocked, for a later Jester.
func (e *Enemy) BlockSpades(n int) {
	if n > 0 {
		e.PendingSpadeValue += n
	}
}

// CancelImmunity applies a Jester: immunity is lifted for the rest of the
// encounter and blocked Spades join the shield. It returns the retroactive
// amount; a second call returns zero.
func (e *Enemy) CancelImmunity() int {
	e.ImmunityCancelled = true
	retro := e.PendingSpadeValue
	e.PendingSpadeValue = 0
	e.Shield += retro
	return retro
}
