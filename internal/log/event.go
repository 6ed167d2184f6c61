package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventEnemyRevealed
	EventPlay
	EventPowerApplied
	EventPowerBlocked
	EventHeal
	EventDraw
	EventShield
	EventDamage
	EventCapture
	EventEnemyDefeated
	EventEnemyAttack
	EventDiscard
	EventJesterPlayed
	EventImmunityCancelled
	EventJesterPower
	EventYield
	EventNominate
	EventShuffle
	EventVictory
	EventDefeat
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventEnemyRevealed:
		return "EnemyRevealed"
	case EventPlay:
		return "Play"
	case EventPowerApplied:
		return "PowerApplied"
	case EventPowerBlocked:
		return "PowerBlocked"
	case EventHeal:
		return "Heal"
	case EventDraw:
		return "Draw"
	case EventShield:
		return "Shield"
	case EventDamage:
		return "Damage"
	case EventCapture:
		return "Capture"
	case EventEnemyDefeated:
		return "EnemyDefeated"
	case EventEnemyAttack:
		return "EnemyAttack"
	case EventDiscard:
		return "Discard"
	case EventJesterPlayed:
		return "JesterPlayed"
	case EventImmunityCancelled:
		return "ImmunityCancelled"
	case EventJesterPower:
		return "JesterPower"
	case EventYield:
		return "Yield"
	case EventNominate:
		return "Nominate"
	case EventShuffle:
		return "Shuffle"
	case EventVictory:
		return "Victory"
	case EventDefeat:
		return "Defeat"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "Resolution")
	Player  int       // acting player (0-based)
	Type    EventType // event type
	Card    string    // card or enemy name (if applicable)
	Amount  int       // numeric payload: damage, shield, cards moved
	Details string    // human-readable detail string
}
