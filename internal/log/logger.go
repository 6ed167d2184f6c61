package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- MultiLogger: fans events out to several sinks ---

// MultiLogger records events itself and forwards each one to every sink.
type MultiLogger struct {
	MemoryLogger
	sinks []EventLogger
}

func NewMultiLogger(sinks ...EventLogger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

func (l *MultiLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	for _, s := range l.sinks {
		s.Log(event)
	}
}

// Tail returns the last n events (or all of them when fewer exist).
func Tail(events []GameEvent, n int) []GameEvent {
	if n <= 0 || len(events) == 0 {
		return nil
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}
	out := make([]GameEvent, len(events))
	copy(out, events)
	return out
}

// --- Formatting ---

// playerName returns "P1", "P2", ... for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewTurnEvent(turn int, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Input",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, playerName(player)),
	}
}

func NewEnemyRevealedEvent(turn int, enemy string, hp, atk, remaining int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Victory Check",
		Type:    EventEnemyRevealed,
		Card:    enemy,
		Amount:  hp,
		Details: fmt.Sprintf("%s appears (HP %d, ATK %d, %d left in castle)", enemy, hp, atk, remaining),
	}
}

func NewPlayEvent(turn int, player int, cards []string, attack int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Input",
		Player:  player,
		Type:    EventPlay,
		Card:    strings.Join(cards, " "),
		Amount:  attack,
		Details: fmt.Sprintf("%s plays %s (attack %d)", playerName(player), strings.Join(cards, ", "), attack),
	}
}

func NewPowerBlockedEvent(turn int, player int, suit string, enemy string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventPowerBlocked,
		Card:    enemy,
		Details: fmt.Sprintf("%s power blocked by %s immunity", suit, enemy),
	}
}

func NewHealEvent(turn int, player int, moved int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventHeal,
		Amount:  moved,
		Details: fmt.Sprintf("Hearts: %d card(s) from discard to bottom of tavern", moved),
	}
}

func NewDrawEvent(turn int, phase string, player int, drawn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Amount:  drawn,
		Details: fmt.Sprintf("%s draws %d card(s)", playerName(player), drawn),
	}
}

func NewClubsEvent(turn int, player int, attack int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventPowerApplied,
		Amount:  attack * 2,
		Details: fmt.Sprintf("Clubs: double damage (%d → %d)", attack, attack*2),
	}
}

func NewShieldEvent(turn int, player int, added int, total int, retroactive bool) GameEvent {
	details := fmt.Sprintf("Spades: shield +%d (total %d)", added, total)
	if retroactive {
		details = fmt.Sprintf("Spades now active: shield +%d retroactively (total %d)", added, total)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventShield,
		Amount:  total,
		Details: details,
	}
}

func NewDamageEvent(turn int, player int, enemy string, damage int, hpLeft int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Victory Check",
		Player:  player,
		Type:    EventDamage,
		Card:    enemy,
		Amount:  damage,
		Details: fmt.Sprintf("%s takes %d damage (HP %d)", enemy, damage, hpLeft),
	}
}

func NewCaptureEvent(turn int, player int, enemy string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Victory Check",
		Player:  player,
		Type:    EventCapture,
		Card:    enemy,
		Details: fmt.Sprintf("Exact damage! %s captured to top of tavern", enemy),
	}
}

func NewEnemyDefeatedEvent(turn int, player int, enemy string, overkill int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Victory Check",
		Player:  player,
		Type:    EventEnemyDefeated,
		Card:    enemy,
		Amount:  overkill,
		Details: fmt.Sprintf("%s defeated (overkill %d)", enemy, overkill),
	}
}

func NewEnemyAttackEvent(turn int, player int, enemy string, attack int) GameEvent {
	details := fmt.Sprintf("%s attacks for %d", enemy, attack)
	if attack == 0 {
		details = fmt.Sprintf("%s attack fully blocked by shield", enemy)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   "Enemy Attack",
		Player:  player,
		Type:    EventEnemyAttack,
		Card:    enemy,
		Amount:  attack,
		Details: details,
	}
}

func NewDiscardEvent(turn int, player int, cards []string, value int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Enemy Attack",
		Player:  player,
		Type:    EventDiscard,
		Card:    strings.Join(cards, " "),
		Amount:  value,
		Details: fmt.Sprintf("%s discards %s (value %d)", playerName(player), strings.Join(cards, ", "), value),
	}
}

func NewJesterPlayedEvent(turn int, player int, enemy string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventJesterPlayed,
		Card:    enemy,
		Details: fmt.Sprintf("%s plays the Jester: %s loses its immunity", playerName(player), enemy),
	}
}

func NewImmunityCancelledEvent(turn int, player int, enemy string, suit string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Resolution",
		Player:  player,
		Type:    EventImmunityCancelled,
		Card:    enemy,
		Details: fmt.Sprintf("%s powers now work against %s", suit, enemy),
	}
}

func NewJesterPowerEvent(turn int, phase string, player int, discarded int, remaining int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventJesterPower,
		Amount:  discarded,
		Details: fmt.Sprintf("Jester power: discarded %d card(s) and drew a fresh hand (%d left)", discarded, remaining),
	}
}

func NewYieldEvent(turn int, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Input",
		Player:  player,
		Type:    EventYield,
		Details: fmt.Sprintf("%s yields", playerName(player)),
	}
}

func NewNominateEvent(turn int, player int, next int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Input",
		Player:  player,
		Type:    EventNominate,
		Details: fmt.Sprintf("%s chooses %s to act next", playerName(player), playerName(next)),
	}
}

func NewShuffleEvent(turn int, phase string, pile string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventShuffle,
		Amount:  count,
		Details: fmt.Sprintf("%d card(s) from %s shuffled back into the tavern", count, pile),
	}
}

func NewVictoryEvent(turn int, ranking string) GameEvent {
	details := "Victory! All enemies have been defeated"
	if ranking != "" {
		details = fmt.Sprintf("%s (%s victory)", details, ranking)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   "Victory",
		Type:    EventVictory,
		Details: details,
	}
}

func NewDefeatEvent(turn int, player int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Defeat",
		Player:  player,
		Type:    EventDefeat,
		Details: fmt.Sprintf("Defeat: %s", reason),
	}
}
