package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/peterkuimelis/regicide/internal/log"
)

// EngineConfig holds configuration for creating a new game.
type EngineConfig struct {
	Rules  Rules
	Logger log.EventLogger
	Seed   uint64 // RNG seed (0 for random)
}

// Selection is a validated, not yet committed choice of hand cards.
type Selection struct {
	Player  int
	Indices []int
	Cards   []Card
}

// Value returns the summed value of the selected cards.
func (s Selection) Value() int {
	return TotalValue(s.Cards)
}

// Engine is the turn state machine. It owns the only TurnState and every
// mutation goes through its action methods. An Engine is not safe for
// concurrent use; hosts serialize calls per game.
type Engine struct {
	state  *TurnState
	rules  Rules
	logger log.EventLogger
	rng    *rand.Rand
}

// NewEngine builds the decks, deals every hand and reveals the first enemy.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	rules := cfg.Rules
	if rules.Players == 0 {
		rules = SoloRules()
	}
	if rules.Enemies == nil {
		rules.Enemies = DefaultEnemyTable()
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	rng := NewRand(cfg.Seed)
	st := &TurnState{
		Phase:         PhaseInput,
		Turn:          1,
		Tavern:        NewTavernDeck(rules.TavernJesters, rng),
		TavernDiscard: NewDeck(),
		Castle:        NewCastleDeck(rng),
		CastleDiscard: NewDeck(),
		Played:        NewDeck(),
	}
	for i := 0; i < rules.Players; i++ {
		st.Players = append(st.Players, &Player{
			MaxHand:       rules.MaxHandSize,
			JesterCharges: rules.JesterCharges,
		})
	}

	e := newEngine(st, rules, cfg.Logger, rng)
	for _, p := range st.Players {
		e.drawInto(p, p.MaxHand, nil)
	}
	if !e.revealNextEnemy(nil) {
		return nil, fmt.Errorf("castle deck is empty")
	}
	e.log(log.NewTurnEvent(st.Turn, st.Active))
	return e, nil
}

func newEngine(st *TurnState, rules Rules, logger log.EventLogger, rng *rand.Rand) *Engine {
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	if rules.LogTail == 0 {
		rules.LogTail = DefaultLogTail
	}
	return &Engine{state: st, rules: rules, logger: logger, rng: rng}
}

// Rules returns the rules the game was created with.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// Over reports whether the game reached Victory or Defeat.
func (e *Engine) Over() bool {
	return e.state.Phase.Terminal()
}

// Events returns every logged event.
func (e *Engine) Events() []log.GameEvent {
	return e.logger.Events()
}

func (e *Engine) log(ev log.GameEvent) {
	e.logger.Log(ev)
}

// --- Selection (the only undo surface) ---

// ProposeSelection validates hand indices for the active player without
// changing any state.
func (e *Engine) ProposeSelection(indices []int) (Selection, error) {
	st := e.state
	if st.Phase.Terminal() {
		return Selection{}, ruleErrorf(CodeGameOver, "the game is over")
	}
	p := st.ActivePlayer()
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(p.Hand) {
			return Selection{}, ruleErrorf(CodeInvalidSelection, "card %d is not in hand (hand has %d)", i, len(p.Hand))
		}
		if seen[i] {
			return Selection{}, ruleErrorf(CodeInvalidSelection, "card %d selected twice", i)
		}
		seen[i] = true
	}
	idx := append([]int(nil), indices...)
	return Selection{Player: st.Active, Indices: idx, Cards: p.CardsAt(idx)}, nil
}

// ToggleSelection adds or removes a hand index from the pending selection.
func (e *Engine) ToggleSelection(index int) error {
	st := e.state
	if st.Phase.Terminal() {
		return ruleErrorf(CodeGameOver, "the game is over")
	}
	if index < 0 || index >= len(st.ActivePlayer().Hand) {
		return ruleErrorf(CodeInvalidSelection, "card %d is not in hand", index)
	}
	for i, sel := range st.Selected {
		if sel == index {
			st.Selected = append(st.Selected[:i], st.Selected[i+1:]...)
			return nil
		}
	}
	st.Selected = append(st.Selected, index)
	return nil
}

// ClearSelection drops the pending selection.
func (e *Engine) ClearSelection() {
	e.state.Selected = nil
}

// Selected returns the pending selection as a proposal.
func (e *Engine) Selected() (Selection, error) {
	return e.ProposeSelection(e.state.Selected)
}

// checkSelection re-validates a selection against the current hand so a stale
// proposal cannot commit different cards.
func (e *Engine) checkSelection(sel Selection) error {
	st := e.state
	if sel.Player != st.Active {
		return ruleErrorf(CodeInvalidSelection, "selection belongs to P%d, P%d is acting", sel.Player+1, st.Active+1)
	}
	fresh, err := e.ProposeSelection(sel.Indices)
	if err != nil {
		return err
	}
	if len(fresh.Cards) != len(sel.Cards) {
		return ruleErrorf(CodeInvalidSelection, "selection is out of date")
	}
	for i := range fresh.Cards {
		if fresh.Cards[i] != sel.Cards[i] {
			return ruleErrorf(CodeInvalidSelection, "selection is out of date")
		}
	}
	return nil
}

func (e *Engine) requirePhase(want ...Phase) error {
	st := e.state
	if st.Phase.Terminal() {
		return ruleErrorf(CodeGameOver, "the game is over (%s)", st.Phase)
	}
	for _, p := range want {
		if st.Phase == p {
			return nil
		}
	}
	return ruleErrorf(CodeWrongPhase, "not allowed during %s", st.Phase)
}

// --- Step 1-3: play ---

// CommitPlay plays the selected cards: Input → Resolution → Victory Check and,
// if the enemy survives and no Jester was played, Enemy Attack.
func (e *Engine) CommitPlay(sel Selection) (TurnEvent, error) {
	if err := e.requirePhase(PhaseInput); err != nil {
		return TurnEvent{}, err
	}
	if err := e.checkSelection(sel); err != nil {
		return TurnEvent{}, err
	}
	combo, err := ValidatePlay(sel.Cards)
	if err != nil {
		return TurnEvent{}, err
	}

	st := e.state
	ev := e.begin(ActionPlay)
	ev.Combo = combo

	cards := st.ActivePlayer().RemoveIndices(sel.Indices)
	st.Played.PushBottom(cards...)
	st.Selected = nil
	st.ConsecutiveYields = 0
	st.AwaitingNomination = false
	st.JesterPlayed = false
	ev.Cards = cards
	ev.Attack = TotalValue(cards)
	ev.move(cards, PileHand, PilePlayed)
	e.log(log.NewPlayEvent(st.Turn, st.Active, CardNames(cards), ev.Attack))

	if combo == ComboJester {
		e.resolveJester(&ev)
	} else {
		e.resolvePlay(cards, &ev)
	}
	return e.finish(ev), nil
}

func (e *Engine) resolvePlay(cards []Card, ev *TurnEvent) {
	st := e.state
	e.enter(PhaseResolution, ev)
	damage := e.applyPowers(cards, ev)
	ev.Damage = damage
	ev.Shield = st.Enemy.Shield

	e.enter(PhaseVictoryCheck, ev)
	enemy := st.Enemy
	remaining := enemy.TakeDamage(damage)
	e.log(log.NewDamageEvent(st.Turn, st.Active, enemy.Name(), damage, enemy.CurrentHP))

	switch {
	case remaining == 0:
		e.defeatEnemy(OutcomeCaptured, 0, ev)
	case remaining < 0:
		e.defeatEnemy(OutcomeOverkill, -remaining, ev)
	default:
		e.enemySurvived(ev)
	}
}

// enemySurvived routes out of Victory Check: straight back to Input after a
// Jester, otherwise to the enemy attack.
func (e *Engine) enemySurvived(ev *TurnEvent) {
	st := e.state
	ev.Outcome = OutcomeSurvived
	if st.JesterPlayed {
		e.startTurn(st.Active, ev)
		if len(st.Players) > 1 && !st.Phase.Terminal() {
			st.AwaitingNomination = true
		}
		return
	}
	e.beginEnemyAttack(ev)
}

// resolveJester cancels immunity, applies blocked Spades once, and returns to
// Input without an enemy attack.
func (e *Engine) resolveJester(ev *TurnEvent) {
	st := e.state
	e.enter(PhaseResolution, ev)
	enemy := st.Enemy
	e.log(log.NewJesterPlayedEvent(st.Turn, st.Active, enemy.Name()))

	retro := enemy.CancelImmunity()
	e.log(log.NewImmunityCancelledEvent(st.Turn, st.Active, enemy.Name(), enemy.Suit().String()))
	ev.RetroShield = retro
	ev.Shield = enemy.Shield
	if retro > 0 {
		ev.Powers = append(ev.Powers, PowerResult{Suit: Spades, Amount: retro})
		e.log(log.NewShieldEvent(st.Turn, st.Active, retro, enemy.Shield, true))
	}
	st.JesterPlayed = true

	e.enter(PhaseVictoryCheck, ev)
	e.enemySurvived(ev)
}

// defeatEnemy moves the enemy and the cards played against it, then reveals
// the next castle card. The acting player starts the next turn.
func (e *Engine) defeatEnemy(outcome Outcome, overkill int, ev *TurnEvent) {
	st := e.state
	enemy := st.Enemy
	ev.Outcome = outcome

	if outcome == OutcomeCaptured {
		st.Tavern.PushTop(enemy.Card)
		st.Captured++
		ev.move([]Card{enemy.Card}, PileEnemy, PileTavern)
		e.log(log.NewCaptureEvent(st.Turn, st.Active, enemy.Name()))
	} else {
		st.CastleDiscard.PushBottom(enemy.Card)
		ev.move([]Card{enemy.Card}, PileEnemy, PileCastleDiscard)
		e.log(log.NewEnemyDefeatedEvent(st.Turn, st.Active, enemy.Name(), overkill))
	}

	played := st.Played.TakeAll()
	st.TavernDiscard.PushBottom(played...)
	ev.move(played, PilePlayed, PileTavernDiscard)
	st.Enemy = nil

	if !e.revealNextEnemy(ev) {
		e.victory(ev)
		return
	}
	e.startTurn(st.Active, ev)
}

// revealNextEnemy draws the next castle card. It returns false when the
// castle is exhausted.
func (e *Engine) revealNextEnemy(ev *TurnEvent) bool {
	st := e.state
	card, ok := st.Castle.Draw()
	if !ok {
		return false
	}
	st.Enemy = NewEnemy(card, e.rules.Enemies)
	if ev != nil {
		ev.NextEnemy = st.Enemy.Name()
		ev.move([]Card{card}, PileCastle, PileEnemy)
	}
	e.log(log.NewEnemyRevealedEvent(st.Turn, st.Enemy.Name(), st.Enemy.MaxHP, st.Enemy.BaseAttack, st.Castle.Len()))
	return true
}

// --- Step 4: enemy attack ---

func (e *Engine) beginEnemyAttack(ev *TurnEvent) {
	st := e.state
	e.enter(PhaseEnemyAttack, ev)
	attack := st.Enemy.EffectiveAttack()
	st.PendingAttack = attack
	ev.EnemyAttack = attack
	e.log(log.NewEnemyAttackEvent(st.Turn, st.Active, st.Enemy.Name(), attack))

	if attack == 0 {
		e.startTurn(st.NextPlayer(), ev)
		return
	}
	e.checkSurvival(ev)
}

// checkSurvival ends the game when the active hand cannot cover the attack
// and no Jester charge is left.
func (e *Engine) checkSurvival(ev *TurnEvent) {
	st := e.state
	p := st.ActivePlayer()
	if p.HandValue() < st.PendingAttack && p.JesterCharges == 0 {
		e.defeat(fmt.Sprintf("cannot survive an attack of %d (hand worth %d)", st.PendingAttack, p.HandValue()), ev)
	}
}

// CommitDiscard pays for the enemy attack with the selected cards and passes
// the turn.
func (e *Engine) CommitDiscard(sel Selection) (TurnEvent, error) {
	if err := e.requirePhase(PhaseEnemyAttack); err != nil {
		return TurnEvent{}, err
	}
	if err := e.checkSelection(sel); err != nil {
		return TurnEvent{}, err
	}
	st := e.state
	if len(sel.Cards) == 0 || sel.Value() < st.PendingAttack {
		return TurnEvent{}, ruleErrorf(CodeIllegalDiscard, "need %d, selected %d", st.PendingAttack, sel.Value())
	}

	ev := e.begin(ActionDiscard)
	ev.EnemyAttack = st.PendingAttack
	cards := st.ActivePlayer().RemoveIndices(sel.Indices)
	st.TavernDiscard.PushBottom(cards...)
	st.Selected = nil
	ev.Cards = cards
	ev.move(cards, PileHand, PileTavernDiscard)
	e.log(log.NewDiscardEvent(st.Turn, st.Active, CardNames(cards), TotalValue(cards)))

	st.PendingAttack = 0
	e.startTurn(st.NextPlayer(), &ev)
	return e.finish(ev), nil
}

// --- Solo Jester power ---

// UseJester spends a solo Jester charge: the hand is discarded and refilled to
// the maximum. Allowed during Input and Enemy Attack. The refill is not a
// Diamonds draw.
func (e *Engine) UseJester() (TurnEvent, error) {
	if err := e.requirePhase(PhaseInput, PhaseEnemyAttack); err != nil {
		return TurnEvent{}, err
	}
	st := e.state
	p := st.ActivePlayer()
	if p.JesterCharges == 0 {
		return TurnEvent{}, ruleErrorf(CodeNoJesterCharge, "no Jester charges remaining")
	}

	ev := e.begin(ActionJesterPower)
	discarded := p.TakeHand()
	st.TavernDiscard.PushBottom(discarded...)
	ev.move(discarded, PileHand, PileTavernDiscard)

	before := len(p.Hand)
	e.drawInto(p, p.Room(), &ev)
	ev.move(p.Hand[before:], PileTavern, PileHand)

	p.JesterCharges--
	p.JestersUsed++
	st.Selected = nil
	e.log(log.NewJesterPowerEvent(st.Turn, st.Phase.String(), st.Active, len(discarded), p.JesterCharges))

	if st.Phase == PhaseEnemyAttack {
		ev.EnemyAttack = st.PendingAttack
		e.checkSurvival(&ev)
	}
	return e.finish(ev), nil
}

// --- Yield ---

// CanYield reports whether the active player may yield. With several players
// a yield is refused when the previous actor also yielded and nobody has
// played since. A solo player may always yield, so a solo game with an empty
// hand, no Jester charges and a shield covering the attack never ends.
func (e *Engine) CanYield() bool {
	st := e.state
	if st.Phase != PhaseInput {
		return false
	}
	return len(st.Players) == 1 || st.ConsecutiveYields == 0
}

// YieldTurn skips Steps 1-3 and goes straight to the enemy attack.
func (e *Engine) YieldTurn() (TurnEvent, error) {
	if err := e.requirePhase(PhaseInput); err != nil {
		return TurnEvent{}, err
	}
	if !e.CanYield() {
		return TurnEvent{}, ruleErrorf(CodeCannotYield, "the previous player yielded and nobody has played since")
	}
	st := e.state
	ev := e.begin(ActionYield)
	st.ConsecutiveYields++
	st.Selected = nil
	st.AwaitingNomination = false
	st.JesterPlayed = false
	e.log(log.NewYieldEvent(st.Turn, st.Active))

	ev.Enemy = st.Enemy.Name()
	ev.Outcome = OutcomeSurvived
	e.beginEnemyAttack(&ev)
	return e.finish(ev), nil
}

// --- Jester nomination ---

// NominateNext picks who acts after a Jester was played. Only meaningful with
// more than one player; the acting player continues if nobody is nominated.
func (e *Engine) NominateNext(player int) (TurnEvent, error) {
	if err := e.requirePhase(PhaseInput); err != nil {
		return TurnEvent{}, err
	}
	st := e.state
	if !st.AwaitingNomination {
		return TurnEvent{}, ruleErrorf(CodeInvalidNomination, "no Jester was just played")
	}
	if player < 0 || player >= len(st.Players) {
		return TurnEvent{}, ruleErrorf(CodeInvalidNomination, "no player %d", player+1)
	}

	ev := e.begin(ActionNominate)
	e.log(log.NewNominateEvent(st.Turn, st.Active, player))
	st.AwaitingNomination = false
	st.Selected = nil
	st.Active = player
	e.checkInputDefeat(&ev)
	return e.finish(ev), nil
}

// --- Transitions ---

func (e *Engine) begin(action Action) TurnEvent {
	st := e.state
	ev := TurnEvent{Action: action, Player: st.Active, From: st.Phase}
	if st.Enemy != nil {
		ev.Enemy = st.Enemy.Name()
	}
	return ev
}

func (e *Engine) finish(ev TurnEvent) TurnEvent {
	st := e.state
	ev.To = st.Phase
	if st.Enemy != nil && ev.Outcome == OutcomeSurvived {
		ev.Shield = st.Enemy.Shield
	}
	ev.Ranking = st.Ranking
	ev.Result = st.Result
	return ev
}

func (e *Engine) enter(p Phase, ev *TurnEvent) {
	st := e.state
	st.Phase = p
	if ev != nil {
		ev.Phases = append(ev.Phases, p)
	}
	e.log(log.NewPhaseChangeEvent(st.Turn, p.String()))
}

// startTurn begins the next Step 1 for the given player.
func (e *Engine) startTurn(player int, ev *TurnEvent) {
	st := e.state
	st.Turn++
	st.Active = player
	st.PendingAttack = 0
	e.enter(PhaseInput, ev)
	e.log(log.NewTurnEvent(st.Turn, st.Active))
	e.checkInputDefeat(ev)
}

// checkInputDefeat ends the game when the acting player can neither play nor
// yield.
func (e *Engine) checkInputDefeat(ev *TurnEvent) {
	st := e.state
	if len(st.ActivePlayer().Hand) == 0 && !e.CanYield() {
		e.defeat("no card to play and yielding is not allowed", ev)
	}
}

func (e *Engine) victory(ev *TurnEvent) {
	st := e.state
	if len(st.Players) == 1 {
		st.Ranking = RankingFor(st.Players[0].JestersUsed)
	}
	st.Result = "Victory! All enemies have been defeated"
	e.enter(PhaseVictory, ev)
	e.log(log.NewVictoryEvent(st.Turn, st.Ranking.String()))
}

func (e *Engine) defeat(reason string, ev *TurnEvent) {
	st := e.state
	st.Result = "Defeat: " + reason
	e.enter(PhaseDefeat, ev)
	e.log(log.NewDefeatEvent(st.Turn, st.Active, reason))
}
