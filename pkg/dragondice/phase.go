package dragondice

import "strings"

// TurnPhase represents one of the seven phases of a player's turn.
type TurnPhase string

const (
	PhaseExpireEffects    TurnPhase = "EXPIRE_EFFECTS"
	PhaseEighthFace       TurnPhase = "EIGHTH_FACE"
	PhaseDragonAttack     TurnPhase = "DRAGON_ATTACK"
	PhaseSpeciesAbilities TurnPhase = "SPECIES_ABILITIES"
	PhaseFirstMarch       TurnPhase = "FIRST_MARCH"
	PhaseSecondMarch      TurnPhase = "SECOND_MARCH"
	PhaseReserves         TurnPhase = "RESERVES"
)

// TurnPhases returns the seven phases in turn order.
func TurnPhases() []TurnPhase {
	return []TurnPhase{
		PhaseExpireEffects,
		PhaseEighthFace,
		PhaseDragonAttack,
		PhaseSpeciesAbilities,
		PhaseFirstMarch,
		PhaseSecondMarch,
		PhaseReserves,
	}
}

// IsMarch returns true for the two march phases.
func (p TurnPhase) IsMarch() bool {
	return p == PhaseFirstMarch || p == PhaseSecondMarch
}

// MarchStep represents the step within a march phase.
type MarchStep string

const (
	StepNone                  MarchStep = ""
	StepChooseActingArmy      MarchStep = "CHOOSE_ACTING_ARMY"
	StepDecideManeuver        MarchStep = "DECIDE_MANEUVER"
	StepAwaitingManeuverInput MarchStep = "AWAITING_MANEUVER_INPUT"
	StepDecideAction          MarchStep = "DECIDE_ACTION"
	StepSelectAction          MarchStep = "SELECT_ACTION"
)

// ActionStep represents the roll the engine is waiting for during an action.
type ActionStep string

const (
	ActionStepNone               ActionStep = ""
	StepAwaitingMeleeRoll        ActionStep = "AWAITING_ATTACKER_MELEE_ROLL"
	StepAwaitingDefenderSaves    ActionStep = "AWAITING_DEFENDER_SAVES"
	StepAwaitingMissileRoll      ActionStep = "AWAITING_ATTACKER_MISSILE_ROLL"
	StepAwaitingMagicRoll        ActionStep = "AWAITING_MAGIC_ROLL"
	StepAwaitingDamageAllocation ActionStep = "AWAITING_DAMAGE_ALLOCATION"
)

// TurnState tracks whose turn it is and where in the phase structure the
// game currently sits. It is the single source of truth for phase position;
// nothing else caches a copy of it.
type TurnState struct {
	PlayerIdx  int
	Phase      TurnPhase
	MarchStep  MarchStep
	ActionStep ActionStep
	ActingArmy string // army identifier for the march in progress
	FirstTurn  bool
}

// NewTurnState starts the game at the first phase of the given player.
func NewTurnState(firstPlayerIdx int) TurnState {
	return TurnState{
		PlayerIdx: firstPlayerIdx,
		Phase:     PhaseExpireEffects,
		FirstTurn: true,
	}
}

// AdvancePhase moves to the next phase, rotating to the next player after
// Reserves. Entering a march phase resets the march step to choosing the
// acting army. Returns true if the turn passed to a new player.
func (ts *TurnState) AdvancePhase(playerCount int) bool {
	phases := TurnPhases()
	idx := 0
	for i, p := range phases {
		if p == ts.Phase {
			idx = i
			break
		}
	}
	ts.MarchStep = StepNone
	ts.ActionStep = ActionStepNone
	ts.ActingArmy = ""

	if idx == len(phases)-1 {
		ts.PlayerIdx = (ts.PlayerIdx + 1) % playerCount
		ts.Phase = phases[0]
		ts.FirstTurn = false
		return true
	}
	ts.Phase = phases[idx+1]
	if ts.Phase.IsMarch() {
		ts.MarchStep = StepChooseActingArmy
	}
	return false
}

// SkipToNextPhaseGroup jumps over the remainder of the current phase group:
// First March skips to Second March, Second March to Reserves. For any
// other phase it behaves like AdvancePhase. Returns true if the player
// rotated.
func (ts *TurnState) SkipToNextPhaseGroup(playerCount int) bool {
	switch ts.Phase {
	case PhaseFirstMarch:
		ts.Phase = PhaseSecondMarch
		ts.MarchStep = StepChooseActingArmy
		ts.ActionStep = ActionStepNone
		ts.ActingArmy = ""
		return false
	case PhaseSecondMarch:
		ts.Phase = PhaseReserves
		ts.MarchStep = StepNone
		ts.ActionStep = ActionStepNone
		ts.ActingArmy = ""
		return false
	}
	return ts.AdvancePhase(playerCount)
}

// Display returns a human-readable phase string including the march and
// action sub-steps, e.g. "First March - Select Action".
func (ts TurnState) Display() string {
	out := titleize(string(ts.Phase))
	if ts.MarchStep != StepNone {
		out += " - " + titleize(string(ts.MarchStep))
	}
	if ts.ActionStep != ActionStepNone {
		out += " - " + titleize(string(ts.ActionStep))
	}
	return out
}

func titleize(s string) string {
	words := strings.Split(strings.ToLower(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
