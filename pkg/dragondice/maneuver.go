package dragondice

import "fmt"

// ManeuverStep is the input the pending maneuver is waiting for. There is
// no "idle" step: an idle engine has no Maneuver value at all.
type ManeuverStep string

const (
	ManeuverAwaitingDecisions ManeuverStep = "AWAITING_COUNTER_DECISIONS"
	ManeuverAwaitingRolls     ManeuverStep = "AWAITING_MANEUVER_ROLLS"
	ManeuverAwaitingDirection ManeuverStep = "AWAITING_DIRECTION_CHOICE"
)

// OpposingArmy identifies one army that may counter-maneuver.
type OpposingArmy struct {
	Player string `json:"player"`
	ArmyID string `json:"army_id"`
	Name   string `json:"name"`
}

// Maneuver is the state of one maneuver negotiation in progress. Exactly
// one may exist at a time; its step says which input comes next, and every
// transition method rejects input belonging to a different step.
type Maneuver struct {
	Step      ManeuverStep
	Player    string // maneuvering player
	ArmyID    string
	Location  string
	Opposing  []OpposingArmy
	Decisions map[string]bool // opposing player -> wants to counter-maneuver
}

// NewManeuver opens a maneuver negotiation. With no opposing armies the
// maneuver succeeds automatically and skips straight to the direction
// choice; otherwise each distinct opposing player owes a counter decision.
func NewManeuver(player, armyID, location string, opposing []OpposingArmy) *Maneuver {
	m := &Maneuver{
		Player:   player,
		ArmyID:   armyID,
		Location: location,
		Opposing: opposing,
	}
	if len(opposing) == 0 {
		m.Step = ManeuverAwaitingDirection
	} else {
		m.Step = ManeuverAwaitingDecisions
		m.Decisions = make(map[string]bool, len(opposing))
	}
	return m
}

// OpposingPlayers returns the distinct players with armies at the contested
// terrain, in discovery order.
func (m *Maneuver) OpposingPlayers() []string {
	var out []string
	seen := map[string]bool{}
	for _, oa := range m.Opposing {
		if !seen[oa.Player] {
			seen[oa.Player] = true
			out = append(out, oa.Player)
		}
	}
	return out
}

// RecordDecision stores one opposing player's counter-maneuver decision.
// A repeated decision from the same player overwrites the earlier one.
func (m *Maneuver) RecordDecision(player string, counter bool) error {
	if m.Step != ManeuverAwaitingDecisions {
		return &ManeuverInputError{Step: m.Step, Reason: "not awaiting counter decisions"}
	}
	found := false
	for _, op := range m.OpposingPlayers() {
		if op == player {
			found = true
			break
		}
	}
	if !found {
		return &ManeuverInputError{Step: m.Step, Reason: fmt.Sprintf("%s has no army at %s to counter with", player, m.Location)}
	}
	m.Decisions[player] = counter
	return nil
}

// AllDecided reports whether every distinct opposing player has responded.
func (m *Maneuver) AllDecided() bool {
	for _, op := range m.OpposingPlayers() {
		if _, ok := m.Decisions[op]; !ok {
			return false
		}
	}
	return true
}

// ResolveDecisions moves past the decision step once every opposing player
// has answered. If nobody counters the maneuver succeeds automatically and
// the step becomes the direction choice; if anyone counters both sides owe
// simultaneous rolls. Returns true when rolls are required.
func (m *Maneuver) ResolveDecisions() (bool, error) {
	if m.Step != ManeuverAwaitingDecisions {
		return false, &ManeuverInputError{Step: m.Step, Reason: "not awaiting counter decisions"}
	}
	if !m.AllDecided() {
		return false, &ManeuverInputError{Step: m.Step, Reason: "still waiting on counter decisions"}
	}
	for _, counter := range m.Decisions {
		if counter {
			m.Step = ManeuverAwaitingRolls
			return true, nil
		}
	}
	m.Step = ManeuverAwaitingDirection
	return false, nil
}

// ResolveRolls settles the simultaneous maneuver rolls. The maneuvering
// side wins ties: it succeeds when its total meets or beats the counter
// total. On success the step becomes the direction choice; on failure the
// maneuver is over and the caller discards it.
func (m *Maneuver) ResolveRolls(maneuverTotal, counterTotal int) (bool, error) {
	if m.Step != ManeuverAwaitingRolls {
		return false, &ManeuverInputError{Step: m.Step, Reason: "not awaiting rolls"}
	}
	if maneuverTotal >= counterTotal {
		m.Step = ManeuverAwaitingDirection
		return true, nil
	}
	return false, nil
}
