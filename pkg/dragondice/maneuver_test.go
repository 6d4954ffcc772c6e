package dragondice

import "testing"

func opposing(players ...string) []OpposingArmy {
	var out []OpposingArmy
	for _, p := range players {
		out = append(out, OpposingArmy{Player: p, ArmyID: ArmyID(p, ArmyHome), Name: "Home Army"})
	}
	return out
}

func TestManeuverAutoSuccessWithNoOpposition(t *testing.T) {
	m := NewManeuver("Alice", "Alice_home", "Alice Coastland City", nil)
	if m.Step != ManeuverAwaitingDirection {
		t.Errorf("unopposed maneuver should await direction, got %s", m.Step)
	}
}

func TestManeuverAllDeclineIsAutoSuccess(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob", "Carol"))
	if m.Step != ManeuverAwaitingDecisions {
		t.Fatalf("expected decision step, got %s", m.Step)
	}

	if _, err := m.ResolveDecisions(); err == nil {
		t.Error("resolve should fail before all players decide")
	}
	if err := m.RecordDecision("Bob", false); err != nil {
		t.Fatal(err)
	}
	if m.AllDecided() {
		t.Error("Carol has not decided yet")
	}
	if err := m.RecordDecision("Carol", false); err != nil {
		t.Fatal(err)
	}

	rolls, err := m.ResolveDecisions()
	if err != nil {
		t.Fatal(err)
	}
	if rolls {
		t.Error("no counters should mean no rolls")
	}
	if m.Step != ManeuverAwaitingDirection {
		t.Errorf("expected direction step, got %s", m.Step)
	}
}

func TestManeuverCounterForcesRolls(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob"))
	if err := m.RecordDecision("Bob", true); err != nil {
		t.Fatal(err)
	}
	rolls, err := m.ResolveDecisions()
	if err != nil {
		t.Fatal(err)
	}
	if !rolls {
		t.Fatal("a counter should force simultaneous rolls")
	}
	if m.Step != ManeuverAwaitingRolls {
		t.Fatalf("expected roll step, got %s", m.Step)
	}
}

func TestManeuverTieGoesToManeuveringPlayer(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob"))
	m.RecordDecision("Bob", true)
	m.ResolveDecisions()

	ok, err := m.ResolveRolls(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("tie should go to the maneuvering player")
	}
	if m.Step != ManeuverAwaitingDirection {
		t.Errorf("expected direction step after win, got %s", m.Step)
	}
}

func TestManeuverRollLoss(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob"))
	m.RecordDecision("Bob", true)
	m.ResolveDecisions()

	ok, err := m.ResolveRolls(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("2 vs 3 should fail")
	}
}

func TestManeuverDecisionPerDistinctPlayer(t *testing.T) {
	// Bob has two armies at the terrain but owes a single decision.
	opp := []OpposingArmy{
		{Player: "Bob", ArmyID: "Bob_home", Name: "Home Army"},
		{Player: "Bob", ArmyID: "Bob_campaign", Name: "Campaign Army"},
	}
	m := NewManeuver("Alice", "Alice_horde", "Bob Highland Tower", opp)
	if got := m.OpposingPlayers(); len(got) != 1 {
		t.Fatalf("expected one distinct opposing player, got %v", got)
	}
	if err := m.RecordDecision("Bob", false); err != nil {
		t.Fatal(err)
	}
	if !m.AllDecided() {
		t.Error("single decision should cover both of Bob's armies")
	}
}

func TestManeuverDuplicateDecisionOverwrites(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob"))
	m.RecordDecision("Bob", true)
	m.RecordDecision("Bob", false)

	rolls, err := m.ResolveDecisions()
	if err != nil {
		t.Fatal(err)
	}
	if rolls {
		t.Error("latest decision should win")
	}
}

func TestManeuverRejectsWrongStepAndPlayer(t *testing.T) {
	m := NewManeuver("Alice", "Alice_campaign", "Frontier", opposing("Bob"))

	if err := m.RecordDecision("Mallory", true); err == nil {
		t.Error("non-opposing player should be rejected")
	}
	if _, err := m.ResolveRolls(1, 1); err == nil {
		t.Error("rolls before decisions should be rejected")
	}

	m.RecordDecision("Bob", false)
	m.ResolveDecisions()
	if err := m.RecordDecision("Bob", true); err == nil {
		t.Error("decision after resolution should be rejected")
	}
}
