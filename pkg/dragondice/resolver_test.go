package dragondice

import (
	"reflect"
	"testing"
)

func TestParseRoll(t *testing.T) {
	r := NewIconResolver()

	tests := []struct {
		in   string
		want ParsedRoll
	}{
		{"3 melee, 2 saves, 1 id", ParsedRoll{Melee: 3, Saves: 2, IDs: 1}},
		{"2 missile", ParsedRoll{Missile: 2}},
		{"4 magic, sai:bullseye", ParsedRoll{Magic: 4, SAIs: []string{"bullseye"}}},
		{"1 maneuver, 1 save", ParsedRoll{Maneuvers: 1, Saves: 1}},
		{"2 Melee, 1 ID", ParsedRoll{Melee: 2, IDs: 1}},
		{"1 melee,, 1 save", ParsedRoll{Melee: 1, Saves: 1}},
	}
	for _, tt := range tests {
		if got := r.ParseRoll(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseRoll(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRollFailureDegradesToEmpty(t *testing.T) {
	r := NewIconResolver()

	for _, in := range []string{
		"three melee",
		"2 swords",
		"-1 melee",
		"melee",
		"2 melee extra words",
		"sai:",
		"garbage",
	} {
		got := r.ParseRoll(in)
		if !got.IsEmpty() {
			t.Errorf("ParseRoll(%q) = %+v, want empty roll", in, got)
		}
	}
	if !r.ParseRoll("").IsEmpty() {
		t.Error("empty input should parse to the empty roll")
	}
}

func TestPartialGarbageFailsWholeParse(t *testing.T) {
	r := NewIconResolver()
	got := r.ParseRoll("3 melee, nonsense")
	if !got.IsEmpty() {
		t.Errorf("a bad token should fail the whole parse, got %+v", got)
	}
}

func TestIDResultsDoubleForController(t *testing.T) {
	r := NewIconResolver()
	roll := ParsedRoll{Melee: 2, IDs: 3}

	if got := r.MeleeHits(roll, false); got != 5 {
		t.Errorf("MeleeHits without control = %d, want 5", got)
	}
	if got := r.MeleeHits(roll, true); got != 8 {
		t.Errorf("MeleeHits with control = %d, want 8", got)
	}

	save := ParsedRoll{Saves: 1, IDs: 1}
	if got := r.SaveCount(save, true); got != 3 {
		t.Errorf("SaveCount with control = %d, want 3", got)
	}
	if got := r.MagicPoints(ParsedRoll{Magic: 2, IDs: 1}, false); got != 3 {
		t.Errorf("MagicPoints = %d, want 3", got)
	}
	if got := r.ManeuverCount(ParsedRoll{Maneuvers: 2, IDs: 2}, true); got != 6 {
		t.Errorf("ManeuverCount with control = %d, want 6", got)
	}
}

func TestCombatContextRoundTrip(t *testing.T) {
	r := NewIconResolver()
	ctx := CombatContext{
		Location:       "Frontier",
		AttackerArmyID: "Alice_campaign",
		DefenderArmyID: "Bob_campaign",
	}
	r.SetCombatContext(ctx)
	if got := r.Context(); got != ctx {
		t.Errorf("Context() = %+v, want %+v", got, ctx)
	}
}
