package area

import (
	"errors"
	"testing"

	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

func TestPoolAddRemove(t *testing.T) {
	p := NewPool("Dead Unit Area")
	p.Add("Alice", dragondice.Unit{ID: "u1", Name: "Footman", Species: "Coral Elf"})
	p.Add("Alice", dragondice.Unit{ID: "u2", Name: "Archer", Species: "Coral Elf"})

	if p.Count("Alice") != 2 {
		t.Fatalf("count = %d, want 2", p.Count("Alice"))
	}
	if p.Count("Bob") != 0 {
		t.Errorf("Bob should have no units")
	}

	u, err := p.Remove("Alice", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Footman" {
		t.Errorf("removed %q", u.Name)
	}
	if p.Count("Alice") != 1 {
		t.Errorf("count after remove = %d", p.Count("Alice"))
	}

	var unf *dragondice.UnitNotFoundError
	if _, err := p.Remove("Alice", "u1"); !errors.As(err, &unf) {
		t.Errorf("expected UnitNotFoundError, got %v", err)
	}
}

func TestPoolStatistics(t *testing.T) {
	p := NewPool("Summoning Pool")
	p.Add("Alice", dragondice.Unit{ID: "d1", Species: "Dragonkin", Elements: []string{"fire"}})
	p.Add("Alice", dragondice.Unit{ID: "d2", Species: "Dragonkin", Elements: []string{"fire", "air"}})
	p.Add("Alice", dragondice.Unit{ID: "e1", Species: "Coral Elf", Elements: []string{"air", "water"}})

	species := p.CountBySpecies("Alice")
	if species["Dragonkin"] != 2 || species["Coral Elf"] != 1 {
		t.Errorf("species counts = %v", species)
	}

	elements := p.CountByElement("Alice")
	if elements["fire"] != 2 || elements["air"] != 2 || elements["water"] != 1 {
		t.Errorf("element counts = %v", elements)
	}
}

func TestAreasCasualtySink(t *testing.T) {
	a := New()
	var sink dragondice.CasualtySink = a
	sink.AddCasualty("Bob", dragondice.Unit{ID: "b1", Name: "Raider"})

	if a.Dead.Count("Bob") != 1 {
		t.Fatalf("dead count = %d", a.Dead.Count("Bob"))
	}
}

func TestBury(t *testing.T) {
	a := New()
	a.Dead.Add("Bob", dragondice.Unit{ID: "b1"})

	if err := a.Bury("Bob", "b1"); err != nil {
		t.Fatal(err)
	}
	if a.Dead.Count("Bob") != 0 || a.Buried.Count("Bob") != 1 {
		t.Errorf("dead=%d buried=%d", a.Dead.Count("Bob"), a.Buried.Count("Bob"))
	}

	if err := a.Bury("Bob", "b1"); err == nil {
		t.Error("burying twice should fail")
	}
}

func TestResurrectRestoresHealth(t *testing.T) {
	a := New()
	a.Dead.Add("Alice", dragondice.Unit{ID: "a1", Health: 0, MaxHealth: 3})

	u, err := a.Resurrect("Alice", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Health != 3 {
		t.Errorf("resurrected health = %d, want 3", u.Health)
	}
	if a.Dead.Count("Alice") != 0 {
		t.Error("unit should leave the dead area")
	}
}

func TestPoolUnitsReturnsCopy(t *testing.T) {
	p := NewPool("Reserve Pool")
	p.Add("Alice", dragondice.Unit{ID: "r1", Name: "Scout"})

	units := p.Units("Alice")
	units[0].Name = "changed"
	if p.Units("Alice")[0].Name != "Scout" {
		t.Error("Units should return a copy")
	}
}
