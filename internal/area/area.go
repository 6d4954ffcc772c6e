// Package area holds the out-of-play unit areas: the Dead Unit Area, the
// Buried Unit Area, the Reserve Pool, and the Summoning Pool. The pools
// are plain per-player containers; the turn service mutates them under
// the per-game lock.
package area

import (
	"fmt"

	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

// Pool is one out-of-play area, units grouped by owning player.
type Pool struct {
	name  string
	units map[string][]dragondice.Unit
}

// NewPool returns an empty pool.
func NewPool(name string) *Pool {
	return &Pool{name: name, units: map[string][]dragondice.Unit{}}
}

// Name returns the pool's display name.
func (p *Pool) Name() string { return p.name }

// Add places a unit in the pool.
func (p *Pool) Add(player string, u dragondice.Unit) {
	p.units[player] = append(p.units[player], u)
}

// Remove takes a unit out of the pool by ID.
func (p *Pool) Remove(player, unitID string) (dragondice.Unit, error) {
	units := p.units[player]
	for i, u := range units {
		if u.ID == unitID {
			p.units[player] = append(units[:i], units[i+1:]...)
			return u, nil
		}
	}
	return dragondice.Unit{}, &dragondice.UnitNotFoundError{Player: player, UnitID: unitID}
}

// Units returns a copy of a player's units in the pool.
func (p *Pool) Units(player string) []dragondice.Unit {
	units := p.units[player]
	out := make([]dragondice.Unit, len(units))
	copy(out, units)
	return out
}

// Count returns how many units a player has in the pool.
func (p *Pool) Count(player string) int {
	return len(p.units[player])
}

// CountBySpecies tallies a player's units in the pool by species.
func (p *Pool) CountBySpecies(player string) map[string]int {
	out := map[string]int{}
	for _, u := range p.units[player] {
		out[u.Species]++
	}
	return out
}

// CountByElement tallies a player's units in the pool by element. A unit
// with two elements counts toward both.
func (p *Pool) CountByElement(player string) map[string]int {
	out := map[string]int{}
	for _, u := range p.units[player] {
		for _, el := range u.Elements {
			out[el]++
		}
	}
	return out
}

// Areas bundles the four areas of one game.
type Areas struct {
	Dead      *Pool
	Buried    *Pool
	Reserves  *Pool
	Summoning *Pool
}

// New returns empty areas for a new game.
func New() *Areas {
	return &Areas{
		Dead:      NewPool("Dead Unit Area"),
		Buried:    NewPool("Buried Unit Area"),
		Reserves:  NewPool("Reserve Pool"),
		Summoning: NewPool("Summoning Pool"),
	}
}

// AddCasualty sends a freshly killed unit to the Dead Unit Area. Satisfies
// the engine's CasualtySink so death and arrival happen in one mutation.
func (a *Areas) AddCasualty(player string, u dragondice.Unit) {
	a.Dead.Add(player, u)
}

// Bury moves a unit from the Dead Unit Area to the Buried Unit Area.
// Buried units are beyond resurrection.
func (a *Areas) Bury(player, unitID string) error {
	u, err := a.Dead.Remove(player, unitID)
	if err != nil {
		return fmt.Errorf("bury: %w", err)
	}
	a.Buried.Add(player, u)
	return nil
}

// Resurrect moves a unit from the Dead Unit Area back toward play at full
// health, handing it to the caller for placement.
func (a *Areas) Resurrect(player, unitID string) (dragondice.Unit, error) {
	u, err := a.Dead.Remove(player, unitID)
	if err != nil {
		return dragondice.Unit{}, fmt.Errorf("resurrect: %w", err)
	}
	u.Health = u.MaxHealth
	return u, nil
}
