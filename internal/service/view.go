package service

import (
	"context"
	"sort"

	"github.com/freeeve/dragondice/api/internal/model"
	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

// GameView is the read-only snapshot handed to clients.
type GameView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	Winner     string          `json:"winner,omitempty"`
	Turn       TurnView        `json:"turn"`
	Players    []PlayerView    `json:"players"`
	Terrains   []TerrainView   `json:"terrains"`
	Maneuver   *ManeuverView   `json:"maneuver,omitempty"`
	Allocation *AllocationView `json:"allocation,omitempty"`
	Effects    []EffectView    `json:"effects,omitempty"`
}

// TurnView is the phase position.
type TurnView struct {
	Player     string `json:"player"`
	Phase      string `json:"phase"`
	MarchStep  string `json:"march_step,omitempty"`
	ActionStep string `json:"action_step,omitempty"`
	ActingArmy string `json:"acting_army,omitempty"`
	FirstTurn  bool   `json:"first_turn"`
	Display    string `json:"display"`
}

// PlayerView is one player's forces and out-of-play areas.
type PlayerView struct {
	Name        string     `json:"name"`
	HomeTerrain string     `json:"home_terrain"`
	Armies      []ArmyView `json:"armies"`
	DeadUnits   int        `json:"dead_units"`
	BuriedUnits int        `json:"buried_units"`
	Reserves    int        `json:"reserves"`
}

// ArmyView is one army.
type ArmyView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Location string            `json:"location"`
	Units    []dragondice.Unit `json:"units"`
}

// TerrainView is one terrain die.
type TerrainView struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Face       int      `json:"face"`
	Controller string   `json:"controller,omitempty"`
	Actions    []string `json:"actions"`
}

// ManeuverView is the pending maneuver, if one is in flight.
type ManeuverView struct {
	Step      string                    `json:"step"`
	Player    string                    `json:"player"`
	ArmyID    string                    `json:"army_id"`
	Location  string                    `json:"location"`
	Opposing  []dragondice.OpposingArmy `json:"opposing,omitempty"`
	Decisions map[string]bool           `json:"decisions,omitempty"`
}

// AllocationView is the damage allocation the defender owes, if any.
type AllocationView struct {
	Player string `json:"player"`
	ArmyID string `json:"army_id"`
	Damage int    `json:"damage"`
}

// EffectView is one active effect.
type EffectView struct {
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Target      string `json:"target,omitempty"`
	Caster      string `json:"caster,omitempty"`
	Duration    string `json:"duration"`
}

// View builds the client snapshot of a game.
func (s *GameService) View(ctx context.Context, id string) (*GameView, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(game), nil
}

func buildView(game *model.Game) *GameView {
	gs := game.State
	v := &GameView{
		ID:     game.ID,
		Name:   game.Name,
		Status: game.Status,
		Winner: game.Winner,
		Turn: TurnView{
			Player:     gs.CurrentPlayer().Name,
			Phase:      string(gs.Turn.Phase),
			MarchStep:  string(gs.Turn.MarchStep),
			ActionStep: string(gs.Turn.ActionStep),
			ActingArmy: gs.Turn.ActingArmy,
			FirstTurn:  gs.Turn.FirstTurn,
			Display:    gs.Turn.Display(),
		},
	}
	for _, p := range gs.Players {
		pv := PlayerView{Name: p.Name, HomeTerrain: p.HomeTerrain}
		for _, kind := range dragondice.ArmyKinds() {
			a := p.Armies[kind]
			if a == nil {
				continue
			}
			pv.Armies = append(pv.Armies, ArmyView{
				ID:       dragondice.ArmyID(p.Name, kind),
				Name:     a.Name,
				Kind:     string(kind),
				Location: a.Location,
				Units:    a.Units,
			})
		}
		if game.Areas != nil {
			pv.DeadUnits = game.Areas.Dead.Count(p.Name)
			pv.BuriedUnits = game.Areas.Buried.Count(p.Name)
			pv.Reserves = game.Areas.Reserves.Count(p.Name)
		}
		v.Players = append(v.Players, pv)
	}
	for _, name := range sortedTerrainNames(gs) {
		t := gs.Terrains[name]
		tv := TerrainView{
			Name:       t.Name,
			Type:       t.Type,
			Face:       t.Face,
			Controller: t.Controller,
		}
		// The terrain view reports the controller's grant; the actions
		// query answers for the acting army specifically.
		for _, a := range t.AvailableActions(t.Controller) {
			tv.Actions = append(tv.Actions, string(a))
		}
		v.Terrains = append(v.Terrains, tv)
	}
	if m := game.Maneuver; m != nil {
		v.Maneuver = &ManeuverView{
			Step:      string(m.Step),
			Player:    m.Player,
			ArmyID:    m.ArmyID,
			Location:  m.Location,
			Opposing:  m.Opposing,
			Decisions: m.Decisions,
		}
	}
	if pa := game.Allocation; pa != nil {
		v.Allocation = &AllocationView{
			Player: pa.DefenderPlayer,
			ArmyID: dragondice.ArmyID(pa.DefenderPlayer, pa.DefenderKind),
			Damage: pa.Damage,
		}
	}
	for _, e := range gs.Effects.Active() {
		v.Effects = append(v.Effects, EffectView{
			Description: e.Description,
			Source:      e.Source,
			Target:      e.Target,
			Caster:      e.Caster,
			Duration:    string(e.Duration),
		})
	}
	return v
}

func sortedTerrainNames(gs *dragondice.GameState) []string {
	names := make([]string, 0, len(gs.Terrains))
	for name := range gs.Terrains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableActions returns what the acting army may do on its terrain.
// It is a pure query; selection still validates.
func (s *GameService) AvailableActions(ctx context.Context, gameID string) ([]dragondice.ActionKind, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	ts := game.State.Turn
	if ts.ActingArmy == "" {
		return nil, nil
	}
	army, err := game.State.ArmyByID(ts.ActingArmy)
	if err != nil {
		return nil, err
	}
	terrain, err := game.State.Terrain(army.Location)
	if err != nil {
		return nil, err
	}
	owner, _, err := dragondice.ParseArmyID(ts.ActingArmy)
	if err != nil {
		return nil, err
	}
	return terrain.AvailableActions(owner), nil
}

// AvailableActingArmies lists the current player's armies with units.
func (s *GameService) AvailableActingArmies(ctx context.Context, gameID string) ([]ArmyView, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var out []ArmyView
	for _, ap := range game.State.AvailableActingArmies() {
		out = append(out, ArmyView{
			ID:       ap.ID(),
			Name:     ap.Army.Name,
			Kind:     string(ap.Army.Kind),
			Location: ap.Army.Location,
			Units:    ap.Army.Units,
		})
	}
	return out, nil
}
