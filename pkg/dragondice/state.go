package dragondice

import (
	"fmt"
	"strings"
)

// ArmyKind distinguishes the three armies every player fields.
type ArmyKind string

const (
	ArmyHome     ArmyKind = "home"
	ArmyCampaign ArmyKind = "campaign"
	ArmyHorde    ArmyKind = "horde"
)

// ArmyKinds returns the army kinds in defender-priority order.
// When multiple armies of one player share a terrain, the home army
// defends first, then campaign, then horde.
func ArmyKinds() []ArmyKind {
	return []ArmyKind{ArmyHome, ArmyCampaign, ArmyHorde}
}

// Unit is a single die in an army.
type Unit struct {
	ID        string
	Name      string
	Species   string
	Elements  []string
	Health    int
	MaxHealth int
}

// Army is a named group of units at one terrain.
type Army struct {
	Name     string
	Kind     ArmyKind
	Location string
	Units    []Unit
}

// Player owns three armies and a home terrain.
type Player struct {
	Name        string
	HomeTerrain string // namespaced terrain name, e.g. "Alice Coastland City"
	Armies      map[ArmyKind]*Army
}

// GameState is the authoritative record of everything on the table:
// players in turn order, terrains, active effects, and the turn position.
// All mutation goes through its methods, from a single goroutine.
type GameState struct {
	Players  []*Player
	Terrains map[string]*Terrain
	Effects  EffectList
	Turn     TurnState
}

// ArmyID builds the canonical army identifier "<player>_<kind>".
func ArmyID(player string, kind ArmyKind) string {
	return player + "_" + string(kind)
}

// ParseArmyID splits an army identifier into player name and kind. The
// player name may itself contain underscores; the kind is the final
// segment.
func ParseArmyID(id string) (string, ArmyKind, error) {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return "", "", &InvalidArmyIDError{ID: id}
	}
	player, kind := id[:i], ArmyKind(id[i+1:])
	switch kind {
	case ArmyHome, ArmyCampaign, ArmyHorde:
		return player, kind, nil
	}
	return "", "", &InvalidArmyIDError{ID: id}
}

// HomeTerrainName namespaces a terrain type with its owner so two players
// with the same home terrain type get distinct terrains.
func HomeTerrainName(player, terrainType string) string {
	return player + " " + terrainType
}

// Player returns the named player.
func (gs *GameState) Player(name string) (*Player, error) {
	for _, p := range gs.Players {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, &PlayerNotFoundError{Player: name}
}

// CurrentPlayer returns the player whose turn it is.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.Players[gs.Turn.PlayerIdx]
}

// Army returns one of a player's armies.
func (gs *GameState) Army(player string, kind ArmyKind) (*Army, error) {
	p, err := gs.Player(player)
	if err != nil {
		return nil, err
	}
	a, ok := p.Armies[kind]
	if !ok || a == nil {
		return nil, &ArmyNotFoundError{Player: player, Kind: kind}
	}
	return a, nil
}

// ArmyByID resolves an army identifier to its army.
func (gs *GameState) ArmyByID(id string) (*Army, error) {
	player, kind, err := ParseArmyID(id)
	if err != nil {
		return nil, err
	}
	return gs.Army(player, kind)
}

// Terrain returns the named terrain.
func (gs *GameState) Terrain(name string) (*Terrain, error) {
	t, ok := gs.Terrains[name]
	if !ok {
		return nil, &TerrainNotFoundError{Terrain: name}
	}
	return t, nil
}

// Unit finds a unit anywhere in a player's armies.
func (gs *GameState) Unit(player, unitID string) (*Unit, error) {
	p, err := gs.Player(player)
	if err != nil {
		return nil, err
	}
	for _, kind := range ArmyKinds() {
		a := p.Armies[kind]
		if a == nil {
			continue
		}
		for i := range a.Units {
			if a.Units[i].ID == unitID {
				return &a.Units[i], nil
			}
		}
	}
	return nil, &UnitNotFoundError{Player: player, UnitID: unitID}
}

// ArmyPosition pairs an army with its owner for location queries.
type ArmyPosition struct {
	Player string
	Army   *Army
}

// ID returns the army identifier for the position.
func (ap ArmyPosition) ID() string {
	return ArmyID(ap.Player, ap.Army.Kind)
}

// ArmiesAt returns every non-empty army at the given terrain, scanning
// players in turn order and armies in priority order.
func (gs *GameState) ArmiesAt(location string) []ArmyPosition {
	var out []ArmyPosition
	for _, p := range gs.Players {
		for _, kind := range ArmyKinds() {
			a := p.Armies[kind]
			if a != nil && a.Location == location && len(a.Units) > 0 {
				out = append(out, ArmyPosition{Player: p.Name, Army: a})
			}
		}
	}
	return out
}

// DefendingArmiesAt returns every other player's non-empty army at the
// given terrain.
func (gs *GameState) DefendingArmiesAt(actingPlayer, location string) []ArmyPosition {
	var out []ArmyPosition
	for _, ap := range gs.ArmiesAt(location) {
		if ap.Player != actingPlayer {
			out = append(out, ap)
		}
	}
	return out
}

// PrimaryDefender picks the defending army an attack resolves against:
// among the opposing armies at the terrain, a home army outranks a
// campaign army, which outranks a horde. Falls back to the first army
// found. Returns the defender's army identifier.
func (gs *GameState) PrimaryDefender(actingPlayer, location string) (ArmyPosition, bool) {
	defenders := gs.DefendingArmiesAt(actingPlayer, location)
	if len(defenders) == 0 {
		return ArmyPosition{}, false
	}
	for _, kind := range ArmyKinds() {
		for _, d := range defenders {
			if d.Army.Kind == kind {
				return d, true
			}
		}
	}
	return defenders[0], true
}

// CasualtySink receives units the moment they die. The state store hands
// each dead unit over inside the same mutation that removes it from its
// army; a unit is never both in an army and in the sink, and never in
// neither.
type CasualtySink interface {
	AddCasualty(player string, unit Unit)
}

// DamageResult reports what applying damage did.
type DamageResult struct {
	DamageApplied  int
	Killed         []Unit
	ArmyDestroyed  bool
	ControlLostAt  string // terrain that reverted from its eighth face, if any
}

// ApplyDamage deals damage to a player's army, walking units in array
// order. Each unit absorbs up to its remaining health; a unit at or below
// zero is removed and handed to the sink. If the army is destroyed and its
// owner controlled the terrain it stood on, control is released and the
// terrain steps down from the eighth face.
func (gs *GameState) ApplyDamage(player string, kind ArmyKind, damage int, sink CasualtySink) (*DamageResult, error) {
	army, err := gs.Army(player, kind)
	if err != nil {
		return nil, err
	}
	res := &DamageResult{}
	remaining := damage
	survivors := army.Units[:0]
	for _, u := range army.Units {
		if remaining <= 0 {
			survivors = append(survivors, u)
			continue
		}
		hit := u.Health
		if remaining < hit {
			hit = remaining
		}
		u.Health -= hit
		remaining -= hit
		res.DamageApplied += hit
		if u.Health <= 0 {
			res.Killed = append(res.Killed, u)
			if sink != nil {
				sink.AddCasualty(player, u)
			}
			continue
		}
		survivors = append(survivors, u)
	}
	army.Units = survivors

	if len(army.Units) == 0 {
		res.ArmyDestroyed = true
		if gs.releaseControlIfLost(player, army.Location) {
			res.ControlLostAt = army.Location
		}
	}
	return res, nil
}

// ApplyAllocatedDamage deals damage to a player's army following an
// explicit allocation, unit ID to damage amount. Every allocated unit must
// be in the army; nothing is mutated when the allocation fails validation.
// Kills hand over to the sink atomically, exactly as ApplyDamage does, and
// a destroyed army releases terrain control the same way. Units walk in
// array order so the result is deterministic.
func (gs *GameState) ApplyAllocatedDamage(player string, kind ArmyKind, alloc map[string]int, sink CasualtySink) (*DamageResult, error) {
	army, err := gs.Army(player, kind)
	if err != nil {
		return nil, err
	}
	for id, amount := range alloc {
		if amount < 0 {
			return nil, fmt.Errorf("negative damage %d allocated to unit %s", amount, id)
		}
		found := false
		for _, u := range army.Units {
			if u.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, &UnitNotFoundError{Player: player, UnitID: id}
		}
	}

	res := &DamageResult{}
	survivors := army.Units[:0]
	for _, u := range army.Units {
		hit := alloc[u.ID]
		if hit > u.Health {
			hit = u.Health
		}
		u.Health -= hit
		res.DamageApplied += hit
		if hit > 0 && u.Health <= 0 {
			res.Killed = append(res.Killed, u)
			if sink != nil {
				sink.AddCasualty(player, u)
			}
			continue
		}
		survivors = append(survivors, u)
	}
	army.Units = survivors

	if len(army.Units) == 0 {
		res.ArmyDestroyed = true
		if gs.releaseControlIfLost(player, army.Location) {
			res.ControlLostAt = army.Location
		}
	}
	return res, nil
}

// releaseControlIfLost clears a player's control of a terrain once they no
// longer have any army standing there. A controlled terrain sits on its
// eighth face; losing it turns the die down to seven.
func (gs *GameState) releaseControlIfLost(player, location string) bool {
	t, ok := gs.Terrains[location]
	if !ok || t.Controller != player {
		return false
	}
	for _, ap := range gs.ArmiesAt(location) {
		if ap.Player == player {
			return false
		}
	}
	t.Controller = ""
	if t.Face == 8 {
		t.Face = 7
	}
	return true
}

// CheckVictory returns the winner once a player controls a strict majority
// of the terrains in play.
func (gs *GameState) CheckVictory() (string, bool) {
	if len(gs.Terrains) == 0 {
		return "", false
	}
	need := len(gs.Terrains)/2 + 1
	counts := map[string]int{}
	for _, t := range gs.Terrains {
		if t.Controller != "" {
			counts[t.Controller]++
		}
	}
	for player, n := range counts {
		if n >= need {
			return player, true
		}
	}
	return "", false
}

// AvailableActingArmies lists the current player's armies that still have
// units and can be chosen to march.
func (gs *GameState) AvailableActingArmies() []ArmyPosition {
	p := gs.CurrentPlayer()
	var out []ArmyPosition
	for _, kind := range ArmyKinds() {
		a := p.Armies[kind]
		if a != nil && len(a.Units) > 0 {
			out = append(out, ArmyPosition{Player: p.Name, Army: a})
		}
	}
	return out
}

// Clone returns a deep copy of the game state. Mutations to the clone do
// not affect the original.
func (gs *GameState) Clone() *GameState {
	c := &GameState{
		Turn:    gs.Turn,
		Effects: gs.Effects.clone(),
	}
	c.Players = make([]*Player, len(gs.Players))
	for i, p := range gs.Players {
		cp := &Player{
			Name:        p.Name,
			HomeTerrain: p.HomeTerrain,
			Armies:      make(map[ArmyKind]*Army, len(p.Armies)),
		}
		for kind, a := range p.Armies {
			ca := &Army{Name: a.Name, Kind: a.Kind, Location: a.Location}
			ca.Units = make([]Unit, len(a.Units))
			copy(ca.Units, a.Units)
			cp.Armies[kind] = ca
		}
		c.Players[i] = cp
	}
	c.Terrains = make(map[string]*Terrain, len(gs.Terrains))
	for name, t := range gs.Terrains {
		ct := *t
		c.Terrains[name] = &ct
	}
	return c
}

// PlayerSetup describes one player's starting forces.
type PlayerSetup struct {
	Name        string
	HomeTerrain string // terrain type, e.g. "Coastland City"
	HordeTarget string // opponent whose home the horde army starts at
	Home        []Unit
	Campaign    []Unit
	Horde       []Unit
}

// Setup describes a full game start.
type Setup struct {
	Players         []PlayerSetup
	FrontierTerrain string // terrain type for the shared frontier
	FrontierFace    int    // starting face from the frontier distance roll
	FirstPlayer     string
}

// FrontierName is the name of the shared frontier terrain.
const FrontierName = "Frontier"

// NewGameState builds the starting position: one namespaced home terrain
// per player plus the frontier, home armies at home, campaign armies at
// the frontier, and each horde army at its target opponent's home.
// Terrains start on face 1 unless a distance roll says otherwise.
func NewGameState(setup Setup) (*GameState, error) {
	if len(setup.Players) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(setup.Players))
	}
	gs := &GameState{Terrains: map[string]*Terrain{}}

	homeByPlayer := map[string]string{}
	for _, ps := range setup.Players {
		name := HomeTerrainName(ps.Name, ps.HomeTerrain)
		homeByPlayer[ps.Name] = name
		gs.Terrains[name] = NewTerrain(name, ps.HomeTerrain)
	}
	frontier := NewTerrain(FrontierName, setup.FrontierTerrain)
	face := setup.FrontierFace
	if face < 1 || face > 8 {
		face = 1
	}
	frontier.Face = face
	gs.Terrains[FrontierName] = frontier

	firstIdx := 0
	for i, ps := range setup.Players {
		home := homeByPlayer[ps.Name]
		hordeAt := home
		if ps.HordeTarget != "" {
			t, ok := homeByPlayer[ps.HordeTarget]
			if !ok {
				return nil, &PlayerNotFoundError{Player: ps.HordeTarget}
			}
			hordeAt = t
		} else {
			// Default horde placement: the next player's home.
			next := setup.Players[(i+1)%len(setup.Players)]
			hordeAt = homeByPlayer[next.Name]
		}
		p := &Player{
			Name:        ps.Name,
			HomeTerrain: home,
			Armies: map[ArmyKind]*Army{
				ArmyHome:     {Name: "Home Army", Kind: ArmyHome, Location: home, Units: ps.Home},
				ArmyCampaign: {Name: "Campaign Army", Kind: ArmyCampaign, Location: FrontierName, Units: ps.Campaign},
				ArmyHorde:    {Name: "Horde Army", Kind: ArmyHorde, Location: hordeAt, Units: ps.Horde},
			},
		}
		gs.Players = append(gs.Players, p)
		if ps.Name == setup.FirstPlayer {
			firstIdx = i
		}
	}
	gs.Turn = NewTurnState(firstIdx)
	return gs, nil
}
