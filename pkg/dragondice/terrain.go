package dragondice

import (
	"fmt"
	"strings"
)

// Direction is a terrain die turn direction.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// FaceUp turns a terrain face one step up, wrapping 8 back to 1.
func FaceUp(face int) int {
	return face%8 + 1
}

// FaceDown turns a terrain face one step down, wrapping 1 back to 8.
func FaceDown(face int) int {
	return (face-2+8)%8 + 1
}

// TurnFace applies a direction choice to a face.
func TurnFace(face int, dir Direction) (int, error) {
	switch dir {
	case DirectionUp:
		return FaceUp(face), nil
	case DirectionDown:
		return FaceDown(face), nil
	}
	return 0, fmt.Errorf("unknown direction %q", dir)
}

// ActionKind is the kind of action an army takes during a march.
type ActionKind string

const (
	ActionMelee   ActionKind = "MELEE"
	ActionMissile ActionKind = "MISSILE"
	ActionMagic   ActionKind = "MAGIC"
	ActionSkip    ActionKind = "SKIP"
)

// Terrain is one terrain die in play. Face runs 1..8; face 8 is the
// special eighth face, and only a terrain on its eighth face has a
// controller.
type Terrain struct {
	Name       string
	Type       string // full type, e.g. "Coastland City"
	Face       int
	Controller string
}

// NewTerrain builds a terrain on face 1.
func NewTerrain(name, terrainType string) *Terrain {
	return &Terrain{Name: name, Type: terrainType, Face: 1}
}

// EighthFace returns the terrain's eighth-face kind, the part of the type
// after the land name ("Coastland City" -> "City").
func (t *Terrain) EighthFace() string {
	if i := strings.Index(t.Type, " "); i >= 0 {
		return t.Type[i+1:]
	}
	return t.Type
}

// Face layouts for the standard terrain dice, faces 1 through 7 keyed by
// eighth-face kind. Face 8 offers any action to the controlling army.
var faceLayouts = map[string][7]ActionKind{
	"Castle":          {ActionMagic, ActionMagic, ActionMissile, ActionMelee, ActionMelee, ActionMelee, ActionMelee},
	"City":            {ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee},
	"Dragon Lair":     {ActionMagic, ActionMissile, ActionMelee, ActionMelee, ActionMelee, ActionMelee, ActionMelee},
	"Grove":           {ActionMagic, ActionMagic, ActionMagic, ActionMagic, ActionMissile, ActionMelee, ActionMelee},
	"Standing Stones": {ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee},
	"Temple":          {ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee},
	"Tower":           {ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee},
	"Vortex":          {ActionMagic, ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee},
}

// defaultLayout covers terrain types without a known face table.
var defaultLayout = [7]ActionKind{ActionMagic, ActionMissile, ActionMissile, ActionMissile, ActionMissile, ActionMelee, ActionMelee}

// AvailableActions returns the action kinds the current face offers to an
// army owned by the given player. Faces 1..7 show a single action icon.
// The eighth face grants any action, but only to the controlling player;
// anyone else fighting at a captured terrain acts on the seventh-face
// icon. Skipping is always allowed.
func (t *Terrain) AvailableActions(player string) []ActionKind {
	if t.Face == 8 {
		if player != "" && player == t.Controller {
			return []ActionKind{ActionMelee, ActionMissile, ActionMagic, ActionSkip}
		}
		return []ActionKind{t.layout()[6], ActionSkip}
	}
	return []ActionKind{t.layout()[t.Face-1], ActionSkip}
}

func (t *Terrain) layout() [7]ActionKind {
	if l, ok := faceLayouts[t.EighthFace()]; ok {
		return l
	}
	return defaultLayout
}

// Allows reports whether the current face permits the given action kind
// for an army owned by the given player.
func (t *Terrain) Allows(kind ActionKind, player string) bool {
	for _, k := range t.AvailableActions(player) {
		if k == kind {
			return true
		}
	}
	return false
}

// SetFace sets the terrain face, validating the 1..8 range. Moving off the
// eighth face releases control.
func (gs *GameState) SetFace(terrain string, face int) error {
	t, err := gs.Terrain(terrain)
	if err != nil {
		return err
	}
	if face < 1 || face > 8 {
		return fmt.Errorf("terrain face %d out of range [1,8]", face)
	}
	t.Face = face
	if face != 8 {
		t.Controller = ""
	}
	return nil
}

// Capture marks a terrain as controlled by a player. Only a terrain on its
// eighth face can be captured.
func (gs *GameState) Capture(terrain, player string) error {
	t, err := gs.Terrain(terrain)
	if err != nil {
		return err
	}
	if t.Face != 8 {
		return fmt.Errorf("terrain %s is on face %d, not the eighth face", terrain, t.Face)
	}
	if _, err := gs.Player(player); err != nil {
		return err
	}
	t.Controller = player
	return nil
}
