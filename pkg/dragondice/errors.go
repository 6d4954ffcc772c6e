package dragondice

import "fmt"

// PlayerNotFoundError reports a lookup of a player the game does not have.
type PlayerNotFoundError struct {
	Player string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player not found: %s", e.Player)
}

// ArmyNotFoundError reports a missing army, identifying both the player and
// which of their armies was asked for.
type ArmyNotFoundError struct {
	Player string
	Kind   ArmyKind
}

func (e *ArmyNotFoundError) Error() string {
	return fmt.Sprintf("army not found: %s has no %s army", e.Player, e.Kind)
}

// TerrainNotFoundError reports a lookup of an unknown terrain.
type TerrainNotFoundError struct {
	Terrain string
}

func (e *TerrainNotFoundError) Error() string {
	return fmt.Sprintf("terrain not found: %s", e.Terrain)
}

// UnitNotFoundError reports a missing unit within a player's forces.
type UnitNotFoundError struct {
	Player string
	UnitID string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit not found: %s has no unit %s", e.Player, e.UnitID)
}

// ManeuverInputError reports maneuver input that does not fit the
// negotiation's current step.
type ManeuverInputError struct {
	Step   ManeuverStep
	Reason string
}

func (e *ManeuverInputError) Error() string {
	return fmt.Sprintf("maneuver at %s: %s", e.Step, e.Reason)
}

// InvalidArmyIDError reports an army identifier that does not follow the
// "<player>_<kind>" format.
type InvalidArmyIDError struct {
	ID string
}

func (e *InvalidArmyIDError) Error() string {
	return fmt.Sprintf("invalid army identifier: %q", e.ID)
}
