package dragondice

import (
	"strconv"
	"strings"
)

// ParsedRoll is the icon counts read from one die roll submission. A roll
// that fails to parse yields the zero value, which resolves as a roll of
// nothing rather than aborting the turn.
type ParsedRoll struct {
	Melee     int
	Missile   int
	Magic     int
	Saves     int
	Maneuvers int
	IDs       int
	SAIs      []string
}

// IsEmpty reports whether the roll produced no results at all.
func (r ParsedRoll) IsEmpty() bool {
	return r.Melee == 0 && r.Missile == 0 && r.Magic == 0 &&
		r.Saves == 0 && r.Maneuvers == 0 && r.IDs == 0 && len(r.SAIs) == 0
}

// CombatContext names the terrain and the two armies an action resolves
// between.
type CombatContext struct {
	Location       string
	AttackerArmyID string
	DefenderArmyID string
}

// MeleeOutcome is the result of a completed melee action.
type MeleeOutcome struct {
	Hits                  int
	Saves                 int
	DamageDealt           int
	UnitsKilled           []Unit
	CounterAttackPossible bool
	Effects               []string
}

// MissileOutcome is the result of a completed missile action.
type MissileOutcome struct {
	Hits        int
	DamageDealt int
	UnitsKilled []Unit
	Effects     []string
}

// MagicOutcome is the result of a completed magic action.
type MagicOutcome struct {
	MagicPoints    int
	EffectsApplied []string
}

// ActionResolver turns raw roll submissions into combat results. The
// engine calls SetCombatContext when an action starts, parses each
// submitted roll, and asks the resolver for the effective totals. The
// resolver owns terrain-control bonuses such as counting ID results
// double for the army controlling the terrain.
type ActionResolver interface {
	SetCombatContext(ctx CombatContext)
	Context() CombatContext
	ParseRoll(raw string) ParsedRoll
	MeleeHits(roll ParsedRoll, controller bool) int
	MissileHits(roll ParsedRoll, controller bool) int
	SaveCount(roll ParsedRoll, controller bool) int
	MagicPoints(roll ParsedRoll, controller bool) int
	ManeuverCount(roll ParsedRoll, controller bool) int
}

// IconResolver is the standard resolver: icons count face value, ID
// results count as the relevant icon and double for the terrain
// controller.
type IconResolver struct {
	ctx CombatContext
}

// NewIconResolver returns a resolver with no combat context.
func NewIconResolver() *IconResolver {
	return &IconResolver{}
}

func (r *IconResolver) SetCombatContext(ctx CombatContext) { r.ctx = ctx }

func (r *IconResolver) Context() CombatContext { return r.ctx }

// ParseRoll parses a submission like "3 melee, 2 saves, 1 id,
// sai:bullseye". Tokens are comma separated; icon tokens are a count and
// an icon name, SAI tokens are "sai:<name>". Any unrecognized token fails
// the whole parse and returns the zero roll.
func (r *IconResolver) ParseRoll(raw string) ParsedRoll {
	var out ParsedRoll
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParsedRoll{}
	}
	for _, part := range strings.Split(strings.ToLower(raw), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, ok := strings.CutPrefix(part, "sai:"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return ParsedRoll{}
			}
			out.SAIs = append(out.SAIs, name)
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return ParsedRoll{}
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count < 0 {
			return ParsedRoll{}
		}
		switch strings.TrimSuffix(fields[1], "s") {
		case "melee":
			out.Melee += count
		case "missile":
			out.Missile += count
		case "magic":
			out.Magic += count
		case "save":
			out.Saves += count
		case "maneuver":
			out.Maneuvers += count
		case "id":
			out.IDs += count
		default:
			return ParsedRoll{}
		}
	}
	return out
}

// ids returns the ID contribution, doubled for the terrain controller.
func ids(roll ParsedRoll, controller bool) int {
	if controller {
		return roll.IDs * 2
	}
	return roll.IDs
}

func (r *IconResolver) MeleeHits(roll ParsedRoll, controller bool) int {
	return roll.Melee + ids(roll, controller)
}

func (r *IconResolver) MissileHits(roll ParsedRoll, controller bool) int {
	return roll.Missile + ids(roll, controller)
}

func (r *IconResolver) SaveCount(roll ParsedRoll, controller bool) int {
	return roll.Saves + ids(roll, controller)
}

func (r *IconResolver) MagicPoints(roll ParsedRoll, controller bool) int {
	return roll.Magic + ids(roll, controller)
}

func (r *IconResolver) ManeuverCount(roll ParsedRoll, controller bool) int {
	return roll.Maneuvers + ids(roll, controller)
}
