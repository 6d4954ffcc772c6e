package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/dragondice/api/internal/model"
	"github.com/freeeve/dragondice/api/internal/repository"
	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

// Command validation errors. Handlers map these to 4xx responses.
var (
	ErrGameFinished      = errors.New("game is finished")
	ErrNotYourTurn       = errors.New("not the acting player's turn")
	ErrWrongStep         = errors.New("command does not apply to the current step")
	ErrNoPendingManeuver = errors.New("no maneuver is pending")
	ErrActionNotAllowed  = errors.New("terrain face does not allow that action")
	ErrBadAllocation     = errors.New("allocation does not match the pending damage")
)

// TurnService is the single mutation surface of a game: every turn command
// goes through it, under a per-game lock, against the one authoritative
// GameState. It emits typed events through the broadcaster as state moves.
type TurnService struct {
	repo        repository.GameRepository
	broadcaster Broadcaster

	// gameLocks serializes commands per game. Commands arrive from
	// multiple players; without locking, two submissions could interleave
	// mid-transition.
	gameLocks sync.Map
}

// NewTurnService creates a TurnService.
func NewTurnService(repo repository.GameRepository, broadcaster Broadcaster) *TurnService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &TurnService{repo: repo, broadcaster: broadcaster}
}

func (s *TurnService) lock(gameID string) *sync.Mutex {
	l, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// withGame runs fn against a locked, active game.
func (s *TurnService) withGame(ctx context.Context, gameID string, fn func(*model.Game) error) error {
	mu := s.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.repo.FindByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("find game: %w", err)
	}
	if game.Status == model.StatusFinished {
		return ErrGameFinished
	}
	return fn(game)
}

// requireCurrentPlayer rejects commands from anyone but the acting player.
func requireCurrentPlayer(game *model.Game, player string) error {
	if game.State.CurrentPlayer().Name != player {
		log.Warn().Str("gameId", game.ID).Str("player", player).
			Str("currentPlayer", game.State.CurrentPlayer().Name).
			Msg("Command from out-of-turn player")
		return ErrNotYourTurn
	}
	return nil
}

// BeginGame runs the phase-entry processing for a freshly created game so
// it opens at the first phase that actually waits for input.
func (s *TurnService) BeginGame(ctx context.Context, gameID string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		s.handlePhaseEntry(game)
		s.broadcastPhase(game)
		return nil
	})
}

// ChooseActingArmy records which of the current player's armies marches.
func (s *TurnService) ChooseActingArmy(ctx context.Context, gameID, player, armyID string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if !ts.Phase.IsMarch() || ts.MarchStep != dragondice.StepChooseActingArmy {
			log.Warn().Str("gameId", gameID).Str("step", string(ts.MarchStep)).
				Msg("choose_acting_army outside choose step")
			return ErrWrongStep
		}
		owner, _, err := dragondice.ParseArmyID(armyID)
		if err != nil {
			return err
		}
		if owner != player {
			return ErrNotYourTurn
		}
		army, err := game.State.ArmyByID(armyID)
		if err != nil {
			return err
		}
		if len(army.Units) == 0 {
			return &dragondice.ArmyNotFoundError{Player: owner, Kind: army.Kind}
		}

		ts.ActingArmy = armyID
		ts.MarchStep = dragondice.StepDecideManeuver
		log.Info().Str("gameId", gameID).Str("army", armyID).Str("location", army.Location).
			Msg("Acting army chosen")
		s.broadcastPhase(game)
		return nil
	})
}

// DecideManeuver is the acting player's choice to maneuver or not. Not
// maneuvering moves on to the action decision; maneuvering opens the
// negotiation with whoever else holds the terrain.
func (s *TurnService) DecideManeuver(ctx context.Context, gameID, player string, wantsToManeuver bool) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.MarchStep != dragondice.StepDecideManeuver {
			log.Warn().Str("gameId", gameID).Str("step", string(ts.MarchStep)).
				Msg("decide_maneuver outside decide step")
			return ErrWrongStep
		}

		if !wantsToManeuver {
			ts.MarchStep = dragondice.StepDecideAction
			s.broadcastPhase(game)
			return nil
		}

		army, err := game.State.ArmyByID(ts.ActingArmy)
		if err != nil {
			return err
		}
		var opposing []dragondice.OpposingArmy
		for _, d := range game.State.DefendingArmiesAt(player, army.Location) {
			opposing = append(opposing, dragondice.OpposingArmy{
				Player: d.Player,
				ArmyID: d.ID(),
				Name:   d.Army.Name,
			})
		}
		game.Maneuver = dragondice.NewManeuver(player, ts.ActingArmy, army.Location, opposing)
		ts.MarchStep = dragondice.StepAwaitingManeuverInput

		if game.Maneuver.Step == dragondice.ManeuverAwaitingDirection {
			// Unopposed: automatic success.
			s.requestDirection(game)
		} else {
			log.Info().Str("gameId", gameID).Str("location", army.Location).
				Int("opposingArmies", len(opposing)).Msg("Counter-maneuver decisions requested")
			s.broadcaster.BroadcastGameEvent(gameID, EventCounterManeuverRequest, map[string]any{
				"location":        army.Location,
				"maneuvering":     player,
				"opposing_armies": opposing,
			})
		}
		s.broadcastPhase(game)
		return nil
	})
}

// SubmitCounterManeuverDecision records one opposing player's answer. Once
// every distinct opposing player has answered, the negotiation either
// succeeds outright or moves to simultaneous rolls.
func (s *TurnService) SubmitCounterManeuverDecision(ctx context.Context, gameID, player string, counter bool) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		m := game.Maneuver
		if m == nil {
			return ErrNoPendingManeuver
		}
		if err := m.RecordDecision(player, counter); err != nil {
			log.Warn().Str("gameId", gameID).Str("player", player).Err(err).
				Msg("Counter-maneuver decision rejected")
			return err
		}
		if !m.AllDecided() {
			return nil
		}

		rolls, err := m.ResolveDecisions()
		if err != nil {
			return err
		}
		if rolls {
			log.Info().Str("gameId", gameID).Str("location", m.Location).
				Msg("Simultaneous maneuver rolls requested")
			s.broadcaster.BroadcastGameEvent(gameID, EventManeuverRollsRequest, map[string]any{
				"location":        m.Location,
				"maneuvering":     m.Player,
				"army_id":         m.ArmyID,
				"opposing_armies": m.Opposing,
				"decisions":       m.Decisions,
			})
			return nil
		}
		// Nobody countered: automatic success.
		s.requestDirection(game)
		return nil
	})
}

// SubmitManeuverRollResults settles the simultaneous rolls. Both raw roll
// strings arrive together; the maneuvering side wins ties.
func (s *TurnService) SubmitManeuverRollResults(ctx context.Context, gameID, maneuverRoll, counterRoll string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		m := game.Maneuver
		if m == nil {
			return ErrNoPendingManeuver
		}
		terrain, err := game.State.Terrain(m.Location)
		if err != nil {
			return err
		}

		// The counter roll only carries the controller's ID doubling when
		// the controller is actually one of the countering players.
		counterBonus := false
		if c := terrain.Controller; c != "" && c != m.Player {
			counterBonus = m.Decisions[c]
		}
		manTotal := game.Resolver.ManeuverCount(game.Resolver.ParseRoll(maneuverRoll), terrain.Controller == m.Player)
		counterTotal := game.Resolver.ManeuverCount(game.Resolver.ParseRoll(counterRoll), counterBonus)

		success, err := m.ResolveRolls(manTotal, counterTotal)
		if err != nil {
			log.Warn().Str("gameId", gameID).Err(err).Msg("Maneuver rolls rejected")
			return err
		}
		log.Info().Str("gameId", gameID).Int("maneuver", manTotal).Int("counter", counterTotal).
			Bool("success", success).Msg("Maneuver rolls resolved")

		if success {
			s.requestDirection(game)
			return nil
		}
		game.Maneuver = nil
		game.State.Turn.MarchStep = dragondice.StepDecideAction
		s.broadcaster.BroadcastGameEvent(gameID, EventManeuverResolved, map[string]any{
			"success":  false,
			"maneuver": manTotal,
			"counter":  counterTotal,
			"location": m.Location,
		})
		s.broadcastPhase(game)
		return nil
	})
}

// SubmitTerrainDirectionChoice turns the terrain die one face up or down
// after a successful maneuver. Turning it to the eighth face captures the
// terrain; capturing a majority wins the game.
func (s *TurnService) SubmitTerrainDirectionChoice(ctx context.Context, gameID, player string, direction dragondice.Direction) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		m := game.Maneuver
		if m == nil {
			return ErrNoPendingManeuver
		}
		if m.Step != dragondice.ManeuverAwaitingDirection {
			return ErrWrongStep
		}
		if m.Player != player {
			return ErrNotYourTurn
		}
		terrain, err := game.State.Terrain(m.Location)
		if err != nil {
			return err
		}
		newFace, err := dragondice.TurnFace(terrain.Face, direction)
		if err != nil {
			return err
		}
		if err := game.State.SetFace(m.Location, newFace); err != nil {
			return err
		}
		if newFace == 8 {
			if err := game.State.Capture(m.Location, player); err != nil {
				return err
			}
			log.Info().Str("gameId", gameID).Str("terrain", m.Location).Str("player", player).
				Msg("Terrain captured")
		}

		game.Maneuver = nil
		game.State.Turn.MarchStep = dragondice.StepDecideAction
		s.broadcaster.BroadcastGameEvent(gameID, EventManeuverResolved, map[string]any{
			"success":  true,
			"location": m.Location,
			"face":     newFace,
		})

		if winner, over := game.State.CheckVictory(); over {
			s.finishGame(game, winner)
			return nil
		}
		s.broadcastPhase(game)
		return nil
	})
}

// AbandonManeuver discards the pending maneuver and lands on the action
// decision. There is no partial rollback; the negotiation simply never
// happened.
func (s *TurnService) AbandonManeuver(ctx context.Context, gameID, player string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if game.Maneuver == nil {
			return ErrNoPendingManeuver
		}
		if game.Maneuver.Player != player {
			return ErrNotYourTurn
		}
		game.Maneuver = nil
		game.State.Turn.MarchStep = dragondice.StepDecideAction
		log.Info().Str("gameId", gameID).Str("player", player).Msg("Maneuver abandoned")
		s.broadcastPhase(game)
		return nil
	})
}

// DecideAction is the acting player's choice to take an action at all.
// Declining ends the march.
func (s *TurnService) DecideAction(ctx context.Context, gameID, player string, takeAction bool) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.MarchStep != dragondice.StepDecideAction {
			log.Warn().Str("gameId", gameID).Str("step", string(ts.MarchStep)).
				Msg("decide_action outside decide step")
			return ErrWrongStep
		}
		if takeAction {
			ts.MarchStep = dragondice.StepSelectAction
			s.broadcastPhase(game)
			return nil
		}
		s.advancePhase(game)
		return nil
	})
}

// SelectAction starts an action of the given kind, or skips. The terrain
// face is authoritative: a kind the face does not show is rejected.
func (s *TurnService) SelectAction(ctx context.Context, gameID, player string, kind dragondice.ActionKind) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.MarchStep != dragondice.StepSelectAction {
			log.Warn().Str("gameId", gameID).Str("step", string(ts.MarchStep)).
				Msg("select_action outside select step")
			return ErrWrongStep
		}

		if kind == dragondice.ActionSkip {
			s.advancePhase(game)
			return nil
		}

		army, err := game.State.ArmyByID(ts.ActingArmy)
		if err != nil {
			return err
		}
		terrain, err := game.State.Terrain(army.Location)
		if err != nil {
			return err
		}
		if !terrain.Allows(kind, player) {
			log.Warn().Str("gameId", gameID).Str("kind", string(kind)).
				Int("face", terrain.Face).Msg("Action not offered by terrain face")
			return ErrActionNotAllowed
		}

		switch kind {
		case dragondice.ActionMelee:
			ts.ActionStep = dragondice.StepAwaitingMeleeRoll
		case dragondice.ActionMissile:
			ts.ActionStep = dragondice.StepAwaitingMissileRoll
		case dragondice.ActionMagic:
			ts.ActionStep = dragondice.StepAwaitingMagicRoll
		default:
			return fmt.Errorf("unknown action kind %q", kind)
		}
		log.Info().Str("gameId", gameID).Str("kind", string(kind)).Msg("Action selected")
		s.broadcastPhase(game)
		return nil
	})
}

// SubmitMeleeResults processes the attacker's melee roll and asks the
// primary defender for saves.
func (s *TurnService) SubmitMeleeResults(ctx context.Context, gameID, player, results string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.ActionStep != dragondice.StepAwaitingMeleeRoll {
			log.Warn().Str("gameId", gameID).Str("actionStep", string(ts.ActionStep)).
				Msg("Not expecting attacker melee results now")
			return ErrWrongStep
		}

		army, err := game.State.ArmyByID(ts.ActingArmy)
		if err != nil {
			return err
		}
		terrain, err := game.State.Terrain(army.Location)
		if err != nil {
			return err
		}
		defender, ok := game.State.PrimaryDefender(player, army.Location)
		if !ok {
			// Nothing to hit; the action resolves to nothing.
			log.Info().Str("gameId", gameID).Str("location", army.Location).
				Msg("Melee with no defender, resolving empty")
			s.completeAction(game, dragondice.ActionMelee, map[string]any{
				"damage_dealt": 0,
				"units_killed": []dragondice.Unit{},
			})
			return nil
		}

		game.Resolver.SetCombatContext(dragondice.CombatContext{
			Location:       army.Location,
			AttackerArmyID: ts.ActingArmy,
			DefenderArmyID: defender.ID(),
		})
		roll := game.Resolver.ParseRoll(results)
		if roll.IsEmpty() {
			log.Warn().Str("gameId", gameID).Str("results", results).
				Msg("Could not parse melee results, treating as zero hits")
		}
		hits := game.Resolver.MeleeHits(roll, terrain.Controller == player)

		game.Attack = &model.PendingAttack{
			Hits:           hits,
			AttackerArmyID: ts.ActingArmy,
			DefenderPlayer: defender.Player,
			DefenderKind:   defender.Army.Kind,
		}
		ts.ActionStep = dragondice.StepAwaitingDefenderSaves
		log.Info().Str("gameId", gameID).Int("hits", hits).Str("defender", defender.ID()).
			Msg("Melee roll submitted, awaiting saves")
		s.broadcaster.BroadcastGameEvent(gameID, EventSaveRollRequested, map[string]any{
			"defender": defender.Player,
			"army_id":  defender.ID(),
			"hits":     hits,
		})
		s.broadcastPhase(game)
		return nil
	})
}

// SubmitSaveResults processes the defender's save roll, applies the net
// damage, and completes the melee action.
func (s *TurnService) SubmitSaveResults(ctx context.Context, gameID, player, results string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		ts := &game.State.Turn
		if ts.ActionStep != dragondice.StepAwaitingDefenderSaves || game.Attack == nil {
			log.Warn().Str("gameId", gameID).Str("actionStep", string(ts.ActionStep)).
				Msg("Not expecting defender save results now")
			return ErrWrongStep
		}
		attack := game.Attack
		if player != attack.DefenderPlayer {
			return ErrNotYourTurn
		}

		ctxInfo := game.Resolver.Context()
		terrain, err := game.State.Terrain(ctxInfo.Location)
		if err != nil {
			return err
		}
		roll := game.Resolver.ParseRoll(results)
		if roll.IsEmpty() {
			log.Warn().Str("gameId", gameID).Str("results", results).
				Msg("Could not parse save results, treating as zero saves")
		}
		saves := game.Resolver.SaveCount(roll, terrain.Controller == player)

		damage := attack.Hits - saves
		if damage < 0 {
			damage = 0
		}
		game.Attack = nil
		return s.settleDamage(game, dragondice.ActionMelee, attack.DefenderPlayer, attack.DefenderKind, damage, map[string]any{
			"hits":  attack.Hits,
			"saves": saves,
		})
	})
}

// SubmitMissileResults processes the attacker's missile roll. Missile fire
// resolves in a single roll; the damage lands as rolled.
func (s *TurnService) SubmitMissileResults(ctx context.Context, gameID, player, results string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.ActionStep != dragondice.StepAwaitingMissileRoll {
			log.Warn().Str("gameId", gameID).Str("actionStep", string(ts.ActionStep)).
				Msg("Not expecting attacker missile results now")
			return ErrWrongStep
		}

		army, err := game.State.ArmyByID(ts.ActingArmy)
		if err != nil {
			return err
		}
		terrain, err := game.State.Terrain(army.Location)
		if err != nil {
			return err
		}
		defender, ok := game.State.PrimaryDefender(player, army.Location)
		if !ok {
			s.completeAction(game, dragondice.ActionMissile, map[string]any{
				"damage_dealt": 0,
				"units_killed": []dragondice.Unit{},
			})
			return nil
		}

		game.Resolver.SetCombatContext(dragondice.CombatContext{
			Location:       army.Location,
			AttackerArmyID: ts.ActingArmy,
			DefenderArmyID: defender.ID(),
		})
		roll := game.Resolver.ParseRoll(results)
		hits := game.Resolver.MissileHits(roll, terrain.Controller == player)

		return s.settleDamage(game, dragondice.ActionMissile, defender.Player, defender.Army.Kind, hits, map[string]any{
			"hits": hits,
		})
	})
}

// SubmitDamageAllocation is the defender's answer to an allocation
// request: an explicit unit-to-damage map covering the pending damage. An
// empty map applies the damage automatically in army array order.
func (s *TurnService) SubmitDamageAllocation(ctx context.Context, gameID, player string, alloc map[string]int) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		ts := &game.State.Turn
		pa := game.Allocation
		if ts.ActionStep != dragondice.StepAwaitingDamageAllocation || pa == nil {
			log.Warn().Str("gameId", gameID).Str("actionStep", string(ts.ActionStep)).
				Msg("Not expecting a damage allocation now")
			return ErrWrongStep
		}
		if player != pa.DefenderPlayer {
			return ErrNotYourTurn
		}

		var res *dragondice.DamageResult
		var err error
		if len(alloc) == 0 {
			res, err = game.State.ApplyDamage(pa.DefenderPlayer, pa.DefenderKind, pa.Damage, game.Areas)
		} else {
			total := 0
			for _, amount := range alloc {
				total += amount
			}
			if total != pa.Damage {
				return fmt.Errorf("%w: allocated %d of %d", ErrBadAllocation, total, pa.Damage)
			}
			res, err = game.State.ApplyAllocatedDamage(pa.DefenderPlayer, pa.DefenderKind, alloc, game.Areas)
		}
		if err != nil {
			return err
		}

		outcome := map[string]any{"hits": pa.Hits}
		if pa.Action == dragondice.ActionMelee {
			outcome["saves"] = pa.Saves
		}
		action := pa.Action
		defPlayer, defKind := pa.DefenderPlayer, pa.DefenderKind
		game.Allocation = nil
		log.Info().Str("gameId", gameID).Str("player", player).Int("damage", res.DamageApplied).
			Msg("Damage allocation applied")
		s.finishDamage(game, action, defPlayer, defKind, res, outcome)
		return nil
	})
}

// SubmitMagicResults processes the magic roll and completes the action.
func (s *TurnService) SubmitMagicResults(ctx context.Context, gameID, player, results string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		ts := &game.State.Turn
		if ts.ActionStep != dragondice.StepAwaitingMagicRoll {
			log.Warn().Str("gameId", gameID).Str("actionStep", string(ts.ActionStep)).
				Msg("Not expecting magic results now")
			return ErrWrongStep
		}

		army, err := game.State.ArmyByID(ts.ActingArmy)
		if err != nil {
			return err
		}
		terrain, err := game.State.Terrain(army.Location)
		if err != nil {
			return err
		}
		roll := game.Resolver.ParseRoll(results)
		points := game.Resolver.MagicPoints(roll, terrain.Controller == player)

		s.completeAction(game, dragondice.ActionMagic, map[string]any{
			"magic_points":    points,
			"effects_applied": []string{},
		})
		return nil
	})
}

// AdvancePhase moves the current player's turn forward one phase.
func (s *TurnService) AdvancePhase(ctx context.Context, gameID, player string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		s.advancePhase(game)
		return nil
	})
}

// SkipToNextPhaseGroup jumps the rest of the current march.
func (s *TurnService) SkipToNextPhaseGroup(ctx context.Context, gameID, player string) error {
	return s.withGame(ctx, gameID, func(game *model.Game) error {
		if err := requireCurrentPlayer(game, player); err != nil {
			return err
		}
		game.Maneuver = nil
		game.Attack = nil
		game.Allocation = nil
		rotated := game.State.Turn.SkipToNextPhaseGroup(len(game.State.Players))
		if rotated {
			s.broadcaster.BroadcastGameEvent(game.ID, EventCurrentPlayerChanged, map[string]any{
				"player": game.State.CurrentPlayer().Name,
			})
		}
		s.handlePhaseEntry(game)
		s.broadcastPhase(game)
		return nil
	})
}

// requestDirection asks the maneuvering player which way to turn the die.
func (s *TurnService) requestDirection(game *model.Game) {
	m := game.Maneuver
	face := 0
	if t, err := game.State.Terrain(m.Location); err == nil {
		face = t.Face
	}
	log.Info().Str("gameId", game.ID).Str("location", m.Location).Int("face", face).
		Msg("Terrain direction choice requested")
	s.broadcaster.BroadcastGameEvent(game.ID, EventDirectionChoiceRequest, map[string]any{
		"player":       m.Player,
		"location":     m.Location,
		"current_face": face,
	})
}

// settleDamage lands net damage on the defending army. When the defender
// has a real choice about which units take it, the engine asks them to
// allocate; otherwise the damage applies automatically in array order.
func (s *TurnService) settleDamage(game *model.Game, action dragondice.ActionKind, defPlayer string, defKind dragondice.ArmyKind, damage int, outcome map[string]any) error {
	defArmy, err := game.State.Army(defPlayer, defKind)
	if err != nil {
		return err
	}
	if damage > 0 && len(defArmy.Units) > 1 && damage < armyHealth(defArmy) {
		hits, _ := outcome["hits"].(int)
		saves, _ := outcome["saves"].(int)
		game.Allocation = &model.PendingAllocation{
			Action:         action,
			DefenderPlayer: defPlayer,
			DefenderKind:   defKind,
			Damage:         damage,
			Hits:           hits,
			Saves:          saves,
		}
		game.State.Turn.ActionStep = dragondice.StepAwaitingDamageAllocation
		log.Info().Str("gameId", game.ID).Str("defender", defPlayer).Int("damage", damage).
			Msg("Unit damage allocation requested")
		s.broadcaster.BroadcastGameEvent(game.ID, EventDamageAllocationRequest, map[string]any{
			"player":  defPlayer,
			"army_id": dragondice.ArmyID(defPlayer, defKind),
			"damage":  damage,
			"units":   defArmy.Units,
		})
		s.broadcastPhase(game)
		return nil
	}

	res, err := game.State.ApplyDamage(defPlayer, defKind, damage, game.Areas)
	if err != nil {
		return err
	}
	s.finishDamage(game, action, defPlayer, defKind, res, outcome)
	return nil
}

// finishDamage folds a damage result into the action outcome and completes
// the action.
func (s *TurnService) finishDamage(game *model.Game, action dragondice.ActionKind, defPlayer string, defKind dragondice.ArmyKind, res *dragondice.DamageResult, outcome map[string]any) {
	outcome["damage_dealt"] = res.DamageApplied
	outcome["units_killed"] = res.Killed
	outcome["control_lost_at"] = res.ControlLostAt
	if action == dragondice.ActionMelee {
		defArmy, _ := game.State.Army(defPlayer, defKind)
		outcome["counter_attack_possible"] = defArmy != nil && len(defArmy.Units) > 0
	}
	s.completeAction(game, action, outcome)
}

func armyHealth(a *dragondice.Army) int {
	total := 0
	for _, u := range a.Units {
		total += u.Health
	}
	return total
}

// completeAction clears the action step, reports the outcome, and ends the
// march.
func (s *TurnService) completeAction(game *model.Game, kind dragondice.ActionKind, outcome map[string]any) {
	game.State.Turn.ActionStep = dragondice.ActionStepNone
	outcome["kind"] = string(kind)
	s.broadcaster.BroadcastGameEvent(game.ID, EventActionResolved, outcome)
	log.Info().Str("gameId", game.ID).Str("kind", string(kind)).Msg("Action resolved")
	s.advancePhase(game)
}

// advancePhase steps the turn machine forward, running phase-entry
// processing and chaining through phases that never wait for input.
func (s *TurnService) advancePhase(game *model.Game) {
	game.Maneuver = nil
	game.Attack = nil
	game.Allocation = nil
	rotated := game.State.Turn.AdvancePhase(len(game.State.Players))
	if rotated {
		log.Info().Str("gameId", game.ID).Str("player", game.State.CurrentPlayer().Name).
			Msg("Turn passed to next player")
		s.broadcaster.BroadcastGameEvent(game.ID, EventCurrentPlayerChanged, map[string]any{
			"player": game.State.CurrentPlayer().Name,
		})
	}
	s.handlePhaseEntry(game)
	s.broadcastPhase(game)
}

// handlePhaseEntry runs on entering a phase and auto-advances through the
// phases that need no player input.
func (s *TurnService) handlePhaseEntry(game *model.Game) {
	for {
		gs := game.State
		switch gs.Turn.Phase {
		case dragondice.PhaseExpireEffects:
			player := gs.CurrentPlayer().Name
			expired := gs.Effects.ExpireForPlayer(player)
			if len(expired) > 0 {
				log.Info().Str("gameId", game.ID).Int("count", len(expired)).
					Str("player", player).Msg("Effects expired")
				s.broadcaster.BroadcastGameEvent(game.ID, EventEffectsExpired, map[string]any{
					"player":  player,
					"expired": expired,
				})
			}
		case dragondice.PhaseEighthFace:
			// Eighth-face powers resolve here; the victory check runs in
			// case a capture earlier in the round settled the game.
			if winner, over := gs.CheckVictory(); over {
				s.finishGame(game, winner)
				return
			}
		case dragondice.PhaseDragonAttack:
			// No dragons in play yet; the phase passes through.
		default:
			return
		}
		gs.Turn.AdvancePhase(len(gs.Players))
	}
}

// finishGame marks the game over and announces the winner.
func (s *TurnService) finishGame(game *model.Game, winner string) {
	game.Status = model.StatusFinished
	game.Winner = winner
	now := time.Now()
	game.FinishedAt = &now
	log.Info().Str("gameId", game.ID).Str("winner", winner).Msg("Game over")
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameOver, map[string]any{
		"winner": winner,
	})
}

// broadcastPhase announces the new phase position and state change.
func (s *TurnService) broadcastPhase(game *model.Game) {
	ts := game.State.Turn
	s.broadcaster.BroadcastGameEvent(game.ID, EventPhaseChanged, map[string]any{
		"player":      game.State.CurrentPlayer().Name,
		"phase":       string(ts.Phase),
		"march_step":  string(ts.MarchStep),
		"action_step": string(ts.ActionStep),
		"display":     ts.Display(),
	})
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameStateChanged, nil)
}
