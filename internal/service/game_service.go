package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/dragondice/api/internal/area"
	"github.com/freeeve/dragondice/api/internal/model"
	"github.com/freeeve/dragondice/api/internal/repository"
	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrNotEnough     = errors.New("need at least 2 players")
	ErrDuplicateName = errors.New("duplicate player name")
)

// GameService handles game lifecycle operations.
type GameService struct {
	gameRepo repository.GameRepository
	turns    *TurnService
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, turns *TurnService) *GameService {
	return &GameService{gameRepo: gameRepo, turns: turns}
}

// UnitInput describes one unit in a starting army.
type UnitInput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Species  string   `json:"species"`
	Elements []string `json:"elements,omitempty"`
	Health   int      `json:"health"`
}

// PlayerInput describes one player's starting forces.
type PlayerInput struct {
	Name        string      `json:"name"`
	HomeTerrain string      `json:"home_terrain"`
	HordeTarget string      `json:"horde_target,omitempty"`
	Home        []UnitInput `json:"home"`
	Campaign    []UnitInput `json:"campaign"`
	Horde       []UnitInput `json:"horde"`
}

// CreateGameInput is the full game setup. The frontier face and first
// player carry the results of the starting distance rolls made at the
// table.
type CreateGameInput struct {
	Name            string        `json:"name"`
	Players         []PlayerInput `json:"players"`
	FrontierTerrain string        `json:"frontier_terrain"`
	FrontierFace    int           `json:"frontier_face"`
	FirstPlayer     string        `json:"first_player"`
}

// CreateGame sets up a game and runs it forward to the first phase that
// waits for input.
func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*model.Game, error) {
	if len(in.Players) < 2 {
		return nil, ErrNotEnough
	}
	seen := map[string]bool{}
	setup := dragondice.Setup{
		FrontierTerrain: in.FrontierTerrain,
		FrontierFace:    in.FrontierFace,
		FirstPlayer:     in.FirstPlayer,
	}
	for _, p := range in.Players {
		if seen[p.Name] {
			return nil, ErrDuplicateName
		}
		seen[p.Name] = true
		setup.Players = append(setup.Players, dragondice.PlayerSetup{
			Name:        p.Name,
			HomeTerrain: p.HomeTerrain,
			HordeTarget: p.HordeTarget,
			Home:        toUnits(p.Home),
			Campaign:    toUnits(p.Campaign),
			Horde:       toUnits(p.Horde),
		})
	}

	state, err := dragondice.NewGameState(setup)
	if err != nil {
		return nil, fmt.Errorf("set up game: %w", err)
	}
	game := &model.Game{
		ID:        newGameID(),
		Name:      in.Name,
		Status:    model.StatusActive,
		CreatedAt: time.Now(),
		State:     state,
		Areas:     area.New(),
		Resolver:  dragondice.NewIconResolver(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("store game: %w", err)
	}
	log.Info().Str("gameId", game.ID).Str("name", game.Name).
		Int("players", len(in.Players)).Msg("Game created")

	if err := s.turns.BeginGame(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("begin game: %w", err)
	}
	return game, nil
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, id string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return game, err
}

// ListGames returns summaries of all games.
func (s *GameService) ListGames(ctx context.Context) ([]model.GameSummary, error) {
	return s.gameRepo.List(ctx)
}

// DeleteGame removes a game.
func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	err := s.gameRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGameNotFound
	}
	if err == nil {
		log.Info().Str("gameId", id).Msg("Game deleted")
	}
	return err
}

func toUnits(in []UnitInput) []dragondice.Unit {
	out := make([]dragondice.Unit, 0, len(in))
	for i, u := range in {
		id := u.ID
		if id == "" {
			id = fmt.Sprintf("u%d", i+1)
		}
		out = append(out, dragondice.Unit{
			ID:        id,
			Name:      u.Name,
			Species:   u.Species,
			Elements:  u.Elements,
			Health:    u.Health,
			MaxHealth: u.Health,
		})
	}
	return out
}

func newGameID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("g%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
