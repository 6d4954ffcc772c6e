// Package memory is the in-process GameRepository. Games live for the
// lifetime of the server; there is no persistence layer behind it.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/freeeve/dragondice/api/internal/model"
	"github.com/freeeve/dragondice/api/internal/repository"
)

// GameRepo stores games in a map guarded by a RWMutex. The turn service
// serializes mutations per game on top of this; the repo lock only guards
// the map itself.
type GameRepo struct {
	mu    sync.RWMutex
	games map[string]*model.Game
}

// NewGameRepo returns an empty repository.
func NewGameRepo() *GameRepo {
	return &GameRepo{games: map[string]*model.Game{}}
}

// Create stores a new game.
func (r *GameRepo) Create(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = game
	return nil
}

// FindByID returns the stored game.
func (r *GameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

// List returns summaries of every game, newest first.
func (r *GameRepo) List(_ context.Context) ([]model.GameSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.GameSummary, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a game.
func (r *GameRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.games, id)
	return nil
}
