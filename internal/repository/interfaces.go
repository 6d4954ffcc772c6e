package repository

import (
	"context"
	"errors"

	"github.com/freeeve/dragondice/api/internal/model"
)

// ErrNotFound is returned when a looked-up game does not exist.
var ErrNotFound = errors.New("game not found")

// GameRepository defines game storage operations. The in-memory
// implementation backs a single process; a persistent backend can slot in
// behind the same interface.
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	List(ctx context.Context) ([]model.GameSummary, error)
	Delete(ctx context.Context, id string) error
}
