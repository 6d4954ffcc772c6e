package model

import (
	"time"

	"github.com/freeeve/dragondice/api/internal/area"
	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

// Game statuses.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Game is one running game: session metadata plus the live rules state.
// State is the single authoritative copy; nothing mirrors it.
type Game struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Winner     string     `json:"winner,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	State      *dragondice.GameState     `json:"-"`
	Maneuver   *dragondice.Maneuver      `json:"-"`
	Attack     *PendingAttack            `json:"-"`
	Allocation *PendingAllocation        `json:"-"`
	Areas      *area.Areas               `json:"-"`
	Resolver   dragondice.ActionResolver `json:"-"`
}

// PendingAttack carries a melee attack between the attacker's roll and the
// defender's save roll.
type PendingAttack struct {
	Hits           int
	AttackerArmyID string
	DefenderPlayer string
	DefenderKind   dragondice.ArmyKind
}

// PendingAllocation waits for the defender to spread incoming damage
// across their units. Hits and Saves carry the roll totals through to the
// final outcome report.
type PendingAllocation struct {
	Action         dragondice.ActionKind
	DefenderPlayer string
	DefenderKind   dragondice.ArmyKind
	Damage         int
	Hits           int
	Saves          int
}

// GameSummary is the list view of a game.
type GameSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner,omitempty"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary builds the list view of a game.
func (g *Game) Summary() GameSummary {
	s := GameSummary{
		ID:        g.ID,
		Name:      g.Name,
		Status:    g.Status,
		Winner:    g.Winner,
		CreatedAt: g.CreatedAt,
	}
	if g.State != nil {
		for _, p := range g.State.Players {
			s.Players = append(s.Players, p.Name)
		}
	}
	return s
}
