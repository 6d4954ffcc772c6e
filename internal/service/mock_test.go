package service

import (
	"context"
	"sync"
	"testing"

	"github.com/freeeve/dragondice/api/internal/model"
	"github.com/freeeve/dragondice/api/internal/repository/memory"
)

type recordedEvent struct {
	GameID string
	Type   string
	Data   any
}

// recordingBroadcaster captures events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID string, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{GameID: gameID, Type: eventType, Data: data})
}

func (b *recordingBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (b *recordingBroadcaster) last(eventType string) (recordedEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Type == eventType {
			return b.events[i], true
		}
	}
	return recordedEvent{}, false
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

func newTestServices() (*GameService, *TurnService, *recordingBroadcaster) {
	repo := memory.NewGameRepo()
	bc := &recordingBroadcaster{}
	turns := NewTurnService(repo, bc)
	games := NewGameService(repo, turns)
	return games, turns, bc
}

// createTestGame sets up a standard two-player game. Alice and Bob each
// field a home army, a campaign army at the frontier, and a horde at the
// other player's home.
func createTestGame(t *testing.T, games *GameService) *model.Game {
	t.Helper()
	game, err := games.CreateGame(context.Background(), CreateGameInput{
		Name: "test game",
		Players: []PlayerInput{
			{
				Name:        "Alice",
				HomeTerrain: "Coastland City",
				Home:        []UnitInput{{ID: "a1", Name: "Charioteer", Species: "Coral Elf", Health: 2}},
				Campaign: []UnitInput{
					{ID: "a2", Name: "Soldier", Species: "Coral Elf", Health: 2},
					{ID: "a3", Name: "Archer", Species: "Coral Elf", Health: 1},
				},
				Horde: []UnitInput{{ID: "a4", Name: "Raider", Species: "Coral Elf", Health: 1}},
			},
			{
				Name:        "Bob",
				HomeTerrain: "Highland Tower",
				Home:        []UnitInput{{ID: "b1", Name: "Footman", Species: "Dwarf", Health: 2}},
				Campaign: []UnitInput{
					{ID: "b2", Name: "Crossbowman", Species: "Dwarf", Health: 1},
				},
				Horde: []UnitInput{{ID: "b3", Name: "Mauler", Species: "Dwarf", Health: 1}},
			},
		},
		FrontierTerrain: "Flatland Temple",
		FrontierFace:    3,
		FirstPlayer:     "Alice",
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return game
}
