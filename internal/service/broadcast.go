package service

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}

// Event types emitted by the turn service. The WS hub relays them verbatim
// inside its event envelope.
const (
	EventGameStateChanged        = "game_state_changed"
	EventCurrentPlayerChanged    = "current_player_changed"
	EventPhaseChanged            = "phase_changed"
	EventCounterManeuverRequest  = "counter_maneuver_requested"
	EventManeuverRollsRequest    = "maneuver_rolls_requested"
	EventDirectionChoiceRequest  = "terrain_direction_choice_requested"
	EventManeuverResolved        = "maneuver_resolved"
	EventSaveRollRequested       = "save_roll_requested"
	EventDamageAllocationRequest = "unit_damage_allocation_requested"
	EventActionResolved          = "action_resolved"
	EventEffectsExpired          = "effects_expired"
	EventGameOver                = "game_over"
)
