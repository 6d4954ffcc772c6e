package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/dragondice/api/internal/repository"
	"github.com/freeeve/dragondice/api/internal/service"
	"github.com/freeeve/dragondice/api/pkg/dragondice"
)

// TurnHandler exposes the turn commands over HTTP. Every endpoint takes
// the acting player's name in the body; the service decides whether that
// player may issue the command right now.
type TurnHandler struct {
	turnSvc *service.TurnService
}

// NewTurnHandler creates a TurnHandler.
func NewTurnHandler(turnSvc *service.TurnService) *TurnHandler {
	return &TurnHandler{turnSvc: turnSvc}
}

// writeTurnError maps the turn command errors onto HTTP status codes.
func writeTurnError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotYourTurn):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrGameFinished),
		errors.Is(err, service.ErrWrongStep),
		errors.Is(err, service.ErrNoPendingManeuver),
		errors.Is(err, service.ErrActionNotAllowed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrBadAllocation):
		status = http.StatusBadRequest
	default:
		var (
			badArmy    *dragondice.InvalidArmyIDError
			noPlayer   *dragondice.PlayerNotFoundError
			noArmy     *dragondice.ArmyNotFoundError
			noTerrain  *dragondice.TerrainNotFoundError
			noUnit     *dragondice.UnitNotFoundError
			notAllowed *dragondice.ManeuverInputError
		)
		if errors.As(err, &badArmy) || errors.As(err, &noPlayer) ||
			errors.As(err, &noArmy) || errors.As(err, &noTerrain) ||
			errors.As(err, &noUnit) || errors.As(err, &notAllowed) {
			status = http.StatusBadRequest
		}
	}
	writeError(w, status, err.Error())
}

// ChooseActingArmy handles POST /api/v1/games/{id}/march/acting-army
func (h *TurnHandler) ChooseActingArmy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
		ArmyID string `json:"army_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.ChooseActingArmy(r.Context(), r.PathValue("id"), req.Player, req.ArmyID); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// DecideManeuver handles POST /api/v1/games/{id}/march/maneuver-decision
func (h *TurnHandler) DecideManeuver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player   string `json:"player"`
		Maneuver bool   `json:"maneuver"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.DecideManeuver(r.Context(), r.PathValue("id"), req.Player, req.Maneuver); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitCounterDecision handles POST /api/v1/games/{id}/march/counter-decision
func (h *TurnHandler) SubmitCounterDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player  string `json:"player"`
		Counter bool   `json:"counter"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitCounterManeuverDecision(r.Context(), r.PathValue("id"), req.Player, req.Counter); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitManeuverRolls handles POST /api/v1/games/{id}/march/maneuver-rolls
func (h *TurnHandler) SubmitManeuverRolls(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManeuverResults string `json:"maneuver_results"`
		CounterResults  string `json:"counter_results"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitManeuverRollResults(r.Context(), r.PathValue("id"), req.ManeuverResults, req.CounterResults); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitDirection handles POST /api/v1/games/{id}/march/direction
func (h *TurnHandler) SubmitDirection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player    string `json:"player"`
		Direction string `json:"direction"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dir := dragondice.Direction(req.Direction)
	if dir != dragondice.DirectionUp && dir != dragondice.DirectionDown {
		writeError(w, http.StatusBadRequest, "direction must be UP or DOWN")
		return
	}
	if err := h.turnSvc.SubmitTerrainDirectionChoice(r.Context(), r.PathValue("id"), req.Player, dir); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// AbandonManeuver handles POST /api/v1/games/{id}/march/abandon-maneuver
func (h *TurnHandler) AbandonManeuver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.AbandonManeuver(r.Context(), r.PathValue("id"), req.Player); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// DecideAction handles POST /api/v1/games/{id}/march/action-decision
func (h *TurnHandler) DecideAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player     string `json:"player"`
		TakeAction bool   `json:"take_action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.DecideAction(r.Context(), r.PathValue("id"), req.Player, req.TakeAction); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SelectAction handles POST /api/v1/games/{id}/march/action
func (h *TurnHandler) SelectAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
		Kind   string `json:"kind"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SelectAction(r.Context(), r.PathValue("id"), req.Player, dragondice.ActionKind(req.Kind)); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// rollRequest is the shared body for the roll submission endpoints.
type rollRequest struct {
	Player  string `json:"player"`
	Results string `json:"results"`
}

// SubmitMelee handles POST /api/v1/games/{id}/rolls/melee
func (h *TurnHandler) SubmitMelee(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitMeleeResults(r.Context(), r.PathValue("id"), req.Player, req.Results); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitSaves handles POST /api/v1/games/{id}/rolls/saves
func (h *TurnHandler) SubmitSaves(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitSaveResults(r.Context(), r.PathValue("id"), req.Player, req.Results); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitDamageAllocation handles POST /api/v1/games/{id}/rolls/damage-allocation.
// Allocations map unit IDs to damage amounts; an empty map asks for the
// automatic array-order application.
func (h *TurnHandler) SubmitDamageAllocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player      string         `json:"player"`
		Allocations map[string]int `json:"allocations"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitDamageAllocation(r.Context(), r.PathValue("id"), req.Player, req.Allocations); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitMissile handles POST /api/v1/games/{id}/rolls/missile
func (h *TurnHandler) SubmitMissile(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitMissileResults(r.Context(), r.PathValue("id"), req.Player, req.Results); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// SubmitMagic handles POST /api/v1/games/{id}/rolls/magic
func (h *TurnHandler) SubmitMagic(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SubmitMagicResults(r.Context(), r.PathValue("id"), req.Player, req.Results); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// AdvancePhase handles POST /api/v1/games/{id}/turn/advance
func (h *TurnHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.AdvancePhase(r.Context(), r.PathValue("id"), req.Player); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "advanced"})
}

// SkipMarch handles POST /api/v1/games/{id}/turn/skip-march
func (h *TurnHandler) SkipMarch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.turnSvc.SkipToNextPhaseGroup(r.Context(), r.PathValue("id"), req.Player); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
}
