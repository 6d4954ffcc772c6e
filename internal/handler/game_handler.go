package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/dragondice/api/internal/service"
)

// GameHandler handles game lifecycle and query endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotEnough) || errors.Is(err, service.ErrDuplicateName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game.Summary())
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.ListGames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}, returning the full client snapshot.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.gameSvc.View(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.gameSvc.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetActingArmies handles GET /api/v1/games/{id}/acting-armies, listing
// the current player's non-empty armies.
func (h *GameHandler) GetActingArmies(w http.ResponseWriter, r *http.Request) {
	armies, err := h.gameSvc.AvailableActingArmies(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, armies)
}

// GetAvailableActions handles GET /api/v1/games/{id}/actions, listing the
// action kinds the acting army's terrain face offers.
func (h *GameHandler) GetAvailableActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.gameSvc.AvailableActions(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}
