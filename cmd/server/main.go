package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/dragondice/api/internal/config"
	"github.com/freeeve/dragondice/api/internal/handler"
	"github.com/freeeve/dragondice/api/internal/logger"
	"github.com/freeeve/dragondice/api/internal/middleware"
	"github.com/freeeve/dragondice/api/internal/repository/memory"
	"github.com/freeeve/dragondice/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	logger.Init(cfg.LogLevel)

	// Games live in memory; the game state is the single source of truth
	// and is not persisted across restarts.
	gameRepo := memory.NewGameRepo()

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	turnSvc := service.NewTurnService(gameRepo, wsHub)
	gameSvc := service.NewGameService(gameRepo, turnSvc)

	// Handlers
	gameHandler := handler.NewGameHandler(gameSvc)
	turnHandler := handler.NewTurnHandler(turnSvc)
	wsHandler := handler.NewWSHandler(wsHub)

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	api := http.NewServeMux()
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("DELETE /games/{id}", gameHandler.DeleteGame)
	api.HandleFunc("GET /games/{id}/acting-armies", gameHandler.GetActingArmies)
	api.HandleFunc("GET /games/{id}/actions", gameHandler.GetAvailableActions)
	api.HandleFunc("POST /games/{id}/turn/advance", turnHandler.AdvancePhase)
	api.HandleFunc("POST /games/{id}/turn/skip-march", turnHandler.SkipMarch)
	api.HandleFunc("POST /games/{id}/march/acting-army", turnHandler.ChooseActingArmy)
	api.HandleFunc("POST /games/{id}/march/maneuver-decision", turnHandler.DecideManeuver)
	api.HandleFunc("POST /games/{id}/march/counter-decision", turnHandler.SubmitCounterDecision)
	api.HandleFunc("POST /games/{id}/march/maneuver-rolls", turnHandler.SubmitManeuverRolls)
	api.HandleFunc("POST /games/{id}/march/direction", turnHandler.SubmitDirection)
	api.HandleFunc("POST /games/{id}/march/abandon-maneuver", turnHandler.AbandonManeuver)
	api.HandleFunc("POST /games/{id}/march/action-decision", turnHandler.DecideAction)
	api.HandleFunc("POST /games/{id}/march/action", turnHandler.SelectAction)
	api.HandleFunc("POST /games/{id}/rolls/melee", turnHandler.SubmitMelee)
	api.HandleFunc("POST /games/{id}/rolls/saves", turnHandler.SubmitSaves)
	api.HandleFunc("POST /games/{id}/rolls/damage-allocation", turnHandler.SubmitDamageAllocation)
	api.HandleFunc("POST /games/{id}/rolls/missile", turnHandler.SubmitMissile)
	api.HandleFunc("POST /games/{id}/rolls/magic", turnHandler.SubmitMagic)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	// WebSocket (no JSON middleware; the upgrade needs the raw connection)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS(cfg.AllowedOrigins), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
