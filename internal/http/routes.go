package http

import (
	"os"
	"strconv"
	"time"

	"mines_arena/internal/config"
	"mines_arena/internal/http/handlers"
	"mines_arena/internal/http/middleware"
	"mines_arena/internal/ledger"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"
	"mines_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) {
	roundRepo := repository.NewRoundRepository(db)
	nonces := service.NewNonceSource(roundRepo)
	settler := ledger.NewPgLedger(db)

	solo := service.NewSoloService(settler, roundRepo, nonces, cfg.GameConfig(),
		cfg.MinStake, cfg.MaxStake)

	h := handlers.NewHandler(db, handlers.HandlerConfig{
		MinStake: cfg.MinStake,
		MaxStake: cfg.MaxStake,
	}, roundRepo, solo)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 10
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	gameRL := middleware.GameRateLimit(cfg.GameRateLimit,
		time.Duration(cfg.GameRateWindow)*time.Second)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	{
		// Account
		v1.GET("/me", middleware.JWT(), h.Me)
		v1.GET("/me/transactions", middleware.JWT(), h.MyTransactions)

		// Solo rounds
		v1.POST("/game/mines/start", middleware.JWT(), gameRL, h.MinesStart)
		v1.POST("/game/mines/reveal", middleware.JWT(), gameRL, h.MinesReveal)
		v1.POST("/game/mines/cashout", middleware.JWT(), h.MinesCashOut)
		v1.GET("/game/mines/state", middleware.JWT(), h.MinesState)
		v1.GET("/game/mines/info", h.MinesInfo)
		v1.GET("/game/mines/history", middleware.JWT(), h.MinesHistory)

		// Fairness disclosure and settlement retry
		v1.GET("/rounds/:id/fairness", h.RoundFairness)
		v1.POST("/rounds/:id/settle-retry", middleware.JWT(), h.MinesRetrySettlement)
	}

	// Public verification runs without redis; a local limiter keeps it from
	// being hammered.
	r.GET("/verify", middleware.SimpleRateLimit(30, time.Minute), h.Verify)

	// WebSocket duels
	hub := ws.NewHub(ws.Options{
		MinStake:    cfg.MinStake,
		MaxStake:    cfg.MaxStake,
		TurnTimeout: cfg.TurnTimeout,
		BotDelay:    cfg.BotDelay,
		GameConfig:  cfg.GameConfig(),
	}, settler, roundRepo, nonces)
	hub.StartCleanup()
	r.GET("/ws", ws.HandleWS(hub))
}
