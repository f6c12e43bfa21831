package handlers

import (
	"mines_arena/internal/repository"
	"mines_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HandlerConfig holds per-deployment game limits.
type HandlerConfig struct {
	MinStake int64
	MaxStake int64
}

type Handler struct {
	DB        *pgxpool.Pool
	Cfg       HandlerConfig
	RoundRepo *repository.RoundRepository
	Solo      *service.SoloService
}

func NewHandler(db *pgxpool.Pool, cfg HandlerConfig, rounds *repository.RoundRepository, solo *service.SoloService) *Handler {
	return &Handler{
		DB:        db,
		Cfg:       cfg,
		RoundRepo: rounds,
		Solo:      solo,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
