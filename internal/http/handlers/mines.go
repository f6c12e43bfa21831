package handlers

import (
	"errors"
	"net/http"

	"mines_arena/internal/fair"
	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"

	"github.com/gin-gonic/gin"
)

// MinesStartRequest represents the start round request. Board-dependent
// bounds (bomb count, tile range) belong to the engine config, so binding
// only checks shape here.
type MinesStartRequest struct {
	Stake      int64  `json:"stake" binding:"required,min=1"`
	BombCount  int    `json:"bomb_count" binding:"required,min=1"`
	ClientSeed string `json:"client_seed"`
}

// MinesRevealRequest represents the reveal tile request
type MinesRevealRequest struct {
	Tile *int `json:"tile" binding:"required"`
}

// MinesStart opens a new solo round and returns the commitment with the
// initial state.
func (h *Handler) MinesStart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req MinesStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	r, err := h.Solo.StartRound(ctx, userID, req.Stake, req.BombCount, req.ClientSeed)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, r.State())
}

// MinesReveal opens a tile in the active round.
func (h *Handler) MinesReveal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req MinesRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Tile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tile is required"})
		return
	}

	ctx := c.Request.Context()
	hitBomb, r, err := h.Solo.Reveal(ctx, userID, *req.Tile)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	state := r.State()
	state["hit_bomb"] = hitBomb
	c.JSON(http.StatusOK, state)
}

// MinesCashOut locks in the current multiplier.
func (h *Handler) MinesCashOut(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()
	r, err := h.Solo.CashOut(ctx, userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, r.State())
}

// MinesState returns the caller's active round, if any.
func (h *Handler) MinesState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	r := h.Solo.ActiveRound(userID)
	if r == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	state := r.State()
	state["active"] = true
	c.JSON(http.StatusOK, state)
}

// MinesInfo returns board configuration and full multiplier tables.
func (h *Handler) MinesInfo(c *gin.Context) {
	cfg := game.DefaultConfig()

	tables := make(map[int][]float64)
	for bombs := 1; bombs <= cfg.MaxBombs(); bombs++ {
		tables[bombs] = fair.MultiplierTable(bombs, cfg.BoardSize, cfg.HouseEdge)
	}

	c.JSON(http.StatusOK, gin.H{
		"board_size":        cfg.BoardSize,
		"min_bombs":         1,
		"max_bombs":         cfg.MaxBombs(),
		"house_edge":        cfg.HouseEdge,
		"min_stake":         h.Cfg.MinStake,
		"max_stake":         h.Cfg.MaxStake,
		"multiplier_tables": tables,
	})
}

// MinesHistory lists the caller's recent finished rounds.
func (h *Handler) MinesHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	rounds, err := h.Solo.History(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// MinesRetrySettlement replays a failed payout transfer for the caller's
// own round.
func (h *Handler) MinesRetrySettlement(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	roundID := c.Param("id")

	err := h.Solo.RetrySettlement(c.Request.Context(), userID, roundID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// statusFor maps engine and service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotRoundOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNoActiveRound),
		errors.Is(err, service.ErrActiveRoundExists),
		errors.Is(err, service.ErrStakeOutOfRange),
		errors.Is(err, service.ErrSettlementNotFailed),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, game.ErrInvalidStake),
		errors.Is(err, game.ErrInvalidBombCount),
		errors.Is(err, game.ErrInvalidTile),
		errors.Is(err, game.ErrTileAlreadyRevealed),
		errors.Is(err, game.ErrNoRevealsYet),
		errors.Is(err, game.ErrRoundNotPlaying):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
