package handlers

import (
	"net/http"
	"strconv"

	"mines_arena/internal/fair"
	"mines_arena/internal/game"
	"mines_arena/internal/repository"

	"github.com/gin-gonic/gin"
)

// RoundFairness discloses the audit record of a finished round. Records only
// exist for terminated rounds, so an in-flight round can never leak its seed
// through here.
func (h *Handler) RoundFairness(c *gin.Context) {
	roundID := c.Param("id")

	rec, err := h.Solo.Fairness(c.Request.Context(), roundID)
	if err != nil {
		if err == repository.ErrRoundNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	bombs, err := fair.Bombs(rec.ServerSeed, rec.ClientSeed, rec.Nonce, game.DefaultConfig().BoardSize, rec.BombCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "layout derivation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":            rec,
		"derived_bombs":    bombs,
		"commitment_check": fair.Commitment(rec.ServerSeed) == rec.ServerSeedHash,
	})
}

// Verify is the public auditor endpoint: given seed material it re-derives
// the permutation and bomb set. No auth, no state.
func (h *Handler) Verify(c *gin.Context) {
	serverSeed := c.Query("server_seed")
	clientSeed := c.Query("client_seed")

	nonce, err := strconv.ParseInt(c.Query("nonce"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nonce must be an integer"})
		return
	}

	boardSize := game.DefaultConfig().BoardSize
	if v := c.Query("board_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			boardSize = n
		}
	}

	bombCount, err := strconv.Atoi(c.Query("bomb_count"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bomb_count must be an integer"})
		return
	}

	perm, err := fair.Shuffle(serverSeed, clientSeed, nonce, boardSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bombs, err := fair.Bombs(serverSeed, clientSeed, nonce, boardSize, bombCount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commitment":  fair.Commitment(serverSeed),
		"permutation": perm,
		"bombs":       bombs,
	})
}
