package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mines_arena/internal/game"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"

	"github.com/gin-gonic/gin"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		return c
	}

	c := newCtx()
	if _, ok := getUserID(c); ok {
		t.Error("empty context reported a user")
	}

	c = newCtx()
	c.Set("user_id", int64(42))
	if id, ok := getUserID(c); !ok || id != 42 {
		t.Errorf("getUserID(int64) = %d, %v, want 42, true", id, ok)
	}

	c = newCtx()
	c.Set("user_id", float64(7))
	if id, ok := getUserID(c); !ok || id != 7 {
		t.Errorf("getUserID(float64) = %d, %v, want 7, true", id, ok)
	}

	c = newCtx()
	c.Set("user_id", "42")
	if _, ok := getUserID(c); ok {
		t.Error("string user_id should not be accepted")
	}
}

// Bomb count bounds depend on the configured board size, so the request
// binding must not cap them at any particular board.
func TestStartRequestBindingLeavesBoardBoundsToConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/start", func(c *gin.Context) {
		var req MinesStartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bomb_count": req.BombCount})
	})

	body := `{"stake":100,"bomb_count":30}`
	req := httptest.NewRequest(http.MethodPost, "/start", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("bomb_count above 24 rejected at binding: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestStatusForMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"round not found", repository.ErrRoundNotFound, http.StatusNotFound},
		{"not round owner", service.ErrNotRoundOwner, http.StatusForbidden},
		{"settlement not failed", service.ErrSettlementNotFailed, http.StatusBadRequest},
		{"invalid tile", game.ErrInvalidTile, http.StatusBadRequest},
		{"invalid bomb count", game.ErrInvalidBombCount, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
