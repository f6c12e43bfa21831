package game

import (
	"sync"
	"time"

	"mines_arena/internal/fair"
)

// Status of a round's state machine.
type Status string

const (
	StatusBetting  Status = "betting"
	StatusPlaying  Status = "playing"
	StatusCoinflip Status = "coinflip_pending"
	StatusFinished Status = "finished"
)

// SoloRound is a single-player round: bet, reveal tiles, cash out before a
// bomb turns up. The layout is bound at Start and the server seed stays
// secret until the round finishes.
type SoloRound struct {
	ID         string
	UserID     int64
	ServerSeed string
	ClientSeed string
	Nonce      int64

	Stake     int64
	BombCount int

	cfg      Config
	perm     []int
	bombs    map[int]bool
	revealed []bool

	SafeRevealed int
	Multiplier   float64
	WinAmount    int64
	Busted       bool
	Status       Status

	CreatedAt  time.Time
	FinishedAt *time.Time

	mu sync.RWMutex
}

// NewSoloRound allocates a round in the betting state. Seed material is
// validated up front: a round with unusable seeds must never be created.
func NewSoloRound(id string, userID int64, serverSeed, clientSeed string, nonce int64, cfg Config) (*SoloRound, error) {
	if serverSeed == "" {
		return nil, fair.ErrMissingServerSeed
	}
	if clientSeed == "" {
		return nil, fair.ErrMissingClientSeed
	}
	if nonce < 0 {
		return nil, fair.ErrInvalidNonce
	}

	return &SoloRound{
		ID:         id,
		UserID:     userID,
		ServerSeed: serverSeed,
		ClientSeed: clientSeed,
		Nonce:      nonce,
		cfg:        cfg,
		Status:     StatusBetting,
		CreatedAt:  time.Now(),
	}, nil
}

// Start binds stake and bomb settings and derives the layout.
func (r *SoloRound) Start(stake int64, bombCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != StatusBetting {
		return ErrRoundNotBetting
	}
	if stake <= 0 {
		return ErrInvalidStake
	}
	if bombCount < 1 || bombCount > r.cfg.MaxBombs() {
		return ErrInvalidBombCount
	}

	perm, err := fair.Shuffle(r.ServerSeed, r.ClientSeed, r.Nonce, r.cfg.BoardSize)
	if err != nil {
		return err
	}

	r.Stake = stake
	r.BombCount = bombCount
	r.perm = perm
	r.bombs = make(map[int]bool, bombCount)
	for _, tile := range perm[:bombCount] {
		r.bombs[tile] = true
	}
	r.revealed = make([]bool, r.cfg.BoardSize)
	r.Multiplier = r.cfg.HouseEdge
	r.Status = StatusPlaying
	return nil
}

// Reveal uncovers a tile. A bomb ends the round with payout 0; clearing the
// last safe tile ends it with a win at the current multiplier. Rejected moves
// leave the round unchanged.
func (r *SoloRound) Reveal(tile int) (hitBomb bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != StatusPlaying {
		return false, ErrRoundNotPlaying
	}
	if tile < 0 || tile >= r.cfg.BoardSize {
		return false, ErrInvalidTile
	}
	if r.revealed[tile] {
		return false, ErrTileAlreadyRevealed
	}

	if r.bombs[tile] {
		r.Busted = true
		r.WinAmount = 0
		r.finish()
		return true, nil
	}

	r.revealed[tile] = true
	r.SafeRevealed++
	r.Multiplier = fair.Multiplier(r.SafeRevealed, r.BombCount, r.cfg.BoardSize, r.cfg.HouseEdge)

	if r.SafeRevealed == r.cfg.BoardSize-r.BombCount {
		// Board cleared: the maximum-payout terminal case, including the
		// single-safe-tile jackpot at bombCount = boardSize-1.
		r.WinAmount = int64(float64(r.Stake) * r.Multiplier)
		r.finish()
	}

	return false, nil
}

// CashOut ends the round at the current multiplier. Requires at least one
// safe reveal.
func (r *SoloRound) CashOut() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != StatusPlaying {
		return 0, ErrRoundNotPlaying
	}
	if r.SafeRevealed < 1 {
		return 0, ErrNoRevealsYet
	}

	r.WinAmount = int64(float64(r.Stake) * r.Multiplier)
	r.finish()
	return r.WinAmount, nil
}

// Apply dispatches a typed event onto the round.
func (r *SoloRound) Apply(ev Event) error {
	switch e := ev.(type) {
	case StartRound:
		return r.Start(e.Stake, e.BombCount)
	case Reveal:
		_, err := r.Reveal(e.Tile)
		return err
	case CashOut:
		_, err := r.CashOut()
		return err
	default:
		return ErrUnsupportedEvent
	}
}

// finish is called with the lock held.
func (r *SoloRound) finish() {
	for i := range r.revealed {
		r.revealed[i] = true
	}
	now := time.Now()
	r.FinishedAt = &now
	r.Status = StatusFinished
}

// IsActive reports whether the round still accepts moves.
func (r *SoloRound) IsActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status == StatusPlaying || r.Status == StatusBetting
}

// Bombs returns the bomb layout in derivation order; nil until the round is
// finished so the layout can never leak mid-round.
func (r *SoloRound) Bombs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Status != StatusFinished || r.perm == nil {
		return nil
	}
	bombs := make([]int, r.BombCount)
	copy(bombs, r.perm[:r.BombCount])
	return bombs
}

// NextMultiplier returns the multiplier the round would reach if one more
// safe tile were revealed.
func (r *SoloRound) NextMultiplier() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Status != StatusPlaying || r.SafeRevealed >= r.cfg.BoardSize-r.BombCount {
		return r.Multiplier
	}
	return fair.Multiplier(r.SafeRevealed+1, r.BombCount, r.cfg.BoardSize, r.cfg.HouseEdge)
}

// State returns the client-safe view of the round. Seed material beyond the
// commitment is included only once the round has finished.
func (r *SoloRound) State() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revealed := make([]int, 0, r.SafeRevealed)
	for tile, ok := range r.revealed {
		if ok && !r.bombs[tile] {
			revealed = append(revealed, tile)
		}
	}

	state := map[string]interface{}{
		"id":            r.ID,
		"status":        string(r.Status),
		"board_size":    r.cfg.BoardSize,
		"bomb_count":    r.BombCount,
		"stake":         r.Stake,
		"safe_revealed": r.SafeRevealed,
		"revealed":      revealed,
		"multiplier":    r.Multiplier,
		"win_amount":    r.WinAmount,
		"client_seed":   r.ClientSeed,
		"nonce":         r.Nonce,
		"commitment":    fair.Commitment(r.ServerSeed),
	}

	if r.Status == StatusFinished {
		state["server_seed"] = r.ServerSeed
		state["busted"] = r.Busted
		bombs := make([]int, r.BombCount)
		copy(bombs, r.perm[:r.BombCount])
		state["bombs"] = bombs
	}

	return state
}
