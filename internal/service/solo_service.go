package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"mines_arena/internal/domain"
	"mines_arena/internal/fair"
	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
	"mines_arena/internal/logger"

	"github.com/google/uuid"
)

var (
	ErrActiveRoundExists   = errors.New("you already have an active round")
	ErrNoActiveRound       = errors.New("no active round")
	ErrStakeOutOfRange     = errors.New("stake out of range")
	ErrSettlementNotFailed = errors.New("settlement is not in failed state")
	ErrNotRoundOwner       = errors.New("round belongs to another user")
)

// roundStore is the persistence surface the solo service needs from the
// rounds table.
type roundStore interface {
	Create(ctx context.Context, rec *domain.RoundRecord) error
	GetByID(ctx context.Context, id string) (*domain.RoundRecord, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.RoundRecord, error)
	MarkSettlement(ctx context.Context, id string, status domain.SettlementStatus) error
	ClaimSettlementRetry(ctx context.Context, id string) (bool, error)
}

// SoloService manages active solo rounds in memory and drives the stake
// reserve / payout settle cycle around the engine.
type SoloService struct {
	ledger ledger.Settler
	rounds roundStore
	nonces *NonceSource
	cfg    game.Config

	minStake int64
	maxStake int64

	mu     sync.RWMutex
	active map[int64]*game.SoloRound // userID -> round
}

func NewSoloService(l ledger.Settler, rounds roundStore, nonces *NonceSource, cfg game.Config, minStake, maxStake int64) *SoloService {
	s := &SoloService{
		ledger:   l,
		rounds:   rounds,
		nonces:   nonces,
		cfg:      cfg,
		minStake: minStake,
		maxStake: maxStake,
		active:   make(map[int64]*game.SoloRound),
	}

	go s.cleanupAbandonedRounds()

	return s
}

// StartRound reserves the stake, draws a fresh server seed and binds the
// layout. The commitment goes back to the client before any tile state does.
func (s *SoloService) StartRound(ctx context.Context, userID, stake int64, bombCount int, clientSeed string) (*game.SoloRound, error) {
	if stake < s.minStake || stake > s.maxStake {
		return nil, ErrStakeOutOfRange
	}
	if bombCount < 1 || bombCount > s.cfg.MaxBombs() {
		return nil, game.ErrInvalidBombCount
	}
	if clientSeed == "" {
		clientSeed = fair.DefaultClientSeed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.active[userID]; ok && existing.IsActive() {
		return nil, ErrActiveRoundExists
	}

	nonce, err := s.nonces.Next(ctx, userID)
	if err != nil {
		return nil, err
	}
	serverSeed, err := fair.NewServerSeed()
	if err != nil {
		return nil, err
	}

	roundID := uuid.New().String()[:8]
	r, err := game.NewSoloRound(roundID, userID, serverSeed, clientSeed, nonce, s.cfg)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Reserve(ctx, userID, stake); err != nil {
		return nil, err
	}
	if err := r.Start(stake, bombCount); err != nil {
		// Stake validation passed above, so this is unreachable in practice;
		// hand the stake back if it ever fires.
		_ = s.ledger.Settle(ctx, ledger.Request{RoundID: roundID, UserID: userID, Stake: stake, Payout: stake})
		return nil, err
	}

	s.active[userID] = r
	roundsStarted.WithLabelValues(string(domain.RoundModeSolo)).Inc()
	return r, nil
}

// ActiveRound returns the user's in-flight round, nil when none.
func (s *SoloService) ActiveRound(userID int64) *game.SoloRound {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.active[userID]
	if !ok || !r.IsActive() {
		return nil
	}
	return r
}

// Reveal opens a tile in the user's active round and settles on termination.
func (s *SoloService) Reveal(ctx context.Context, userID int64, tile int) (hitBomb bool, r *game.SoloRound, err error) {
	s.mu.RLock()
	r, ok := s.active[userID]
	s.mu.RUnlock()
	if !ok || !r.IsActive() {
		return false, nil, ErrNoActiveRound
	}

	hitBomb, err = r.Reveal(tile)
	if err != nil {
		return false, r, err
	}

	if !r.IsActive() {
		s.finish(ctx, r)
	}
	return hitBomb, r, nil
}

// CashOut locks in the current multiplier and settles the payout.
func (s *SoloService) CashOut(ctx context.Context, userID int64) (*game.SoloRound, error) {
	s.mu.RLock()
	r, ok := s.active[userID]
	s.mu.RUnlock()
	if !ok || !r.IsActive() {
		return nil, ErrNoActiveRound
	}

	if _, err := r.CashOut(); err != nil {
		return r, err
	}

	s.finish(ctx, r)
	return r, nil
}

// Fairness returns the audit record of a finished round: seeds, nonce and
// everything needed to re-derive the layout offline.
func (s *SoloService) Fairness(ctx context.Context, roundID string) (*domain.RoundRecord, error) {
	return s.rounds.GetByID(ctx, roundID)
}

// History returns the user's most recent finished rounds.
func (s *SoloService) History(ctx context.Context, userID int64, limit int) ([]*domain.RoundRecord, error) {
	return s.rounds.ListByUser(ctx, userID, limit)
}

// RetrySettlement replays a failed payout transfer from the stored record.
// Only the round's owner may retry, and the failed->pending claim in the
// store lets exactly one concurrent retry reach the ledger. The round
// outcome is immutable; only the transfer state changes.
func (s *SoloService) RetrySettlement(ctx context.Context, userID int64, roundID string) error {
	rec, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return ErrNotRoundOwner
	}
	if rec.Settlement != domain.SettlementFailed {
		return ErrSettlementNotFailed
	}

	claimed, err := s.rounds.ClaimSettlementRetry(ctx, roundID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrSettlementNotFailed
	}

	if err := s.ledger.Settle(ctx, ledger.Request{
		RoundID:    rec.ID,
		UserID:     rec.UserID,
		Stake:      rec.Stake,
		Payout:     rec.Payout,
		ServerSeed: rec.ServerSeed,
		ClientSeed: rec.ClientSeed,
		Nonce:      rec.Nonce,
	}); err != nil {
		settlementFailures.Inc()
		if markErr := s.rounds.MarkSettlement(ctx, roundID, domain.SettlementFailed); markErr != nil {
			logger.Error("mark settlement", "round_id", roundID, "err", markErr)
		}
		return err
	}

	return s.rounds.MarkSettlement(ctx, roundID, domain.SettlementConfirmed)
}

// finish persists the round record and runs the single settle call. A
// settlement failure is recorded and retried later; the round stays final.
func (s *SoloService) finish(ctx context.Context, r *game.SoloRound) {
	s.mu.Lock()
	delete(s.active, r.UserID)
	s.mu.Unlock()

	result := domain.RoundResultLose
	if r.WinAmount > 0 {
		result = domain.RoundResultWin
	}

	finishedAt := time.Now()
	if r.FinishedAt != nil {
		finishedAt = *r.FinishedAt
	}

	rec := &domain.RoundRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		Mode:           domain.RoundModeSolo,
		Stake:          r.Stake,
		BombCount:      r.BombCount,
		SafeRevealed:   r.SafeRevealed,
		Multiplier:     r.Multiplier,
		Payout:         r.WinAmount,
		Result:         result,
		ServerSeed:     r.ServerSeed,
		ServerSeedHash: fair.Commitment(r.ServerSeed),
		ClientSeed:     r.ClientSeed,
		Nonce:          r.Nonce,
		Settlement:     domain.SettlementPending,
		CreatedAt:      r.CreatedAt,
		FinishedAt:     finishedAt,
	}
	if err := s.rounds.Create(ctx, rec); err != nil {
		logger.Error("persist round record", "round_id", r.ID, "err", err)
	}

	status := domain.SettlementConfirmed
	if err := s.ledger.Settle(ctx, ledger.Request{
		RoundID:    r.ID,
		UserID:     r.UserID,
		Stake:      r.Stake,
		Payout:     r.WinAmount,
		ServerSeed: r.ServerSeed,
		ClientSeed: r.ClientSeed,
		Nonce:      r.Nonce,
	}); err != nil {
		logger.Error("settle round", "round_id", r.ID, "err", err)
		settlementFailures.Inc()
		status = domain.SettlementFailed
	}
	if err := s.rounds.MarkSettlement(ctx, r.ID, status); err != nil {
		logger.Error("mark settlement", "round_id", r.ID, "err", err)
	}

	roundsFinished.WithLabelValues(string(domain.RoundModeSolo), string(result)).Inc()
}

// cleanupAbandonedRounds drops rounds idle for over an hour. The stake is
// forfeited; the reveal history is already worth nothing without a cashout.
func (s *SoloService) cleanupAbandonedRounds() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for userID, r := range s.active {
			if now.Sub(r.CreatedAt) > time.Hour {
				delete(s.active, userID)
				logger.Warn("abandoned round dropped", "round_id", r.ID, "user_id", userID)
			}
		}
		s.mu.Unlock()
	}
}

// ActiveRoundCount reports how many solo rounds are held in memory.
func (s *SoloService) ActiveRoundCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}
