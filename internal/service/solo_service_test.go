package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mines_arena/internal/domain"
	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
	"mines_arena/internal/repository"
)

type stubLedger struct {
	mu      sync.Mutex
	settles []ledger.Request
}

func (l *stubLedger) Reserve(ctx context.Context, userID, stake int64) error { return nil }

func (l *stubLedger) Settle(ctx context.Context, req ledger.Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settles = append(l.settles, req)
	return nil
}

func (l *stubLedger) settleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.settles)
}

type stubRounds struct {
	mu   sync.Mutex
	recs map[string]*domain.RoundRecord
}

func newStubRounds(recs ...*domain.RoundRecord) *stubRounds {
	s := &stubRounds{recs: make(map[string]*domain.RoundRecord)}
	for _, rec := range recs {
		s.recs[rec.ID] = rec
	}
	return s
}

func (s *stubRounds) Create(ctx context.Context, rec *domain.RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

func (s *stubRounds) GetByID(ctx context.Context, id string) (*domain.RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, repository.ErrRoundNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *stubRounds) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.RoundRecord, error) {
	return nil, nil
}

func (s *stubRounds) MarkSettlement(ctx context.Context, id string, status domain.SettlementStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return repository.ErrRoundNotFound
	}
	rec.Settlement = status
	return nil
}

func (s *stubRounds) ClaimSettlementRetry(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return false, repository.ErrRoundNotFound
	}
	if rec.Settlement != domain.SettlementFailed {
		return false, nil
	}
	rec.Settlement = domain.SettlementPending
	return true, nil
}

func (s *stubRounds) MaxNonce(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (s *stubRounds) status(id string) domain.SettlementStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[id].Settlement
}

func failedRecord(id string, userID int64) *domain.RoundRecord {
	return &domain.RoundRecord{
		ID:         id,
		UserID:     userID,
		Mode:       domain.RoundModeSolo,
		Stake:      100,
		BombCount:  5,
		Payout:     1237,
		Result:     domain.RoundResultWin,
		ServerSeed: "abc",
		ClientSeed: "def",
		Nonce:      1,
		Settlement: domain.SettlementFailed,
		CreatedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
}

func newTestSoloService(l ledger.Settler, rs *stubRounds) *SoloService {
	return NewSoloService(l, rs, NewNonceSource(rs), game.DefaultConfig(), 10, 100000)
}

func TestRetrySettlementRequiresOwner(t *testing.T) {
	l := &stubLedger{}
	rs := newStubRounds(failedRecord("r1", 7))
	s := newTestSoloService(l, rs)

	err := s.RetrySettlement(context.Background(), 8, "r1")
	if !errors.Is(err, ErrNotRoundOwner) {
		t.Fatalf("RetrySettlement() error = %v, want ErrNotRoundOwner", err)
	}
	if l.settleCount() != 0 {
		t.Error("ledger was touched by a non-owner retry")
	}
	if got := rs.status("r1"); got != domain.SettlementFailed {
		t.Errorf("settlement = %q, want failed", got)
	}
}

func TestRetrySettlementOnlyFromFailed(t *testing.T) {
	l := &stubLedger{}
	rec := failedRecord("r2", 7)
	rec.Settlement = domain.SettlementConfirmed
	rs := newStubRounds(rec)
	s := newTestSoloService(l, rs)

	err := s.RetrySettlement(context.Background(), 7, "r2")
	if !errors.Is(err, ErrSettlementNotFailed) {
		t.Fatalf("RetrySettlement() error = %v, want ErrSettlementNotFailed", err)
	}
	if l.settleCount() != 0 {
		t.Error("confirmed round was settled again")
	}
}

func TestRetrySettlementReplaysCreditOnce(t *testing.T) {
	l := &stubLedger{}
	rs := newStubRounds(failedRecord("r3", 7))
	s := newTestSoloService(l, rs)

	if err := s.RetrySettlement(context.Background(), 7, "r3"); err != nil {
		t.Fatalf("first retry: %v", err)
	}
	if got := rs.status("r3"); got != domain.SettlementConfirmed {
		t.Errorf("settlement = %q, want confirmed", got)
	}
	if l.settleCount() != 1 {
		t.Fatalf("settle count = %d, want 1", l.settleCount())
	}

	err := s.RetrySettlement(context.Background(), 7, "r3")
	if !errors.Is(err, ErrSettlementNotFailed) {
		t.Fatalf("second retry error = %v, want ErrSettlementNotFailed", err)
	}
	if l.settleCount() != 1 {
		t.Errorf("settle count after second retry = %d, want 1", l.settleCount())
	}
}

func TestRetrySettlementConcurrentClaims(t *testing.T) {
	l := &stubLedger{}
	rs := newStubRounds(failedRecord("r4", 7))
	s := newTestSoloService(l, rs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RetrySettlement(context.Background(), 7, "r4")
		}()
	}
	wg.Wait()

	if l.settleCount() != 1 {
		t.Errorf("settle count = %d, want exactly 1", l.settleCount())
	}
	if got := rs.status("r4"); got != domain.SettlementConfirmed {
		t.Errorf("settlement = %q, want confirmed", got)
	}
}
