// Package ledger is the engine's boundary to the settlement collaborator.
// The engine reserves a stake when a round starts and emits exactly one
// settle call when it terminates; the round's outcome is final either way.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// ErrInsufficientBalance rejects a reserve before any round is created.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Request describes one terminated round's payout transfer, together with
// the seed material an auditor needs to re-derive the layout.
type Request struct {
	RoundID    string
	UserID     int64
	Stake      int64
	Payout     int64
	ServerSeed string
	ClientSeed string
	Nonce      int64
}

// Settler is the settlement contract. Settle failures are surfaced as
// *SettlementError: recorded against the round, retried out-of-band, never
// fatal to the round itself.
type Settler interface {
	Reserve(ctx context.Context, userID, stake int64) error
	Settle(ctx context.Context, req Request) error
}

// SettlementError marks a transfer failure that must be retried without
// touching the round's sporting outcome.
type SettlementError struct {
	RoundID string
	Err     error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed for round %s: %v", e.RoundID, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
