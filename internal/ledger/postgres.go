package ledger

import (
	"context"

	"mines_arena/internal/domain"
	"mines_arena/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLedger settles against the in-house balance table. It stands in for the
// external ledger service behind the same Settler contract.
type PgLedger struct {
	db  *pgxpool.Pool
	txs *repository.TransactionRepository
}

func NewPgLedger(db *pgxpool.Pool) *PgLedger {
	return &PgLedger{
		db:  db,
		txs: repository.NewTransactionRepository(db),
	}
}

// Reserve locks the user's balance and deducts the stake.
func (l *PgLedger) Reserve(ctx context.Context, userID, stake int64) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT gems FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance); err != nil {
		return err
	}
	if balance < stake {
		return ErrInsufficientBalance
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET gems = gems - $1 WHERE id=$2`, stake, userID); err != nil {
		return err
	}

	if err := l.txs.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID: userID,
		Type:   "stake",
		Amount: -stake,
		Meta:   map[string]interface{}{"stake": stake},
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Settle credits the payout and records the transfer with the round's seed
// material. Any failure comes back as *SettlementError so callers know the
// transfer, not the round, is what needs retrying.
func (l *PgLedger) Settle(ctx context.Context, req Request) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &SettlementError{RoundID: req.RoundID, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if req.Payout > 0 {
		if _, err := tx.Exec(ctx, `UPDATE users SET gems = gems + $1 WHERE id=$2`, req.Payout, req.UserID); err != nil {
			return &SettlementError{RoundID: req.RoundID, Err: err}
		}
	}

	if err := l.txs.CreateWithTx(ctx, tx, &domain.Transaction{
		UserID: req.UserID,
		Type:   "settlement",
		Amount: req.Payout,
		Meta: map[string]interface{}{
			"round_id":    req.RoundID,
			"stake":       req.Stake,
			"payout":      req.Payout,
			"server_seed": req.ServerSeed,
			"client_seed": req.ClientSeed,
			"nonce":       req.Nonce,
		},
	}); err != nil {
		return &SettlementError{RoundID: req.RoundID, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &SettlementError{RoundID: req.RoundID, Err: err}
	}
	return nil
}
