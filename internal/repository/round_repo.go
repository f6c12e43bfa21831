package repository

import (
	"context"
	"errors"

	"mines_arena/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository struct {
	db *pgxpool.Pool
}

func NewRoundRepository(db *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{db: db}
}

// Create persists a finished round's full audit trail, including the now
// disclosed server seed.
func (r *RoundRepository) Create(ctx context.Context, rec *domain.RoundRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rounds
		     (id, user_id, opponent_id, mode, stake, bomb_count, safe_revealed,
		      multiplier, payout, result, server_seed, server_seed_hash,
		      client_seed, nonce, settlement, created_at, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		rec.ID, rec.UserID, rec.OpponentID, rec.Mode, rec.Stake, rec.BombCount,
		rec.SafeRevealed, rec.Multiplier, rec.Payout, rec.Result, rec.ServerSeed,
		rec.ServerSeedHash, rec.ClientSeed, rec.Nonce, rec.Settlement,
		rec.CreatedAt, rec.FinishedAt,
	)
	return err
}

func (r *RoundRepository) GetByID(ctx context.Context, id string) (*domain.RoundRecord, error) {
	rec := &domain.RoundRecord{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, opponent_id, mode, stake, bomb_count, safe_revealed,
		        multiplier, payout, result, server_seed, server_seed_hash,
		        client_seed, nonce, settlement, created_at, finished_at
		 FROM rounds WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &rec.UserID, &rec.OpponentID, &rec.Mode, &rec.Stake,
		&rec.BombCount, &rec.SafeRevealed, &rec.Multiplier, &rec.Payout,
		&rec.Result, &rec.ServerSeed, &rec.ServerSeedHash, &rec.ClientSeed,
		&rec.Nonce, &rec.Settlement, &rec.CreatedAt, &rec.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *RoundRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.RoundRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, opponent_id, mode, stake, bomb_count, safe_revealed,
		        multiplier, payout, result, server_seed, server_seed_hash,
		        client_seed, nonce, settlement, created_at, finished_at
		 FROM rounds
		 WHERE user_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.RoundRecord
	for rows.Next() {
		rec := &domain.RoundRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.OpponentID, &rec.Mode, &rec.Stake,
			&rec.BombCount, &rec.SafeRevealed, &rec.Multiplier, &rec.Payout,
			&rec.Result, &rec.ServerSeed, &rec.ServerSeedHash, &rec.ClientSeed,
			&rec.Nonce, &rec.Settlement, &rec.CreatedAt, &rec.FinishedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// MaxNonce returns the highest nonce ever used by the user, 0 when none.
// Nonces must keep increasing across restarts, so new counters start here.
func (r *RoundRepository) MaxNonce(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(nonce), 0) FROM rounds WHERE user_id = $1`,
		userID,
	).Scan(&n)
	return n, err
}

// ClaimSettlementRetry flips a failed settlement back to pending, reporting
// whether this caller won the claim. The conditional write lets exactly one
// concurrent retry reach the ledger.
func (r *RoundRepository) ClaimSettlementRetry(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE rounds SET settlement = $1 WHERE id = $2 AND settlement = $3`,
		domain.SettlementPending, id, domain.SettlementFailed,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RoundRepository) MarkSettlement(ctx context.Context, id string, status domain.SettlementStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE rounds SET settlement = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoundNotFound
	}
	return nil
}
