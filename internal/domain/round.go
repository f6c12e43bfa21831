package domain

import "time"

// RoundMode - solo play against the house or a two-party duel.
type RoundMode string

const (
	RoundModeSolo RoundMode = "solo"
	RoundModeDuel RoundMode = "duel"
)

// RoundResult from the perspective of the row's user.
type RoundResult string

const (
	RoundResultWin  RoundResult = "win"
	RoundResultLose RoundResult = "lose"
)

// SettlementStatus tracks the payout transfer separately from the sporting
// outcome: a failed transfer never reopens a finished round.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementConfirmed SettlementStatus = "confirmed"
	SettlementFailed    SettlementStatus = "failed"
)

// RoundRecord is the persisted audit trail of a finished round. The server
// seed is stored here and disclosed through the fairness endpoint once the
// round is over.
type RoundRecord struct {
	ID             string           `db:"id" json:"id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	OpponentID     *int64           `db:"opponent_id" json:"opponent_id,omitempty"`
	Mode           RoundMode        `db:"mode" json:"mode"`
	Stake          int64            `db:"stake" json:"stake"`
	BombCount      int              `db:"bomb_count" json:"bomb_count"`
	SafeRevealed   int              `db:"safe_revealed" json:"safe_revealed"`
	Multiplier     float64          `db:"multiplier" json:"multiplier"`
	Payout         int64            `db:"payout" json:"payout"`
	Result         RoundResult      `db:"result" json:"result"`
	ServerSeed     string           `db:"server_seed" json:"server_seed"`
	ServerSeedHash string           `db:"server_seed_hash" json:"server_seed_hash"`
	ClientSeed     string           `db:"client_seed" json:"client_seed"`
	Nonce          int64            `db:"nonce" json:"nonce"`
	Settlement     SettlementStatus `db:"settlement" json:"settlement"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	FinishedAt     time.Time        `db:"finished_at" json:"finished_at"`
}
