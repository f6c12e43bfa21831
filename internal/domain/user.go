package domain

import "time"

// User mirrors the platform account row this engine settles against. IDs
// come from the surrounding platform; the engine never mints them.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Gems      int64     `db:"gems" json:"gems"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
