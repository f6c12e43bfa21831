package service

import (
	"context"
	"sync"
)

// nonceStore is the slice of the rounds table the nonce counter seeds from.
type nonceStore interface {
	MaxNonce(ctx context.Context, userID int64) (int64, error)
}

// NonceSource hands out strictly increasing per-user nonces. Counters are
// seeded from the rounds table so a restart never reuses a nonce against a
// still-committed server seed.
type NonceSource struct {
	rounds nonceStore

	mu   sync.Mutex
	last map[int64]int64
}

func NewNonceSource(rounds nonceStore) *NonceSource {
	return &NonceSource{
		rounds: rounds,
		last:   make(map[int64]int64),
	}
}

// Next returns the user's next nonce, loading the historical maximum on
// first use.
func (n *NonceSource) Next(ctx context.Context, userID int64) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.last[userID]; !ok {
		max, err := n.rounds.MaxNonce(ctx, userID)
		if err != nil {
			return 0, err
		}
		n.last[userID] = max
	}

	n.last[userID]++
	return n.last[userID], nil
}
