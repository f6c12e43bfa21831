package game

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// BotReveal makes one move for an automated side: a uniformly random pick
// over the currently unrevealed tiles. Selection and application happen under
// the round's lock as one step, so no other move can land on the same turn.
//
// The bot sees exactly what a human sees: unrevealed tiles only, never the
// layout. Giving it layout knowledge would break the fairness model.
func (d *DuelRound) BotReveal(side Side) (tile int, hitBomb bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Status != StatusPlaying {
		return 0, false, ErrRoundOver
	}
	if d.busted[side] {
		return 0, false, ErrSideBusted
	}
	if side != d.active {
		return 0, false, ErrNotYourTurn
	}

	candidates := make([]int, 0, d.cfg.BoardSize)
	for i, ok := range d.revealed {
		if !ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false, errors.New("no tiles left to reveal")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
	if err != nil {
		return 0, false, err
	}
	tile = candidates[n.Int64()]

	hitBomb, err = d.reveal(side, tile)
	return tile, hitBomb, err
}
