package game

import (
	"sync"
	"time"

	"mines_arena/internal/fair"
)

// Side identifies one of the two parties in a duel round.
type Side int

const (
	SidePlayer   Side = 0 // round creator
	SideOpponent Side = 1 // joiner or bot
)

func (s Side) Other() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// DuelRound is the two-party variant: both sides take turns revealing tiles
// on one shared layout. A side that hits a bomb is out for the rest of the
// round but the round keeps going until the board is decided. Winner takes
// both stakes; there is no house edge multiplier in this mode.
type DuelRound struct {
	ID         string
	ServerSeed string
	ClientSeed string
	Nonce      int64

	Stake     int64
	BombCount int

	cfg       Config
	perm      []int
	bombs     map[int]bool
	generated bool

	revealed   []bool
	revealedBy []Side

	reveals [2]int
	busted  [2]bool
	active  Side

	Status    Status
	winner    Side
	hasWinner bool
	coinValue float64
	coinUsed  bool

	CreatedAt  time.Time
	FinishedAt *time.Time

	mu sync.Mutex
}

// NewDuelRound allocates a duel round. When pregenerate is true the layout is
// derived immediately from the seed material (settings were known up front).
// Otherwise generation is deferred to the first reveal, which is then
// guaranteed safe. The two entry paths intentionally differ: a pregenerated
// layout is committed before any click, a deferred one trades that for a
// safe opening move.
func NewDuelRound(id, serverSeed, clientSeed string, nonce int64, stake int64, bombCount int, cfg Config, pregenerate bool) (*DuelRound, error) {
	if serverSeed == "" {
		return nil, fair.ErrMissingServerSeed
	}
	if clientSeed == "" {
		return nil, fair.ErrMissingClientSeed
	}
	if nonce < 0 {
		return nil, fair.ErrInvalidNonce
	}
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	if bombCount < 1 || bombCount > cfg.MaxBombs() {
		return nil, ErrInvalidBombCount
	}

	d := &DuelRound{
		ID:         id,
		ServerSeed: serverSeed,
		ClientSeed: clientSeed,
		Nonce:      nonce,
		Stake:      stake,
		BombCount:  bombCount,
		cfg:        cfg,
		revealed:   make([]bool, cfg.BoardSize),
		revealedBy: make([]Side, cfg.BoardSize),
		active:     SidePlayer,
		Status:     StatusPlaying,
		CreatedAt:  time.Now(),
	}

	if pregenerate {
		if err := d.generate(-1); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// generate derives the layout. firstTile >= 0 marks the deferred path: the
// first-clicked tile is swapped out of the bomb prefix so the opening click
// cannot bust.
func (d *DuelRound) generate(firstTile int) error {
	perm, err := fair.Shuffle(d.ServerSeed, d.ClientSeed, d.Nonce, d.cfg.BoardSize)
	if err != nil {
		return err
	}

	if firstTile >= 0 {
		for i := 0; i < d.BombCount; i++ {
			if perm[i] == firstTile {
				// Last entry is always safe: bombCount <= boardSize-1.
				last := d.cfg.BoardSize - 1
				perm[i], perm[last] = perm[last], perm[i]
				break
			}
		}
	}

	d.perm = perm
	d.bombs = make(map[int]bool, d.BombCount)
	for _, tile := range perm[:d.BombCount] {
		d.bombs[tile] = true
	}
	d.generated = true
	return nil
}

// Reveal applies one move for a side. Rejected moves leave the round
// unchanged: wrong turn, busted side, finished round, bad or already
// revealed tile.
func (d *DuelRound) Reveal(side Side, tile int) (hitBomb bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reveal(side, tile)
}

// reveal is called with the lock held.
func (d *DuelRound) reveal(side Side, tile int) (bool, error) {
	if d.Status != StatusPlaying {
		return false, ErrRoundOver
	}
	if d.busted[side] {
		return false, ErrSideBusted
	}
	if side != d.active {
		return false, ErrNotYourTurn
	}
	if tile < 0 || tile >= d.cfg.BoardSize {
		return false, ErrInvalidTile
	}
	if d.revealed[tile] {
		return false, ErrTileAlreadyRevealed
	}

	if !d.generated {
		if err := d.generate(tile); err != nil {
			return false, err
		}
	}

	d.revealed[tile] = true
	d.revealedBy[tile] = side

	hit := d.bombs[tile]
	if hit {
		d.busted[side] = true
	} else {
		d.reveals[side]++
	}

	d.evaluate()
	return hit, nil
}

// evaluate runs the end-of-round rules after every accepted move, in spec
// priority order, with the lock held.
func (d *DuelRound) evaluate() {
	safeTiles := d.cfg.BoardSize - d.BombCount

	switch {
	case d.reveals[SidePlayer]+d.reveals[SideOpponent] == safeTiles:
		// Board exhausted of safe tiles.
		d.decideByReveals()

	case d.busted[SidePlayer] != d.busted[SideOpponent]:
		standing := SidePlayer
		if d.busted[SidePlayer] {
			standing = SideOpponent
		}
		if d.reveals[standing] > d.reveals[standing.Other()] {
			d.finishWith(standing)
			return
		}
		// Still catching up: the busted side is skipped, the standing side
		// keeps the turn.
		d.active = standing

	case d.busted[SidePlayer] && d.busted[SideOpponent]:
		d.decideByReveals()

	default:
		d.active = d.active.Other()
	}
}

// decideByReveals picks the side with strictly more reveals, or parks the
// round in coinflip_pending on a tie. Called with the lock held.
func (d *DuelRound) decideByReveals() {
	switch {
	case d.reveals[SidePlayer] > d.reveals[SideOpponent]:
		d.finishWith(SidePlayer)
	case d.reveals[SideOpponent] > d.reveals[SidePlayer]:
		d.finishWith(SideOpponent)
	default:
		d.Status = StatusCoinflip
	}
}

// ResolveCoinflip settles a tied round with the secondary fair coin. It
// yields exactly one winner; there is no second tie.
func (d *DuelRound) ResolveCoinflip() (Side, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Status != StatusCoinflip {
		return 0, ErrNoTiePending
	}

	d.coinValue = fair.TieBreakValue(d.ServerSeed, d.ClientSeed, d.Nonce)
	d.coinUsed = true

	winner := SideOpponent
	if fair.TieBreak(d.ServerSeed, d.ClientSeed, d.Nonce) {
		winner = SidePlayer
	}
	d.finishWith(winner)
	return winner, nil
}

// Forfeit ends the round in favour of the side that stayed. Used when a
// party leaves mid-round; a finished round cannot be forfeited.
func (d *DuelRound) Forfeit(leaving Side) (Side, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Status == StatusFinished {
		return 0, ErrRoundOver
	}

	winner := leaving.Other()
	d.finishWith(winner)
	return winner, nil
}

// Apply dispatches a typed event onto the round.
func (d *DuelRound) Apply(ev Event) error {
	switch e := ev.(type) {
	case Reveal:
		_, err := d.Reveal(e.Side, e.Tile)
		return err
	case ResolveCoinflip:
		_, err := d.ResolveCoinflip()
		return err
	default:
		return ErrUnsupportedEvent
	}
}

// finishWith is called with the lock held.
func (d *DuelRound) finishWith(winner Side) {
	d.winner = winner
	d.hasWinner = true
	if d.generated {
		for i := range d.revealed {
			d.revealed[i] = true
		}
	}
	now := time.Now()
	d.FinishedAt = &now
	d.Status = StatusFinished
}

// TieBreakPending reports whether the round is parked on a tied board.
func (d *DuelRound) TieBreakPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Status == StatusCoinflip
}

// CoinflipValue returns the normalized tie-break value once a flip has been
// used to settle the round.
func (d *DuelRound) CoinflipValue() (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coinValue, d.coinUsed
}

// Reveals reports a side's safe reveal count.
func (d *DuelRound) Reveals(side Side) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reveals[side]
}

// Winner returns the winning side once the round has finished.
func (d *DuelRound) Winner() (Side, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner, d.hasWinner
}

// ActiveTurn returns the side whose move is expected.
func (d *DuelRound) ActiveTurn() Side {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// IsFinished reports whether the round has a final winner. A round parked in
// coinflip_pending is not finished yet.
func (d *DuelRound) IsFinished() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Status == StatusFinished
}

// Payout is the winner-take-both-stakes pot.
func (d *DuelRound) Payout() int64 {
	return 2 * d.Stake
}

// State returns the view of the round for one side. The shared layout and
// server seed are disclosed only after the finish.
func (d *DuelRound) State(forSide Side) map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	revealed := make([]map[string]interface{}, 0, d.cfg.BoardSize)
	for tile, ok := range d.revealed {
		if !ok {
			continue
		}
		entry := map[string]interface{}{
			"tile": tile,
			"by":   d.revealedBy[tile].String(),
		}
		if d.Status == StatusFinished {
			entry["bomb"] = d.bombs[tile]
		}
		revealed = append(revealed, entry)
	}

	state := map[string]interface{}{
		"id":               d.ID,
		"status":           string(d.Status),
		"board_size":       d.cfg.BoardSize,
		"bomb_count":       d.BombCount,
		"stake":            d.Stake,
		"active_turn":      d.active.String(),
		"you":              forSide.String(),
		"your_reveals":     d.reveals[forSide],
		"opponent_reveals": d.reveals[forSide.Other()],
		"your_busted":      d.busted[forSide],
		"opponent_busted":  d.busted[forSide.Other()],
		"revealed":         revealed,
		"client_seed":      d.ClientSeed,
		"nonce":            d.Nonce,
		"commitment":       fair.Commitment(d.ServerSeed),
	}

	if d.Status == StatusFinished {
		state["server_seed"] = d.ServerSeed
		state["winner"] = d.winner.String()
		state["payout"] = 2 * d.Stake
		if d.coinUsed {
			state["coinflip"] = d.coinValue
		}
		if d.generated {
			bombs := make([]int, d.BombCount)
			copy(bombs, d.perm[:d.BombCount])
			state["bombs"] = bombs
		}
	}

	return state
}
