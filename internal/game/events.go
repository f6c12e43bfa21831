package game

// Event is the closed set of inputs a round can consume. Each kind carries
// only the fields its transition needs; rounds reject kinds they do not
// support with ErrUnsupportedEvent.
type Event interface {
	isEvent()
}

// StartRound binds stake and bomb settings and moves a solo round from
// betting to playing.
type StartRound struct {
	Stake     int64
	BombCount int
}

// Reveal uncovers one tile. Side is ignored by solo rounds.
type Reveal struct {
	Side Side
	Tile int
}

// CashOut ends a solo round at the current multiplier.
type CashOut struct{}

// ResolveCoinflip settles a tied duel round.
type ResolveCoinflip struct{}

func (StartRound) isEvent()      {}
func (Reveal) isEvent()          {}
func (CashOut) isEvent()         {}
func (ResolveCoinflip) isEvent() {}
