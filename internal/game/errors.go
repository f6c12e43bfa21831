package game

import "errors"

// Configuration errors abort round creation and are never defaulted away.
var (
	ErrInvalidStake     = errors.New("stake must be positive")
	ErrInvalidBombCount = errors.New("bomb count out of range")
)

// Move errors are recoverable no-ops: the round state is unchanged and the
// caller is told why the move was rejected.
var (
	ErrRoundNotBetting     = errors.New("round already started")
	ErrRoundNotPlaying     = errors.New("round is not playing")
	ErrRoundOver           = errors.New("round is over")
	ErrInvalidTile         = errors.New("tile index out of range")
	ErrTileAlreadyRevealed = errors.New("tile already revealed")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrSideBusted          = errors.New("side has busted")
	ErrNoRevealsYet        = errors.New("must reveal at least one tile before cashing out")
	ErrNoTiePending        = errors.New("no coinflip pending")
	ErrUnsupportedEvent    = errors.New("event not valid for this round type")
)
