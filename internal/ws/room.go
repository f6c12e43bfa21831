package ws

import (
	"context"
	"sync"
	"time"

	"mines_arena/internal/domain"
	"mines_arena/internal/fair"
	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
	"mines_arena/internal/logger"
)

type roomSettings struct {
	serverSeed string
	clientSeed string
	nonce      int64
	stake      int64
	bombCount  int
	vsBot      bool
}

// Room hosts one duel. Bot rooms carry a seed-committed layout from the
// start; open rooms bind the layout lazily on the first click once an
// opponent has joined.
type Room struct {
	ID  string
	hub *Hub

	settings roomSettings
	creator  *Client

	Register   chan *Client
	Disconnect chan *Client

	mu        sync.RWMutex
	clients   map[game.Side]*Client
	duel      *game.DuelRound
	turnTimer *time.Timer
	createdAt time.Time

	finishOnce sync.Once
	closeOnce  sync.Once
	closed     chan struct{}
}

func newRoom(id string, hub *Hub, settings roomSettings, creator *Client) (*Room, error) {
	r := &Room{
		ID:         id,
		hub:        hub,
		settings:   settings,
		creator:    creator,
		Register:   make(chan *Client, 2),
		Disconnect: make(chan *Client, 2),
		clients:    map[game.Side]*Client{game.SidePlayer: creator},
		createdAt:  time.Now(),
		closed:     make(chan struct{}),
	}

	if settings.vsBot {
		d, err := game.NewDuelRound(id, settings.serverSeed, settings.clientSeed,
			settings.nonce, settings.stake, settings.bombCount, hub.opts.GameConfig, true)
		if err != nil {
			return nil, err
		}
		r.duel = d
	}

	return r, nil
}

func (r *Room) Run() {
	if r.settings.vsBot {
		r.begin(0)
	}

	for {
		select {
		case c := <-r.Register:
			r.handleRegister(c)
		case c := <-r.Disconnect:
			r.handleDisconnect(c)
		case <-r.closed:
			r.stopTimer()
			r.hub.removeRoom(r.ID)
			return
		}
	}
}

func (r *Room) started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.duel != nil
}

// claimSeat reserves the opponent seat for a joiner. Bot rooms and rooms
// that already started or seated an opponent reject the claim, so at most one
// joiner ever proceeds to the stake reserve.
func (r *Room) claimSeat(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings.vsBot || r.duel != nil || r.clients[game.SideOpponent] != nil {
		return false
	}
	r.clients[game.SideOpponent] = c
	return true
}

func (r *Room) releaseSeat(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[game.SideOpponent] == c {
		delete(r.clients, game.SideOpponent)
	}
}

// handleRegister starts the duel once a joiner holds the opponent seat. The
// layout is deferred to the first click on this path.
func (r *Room) handleRegister(c *Client) {
	r.mu.Lock()
	if r.duel != nil || r.clients[game.SideOpponent] != c {
		r.mu.Unlock()
		c.sendError("round already started")
		return
	}

	d, err := game.NewDuelRound(r.ID, r.settings.serverSeed, r.settings.clientSeed,
		r.settings.nonce, r.settings.stake, r.settings.bombCount, r.hub.opts.GameConfig, false)
	if err != nil {
		delete(r.clients, game.SideOpponent)
		r.mu.Unlock()
		logger.Error("duel creation", "room_id", r.ID, "err", err)
		r.refundStake(c.UserID)
		c.sendError("internal error")
		return
	}
	r.duel = d
	r.mu.Unlock()

	r.begin(c.UserID)
}

func (r *Room) begin(opponentID int64) {
	duelsStarted.Inc()

	r.sendTo(game.SidePlayer, Message{Type: MsgMatched, Payload: MatchedPayload{
		RoomID:     r.ID,
		OpponentID: opponentID,
	}})
	if !r.settings.vsBot {
		r.sendTo(game.SideOpponent, Message{Type: MsgMatched, Payload: MatchedPayload{
			RoomID:     r.ID,
			OpponentID: r.creator.UserID,
		}})
	}

	r.broadcastState()
	r.armTurnTimer()
}

// handleDisconnect settles the round by forfeit when a participant leaves
// mid-round, or refunds reserved stakes when the duel never started. Clients
// that are not part of the round are ignored.
func (r *Room) handleDisconnect(c *Client) {
	side, member := r.sideOf(c)
	if !member {
		return
	}

	r.mu.RLock()
	d := r.duel
	r.mu.RUnlock()

	if d == nil {
		if side == game.SideOpponent {
			// Joiner left between taking the seat and the duel starting.
			r.releaseSeat(c)
			r.refundStake(c.UserID)
			return
		}

		// Creator left an unstarted room: hand every reserved stake back.
		r.refundStake(r.creator.UserID)
		r.mu.RLock()
		opp := r.clients[game.SideOpponent]
		r.mu.RUnlock()
		if opp != nil {
			r.refundStake(opp.UserID)
		}
		r.Close()
		return
	}

	if d.IsFinished() {
		r.Close()
		return
	}

	if _, err := d.Forfeit(side); err == nil {
		r.finish("opponent_left")
	}
	r.Close()
}

// refundStake hands a reserved stake back when a round dies before it is
// decided.
func (r *Room) refundStake(userID int64) {
	err := r.hub.ledger.Settle(context.Background(), ledger.Request{
		RoundID:    r.ID,
		UserID:     userID,
		Stake:      r.settings.stake,
		Payout:     r.settings.stake,
		ServerSeed: r.settings.serverSeed,
		ClientSeed: r.settings.clientSeed,
		Nonce:      r.settings.nonce,
	})
	if err != nil {
		logger.Error("stake refund", "room_id", r.ID, "user_id", userID, "err", err)
	}
}

// HandleMessage processes in-room frames. Only participants may move, and
// only reveals are valid once the duel is underway.
func (r *Room) HandleMessage(c *Client, msg Incoming) {
	side, member := r.sideOf(c)
	if !member {
		c.sendError("not part of this round")
		return
	}
	if msg.Type != MsgReveal {
		c.sendError("unexpected message type")
		return
	}

	r.mu.RLock()
	d := r.duel
	r.mu.RUnlock()
	if d == nil {
		c.sendError("waiting for an opponent")
		return
	}

	var p RevealPayload
	if err := decodePayload(msg.Payload, &p); err != nil {
		c.sendError("malformed reveal payload")
		return
	}

	if err := d.Apply(game.Reveal{Side: side, Tile: p.Tile}); err != nil {
		c.sendError(err.Error())
		return
	}

	r.postMove(d)
}

// postMove runs after every accepted move: broadcast, then either resolve a
// tie, settle a finished round, or arm the next turn.
func (r *Room) postMove(d *game.DuelRound) {
	r.broadcastState()

	switch {
	case d.TieBreakPending():
		r.resolveCoinflip(d)

	case d.IsFinished():
		r.finish("reveals")
		r.Close()

	default:
		r.armTurnTimer()
		if r.settings.vsBot && d.ActiveTurn() == game.SideOpponent {
			time.AfterFunc(r.hub.opts.BotDelay, r.botMove)
		}
	}
}

func (r *Room) resolveCoinflip(d *game.DuelRound) {
	winner, err := d.ResolveCoinflip()
	if err != nil {
		return
	}

	value, _ := d.CoinflipValue()
	r.broadcast(Message{Type: MsgCoinflip, Payload: CoinflipPayload{
		Value:  value,
		Winner: winner.String(),
	}})

	r.finish("coinflip")
	r.Close()
}

func (r *Room) botMove() {
	r.mu.RLock()
	d := r.duel
	r.mu.RUnlock()
	if d == nil {
		return
	}

	if _, _, err := d.BotReveal(game.SideOpponent); err != nil {
		return
	}
	r.postMove(d)
}

// turnTimeout plays a random tile for the side that let the clock run out,
// so a stalling party cannot freeze the round.
func (r *Room) turnTimeout() {
	r.mu.RLock()
	d := r.duel
	r.mu.RUnlock()
	if d == nil || d.IsFinished() {
		return
	}

	side := d.ActiveTurn()
	if _, _, err := d.BotReveal(side); err != nil {
		return
	}
	logger.Info("turn timeout, forced move", "room_id", r.ID, "side", side.String())
	r.postMove(d)
}

func (r *Room) armTurnTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.turnTimer != nil {
		r.turnTimer.Stop()
	}
	r.turnTimer = time.AfterFunc(r.hub.opts.TurnTimeout, r.turnTimeout)
}

func (r *Room) stopTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

// finish settles a decided duel exactly once: result frames to both sides,
// the single payout transfer to the winner, and an audit record per human
// participant.
func (r *Room) finish(reason string) {
	r.finishOnce.Do(func() {
		r.stopTimer()

		r.mu.RLock()
		d := r.duel
		r.mu.RUnlock()

		winner, ok := d.Winner()
		if !ok {
			return
		}
		duelsFinished.WithLabelValues(reason).Inc()

		for side, c := range r.participants() {
			you := "lose"
			if side == winner {
				you = "win"
			}
			if c != nil {
				c.send(Message{Type: MsgResult, Payload: ResultPayload{
					You:    you,
					Reason: reason,
					State:  d.State(side),
				}})
			}
		}

		r.settle(d, winner, reason)
	})
}

// settle credits the pot to the winner and persists both human records. The
// sporting outcome is already final; a transfer failure is only marked for
// retry.
func (r *Room) settle(d *game.DuelRound, winner game.Side, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	participants := r.participants()

	for side, c := range participants {
		if c == nil { // bot side
			continue
		}

		result := domain.RoundResultLose
		var payout int64
		if side == winner {
			result = domain.RoundResultWin
			payout = d.Payout()
		}

		var opponentID *int64
		if other := participants[side.Other()]; other != nil {
			opponentID = &other.UserID
		}

		status := domain.SettlementConfirmed
		if payout > 0 {
			if err := r.hub.ledger.Settle(ctx, ledger.Request{
				RoundID:    r.ID,
				UserID:     c.UserID,
				Stake:      r.settings.stake,
				Payout:     payout,
				ServerSeed: r.settings.serverSeed,
				ClientSeed: r.settings.clientSeed,
				Nonce:      r.settings.nonce,
			}); err != nil {
				logger.Error("duel settlement", "room_id", r.ID, "user_id", c.UserID, "err", err)
				status = domain.SettlementFailed
			}
		}

		now := time.Now()
		rec := &domain.RoundRecord{
			ID:             r.ID + "-" + side.String(),
			UserID:         c.UserID,
			OpponentID:     opponentID,
			Mode:           domain.RoundModeDuel,
			Stake:          r.settings.stake,
			BombCount:      r.settings.bombCount,
			SafeRevealed:   d.Reveals(side),
			Payout:         payout,
			Result:         result,
			ServerSeed:     r.settings.serverSeed,
			ServerSeedHash: fair.Commitment(r.settings.serverSeed),
			ClientSeed:     r.settings.clientSeed,
			Nonce:          r.settings.nonce,
			Settlement:     status,
			CreatedAt:      r.createdAt,
			FinishedAt:     now,
		}
		if err := r.hub.rounds.Create(ctx, rec); err != nil {
			logger.Error("persist duel record", "room_id", r.ID, "user_id", c.UserID, "err", err)
		}
	}
}

// participants maps sides to connected human clients; the bot side is nil.
func (r *Room) participants() map[game.Side]*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[game.Side]*Client{
		game.SidePlayer:   r.clients[game.SidePlayer],
		game.SideOpponent: r.clients[game.SideOpponent],
	}
	return out
}

// sideOf maps a client to its side; ok is false for clients that hold no
// seat in this room.
func (r *Room) sideOf(c *Client) (game.Side, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case r.clients[game.SidePlayer] == c:
		return game.SidePlayer, true
	case r.clients[game.SideOpponent] == c:
		return game.SideOpponent, true
	default:
		return 0, false
	}
}

func (r *Room) broadcastState() {
	r.mu.RLock()
	d := r.duel
	r.mu.RUnlock()
	if d == nil {
		return
	}

	for side, c := range r.participants() {
		if c != nil {
			c.send(Message{Type: MsgState, Payload: d.State(side)})
		}
	}
}

func (r *Room) sendTo(side game.Side, msg Message) {
	r.mu.RLock()
	c := r.clients[side]
	r.mu.RUnlock()
	if c != nil {
		c.send(msg)
	}
}

func (r *Room) broadcast(msg Message) {
	for _, c := range r.participants() {
		if c != nil {
			c.send(msg)
		}
	}
}

// Close tears the room down; safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
}
