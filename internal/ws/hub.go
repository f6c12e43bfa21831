package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"mines_arena/internal/fair"
	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
	"mines_arena/internal/logger"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"

	"github.com/google/uuid"
)

// Options bound what duel rooms accept and how they pace themselves.
type Options struct {
	MinStake    int64
	MaxStake    int64
	TurnTimeout time.Duration
	BotDelay    time.Duration
	GameConfig  game.Config
}

// Hub tracks duel rooms and routes client frames to them. A client without a
// room may only create or join one.
type Hub struct {
	opts   Options
	ledger ledger.Settler
	rounds *repository.RoundRepository
	nonces *service.NonceSource

	mu       sync.RWMutex
	rooms    map[string]*Room
	userRoom map[int64]string
}

func NewHub(opts Options, l ledger.Settler, rounds *repository.RoundRepository, nonces *service.NonceSource) *Hub {
	return &Hub{
		opts:     opts,
		ledger:   l,
		rounds:   rounds,
		nonces:   nonces,
		rooms:    make(map[string]*Room),
		userRoom: make(map[int64]string),
	}
}

// Route dispatches one client frame. Pre-room frames are limited to create
// and join; everything else belongs to the client's room.
func (h *Hub) Route(c *Client, raw []byte) {
	var msg Incoming
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("malformed message")
		return
	}

	if c.Room != nil {
		c.Room.HandleMessage(c, msg)
		return
	}

	switch msg.Type {
	case MsgCreate:
		var p CreatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("malformed create payload")
			return
		}
		h.createRoom(c, p)
	case MsgJoin:
		var p JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("malformed join payload")
			return
		}
		h.joinRoom(c, p.RoomID)
	default:
		c.sendError("join or create a round first")
	}
}

// createRoom reserves the creator's stake and opens a room. Bot rooms start
// immediately with a seed-committed layout; open rooms wait for a joiner and
// defer layout generation to the first click.
func (h *Hub) createRoom(c *Client, p CreatePayload) {
	if p.Stake < h.opts.MinStake || p.Stake > h.opts.MaxStake {
		c.sendError("stake out of range")
		return
	}
	if p.BombCount < 1 || p.BombCount > h.opts.GameConfig.MaxBombs() {
		c.sendError("invalid bomb count")
		return
	}

	h.mu.Lock()
	if _, ok := h.userRoom[c.UserID]; ok {
		h.mu.Unlock()
		c.sendError("you already have an active round")
		return
	}
	h.mu.Unlock()

	ctx := context.Background()
	nonce, err := h.nonces.Next(ctx, c.UserID)
	if err != nil {
		logger.Error("nonce allocation", "user_id", c.UserID, "err", err)
		c.sendError("internal error")
		return
	}
	serverSeed, err := fair.NewServerSeed()
	if err != nil {
		c.sendError("internal error")
		return
	}
	clientSeed := p.ClientSeed
	if clientSeed == "" {
		clientSeed = fair.DefaultClientSeed
	}

	if err := h.ledger.Reserve(ctx, c.UserID, p.Stake); err != nil {
		c.sendError(err.Error())
		return
	}

	roomID := uuid.New().String()[:8]
	room, err := newRoom(roomID, h, roomSettings{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
		stake:      p.Stake,
		bombCount:  p.BombCount,
		vsBot:      p.VsBot,
	}, c)
	if err != nil {
		logger.Error("room creation", "user_id", c.UserID, "err", err)
		c.sendError("internal error")
		return
	}

	h.mu.Lock()
	h.rooms[roomID] = room
	h.userRoom[c.UserID] = roomID
	h.mu.Unlock()

	c.Room = room
	go room.Run()

	c.send(Message{Type: MsgCreated, Payload: CreatedPayload{
		RoomID:     roomID,
		Commitment: fair.Commitment(serverSeed),
	}})
}

func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		c.sendError("round not found")
		return
	}
	if room.creator.UserID == c.UserID {
		c.sendError("cannot join your own round")
		return
	}

	// Claim the opponent seat before touching funds, so a joiner the room
	// rejects is never debited and never attached to someone else's round.
	if !room.claimSeat(c) {
		c.sendError("round already started")
		return
	}

	if err := h.ledger.Reserve(context.Background(), c.UserID, room.settings.stake); err != nil {
		room.releaseSeat(c)
		c.sendError(err.Error())
		return
	}

	h.mu.Lock()
	h.userRoom[c.UserID] = roomID
	h.mu.Unlock()

	c.Room = room
	room.Register <- c
}

func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	roomID, ok := h.userRoom[c.UserID]
	delete(h.userRoom, c.UserID)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.mu.RLock()
	room, found := h.rooms[roomID]
	h.mu.RUnlock()
	if found {
		room.Disconnect <- c
	}
}

// removeRoom is called by a room when its Run loop exits.
func (h *Hub) removeRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms, roomID)
	for uid, rid := range h.userRoom {
		if rid == roomID {
			delete(h.userRoom, uid)
		}
	}
}

// StartCleanup drops rooms that never got an opponent.
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.cleanupStaleRooms()
		}
	}()
}

func (h *Hub) cleanupStaleRooms() {
	h.mu.RLock()
	stale := make([]*Room, 0)
	now := time.Now()
	for _, room := range h.rooms {
		if !room.started() && now.Sub(room.createdAt) > time.Hour {
			stale = append(stale, room)
		}
	}
	h.mu.RUnlock()

	for _, room := range stale {
		logger.Info("dropping stale room", "room_id", room.ID)
		room.Close()
	}
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func mustMarshal(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal", "err", err)
		return []byte(`{"type":"error"}`)
	}
	return data
}

func (c *Client) send(msg Message) {
	select {
	case c.Send <- mustMarshal(msg):
	case <-time.After(2 * time.Second):
		logger.Warn("ws send timeout", "user_id", c.UserID, "type", msg.Type)
	}
}

func (c *Client) sendError(text string) {
	c.send(Message{Type: MsgError, Payload: ErrorPayload{Message: text}})
}
