package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"mines_arena/internal/game"
	"mines_arena/internal/ledger"
)

type fakeLedger struct {
	mu       sync.Mutex
	reserves map[int64]int64
	payouts  map[int64]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		reserves: make(map[int64]int64),
		payouts:  make(map[int64]int64),
	}
}

func (f *fakeLedger) Reserve(ctx context.Context, userID, stake int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserves[userID] += stake
	return nil
}

func (f *fakeLedger) Settle(ctx context.Context, req ledger.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payouts[req.UserID] += req.Payout
	return nil
}

func (f *fakeLedger) reserved(userID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reserves[userID]
}

func (f *fakeLedger) paidOut(userID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payouts[userID]
}

func testHub(l ledger.Settler) *Hub {
	return &Hub{
		opts: Options{
			MinStake:    10,
			MaxStake:    100000,
			TurnTimeout: time.Minute,
			BotDelay:    time.Millisecond,
			GameConfig:  game.DefaultConfig(),
		},
		ledger:   l,
		rooms:    make(map[string]*Room),
		userRoom: make(map[int64]string),
	}
}

func testSettings(vsBot bool) roomSettings {
	return roomSettings{
		serverSeed: "abc",
		clientSeed: "def",
		nonce:      1,
		stake:      100,
		bombCount:  5,
		vsBot:      vsBot,
	}
}

func testClient(h *Hub, userID int64) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 8), Hub: h}
}

func TestBotRoomStartsWithBoundLayout(t *testing.T) {
	h := testHub(newFakeLedger())
	r, err := newRoom("r1", h, testSettings(true), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}

	if !r.started() {
		t.Error("bot room should carry a layout from creation")
	}
	if r.claimSeat(testClient(h, 5)) {
		t.Error("bot room handed out the opponent seat")
	}
}

func TestOpenRoomWaitsForOpponent(t *testing.T) {
	h := testHub(newFakeLedger())
	r, err := newRoom("r2", h, testSettings(false), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}

	if r.started() {
		t.Error("open room bound a layout before an opponent joined")
	}
}

func TestSideOf(t *testing.T) {
	h := testHub(newFakeLedger())
	creator := testClient(h, 1)
	joiner := testClient(h, 2)
	r, err := newRoom("r3", h, testSettings(false), creator)
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}

	if side, ok := r.sideOf(creator); !ok || side != game.SidePlayer {
		t.Errorf("sideOf(creator) = %v, %v, want player", side, ok)
	}
	if _, ok := r.sideOf(joiner); ok {
		t.Error("unseated client reported as a participant")
	}

	if !r.claimSeat(joiner) {
		t.Fatal("seat claim failed on an open room")
	}
	if side, ok := r.sideOf(joiner); !ok || side != game.SideOpponent {
		t.Errorf("sideOf(joiner) = %v, %v, want opponent", side, ok)
	}
}

func TestJoinBotRoomRejectedWithoutDebit(t *testing.T) {
	l := newFakeLedger()
	h := testHub(l)
	room, err := newRoom("r4", h, testSettings(true), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}
	h.rooms["r4"] = room

	joiner := testClient(h, 2)
	h.joinRoom(joiner, "r4")

	if got := l.reserved(2); got != 0 {
		t.Errorf("rejected joiner was debited %d", got)
	}
	if joiner.Room != nil {
		t.Error("rejected joiner stayed attached to the room")
	}
	if _, ok := h.userRoom[2]; ok {
		t.Error("rejected joiner kept a room mapping")
	}
	select {
	case <-joiner.Send:
	default:
		t.Error("expected an error frame")
	}
}

func TestSecondJoinerRejectedWithoutDebit(t *testing.T) {
	l := newFakeLedger()
	h := testHub(l)
	room, err := newRoom("r5", h, testSettings(false), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}
	h.rooms["r5"] = room

	first := testClient(h, 2)
	h.joinRoom(first, "r5")
	if got := l.reserved(2); got != 100 {
		t.Fatalf("first joiner reserve = %d, want 100", got)
	}
	if first.Room != room {
		t.Fatal("first joiner not attached to the room")
	}

	second := testClient(h, 3)
	h.joinRoom(second, "r5")
	if got := l.reserved(3); got != 0 {
		t.Errorf("losing joiner was debited %d", got)
	}
	if second.Room != nil {
		t.Error("losing joiner stayed attached to the room")
	}
}

func TestOutsiderFramesDoNotTouchTheRound(t *testing.T) {
	h := testHub(newFakeLedger())
	room, err := newRoom("r6", h, testSettings(true), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}

	outsider := testClient(h, 9)
	room.HandleMessage(outsider, Incoming{Type: MsgReveal, Payload: []byte(`{"tile":0}`)})

	if room.duel.Reveals(game.SidePlayer) != 0 || room.duel.Reveals(game.SideOpponent) != 0 {
		t.Error("reveal from a non-participant was applied")
	}
	if room.duel.ActiveTurn() != game.SidePlayer {
		t.Error("reveal from a non-participant consumed a turn")
	}

	room.handleDisconnect(outsider)
	if room.duel.IsFinished() {
		t.Error("disconnect of a non-participant ended the round")
	}
}

func TestUnstartedJoinerDisconnectRefunds(t *testing.T) {
	l := newFakeLedger()
	h := testHub(l)
	room, err := newRoom("r7", h, testSettings(false), testClient(h, 1))
	if err != nil {
		t.Fatalf("newRoom() error: %v", err)
	}
	h.rooms["r7"] = room

	joiner := testClient(h, 2)
	h.joinRoom(joiner, "r7")
	if got := l.reserved(2); got != 100 {
		t.Fatalf("joiner reserve = %d, want 100", got)
	}

	// Joiner drops while still waiting for the duel to start.
	room.handleDisconnect(joiner)
	if got := l.paidOut(2); got != 100 {
		t.Errorf("joiner refund = %d, want 100", got)
	}
	if _, ok := room.sideOf(joiner); ok {
		t.Error("departed joiner still holds the seat")
	}
	if !room.claimSeat(testClient(h, 4)) {
		t.Error("freed seat cannot be claimed again")
	}
}

func TestRouteRejectsMovesWithoutRoom(t *testing.T) {
	h := testHub(newFakeLedger())
	c := testClient(h, 1)

	h.Route(c, []byte(`{"type":"reveal","payload":{"tile":3}}`))

	select {
	case raw := <-c.Send:
		if string(raw) == "" {
			t.Fatal("empty frame")
		}
	default:
		t.Fatal("expected an error frame")
	}
}
