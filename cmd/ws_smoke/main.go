package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"mines_arena/internal/db"
	"mines_arena/internal/domain"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"
)

// Smoke test for the duel websocket: user A creates a round, user B joins,
// both alternate reveals until a result frame arrives.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ur := repository.NewUserRepository(pool)
	ctx := context.Background()

	uA := &domain.User{ID: 3001, Username: "smokeA", Gems: 10000}
	uB := &domain.User{ID: 3002, Username: "smokeB", Gems: 10000}
	if err := ur.Upsert(ctx, uA); err != nil {
		log.Fatalf("upsert userA: %v", err)
	}
	if err := ur.Upsert(ctx, uB); err != nil {
		log.Fatalf("upsert userB: %v", err)
	}

	service.InitJWT()
	tokenA, err := service.GenerateJWT(uA.ID)
	if err != nil {
		log.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(uB.ID)
	if err != nil {
		log.Fatalf("gen token B: %v", err)
	}

	dialer := websocket.DefaultDialer

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	connA, _, err := dialer.Dial(fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tokenA), nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tokenB), nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	// waitFor drains frames until the wanted type shows up.
	waitFor := func(conn *websocket.Conn, wanted string) map[string]any {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				continue
			}
			var obj map[string]any
			_ = json.Unmarshal(msg, &obj)
			if t, ok := obj["type"].(string); ok {
				log.Printf("frame: %s", string(msg))
				if t == wanted {
					return obj
				}
			}
		}
		log.Fatalf("timed out waiting for %q", wanted)
		return nil
	}

	// A creates an open round.
	create := `{"type":"create","payload":{"stake":100,"bomb_count":5}}`
	if err := connA.WriteMessage(websocket.TextMessage, []byte(create)); err != nil {
		log.Fatalf("write create: %v", err)
	}
	created := waitFor(connA, "created")
	roomID, _ := created["payload"].(map[string]any)["room_id"].(string)
	log.Printf("room created: %s", roomID)

	// B joins it.
	join := fmt.Sprintf(`{"type":"join","payload":{"room_id":"%s"}}`, roomID)
	if err := connB.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		log.Fatalf("write join: %v", err)
	}
	waitFor(connA, "matched")
	waitFor(connB, "matched")

	// Alternate reveals until someone gets a result frame.
	conns := []*websocket.Conn{connA, connB}
	for tile := 0; tile < 25; tile++ {
		conn := conns[tile%2]
		reveal := fmt.Sprintf(`{"type":"reveal","payload":{"tile":%d}}`, tile)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reveal)); err != nil {
			log.Fatalf("write reveal: %v", err)
		}

		_ = connA.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := connA.ReadMessage()
		if err == nil {
			var obj map[string]any
			_ = json.Unmarshal(msg, &obj)
			if t, _ := obj["type"].(string); t == "result" {
				log.Printf("result: %s", string(msg))
				log.Println("smoke test finished")
				return
			}
		}
	}

	log.Println("smoke test finished without a result frame")
}
