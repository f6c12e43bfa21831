package main

import (
	"context"
	"flag"
	"log"
	"os"

	"mines_arena/internal/db"
	"mines_arena/internal/domain"
	"mines_arena/internal/repository"
	"mines_arena/internal/service"
)

func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	id := flag.Int64("id", 1234567890, "user id")
	username := flag.String("username", "testuser", "username")
	gems := flag.Int64("gems", 100000, "starting balance")
	flag.Parse()

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	u := &domain.User{ID: *id, Username: *username, Gems: *gems}
	if err := repo.Upsert(ctx, u); err != nil {
		log.Fatalf("upsert user failed: %v", err)
	}
	log.Printf("user ready id=%d username=%s\n", u.ID, u.Username)

	// verify read
	u2, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		log.Fatalf("get by id failed: %v", err)
	}
	log.Printf("fetched user id=%d gems=%d created_at=%v\n", u2.ID, u2.Gems, u2.CreatedAt)

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(u2.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
