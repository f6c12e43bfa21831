package config

import (
	"os"
	"strconv"
	"time"

	"mines_arena/internal/game"
	"mines_arena/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Game limits
	MinStake       int64
	MaxStake       int64
	GameRateLimit  int
	GameRateWindow int

	// Board tuning
	BoardSize int
	HouseEdge float64

	// Duel pacing
	TurnTimeout time.Duration
	BotDelay    time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	minStake := int64(10)
	if v := os.Getenv("MIN_STAKE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			minStake = n
		}
	}

	maxStake := int64(100000)
	if v := os.Getenv("MAX_STAKE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxStake = n
		}
	}

	gameRateLimit := 60
	if v := os.Getenv("GAME_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			gameRateLimit = n
		}
	}

	gameRateWindow := 60
	if v := os.Getenv("GAME_RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			gameRateWindow = n
		}
	}

	boardSize := 25
	if v := os.Getenv("BOARD_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			boardSize = n
		}
	}

	houseEdge := 0.99
	if v := os.Getenv("HOUSE_EDGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			houseEdge = f
		}
	}

	turnTimeout := 30 * time.Second
	if v := os.Getenv("TURN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			turnTimeout = time.Duration(n) * time.Second
		}
	}

	botDelay := 2 * time.Second
	if v := os.Getenv("BOT_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			botDelay = time.Duration(n) * time.Millisecond
		}
	}

	return &Config{
		AppPort:        port,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		MinStake:       minStake,
		MaxStake:       maxStake,
		GameRateLimit:  gameRateLimit,
		GameRateWindow: gameRateWindow,
		BoardSize:      boardSize,
		HouseEdge:      houseEdge,
		TurnTimeout:    turnTimeout,
		BotDelay:       botDelay,
	}
}

// GameConfig materializes the engine configuration from the loaded values.
func (c *Config) GameConfig() game.Config {
	return game.Config{
		BoardSize: c.BoardSize,
		HouseEdge: c.HouseEdge,
	}
}
