package game

import "mines_arena/internal/fair"

// Config carries the board parameters into round creation. There is no
// process-wide mutable state: every round gets its own copy.
type Config struct {
	BoardSize int
	HouseEdge float64
}

// DefaultConfig is the 5x5 board with the standard 1% edge.
func DefaultConfig() Config {
	return Config{
		BoardSize: 25,
		HouseEdge: fair.DefaultHouseEdge,
	}
}

// MaxBombs returns the highest legal bomb count: at least one tile must stay safe.
func (c Config) MaxBombs() int {
	return c.BoardSize - 1
}
