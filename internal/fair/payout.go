package fair

// DefaultHouseEdge is the multiplicative discount on the fair-odds payout.
const DefaultHouseEdge = 0.99

// Multiplier returns the payout multiplier after safeRevealed safe tiles have
// been revealed in a row on a boardSize board with bombCount bombs.
//
// chance is the exact hypergeometric survival probability of that streak:
// prod_{k<safeRevealed} (N-b-k)/(N-k). The multiplier is houseEdge/chance, so
// Multiplier(0, ...) == houseEdge. No rounding is applied here; presentation
// rounding belongs to the HTTP layer.
func Multiplier(safeRevealed, bombCount, boardSize int, houseEdge float64) float64 {
	chance := 1.0
	for k := 0; k < safeRevealed; k++ {
		chance *= float64(boardSize-bombCount-k) / float64(boardSize-k)
	}
	return houseEdge / chance
}

// MultiplierTable returns the multiplier for every possible reveal count,
// indexed from one revealed tile up to a fully cleared board.
func MultiplierTable(bombCount, boardSize int, houseEdge float64) []float64 {
	safeTiles := boardSize - bombCount
	table := make([]float64, safeTiles)
	for reveals := 1; reveals <= safeTiles; reveals++ {
		table[reveals-1] = Multiplier(reveals, bombCount, boardSize, houseEdge)
	}
	return table
}
