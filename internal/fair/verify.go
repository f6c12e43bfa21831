package fair

// VerifyLayout recomputes the bomb layout from disclosed seed material. Any
// third party can call this after a round finishes and compare the result
// against the tiles that were played.
func VerifyLayout(serverSeed, clientSeed string, nonce int64, boardSize, bombCount int) ([]int, error) {
	return Bombs(serverSeed, clientSeed, nonce, boardSize, bombCount)
}

// LayoutMatches reports whether the claimed bomb indices are exactly the ones
// the seed material derives, in derivation order.
func LayoutMatches(serverSeed, clientSeed string, nonce int64, boardSize int, claimed []int) bool {
	bombs, err := Bombs(serverSeed, clientSeed, nonce, boardSize, len(claimed))
	if err != nil {
		return false
	}
	for i := range bombs {
		if bombs[i] != claimed[i] {
			return false
		}
	}
	return true
}
