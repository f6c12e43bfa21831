package fair

import "strconv"

// tieSuffix is appended to the round's combined seed string so the tie-break
// coin is derived from a digest distinct from the layout chain. The board
// outcome alone does not predict the flip.
const tieSuffix = "tie"

// TieBreakValue returns the normalized coin value in [0, 1) for a round's
// tie-break: the first 32 bits of SHA256(combined || "tie").
func TieBreakValue(serverSeed, clientSeed string, nonce int64) float64 {
	combined := serverSeed + "-" + clientSeed + "-" + strconv.FormatInt(nonce, 10)
	digest := hexDigest(combined + tieSuffix)
	r, _ := strconv.ParseUint(digest[:8], 16, 64)
	return float64(r) / (1 << 32)
}

// TieBreak resolves a tied duel round. It reports true when the first side
// (the round creator) wins the flip.
func TieBreak(serverSeed, clientSeed string, nonce int64) bool {
	return TieBreakValue(serverSeed, clientSeed, nonce) < 0.5
}
