package fair

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
)

var (
	ErrMissingServerSeed = errors.New("server seed is empty")
	ErrMissingClientSeed = errors.New("client seed is empty")
	ErrInvalidNonce      = errors.New("nonce must be non-negative")
	ErrInvalidBoardSize  = errors.New("board size must be positive")
)

// Shuffle derives the tile permutation for a round from the committed seed
// material. The result is a pure function of its inputs: the same seeds and
// nonce always produce the same permutation, which is what makes the layout
// auditable after the server seed is disclosed.
//
// The digest chain hashes the 64-char lowercase hex string itself, not the
// raw digest bytes, and each Fisher-Yates step reads an 8-hex-char segment at
// offset (i mod 8) * 8 of the current digest. The digest is rehashed after
// every swap.
func Shuffle(serverSeed, clientSeed string, nonce int64, boardSize int) ([]int, error) {
	if serverSeed == "" {
		return nil, ErrMissingServerSeed
	}
	if clientSeed == "" {
		return nil, ErrMissingClientSeed
	}
	if nonce < 0 {
		return nil, ErrInvalidNonce
	}
	if boardSize <= 0 {
		return nil, ErrInvalidBoardSize
	}

	combined := serverSeed + "-" + clientSeed + "-" + strconv.FormatInt(nonce, 10)
	digest := hexDigest(combined)

	perm := make([]int, boardSize)
	for i := range perm {
		perm[i] = i
	}

	for i := boardSize - 1; i >= 1; i-- {
		offset := (i % 8) * 8
		seg := digest[offset : offset+8]
		r, err := strconv.ParseUint(seg, 16, 64)
		if err != nil {
			return nil, err
		}
		j := int(r % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]

		digest = hexDigest(digest)
	}

	return perm, nil
}

// Bombs returns the bomb tile indices for a round: the first bombCount
// entries of the derived permutation.
func Bombs(serverSeed, clientSeed string, nonce int64, boardSize, bombCount int) ([]int, error) {
	if bombCount < 1 || bombCount >= boardSize {
		return nil, errors.New("bomb count must be between 1 and boardSize-1")
	}
	perm, err := Shuffle(serverSeed, clientSeed, nonce, boardSize)
	if err != nil {
		return nil, err
	}
	bombs := make([]int, bombCount)
	copy(bombs, perm[:bombCount])
	return bombs, nil
}

func hexDigest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
