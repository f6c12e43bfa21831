package fair

import "testing"

// Canonical conformance vector: shuffle("abc", "def", 1, 25) must reproduce
// this exact permutation in every implementation of the derivation.
var canonicalPerm = []int{
	20, 11, 2, 13, 19, 7, 23, 12, 1, 0, 8, 15, 16,
	21, 10, 9, 14, 22, 17, 24, 6, 5, 4, 3, 18,
}

func TestShuffleCanonicalVector(t *testing.T) {
	perm, err := Shuffle("abc", "def", 1, 25)
	if err != nil {
		t.Fatalf("Shuffle() error: %v", err)
	}
	if len(perm) != len(canonicalPerm) {
		t.Fatalf("permutation length = %d, want %d", len(perm), len(canonicalPerm))
	}
	for i := range perm {
		if perm[i] != canonicalPerm[i] {
			t.Errorf("perm[%d] = %d, want %d", i, perm[i], canonicalPerm[i])
		}
	}

	// First 5 entries are the bomb layout for bombCount=5.
	bombs, err := Bombs("abc", "def", 1, 25, 5)
	if err != nil {
		t.Fatalf("Bombs() error: %v", err)
	}
	want := []int{20, 11, 2, 13, 19}
	for i := range want {
		if bombs[i] != want[i] {
			t.Errorf("bombs[%d] = %d, want %d", i, bombs[i], want[i])
		}
	}
}

func TestShuffleSecondVector(t *testing.T) {
	perm, err := Shuffle("server", "client", 7, 25)
	if err != nil {
		t.Fatalf("Shuffle() error: %v", err)
	}
	want := []int{21, 15, 0, 16, 1, 17, 11, 5}
	for i := range want {
		if perm[i] != want[i] {
			t.Errorf("perm[%d] = %d, want %d", i, perm[i], want[i])
		}
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a, err := Shuffle("s1", "c1", 42, 25)
	if err != nil {
		t.Fatalf("Shuffle() error: %v", err)
	}
	b, err := Shuffle("s1", "c1", 42, 25)
	if err != nil {
		t.Fatalf("Shuffle() error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("determinism broken at index %d: %d != %d", i, a[i], b[i])
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	for _, nonce := range []int64{0, 1, 2, 99, 1000} {
		perm, err := Shuffle("seed", "client", nonce, 25)
		if err != nil {
			t.Fatalf("Shuffle(nonce=%d) error: %v", nonce, err)
		}
		seen := make(map[int]bool, len(perm))
		for _, v := range perm {
			if v < 0 || v >= 25 {
				t.Errorf("nonce=%d: value %d out of range", nonce, v)
			}
			if seen[v] {
				t.Errorf("nonce=%d: duplicate value %d", nonce, v)
			}
			seen[v] = true
		}
	}
}

func TestBombsAllCounts(t *testing.T) {
	for bombCount := 1; bombCount <= 24; bombCount++ {
		bombs, err := Bombs("seed", "client", 3, 25, bombCount)
		if err != nil {
			t.Fatalf("Bombs(bombCount=%d) error: %v", bombCount, err)
		}
		if len(bombs) != bombCount {
			t.Errorf("bombCount=%d: got %d bombs", bombCount, len(bombs))
		}
		seen := make(map[int]bool)
		for _, b := range bombs {
			if b < 0 || b >= 25 {
				t.Errorf("bombCount=%d: bomb %d out of range", bombCount, b)
			}
			if seen[b] {
				t.Errorf("bombCount=%d: duplicate bomb %d", bombCount, b)
			}
			seen[b] = true
		}
	}
}

func TestShuffleInvalidInputs(t *testing.T) {
	cases := []struct {
		name       string
		server     string
		client     string
		nonce      int64
		boardSize  int
		wantErr    error
	}{
		{"empty server seed", "", "c", 1, 25, ErrMissingServerSeed},
		{"empty client seed", "s", "", 1, 25, ErrMissingClientSeed},
		{"negative nonce", "s", "c", -1, 25, ErrInvalidNonce},
		{"zero board", "s", "c", 1, 0, ErrInvalidBoardSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perm, err := Shuffle(tc.server, tc.client, tc.nonce, tc.boardSize)
			if err != tc.wantErr {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if perm != nil {
				t.Fatal("expected empty result on invalid input")
			}
		})
	}

	if _, err := Bombs("s", "c", 1, 25, 0); err == nil {
		t.Error("expected error for bombCount=0")
	}
	if _, err := Bombs("s", "c", 1, 25, 25); err == nil {
		t.Error("expected error for bombCount=boardSize")
	}
}

func TestVerifyLayoutMatchesPlayedRound(t *testing.T) {
	bombs, err := Bombs("audit-server", "audit-client", 5, 25, 3)
	if err != nil {
		t.Fatalf("Bombs() error: %v", err)
	}
	if !LayoutMatches("audit-server", "audit-client", 5, 25, bombs) {
		t.Error("recomputed layout does not match the played one")
	}

	tampered := append([]int(nil), bombs...)
	tampered[0] = (tampered[0] + 1) % 25
	if LayoutMatches("audit-server", "audit-client", 5, 25, tampered) {
		t.Error("tampered layout reported as matching")
	}
}

func BenchmarkShuffle(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Shuffle("bench-server", "bench-client", int64(i), 25)
	}
}
