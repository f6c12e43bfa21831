package fair

import (
	"math"
	"testing"
)

func TestMultiplierZeroRevealsEqualsHouseEdge(t *testing.T) {
	for bombCount := 1; bombCount <= 24; bombCount++ {
		if got := Multiplier(0, bombCount, 25, DefaultHouseEdge); got != DefaultHouseEdge {
			t.Errorf("Multiplier(0, %d) = %v, want exactly %v", bombCount, got, DefaultHouseEdge)
		}
	}
}

func TestMultiplierKnownValues(t *testing.T) {
	cases := []struct {
		safe  int
		bombs int
		want  float64
	}{
		{1, 5, 1.2375},
		{2, 5, 1.563157894736842},
		{3, 5, 1.9973684210526315},
		{1, 24, 24.75},
		{1, 1, 1.03125},
		{20, 5, 52598.7},
	}

	for _, tc := range cases {
		got := Multiplier(tc.safe, tc.bombs, 25, DefaultHouseEdge)
		if math.Abs(got-tc.want)/tc.want > 1e-12 {
			t.Errorf("Multiplier(%d, %d) = %v, want %v", tc.safe, tc.bombs, got, tc.want)
		}
	}
}

func TestMultiplierStrictlyIncreasingInReveals(t *testing.T) {
	for bombCount := 1; bombCount <= 24; bombCount++ {
		safeTiles := 25 - bombCount
		prev := Multiplier(0, bombCount, 25, DefaultHouseEdge)
		for safe := 1; safe <= safeTiles; safe++ {
			cur := Multiplier(safe, bombCount, 25, DefaultHouseEdge)
			if cur <= prev {
				t.Fatalf("bombCount=%d: Multiplier(%d)=%v not greater than Multiplier(%d)=%v",
					bombCount, safe, cur, safe-1, prev)
			}
			prev = cur
		}
	}
}

func TestMultiplierStrictlyIncreasingInBombs(t *testing.T) {
	for safe := 1; safe <= 10; safe++ {
		prev := Multiplier(safe, 1, 25, DefaultHouseEdge)
		for bombCount := 2; bombCount <= 25-safe-1; bombCount++ {
			cur := Multiplier(safe, bombCount, 25, DefaultHouseEdge)
			if cur <= prev {
				t.Fatalf("safe=%d: Multiplier(bombs=%d)=%v not greater than Multiplier(bombs=%d)=%v",
					safe, bombCount, cur, bombCount-1, prev)
			}
			prev = cur
		}
	}
}

func TestMultiplierTable(t *testing.T) {
	table := MultiplierTable(5, 25, DefaultHouseEdge)
	if len(table) != 20 {
		t.Fatalf("table length = %d, want 20", len(table))
	}
	if math.Abs(table[0]-1.2375) > 1e-12 {
		t.Errorf("table[0] = %v, want 1.2375", table[0])
	}
	for i := 1; i < len(table); i++ {
		if table[i] <= table[i-1] {
			t.Errorf("table not strictly increasing at %d: %v <= %v", i, table[i], table[i-1])
		}
	}
}
