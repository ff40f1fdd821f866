package wheel

import (
	"errors"
	"testing"
)

func TestSelectWeighted_NoEntries(t *testing.T) {
	_, err := SelectWeighted(nil)
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectWeighted_NoPositiveWeight(t *testing.T) {
	entries := []Entry{
		{Index: 0, Weight: 0},
		{Index: 1, Weight: -5},
	}
	_, err := SelectWeighted(entries)
	if !errors.Is(err, ErrNoPositiveWeight) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectWeighted_SingleEntry(t *testing.T) {
	for i := 0; i < 100; i++ {
		idx, err := SelectWeighted([]Entry{{Index: 7, Weight: 50}})
		if err != nil {
			t.Fatalf("SelectWeighted failed: %v", err)
		}
		if idx != 7 {
			t.Fatalf("unexpected index: got=%d want=7", idx)
		}
	}
}

func TestSelectWeighted_Boundaries(t *testing.T) {
	originalRandom := drawRandomInt
	defer func() {
		drawRandomInt = originalRandom
	}()

	entries := []Entry{
		{Index: 0, Weight: 50},
		{Index: 1, Weight: 50},
	}

	cases := []struct {
		draw int
		want int
	}{
		{draw: 0, want: 0},
		{draw: 49, want: 0},
		{draw: 50, want: 1},
		{draw: 99, want: 1},
	}

	for _, tc := range cases {
		drawRandomInt = func(max int) (int, error) {
			return tc.draw, nil
		}
		idx, err := SelectWeighted(entries)
		if err != nil {
			t.Fatalf("SelectWeighted failed for draw=%d: %v", tc.draw, err)
		}
		if idx != tc.want {
			t.Fatalf("unexpected index for draw=%d: got=%d want=%d", tc.draw, idx, tc.want)
		}
	}
}

func TestSelectWeighted_SkipsNonPositiveWeights(t *testing.T) {
	entries := []Entry{
		{Index: 0, Weight: 0},
		{Index: 1, Weight: 10},
		{Index: 2, Weight: -1},
	}

	for i := 0; i < 100; i++ {
		idx, err := SelectWeighted(entries)
		if err != nil {
			t.Fatalf("SelectWeighted failed: %v", err)
		}
		if idx != 1 {
			t.Fatalf("unexpected index: got=%d want=1", idx)
		}
	}
}

func TestSelectWeighted_FrequencyConvergence(t *testing.T) {
	// weight比 1:3 で10,000回抽選し、相対度数が期待値に収束することを確認
	entries := []Entry{
		{Index: 0, Weight: 25},
		{Index: 1, Weight: 75},
	}

	const trials = 10000
	counts := make([]int, 2)
	for i := 0; i < trials; i++ {
		idx, err := SelectWeighted(entries)
		if err != nil {
			t.Fatalf("SelectWeighted failed: %v", err)
		}
		counts[idx]++
	}

	// 期待値 2500/7500、許容幅は ±3%（約7σ相当なのでフレークしない）
	if counts[0] < 2200 || counts[0] > 2800 {
		t.Fatalf("frequency out of tolerance: got=%d want≈2500", counts[0])
	}
	if counts[0]+counts[1] != trials {
		t.Fatalf("counts do not sum to trials: %d", counts[0]+counts[1])
	}
}
