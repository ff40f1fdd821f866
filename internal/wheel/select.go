package wheel

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
)

var (
	ErrNoEntries        = errors.New("no entries")
	ErrNoPositiveWeight = errors.New("no entry with positive weight")
	errInvalidTotal     = errors.New("invalid total weight")
)

// Entry は重み付き抽選の1エントリ。Indexは呼び出し側のスライス位置。
type Entry struct {
	Index  int
	Weight int
}

// weightedEntry carries the cumulative weight boundary used by the draw.
type weightedEntry struct {
	entry         Entry
	cumulativeSum int
}

var drawRandomInt = secureRandomInt

// SelectWeighted picks exactly one entry index so that entry i wins with
// probability Weight[i] / sum(weights). Entries with non-positive weight are
// skipped. Returns ErrNoEntries for an empty input and ErrNoPositiveWeight
// when every entry has been skipped.
func SelectWeighted(entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, ErrNoEntries
	}

	weighted, total := buildBoundaries(entries)
	if len(weighted) == 0 || total <= 0 {
		return 0, ErrNoPositiveWeight
	}

	picked, err := drawRandomInt(total)
	if err != nil {
		return 0, fmt.Errorf("failed to draw random weight: %w", err)
	}

	// pickedは[0,total)なので1始まりに直して最初の境界を探す
	target := picked + 1
	idx := sort.Search(len(weighted), func(i int) bool {
		return weighted[i].cumulativeSum >= target
	})
	if idx >= len(weighted) {
		return 0, errInvalidTotal
	}

	return weighted[idx].entry.Index, nil
}

func buildBoundaries(entries []Entry) ([]weightedEntry, int) {
	weighted := make([]weightedEntry, 0, len(entries))
	total := 0

	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		total += e.Weight
		weighted = append(weighted, weightedEntry{
			entry:         e,
			cumulativeSum: total,
		})
	}

	return weighted, total
}

func secureRandomInt(max int) (int, error) {
	if max <= 0 {
		return 0, errInvalidTotal
	}

	n, err := crand.Int(crand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
