package randdraw

import (
	"errors"
	"math/rand"
)

var (
	ErrInvalidRange      = errors.New("min must not exceed max")
	ErrInvalidCount      = errors.New("count must be greater than 0")
	ErrCountExceedsRange = errors.New("count exceeds unique values in range")
	ErrRangeTooWide      = errors.New("range too wide for a duplicate-free draw")
	ErrNoSlots           = errors.New("need at least 1 registered slot")
)

// maxShuffleSpan bounds the slice a duplicate-free draw allocates.
const maxShuffleSpan = 1 << 20

// CoinSide is one of the two coin outcomes.
type CoinSide string

const (
	Heads CoinSide = "heads"
	Tails CoinSide = "tails"
)

// Config は数値抽選1リクエスト分の設定
type Config struct {
	Min             int  `json:"min"`
	Max             int  `json:"max"`
	Count           int  `json:"count"`
	AllowDuplicates bool `json:"allow_duplicates"`
}

// Validate checks the preconditions the draw assumes. Callers normalize
// user-editable values (swapping min/max, clamping count) before calling;
// Validate never substitutes defaults itself.
func (c Config) Validate() error {
	if c.Min > c.Max {
		return ErrInvalidRange
	}
	if c.Count <= 0 {
		return ErrInvalidCount
	}
	if !c.AllowDuplicates {
		span := c.rangeSpan()
		// span==0はuint64すら溢れる全int範囲
		if span == 0 || span > maxShuffleSpan {
			return ErrRangeTooWide
		}
		if uint64(c.Count) > span {
			return ErrCountExceedsRange
		}
	}
	return nil
}

// rangeSpan returns the number of values in [Min, Max] computed in uint64 so
// wide ranges never overflow int. Zero means even uint64 overflowed, which
// only happens for the full int range.
func (c Config) rangeSpan() uint64 {
	return uint64(c.Max) - uint64(c.Min) + 1
}

// Integers draws cfg.Count uniform integers in [cfg.Min, cfg.Max]. When
// duplicates are disallowed the full range is shuffled and the first Count
// values taken, so the draw never retries and never relaxes the constraint.
func Integers(cfg Config) ([]int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AllowDuplicates {
		results := make([]int, cfg.Count)
		for i := range results {
			results[i] = drawInRange(cfg.Min, cfg.Max)
		}
		return results, nil
	}

	// 重複なし: 全範囲をシャッフルして先頭Count個を取る
	values := make([]int, int(cfg.rangeSpan()))
	for i := range values {
		values[i] = cfg.Min + i
	}
	rand.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return values[:cfg.Count], nil
}

// drawInRange returns a uniform value in [min, max]. The span and the offset
// are kept in uint64 and added back with two's-complement wraparound, so the
// math stays exact even when max-min does not fit in an int.
func drawInRange(min, max int) int {
	span := uint64(max) - uint64(min) + 1
	if span == 0 {
		// [MinInt, MaxInt]: every int value is admissible
		return int(rand.Uint64())
	}
	return int(uint64(min) + rand.Uint64()%span)
}

// FlipCoin returns Heads or Tails with equal probability.
func FlipCoin() CoinSide {
	if rand.Intn(2) == 0 {
		return Heads
	}
	return Tails
}

// PickIndex selects one slot uniformly among n registered slots.
func PickIndex(n int) (int, error) {
	if n < 1 {
		return 0, ErrNoSlots
	}
	return rand.Intn(n), nil
}
