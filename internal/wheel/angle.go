package wheel

import (
	"errors"
	"math"
	"math/rand"
)

// PointerBias is the fixed calibration offset (degrees) correcting for the
// visual pointer not sitting exactly at the mathematical reference angle.
const PointerBias = -15.0

const fullCircle = 360.0

var ErrNoSectors = errors.New("sector count must be at least 1")

var sectorJitter = func() float64 { return rand.Float64() }

// MapAngleToIndex converts the final resting rotation angle of a wheel
// (degrees, clockwise-positive, any sign or magnitude) into the index of the
// sector under the fixed pointer, assuming n equally-sized sectors and sector
// 0 centered at baseOffsetDegrees before any rotation.
func MapAngleToIndex(angleDegrees float64, sectorCount int, baseOffsetDegrees float64) (int, error) {
	if sectorCount < 1 {
		return 0, ErrNoSectors
	}

	normalized := normalizeDegrees(angleDegrees)
	width := fullCircle / float64(sectorCount)

	// 回転後のホイール座標系におけるポインタ位置のオフセット
	offset := normalizeDegrees(baseOffsetDegrees + PointerBias + width/2 - normalized)

	idx := int(math.Floor(offset / width))
	// 浮動小数点境界でn丁度になるのを防ぐ
	if idx >= sectorCount {
		idx = sectorCount - 1
	}
	return idx, nil
}

// SpinTarget computes a target rotation angle (degrees) that lands winnerIndex
// under the pointer, with fullTurns extra whole rotations for the animation.
// The landing point is jittered inside the winner's sector, away from its
// edges, so repeated spins on the same winner do not rest at the same spot.
//
// Invariant: MapAngleToIndex(SpinTarget(i, n, off, k), n, off) == i.
func SpinTarget(winnerIndex, sectorCount int, baseOffsetDegrees float64, fullTurns int) (float64, error) {
	if sectorCount < 1 {
		return 0, ErrNoSectors
	}
	if winnerIndex < 0 || winnerIndex >= sectorCount {
		return 0, errors.New("winner index out of range")
	}
	if fullTurns < 0 {
		fullTurns = 0
	}

	width := fullCircle / float64(sectorCount)

	// セクター内の10%〜90%に収めて境界ぎりぎりを避ける
	jitter := width * (0.1 + 0.8*sectorJitter())
	offset := float64(winnerIndex)*width + jitter

	angle := normalizeDegrees(baseOffsetDegrees + PointerBias + width/2 - offset)
	return angle + fullCircle*float64(fullTurns), nil
}

// normalizeDegrees maps any angle into [0, 360). math.Mod keeps the sign of
// the dividend, so negative results need one more wrap.
func normalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, fullCircle)
	if m < 0 {
		m += fullCircle
	}
	return m
}
