package main

import (
	"math/rand"
	"time"
)

const (
	shakeCutoffCells = 6.0
	shakeMax         = 10.0
	shakeDecay       = 0.85 // per 60fps frame
	shakeEpsilon     = 0.1
)

// screenShake is a decaying impulse accumulator. Concurrent impulses take
// the max, they never stack, so a cluster of simultaneous explosions feels
// like one kick.
type screenShake struct {
	intensity float64
	rng       *rand.Rand
}

func newScreenShake() *screenShake {
	return &screenShake{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// trigger raises the shake for an impulse at a grid cell, scaled down with
// distance from the local player and ignored beyond the cutoff radius.
func (s *screenShake) trigger(srcX, srcY, playerX, playerY int) {
	d := cellDistance(srcX, srcY, playerX, playerY)
	if d >= shakeCutoffCells {
		return
	}
	s.add(shakeMax * (1 - d/shakeCutoffCells))
}

func (s *screenShake) add(v float64) {
	if v > s.intensity {
		s.intensity = v
	}
}

func (s *screenShake) step(dt time.Duration) {
	if s.intensity <= shakeEpsilon {
		s.intensity = 0
		return
	}
	s.intensity *= pow60(shakeDecay, dt)
	if s.intensity <= shakeEpsilon {
		s.intensity = 0
	}
}

// offset is the per-frame render displacement, zero once the shake dies.
func (s *screenShake) offset() vec2 {
	if s.intensity == 0 {
		return vec2{}
	}
	h := s.intensity / 2
	return vec2{
		X: (s.rng.Float64()*2 - 1) * h,
		Y: (s.rng.Float64()*2 - 1) * h,
	}
}

func (s *screenShake) reset() {
	s.intensity = 0
}
