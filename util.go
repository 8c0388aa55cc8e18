package main

import (
	"math"
	"time"
)

// vec2 is a position or offset in world pixels.
type vec2 struct {
	X, Y float64
}

func (v vec2) sub(o vec2) vec2 {
	return vec2{v.X - o.X, v.Y - o.Y}
}

func (v vec2) len() float64 {
	return math.Hypot(v.X, v.Y)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clampF(v, 0, 1)
}

// easeFactor converts a per-frame smoothing base (tuned at 60fps) into a
// factor for an arbitrary frame delta, so exponential easing converges at
// the same speed regardless of refresh rate.
func easeFactor(base float64, dt time.Duration) float64 {
	if base >= 1 {
		return 1
	}
	return 1 - math.Pow(1-base, dt.Seconds()*60)
}

// frames60 expresses a frame delta in 60fps frame units. Phase clocks that
// were tuned as per-frame increments advance by step*frames60(dt).
func frames60(dt time.Duration) float64 {
	return dt.Seconds() * 60
}

// pow60 scales a per-frame multiplicative decay (tuned at 60fps) to an
// arbitrary frame delta.
func pow60(base float64, dt time.Duration) float64 {
	return math.Pow(base, frames60(dt))
}

// progress01 maps the time since start against a window to [0,1].
// A zero start reports 1 (the effect is long over).
func progress01(start, now time.Time, window time.Duration) float64 {
	if start.IsZero() || window <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(start)) / float64(window))
}
