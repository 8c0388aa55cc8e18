package main

import "time"

const cameraEaseBase = 0.15

// camera computes the world draw offset. Horizontally a world smaller than
// the viewport is centered; vertically it pins to the top so the HUD zone
// stays predictable. Larger worlds follow the local player, clamped to the
// world bounds, and the applied offset is itself eased so the double
// smoothing (sprite toward target, camera toward sprite) kills jitter.
type camera struct {
	cfg GameConfig

	pos    vec2 // applied offset
	target vec2
	seeded bool
}

func newCamera(cfg GameConfig) *camera {
	return &camera{cfg: cfg}
}

// targetFor computes the clamped target offset for one focus position.
// A nil focus holds the previous target.
func (c *camera) targetFor(focus *vec2, viewportW, viewportH int) vec2 {
	worldW, worldH := c.cfg.worldSize()
	t := c.target

	if worldW <= viewportW {
		t.X = float64(viewportW-worldW) / 2
	} else if focus != nil {
		t.X = clampF(float64(viewportW)/2-focus.X, -float64(worldW-viewportW), 0)
	}

	if worldH <= viewportH {
		t.Y = 0
	} else if focus != nil {
		t.Y = clampF(float64(viewportH)/2-focus.Y, -float64(worldH-viewportH), 0)
	}

	return t
}

func (c *camera) advance(dt time.Duration, focus *vec2, viewportW, viewportH int) {
	c.target = c.targetFor(focus, viewportW, viewportH)
	if !c.seeded {
		c.pos = c.target
		c.seeded = true
		return
	}
	f := easeFactor(cameraEaseBase, dt)
	c.pos.X += (c.target.X - c.pos.X) * f
	c.pos.Y += (c.target.Y - c.pos.Y) * f
}

func (c *camera) offset() vec2 {
	return c.pos
}

func (c *camera) reset() {
	c.pos = vec2{}
	c.target = vec2{}
	c.seeded = false
}
