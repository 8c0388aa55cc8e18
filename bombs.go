package main

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	bombEaseStatic = 0.2
	bombEaseMoving = 0.35
	bombEaseFlying = 0.5

	// wrap bounce: full squash-teleport-stretch spans phase 0..2 at
	// wrapPhaseStep per frame, about 400ms at 60fps.
	wrapPhaseStep   = 0.08
	wrapTileSpan    = 5 // target jumps beyond this many tiles mean a map-edge wrap
	bombBounceStep  = 0.04
	bombBouncePx    = 10.0
	bombSparkPeriod = 90 * time.Millisecond
)

type wrapAxis int

const (
	wrapNone wrapAxis = iota
	wrapX
	wrapY
)

// bombSprite holds one bomb's echo plus its presentation clocks. The wrap
// machine masks discontinuous jumps across wraparound edges: squash toward
// zero on the travel axis, teleport while invisible, stretch back out.
type bombSprite struct {
	state BombState

	pos    vec2
	target vec2

	bouncePhase float64 // flight bounce clock, wraps at 1
	wrapPhase   float64 // 0 idle, (0,1) exiting, [1,2) entering
	wrapAxis    wrapAxis
	wrapTo      vec2

	created time.Time
}

// urgency is 0 for a fresh fuse and 1 at detonation.
func (sp *bombSprite) urgency(totalFuse time.Duration) float64 {
	if totalFuse <= 0 {
		return 1
	}
	return clamp01(1 - float64(sp.state.Fuse)/float64(totalFuse))
}

// wrapScale reports the sprite scale on both axes for the current wrap
// phase. Identity when idle.
func (sp *bombSprite) wrapScale() (sx, sy float64) {
	sx, sy = 1, 1
	var along float64
	switch {
	case sp.wrapPhase <= 0 || sp.wrapPhase >= 2:
		return 1, 1
	case sp.wrapPhase < 1: // exiting
		along = 1 - sp.wrapPhase
	default: // entering
		along = sp.wrapPhase - 1
	}
	switch sp.wrapAxis {
	case wrapX:
		sx = along
	case wrapY:
		sy = along
	}
	return sx, sy
}

func (sp *bombSprite) wrapping() bool {
	return sp.wrapPhase > 0
}

// bounceOffset is the vertical flight arc, zero the moment flying clears.
func (sp *bombSprite) bounceOffset() float64 {
	if !sp.state.Flying {
		return 0
	}
	frac := sp.bouncePhase - math.Floor(sp.bouncePhase)
	return math.Sin(frac*math.Pi) * bombBouncePx
}

type bombPresenter struct {
	cfg     GameConfig
	smooth  bool
	sprites map[string]*bombSprite
}

func newBombPresenter(cfg GameConfig, smooth bool) *bombPresenter {
	return &bombPresenter{cfg: cfg, smooth: smooth, sprites: make(map[string]*bombSprite)}
}

// reconcile syncs against the authoritative bomb list and returns how many
// bombs appeared this snapshot.
func (p *bombPresenter) reconcile(list []BombState, now time.Time) (placed int) {
	seen := make(map[string]struct{}, len(list))
	for i := range list {
		st := list[i]
		seen[st.ID] = struct{}{}
		t := cellCenter(st.X, st.Y, p.cfg.TileSize)

		sp, ok := p.sprites[st.ID]
		if !ok {
			p.sprites[st.ID] = &bombSprite{state: st, pos: t, target: t, created: now}
			placed++
			continue
		}

		if t != sp.target {
			jump := t.sub(sp.target)
			if st.Flying && !sp.wrapping() && jump.len() > float64(wrapTileSpan*p.cfg.TileSize) {
				sp.wrapPhase = math.SmallestNonzeroFloat64
				if math.Abs(jump.X) >= math.Abs(jump.Y) {
					sp.wrapAxis = wrapX
				} else {
					sp.wrapAxis = wrapY
				}
				sp.wrapTo = t
			}
			sp.target = t
		}
		sp.state = st
	}
	for id := range p.sprites {
		if _, ok := seen[id]; !ok {
			delete(p.sprites, id)
		}
	}
	return placed
}

func (p *bombPresenter) advance(now time.Time, dt time.Duration) {
	fr := frames60(dt)
	for _, sp := range p.sprites {
		if sp.state.Flying {
			sp.bouncePhase += bombBounceStep * fr
		} else {
			sp.bouncePhase = 0
		}

		if sp.wrapping() {
			was := sp.wrapPhase
			sp.wrapPhase += wrapPhaseStep * fr
			if was < 1 && sp.wrapPhase >= 1 {
				sp.pos = sp.wrapTo // hidden by the full squash
			}
			if sp.wrapPhase >= 2 {
				sp.wrapPhase = 0
				sp.wrapAxis = wrapNone
			}
			continue // interpolation is suspended while wrapping
		}

		base := bombEaseStatic
		switch {
		case sp.state.Flying:
			base = bombEaseFlying
		case sp.state.Moving:
			base = bombEaseMoving
		}
		f := easeFactor(base, dt)
		if !p.smooth {
			f = 1
		}
		sp.pos.X += (sp.target.X - sp.pos.X) * f
		sp.pos.Y += (sp.target.Y - sp.pos.Y) * f
	}
}

func (p *bombPresenter) get(id string) *bombSprite {
	return p.sprites[id]
}

func (p *bombPresenter) len() int { return len(p.sprites) }

func (p *bombPresenter) ids() map[string]struct{} {
	out := make(map[string]struct{}, len(p.sprites))
	for id := range p.sprites {
		out[id] = struct{}{}
	}
	return out
}

func (p *bombPresenter) destroyAll() {
	p.sprites = make(map[string]*bombSprite)
}

func (p *bombPresenter) draw(dst *ebiten.Image, now time.Time) {
	r := float64(p.cfg.TileSize) * 0.34
	for _, sp := range p.sprites {
		u := sp.urgency(p.cfg.BombFuse)
		sx, sy := sp.wrapScale()
		x := sp.pos.X
		y := sp.pos.Y - sp.bounceOffset()

		// body darkens to red as the fuse runs out, with a fast pulse on top
		pulse := 0.5 + 0.5*math.Sin(float64(now.UnixMilli())/120*(0.5+u*2))
		rr := uint8(0x28 + u*pulse*180)
		body := color.NRGBA{R: rr, G: 0x22, B: 0x26, A: 0xff}

		shadow := color.NRGBA{A: 70}
		vector.DrawFilledCircle(dst, float32(x), float32(sp.pos.Y+r*0.8), float32(r*0.6), shadow, true)

		if sx != 1 || sy != 1 {
			// wrap squash flattens one axis; a filled rect reads fine at
			// these sizes and avoids a path build per frame
			vector.DrawFilledRect(dst,
				float32(x-r*sx), float32(y-r*sy),
				float32(2*r*sx), float32(2*r*sy), body, true)
		} else {
			vector.DrawFilledCircle(dst, float32(x), float32(y), float32(r), body, true)
		}

		if sp.state.Piercing {
			rim := color.NRGBA{R: 0x66, G: 0xc6, B: 0xff, A: 0xc0}
			vector.StrokeCircle(dst, float32(x), float32(y), float32(r+1), 1.5, rim, true)
		}

		// fuse and spark
		fx := float32(x + r*0.3*sx)
		fy := float32(y - r*sy)
		vector.StrokeLine(dst, float32(x), float32(y-r*sy*0.8), fx, fy-3, 2, color.NRGBA{R: 0x7a, G: 0x5a, B: 0x3a, A: 0xff}, true)
		sparkOn := (now.UnixMilli()/bombSparkPeriod.Milliseconds())%2 == 0
		if sparkOn || u > 0.7 {
			spark := color.NRGBA{R: 0xff, G: 0xd9, B: 0x4a, A: 0xff}
			vector.DrawFilledCircle(dst, fx, fy-4, float32(2+u*2), spark, true)
			// flecks get denser near detonation
			n := 1 + int(u*3)
			for i := 0; i < n; i++ {
				ang := float64(now.UnixNano()/1e7+int64(i)*97) * 0.7
				px := float64(fx) + math.Cos(ang)*(3+u*3)
				py := float64(fy-4) + math.Sin(ang)*(3+u*3)
				vector.DrawFilledCircle(dst, float32(px), float32(py), 1, spark, true)
			}
		}
	}
}
