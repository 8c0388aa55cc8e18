package main

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	playerEaseBase = 0.3
	moveSquashTime = 200 * time.Millisecond
	deathDuration  = 800 * time.Millisecond
	stunBlinkEvery = 150 * time.Millisecond
	deathRisePx    = 12.0
)

// playerPalette maps the server-assigned color index to a body color.
var playerPalette = []color.NRGBA{
	{R: 0xe8, G: 0x4b, B: 0x3c, A: 0xff}, // red
	{R: 0x3d, G: 0x7b, B: 0xe8, A: 0xff}, // blue
	{R: 0x46, G: 0xb4, B: 0x5a, A: 0xff}, // green
	{R: 0xe8, G: 0xc5, B: 0x3a, A: 0xff}, // yellow
	{R: 0x9b, G: 0x59, B: 0xd0, A: 0xff}, // purple
	{R: 0x41, G: 0xc6, B: 0xc0, A: 0xff}, // teal
	{R: 0xe8, G: 0x8a, B: 0x3a, A: 0xff}, // orange
	{R: 0xe8, G: 0x6a, B: 0xb0, A: 0xff}, // pink
}

func playerColor(idx int) color.NRGBA {
	if idx < 0 {
		idx = 0
	}
	return playerPalette[idx%len(playerPalette)]
}

// playerSprite pairs one player's authoritative echo with its presentation
// state. pos eases toward target every frame; the timestamps drive the
// squash and death effects.
type playerSprite struct {
	state PlayerState

	pos    vec2
	target vec2
	prev   vec2

	moveStart  time.Time // last target change
	deathStart time.Time // first alive=false observation, set once
}

// deathProgress is monotonic in [0,1]; 1 is the terminal dead appearance.
func (sp *playerSprite) deathProgress(now time.Time) float64 {
	if sp.deathStart.IsZero() {
		return 0
	}
	return progress01(sp.deathStart, now, deathDuration)
}

func (sp *playerSprite) stunBlinkOn(now time.Time) bool {
	if !sp.state.stunned(now) {
		return false
	}
	return (now.UnixMilli()/stunBlinkEvery.Milliseconds())%2 == 0
}

type playerPresenter struct {
	cfg     GameConfig
	smooth  bool
	sprites map[string]*playerSprite
}

func newPlayerPresenter(cfg GameConfig, smooth bool) *playerPresenter {
	return &playerPresenter{cfg: cfg, smooth: smooth, sprites: make(map[string]*playerSprite)}
}

// reconcile syncs the sprite set against the authoritative list. New ids are
// placed at their mapped position with no interpolation lag; vanished ids
// are dropped. Returns the ids whose death was observed this snapshot.
func (p *playerPresenter) reconcile(list []PlayerState, now time.Time) (died []string) {
	seen := make(map[string]struct{}, len(list))
	for i := range list {
		st := list[i]
		seen[st.ID] = struct{}{}
		t := cellCenter(st.X, st.Y, p.cfg.TileSize)

		sp, ok := p.sprites[st.ID]
		if !ok {
			sp = &playerSprite{state: st, pos: t, target: t, prev: t}
			if !st.Alive {
				sp.deathStart = now
			}
			p.sprites[st.ID] = sp
			continue
		}

		if t != sp.target {
			sp.target = t
			sp.moveStart = now
		}
		if !st.Alive {
			if sp.deathStart.IsZero() {
				sp.deathStart = now
				died = append(died, st.ID)
			}
		} else {
			sp.deathStart = time.Time{}
		}
		sp.state = st
	}
	for id := range p.sprites {
		if _, ok := seen[id]; !ok {
			delete(p.sprites, id)
		}
	}
	return died
}

func (p *playerPresenter) advance(now time.Time, dt time.Duration) {
	f := easeFactor(playerEaseBase, dt)
	if !p.smooth {
		f = 1
	}
	for _, sp := range p.sprites {
		sp.prev = sp.pos
		sp.pos.X += (sp.target.X - sp.pos.X) * f
		sp.pos.Y += (sp.target.Y - sp.pos.Y) * f
	}
}

func (p *playerPresenter) get(id string) *playerSprite {
	if id == "" {
		return nil
	}
	return p.sprites[id]
}

func (p *playerPresenter) len() int { return len(p.sprites) }

func (p *playerPresenter) ids() map[string]struct{} {
	out := make(map[string]struct{}, len(p.sprites))
	for id := range p.sprites {
		out[id] = struct{}{}
	}
	return out
}

func (p *playerPresenter) destroyAll() {
	p.sprites = make(map[string]*playerSprite)
}

func (p *playerPresenter) draw(dst *ebiten.Image, now time.Time, showNames bool) {
	r := float64(p.cfg.TileSize) * 0.38
	for _, sp := range p.sprites {
		body := playerColor(sp.state.Color)
		x, y := sp.pos.X, sp.pos.Y

		dp := sp.deathProgress(now)
		alpha := 1.0
		scale := 1.0
		if dp > 0 {
			alpha = 1 - dp
			scale = 1 + 0.3*dp
			y -= deathRisePx * dp
		}

		// Squash briefly after each observed cell step.
		sq := 1 - progress01(sp.moveStart, now, moveSquashTime)
		sx := scale * (1 + 0.15*sq)
		sy := scale * (1 - 0.15*sq)

		if sp.stunBlinkOn(now) {
			body = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		}
		body.A = uint8(float64(body.A) * alpha)

		shadow := color.NRGBA{A: uint8(70 * alpha)}
		vector.DrawFilledCircle(dst, float32(x), float32(sp.pos.Y+r*0.8), float32(r*0.7), shadow, true)

		vector.DrawFilledCircle(dst, float32(x), float32(y), float32(r), body, true)
		// simple face so facing players read as characters, not tokens
		eye := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(255 * alpha)}
		pupil := color.NRGBA{R: 0x20, G: 0x20, B: 0x24, A: uint8(255 * alpha)}
		ex := r * 0.35 * sx / scale
		vector.DrawFilledCircle(dst, float32(x-ex), float32(y-r*0.15*sy), float32(r*0.22), eye, true)
		vector.DrawFilledCircle(dst, float32(x+ex), float32(y-r*0.15*sy), float32(r*0.22), eye, true)
		vector.DrawFilledCircle(dst, float32(x-ex), float32(y-r*0.15*sy), float32(r*0.1), pupil, true)
		vector.DrawFilledCircle(dst, float32(x+ex), float32(y-r*0.15*sy), float32(r*0.1), pupil, true)

		if showNames && dp < 1 {
			name := displayName(sp.state.Name)
			tx := int(x) - len(name)*3
			ebitenutil.DebugPrintAt(dst, name, tx, int(y-r)-16)
		}
	}
}
