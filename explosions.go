package main

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// explosionSprite is purely age-driven: every visual is a function of
// now minus creation. Removal only ever happens through reconciliation,
// the server owns explosion lifetime.
type explosionSprite struct {
	state   ExplosionState
	pos     vec2
	created time.Time
}

func (sp *explosionSprite) age(now time.Time) time.Duration {
	return now.Sub(sp.created)
}

type explosionPresenter struct {
	cfg     GameConfig
	sprites map[string]*explosionSprite
}

func newExplosionPresenter(cfg GameConfig) *explosionPresenter {
	return &explosionPresenter{cfg: cfg, sprites: make(map[string]*explosionSprite)}
}

// reconcile returns the explosions first seen in this snapshot so the
// orchestrator can fan out shake and sound.
func (p *explosionPresenter) reconcile(list []ExplosionState, now time.Time) (created []ExplosionState) {
	seen := make(map[string]struct{}, len(list))
	for i := range list {
		st := list[i]
		seen[st.ID] = struct{}{}
		if sp, ok := p.sprites[st.ID]; ok {
			sp.state = st
			continue
		}
		p.sprites[st.ID] = &explosionSprite{
			state:   st,
			pos:     cellCenter(st.X, st.Y, p.cfg.TileSize),
			created: now,
		}
		created = append(created, st)
	}
	for id := range p.sprites {
		if _, ok := seen[id]; !ok {
			delete(p.sprites, id)
		}
	}
	return created
}

func (p *explosionPresenter) len() int { return len(p.sprites) }

func (p *explosionPresenter) ids() map[string]struct{} {
	out := make(map[string]struct{}, len(p.sprites))
	for id := range p.sprites {
		out[id] = struct{}{}
	}
	return out
}

func (p *explosionPresenter) destroyAll() {
	p.sprites = make(map[string]*explosionSprite)
}

// blastRadius maps age to the cell blast radius: quick expand, hold, then
// shrink away. Returns radius in pixels and an alpha in [0,1].
func (p *explosionPresenter) blastRadius(age time.Duration) (float64, float64) {
	full := float64(p.cfg.TileSize) * 0.48
	t := clamp01(float64(age) / float64(p.cfg.ExplosionVisible))
	switch {
	case t < 0.25:
		return full * (t / 0.25), 1
	case t < 0.7:
		return full, 1
	default:
		k := (t - 0.7) / 0.3
		return full * (1 - k), 1 - k
	}
}

func (p *explosionPresenter) draw(dst *ebiten.Image, now time.Time) {
	for _, sp := range p.sprites {
		r, a := p.blastRadius(sp.age(now))
		if r <= 0 {
			continue
		}
		x, y := float32(sp.pos.X), float32(sp.pos.Y)
		outer := color.NRGBA{R: 0xe8, G: 0x5a, B: 0x20, A: uint8(200 * a)}
		mid := color.NRGBA{R: 0xf5, G: 0xa6, B: 0x23, A: uint8(230 * a)}
		core := color.NRGBA{R: 0xff, G: 0xf2, B: 0xc8, A: uint8(255 * a)}
		vector.DrawFilledCircle(dst, x, y, float32(r), outer, true)
		vector.DrawFilledCircle(dst, x, y, float32(r*0.66), mid, true)
		vector.DrawFilledCircle(dst, x, y, float32(r*0.33), core, true)
	}
}
