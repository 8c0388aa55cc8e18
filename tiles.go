package main

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/remeh/sizedwaitgroup"
)

// TileType is the closed set of tile codes the server can send. Codes the
// client does not know about render as floor.
type TileType int

const (
	TileEmpty TileType = iota
	TileHardWall
	TileSoftBlock
	TilePowerBomb
	TilePowerRange
	TilePowerSpeed
	TilePowerKick
	TilePowerPunch
	TilePowerPierce
	TileCursedSkull
	tileTypeCount
)

func tileFromCode(code int) TileType {
	if code < 0 || code >= int(tileTypeCount) {
		return TileEmpty
	}
	return TileType(code)
}

func (t TileType) isPowerUp() bool {
	switch t {
	case TilePowerBomb, TilePowerRange, TilePowerSpeed, TilePowerKick, TilePowerPunch, TilePowerPierce:
		return true
	}
	return false
}

// tileLayer owns the visual tile grid. Mutations mark it dirty; the cached
// full-grid image is rebuilt on the next draw. A full redraw per mutation is
// fine at arena sizes.
type tileLayer struct {
	cfg   GameConfig
	grid  []TileType
	img   *ebiten.Image
	dirty bool
}

func newTileLayer(cfg GameConfig) *tileLayer {
	return &tileLayer{
		cfg:   cfg,
		grid:  make([]TileType, cfg.GridWidth*cfg.GridHeight),
		dirty: true,
	}
}

// SetTiles replaces the whole grid from a flat row-major code array.
// A length mismatch copies what fits and logs once.
func (t *tileLayer) SetTiles(codes []int) {
	if len(codes) != len(t.grid) {
		logError("tile layer: got %d codes for %dx%d grid", len(codes), t.cfg.GridWidth, t.cfg.GridHeight)
	}
	n := len(codes)
	if n > len(t.grid) {
		n = len(t.grid)
	}
	for i := 0; i < n; i++ {
		t.grid[i] = tileFromCode(codes[i])
	}
	t.dirty = true
}

// UpdateTile mutates one cell. Out-of-bounds writes are dropped.
func (t *tileLayer) UpdateTile(x, y, code int) {
	if !inGrid(x, y, t.cfg.GridWidth, t.cfg.GridHeight) {
		return
	}
	t.grid[cellIndex(x, y, t.cfg.GridWidth)] = tileFromCode(code)
	t.dirty = true
}

func (t *tileLayer) at(x, y int) TileType {
	if !inGrid(x, y, t.cfg.GridWidth, t.cfg.GridHeight) {
		return TileEmpty
	}
	return t.grid[cellIndex(x, y, t.cfg.GridWidth)]
}

func (t *tileLayer) draw(dst *ebiten.Image) {
	if t.img == nil {
		w, h := t.cfg.worldSize()
		t.img = ebiten.NewImage(w, h)
		t.dirty = true
	}
	if t.dirty {
		t.redraw()
		t.dirty = false
	}
	dst.DrawImage(t.img, nil)
}

func (t *tileLayer) redraw() {
	size := t.cfg.TileSize
	for y := 0; y < t.cfg.GridHeight; y++ {
		for x := 0; x < t.cfg.GridWidth; x++ {
			art := tileArtFor(t.grid[cellIndex(x, y, t.cfg.GridWidth)], size)
			op := &ebiten.DrawImageOptions{}
			o := cellOrigin(x, y, size)
			op.GeoM.Translate(o.X, o.Y)
			t.img.DrawImage(art, op)
		}
	}
}

func (t *tileLayer) release() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
	t.dirty = true
}

type tileArtKey struct {
	t    TileType
	size int
}

var (
	tileArtMu    sync.Mutex
	tileArtCache = map[tileArtKey]*ebiten.Image{}
)

// tileArtFor returns the cached image for one tile type, drawing it on first
// use. All arena art is generated; there are no image assets.
func tileArtFor(t TileType, size int) *ebiten.Image {
	if size <= 4 {
		size = 4
	}
	key := tileArtKey{t: t, size: size}
	tileArtMu.Lock()
	if img, ok := tileArtCache[key]; ok && img != nil {
		tileArtMu.Unlock()
		return img
	}
	tileArtMu.Unlock()

	img := drawTileArt(t, size)

	tileArtMu.Lock()
	tileArtCache[key] = img
	tileArtMu.Unlock()
	return img
}

// precacheTileArt renders every tile type ahead of the first frame. The pool
// is bounded so startup does not saturate slower machines.
func precacheTileArt(size int) {
	swg := sizedwaitgroup.New(4)
	for t := TileType(0); t < tileTypeCount; t++ {
		swg.Add()
		go func(t TileType) {
			defer swg.Done()
			tileArtFor(t, size)
		}(t)
	}
	swg.Wait()
}

func drawTileArt(t TileType, size int) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	s := float32(size)

	floorA := color.NRGBA{R: 0x2e, G: 0x33, B: 0x3a, A: 0xff}
	floorB := color.NRGBA{R: 0x33, G: 0x39, B: 0x41, A: 0xff}
	img.Fill(floorA)
	vector.DrawFilledRect(img, 0, 0, s/2, s/2, floorB, false)
	vector.DrawFilledRect(img, s/2, s/2, s/2, s/2, floorB, false)

	switch t {
	case TileEmpty:
		// bare floor

	case TileHardWall:
		base := color.NRGBA{R: 0x5c, G: 0x62, B: 0x6e, A: 0xff}
		lit := color.NRGBA{R: 0x78, G: 0x7f, B: 0x8c, A: 0xff}
		dark := color.NRGBA{R: 0x41, G: 0x46, B: 0x50, A: 0xff}
		vector.DrawFilledRect(img, 0, 0, s, s, base, false)
		vector.DrawFilledRect(img, 0, 0, s, s*0.12, lit, false)
		vector.DrawFilledRect(img, 0, 0, s*0.12, s, lit, false)
		vector.DrawFilledRect(img, 0, s-s*0.14, s, s*0.14, dark, false)
		vector.DrawFilledRect(img, s-s*0.14, 0, s*0.14, s, dark, false)
		vector.DrawFilledCircle(img, s*0.5, s*0.5, s*0.08, dark, true)

	case TileSoftBlock:
		base := color.NRGBA{R: 0xa4, G: 0x6b, B: 0x38, A: 0xff}
		plank := color.NRGBA{R: 0x8a, G: 0x58, B: 0x2d, A: 0xff}
		edge := color.NRGBA{R: 0x6e, G: 0x45, B: 0x22, A: 0xff}
		pad := s * 0.06
		vector.DrawFilledRect(img, pad, pad, s-2*pad, s-2*pad, base, false)
		stroke := maxF32(1, s/16)
		vector.StrokeRect(img, pad, pad, s-2*pad, s-2*pad, stroke, edge, false)
		vector.StrokeLine(img, pad, s/2, s-pad, s/2, stroke, plank, false)
		vector.StrokeLine(img, s/2, pad, s/2, s-pad, stroke, plank, false)
		vector.StrokeLine(img, pad, pad, s-pad, s-pad, stroke, plank, true)

	case TilePowerBomb:
		drawPowerUpBase(img, s, color.NRGBA{R: 0xf2, G: 0x55, B: 0x4b, A: 0xff})
		vector.DrawFilledCircle(img, s*0.5, s*0.55, s*0.18, color.NRGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff}, true)
		vector.StrokeLine(img, s*0.5, s*0.37, s*0.6, s*0.25, maxF32(1, s/16), color.NRGBA{R: 0xff, G: 0xe0, B: 0x66, A: 0xff}, true)

	case TilePowerRange:
		drawPowerUpBase(img, s, color.NRGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 0xff})
		stroke := maxF32(1.5, s/12)
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		vector.StrokeLine(img, s*0.28, s*0.5, s*0.72, s*0.5, stroke, white, true)
		vector.StrokeLine(img, s*0.5, s*0.28, s*0.5, s*0.72, stroke, white, true)

	case TilePowerSpeed:
		drawPowerUpBase(img, s, color.NRGBA{R: 0x3d, G: 0xa9, B: 0xf5, A: 0xff})
		stroke := maxF32(1.5, s/12)
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		for i := 0; i < 2; i++ {
			off := float32(i) * s * 0.18
			vector.StrokeLine(img, s*0.35+off, s*0.32, s*0.55+off, s*0.5, stroke, white, true)
			vector.StrokeLine(img, s*0.55+off, s*0.5, s*0.35+off, s*0.68, stroke, white, true)
		}

	case TilePowerKick:
		drawPowerUpBase(img, s, color.NRGBA{R: 0x62, G: 0xc4, B: 0x62, A: 0xff})
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		vector.DrawFilledRect(img, s*0.32, s*0.34, s*0.14, s*0.3, white, false)
		vector.DrawFilledRect(img, s*0.32, s*0.56, s*0.36, s*0.12, white, false)

	case TilePowerPunch:
		drawPowerUpBase(img, s, color.NRGBA{R: 0xb8, G: 0x6b, B: 0xe8, A: 0xff})
		white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		vector.DrawFilledCircle(img, s*0.5, s*0.5, s*0.14, white, true)
		vector.StrokeLine(img, s*0.5, s*0.5, s*0.72, s*0.32, maxF32(1.5, s/12), white, true)

	case TilePowerPierce:
		drawPowerUpBase(img, s, color.NRGBA{R: 0xe8, G: 0xd8, B: 0x4a, A: 0xff})
		dark := color.NRGBA{R: 0x33, G: 0x2e, B: 0x10, A: 0xff}
		stroke := maxF32(1.5, s/12)
		vector.StrokeLine(img, s*0.3, s*0.5, s*0.74, s*0.5, stroke, dark, true)
		vector.StrokeLine(img, s*0.74, s*0.5, s*0.6, s*0.38, stroke, dark, true)
		vector.StrokeLine(img, s*0.74, s*0.5, s*0.6, s*0.62, stroke, dark, true)

	case TileCursedSkull:
		drawPowerUpBase(img, s, color.NRGBA{R: 0x6e, G: 0x4b, B: 0x8f, A: 0xff})
		bone := color.NRGBA{R: 0xe7, G: 0xe2, B: 0xd8, A: 0xff}
		dark := color.NRGBA{R: 0x2a, G: 0x20, B: 0x35, A: 0xff}
		vector.DrawFilledCircle(img, s*0.5, s*0.46, s*0.2, bone, true)
		vector.DrawFilledRect(img, s*0.4, s*0.52, s*0.2, s*0.14, bone, false)
		vector.DrawFilledCircle(img, s*0.43, s*0.44, s*0.05, dark, true)
		vector.DrawFilledCircle(img, s*0.57, s*0.44, s*0.05, dark, true)
	}

	return img
}

// drawPowerUpBase draws the shared rounded badge all power-ups sit on.
func drawPowerUpBase(img *ebiten.Image, s float32, col color.NRGBA) {
	glow := col
	glow.A = 0x50
	vector.DrawFilledCircle(img, s*0.5, s*0.5, s*0.42, glow, true)
	vector.DrawFilledCircle(img, s*0.5, s*0.5, s*0.34, col, true)
	rim := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x90}
	vector.StrokeCircle(img, s*0.5, s*0.5, s*0.34, maxF32(1, s/20), rim, true)
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
