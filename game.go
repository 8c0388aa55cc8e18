package main

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	defaultViewportW = 512
	defaultViewportH = 448

	// frame deltas are clamped so a long stall cannot launch every easing
	// across the arena in one tick
	maxFrameDelta = 250 * time.Millisecond
)

// gameDeps are the external collaborators. Any of them may be nil; the
// engine then runs headless-quiet (no feed, no sound, no presence).
type gameDeps struct {
	ctx      context.Context
	snaps    <-chan *Snapshot
	intents  IntentSender
	stats    *stats
	sounds   *soundBank
	presence func(room string, phase Phase, players int)
	replay   *replayPlayer
	rec      *recorder
}

// Game is the scene orchestrator. It owns the presenters, camera, shake,
// HUD and input router, reconciles inbound snapshots into them and advances
// all animation clocks once per displayed frame.
//
// Lifecycle is Init, then any mix of reconcile and frameTick, then Destroy.
// Calls outside that window are silent no-ops.
type Game struct {
	cfg   GameConfig
	st    Settings
	theme hudTheme
	deps  gameDeps

	tiles      *tileLayer
	players    *playerPresenter
	bombs      *bombPresenter
	explosions *explosionPresenter
	cam        *camera
	shake      *screenShake
	input      *inputRouter
	hud        *hud

	cur *Snapshot

	viewportW, viewportH int
	worldBuf             *ebiten.Image

	initialized bool
	destroyed   bool
	lastTick    time.Time
}

func newGame(cfg GameConfig, st Settings, theme hudTheme, deps gameDeps) *Game {
	return &Game{
		cfg:        cfg,
		st:         st,
		theme:      theme,
		deps:       deps,
		tiles:      newTileLayer(cfg),
		players:    newPlayerPresenter(cfg, st.SmoothMotion),
		bombs:      newBombPresenter(cfg, st.SmoothMotion),
		explosions: newExplosionPresenter(cfg),
		cam:        newCamera(cfg),
		shake:      newScreenShake(),
		input:      newInputRouter(),
		hud:        newHUD(cfg, theme),
	}
}

// Init validates the viewport and arms the engine. A zero-area viewport is
// logged and replaced with the default so a surface still comes up.
// Idempotent; Init after Destroy stays destroyed.
func (g *Game) Init(viewportW, viewportH int) {
	if g.initialized || g.destroyed {
		return
	}
	if viewportW <= 0 || viewportH <= 0 {
		logError("init: zero-area viewport %dx%d, falling back to %dx%d",
			viewportW, viewportH, defaultViewportW, defaultViewportH)
		viewportW, viewportH = defaultViewportW, defaultViewportH
	}
	g.viewportW, g.viewportH = viewportW, viewportH
	g.initialized = true
}

// Resize follows host window size changes. Invalid sizes keep the current
// viewport.
func (g *Game) Resize(viewportW, viewportH int) {
	if !g.initialized || g.destroyed {
		return
	}
	if viewportW <= 0 || viewportH <= 0 {
		logDebug("resize: ignoring %dx%d", viewportW, viewportH)
		return
	}
	g.viewportW, g.viewportH = viewportW, viewportH
}

// Reconcile ingests one authoritative snapshot using the wall clock. The
// run loop uses the internal form so one tick shares a single now.
func (g *Game) Reconcile(s *Snapshot) {
	g.reconcile(s, time.Now())
}

func (g *Game) reconcile(s *Snapshot, now time.Time) {
	if s == nil || !g.initialized || g.destroyed {
		return
	}

	if s.Tiles != nil {
		g.tiles.SetTiles(s.Tiles)
	}

	died := g.players.reconcile(s.Players, now)
	placed := g.bombs.reconcile(s.Bombs, now)
	created := g.explosions.reconcile(s.Explosions, now)
	ev := g.hud.observe(s, now)

	me := s.player(s.You)
	for _, e := range created {
		if me != nil {
			g.shake.trigger(e.X, e.Y, me.X, me.Y)
		}
	}

	if b := g.deps.sounds; b != nil {
		if placed > 0 {
			b.play(cueBombPlace, 1)
		}
		for _, e := range created {
			vol := 1.0
			if me != nil {
				d := cellDistance(e.X, e.Y, me.X, me.Y)
				vol = clampF(1-d/10, 0.15, 1)
			}
			b.play(cueExplosion, vol)
		}
		if len(died) > 0 {
			b.play(cueDeath, 1)
		}
		if ev.countdownTick {
			b.play(cueBeep, 1)
		}
		if ev.goNow {
			b.play(cueGo, 1)
		}
		if ev.phaseChanged && s.Phase == PhaseEnded {
			b.play(cueWin, 1)
		}
	}

	if g.deps.presence != nil && (g.cur == nil || ev.phaseChanged) {
		g.deps.presence(s.Room, s.Phase, len(s.Players))
	}

	g.cur = s
}

// frameTick advances every animation clock by one displayed frame. All
// effects run on wall-clock deltas, so any refresh rate looks the same.
func (g *Game) frameTick(now time.Time) {
	if !g.initialized || g.destroyed {
		return
	}
	dt := now.Sub(g.lastTick)
	if g.lastTick.IsZero() || dt < 0 {
		dt = time.Second / 60
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	g.lastTick = now

	g.players.advance(now, dt)
	g.bombs.advance(now, dt)

	var focus *vec2
	if g.cur != nil {
		if sp := g.players.get(g.cur.You); sp != nil {
			f := sp.pos
			focus = &f
		}
	}
	g.cam.advance(dt, focus, g.viewportW, g.viewportH)
	g.shake.step(dt)
}

// Destroy releases sprites and render surfaces. Safe to call repeatedly;
// reconcile and frameTick no-op afterward.
func (g *Game) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.players.destroyAll()
	g.bombs.destroyAll()
	g.explosions.destroyAll()
	g.tiles.release()
	g.hud.release()
	if g.worldBuf != nil {
		g.worldBuf.Deallocate()
		g.worldBuf = nil
	}
	if g.deps.sounds != nil {
		g.deps.sounds.stopAll()
	}
	g.cur = nil
}

// Update is the Ebitengine tick: drain pending snapshots, route input, then
// advance one frame. A single now covers the whole tick.
func (g *Game) Update() error {
	if g.destroyed || (g.deps.ctx != nil && g.deps.ctx.Err() != nil) {
		return ebiten.Termination
	}
	now := time.Now()

drain:
	for g.deps.snaps != nil {
		select {
		case s, ok := <-g.deps.snaps:
			if !ok {
				logDebug("snapshot feed closed")
				g.deps.snaps = nil
				break drain
			}
			g.reconcile(s, now)
		default:
			break drain
		}
	}

	if quit := g.handleMetaKeys(now); quit {
		return ebiten.Termination
	}
	g.input.route(readInputFrame(), g.cur, now, g.deps.intents)
	g.frameTick(now)
	return nil
}

// handleMetaKeys covers the client-side chrome: overlay toggle, room-code
// copy, replay transport, mute, recording stop.
func (g *Game) handleMetaKeys(now time.Time) (quit bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return true
	}
	if g.deps.stats != nil && inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.deps.stats.toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && g.cur != nil && g.cur.Room != "" {
		if err := clipboard.WriteAll(g.cur.Room); err != nil {
			logError("copy room code: %v", err)
		} else {
			logDebug("room code %q copied", g.cur.Room)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.st.Sound = !g.st.Sound
		if g.deps.sounds != nil {
			g.deps.sounds.setMuted(!g.st.Sound)
		}
		saveSettings(g.st)
	}
	if g.deps.rec != nil && inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		rec := g.deps.rec
		g.deps.rec = nil
		go func() {
			if err := rec.stop(); err != nil {
				logError("stop recording: %v", err)
			}
		}()
	}
	if g.deps.replay != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			g.deps.replay.togglePause()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) && ebiten.IsKeyPressed(ebiten.KeyControlLeft) {
			g.deps.replay.skip(-5 * time.Second)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) && ebiten.IsKeyPressed(ebiten.KeyControlLeft) {
			g.deps.replay.skip(5 * time.Second)
		}
	}
	return false
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.initialized || g.destroyed {
		return
	}
	now := g.lastTick
	if now.IsZero() {
		now = time.Now()
	}

	screen.Fill(g.theme.bg)

	if g.cur == nil {
		drawSplash(screen, g.theme, now)
		g.hud.draw(screen, nil, now, g.overlayLines(now))
		return
	}

	if g.worldBuf == nil {
		w, h := g.cfg.worldSize()
		g.worldBuf = ebiten.NewImage(w, h)
	}
	g.tiles.draw(g.worldBuf)
	g.explosions.draw(g.worldBuf, now)
	g.bombs.draw(g.worldBuf, now)
	g.players.draw(g.worldBuf, now, g.st.ShowNames)

	op := &ebiten.DrawImageOptions{}
	off := g.cam.offset()
	sh := g.shake.offset()
	op.GeoM.Translate(off.X+sh.X, off.Y+sh.Y)
	screen.DrawImage(g.worldBuf, op)

	g.hud.draw(screen, g.cur, now, g.overlayLines(now))
}

func (g *Game) overlayLines(now time.Time) []string {
	var lines []string
	if rp := g.deps.replay; rp != nil {
		lines = append(lines, rp.progressLine())
	}
	if g.deps.stats != nil {
		lines = append(lines, g.deps.stats.lines(now)...)
	}
	return lines
}

func (g *Game) Layout(outsideW, outsideH int) (int, int) {
	if !g.initialized {
		return defaultViewportW, defaultViewportH
	}
	scale := g.st.Scale
	if scale < 1 {
		scale = 1
	}
	if w, h := outsideW/scale, outsideH/scale; w > 0 && h > 0 && (w != g.viewportW || h != g.viewportH) {
		g.Resize(w, h)
	}
	return g.viewportW, g.viewportH
}
