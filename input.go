package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/time/rate"
)

const inputRepeatEvery = 120 * time.Millisecond

// IntentSender receives the outbound player intents. Implementations are
// fire-and-forget; delivery failures are theirs to log.
type IntentSender interface {
	Move(Direction)
	PlaceBomb()
	Throw()
	StartGame()
}

// inputFrame is one tick's worth of device state, already reduced to game
// terms so the router stays testable without a keyboard.
type inputFrame struct {
	dir            Direction // held movement direction, DirNone when none
	dirJustPressed bool
	bombPressed    bool // edge triggered
	throwPressed   bool // edge triggered
	startPressed   bool // edge triggered modifier combo
}

// inputRouter turns device state into intents. First press dispatches
// immediately; a held direction repeats on a fixed interval; everything is
// gated on the current phase and silently dropped otherwise.
type inputRouter struct {
	repeat      *rate.Limiter
	dispatching bool
}

func newInputRouter() *inputRouter {
	return &inputRouter{repeat: rate.NewLimiter(rate.Every(inputRepeatEvery), 1)}
}

func (r *inputRouter) route(in inputFrame, snap *Snapshot, now time.Time, out IntentSender) {
	if out == nil || snap == nil {
		r.dispatching = false
		return
	}

	if in.startPressed && snap.Phase == PhaseWaiting {
		out.StartGame()
	}
	if snap.Phase != PhasePlaying {
		r.dispatching = false
		return
	}

	if in.bombPressed {
		out.PlaceBomb()
	}
	if in.throwPressed {
		out.Throw()
	}

	if in.dir == DirNone {
		r.dispatching = false
		return
	}
	if !r.dispatching {
		// first press fires with no delay; the consume below starts the
		// repeat clock from this instant
		r.dispatching = true
		out.Move(in.dir)
		r.repeat.AllowN(now, 1)
		return
	}
	if r.repeat.AllowN(now, 1) {
		out.Move(in.dir)
	}
}

var movementKeys = []struct {
	keys []ebiten.Key
	dir  Direction
}{
	{[]ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}, DirUp},
	{[]ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}, DirDown},
	{[]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}, DirLeft},
	{[]ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}, DirRight},
}

// readInputFrame polls the keyboard. Kept apart from route so tests can
// feed frames directly.
func readInputFrame() inputFrame {
	var f inputFrame
	for _, m := range movementKeys {
		held := false
		for _, k := range m.keys {
			if ebiten.IsKeyPressed(k) {
				held = true
			}
			if inpututil.IsKeyJustPressed(k) {
				f.dirJustPressed = true
			}
		}
		if held && f.dir == DirNone {
			f.dir = m.dir
		}
	}
	f.bombPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	f.throwPressed = inpututil.IsKeyJustPressed(ebiten.KeyX)
	f.startPressed = inpututil.IsKeyJustPressed(ebiten.KeyEnter) &&
		(ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight))
	return f
}
