package main

import (
	"testing"
	"time"
)

func TestPlayerReconcileMatchesSnapshot(t *testing.T) {
	cfg := defaultGameConfig()
	p := newPlayerPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]PlayerState{
		{ID: "a", X: 1, Y: 1, Alive: true},
		{ID: "b", X: 3, Y: 3, Alive: true},
	}, now)
	if p.len() != 2 || p.get("a") == nil || p.get("b") == nil {
		t.Fatalf("after first reconcile: %d sprites", p.len())
	}

	// b vanishes, c appears. The sprite set must track the list exactly.
	p.reconcile([]PlayerState{
		{ID: "a", X: 1, Y: 1, Alive: true},
		{ID: "c", X: 5, Y: 5, Alive: true},
	}, now.Add(50*time.Millisecond))
	if p.len() != 2 {
		t.Fatalf("after second reconcile: %d sprites", p.len())
	}
	if p.get("b") != nil {
		t.Fatalf("vanished player still present")
	}
	if p.get("c") == nil {
		t.Fatalf("new player missing")
	}
}

func TestPlayerFirstSightHasNoLag(t *testing.T) {
	cfg := defaultGameConfig()
	p := newPlayerPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]PlayerState{{ID: "a", X: 7, Y: 4, Alive: true}}, now)
	sp := p.get("a")
	want := cellCenter(7, 4, cfg.TileSize)
	if sp.pos != want || sp.target != want {
		t.Fatalf("new sprite pos=%v target=%v, want %v", sp.pos, sp.target, want)
	}
	// No motion on the very first frame: it did not spawn mid-glide.
	p.advance(now, 16*time.Millisecond)
	if sp.pos != want {
		t.Fatalf("sprite drifted on first frame: %v", sp.pos)
	}
}

func TestPlayerDeathObservedOnce(t *testing.T) {
	cfg := defaultGameConfig()
	p := newPlayerPresenter(cfg, true)
	base := time.Now()

	p.reconcile([]PlayerState{{ID: "a", X: 1, Y: 1, Alive: true}}, base)

	died := p.reconcile([]PlayerState{{ID: "a", X: 1, Y: 1, Alive: false}}, base.Add(100*time.Millisecond))
	if len(died) != 1 || died[0] != "a" {
		t.Fatalf("died = %v, want [a]", died)
	}
	start := p.get("a").deathStart
	if start.IsZero() {
		t.Fatalf("deathStart not set")
	}

	// The server keeps echoing alive=false; the animation must not restart.
	died = p.reconcile([]PlayerState{{ID: "a", X: 1, Y: 1, Alive: false}}, base.Add(200*time.Millisecond))
	if len(died) != 0 {
		t.Fatalf("repeat death reported: %v", died)
	}
	if !p.get("a").deathStart.Equal(start) {
		t.Fatalf("deathStart moved from %v to %v", start, p.get("a").deathStart)
	}

	// A respawn clears it for the next round.
	p.reconcile([]PlayerState{{ID: "a", X: 1, Y: 1, Alive: true}}, base.Add(300*time.Millisecond))
	if !p.get("a").deathStart.IsZero() {
		t.Fatalf("deathStart should reset on respawn")
	}
}

func TestPlayerFirstSightDeadIsSilent(t *testing.T) {
	cfg := defaultGameConfig()
	p := newPlayerPresenter(cfg, true)
	now := time.Now()

	// Joining a room mid-match where someone is already dead is not a death
	// we watched happen, so no event fires.
	died := p.reconcile([]PlayerState{{ID: "x", X: 2, Y: 2, Alive: false}}, now)
	if len(died) != 0 {
		t.Fatalf("died = %v, want none", died)
	}
	if p.get("x").deathStart.IsZero() {
		t.Fatalf("dead-on-arrival sprite should still fade")
	}
}

func TestPlayerDeathProgress(t *testing.T) {
	sp := &playerSprite{}
	now := time.Now()
	if sp.deathProgress(now) != 0 {
		t.Fatalf("alive sprite has death progress")
	}
	sp.deathStart = now
	if got := sp.deathProgress(now.Add(deathDuration / 2)); got < 0.49 || got > 0.51 {
		t.Fatalf("mid progress = %v", got)
	}
	if got := sp.deathProgress(now.Add(5 * deathDuration)); got != 1 {
		t.Fatalf("late progress = %v, want 1", got)
	}
}

func TestPlayerAdvanceEasing(t *testing.T) {
	cfg := defaultGameConfig()
	now := time.Now()

	p := newPlayerPresenter(cfg, true)
	p.reconcile([]PlayerState{{ID: "a", X: 0, Y: 0, Alive: true}}, now)
	p.reconcile([]PlayerState{{ID: "a", X: 4, Y: 0, Alive: true}}, now)
	sp := p.get("a")

	start := sp.pos.X
	p.advance(now, 16*time.Millisecond)
	if sp.pos.X <= start || sp.pos.X >= sp.target.X {
		t.Fatalf("smooth step went %v -> %v (target %v)", start, sp.pos.X, sp.target.X)
	}

	// With smoothing off the sprite snaps in one frame.
	p2 := newPlayerPresenter(cfg, false)
	p2.reconcile([]PlayerState{{ID: "a", X: 0, Y: 0, Alive: true}}, now)
	p2.reconcile([]PlayerState{{ID: "a", X: 4, Y: 0, Alive: true}}, now)
	p2.advance(now, 16*time.Millisecond)
	if p2.get("a").pos != p2.get("a").target {
		t.Fatalf("unsmoothed sprite did not snap: %v", p2.get("a").pos)
	}
}

func TestPlayerStunBlink(t *testing.T) {
	now := time.Now()
	sp := &playerSprite{state: PlayerState{ID: "a"}}
	if sp.stunBlinkOn(now) {
		t.Fatalf("unstunned sprite blinks")
	}
	sp.state.StunnedUntil = now.Add(time.Minute)
	on := 0
	for i := 0; i < 10; i++ {
		if sp.stunBlinkOn(now.Add(time.Duration(i) * stunBlinkEvery)) {
			on++
		}
	}
	if on != 5 {
		t.Fatalf("blink duty cycle = %d/10, want 5/10", on)
	}
}

func TestPlayerColorWraps(t *testing.T) {
	if playerColor(0) != playerColor(len(playerPalette)) {
		t.Fatalf("color index should wrap")
	}
	if playerColor(-3) != playerPalette[0] {
		t.Fatalf("negative index should clamp to first color")
	}
}
