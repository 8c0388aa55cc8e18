package main

import (
	"testing"
	"time"
)

func TestBombReconcilePlacedCount(t *testing.T) {
	cfg := defaultGameConfig()
	p := newBombPresenter(cfg, true)
	now := time.Now()

	placed := p.reconcile([]BombState{
		{ID: "b1", X: 1, Y: 1, Fuse: cfg.BombFuse},
		{ID: "b2", X: 2, Y: 2, Fuse: cfg.BombFuse},
	}, now)
	if placed != 2 || p.len() != 2 {
		t.Fatalf("placed=%d len=%d", placed, p.len())
	}

	placed = p.reconcile([]BombState{
		{ID: "b1", X: 1, Y: 1, Fuse: cfg.BombFuse - time.Second},
	}, now.Add(time.Second))
	if placed != 0 {
		t.Fatalf("existing bomb counted as placed")
	}
	if p.len() != 1 || p.get("b2") != nil {
		t.Fatalf("detonated bomb not dropped")
	}
}

func TestBombWrapTriggersOnEdgeJump(t *testing.T) {
	cfg := defaultGameConfig() // 19 wide
	p := newBombPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]BombState{{ID: "b", X: 1, Y: 7, Flying: true, Dir: DirLeft}}, now)
	sp := p.get("b")

	// Thrown off the left edge: the server re-homes it to the far column.
	p.reconcile([]BombState{{ID: "b", X: 18, Y: 7, Flying: true, Dir: DirLeft}}, now.Add(50*time.Millisecond))
	if !sp.wrapping() {
		t.Fatalf("edge jump did not start a wrap")
	}
	if sp.wrapAxis != wrapX {
		t.Fatalf("wrapAxis = %v, want wrapX", sp.wrapAxis)
	}
	if want := cellCenter(18, 7, cfg.TileSize); sp.wrapTo != want {
		t.Fatalf("wrapTo = %v, want %v", sp.wrapTo, want)
	}
}

func TestBombWrapAxisFollowsDominantJump(t *testing.T) {
	cfg := defaultGameConfig() // 15 tall
	p := newBombPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]BombState{{ID: "b", X: 9, Y: 0, Flying: true, Dir: DirUp}}, now)
	p.reconcile([]BombState{{ID: "b", X: 9, Y: 14, Flying: true, Dir: DirUp}}, now.Add(50*time.Millisecond))
	if sp := p.get("b"); sp.wrapAxis != wrapY {
		t.Fatalf("vertical jump picked axis %v", sp.wrapAxis)
	}
}

func TestBombShortHopDoesNotWrap(t *testing.T) {
	cfg := defaultGameConfig()
	p := newBombPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]BombState{{ID: "b", X: 4, Y: 4, Flying: true}}, now)
	p.reconcile([]BombState{{ID: "b", X: 5, Y: 4, Flying: true}}, now.Add(50*time.Millisecond))
	if p.get("b").wrapping() {
		t.Fatalf("one-tile hop must not trigger a wrap")
	}

	// A long jump while sliding on the ground is a kick, not a wrap.
	p.reconcile([]BombState{{ID: "b", X: 15, Y: 4, Moving: true}}, now.Add(100*time.Millisecond))
	if p.get("b").wrapping() {
		t.Fatalf("grounded jump must not trigger a wrap")
	}
}

func TestBombWrapRunsToCompletion(t *testing.T) {
	cfg := defaultGameConfig()
	p := newBombPresenter(cfg, true)
	now := time.Now()
	frame := 16667 * time.Microsecond

	p.reconcile([]BombState{{ID: "b", X: 0, Y: 7, Flying: true}}, now)
	p.reconcile([]BombState{{ID: "b", X: 18, Y: 7, Flying: true}}, now.Add(frame))
	sp := p.get("b")
	from := sp.pos

	teleported := false
	for i := 0; i < 60 && sp.wrapping(); i++ {
		before := sp.wrapPhase
		now = now.Add(frame)
		p.advance(now, frame)
		if before < 1 && sp.wrapPhase >= 1 {
			teleported = true
			if sp.pos != sp.wrapTo {
				t.Fatalf("teleport missed: pos=%v wrapTo=%v", sp.pos, sp.wrapTo)
			}
		}
		if sp.wrapping() {
			sx, sy := sp.wrapScale()
			if sy != 1 {
				t.Fatalf("x-axis wrap scaled y: %v", sy)
			}
			if sx < 0 || sx > 1 {
				t.Fatalf("wrap scale out of range: %v", sx)
			}
		}
	}

	if sp.wrapping() {
		t.Fatalf("wrap never finished, phase=%v", sp.wrapPhase)
	}
	if !teleported {
		t.Fatalf("wrap finished without the mid-point teleport")
	}
	if sp.pos == from {
		t.Fatalf("bomb still at the departure edge")
	}
	// After the wrap the sprite renders at full size again, exactly.
	sx, sy := sp.wrapScale()
	if sx != 1 || sy != 1 {
		t.Fatalf("post-wrap scale = (%v,%v), want (1,1)", sx, sy)
	}
	if sp.wrapAxis != wrapNone {
		t.Fatalf("wrapAxis not reset")
	}
}

func TestBombWrapIgnoresRetargetMidWrap(t *testing.T) {
	cfg := defaultGameConfig()
	p := newBombPresenter(cfg, true)
	now := time.Now()

	p.reconcile([]BombState{{ID: "b", X: 0, Y: 7, Flying: true}}, now)
	p.reconcile([]BombState{{ID: "b", X: 18, Y: 7, Flying: true}}, now.Add(time.Millisecond))
	sp := p.get("b")
	axis := sp.wrapAxis

	// Another large jump arrives before the first wrap finishes. It must not
	// restart the machine, only move the target.
	p.reconcile([]BombState{{ID: "b", X: 18, Y: 0, Flying: true}}, now.Add(2*time.Millisecond))
	if sp.wrapAxis != axis {
		t.Fatalf("mid-wrap retarget changed axis")
	}
	if want := cellCenter(18, 0, cfg.TileSize); sp.target != want {
		t.Fatalf("target not updated mid-wrap")
	}
}

func TestBombBounceOnlyWhileFlying(t *testing.T) {
	sp := &bombSprite{state: BombState{Flying: true}, bouncePhase: 0.5}
	if sp.bounceOffset() <= 0 {
		t.Fatalf("mid-arc bounce should lift the sprite")
	}
	sp.state.Flying = false
	if sp.bounceOffset() != 0 {
		t.Fatalf("grounded bomb must not bounce")
	}
}

func TestBombUrgency(t *testing.T) {
	cfg := defaultGameConfig()
	sp := &bombSprite{state: BombState{Fuse: cfg.BombFuse}}
	if u := sp.urgency(cfg.BombFuse); u != 0 {
		t.Fatalf("fresh fuse urgency = %v", u)
	}
	sp.state.Fuse = 0
	if u := sp.urgency(cfg.BombFuse); u != 1 {
		t.Fatalf("spent fuse urgency = %v", u)
	}
	sp.state.Fuse = -time.Second // server may briefly report past-due
	if u := sp.urgency(cfg.BombFuse); u != 1 {
		t.Fatalf("past-due urgency = %v", u)
	}
}
