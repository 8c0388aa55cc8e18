package main

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestHUDWaitingLine(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	now := time.Now()

	s := &Snapshot{Phase: PhaseWaiting, Players: []PlayerState{{ID: "a", Alive: true}}}
	h.observe(s, now)
	text, col := h.status(s, now)
	if text != "Waiting for players (1/2 min)..." {
		t.Fatalf("waiting line = %q", text)
	}
	if col != darkTheme.dim {
		t.Fatalf("waiting color = %v", col)
	}
}

func TestHUDCountdownSequence(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	base := time.Now()

	snap := func(ms int64) *Snapshot {
		return &Snapshot{Phase: PhaseCountdown, Countdown: time.Duration(ms) * time.Millisecond}
	}

	steps := []struct {
		ms       int64
		wantText string
		wantTick bool
	}{
		{3000, "3", true},
		{2400, "3", false}, // same displayed second, no new tick
		{2000, "2", true},
		{1000, "1", true},
		{400, "1", false},
		{0, "GO!", false},
	}
	goSeen := false
	for i, st := range steps {
		now := base.Add(time.Duration(i) * 500 * time.Millisecond)
		ev := h.observe(snap(st.ms), now)
		if ev.countdownTick != st.wantTick {
			t.Fatalf("step %d (%dms): tick = %v, want %v", i, st.ms, ev.countdownTick, st.wantTick)
		}
		if ev.goNow {
			goSeen = true
		}
		text, col := h.status(snap(st.ms), now)
		if text != st.wantText {
			t.Fatalf("step %d (%dms): text = %q, want %q", i, st.ms, text, st.wantText)
		}
		switch st.wantText {
		case "3":
			if col != darkTheme.warn {
				t.Fatalf("3 should be warn colored, got %v", col)
			}
		case "2":
			if col != darkTheme.alert {
				t.Fatalf("2 should be alert colored, got %v", col)
			}
		case "1":
			if col != darkTheme.danger {
				t.Fatalf("1 should be danger colored, got %v", col)
			}
		case "GO!":
			if col != darkTheme.good {
				t.Fatalf("GO should be good colored, got %v", col)
			}
		}
	}
	if !goSeen {
		t.Fatalf("countdown reaching zero never fired goNow")
	}
}

func TestHUDCountdownBounce(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	base := time.Now()

	h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: 3 * time.Second}, base)
	if got := h.countdownScale(base); math.Abs(got-1.6) > 1e-9 {
		t.Fatalf("fresh bounce scale = %v, want 1.6", got)
	}
	if got := h.countdownScale(base.Add(countdownBounce)); got != 1 {
		t.Fatalf("settled scale = %v, want 1", got)
	}

	// Re-observing the same second must not restart the bounce.
	h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: 2600 * time.Millisecond}, base.Add(300*time.Millisecond))
	if got := h.countdownScale(base.Add(300 * time.Millisecond)); got != 1 {
		t.Fatalf("unchanged second re-bounced: %v", got)
	}
}

func TestHUDGoFlashFadesIntoPlaying(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	base := time.Now()

	h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: time.Second}, base)
	ev := h.observe(&Snapshot{Phase: PhasePlaying, Players: []PlayerState{{ID: "a", Alive: true}, {ID: "b", Alive: true}}}, base.Add(time.Second))
	if !ev.goNow {
		t.Fatalf("countdown->playing did not fire goNow")
	}
	if !ev.phaseChanged {
		t.Fatalf("phase change not reported")
	}

	playing := &Snapshot{Phase: PhasePlaying, Players: []PlayerState{{ID: "a", Alive: true}, {ID: "b", Alive: true}}}

	// Inside the flash window the big GO! covers the status line.
	text, col := h.status(playing, base.Add(time.Second+100*time.Millisecond))
	if text != "GO!" || col != darkTheme.good {
		t.Fatalf("flash text = %q", text)
	}
	if a := h.goAlpha(base.Add(time.Second + 100*time.Millisecond)); a <= 0 || a >= 1 {
		t.Fatalf("mid-flash alpha = %v", a)
	}

	// After the window the normal alive line shows.
	text, _ = h.status(playing, base.Add(2*time.Second))
	if text != "Alive 2/2" {
		t.Fatalf("post-flash text = %q", text)
	}
	if a := h.goAlpha(base.Add(2 * time.Second)); a != 0 {
		t.Fatalf("post-flash alpha = %v", a)
	}
}

func TestHUDGoFiresOnce(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	base := time.Now()

	h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: time.Second}, base)
	ev := h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: 0}, base.Add(time.Second))
	if !ev.goNow {
		t.Fatalf("zero countdown did not fire goNow")
	}
	// The playing snapshot right after must not fire it again.
	ev = h.observe(&Snapshot{Phase: PhasePlaying}, base.Add(1100*time.Millisecond))
	if ev.goNow {
		t.Fatalf("goNow fired twice")
	}

	// A new round re-arms it.
	h.observe(&Snapshot{Phase: PhaseEnded}, base.Add(2*time.Second))
	h.observe(&Snapshot{Phase: PhaseWaiting}, base.Add(3*time.Second))
	h.observe(&Snapshot{Phase: PhaseCountdown, Countdown: time.Second}, base.Add(4*time.Second))
	ev = h.observe(&Snapshot{Phase: PhasePlaying}, base.Add(5*time.Second))
	if !ev.goNow {
		t.Fatalf("goNow not re-armed for the next round")
	}
}

func TestHUDTimeMode(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	now := time.Now()

	s := &Snapshot{Phase: PhasePlaying, Mode: ModeTime, TimeLeft: 90 * time.Second}
	h.observe(s, now)
	text, _ := h.status(s, now)
	if !strings.HasPrefix(text, "Time left ") {
		t.Fatalf("time mode line = %q", text)
	}
	if !strings.Contains(text, "1 m") || !strings.Contains(text, "30 s") {
		t.Fatalf("time mode line = %q, want 1m30s in short units", text)
	}

	// Clock starvation never shows a negative time.
	s.TimeLeft = -3 * time.Second
	text, _ = h.status(s, now)
	if strings.Contains(text, "-") {
		t.Fatalf("negative time shown: %q", text)
	}
}

func TestHUDEndedCard(t *testing.T) {
	cfg := defaultGameConfig()
	h := newHUD(cfg, darkTheme)
	now := time.Now()

	s := &Snapshot{
		Phase:   PhaseEnded,
		Winner:  "p2",
		Players: []PlayerState{{ID: "p1", Name: "Ada"}, {ID: "p2", Name: "Lin"}},
	}
	h.observe(s, now)
	text, col := h.status(s, now)
	if text != "Lin wins!" || col != darkTheme.good {
		t.Fatalf("winner card = %q", text)
	}

	// Draw (or winner already gone): neutral card.
	s.Winner = ""
	text, _ = h.status(s, now)
	if text != "Game over" {
		t.Fatalf("draw card = %q", text)
	}
}

func TestCountdownSeconds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{3 * time.Second, 3},
		{2999 * time.Millisecond, 3},
		{2001 * time.Millisecond, 3},
		{2 * time.Second, 2},
		{1, 1}, // one nanosecond still shows 1
		{0, 0},
		{-time.Second, 0},
	}
	for _, c := range cases {
		if got := countdownSeconds(c.d); got != c.want {
			t.Errorf("countdownSeconds(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("Combining Å"); got != "Combining Å" {
		t.Fatalf("NFC fold = %q", got)
	}
	long := strings.Repeat("x", 40)
	if got := displayName(long); len([]rune(got)) != maxNameRunes {
		t.Fatalf("clamped to %d runes", len([]rune(got)))
	}
	if got := displayName("Bob"); got != "Bob" {
		t.Fatalf("short name changed: %q", got)
	}
}
