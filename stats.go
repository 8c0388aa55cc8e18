package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
)

// stats tracks the snapshot feed counters behind the F3 overlay and the
// diagnostics server. Marked from the feed goroutine, read from the render
// loop and HTTP handlers, hence the lock.
type stats struct {
	mu        sync.Mutex
	visible   bool
	snapshots int64
	bytes     int64
	lastSnap  time.Time
	gapEMA    time.Duration
}

func newStats(visible bool) *stats {
	return &stats{visible: visible}
}

func (st *stats) markSnapshot(now time.Time, n int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshots++
	st.bytes += int64(n)
	if !st.lastSnap.IsZero() {
		gap := now.Sub(st.lastSnap)
		if st.gapEMA == 0 {
			st.gapEMA = gap
		} else {
			st.gapEMA = (st.gapEMA*7 + gap) / 8
		}
	}
	st.lastSnap = now
}

func (st *stats) toggle() {
	st.mu.Lock()
	st.visible = !st.visible
	st.mu.Unlock()
}

func (st *stats) shown() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.visible
}

type statsValues struct {
	Snapshots int64         `json:"snapshots"`
	Bytes     int64         `json:"bytes"`
	LastSnap  time.Time     `json:"lastSnapshot"`
	GapEMA    time.Duration `json:"snapshotGapNs"`
	FPS       float64       `json:"fps"`
}

func (st *stats) values() statsValues {
	st.mu.Lock()
	defer st.mu.Unlock()
	return statsValues{
		Snapshots: st.snapshots,
		Bytes:     st.bytes,
		LastSnap:  st.lastSnap,
		GapEMA:    st.gapEMA,
		FPS:       ebiten.ActualFPS(),
	}
}

// lines renders the overlay text, nil while hidden.
func (st *stats) lines(now time.Time) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.visible {
		return nil
	}
	rate := 0.0
	if st.gapEMA > 0 {
		rate = float64(time.Second) / float64(st.gapEMA)
	}
	age := time.Duration(0)
	if !st.lastSnap.IsZero() {
		age = now.Sub(st.lastSnap).Round(time.Millisecond)
	}
	return []string{
		fmt.Sprintf("FPS %0.1f  snaps %0.1f/s  age %v", ebiten.ActualFPS(), rate, age),
		fmt.Sprintf("rx %s in %s snapshots", humanize.Bytes(uint64(st.bytes)), humanize.Comma(st.snapshots)),
	}
}
