package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/sqweek/dialog"
)

// Replay files are gzipped JSON lines: a header line followed by one frame
// line per received snapshot with its offset from recording start.

const replayVersion = 1

type replayHeader struct {
	Version int       `json:"version"`
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
}

type replayFrame struct {
	T    int64           `json:"t"` // ms since recording start
	Snap json.RawMessage `json:"snap"`
}

// recorder captures the raw snapshot stream as it arrives. record is called
// from the feed goroutine; stop from the render loop.
type recorder struct {
	mu      sync.Mutex
	f       *os.File
	gz      *gzip.Writer
	enc     *json.Encoder
	start   time.Time
	path    string
	ask     bool // final path chosen in a save dialog at stop
	frames  int
	stopped bool
}

// newRecorder opens the target file. An empty path records to a temp file
// and asks for the real destination when recording stops.
func newRecorder(path string) (*recorder, error) {
	ask := path == ""
	if ask {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("blastarena-%s.baz", time.Now().Format("20060102-150405")))
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay: %w", err)
	}
	r := &recorder{
		f:     f,
		gz:    gzip.NewWriter(f),
		start: time.Now(),
		path:  path,
		ask:   ask,
	}
	r.enc = json.NewEncoder(r.gz)
	hdr := replayHeader{Version: replayVersion, ID: uuid.NewString(), Started: r.start}
	if err := r.enc.Encode(&hdr); err != nil {
		r.gz.Close()
		f.Close()
		return nil, fmt.Errorf("write replay header: %w", err)
	}
	return r, nil
}

func (r *recorder) record(raw []byte, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	fr := replayFrame{T: now.Sub(r.start).Milliseconds(), Snap: append(json.RawMessage(nil), raw...)}
	if err := r.enc.Encode(&fr); err != nil {
		logError("record: %v", err)
		return
	}
	r.frames++
}

// stop finalizes the file. When the recorder was started without an
// explicit path this is where the save dialog runs.
func (r *recorder) stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	frames := r.frames
	if err := r.gz.Close(); err != nil {
		logError("record: close: %v", err)
	}
	if err := r.f.Close(); err != nil {
		logError("record: close: %v", err)
	}
	path, ask := r.path, r.ask
	r.mu.Unlock()

	logDebug("record: %d frames in %s", frames, path)
	if !ask {
		return nil
	}

	target, err := dialog.File().
		Filter("Blast Arena replays", "baz").
		SetStartFile("match.baz").
		Title("Save Replay").
		Save()
	if err != nil {
		if err != dialog.ErrCancelled {
			return fmt.Errorf("save dialog: %w", err)
		}
		os.Remove(path)
		return nil
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("move replay: %w", err)
	}
	return nil
}

// replayPlayer feeds recorded snapshots back at their original cadence.
// Snapshots are full replacements, so seeking is just jumping the cursor.
type replayPlayer struct {
	mu      sync.Mutex
	header  replayHeader
	frames  []replayFrame
	idx     int
	clock   time.Duration // playback position on the recorded timeline
	playing bool
	done    bool
}

func newReplayPlayer(path string) (*replayPlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	defer gz.Close()

	dec := json.NewDecoder(gz)
	var hdr replayHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("replay header: %w", err)
	}
	if hdr.Version != replayVersion {
		return nil, fmt.Errorf("replay version %d not supported", hdr.Version)
	}

	rp := &replayPlayer{header: hdr, playing: true}
	for {
		var fr replayFrame
		if err := dec.Decode(&fr); err != nil {
			break // EOF or trailing garbage ends the stream
		}
		rp.frames = append(rp.frames, fr)
	}
	if len(rp.frames) == 0 {
		return nil, fmt.Errorf("replay %s has no frames", path)
	}
	logDebug("replay: %s, %d frames, id %s", path, len(rp.frames), hdr.ID)
	return rp, nil
}

func (rp *replayPlayer) total() time.Duration {
	return time.Duration(rp.frames[len(rp.frames)-1].T) * time.Millisecond
}

// run emits frames on out until the stream or the context ends.
func (rp *replayPlayer) run(ctx context.Context, out chan<- *Snapshot, st *stats, store *latestStore) {
	defer close(out)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rp.mu.Lock()
		if !rp.playing {
			rp.mu.Unlock()
			continue
		}
		if rp.idx >= len(rp.frames) {
			rp.done = true
			rp.playing = false
			rp.mu.Unlock()
			return
		}
		rp.clock += 10 * time.Millisecond
		var emit []replayFrame
		for rp.idx < len(rp.frames) && time.Duration(rp.frames[rp.idx].T)*time.Millisecond <= rp.clock {
			emit = append(emit, rp.frames[rp.idx])
			rp.idx++
		}
		rp.mu.Unlock()

		for _, fr := range emit {
			now := time.Now()
			if st != nil {
				st.markSnapshot(now, len(fr.Snap))
			}
			s, err := ParseSnapshot(fr.Snap)
			if err != nil {
				logError("replay: dropping frame at %dms: %v", fr.T, err)
				continue
			}
			if store != nil {
				store.set(fr.Snap, s)
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (rp *replayPlayer) togglePause() {
	rp.mu.Lock()
	if !rp.done {
		rp.playing = !rp.playing
	}
	rp.mu.Unlock()
}

// skip moves the cursor without reapplying frames; every frame is a full
// snapshot.
func (rp *replayPlayer) skip(d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if len(rp.frames) == 0 {
		return
	}
	target := rp.clock + d
	if target < 0 {
		target = 0
	}
	if max := rp.total(); target > max {
		target = max
	}
	idx := 0
	for idx < len(rp.frames) && time.Duration(rp.frames[idx].T)*time.Millisecond < target {
		idx++
	}
	rp.idx = idx
	rp.clock = target
	rp.done = false
}

func (rp *replayPlayer) progress() (pos, total time.Duration, playing bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.clock, rp.total(), rp.playing
}

func (rp *replayPlayer) progressLine() string {
	pos, total, playing := rp.progress()
	state := "||"
	if playing {
		state = ">"
	}
	return fmt.Sprintf("Replay %s %s / %s",
		state,
		durafmt.Parse(pos.Round(time.Second)).LimitFirstN(2).Format(shortUnits),
		durafmt.Parse(total.Round(time.Second)).LimitFirstN(2).Format(shortUnits))
}
