package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// Phase is the top-level match state.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCountdown
	PhasePlaying
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func parsePhase(s string) (Phase, error) {
	switch s {
	case "waiting":
		return PhaseWaiting, nil
	case "countdown":
		return PhaseCountdown, nil
	case "playing":
		return PhasePlaying, nil
	case "ended":
		return PhaseEnded, nil
	}
	return PhaseWaiting, fmt.Errorf("unknown phase %q", s)
}

// Mode selects what the HUD shows mid-game: survival counts the living,
// time counts down the clock.
type Mode int

const (
	ModeSurvival Mode = iota
	ModeTime
)

func (m Mode) String() string {
	if m == ModeTime {
		return "time"
	}
	return "survival"
}

func parseMode(s string) (Mode, error) {
	switch s {
	case "", "survival":
		return ModeSurvival, nil
	case "time":
		return ModeTime, nil
	}
	return ModeSurvival, fmt.Errorf("unknown mode %q", s)
}

// PlayerState is one player's authoritative fields as echoed by the server.
type PlayerState struct {
	ID           string
	Name         string
	X, Y         int
	Alive        bool
	Color        int
	StunnedUntil time.Time // zero when never stunned
}

func (p PlayerState) stunned(now time.Time) bool {
	return p.StunnedUntil.After(now)
}

// BombState is one bomb's authoritative fields.
type BombState struct {
	ID    string
	Owner string
	X, Y  int
	Range int
	Fuse  time.Duration

	Moving   bool
	Flying   bool
	Piercing bool
	Punched  bool

	Dir              Direction
	TargetX, TargetY int
}

// ExplosionState is one explosion cell's authoritative fields.
type ExplosionState struct {
	ID   string
	X, Y int
	Left time.Duration
}

// Snapshot is the full authoritative state received on every server tick.
// The client never mutates one; presenters only diff successive snapshots.
// A nil Tiles slice means the grid did not change this tick.
type Snapshot struct {
	Room       string
	Phase      Phase
	Players    []PlayerState
	Tiles      []int
	Bombs      []BombState
	Explosions []ExplosionState
	Countdown  time.Duration
	TimeLeft   time.Duration
	Mode       Mode
	Winner     string
	You        string // empty until the join completes
}

func (s *Snapshot) player(id string) *PlayerState {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *Snapshot) aliveCount() int {
	n := 0
	for i := range s.Players {
		if s.Players[i].Alive {
			n++
		}
	}
	return n
}

// Wire shapes. Durations travel as milliseconds, stun expiry as unix
// milliseconds; absent lists decode to nil.

type playerWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Alive        bool   `json:"alive"`
	Color        int    `json:"color"`
	StunnedUntil int64  `json:"stunnedUntil"`
}

type bombWire struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Range    int    `json:"range"`
	FuseMs   int64  `json:"fuseMs"`
	Moving   bool   `json:"moving"`
	Flying   bool   `json:"flying"`
	Piercing bool   `json:"piercing"`
	Punched  bool   `json:"punched"`
	Dir      string `json:"dir"`
	TargetX  int    `json:"targetX"`
	TargetY  int    `json:"targetY"`
}

type explosionWire struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	LeftMs int64  `json:"leftMs"`
}

type snapshotWire struct {
	Room        string          `json:"room"`
	Phase       string          `json:"phase"`
	Players     []playerWire    `json:"players"`
	Tiles       []int           `json:"tiles"`
	Bombs       []bombWire      `json:"bombs"`
	Explosions  []explosionWire `json:"explosions"`
	CountdownMs int64           `json:"countdownMs"`
	TimeLeftMs  int64           `json:"timeLeftMs"`
	Mode        string          `json:"mode"`
	Winner      string          `json:"winner"`
	You         string          `json:"you"`
}

// ParseSnapshot validates one inbound snapshot message. Anything that fails
// here is dropped by the caller; the presentation layer only ever sees
// well-formed snapshots.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	phase, err := parsePhase(w.Phase)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	mode, err := parseMode(w.Mode)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	s := &Snapshot{
		Room:      w.Room,
		Phase:     phase,
		Tiles:     w.Tiles,
		Countdown: time.Duration(w.CountdownMs) * time.Millisecond,
		TimeLeft:  time.Duration(w.TimeLeftMs) * time.Millisecond,
		Mode:      mode,
		Winner:    w.Winner,
		You:       w.You,
	}

	if len(w.Players) > 0 {
		s.Players = make([]PlayerState, 0, len(w.Players))
	}
	for _, p := range w.Players {
		if p.ID == "" {
			return nil, fmt.Errorf("snapshot: player with empty id")
		}
		ps := PlayerState{
			ID:    p.ID,
			Name:  p.Name,
			X:     p.X,
			Y:     p.Y,
			Alive: p.Alive,
			Color: p.Color,
		}
		if p.StunnedUntil > 0 {
			ps.StunnedUntil = time.UnixMilli(p.StunnedUntil)
		}
		s.Players = append(s.Players, ps)
	}

	if len(w.Bombs) > 0 {
		s.Bombs = make([]BombState, 0, len(w.Bombs))
	}
	for _, b := range w.Bombs {
		if b.ID == "" {
			return nil, fmt.Errorf("snapshot: bomb with empty id")
		}
		s.Bombs = append(s.Bombs, BombState{
			ID:       b.ID,
			Owner:    b.Owner,
			X:        b.X,
			Y:        b.Y,
			Range:    b.Range,
			Fuse:     time.Duration(b.FuseMs) * time.Millisecond,
			Moving:   b.Moving,
			Flying:   b.Flying,
			Piercing: b.Piercing,
			Punched:  b.Punched,
			Dir:      parseDirection(b.Dir),
			TargetX:  b.TargetX,
			TargetY:  b.TargetY,
		})
	}

	if len(w.Explosions) > 0 {
		s.Explosions = make([]ExplosionState, 0, len(w.Explosions))
	}
	for _, e := range w.Explosions {
		if e.ID == "" {
			return nil, fmt.Errorf("snapshot: explosion with empty id")
		}
		s.Explosions = append(s.Explosions, ExplosionState{
			ID:   e.ID,
			X:    e.X,
			Y:    e.Y,
			Left: time.Duration(e.LeftMs) * time.Millisecond,
		})
	}

	return s, nil
}
