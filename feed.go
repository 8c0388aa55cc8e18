package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	feedChanDepth = 8
	intentTimeout = 2 * time.Second
	dialTimeout   = 10 * time.Second
)

// feed is the thin snapshot source: one websocket dial, a read loop, and
// fire-and-forget intent writes. No reconnect or session resumption lives
// here; that belongs to the server side of the wire.
type feed struct {
	conn    *websocket.Conn
	session uuid.UUID

	out   chan *Snapshot
	st    *stats
	store *latestStore
	rec   *recorder
}

type intentMsg struct {
	Type    string `json:"type"`
	Dir     string `json:"dir,omitempty"`
	Room    string `json:"room,omitempty"`
	Name    string `json:"name,omitempty"`
	Session string `json:"session,omitempty"`
}

// dialFeed connects, announces the client, and starts the read loop.
func dialFeed(ctx context.Context, server, room, name string, st *stats, store *latestStore, rec *recorder) (*feed, error) {
	u := url.URL{Scheme: "ws", Host: server, Path: "/ws"}
	q := u.Query()
	if room != "" {
		q.Set("room", room)
	}
	u.RawQuery = q.Encode()

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	f := &feed{
		conn:    conn,
		session: uuid.New(),
		out:     make(chan *Snapshot, feedChanDepth),
		st:      st,
		store:   store,
		rec:     rec,
	}

	hello := intentMsg{Type: "join", Room: room, Name: name, Session: f.session.String()}
	if err := f.write(ctx, hello); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return nil, fmt.Errorf("join: %w", err)
	}
	logDebug("feed: joined %s room=%q session=%s", server, room, f.session)

	go f.readLoop(ctx)
	return f, nil
}

func (f *feed) readLoop(ctx context.Context) {
	defer close(f.out)
	for {
		typ, data, err := f.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logError("feed: read: %v", err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		now := time.Now()
		if f.st != nil {
			f.st.markSnapshot(now, len(data))
		}
		if f.rec != nil {
			f.rec.record(data, now)
		}
		logDebugSnapshot("feed: snapshot", data)

		s, err := ParseSnapshot(data)
		if err != nil {
			logError("feed: dropping snapshot: %v", err)
			continue
		}
		if f.store != nil {
			f.store.set(data, s)
		}

		// latest wins when the render loop lags
		for {
			select {
			case f.out <- s:
			default:
				select {
				case <-f.out:
				default:
				}
				continue
			}
			break
		}
	}
}

// Snapshots is the channel the orchestrator drains each tick. It closes
// when the connection dies.
func (f *feed) Snapshots() <-chan *Snapshot {
	return f.out
}

func (f *feed) Close() error {
	return f.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (f *feed) write(ctx context.Context, m intentMsg) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, intentTimeout)
	defer cancel()
	return f.conn.Write(wctx, websocket.MessageText, data)
}

// sendIntent logs and drops failures; intents are fire-and-forget.
func (f *feed) sendIntent(m intentMsg) {
	if err := f.write(context.Background(), m); err != nil {
		logDebug("feed: intent %s: %v", m.Type, err)
	}
}

func (f *feed) Move(d Direction) {
	if d == DirNone {
		return
	}
	f.sendIntent(intentMsg{Type: "move", Dir: d.String()})
}

func (f *feed) PlaceBomb() {
	f.sendIntent(intentMsg{Type: "bomb"})
}

func (f *feed) Throw() {
	f.sendIntent(intentMsg{Type: "throw"})
}

func (f *feed) StartGame() {
	f.sendIntent(intentMsg{Type: "start"})
}
