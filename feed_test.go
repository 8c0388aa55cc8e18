package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func recvSnapshot(t *testing.T, ch <-chan *Snapshot) *Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatalf("snapshot feed closed early")
		}
		return s
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a snapshot")
	}
	return nil
}

func recvIntent(t *testing.T, ch <-chan intentMsg) intentMsg {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for an intent")
	}
	return intentMsg{}
}

func TestFeedEndToEnd(t *testing.T) {
	intents := make(chan intentMsg, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("room") != "e2e" {
			t.Errorf("room query = %q", r.URL.Query().Get("room"))
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer c.CloseNow()
		ctx := r.Context()

		// Push the opening burst: binary noise and a corrupt frame are
		// both the client's job to ignore.
		c.Write(ctx, websocket.MessageText, []byte(`{"room":"e2e","phase":"waiting"}`))
		c.Write(ctx, websocket.MessageBinary, []byte{0xde, 0xad})
		c.Write(ctx, websocket.MessageText, []byte(`{"room":"e2e","phase":"broken`))
		c.Write(ctx, websocket.MessageText, []byte(`{"room":"e2e","phase":"playing","you":"p1"}`))

		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				return
			}
			var m intentMsg
			if err := json.Unmarshal(data, &m); err != nil {
				t.Errorf("bad intent payload: %v", err)
				continue
			}
			intents <- m
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := newStats(false)
	store := newLatestStore()
	f, err := dialFeed(ctx, strings.TrimPrefix(srv.URL, "http://"), "e2e", "Ada", st, store, nil)
	if err != nil {
		t.Fatalf("dialFeed: %v", err)
	}
	defer f.Close()

	join := recvIntent(t, intents)
	if join.Type != "join" || join.Room != "e2e" || join.Name != "Ada" || join.Session == "" {
		t.Fatalf("join hello = %+v", join)
	}

	// Only the two valid text frames come out the other side, in order.
	s1 := recvSnapshot(t, f.Snapshots())
	if s1.Phase != PhaseWaiting {
		t.Fatalf("first snapshot phase = %v", s1.Phase)
	}
	s2 := recvSnapshot(t, f.Snapshots())
	if s2.Phase != PhasePlaying || s2.You != "p1" {
		t.Fatalf("second snapshot = %+v", s2)
	}

	if v := st.values(); v.Snapshots != 3 {
		// counted per text frame, including the corrupt one
		t.Fatalf("marked snapshots = %d, want 3", v.Snapshots)
	}
	if raw, _ := store.get(); !strings.Contains(string(raw), `"playing"`) {
		t.Fatalf("latest store = %s", raw)
	}

	f.Move(DirLeft)
	f.Move(DirNone) // silently dropped, no frame at all
	f.PlaceBomb()
	f.Throw()
	f.StartGame()

	if m := recvIntent(t, intents); m.Type != "move" || m.Dir != "left" {
		t.Fatalf("move intent = %+v", m)
	}
	if m := recvIntent(t, intents); m.Type != "bomb" {
		t.Fatalf("bomb intent = %+v", m)
	}
	if m := recvIntent(t, intents); m.Type != "throw" {
		t.Fatalf("throw intent = %+v", m)
	}
	if m := recvIntent(t, intents); m.Type != "start" {
		t.Fatalf("start intent = %+v", m)
	}
}

func TestFeedDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Port 1 is never listening.
	if _, err := dialFeed(ctx, "127.0.0.1:1", "r", "n", nil, nil, nil); err == nil {
		t.Fatalf("dial to a dead port succeeded")
	}
}

func TestFeedCloseEndsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		// Hold the connection until the client hangs up.
		c.Read(r.Context())
		c.Read(r.Context())
	}))
	defer srv.Close()

	ctx := context.Background()
	f, err := dialFeed(ctx, strings.TrimPrefix(srv.URL, "http://"), "", "n", nil, nil, nil)
	if err != nil {
		t.Fatalf("dialFeed: %v", err)
	}
	f.Close()

	select {
	case _, ok := <-f.Snapshots():
		if ok {
			t.Fatalf("unexpected snapshot")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("snapshot channel never closed")
	}
}
