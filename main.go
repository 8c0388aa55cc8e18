package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

var baseDir string

func main() {
	server := flag.String("server", "", "game server host:port (empty shows the title card)")
	room := flag.String("room", "", "room code to join")
	name := flag.String("name", "", "display name")
	replayPath := flag.String("replay", "", "play back a replay file")
	recordPath := flag.String("record", "", "record snapshots to this file (with -server)")
	recordAsk := flag.Bool("record-ask", false, "record and choose the file when stopping (F10)")
	diagAddr := flag.String("diag", "", "serve diagnostics HTTP on this address")
	cfgPath := flag.String("config", "", "game config JSON file")
	noSound := flag.Bool("nosound", false, "disable sound")
	dbg := flag.Bool("debug", false, "verbose/debug logging")
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			log.Fatalf("get working directory: %v", err)
		}
	}

	setupLogging(*dbg)
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
		}
	}()

	cfg, err := loadGameConfig(*cfgPath)
	if err != nil {
		logError("config: %v (using defaults)", err)
	}

	st := loadSettings()
	if *name != "" {
		st.LastName = *name
	} else if st.LastName != "" {
		*name = st.LastName
	} else {
		*name = "player"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	theme := pickTheme(st.Theme)
	stats := newStats(st.ShowStats)
	store := newLatestStore()

	var sounds *soundBank
	if st.Sound && !*noSound {
		sounds = newSoundBank(false)
	}

	var rec *recorder
	if *recordPath != "" || *recordAsk {
		path := *recordPath
		if *recordAsk {
			path = ""
		}
		if rec, err = newRecorder(path); err != nil {
			logError("recording disabled: %v", err)
			rec = nil
		}
	}

	deps := gameDeps{
		ctx:    ctx,
		stats:  stats,
		sounds: sounds,
		rec:    rec,
	}

	switch {
	case *replayPath != "":
		rp, err := newReplayPlayer(*replayPath)
		if err != nil {
			log.Fatalf("replay: %v", err)
		}
		ch := make(chan *Snapshot, feedChanDepth)
		go rp.run(ctx, ch, stats, store)
		deps.replay = rp
		deps.snaps = ch
	case *server != "":
		f, err := dialFeed(ctx, *server, *room, *name, stats, store, rec)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer f.Close()
		deps.snaps = f.Snapshots()
		deps.intents = f
	default:
		logDebug("no server or replay given; title card only")
	}

	if *diagAddr != "" {
		srv := startDiagServer(*diagAddr, stats, store)
		defer func() {
			shctx, shcancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shcancel()
			srv.Shutdown(shctx)
		}()
	}

	initDiscordRPC(ctx)
	deps.presence = setPresence

	go precacheTileArt(cfg.TileSize)

	g := newGame(cfg, st, theme, deps)
	g.Init(defaultViewportW, defaultViewportH)

	applySettings(st, defaultViewportW, defaultViewportH)
	ebiten.SetWindowTitle("Blast Arena")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		logError("run: %v", err)
	}
	g.Destroy()

	if rec != nil {
		if err := rec.stop(); err != nil {
			logError("stop recording: %v", err)
		}
	}
	saveSettings(g.st)
}
