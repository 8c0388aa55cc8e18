package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	client "github.com/hugolgst/rich-go/client"
)

const discordAppID = "1391884378021458954"

var (
	discordMu sync.Mutex
	discordOK bool
)

// initDiscordRPC logs into the local Discord client if one is running.
// Presence is best effort; failures land in the log and never in the UI.
func initDiscordRPC(ctx context.Context) {
	if err := client.Login(discordAppID); err != nil {
		logDebug("discord rpc login: %v", err)
		return
	}
	discordMu.Lock()
	discordOK = true
	discordMu.Unlock()

	now := time.Now()
	if err := client.SetActivity(client.Activity{
		State:   "In the lobby",
		Details: "Blast Arena",
		Timestamps: &client.Timestamps{
			Start: &now,
		},
	}); err != nil {
		logError("discord rpc activity: %v", err)
	}
	go func() {
		<-ctx.Done()
		client.Logout()
	}()
}

// setPresence reflects the current room and phase. Called by the
// orchestrator on phase transitions only, so the RPC socket stays quiet.
func setPresence(room string, phase Phase, players int) {
	discordMu.Lock()
	ok := discordOK
	discordMu.Unlock()
	if !ok {
		return
	}

	state := ""
	switch phase {
	case PhaseWaiting:
		state = fmt.Sprintf("Waiting in %s (%d here)", room, players)
	case PhaseCountdown:
		state = "Starting..."
	case PhasePlaying:
		state = fmt.Sprintf("Battling %d players", players)
	case PhaseEnded:
		state = "Match over"
	}
	now := time.Now()
	if err := client.SetActivity(client.Activity{
		State:   state,
		Details: "Blast Arena",
		Timestamps: &client.Timestamps{
			Start: &now,
		},
	}); err != nil {
		logDebug("discord rpc activity: %v", err)
	}
}
