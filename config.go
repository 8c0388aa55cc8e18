package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// GameConfig holds the match constants the server and client must agree on.
// Everything that depends on the arena shape reads these fields; nothing may
// assume the reference 19x15 grid.
type GameConfig struct {
	GridWidth  int
	GridHeight int
	TileSize   int

	BombFuse         time.Duration
	ExplosionVisible time.Duration

	MinPlayers int
	MaxPlayers int
}

func defaultGameConfig() GameConfig {
	return GameConfig{
		GridWidth:        19,
		GridHeight:       15,
		TileSize:         32,
		BombFuse:         3 * time.Second,
		ExplosionVisible: 500 * time.Millisecond,
		MinPlayers:       2,
		MaxPlayers:       8,
	}
}

func (c GameConfig) worldSize() (int, int) {
	return c.GridWidth * c.TileSize, c.GridHeight * c.TileSize
}

// gameConfigFile is the on-disk shape. Durations travel as milliseconds,
// matching the snapshot wire format.
type gameConfigFile struct {
	GridWidth    int `json:"gridWidth"`
	GridHeight   int `json:"gridHeight"`
	TileSize     int `json:"tileSize"`
	BombFuseMs   int `json:"bombFuseMs"`
	ExplosionMs  int `json:"explosionMs"`
	MinPlayers   int `json:"minPlayers"`
	MaxPlayers   int `json:"maxPlayers"`
}

// loadGameConfig reads a config file over the defaults. Fields left zero in
// the file keep their default value so partial configs stay valid.
func loadGameConfig(path string) (GameConfig, error) {
	cfg := defaultGameConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var f gameConfigFile
	if err := json.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if f.GridWidth > 0 {
		cfg.GridWidth = f.GridWidth
	}
	if f.GridHeight > 0 {
		cfg.GridHeight = f.GridHeight
	}
	if f.TileSize > 0 {
		cfg.TileSize = f.TileSize
	}
	if f.BombFuseMs > 0 {
		cfg.BombFuse = time.Duration(f.BombFuseMs) * time.Millisecond
	}
	if f.ExplosionMs > 0 {
		cfg.ExplosionVisible = time.Duration(f.ExplosionMs) * time.Millisecond
	}
	if f.MinPlayers > 0 {
		cfg.MinPlayers = f.MinPlayers
	}
	if f.MaxPlayers > 0 {
		cfg.MaxPlayers = f.MaxPlayers
	}
	if err := cfg.validate(); err != nil {
		return defaultGameConfig(), err
	}
	return cfg, nil
}

func (c GameConfig) validate() error {
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("config: grid %dx%d is not positive", c.GridWidth, c.GridHeight)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("config: tile size %d is not positive", c.TileSize)
	}
	if c.BombFuse <= 0 || c.ExplosionVisible <= 0 {
		return fmt.Errorf("config: durations must be positive")
	}
	if c.MinPlayers <= 0 || c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("config: player bounds %d..%d invalid", c.MinPlayers, c.MaxPlayers)
	}
	return nil
}
