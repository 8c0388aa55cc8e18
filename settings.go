package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

type Settings struct {
	Scale        int    `json:"scale"`
	Vsync        bool   `json:"vsync"`
	Sound        bool   `json:"sound"`
	Theme        string `json:"theme"` // auto, dark or light
	SmoothMotion bool   `json:"smoothMotion"`
	ShowNames    bool   `json:"showNames"`
	ShowStats    bool   `json:"showStats"`
	LastName     string `json:"lastName"`
}

func defaultSettings() Settings {
	return Settings{
		Scale:        2,
		Vsync:        true,
		Sound:        true,
		Theme:        "auto",
		SmoothMotion: true,
		ShowNames:    true,
	}
}

func loadSettings() Settings {
	s := defaultSettings()
	path := filepath.Join(baseDir, "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("load settings: %v", err)
		return defaultSettings()
	}
	if s.Scale < 1 {
		s.Scale = 1
	}
	return s
}

func applySettings(s Settings, viewportW, viewportH int) {
	ebiten.SetVsyncEnabled(s.Vsync)
	ebiten.SetWindowSize(viewportW*s.Scale, viewportH*s.Scale)
}

func saveSettings(s Settings) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Printf("save settings: %v", err)
		return
	}
	path := filepath.Join(baseDir, "settings.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("save settings: %v", err)
	}
}
