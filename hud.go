package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hako/durafmt"
	dark "github.com/thiagokokada/dark-mode-go"
	"golang.org/x/text/unicode/norm"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

const (
	countdownBounce = 250 * time.Millisecond
	goFlashTime     = 600 * time.Millisecond
	maxNameRunes    = 12

	// debug font cell metrics, used for rough centering
	glyphW = 6
	glyphH = 16
)

type hudTheme struct {
	bg     color.NRGBA
	text   color.NRGBA
	dim    color.NRGBA
	warn   color.NRGBA // countdown 3+
	alert  color.NRGBA // countdown 2
	danger color.NRGBA // countdown 1
	good   color.NRGBA // GO
}

var darkTheme = hudTheme{
	bg:     color.NRGBA{R: 0x17, G: 0x1a, B: 0x1f, A: 0xff},
	text:   color.NRGBA{R: 0xec, G: 0xef, B: 0xf4, A: 0xff},
	dim:    color.NRGBA{R: 0x9a, G: 0xa3, B: 0xb0, A: 0xff},
	warn:   color.NRGBA{R: 0xe8, G: 0xc5, B: 0x3a, A: 0xff},
	alert:  color.NRGBA{R: 0xf5, G: 0x8a, B: 0x2a, A: 0xff},
	danger: color.NRGBA{R: 0xe8, G: 0x4b, B: 0x3c, A: 0xff},
	good:   color.NRGBA{R: 0x46, G: 0xb4, B: 0x5a, A: 0xff},
}

var lightTheme = hudTheme{
	bg:     color.NRGBA{R: 0xe7, G: 0xea, B: 0xef, A: 0xff},
	text:   color.NRGBA{R: 0x20, G: 0x24, B: 0x2a, A: 0xff},
	dim:    color.NRGBA{R: 0x5d, G: 0x66, B: 0x72, A: 0xff},
	warn:   color.NRGBA{R: 0xb8, G: 0x92, B: 0x10, A: 0xff},
	alert:  color.NRGBA{R: 0xc4, G: 0x64, B: 0x10, A: 0xff},
	danger: color.NRGBA{R: 0xc0, G: 0x2a, B: 0x1c, A: 0xff},
	good:   color.NRGBA{R: 0x20, G: 0x8a, B: 0x38, A: 0xff},
}

// pickTheme resolves the settings value; "auto" asks the OS and falls back
// to dark when that fails.
func pickTheme(pref string) hudTheme {
	switch pref {
	case "dark":
		return darkTheme
	case "light":
		return lightTheme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		logDebug("dark mode probe: %v", err)
		return darkTheme
	}
	if !isDark {
		return lightTheme
	}
	return darkTheme
}

// displayName normalizes and clamps a server-provided name for drawing.
func displayName(name string) string {
	n := norm.NFC.String(name)
	runes := []rune(n)
	if len(runes) > maxNameRunes {
		runes = runes[:maxNameRunes]
	}
	return string(runes)
}

// hudEvents reports snapshot-driven HUD transitions so the orchestrator can
// attach sounds without re-deriving them.
type hudEvents struct {
	countdownTick bool
	goNow         bool
	phaseChanged  bool
}

// hud renders the phase line, countdown and end card. Timed effects key off
// the timestamps of observed value changes, not the frame clock, so dropped
// frames cannot stretch them.
type hud struct {
	cfg   GameConfig
	theme hudTheme

	phaseKnown bool
	phase      Phase

	shownCountdown int
	bounceStart    time.Time
	goStart        time.Time
	goFired        bool

	lineBuf *ebiten.Image
	bigBuf  *ebiten.Image
}

func newHUD(cfg GameConfig, theme hudTheme) *hud {
	return &hud{cfg: cfg, theme: theme, shownCountdown: -1}
}

// observe digests one reconciled snapshot.
func (h *hud) observe(s *Snapshot, now time.Time) hudEvents {
	var ev hudEvents

	if !h.phaseKnown || s.Phase != h.phase {
		ev.phaseChanged = h.phaseKnown
		if h.phaseKnown && h.phase == PhaseCountdown && s.Phase == PhasePlaying && !h.goFired {
			h.goStart = now
			h.goFired = true
			ev.goNow = true
		}
		if s.Phase == PhaseWaiting || s.Phase == PhaseEnded {
			h.goFired = false
			h.shownCountdown = -1
		}
		h.phase = s.Phase
		h.phaseKnown = true
	}

	if s.Phase == PhaseCountdown {
		sec := countdownSeconds(s.Countdown)
		if sec != h.shownCountdown {
			h.shownCountdown = sec
			h.bounceStart = now
			if sec > 0 {
				ev.countdownTick = true
			} else if !h.goFired {
				h.goStart = now
				h.goFired = true
				ev.goNow = true
			}
		}
	}

	return ev
}

func countdownSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// status resolves the phase table to the main HUD line and its color.
func (h *hud) status(s *Snapshot, now time.Time) (string, color.NRGBA) {
	if s == nil {
		return "", h.theme.dim
	}
	switch s.Phase {
	case PhaseWaiting:
		return fmt.Sprintf("Waiting for players (%d/%d min)...", len(s.Players), h.cfg.MinPlayers), h.theme.dim
	case PhaseCountdown:
		sec := countdownSeconds(s.Countdown)
		if sec <= 0 {
			return "GO!", h.theme.good
		}
		return fmt.Sprintf("%d", sec), h.countdownColor(sec)
	case PhasePlaying:
		if h.goFired && now.Sub(h.goStart) < goFlashTime {
			return "GO!", h.theme.good
		}
		if s.Mode == ModeTime {
			left := s.TimeLeft.Round(time.Second)
			if left < 0 {
				left = 0
			}
			return "Time left " + durafmt.Parse(left).LimitFirstN(2).Format(shortUnits), h.theme.text
		}
		return fmt.Sprintf("Alive %d/%d", s.aliveCount(), len(s.Players)), h.theme.text
	case PhaseEnded:
		if w := s.player(s.Winner); w != nil {
			return displayName(w.Name) + " wins!", h.theme.good
		}
		return "Game over", h.theme.text
	}
	return "", h.theme.dim
}

func (h *hud) countdownColor(sec int) color.NRGBA {
	switch {
	case sec >= 3:
		return h.theme.warn
	case sec == 2:
		return h.theme.alert
	default:
		return h.theme.danger
	}
}

// countdownScale is the bounce applied when the displayed number changes:
// oversized on the change, easing back to 1.
func (h *hud) countdownScale(now time.Time) float64 {
	t := progress01(h.bounceStart, now, countdownBounce)
	return 1 + 0.6*(1-t)
}

// goAlpha fades the GO flash after play begins.
func (h *hud) goAlpha(now time.Time) float64 {
	if !h.goFired {
		return 0
	}
	return 1 - progress01(h.goStart, now, goFlashTime)
}

func (h *hud) draw(screen *ebiten.Image, s *Snapshot, now time.Time, extra []string) {
	w := screen.Bounds().Dx()

	if s != nil {
		text, col := h.status(s, now)
		switch s.Phase {
		case PhaseCountdown:
			scale := h.countdownScale(now)
			if countdownSeconds(s.Countdown) <= 0 {
				scale = 1
			}
			h.drawBig(screen, text, col, 6*scale, 1, w/2, screen.Bounds().Dy()/3)
		case PhasePlaying:
			if text == "GO!" {
				h.drawBig(screen, text, col, 6, h.goAlpha(now), w/2, screen.Bounds().Dy()/3)
			} else {
				h.drawLine(screen, text, col, w/2, 8)
			}
		case PhaseEnded:
			h.drawBig(screen, text, col, 3, 1, w/2, screen.Bounds().Dy()/3)
		default:
			h.drawLine(screen, text, col, w/2, 8)
		}

		if s.Room != "" {
			ebitenutil.DebugPrintAt(screen, "Room "+s.Room, 4, 4)
		}
	}

	y := screen.Bounds().Dy() - glyphH*len(extra) - 2
	for _, line := range extra {
		ebitenutil.DebugPrintAt(screen, line, 4, y)
		y += glyphH
	}
}

// drawLine renders one centered status line at double size.
func (h *hud) drawLine(screen *ebiten.Image, text string, col color.NRGBA, cx, y int) {
	if text == "" {
		return
	}
	if h.lineBuf == nil {
		h.lineBuf = ebiten.NewImage(64*glyphW, glyphH)
	}
	h.lineBuf.Clear()
	ebitenutil.DebugPrintAt(h.lineBuf, text, 0, 0)

	const scale = 2
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(cx-len(text)*glyphW*scale/2), float64(y))
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(h.lineBuf, op)
}

// drawBig renders short text scaled up and tinted, centered on (cx, cy).
func (h *hud) drawBig(screen *ebiten.Image, text string, col color.NRGBA, scale, alpha float64, cx, cy int) {
	if text == "" || alpha <= 0 {
		return
	}
	if h.bigBuf == nil {
		h.bigBuf = ebiten.NewImage(32*glyphW, glyphH)
	}
	h.bigBuf.Clear()
	ebitenutil.DebugPrintAt(h.bigBuf, text, 0, 0)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		float64(cx)-float64(len(text)*glyphW)*scale/2,
		float64(cy)-glyphH*scale/2,
	)
	op.ColorScale.ScaleWithColor(col)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(h.bigBuf, op)
}

func (h *hud) release() {
	if h.lineBuf != nil {
		h.lineBuf.Deallocate()
		h.lineBuf = nil
	}
	if h.bigBuf != nil {
		h.bigBuf.Deallocate()
		h.bigBuf = nil
	}
}
