package main

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var splashTitleBuf *ebiten.Image

// drawSplash renders the procedural title card shown before the first
// snapshot arrives (or with no server at all).
func drawSplash(screen *ebiten.Image, theme hudTheme, now time.Time) {
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	cx := float64(w) / 2
	cy := float64(h) / 2

	// oversized bobbing bomb
	bob := math.Sin(float64(now.UnixMilli())/400) * 6
	r := float64(h) / 7
	body := color.NRGBA{R: 0x26, G: 0x2a, B: 0x31, A: 0xff}
	hi := color.NRGBA{R: 0x3c, G: 0x42, B: 0x4c, A: 0xff}
	vector.DrawFilledCircle(screen, float32(cx), float32(cy+bob), float32(r), body, true)
	vector.DrawFilledCircle(screen, float32(cx-r*0.3), float32(cy+bob-r*0.3), float32(r*0.25), hi, true)
	vector.StrokeLine(screen, float32(cx), float32(cy+bob-r*0.9), float32(cx+r*0.35), float32(cy+bob-r*1.25),
		3, color.NRGBA{R: 0x7a, G: 0x5a, B: 0x3a, A: 0xff}, true)
	sparkOn := (now.UnixMilli()/120)%2 == 0
	if sparkOn {
		spark := color.NRGBA{R: 0xff, G: 0xd9, B: 0x4a, A: 0xff}
		vector.DrawFilledCircle(screen, float32(cx+r*0.35), float32(cy+bob-r*1.3), 4, spark, true)
	}

	if splashTitleBuf == nil {
		splashTitleBuf = ebiten.NewImage(16*glyphW, glyphH)
		ebitenutil.DebugPrintAt(splashTitleBuf, "BLAST ARENA", 0, 0)
	}
	const title = "BLAST ARENA"
	scale := 4.0
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx-float64(len(title)*glyphW)*scale/2, cy-r-80)
	op.ColorScale.ScaleWithColor(theme.text)
	screen.DrawImage(splashTitleBuf, op)

	hint := "start with -server host:port, or -replay file.baz"
	ebitenutil.DebugPrintAt(screen, hint, w/2-len(hint)*glyphW/2, h-3*glyphH)
}
