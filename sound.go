package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	sampleRate = 44100
	maxSounds  = 16
)

type cue int

const (
	cueBombPlace cue = iota
	cueExplosion
	cueBeep
	cueGo
	cueDeath
	cueWin
)

// soundBank synthesizes every effect at startup volume-agnostic and plays
// them through a capped pool, so a burst of explosions cannot exhaust the
// mixer.
type soundBank struct {
	ctx *audio.Context

	mu      sync.Mutex
	muted   bool
	pcm     map[cue][]byte
	players map[*audio.Player]struct{}
}

func newSoundBank(muted bool) *soundBank {
	return &soundBank{
		ctx:     audio.NewContext(sampleRate),
		muted:   muted,
		pcm:     make(map[cue][]byte),
		players: make(map[*audio.Player]struct{}),
	}
}

func (b *soundBank) setMuted(m bool) {
	b.mu.Lock()
	b.muted = m
	b.mu.Unlock()
}

func (b *soundBank) play(c cue, vol float64) {
	if b == nil || b.ctx == nil {
		return
	}
	b.mu.Lock()
	if b.muted {
		b.mu.Unlock()
		return
	}
	pcm, ok := b.pcm[c]
	if !ok {
		pcm = synthCue(c)
		b.pcm[c] = pcm
	}
	b.mu.Unlock()
	if len(pcm) == 0 {
		return
	}

	p := b.ctx.NewPlayerFromBytes(pcm)
	p.SetVolume(0.25 * clampF(vol, 0, 1))

	b.mu.Lock()
	for sp := range b.players {
		if !sp.IsPlaying() {
			sp.Close()
			delete(b.players, sp)
		}
	}
	if len(b.players) >= maxSounds {
		b.mu.Unlock()
		p.Close()
		return
	}
	b.players[p] = struct{}{}
	b.mu.Unlock()

	p.Play()
}

func (b *soundBank) stopAll() {
	if b == nil {
		return
	}
	b.mu.Lock()
	for sp := range b.players {
		sp.Close()
		delete(b.players, sp)
	}
	b.mu.Unlock()
}

func synthCue(c cue) []byte {
	switch c {
	case cueBombPlace:
		return pcmBytes(envelope(synthSine(150, 80), 0.3))
	case cueExplosion:
		boom := mix(
			envelope(synthNoise(320), 6),
			envelope(synthSine(55, 320), 3),
		)
		return pcmBytes(boom)
	case cueBeep:
		return pcmBytes(envelope(synthSine(880, 90), 2))
	case cueGo:
		var out []int16
		for _, f := range []float64{523.25, 659.25, 783.99} {
			out = append(out, envelope(synthSine(f, 90), 2)...)
		}
		return pcmBytes(out)
	case cueDeath:
		return pcmBytes(envelope(synthSlide(420, 140, 350), 2))
	case cueWin:
		var out []int16
		for _, f := range []float64{392, 523.25, 659.25, 783.99} {
			out = append(out, envelope(synthSine(f, 110), 1.5)...)
		}
		return pcmBytes(out)
	}
	return nil
}

// synthSine generates a sine wave for the given frequency and duration.
func synthSine(freq float64, durMS int) []int16 {
	n := sampleRate * durMS / 1000
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		samples[i] = int16(v * math.MaxInt16 * 0.9)
	}
	return samples
}

// synthSlide sweeps from one frequency down (or up) to another.
func synthSlide(from, to float64, durMS int) []int16 {
	n := sampleRate * durMS / 1000
	samples := make([]int16, n)
	phase := 0.0
	for i := 0; i < n; i++ {
		k := float64(i) / float64(n)
		f := from + (to-from)*k
		phase += 2 * math.Pi * f / sampleRate
		samples[i] = int16(math.Sin(phase) * math.MaxInt16 * 0.9)
	}
	return samples
}

func synthNoise(durMS int) []int16 {
	n := sampleRate * durMS / 1000
	samples := make([]int16, n)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		samples[i] = int16((r.Float64()*2 - 1) * math.MaxInt16 * 0.9)
	}
	return samples
}

// envelope applies a short attack and an exponential decay so cues do not
// click at the edges.
func envelope(samples []int16, decay float64) []int16 {
	n := len(samples)
	if n == 0 {
		return samples
	}
	attack := sampleRate * 5 / 1000
	if attack > n {
		attack = n
	}
	for i := 0; i < n; i++ {
		g := math.Exp(-decay * float64(i) / float64(n))
		if i < attack {
			g *= float64(i) / float64(attack)
		}
		samples[i] = int16(float64(samples[i]) * g)
	}
	return samples
}

func mix(a, b []int16) []int16 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		var v int32
		if i < len(a) {
			v += int32(a[i])
		}
		if i < len(b) {
			v += int32(b[i])
		}
		v /= 2
		out[i] = int16(v)
	}
	return out
}

// pcmBytes packs mono samples into the stereo 16-bit little-endian layout
// the audio context expects.
func pcmBytes(samples []int16) []byte {
	pcm := make([]byte, len(samples)*4)
	for i, v := range samples {
		pcm[4*i] = byte(v)
		pcm[4*i+1] = byte(v >> 8)
		pcm[4*i+2] = byte(v)
		pcm[4*i+3] = byte(v >> 8)
	}
	return pcm
}
