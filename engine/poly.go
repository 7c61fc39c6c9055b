// Package engine is a small six-voice subtractive synth that satisfies
// bridge.Engine. It is the default engine when no other is linked in.
package engine

import (
	"fmt"
	"math"

	"go-juno/bridge"
)

const (
	// Voices is the fixed polyphony.
	Voices = 6

	maxSampleRate = 384000
	chorusDelay   = 0.02 // seconds of delay line
)

// Poly is the engine. Every method runs on the render goroutine.
type Poly struct {
	sampleRate float64
	voices     [Voices]voice
	clock      uint64
	next       int
	seed       uint32

	rangeMul   float64
	lfoTarget  int
	saw        float64
	pulse      float64
	subLevel   float64
	noiseLevel float64
	pulseWidth float64
	pwmDepth   float64
	detune     float64
	drift      bool

	lfoRate  float64
	lfoDelay float64
	lfoPhase float64
	lfoAge   float64

	hpfCoef   float64
	cutoff    float64
	resonance float64
	envAmount float64
	filterLfo float64
	keyTrack  float64

	chorusMode  int
	chorusBuf   []float32
	chorusPos   int
	chorusPhase float64

	bendRange float64
	bend      float64
	porta     float64
	modWheel  float64
	gateMode  bool
	level     float64
	envInvert bool
	tune      float64
	velFilter float64
	velAmp    float64
	reuse     bool
}

var _ bridge.Engine = (*Poly)(nil)

// New builds a Poly at sampleRate. It matches bridge.Constructor.
func New(sampleRate float64) (bridge.Engine, error) {
	if !(sampleRate > 0) || sampleRate > maxSampleRate || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("unsupported sample rate %g", sampleRate)
	}
	p := &Poly{
		sampleRate: sampleRate,
		seed:       0x9e3779b9,
		rangeMul:   1,
		saw:        0.5,
		pulseWidth: 0.5,
		drift:      true,
		lfoRate:    2,
		cutoff:     0.5,
		bendRange:  2,
		level:      0.8,
		velAmp:     1,
		chorusBuf:  make([]float32, int(sampleRate*chorusDelay)+2),
	}
	for i := range p.voices {
		p.voices[i].amp = newEnvelope(sampleRate, 0.01, 0.3, 0.7, 0.5)
		p.voices[i].filter = newEnvelope(sampleRate, 0.01, 0.3, 0.7, 0.5)
	}
	return p, nil
}

// noise is a xorshift generator in [-1, 1).
func (p *Poly) noise() float64 {
	x := p.seed
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	p.seed = x
	return float64(x)/float64(1<<31) - 1
}

// SoundingVoices reports how many voices are gated or releasing.
func (p *Poly) SoundingVoices() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].sounding() {
			n++
		}
	}
	return n
}

func (p *Poly) HandleNoteEvent(status, data1, data2 byte) {
	switch status & 0xF0 {
	case 0x90:
		if data2 == 0 {
			p.noteOff(int(data1))
			return
		}
		p.noteOn(int(data1), float64(data2)/127)
	case 0x80:
		p.noteOff(int(data1))
	case 0xB0:
		switch data1 {
		case 1:
			p.modWheel = float64(data2) / 127
		case 120:
			for i := range p.voices {
				p.voices[i].kill()
			}
		case 123:
			for i := range p.voices {
				if p.voices[i].gate {
					p.voices[i].stop()
				}
			}
		}
	case 0xE0:
		raw := int(data2)<<7 | int(data1)
		p.bend = float64(raw-8192) / 8192
	}
}

func (p *Poly) noteOn(note int, velocity float64) {
	p.clock++
	if p.reuse {
		for i := range p.voices {
			if v := &p.voices[i]; v.note == note && v.sounding() {
				v.start(note, velocity, p.clock, p)
				return
			}
		}
	}
	// The LFO delay restarts only when every key was up.
	held := false
	for i := range p.voices {
		held = held || p.voices[i].gate
	}
	if !held {
		p.lfoAge = 0
	}
	p.allocate().start(note, velocity, p.clock, p)
}

// allocate picks a free voice in rotation, then the oldest released one,
// then steals the oldest.
func (p *Poly) allocate() *voice {
	for i := 0; i < Voices; i++ {
		idx := (p.next + i) % Voices
		if !p.voices[idx].sounding() {
			p.next = (idx + 1) % Voices
			return &p.voices[idx]
		}
	}
	var oldest *voice
	for i := range p.voices {
		v := &p.voices[i]
		if v.gate {
			continue
		}
		if oldest == nil || v.age < oldest.age {
			oldest = v
		}
	}
	if oldest != nil {
		return oldest
	}
	oldest = &p.voices[0]
	for i := range p.voices {
		if p.voices[i].age < oldest.age {
			oldest = &p.voices[i]
		}
	}
	return oldest
}

func (p *Poly) noteOff(note int) {
	for i := range p.voices {
		if v := &p.voices[i]; v.gate && v.note == note {
			v.stop()
		}
	}
}

func (p *Poly) Render(left, right []float32, frames int) {
	if frames > len(left) {
		frames = len(left)
	}
	if frames > len(right) {
		frames = len(right)
	}
	lfoInc := p.lfoRate / p.sampleRate
	for n := 0; n < frames; n++ {
		lfo := math.Sin(2 * math.Pi * p.lfoPhase)
		p.lfoPhase += lfoInc
		if p.lfoPhase >= 1 {
			p.lfoPhase -= 1
		}
		if p.lfoDelay > 0 && p.lfoAge < p.lfoDelay {
			lfo *= p.lfoAge / p.lfoDelay
			p.lfoAge += 1 / p.sampleRate
		}

		var mix float64
		for i := range p.voices {
			if p.voices[i].sounding() {
				mix += p.voices[i].tick(p, lfo)
			}
		}
		mix *= p.level * 0.3

		l, r := p.chorus(float32(mix))
		left[n] = l
		right[n] = r
	}
}

func (p *Poly) chorus(in float32) (float32, float32) {
	p.chorusBuf[p.chorusPos] = in
	if p.chorusMode == 0 {
		p.chorusPos = (p.chorusPos + 1) % len(p.chorusBuf)
		return in, in
	}
	rate, depth := 0.5, 0.002
	switch p.chorusMode {
	case 2:
		rate, depth = 0.8, 0.003
	case 3:
		rate, depth = 1.0, 0.0015
	}
	p.chorusPhase += rate / p.sampleRate
	if p.chorusPhase >= 1 {
		p.chorusPhase -= 1
	}
	mod := math.Sin(2 * math.Pi * p.chorusPhase)
	base := 0.006
	dl := p.tap(base + depth*(1+mod))
	dr := p.tap(base + depth*(1-mod))
	p.chorusPos = (p.chorusPos + 1) % len(p.chorusBuf)
	return 0.7*in + 0.5*dl, 0.7*in + 0.5*dr
}

func (p *Poly) tap(seconds float64) float32 {
	d := int(seconds * p.sampleRate)
	if d >= len(p.chorusBuf) {
		d = len(p.chorusBuf) - 1
	}
	i := p.chorusPos - d
	if i < 0 {
		i += len(p.chorusBuf)
	}
	return p.chorusBuf[i]
}
