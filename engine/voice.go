package engine

import "math"

type voice struct {
	note     int
	velocity float64
	gate     bool
	age      uint64

	pitch  float64 // current note number, glides toward note
	phase  float64
	sub    float64
	drift  float64
	driftV float64

	amp    envelope
	filter envelope

	// state variable filter
	low, band float64
	hpPrev    float64
	hpOut     float64
}

func (v *voice) sounding() bool {
	return v.gate || v.amp.active()
}

func (v *voice) start(note int, velocity float64, age uint64, p *Poly) {
	if !v.sounding() || p.porta <= 0 {
		v.pitch = float64(note)
	}
	v.note = note
	v.velocity = velocity
	v.gate = true
	v.age = age
	if !v.amp.active() {
		v.low, v.band = 0, 0
	}
	v.amp.gateOn()
	v.filter.gateOn()
}

func (v *voice) stop() {
	v.gate = false
	v.amp.gateOff()
	v.filter.gateOff()
}

func (v *voice) kill() {
	v.gate = false
	v.amp.reset()
	v.filter.reset()
	v.low, v.band, v.hpPrev, v.hpOut = 0, 0, 0, 0
}

// tick produces one mono sample.
func (v *voice) tick(p *Poly, lfo float64) float64 {
	if p.porta > 0 {
		v.pitch += (float64(v.note) - v.pitch) * p.porta
	} else {
		v.pitch = float64(v.note)
	}

	if p.drift {
		v.driftV += (p.noise() * 0.0005) - v.drift*0.00001
		v.drift += v.driftV * 0.001
		if v.drift > 0.08 || v.drift < -0.08 {
			v.driftV = 0
		}
	} else {
		v.drift = 0
	}

	semis := v.pitch - 69 + p.bend*p.bendRange + (p.detune+p.tune)/100 + v.drift
	if p.lfoTarget == 1 || p.lfoTarget == 3 {
		semis += lfo * (0.3 + p.modWheel)
	}
	freq := 440 * math.Pow(2, semis/12) * p.rangeMul
	inc := freq / p.sampleRate

	pw := p.pulseWidth
	if p.lfoTarget == 2 || p.lfoTarget == 3 {
		pw += lfo * p.pwmDepth * 0.45
	}
	pw = math.Max(0.05, math.Min(0.95, pw))

	saw := 2*v.phase - 1
	pulse := -1.0
	if v.phase < pw {
		pulse = 1
	}
	sub := -1.0
	if v.sub < 0.5 {
		sub = 1
	}
	v.phase += inc
	if v.phase >= 1 {
		v.phase -= 1
	}
	v.sub += inc / 2
	if v.sub >= 1 {
		v.sub -= 1
	}

	in := saw*p.saw + pulse*p.pulse + sub*p.subLevel + p.noise()*p.noiseLevel

	fenv := v.filter.next()
	if p.envInvert {
		fenv = -fenv
	}
	octaves := p.cutoff*10 + fenv*p.envAmount*5 + lfo*p.filterLfo*2 +
		v.velocity*p.velFilter*2 + (v.pitch-60)/12*p.keyTrack
	fc := 20 * math.Pow(2, octaves)
	if limit := p.sampleRate / 6; fc > limit {
		fc = limit
	}
	f := 2 * math.Sin(math.Pi*fc/p.sampleRate)
	q := 2 * (1 - p.resonance*0.95)
	high := in - v.low - q*v.band
	v.band += f * high
	v.low += f * v.band
	out := v.low

	if p.hpfCoef > 0 {
		v.hpOut = p.hpfCoef * (v.hpOut + out - v.hpPrev)
		v.hpPrev = out
		out = v.hpOut
	}

	aenv := v.amp.next()
	if p.gateMode {
		aenv = 0
		if v.gate {
			aenv = 1
		}
		if !v.gate {
			v.amp.reset()
		}
	}
	vel := 1 - p.velAmp + p.velAmp*v.velocity
	return out * aenv * vel
}
