package engine

import "math"

func clampf(v float32, lo, hi float64) float64 {
	f := float64(v)
	if math.IsNaN(f) {
		return lo
	}
	return math.Max(lo, math.Min(hi, f))
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *Poly) envs(fn func(amp, filter *envelope)) {
	for i := range p.voices {
		fn(&p.voices[i].amp, &p.voices[i].filter)
	}
}

func (p *Poly) SetDcoRange(v int) {
	p.rangeMul = [3]float64{0.5, 1, 2}[clampi(v, 0, 2)]
}

func (p *Poly) SetLfoTarget(v int)        { p.lfoTarget = clampi(v, 0, 3) }
func (p *Poly) SetSawLevel(v float32)     { p.saw = clampf(v, 0, 1) }
func (p *Poly) SetPulseLevel(v float32)   { p.pulse = clampf(v, 0, 1) }
func (p *Poly) SetSubLevel(v float32)     { p.subLevel = clampf(v, 0, 1) }
func (p *Poly) SetNoiseLevel(v float32)   { p.noiseLevel = clampf(v, 0, 1) }
func (p *Poly) SetPulseWidth(v float32)   { p.pulseWidth = clampf(v, 0.05, 0.95) }
func (p *Poly) SetPwmDepth(v float32)     { p.pwmDepth = clampf(v, 0, 1) }
func (p *Poly) SetDetune(v float32)       { p.detune = clampf(v, -50, 50) }
func (p *Poly) SetDriftEnabled(v bool)    { p.drift = v }
func (p *Poly) SetLfoRate(v float32)      { p.lfoRate = clampf(v, 0.1, 30) }
func (p *Poly) SetLfoDelay(v float32)     { p.lfoDelay = clampf(v, 0, 3) }
func (p *Poly) SetFilterCutoff(v float32) { p.cutoff = clampf(v, 0, 1) }

// SetFilterHpfMode picks a fixed one-pole high-pass corner; 0 bypasses it.
func (p *Poly) SetFilterHpfMode(v int) {
	corner := [4]float64{0, 120, 250, 600}[clampi(v, 0, 3)]
	if corner == 0 {
		p.hpfCoef = 0
		return
	}
	rc := 1 / (2 * math.Pi * corner)
	p.hpfCoef = rc / (rc + 1/p.sampleRate)
}

func (p *Poly) SetFilterResonance(v float32) { p.resonance = clampf(v, 0, 1) }
func (p *Poly) SetFilterEnvAmount(v float32) { p.envAmount = clampf(v, -1, 1) }
func (p *Poly) SetFilterLfoAmount(v float32) { p.filterLfo = clampf(v, 0, 1) }

func (p *Poly) SetFilterKeyTrack(v int) {
	p.keyTrack = [3]float64{0, 0.5, 1}[clampi(v, 0, 2)]
}

func (p *Poly) SetFilterEnvAttack(v float32) {
	p.envs(func(_, f *envelope) { f.attack = clampf(v, 0.001, 3) })
}

func (p *Poly) SetFilterEnvDecay(v float32) {
	p.envs(func(_, f *envelope) { f.decay = clampf(v, 0.002, 12) })
}

func (p *Poly) SetFilterEnvSustain(v float32) {
	p.envs(func(_, f *envelope) { f.sustain = clampf(v, 0, 1) })
}

func (p *Poly) SetFilterEnvRelease(v float32) {
	p.envs(func(_, f *envelope) { f.release = clampf(v, 0.002, 12) })
}

func (p *Poly) SetAmpEnvAttack(v float32) {
	p.envs(func(a, _ *envelope) { a.attack = clampf(v, 0.001, 3) })
}

func (p *Poly) SetAmpEnvDecay(v float32) {
	p.envs(func(a, _ *envelope) { a.decay = clampf(v, 0.002, 12) })
}

func (p *Poly) SetAmpEnvSustain(v float32) {
	p.envs(func(a, _ *envelope) { a.sustain = clampf(v, 0, 1) })
}

func (p *Poly) SetAmpEnvRelease(v float32) {
	p.envs(func(a, _ *envelope) { a.release = clampf(v, 0.002, 12) })
}

func (p *Poly) SetChorusMode(v int)         { p.chorusMode = clampi(v, 0, 3) }
func (p *Poly) SetPitchBendRange(v float32) { p.bendRange = clampf(v, 0, 12) }

// SetPortamentoTime stores a one-pole glide coefficient.
func (p *Poly) SetPortamentoTime(v float32) {
	t := clampf(v, 0, 10)
	if t == 0 {
		p.porta = 0
		return
	}
	p.porta = 1 - math.Exp(-1/(t*p.sampleRate))
}

func (p *Poly) SetModWheel(v float32)         { p.modWheel = clampf(v, 0, 1) }
func (p *Poly) SetVcaMode(v int)              { p.gateMode = clampi(v, 0, 1) == 1 }
func (p *Poly) SetVcaLevel(v float32)         { p.level = clampf(v, 0, 1) }
func (p *Poly) SetFilterEnvPolarity(v int)    { p.envInvert = clampi(v, 0, 1) == 1 }
func (p *Poly) SetMasterTune(v float32)       { p.tune = clampf(v, -50, 50) }
func (p *Poly) SetVelocityToFilter(v float32) { p.velFilter = clampf(v, 0, 1) }
func (p *Poly) SetVelocityToAmp(v float32)    { p.velAmp = clampf(v, 0, 1) }
func (p *Poly) SetVoiceAllocationMode(v int)  { p.reuse = clampi(v, 0, 1) == 1 }
