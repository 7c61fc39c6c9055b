package engine

type stage uint8

const (
	stageIdle stage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// envelope is a linear ADSR. Times are in seconds; rates are recomputed
// only when a time changes.
type envelope struct {
	attack, decay, release float64
	sustain                float64

	sampleRate float64
	stage      stage
	level      float64
	step       float64
}

func newEnvelope(sampleRate float64, a, d, s, r float64) envelope {
	return envelope{sampleRate: sampleRate, attack: a, decay: d, sustain: s, release: r}
}

func (e *envelope) perSample(seconds, span float64) float64 {
	n := seconds * e.sampleRate
	if n < 1 {
		n = 1
	}
	return span / n
}

// gateOn restarts from the current level so retriggers do not click.
func (e *envelope) gateOn() {
	e.stage = stageAttack
	e.step = e.perSample(e.attack, 1)
}

func (e *envelope) gateOff() {
	if e.stage == stageIdle {
		return
	}
	e.stage = stageRelease
	e.step = e.perSample(e.release, e.level)
	if e.step <= 0 {
		e.step = 1
	}
}

func (e *envelope) active() bool {
	return e.stage != stageIdle
}

func (e *envelope) next() float64 {
	switch e.stage {
	case stageAttack:
		e.level += e.step
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
			e.step = e.perSample(e.decay, 1-e.sustain)
		}
	case stageDecay:
		e.level -= e.step
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = e.sustain
	case stageRelease:
		e.level -= e.step
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

func (e *envelope) reset() {
	e.stage = stageIdle
	e.level = 0
}
