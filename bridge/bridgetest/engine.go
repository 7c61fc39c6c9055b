// Package bridgetest provides an Engine that records every call, for tests.
package bridgetest

import (
	"sync"

	"go-juno/bridge"
	"go-juno/params"
)

// ParamCall is one setter invocation, value widened back to float64.
type ParamCall struct {
	ID    params.ID
	Value float64
}

// RecordingEngine implements bridge.Engine. Render writes Level to every
// frame.
type RecordingEngine struct {
	Level float32

	mu     sync.Mutex
	notes  [][3]byte
	params []ParamCall
	frames []int
}

var _ bridge.Engine = (*RecordingEngine)(nil)

func New() *RecordingEngine {
	return &RecordingEngine{Level: 0.5}
}

// Constructor returns a bridge.Constructor that hands out e.
func (e *RecordingEngine) Constructor() bridge.Constructor {
	return func(float64) (bridge.Engine, error) { return e, nil }
}

func (e *RecordingEngine) Notes() [][3]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][3]byte(nil), e.notes...)
}

func (e *RecordingEngine) Params() []ParamCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ParamCall(nil), e.params...)
}

// RenderCalls returns the frame count of each Render call.
func (e *RecordingEngine) RenderCalls() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.frames...)
}

func (e *RecordingEngine) HandleNoteEvent(status, data1, data2 byte) {
	e.mu.Lock()
	e.notes = append(e.notes, [3]byte{status, data1, data2})
	e.mu.Unlock()
}

func (e *RecordingEngine) Render(left, right []float32, frames int) {
	for i := 0; i < frames; i++ {
		left[i] = e.Level
		right[i] = -e.Level
	}
	e.mu.Lock()
	e.frames = append(e.frames, frames)
	e.mu.Unlock()
}

func (e *RecordingEngine) set(id params.ID, v float64) {
	e.mu.Lock()
	e.params = append(e.params, ParamCall{ID: id, Value: v})
	e.mu.Unlock()
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (e *RecordingEngine) SetDcoRange(v int)            { e.set(params.DcoRange, float64(v)) }
func (e *RecordingEngine) SetLfoTarget(v int)           { e.set(params.LfoTarget, float64(v)) }
func (e *RecordingEngine) SetSawLevel(v float32)        { e.set(params.SawLevel, float64(v)) }
func (e *RecordingEngine) SetPulseLevel(v float32)      { e.set(params.PulseLevel, float64(v)) }
func (e *RecordingEngine) SetSubLevel(v float32)        { e.set(params.SubLevel, float64(v)) }
func (e *RecordingEngine) SetNoiseLevel(v float32)      { e.set(params.NoiseLevel, float64(v)) }
func (e *RecordingEngine) SetPulseWidth(v float32)      { e.set(params.PulseWidth, float64(v)) }
func (e *RecordingEngine) SetPwmDepth(v float32)        { e.set(params.PwmDepth, float64(v)) }
func (e *RecordingEngine) SetDetune(v float32)          { e.set(params.Detune, float64(v)) }
func (e *RecordingEngine) SetDriftEnabled(v bool)       { e.set(params.DriftEnabled, b2f(v)) }
func (e *RecordingEngine) SetLfoRate(v float32)         { e.set(params.LfoRate, float64(v)) }
func (e *RecordingEngine) SetLfoDelay(v float32)        { e.set(params.LfoDelay, float64(v)) }
func (e *RecordingEngine) SetFilterHpfMode(v int)       { e.set(params.FilterHpfMode, float64(v)) }
func (e *RecordingEngine) SetFilterCutoff(v float32)    { e.set(params.FilterCutoff, float64(v)) }
func (e *RecordingEngine) SetFilterResonance(v float32) { e.set(params.FilterResonance, float64(v)) }
func (e *RecordingEngine) SetFilterEnvAmount(v float32) { e.set(params.FilterEnvAmount, float64(v)) }
func (e *RecordingEngine) SetFilterLfoAmount(v float32) { e.set(params.FilterLfoAmount, float64(v)) }
func (e *RecordingEngine) SetFilterKeyTrack(v int)      { e.set(params.FilterKeyTrack, float64(v)) }
func (e *RecordingEngine) SetFilterEnvAttack(v float32) { e.set(params.FilterEnvAttack, float64(v)) }
func (e *RecordingEngine) SetFilterEnvDecay(v float32)  { e.set(params.FilterEnvDecay, float64(v)) }
func (e *RecordingEngine) SetFilterEnvSustain(v float32) {
	e.set(params.FilterEnvSustain, float64(v))
}
func (e *RecordingEngine) SetFilterEnvRelease(v float32) {
	e.set(params.FilterEnvRelease, float64(v))
}
func (e *RecordingEngine) SetAmpEnvAttack(v float32)   { e.set(params.AmpEnvAttack, float64(v)) }
func (e *RecordingEngine) SetAmpEnvDecay(v float32)    { e.set(params.AmpEnvDecay, float64(v)) }
func (e *RecordingEngine) SetAmpEnvSustain(v float32)  { e.set(params.AmpEnvSustain, float64(v)) }
func (e *RecordingEngine) SetAmpEnvRelease(v float32)  { e.set(params.AmpEnvRelease, float64(v)) }
func (e *RecordingEngine) SetChorusMode(v int)         { e.set(params.ChorusMode, float64(v)) }
func (e *RecordingEngine) SetPitchBendRange(v float32) { e.set(params.PitchBendRange, float64(v)) }
func (e *RecordingEngine) SetPortamentoTime(v float32) { e.set(params.PortamentoTime, float64(v)) }
func (e *RecordingEngine) SetModWheel(v float32)       { e.set(params.ModWheel, float64(v)) }
func (e *RecordingEngine) SetVcaMode(v int)            { e.set(params.VcaMode, float64(v)) }
func (e *RecordingEngine) SetVcaLevel(v float32)       { e.set(params.VcaLevel, float64(v)) }
func (e *RecordingEngine) SetFilterEnvPolarity(v int)  { e.set(params.FilterEnvPolarity, float64(v)) }
func (e *RecordingEngine) SetMasterTune(v float32)     { e.set(params.MasterTune, float64(v)) }
func (e *RecordingEngine) SetVelocityToFilter(v float32) {
	e.set(params.VelocityToFilter, float64(v))
}
func (e *RecordingEngine) SetVelocityToAmp(v float32) { e.set(params.VelocityToAmp, float64(v)) }
func (e *RecordingEngine) SetVoiceAllocationMode(v int) {
	e.set(params.VoiceAllocationMode, float64(v))
}
