package bridge

import (
	"fmt"

	"go-juno/params"
)

// Engine is the sound generator. All methods are called from the render
// context only and must not block.
type Engine interface {
	HandleNoteEvent(status, data1, data2 byte)
	Render(left, right []float32, frames int)

	SetDcoRange(v int)
	SetLfoTarget(v int)
	SetSawLevel(v float32)
	SetPulseLevel(v float32)
	SetSubLevel(v float32)
	SetNoiseLevel(v float32)
	SetPulseWidth(v float32)
	SetPwmDepth(v float32)
	SetDetune(v float32)
	SetDriftEnabled(v bool)

	SetLfoRate(v float32)
	SetLfoDelay(v float32)

	SetFilterHpfMode(v int)
	SetFilterCutoff(v float32)
	SetFilterResonance(v float32)
	SetFilterEnvAmount(v float32)
	SetFilterLfoAmount(v float32)
	SetFilterKeyTrack(v int)

	SetFilterEnvAttack(v float32)
	SetFilterEnvDecay(v float32)
	SetFilterEnvSustain(v float32)
	SetFilterEnvRelease(v float32)

	SetAmpEnvAttack(v float32)
	SetAmpEnvDecay(v float32)
	SetAmpEnvSustain(v float32)
	SetAmpEnvRelease(v float32)

	SetChorusMode(v int)

	SetPitchBendRange(v float32)
	SetPortamentoTime(v float32)
	SetModWheel(v float32)
	SetVcaMode(v int)
	SetVcaLevel(v float32)
	SetFilterEnvPolarity(v int)
	SetMasterTune(v float32)
	SetVelocityToFilter(v float32)
	SetVelocityToAmp(v float32)
	SetVoiceAllocationMode(v int)
}

// Constructor builds an engine for the given sample rate. It runs off the
// render context and may be slow.
type Constructor func(sampleRate float64) (Engine, error)

// ConstructionError reports a failed engine build.
type ConstructionError struct {
	SampleRate float64
	Err        error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("engine construction at %g Hz: %v", e.SampleRate, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

type setter func(Engine, float64)

func f32(fn func(Engine, float32)) setter {
	return func(e Engine, v float64) { fn(e, float32(v)) }
}

func i32(fn func(Engine, int)) setter {
	return func(e Engine, v float64) { fn(e, int(v)) }
}

func flag(fn func(Engine, bool)) setter {
	return func(e Engine, v float64) { fn(e, v != 0) }
}

// setters maps every parameter to its engine entry point.
var setters = [params.Count]setter{
	params.DcoRange:     i32(Engine.SetDcoRange),
	params.LfoTarget:    i32(Engine.SetLfoTarget),
	params.SawLevel:     f32(Engine.SetSawLevel),
	params.PulseLevel:   f32(Engine.SetPulseLevel),
	params.SubLevel:     f32(Engine.SetSubLevel),
	params.NoiseLevel:   f32(Engine.SetNoiseLevel),
	params.PulseWidth:   f32(Engine.SetPulseWidth),
	params.PwmDepth:     f32(Engine.SetPwmDepth),
	params.Detune:       f32(Engine.SetDetune),
	params.DriftEnabled: flag(Engine.SetDriftEnabled),

	params.LfoRate:  f32(Engine.SetLfoRate),
	params.LfoDelay: f32(Engine.SetLfoDelay),

	params.FilterHpfMode:   i32(Engine.SetFilterHpfMode),
	params.FilterCutoff:    f32(Engine.SetFilterCutoff),
	params.FilterResonance: f32(Engine.SetFilterResonance),
	params.FilterEnvAmount: f32(Engine.SetFilterEnvAmount),
	params.FilterLfoAmount: f32(Engine.SetFilterLfoAmount),
	params.FilterKeyTrack:  i32(Engine.SetFilterKeyTrack),

	params.FilterEnvAttack:  f32(Engine.SetFilterEnvAttack),
	params.FilterEnvDecay:   f32(Engine.SetFilterEnvDecay),
	params.FilterEnvSustain: f32(Engine.SetFilterEnvSustain),
	params.FilterEnvRelease: f32(Engine.SetFilterEnvRelease),

	params.AmpEnvAttack:  f32(Engine.SetAmpEnvAttack),
	params.AmpEnvDecay:   f32(Engine.SetAmpEnvDecay),
	params.AmpEnvSustain: f32(Engine.SetAmpEnvSustain),
	params.AmpEnvRelease: f32(Engine.SetAmpEnvRelease),

	params.ChorusMode: i32(Engine.SetChorusMode),

	params.PitchBendRange:      f32(Engine.SetPitchBendRange),
	params.PortamentoTime:      f32(Engine.SetPortamentoTime),
	params.ModWheel:            f32(Engine.SetModWheel),
	params.VcaMode:             i32(Engine.SetVcaMode),
	params.VcaLevel:            f32(Engine.SetVcaLevel),
	params.FilterEnvPolarity:   i32(Engine.SetFilterEnvPolarity),
	params.MasterTune:          f32(Engine.SetMasterTune),
	params.VelocityToFilter:    f32(Engine.SetVelocityToFilter),
	params.VelocityToAmp:       f32(Engine.SetVelocityToAmp),
	params.VoiceAllocationMode: i32(Engine.SetVoiceAllocationMode),
}

func init() {
	for i, s := range setters {
		if s == nil {
			panic(fmt.Sprintf("bridge: no engine setter for %s", params.ID(i)))
		}
	}
}
