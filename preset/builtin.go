package preset

import (
	"time"

	"github.com/google/uuid"

	"go-juno/params"
)

// Factory patches. Parameters a patch leaves out take their defaults.
var factory = []struct {
	name   string
	values params.Snapshot
}{
	{"Init", params.Snapshot{
		params.SawLevel: 0.5, params.PulseLevel: 0, params.SubLevel: 0, params.NoiseLevel: 0,
		params.PulseWidth: 0.5, params.PwmDepth: 0, params.Detune: 0, params.DriftEnabled: 1,
		params.LfoRate: 2.0, params.LfoDelay: 0, params.LfoTarget: 0,
		params.FilterCutoff: 0.8, params.FilterResonance: 0, params.FilterEnvAmount: 0, params.FilterKeyTrack: 0,
		params.FilterEnvAttack: 0.01, params.FilterEnvDecay: 0.3, params.FilterEnvSustain: 0.7, params.FilterEnvRelease: 0.5,
		params.AmpEnvAttack: 0.005, params.AmpEnvDecay: 0.3, params.AmpEnvSustain: 0.8, params.AmpEnvRelease: 0.3,
		params.ChorusMode: 0,
	}},
	{"Classic Juno", params.Snapshot{
		params.SawLevel: 0.6, params.PulseLevel: 0.4, params.SubLevel: 0, params.NoiseLevel: 0,
		params.PulseWidth: 0.5, params.PwmDepth: 0.3, params.Detune: 0, params.DriftEnabled: 1,
		params.LfoRate: 4.5, params.LfoDelay: 0, params.LfoTarget: 2,
		params.FilterCutoff: 0.65, params.FilterResonance: 0.4, params.FilterEnvAmount: 0.5, params.FilterKeyTrack: 1,
		params.FilterEnvAttack: 0.01, params.FilterEnvDecay: 0.8, params.FilterEnvSustain: 0.4, params.FilterEnvRelease: 0.5,
		params.AmpEnvAttack: 0.01, params.AmpEnvDecay: 0.5, params.AmpEnvSustain: 0.7, params.AmpEnvRelease: 0.4,
		params.ChorusMode: 2,
	}},
	{"Bass", params.Snapshot{
		params.SawLevel: 0.8, params.PulseLevel: 0.2, params.SubLevel: 0.6, params.NoiseLevel: 0,
		params.PulseWidth: 0.3, params.PwmDepth: 0, params.Detune: 0, params.DriftEnabled: 1,
		params.LfoRate: 0.5, params.LfoDelay: 0, params.LfoTarget: 0,
		params.FilterCutoff: 0.4, params.FilterResonance: 0.6, params.FilterEnvAmount: 0.8, params.FilterKeyTrack: 2,
		params.FilterEnvAttack: 0.001, params.FilterEnvDecay: 0.4, params.FilterEnvSustain: 0.1, params.FilterEnvRelease: 0.2,
		params.AmpEnvAttack: 0.001, params.AmpEnvDecay: 0.3, params.AmpEnvSustain: 0.9, params.AmpEnvRelease: 0.1,
		params.ChorusMode: 0,
	}},
	{"Pad", params.Snapshot{
		params.SawLevel: 0.5, params.PulseLevel: 0.5, params.SubLevel: 0, params.NoiseLevel: 0.05,
		params.PulseWidth: 0.6, params.PwmDepth: 0.5, params.Detune: 3.0, params.DriftEnabled: 1,
		params.LfoRate: 0.3, params.LfoDelay: 0, params.LfoTarget: 2,
		params.FilterCutoff: 0.7, params.FilterResonance: 0.3, params.FilterEnvAmount: 0.3, params.FilterKeyTrack: 0,
		params.FilterEnvAttack: 1.5, params.FilterEnvDecay: 2.0, params.FilterEnvSustain: 0.8, params.FilterEnvRelease: 2.5,
		params.AmpEnvAttack: 1.2, params.AmpEnvDecay: 1.0, params.AmpEnvSustain: 0.9, params.AmpEnvRelease: 2.0,
		params.ChorusMode: 3,
	}},
	{"Lead", params.Snapshot{
		params.SawLevel: 1.0, params.PulseLevel: 0, params.SubLevel: 0, params.NoiseLevel: 0,
		params.PulseWidth: 0.5, params.PwmDepth: 0, params.Detune: 0, params.DriftEnabled: 1,
		params.LfoRate: 5.0, params.LfoDelay: 0, params.LfoTarget: 1,
		params.FilterCutoff: 0.75, params.FilterResonance: 0.5, params.FilterEnvAmount: 0.7, params.FilterKeyTrack: 2,
		params.FilterEnvAttack: 0.005, params.FilterEnvDecay: 0.2, params.FilterEnvSustain: 0.5, params.FilterEnvRelease: 0.3,
		params.AmpEnvAttack: 0.002, params.AmpEnvDecay: 0.1, params.AmpEnvSustain: 1.0, params.AmpEnvRelease: 0.1,
		params.ChorusMode: 1,
	}},
}

// Builtins returns a fresh table holding the factory patches.
func Builtins() Table {
	now := time.Now().UTC()
	t := make(Table, len(factory))
	for _, f := range factory {
		s := f.values.Clone()
		s.Fill(params.Defaults())
		t[f.name] = Record{
			ID:        uuid.New(),
			Name:      f.name,
			Builtin:   true,
			UpdatedAt: now,
			Params:    s,
		}
	}
	return t
}
