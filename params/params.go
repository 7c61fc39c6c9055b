package params

import (
	"fmt"
	"math"
)

// ID identifies one synth parameter. IDs are declared in apply order:
// a parameter that gates others comes before the parameters it gates.
type ID int

const (
	// Oscillator
	DcoRange ID = iota
	LfoTarget
	SawLevel
	PulseLevel
	SubLevel
	NoiseLevel
	PulseWidth
	PwmDepth
	Detune
	DriftEnabled

	// LFO
	LfoRate
	LfoDelay

	// Filter
	FilterHpfMode
	FilterCutoff
	FilterResonance
	FilterEnvAmount
	FilterLfoAmount
	FilterKeyTrack

	// Filter envelope
	FilterEnvAttack
	FilterEnvDecay
	FilterEnvSustain
	FilterEnvRelease

	// Amp envelope
	AmpEnvAttack
	AmpEnvDecay
	AmpEnvSustain
	AmpEnvRelease

	// Chorus
	ChorusMode

	// Performance / voice
	PitchBendRange
	PortamentoTime
	ModWheel
	VcaMode
	VcaLevel
	FilterEnvPolarity
	MasterTune
	VelocityToFilter
	VelocityToAmp
	VoiceAllocationMode

	Count
)

// Kind is the value type the engine setter takes.
type Kind int

const (
	Float Kind = iota
	Int
	Bool
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Group is a section of the synth panel.
type Group int

const (
	GroupOscillator Group = iota
	GroupLFO
	GroupFilter
	GroupFilterEnv
	GroupAmpEnv
	GroupChorus
	GroupPerformance
)

var groupNames = [...]string{"DCO", "LFO", "VCF", "VCF ENV", "VCA ENV", "CHORUS", "PERFORM"}

func (g Group) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return "?"
	}
	return groupNames[g]
}

// Descriptor describes one parameter. Min, Max, Default and Step are in
// engine units; UIScale converts engine units into panel units (percent,
// milliseconds) for display and entry.
type Descriptor struct {
	ID      ID
	Name    string
	Label   string
	Group   Group
	Kind    Kind
	Default float64
	Min     float64
	Max     float64
	Step    float64
	UIScale float64
	Unit    string
	Choices []string // Int parameters with named positions
}

const (
	pct = 100
	ms  = 1000
)

var descriptors = [Count]Descriptor{
	DcoRange:     {Name: "dcoRange", Label: "Range", Group: GroupOscillator, Kind: Int, Default: 1, Min: 0, Max: 2, Step: 1, UIScale: 1, Choices: []string{"16'", "8'", "4'"}},
	LfoTarget:    {Name: "lfoTarget", Label: "LFO Target", Group: GroupOscillator, Kind: Int, Default: 0, Min: 0, Max: 3, Step: 1, UIScale: 1, Choices: []string{"Off", "Pitch", "PWM", "Both"}},
	SawLevel:     {Name: "sawLevel", Label: "Saw", Group: GroupOscillator, Kind: Float, Default: 0.5, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	PulseLevel:   {Name: "pulseLevel", Label: "Pulse", Group: GroupOscillator, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	SubLevel:     {Name: "subLevel", Label: "Sub", Group: GroupOscillator, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	NoiseLevel:   {Name: "noiseLevel", Label: "Noise", Group: GroupOscillator, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	PulseWidth:   {Name: "pulseWidth", Label: "PW", Group: GroupOscillator, Kind: Float, Default: 0.5, Min: 0.05, Max: 0.95, Step: 0.01, UIScale: pct, Unit: "%"},
	PwmDepth:     {Name: "pwmDepth", Label: "PWM", Group: GroupOscillator, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	Detune:       {Name: "detune", Label: "Detune", Group: GroupOscillator, Kind: Float, Default: 0, Min: -50, Max: 50, Step: 0.5, UIScale: 1, Unit: "ct"},
	DriftEnabled: {Name: "driftEnabled", Label: "Drift", Group: GroupOscillator, Kind: Bool, Default: 1, Min: 0, Max: 1, Step: 1, UIScale: 1},

	LfoRate:  {Name: "lfoRate", Label: "Rate", Group: GroupLFO, Kind: Float, Default: 2, Min: 0.1, Max: 30, Step: 0.1, UIScale: 1, Unit: "Hz"},
	LfoDelay: {Name: "lfoDelay", Label: "Delay", Group: GroupLFO, Kind: Float, Default: 0, Min: 0, Max: 3, Step: 0.1, UIScale: 1, Unit: "s"},

	FilterHpfMode:   {Name: "filterHpfMode", Label: "HPF", Group: GroupFilter, Kind: Int, Default: 0, Min: 0, Max: 3, Step: 1, UIScale: 1, Choices: []string{"Off", "1", "2", "3"}},
	FilterCutoff:    {Name: "filterCutoff", Label: "Cutoff", Group: GroupFilter, Kind: Float, Default: 0.5, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterResonance: {Name: "filterResonance", Label: "Res", Group: GroupFilter, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterEnvAmount: {Name: "filterEnvAmount", Label: "Env", Group: GroupFilter, Kind: Float, Default: 0, Min: -1, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterLfoAmount: {Name: "filterLfoAmount", Label: "LFO", Group: GroupFilter, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterKeyTrack:  {Name: "filterKeyTrack", Label: "Kybd", Group: GroupFilter, Kind: Int, Default: 0, Min: 0, Max: 2, Step: 1, UIScale: 1, Choices: []string{"Off", "Half", "Full"}},

	FilterEnvAttack:  {Name: "filterEnvAttack", Label: "A", Group: GroupFilterEnv, Kind: Float, Default: 0.01, Min: 0.001, Max: 3, Step: 0.01, UIScale: ms, Unit: "ms"},
	FilterEnvDecay:   {Name: "filterEnvDecay", Label: "D", Group: GroupFilterEnv, Kind: Float, Default: 0.3, Min: 0.002, Max: 12, Step: 0.05, UIScale: ms, Unit: "ms"},
	FilterEnvSustain: {Name: "filterEnvSustain", Label: "S", Group: GroupFilterEnv, Kind: Float, Default: 0.7, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterEnvRelease: {Name: "filterEnvRelease", Label: "R", Group: GroupFilterEnv, Kind: Float, Default: 0.5, Min: 0.002, Max: 12, Step: 0.05, UIScale: ms, Unit: "ms"},

	AmpEnvAttack:  {Name: "ampEnvAttack", Label: "A", Group: GroupAmpEnv, Kind: Float, Default: 0.01, Min: 0.001, Max: 3, Step: 0.01, UIScale: ms, Unit: "ms"},
	AmpEnvDecay:   {Name: "ampEnvDecay", Label: "D", Group: GroupAmpEnv, Kind: Float, Default: 0.3, Min: 0.002, Max: 12, Step: 0.05, UIScale: ms, Unit: "ms"},
	AmpEnvSustain: {Name: "ampEnvSustain", Label: "S", Group: GroupAmpEnv, Kind: Float, Default: 0.7, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	AmpEnvRelease: {Name: "ampEnvRelease", Label: "R", Group: GroupAmpEnv, Kind: Float, Default: 0.5, Min: 0.002, Max: 12, Step: 0.05, UIScale: ms, Unit: "ms"},

	ChorusMode: {Name: "chorusMode", Label: "Chorus", Group: GroupChorus, Kind: Int, Default: 0, Min: 0, Max: 3, Step: 1, UIScale: 1, Choices: []string{"Off", "I", "II", "I+II"}},

	PitchBendRange:      {Name: "pitchBendRange", Label: "Bend", Group: GroupPerformance, Kind: Float, Default: 2, Min: 0, Max: 12, Step: 1, UIScale: 1, Unit: "st"},
	PortamentoTime:      {Name: "portamentoTime", Label: "Porta", Group: GroupPerformance, Kind: Float, Default: 0, Min: 0, Max: 10, Step: 0.05, UIScale: 1, Unit: "s"},
	ModWheel:            {Name: "modWheel", Label: "Mod", Group: GroupPerformance, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	VcaMode:             {Name: "vcaMode", Label: "VCA", Group: GroupPerformance, Kind: Int, Default: 0, Min: 0, Max: 1, Step: 1, UIScale: 1, Choices: []string{"Env", "Gate"}},
	VcaLevel:            {Name: "vcaLevel", Label: "Level", Group: GroupPerformance, Kind: Float, Default: 0.8, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	FilterEnvPolarity:   {Name: "filterEnvPolarity", Label: "Env Pol", Group: GroupPerformance, Kind: Int, Default: 0, Min: 0, Max: 1, Step: 1, UIScale: 1, Choices: []string{"Norm", "Inv"}},
	MasterTune:          {Name: "masterTune", Label: "Tune", Group: GroupPerformance, Kind: Float, Default: 0, Min: -50, Max: 50, Step: 1, UIScale: 1, Unit: "ct"},
	VelocityToFilter:    {Name: "velocityToFilter", Label: "Vel>VCF", Group: GroupPerformance, Kind: Float, Default: 0, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	VelocityToAmp:       {Name: "velocityToAmp", Label: "Vel>VCA", Group: GroupPerformance, Kind: Float, Default: 1, Min: 0, Max: 1, Step: 0.01, UIScale: pct, Unit: "%"},
	VoiceAllocationMode: {Name: "voiceAllocationMode", Label: "Assign", Group: GroupPerformance, Kind: Int, Default: 0, Min: 0, Max: 1, Step: 1, UIScale: 1, Choices: []string{"Rotate", "Reuse"}},
}

var byName = make(map[string]ID, Count)

func init() {
	for i := range descriptors {
		d := &descriptors[i]
		if d.Name == "" {
			panic(fmt.Sprintf("params: descriptor %d missing", i))
		}
		d.ID = ID(i)
		byName[d.Name] = ID(i)
	}
}

// Valid reports whether id names a known parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

// Describe returns the descriptor for id.
func (id ID) Describe() Descriptor {
	if !id.Valid() {
		return Descriptor{ID: id, Name: fmt.Sprintf("param(%d)", int(id))}
	}
	return descriptors[id]
}

func (id ID) String() string {
	return id.Describe().Name
}

// ByName looks up a parameter by its wire name (e.g. "sawLevel").
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns every parameter in apply order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// InGroup returns the parameters of one panel section in apply order.
func InGroup(g Group) []ID {
	var ids []ID
	for _, d := range descriptors {
		if d.Group == g {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Clamp pins v to the parameter's range and rounds Int and Bool values.
func Clamp(id ID, v float64) float64 {
	d := id.Describe()
	if math.IsNaN(v) {
		return d.Default
	}
	if d.Kind != Float {
		v = math.Round(v)
	}
	return math.Max(d.Min, math.Min(d.Max, v))
}

// FromUI converts a panel value (percent, milliseconds) into engine units.
func FromUI(id ID, ui float64) float64 {
	d := id.Describe()
	if d.UIScale == 0 {
		return ui
	}
	return ui / d.UIScale
}

// ToUI converts an engine value into panel units.
func ToUI(id ID, v float64) float64 {
	d := id.Describe()
	if d.UIScale == 0 {
		return v
	}
	return v * d.UIScale
}

// Format renders an engine value the way the panel shows it.
func Format(id ID, v float64) string {
	d := id.Describe()
	switch d.Kind {
	case Bool:
		if v != 0 {
			return "on"
		}
		return "off"
	case Int:
		i := int(math.Round(v))
		if i >= 0 && i < len(d.Choices) {
			return d.Choices[i]
		}
		return fmt.Sprintf("%d", i)
	}
	ui := ToUI(id, v)
	switch d.Unit {
	case "%", "ms":
		return fmt.Sprintf("%.0f%s", ui, d.Unit)
	case "":
		return fmt.Sprintf("%.2f", ui)
	}
	return fmt.Sprintf("%.1f%s", ui, d.Unit)
}
