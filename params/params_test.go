package params

import (
	"encoding/json"
	"testing"
)

type recordSender struct {
	ids    []ID
	values []float64
}

func (r *recordSender) SetParam(id ID, v float64) bool {
	r.ids = append(r.ids, id)
	r.values = append(r.values, v)
	return true
}

func TestDescriptorsComplete(t *testing.T) {
	seen := map[string]bool{}
	for id := ID(0); id < Count; id++ {
		d := id.Describe()
		if d.ID != id {
			t.Errorf("%s: ID = %d, want %d", d.Name, d.ID, id)
		}
		if seen[d.Name] {
			t.Errorf("duplicate name %q", d.Name)
		}
		seen[d.Name] = true
		if err := Check(id, d.Default); err != nil {
			t.Errorf("default for %s fails check: %v", d.Name, err)
		}
		if got, ok := ByName(d.Name); !ok || got != id {
			t.Errorf("ByName(%q) = %v, %v", d.Name, got, ok)
		}
	}
}

func TestApplyOrderGroups(t *testing.T) {
	last := GroupOscillator
	for _, id := range All() {
		g := id.Describe().Group
		if g < last {
			t.Fatalf("%s in group %s after group %s", id, g, last)
		}
		last = g
	}
	if LfoTarget > PwmDepth {
		t.Fatalf("lfoTarget must precede pwmDepth")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		id  ID
		v   float64
		bad bool
	}{
		{SawLevel, 0.8, false},
		{SawLevel, 1.2, true},
		{FilterEnvAmount, -1, false},
		{FilterEnvAmount, -1.5, true},
		{PulseWidth, 0.01, true},
		{ChorusMode, 2, false},
		{ChorusMode, 1.5, true},
		{ChorusMode, 4, true},
		{MasterTune, -50, false},
		{FilterEnvAttack, 0.001, false},
		{ID(99), 0, true},
	}
	for _, tt := range tests {
		err := Check(tt.id, tt.v)
		if (err != nil) != tt.bad {
			t.Errorf("Check(%s, %g) = %v, want error %v", tt.id, tt.v, err, tt.bad)
		}
	}
}

func TestUIConversion(t *testing.T) {
	if got := FromUI(SawLevel, 80); got != 0.8 {
		t.Errorf("FromUI(sawLevel, 80) = %g", got)
	}
	if got := FromUI(AmpEnvAttack, 250); got != 0.25 {
		t.Errorf("FromUI(ampEnvAttack, 250) = %g", got)
	}
	if got := FromUI(LfoRate, 4.5); got != 4.5 {
		t.Errorf("FromUI(lfoRate, 4.5) = %g", got)
	}
	if got := Format(FilterEnvDecay, 0.4); got != "400ms" {
		t.Errorf("Format = %q", got)
	}
	if got := Format(ChorusMode, 3); got != "I+II" {
		t.Errorf("Format = %q", got)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := Defaults()
	c := s.Clone()
	c[SawLevel] = 0.1
	if s[SawLevel] == 0.1 {
		t.Fatal("clone shares storage")
	}
	if !s.Complete() {
		t.Fatalf("defaults missing %v", s.Missing())
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := Defaults()
	s[DriftEnabled] = 0
	s[SawLevel] = 0.8

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["driftEnabled"] != false {
		t.Errorf("driftEnabled encoded as %v", raw["driftEnabled"])
	}

	var back Snapshot
	if err := json.Unmarshal([]byte(`{"sawLevel":0.8,"driftEnabled":true,"futureKnob":3}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[SawLevel] != 0.8 || back[DriftEnabled] != 1 {
		t.Errorf("decoded %v", back)
	}
}

func TestControlsClampMirrorSend(t *testing.T) {
	out := &recordSender{}
	c := NewControls(NewMirror(), out)

	var changed []ID
	c.OnChange(func(id ID, v float64) { changed = append(changed, id) })

	if got := c.SetUI(SawLevel, 150); got != 1 {
		t.Errorf("SetUI clamped to %g, want 1", got)
	}
	if v, _ := c.Mirror().Get(SawLevel); v != 1 {
		t.Errorf("mirror = %g", v)
	}
	if len(out.ids) != 1 || out.ids[0] != SawLevel || out.values[0] != 1 {
		t.Errorf("sent %v %v", out.ids, out.values)
	}
	if len(changed) != 1 {
		t.Errorf("onChange calls = %d", len(changed))
	}

	c.Nudge(DriftEnabled, 1)
	if v := c.Mirror().Value(DriftEnabled); v != 0 {
		t.Errorf("drift toggled to %g", v)
	}
	c.Nudge(ChorusMode, 5)
	if v := c.Mirror().Value(ChorusMode); v != 3 {
		t.Errorf("chorus nudged to %g", v)
	}
}

func TestControlsSyncResendsInOrder(t *testing.T) {
	out := &recordSender{}
	c := NewControls(NewMirror(), out)
	c.Reset()
	out.ids = nil
	c.Sync()
	if len(out.ids) != int(Count) {
		t.Fatalf("sync sent %d, want %d", len(out.ids), Count)
	}
	for i, id := range out.ids {
		if id != ID(i) {
			t.Fatalf("sync order[%d] = %s", i, id)
		}
	}
}
