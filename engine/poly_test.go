package engine

import (
	"math"
	"testing"
)

func newPoly(t *testing.T) *Poly {
	t.Helper()
	e, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e.(*Poly)
}

func peak(buf []float32) float64 {
	var m float64
	for _, s := range buf {
		m = math.Max(m, math.Abs(float64(s)))
	}
	return m
}

func TestNewRejectsBadRates(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1), 1e7} {
		if _, err := New(sr); err == nil {
			t.Errorf("New(%g) succeeded", sr)
		}
	}
}

func TestSilentWithoutNotes(t *testing.T) {
	p := newPoly(t)
	l, r := make([]float32, 256), make([]float32, 256)
	p.Render(l, r, 256)
	if peak(l) != 0 || peak(r) != 0 {
		t.Fatal("output without notes")
	}
}

func TestNoteOnProducesSoundAndReleases(t *testing.T) {
	p := newPoly(t)
	p.SetFilterCutoff(1)
	p.SetAmpEnvRelease(0.01)
	l, r := make([]float32, 4800), make([]float32, 4800)

	p.HandleNoteEvent(0x90, 60, 100)
	p.Render(l, r, len(l))
	if peak(l) == 0 {
		t.Fatal("note produced silence")
	}
	if p.SoundingVoices() != 1 {
		t.Fatalf("sounding = %d", p.SoundingVoices())
	}

	p.HandleNoteEvent(0x80, 60, 0)
	p.Render(l, r, len(l))
	p.Render(l, r, len(l))
	if p.SoundingVoices() != 0 {
		t.Fatal("voice still sounding after release")
	}
	if peak(l[len(l)-100:]) != 0 {
		t.Fatal("tail not silent")
	}
}

func TestVelocityZeroIsNoteOff(t *testing.T) {
	p := newPoly(t)
	p.HandleNoteEvent(0x90, 60, 100)
	p.HandleNoteEvent(0x90, 60, 0)
	for i := range p.voices {
		if p.voices[i].gate {
			t.Fatal("voice still gated")
		}
	}
}

func TestVoiceStealing(t *testing.T) {
	p := newPoly(t)
	for n := 0; n < Voices+2; n++ {
		p.HandleNoteEvent(0x90, byte(60+n), 100)
	}
	if p.SoundingVoices() != Voices {
		t.Fatalf("sounding = %d", p.SoundingVoices())
	}
	held := map[int]bool{}
	for i := range p.voices {
		held[p.voices[i].note] = true
	}
	if held[60] || held[61] {
		t.Fatal("oldest notes were not stolen")
	}
	if !held[67] {
		t.Fatal("newest note missing")
	}
}

func TestReuseModeRetriggersSameVoice(t *testing.T) {
	p := newPoly(t)
	p.SetVoiceAllocationMode(1)
	p.HandleNoteEvent(0x90, 60, 100)
	p.HandleNoteEvent(0x80, 60, 0)
	p.HandleNoteEvent(0x90, 60, 100)
	if p.SoundingVoices() != 1 {
		t.Fatalf("sounding = %d", p.SoundingVoices())
	}
}

func TestAllNotesOff(t *testing.T) {
	p := newPoly(t)
	p.HandleNoteEvent(0x90, 60, 100)
	p.HandleNoteEvent(0x90, 64, 100)
	p.HandleNoteEvent(0xB0, 123, 0)
	for i := range p.voices {
		if p.voices[i].gate {
			t.Fatal("gate left open")
		}
	}
}

func TestSettersClamp(t *testing.T) {
	p := newPoly(t)
	p.SetSawLevel(5)
	p.SetPulseWidth(0)
	p.SetDcoRange(9)
	p.SetChorusMode(-1)
	p.SetFilterCutoff(float32(math.NaN()))
	if p.saw != 1 || p.pulseWidth != 0.05 || p.rangeMul != 2 || p.chorusMode != 0 || p.cutoff != 0 {
		t.Fatalf("clamp failed: saw=%g pw=%g range=%g chorus=%d cutoff=%g",
			p.saw, p.pulseWidth, p.rangeMul, p.chorusMode, p.cutoff)
	}
}

func TestChorusWidensStereo(t *testing.T) {
	p := newPoly(t)
	p.SetFilterCutoff(1)
	p.SetChorusMode(2)
	l, r := make([]float32, 4800), make([]float32, 4800)
	p.HandleNoteEvent(0x90, 57, 127)
	p.Render(l, r, len(l))
	differ := false
	for i := range l {
		if l[i] != r[i] {
			differ = true
			break
		}
	}
	if !differ {
		t.Fatal("chorus left channels identical")
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	p := newPoly(t)
	l, r := make([]float32, 128), make([]float32, 128)
	p.HandleNoteEvent(0x90, 60, 100)
	allocs := testing.AllocsPerRun(50, func() {
		p.Render(l, r, 128)
	})
	if allocs != 0 {
		t.Fatalf("Render allocated %v times", allocs)
	}
}
