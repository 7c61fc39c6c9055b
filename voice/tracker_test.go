package voice

import (
	"testing"
	"time"
)

func on(n, v byte) [3]byte { return [3]byte{0x90, n, v} }
func off(n byte) [3]byte   { return [3]byte{0x80, n, 0} }

func TestNoteOnThenOff(t *testing.T) {
	tr := NewTracker(6)
	tr.Apply(on(60, 100))
	if !tr.IsSounding(60) || tr.Count() != 1 {
		t.Fatalf("60 not sounding after note on")
	}
	tr.Apply(off(60))
	if tr.IsSounding(60) || tr.Count() != 0 {
		t.Fatalf("60 still sounding after note off")
	}
}

func TestNoteOnVelocityZeroIsOff(t *testing.T) {
	tr := NewTracker(6)
	tr.Apply(on(64, 90))
	tr.Apply(on(64, 0))
	if tr.IsSounding(64) {
		t.Fatal("velocity-0 note on did not release")
	}
}

func TestRepeatNoteOnRefreshesTimestamp(t *testing.T) {
	tr := NewTracker(6)
	now := time.Unix(100, 0)
	tr.SetClock(func() time.Time { return now })

	tr.Apply(on(60, 100))
	now = now.Add(time.Second)
	tr.Apply(on(60, 80))

	if tr.Count() != 1 {
		t.Fatalf("count = %d, want 1", tr.Count())
	}
	ts, ok := tr.Since(60)
	if !ok || !ts.Equal(time.Unix(101, 0)) {
		t.Fatalf("timestamp = %v, %v", ts, ok)
	}
}

func TestOffForSilentNoteIsNoop(t *testing.T) {
	tr := NewTracker(6)
	changes := 0
	tr.OnChange(func() { changes++ })
	tr.Apply(off(50))
	if tr.Count() != 0 || changes != 0 {
		t.Fatalf("count=%d changes=%d", tr.Count(), changes)
	}
}

func TestReleaseAll(t *testing.T) {
	tr := NewTracker(6)
	for _, n := range []byte{67, 60, 64} {
		tr.Apply(on(n, 100))
	}
	offs := tr.ReleaseAll()
	want := [][3]byte{off(60), off(64), off(67)}
	if len(offs) != len(want) {
		t.Fatalf("offs = %v", offs)
	}
	for i := range want {
		if offs[i] != want[i] {
			t.Errorf("off %d = %v, want %v", i, offs[i], want[i])
		}
	}
	if tr.Count() != 0 || len(tr.Sounding()) != 0 {
		t.Fatal("tracker not empty after release all")
	}
	if again := tr.ReleaseAll(); len(again) != 0 {
		t.Fatalf("second release all = %v", again)
	}
}

func TestDisplayCountClamped(t *testing.T) {
	tr := NewTracker(0)
	if tr.Display() != DefaultDisplayCount {
		t.Fatalf("display = %d", tr.Display())
	}
	for n := byte(40); n < 50; n++ {
		tr.Apply(on(n, 100))
	}
	if tr.Count() != 10 || tr.DisplayCount() != 6 {
		t.Fatalf("count=%d display=%d", tr.Count(), tr.DisplayCount())
	}
}

func TestChannelAndOtherMessages(t *testing.T) {
	tr := NewTracker(6)
	tr.Apply([3]byte{0x93, 60, 100}) // note on, channel 4
	tr.Apply([3]byte{0xE0, 0, 64})   // pitch bend: ignored
	tr.Apply([3]byte{0xB0, 1, 127})  // mod wheel: ignored
	if tr.Count() != 1 {
		t.Fatalf("count = %d", tr.Count())
	}
	tr.Apply([3]byte{0xB0, 123, 0})
	if tr.Count() != 0 {
		t.Fatal("all notes off did not clear")
	}
}

func TestReleaseAllKeepsChannel(t *testing.T) {
	tr := NewTracker(6)
	tr.Apply([3]byte{0x93, 60, 100})
	tr.Apply([3]byte{0x9F, 62, 100})
	tr.Apply(on(64, 100))
	offs := tr.ReleaseAll()
	want := [][3]byte{{0x83, 60, 0}, {0x8F, 62, 0}, off(64)}
	if len(offs) != len(want) {
		t.Fatalf("offs = %v", offs)
	}
	for i := range want {
		if offs[i] != want[i] {
			t.Errorf("off %d = %v, want %v", i, offs[i], want[i])
		}
	}
}
