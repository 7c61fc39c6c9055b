package midi

import (
	"testing"
	"time"
)

type recordDispatcher struct {
	msgs []Message
}

func (d *recordDispatcher) Dispatch(source string, msg Message) bool {
	d.msgs = append(d.msgs, msg)
	return true
}

func TestVirtualKeyMapping(t *testing.T) {
	out := &recordDispatcher{}
	vk := NewVirtualKeyboard(out, time.Second)

	vk.Press('z')
	vk.Press('/')
	if vk.Press('q') {
		t.Fatal("unmapped key played")
	}
	want := []Message{{0x90, 48, 100}, {0x90, 64, 100}}
	if len(out.msgs) != 2 || out.msgs[0] != want[0] || out.msgs[1] != want[1] {
		t.Fatalf("sent %v", out.msgs)
	}
}

func TestVirtualRepeatPressExtendsHold(t *testing.T) {
	out := &recordDispatcher{}
	vk := NewVirtualKeyboard(out, 100*time.Millisecond)
	now := time.Unix(0, 0)
	vk.now = func() time.Time { return now }

	vk.Press('c')
	now = now.Add(80 * time.Millisecond)
	vk.Press('c')
	if len(out.msgs) != 1 {
		t.Fatalf("repeat press sent %v", out.msgs)
	}
	if n := vk.Expire(now.Add(50 * time.Millisecond)); n != 0 {
		t.Fatalf("expired %d early", n)
	}
	if n := vk.Expire(now.Add(100 * time.Millisecond)); n != 1 {
		t.Fatalf("expired %d", n)
	}
	if out.msgs[1] != (Message{0x80, 52, 0}) {
		t.Fatalf("release = %v", out.msgs[1])
	}
}

func TestVirtualOctaveShiftReleasesFirst(t *testing.T) {
	out := &recordDispatcher{}
	vk := NewVirtualKeyboard(out, time.Second)
	vk.Press('z')
	vk.Press('c')

	if got := vk.ShiftOctave(1); got != 5 {
		t.Fatalf("octave = %d", got)
	}
	if len(vk.Held()) != 0 {
		t.Fatal("notes still held after octave change")
	}
	if out.msgs[2] != (Message{0x80, 48, 0}) || out.msgs[3] != (Message{0x80, 52, 0}) {
		t.Fatalf("releases = %v", out.msgs[2:])
	}

	vk.Press('z')
	if out.msgs[4] != (Message{0x90, 60, 100}) {
		t.Fatalf("after shift = %v", out.msgs[4])
	}

	if got := vk.ShiftOctave(10); got != MaxOctave {
		t.Fatalf("octave clamp = %d", got)
	}
	if got := vk.ShiftOctave(-20); got != 0 {
		t.Fatalf("octave clamp = %d", got)
	}
}

func TestVirtualVelocity(t *testing.T) {
	vk := NewVirtualKeyboard(&recordDispatcher{}, 0)
	if v := vk.SetVelocity(300); v != 127 {
		t.Fatalf("velocity = %d", v)
	}
	if v := vk.SetVelocity(0); v != 1 {
		t.Fatalf("velocity = %d", v)
	}
}

func TestMessageClassification(t *testing.T) {
	if _, ok := FromBytes([]byte{0xF0, 0x7E, 0xF7}); ok {
		t.Fatal("sysex accepted")
	}
	m, ok := FromBytes([]byte{0xC2, 5})
	if !ok || m != (Message{0xC2, 5, 0}) || len(m.Bytes()) != 2 {
		t.Fatalf("program change = %v %v", m, ok)
	}
	if !(Message{0x90, 60, 0}).IsNoteOff() || (Message{0x90, 60, 1}).IsNoteOff() {
		t.Fatal("note off classification")
	}
	if NoteOnMsg(3, 60, 90) != (Message{0x93, 60, 90}) {
		t.Fatalf("NoteOnMsg = %v", NoteOnMsg(3, 60, 90))
	}
}
