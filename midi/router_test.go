package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-juno/voice"
)

type recordSink struct {
	mu   sync.Mutex
	msgs [][3]byte
}

func (s *recordSink) NoteEvent(msg [3]byte) bool {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	return true
}

func (s *recordSink) all() [][3]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][3]byte(nil), s.msgs...)
}

type fakeController struct {
	id     string
	events chan Message
	closed bool
	mu     sync.Mutex
}

func newFakeController(id string) *fakeController {
	return &fakeController{id: id, events: make(chan Message, 16)}
}

func (c *fakeController) ID() string             { return c.id }
func (c *fakeController) Name() string           { return c.id }
func (c *fakeController) Events() <-chan Message { return c.events }
func (c *fakeController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

func (c *fakeController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeScanner struct {
	mu    sync.Mutex
	ports []Port
	open  map[string]*fakeController
	err   error
}

func newFakeScanner(names ...string) *fakeScanner {
	s := &fakeScanner{open: map[string]*fakeController{}}
	s.set(names...)
	return s
}

func (s *fakeScanner) set(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports = nil
	for _, n := range names {
		s.ports = append(s.ports, Port{ID: n, Name: n})
	}
}

func (s *fakeScanner) Ports() ([]Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]Port(nil), s.ports...), nil
}

func (s *fakeScanner) Open(p Port) (Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newFakeController(p.ID)
	s.open[p.ID] = c
	return c, nil
}

func (s *fakeScanner) controller(id string) *fakeController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[id]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestRouter(names ...string) (*Router, *recordSink, *voice.Tracker, *fakeScanner, *DeviceManager) {
	sink := &recordSink{}
	tr := voice.NewTracker(6)
	sc := newFakeScanner(names...)
	dm := NewDeviceManager(sc, time.Hour)
	return NewRouter(sink, tr, dm), sink, tr, sc, dm
}

func TestDispatchFeedsSinkAndTracker(t *testing.T) {
	r, sink, tr, _, _ := newTestRouter()
	msg := NoteOnMsg(0, 60, 100)
	if !r.Dispatch(VirtualID, msg) {
		t.Fatal("note on refused")
	}
	if got := sink.all(); len(got) != 1 || got[0] != [3]byte(msg) {
		t.Fatalf("sink got %v", got)
	}
	if !tr.IsSounding(60) {
		t.Fatal("tracker missed note on")
	}
	if r.Dispatch(VirtualID, Message{0xF8, 0, 0}) {
		t.Fatal("system message accepted")
	}
}

func TestReleaseAllSendsNoteOffs(t *testing.T) {
	r, sink, tr, _, _ := newTestRouter()
	for _, n := range []uint8{60, 64, 67} {
		r.Dispatch(VirtualID, NoteOnMsg(0, n, 100))
	}
	if n := r.ReleaseAll(); n != 3 {
		t.Fatalf("released %d", n)
	}
	got := sink.all()[3:]
	want := [][3]byte{{0x80, 60, 0}, {0x80, 64, 0}, {0x80, 67, 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("off %d = %v, want %v", i, got[i], want[i])
		}
	}
	if tr.Count() != 0 {
		t.Fatal("tracker not empty")
	}
}

func TestSelectSwitchesSources(t *testing.T) {
	r, sink, tr, sc, dm := newTestRouter("Keys A", "Keys B")
	dm.Scan(context.Background())

	if err := r.Select("Keys A"); err != nil {
		t.Fatalf("select A: %v", err)
	}
	a := sc.controller("Keys A")
	a.events <- NoteOnMsg(0, 48, 90)
	waitFor(t, func() bool { return tr.IsSounding(48) })

	if err := r.Select("Keys B"); err != nil {
		t.Fatalf("select B: %v", err)
	}
	if !a.isClosed() {
		t.Fatal("previous controller left open")
	}
	if tr.IsSounding(48) {
		t.Fatal("switch did not release notes")
	}
	last := sink.all()[len(sink.all())-1]
	if last != [3]byte{0x80, 48, 0} {
		t.Fatalf("last event = %v", last)
	}
	if id, ok := r.Selected(); !ok || id != "Keys B" {
		t.Fatalf("selected = %q %v", id, ok)
	}

	if err := r.Select("Nope"); !errors.Is(err, ErrNoSuchPort) {
		t.Fatalf("select unknown = %v", err)
	}
}

func TestWatchDeselectsOnDisconnectAndAutoConnects(t *testing.T) {
	r, _, _, sc, dm := newTestRouter()
	r.SetAutoConnect(func(p Port) bool { return p.Name == "Keystation" })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, dm.Events())

	sc.set("Other", "Keystation")
	dm.Scan(ctx)
	waitFor(t, func() bool { _, ok := r.Selected(); return ok })
	if id, _ := r.Selected(); id != "Keystation" {
		t.Fatalf("auto-connected %q", id)
	}

	sc.set("Other")
	dm.Scan(ctx)
	waitFor(t, func() bool { _, ok := r.Selected(); return !ok })
	if !sc.controller("Keystation").isClosed() {
		t.Fatal("vanished controller not closed")
	}
}

func TestDeviceManagerScanEvents(t *testing.T) {
	sc := newFakeScanner("B", "A")
	dm := NewDeviceManager(sc, time.Hour)
	dm.Scan(context.Background())

	ev1, ev2 := <-dm.Events(), <-dm.Events()
	if ev1.Type != DeviceConnected || ev1.Port.Name != "A" || ev2.Port.Name != "B" {
		t.Fatalf("events %v %v", ev1, ev2)
	}
	if ports := dm.Ports(); len(ports) != 2 || ports[0].Name != "A" {
		t.Fatalf("ports = %v", ports)
	}

	sc.err = ErrScanTimeout
	dm.Scan(context.Background())
	if len(dm.Ports()) != 2 {
		t.Fatal("failed scan changed the port set")
	}
	sc.err = nil

	sc.set("B")
	dm.Scan(context.Background())
	ev := <-dm.Events()
	if ev.Type != DeviceDisconnected || ev.Port.Name != "A" {
		t.Fatalf("event = %v", ev)
	}
}

func TestKeyboardControllerKeepsBurst(t *testing.T) {
	kb, err := NewKeyboardController("keys", nil)
	if err != nil {
		t.Fatalf("NewKeyboardController: %v", err)
	}
	defer kb.Close()

	// Nothing reads Events while the burst arrives.
	for n := 0; n < 200; n++ {
		kb.deliver(NoteOnMsg(0, uint8(n%128), 100))
	}
	kb.deliver(NoteOffMsg(0, 60))

	timeout := time.After(2 * time.Second)
	for i := 0; i < 201; i++ {
		select {
		case m := <-kb.Events():
			if i < 200 && m != NoteOnMsg(0, uint8(i%128), 100) {
				t.Fatalf("event %d = %v, out of order", i, m)
			}
			if i == 200 && m != NoteOffMsg(0, 60) {
				t.Fatalf("last event = %v, want note off", m)
			}
		case <-timeout:
			t.Fatalf("received %d of 201 events", i)
		}
	}
}

func TestKeyboardControllerCloseEndsEvents(t *testing.T) {
	kb, _ := NewKeyboardController("keys", nil)
	kb.deliver(NoteOnMsg(0, 60, 100))
	kb.Close()
	kb.deliver(NoteOnMsg(0, 61, 100))
	waitFor(t, func() bool {
		select {
		case _, ok := <-kb.Events():
			return !ok
		default:
			return false
		}
	})
}

func TestReleaseAllResetsVirtualKeyboard(t *testing.T) {
	r, sink, tr, _, _ := newTestRouter()
	vk := NewVirtualKeyboard(r, time.Hour)
	r.OnReleaseAll(vk.Forget)

	vk.Press('z')
	r.ReleaseAll()
	if len(vk.Held()) != 0 {
		t.Fatalf("virtual keyboard still holds %v", vk.Held())
	}

	vk.Press('z')
	got := sink.all()
	want := [][3]byte{{0x90, 48, 100}, {0x80, 48, 0}, {0x90, 48, 100}}
	if len(got) != len(want) {
		t.Fatalf("sink = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sink = %v, want %v", got, want)
		}
	}
	if !tr.IsSounding(48) {
		t.Fatal("second press not sounding")
	}
}
