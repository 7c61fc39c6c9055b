package midi

import (
	"context"
	"fmt"
	"sync"

	"go-juno/debug"
)

// Sink receives note events for the render side.
type Sink interface {
	NoteEvent(msg [3]byte) bool
}

// Tracker follows the same stream for display.
type Tracker interface {
	Apply(msg [3]byte)
	ReleaseAll() [][3]byte
}

// Opener opens a port by ID. *DeviceManager implements it.
type Opener interface {
	Open(id string) (Controller, error)
}

// Router merges the selected external controller and UI sources into one
// stream. Every accepted event goes unmodified to both the sink and the
// tracker, in the same order.
type Router struct {
	sink    Sink
	tracker Tracker
	opener  Opener

	dispatchMu sync.Mutex
	onRelease  []func()

	mu          sync.Mutex
	selected    Controller
	pumpDone    chan struct{}
	autoConnect func(Port) bool

	notify chan DeviceEvent
}

func NewRouter(sink Sink, tracker Tracker, opener Opener) *Router {
	return &Router{
		sink:    sink,
		tracker: tracker,
		opener:  opener,
		notify:  make(chan DeviceEvent, 16),
	}
}

// SetAutoConnect sets the predicate deciding whether a newly seen port is
// selected when nothing else is.
func (r *Router) SetAutoConnect(fn func(Port) bool) {
	r.mu.Lock()
	r.autoConnect = fn
	r.mu.Unlock()
}

// Dispatch forwards msg from source. Non channel-voice messages are refused.
func (r *Router) Dispatch(source string, msg Message) bool {
	if msg[0] < 0x80 || msg[0] >= 0xF0 {
		return false
	}
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.sink.NoteEvent(msg)
	r.tracker.Apply(msg)
	debug.Debugf("route", "%s: %v", source, msg)
	return true
}

// OnReleaseAll registers fn to run after every ReleaseAll, so sources
// that remember their own held notes can forget them. fn runs without
// router locks held.
func (r *Router) OnReleaseAll(fn func()) {
	r.dispatchMu.Lock()
	r.onRelease = append(r.onRelease, fn)
	r.dispatchMu.Unlock()
}

// ReleaseAll sends a note off for every sounding note.
func (r *Router) ReleaseAll() int {
	r.dispatchMu.Lock()
	offs := r.tracker.ReleaseAll()
	for _, off := range offs {
		r.sink.NoteEvent(off)
	}
	hooks := r.onRelease
	r.dispatchMu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if len(offs) > 0 {
		debug.Log("route", "released %d notes", len(offs))
	}
	return len(offs)
}

// Select makes id the only external source. The previous source is
// closed and all notes released before the new one is opened. An empty
// id deselects.
func (r *Router) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selected != nil && r.selected.ID() == id {
		return nil
	}
	r.closeSelected()
	r.ReleaseAll()
	if id == "" {
		return nil
	}

	c, err := r.opener.Open(id)
	if err != nil {
		return fmt.Errorf("select %s: %w", id, err)
	}
	r.selected = c
	done := make(chan struct{})
	r.pumpDone = done
	go r.pump(c, done)
	debug.Log("route", "selected %s", id)
	return nil
}

func (r *Router) pump(c Controller, done chan struct{}) {
	defer close(done)
	for msg := range c.Events() {
		r.Dispatch(c.ID(), msg)
	}
}

// closeSelected requires r.mu.
func (r *Router) closeSelected() {
	if r.selected == nil {
		return
	}
	id := r.selected.ID()
	if err := r.selected.Close(); err != nil {
		debug.Warn("route", "close %s: %v", id, err)
	}
	<-r.pumpDone
	r.selected = nil
	r.pumpDone = nil
	debug.Log("route", "deselected %s", id)
}

// Selected returns the ID of the selected source.
func (r *Router) Selected() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return "", false
	}
	return r.selected.ID(), true
}

// Events re-publishes device events after the router has acted on them.
func (r *Router) Events() <-chan DeviceEvent {
	return r.notify
}

// Watch follows device events until events closes or ctx ends: the
// selected device is dropped when it disappears, and auto-connect ports
// are selected as they appear.
func (r *Router) Watch(ctx context.Context, events <-chan DeviceEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ev)
			select {
			case r.notify <- ev:
			default:
			}
		}
	}
}

func (r *Router) handle(ev DeviceEvent) {
	switch ev.Type {
	case DeviceDisconnected:
		if id, ok := r.Selected(); ok && id == ev.Port.ID {
			r.Select("")
		}
	case DeviceConnected:
		r.mu.Lock()
		auto := r.autoConnect
		busy := r.selected != nil
		r.mu.Unlock()
		if !busy && auto != nil && auto(ev.Port) {
			if err := r.Select(ev.Port.ID); err != nil {
				debug.Warn("route", "auto-connect: %v", err)
			}
		}
	}
}

// Close deselects and releases everything.
func (r *Router) Close() {
	r.Select("")
}
