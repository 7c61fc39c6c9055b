package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go-juno/debug"
)

// EngineHandle is an engine plus the two scratch buffers it renders into.
// It belongs to the render context once published.
type EngineHandle struct {
	engine Engine
	left   []float32
	right  []float32
}

func newEngineHandle(e Engine, quantum int) *EngineHandle {
	return &EngineHandle{
		engine: e,
		left:   make([]float32, quantum),
		right:  make([]float32, quantum),
	}
}

// Capacity is the most frames one engine Render call produces.
func (h *EngineHandle) Capacity() int {
	return len(h.left)
}

type engineState int32

const (
	stateIdle engineState = iota
	stateBuilding
	stateReady
	stateFailed
)

func (s engineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateBuilding:
		return "building"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	}
	return "?"
}

// Stats counts what the dispatcher did with the commands it drained.
type Stats struct {
	Applied uint64 `json:"applied"` // reached the engine
	Dropped uint64 `json:"dropped"` // arrived before the engine existed
	Unknown uint64 `json:"unknown"` // unrecognized kind or parameter
	Ignored uint64 `json:"ignored"` // init while building or built
}

// Dispatcher turns drained commands into engine calls. Drain runs on the
// render context; the engine itself is built on a separate goroutine and
// handed over through an atomic pointer.
type Dispatcher struct {
	ch         *Channel
	construct  Constructor
	sampleRate float64
	quantum    int

	state   atomic.Int32
	pending atomic.Pointer[EngineHandle]
	handle  *EngineHandle // render context only

	initReq   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	applied atomic.Uint64
	dropped atomic.Uint64
	unknown atomic.Uint64
	ignored atomic.Uint64
}

// NewDispatcher starts the builder goroutine and posts Ready.
func NewDispatcher(ch *Channel, construct Constructor, sampleRate float64, quantum int) *Dispatcher {
	if quantum <= 0 {
		quantum = 128
	}
	d := &Dispatcher{
		ch:         ch,
		construct:  construct,
		sampleRate: sampleRate,
		quantum:    quantum,
		initReq:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	d.wg.Add(1)
	go d.builder()
	ch.post(Status{Kind: StatusReady})
	return d
}

func (d *Dispatcher) builder() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-d.initReq:
			d.build()
		}
	}
}

func (d *Dispatcher) build() {
	debug.Log("engine", "constructing at %g Hz, quantum %d", d.sampleRate, d.quantum)
	e, err := d.safeConstruct()
	if err != nil {
		var ce *ConstructionError
		if !errors.As(err, &ce) {
			ce = &ConstructionError{SampleRate: d.sampleRate, Err: err}
		}
		d.state.Store(int32(stateFailed))
		debug.Log("engine", "construction failed: %v", ce)
		d.ch.post(Status{Kind: StatusError, Message: ce.Error()})
		return
	}

	d.pending.Store(newEngineHandle(e, d.quantum))
	d.state.Store(int32(stateReady))
	debug.Log("engine", "initialized")
	d.ch.post(Status{Kind: StatusInitialized})
}

func (d *Dispatcher) safeConstruct() (e Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConstructionError{SampleRate: d.sampleRate, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if d.construct == nil {
		return nil, errors.New("no constructor")
	}
	e, err = d.construct(d.sampleRate)
	if err == nil && e == nil {
		err = errors.New("constructor returned no engine")
	}
	return e, err
}

// Drain installs a freshly built engine, then applies every queued
// command. Render context only.
func (d *Dispatcher) Drain() {
	if h := d.pending.Swap(nil); h != nil {
		d.handle = h
	}
	for {
		cmd, ok := d.ch.next()
		if !ok {
			return
		}
		d.apply(cmd)
	}
}

func (d *Dispatcher) apply(cmd Command) {
	switch cmd.Kind {
	case KindInit:
		d.requestInit()
	case KindNoteEvent:
		if d.handle == nil {
			d.dropped.Add(1)
			return
		}
		d.handle.engine.HandleNoteEvent(cmd.Note[0], cmd.Note[1], cmd.Note[2])
		d.applied.Add(1)
	case KindSetParam:
		if d.handle == nil {
			d.dropped.Add(1)
			return
		}
		if !cmd.Param.Valid() {
			d.unknown.Add(1)
			return
		}
		setters[cmd.Param](d.handle.engine, cmd.Value)
		d.applied.Add(1)
	default:
		d.unknown.Add(1)
	}
}

// requestInit starts a build unless one is running or already succeeded.
// A failed build may be retried.
func (d *Dispatcher) requestInit() {
	if d.handle != nil ||
		!(d.state.CompareAndSwap(int32(stateIdle), int32(stateBuilding)) ||
			d.state.CompareAndSwap(int32(stateFailed), int32(stateBuilding))) {
		d.ignored.Add(1)
		return
	}
	select {
	case d.initReq <- struct{}{}:
	default:
	}
}

// Initialized reports whether an engine has been built. Safe from any goroutine.
func (d *Dispatcher) Initialized() bool {
	return engineState(d.state.Load()) == stateReady
}

// State names the engine lifecycle state for display.
func (d *Dispatcher) State() string {
	return engineState(d.state.Load()).String()
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Applied: d.applied.Load(),
		Dropped: d.dropped.Load(),
		Unknown: d.unknown.Load(),
		Ignored: d.ignored.Load(),
	}
}

// Close stops the builder goroutine. A build in progress finishes first.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.done) })
	d.wg.Wait()
}
