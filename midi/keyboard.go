package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-juno/debug"
)

// KeyboardController forwards every channel-voice message from one input
// port. Messages queue without bound between the driver callback and
// Events, so a slow reader delays notes but never loses them.
type KeyboardController struct {
	id       string
	name     string
	inPort   drivers.In
	stopFunc func()

	mu      sync.Mutex
	closed  bool
	pending []Message
	wake    chan struct{}
	done    chan struct{}
	events  chan Message
}

// NewKeyboardController starts listening on inPort.
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		events: make(chan Message),
	}
	if inPort != nil {
		kb.name = inPort.String()
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if m, ok := FromBytes(msg); ok {
				kb.deliver(m)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}
	go kb.forward()
	return kb, nil
}

func (kb *KeyboardController) deliver(m Message) {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return
	}
	kb.pending = append(kb.pending, m)
	backlog := len(kb.pending)
	kb.mu.Unlock()

	if backlog > 256 {
		debug.LogEvery(256, "midi", "%s: %d events waiting", kb.id, backlog)
	}
	select {
	case kb.wake <- struct{}{}:
	default:
	}
}

// forward moves pending messages to events in arrival order until Close.
func (kb *KeyboardController) forward() {
	defer close(kb.events)
	for {
		select {
		case <-kb.done:
			return
		case <-kb.wake:
		}
		for {
			kb.mu.Lock()
			batch := kb.pending
			kb.pending = nil
			kb.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, m := range batch {
				select {
				case kb.events <- m:
				case <-kb.done:
					return
				}
			}
		}
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Name() string {
	return kb.name
}

func (kb *KeyboardController) Events() <-chan Message {
	return kb.events
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if !kb.closed {
		kb.closed = true
		kb.pending = nil
		close(kb.done)
	}
	if kb.inPort != nil && kb.inPort.IsOpen() {
		return kb.inPort.Close()
	}
	return nil
}
