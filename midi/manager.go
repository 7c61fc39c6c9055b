package midi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-juno/debug"
)

var (
	ErrScanTimeout = errors.New("midi: port scan timed out")
	ErrNoSuchPort  = errors.New("midi: no such port")
)

// Scanner enumerates and opens input ports.
type Scanner interface {
	Ports() ([]Port, error)
	Open(p Port) (Controller, error)
}

// DriverScanner uses the registered gomidi driver.
type DriverScanner struct {
	Timeout time.Duration
}

func (s DriverScanner) inPorts() ([]drivers.In, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	// Port enumeration can hang inside the OS MIDI service
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		return ins, nil
	case <-time.After(timeout):
		return nil, ErrScanTimeout
	}
}

func (s DriverScanner) Ports() ([]Port, error) {
	ins, err := s.inPorts()
	if err != nil {
		return nil, err
	}
	ports := make([]Port, 0, len(ins))
	for _, in := range ins {
		ports = append(ports, Port{ID: in.String(), Name: in.String()})
	}
	return ports, nil
}

func (s DriverScanner) Open(p Port) (Controller, error) {
	ins, err := s.inPorts()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if in.String() == p.Name {
			return NewKeyboardController(p.ID, in)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchPort, p.Name)
}

// DeviceEvent is emitted when ports appear or vanish.
type DeviceEvent struct {
	Type DeviceEventType
	Port Port
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of MIDI inputs
type DeviceManager struct {
	scanner  Scanner
	ports    map[string]Port
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager creates a device manager polling every pollRate.
func NewDeviceManager(scanner Scanner, pollRate time.Duration) *DeviceManager {
	if pollRate <= 0 {
		pollRate = time.Second
	}
	return &DeviceManager{
		scanner:  scanner,
		ports:    make(map[string]Port),
		events:   make(chan DeviceEvent, 16),
		pollRate: pollRate,
	}
}

// Events returns a channel of connect/disconnect events. It is closed
// when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Ports returns the known ports sorted by name.
func (dm *DeviceManager) Ports() []Port {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ports := make([]Port, 0, len(dm.ports))
	for _, p := range dm.ports {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports
}

func (dm *DeviceManager) Port(id string) (Port, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	p, ok := dm.ports[id]
	return p, ok
}

// Open subscribes to a known port.
func (dm *DeviceManager) Open(id string) (Controller, error) {
	p, ok := dm.Port(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPort, id)
	}
	return dm.scanner.Open(p)
}

// Run polls until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()
	defer close(dm.events)

	dm.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.Scan(ctx)
		}
	}
}

// Scan diffs the current port list against the known set and emits events.
func (dm *DeviceManager) Scan(ctx context.Context) {
	ports, err := dm.scanner.Ports()
	if err != nil {
		debug.LogEvery(10, "midi", "scan: %v", err)
		return
	}

	seen := make(map[string]Port, len(ports))
	for _, p := range ports {
		seen[p.ID] = p
	}

	var events []DeviceEvent
	dm.mu.Lock()
	for id, p := range seen {
		if _, ok := dm.ports[id]; !ok {
			dm.ports[id] = p
			events = append(events, DeviceEvent{Type: DeviceConnected, Port: p})
		}
	}
	for id, p := range dm.ports {
		if _, ok := seen[id]; !ok {
			delete(dm.ports, id)
			events = append(events, DeviceEvent{Type: DeviceDisconnected, Port: p})
		}
	}
	dm.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool { return events[i].Port.Name < events[j].Port.Name })
	for _, ev := range events {
		debug.Log("midi", "port %s: %s", ev.Type, ev.Port.Name)
		select {
		case dm.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
