package audio

import (
	"context"
	"sync"
	"time"

	"go-juno/bridge"
	"go-juno/debug"
)

// Ticker drives a renderer on a wall-clock timer and throws the output
// away. It stands in for a sound device when running headless.
type Ticker struct {
	r      bridge.Renderer
	left   []float32
	right  []float32
	period time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	frames int64
}

func NewTicker(r bridge.Renderer) *Ticker {
	q := r.Quantum()
	period := time.Duration(float64(q) / r.SampleRate() * float64(time.Second))
	if period <= 0 {
		period = time.Millisecond
	}
	return &Ticker{
		r:      r,
		left:   make([]float32, q),
		right:  make([]float32, q),
		period: period,
	}
}

// Period is the time one quantum represents.
func (t *Ticker) Period() time.Duration { return t.period }

// Step renders one quantum immediately.
func (t *Ticker) Step() {
	t.r.Process(t.left, t.right)
	t.frames += int64(len(t.left))
}

// Frames is how many frames Step has rendered. Only meaningful once the
// ticker is closed or was never started.
func (t *Ticker) Frames() int64 { return t.frames }

func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
	debug.Log("audio", "headless ticker every %v", t.period)
	return nil
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	tick := time.NewTicker(t.period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.Step()
		}
	}
}

// Close stops the ticker and waits for the last quantum to finish.
func (t *Ticker) Close() error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
