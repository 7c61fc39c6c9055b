package params

import "sync"

// Mirror is the control-side copy of what has been sent to the engine.
// It is the source for preset capture and for the panel display.
type Mirror struct {
	mu     sync.Mutex
	values Snapshot
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{values: make(Snapshot)}
}

func (m *Mirror) Set(id ID, v float64) {
	m.mu.Lock()
	m.values[id] = v
	m.mu.Unlock()
}

func (m *Mirror) Get(id ID) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id]
	return v, ok
}

// Value returns the mirrored value, or the default when unset.
func (m *Mirror) Value(id ID) float64 {
	if v, ok := m.Get(id); ok {
		return v
	}
	return id.Describe().Default
}

// Snapshot returns a copy of the mirrored values.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Clone()
}

// Sender accepts parameter commands for the render side.
type Sender interface {
	SetParam(id ID, v float64) bool
}

// Controls is the single path by which control-side code changes a
// parameter: the value is clamped, mirrored, then sent.
type Controls struct {
	mirror *Mirror
	out    Sender

	mu       sync.Mutex
	onChange []func(ID, float64)
}

func NewControls(mirror *Mirror, out Sender) *Controls {
	return &Controls{mirror: mirror, out: out}
}

func (c *Controls) Mirror() *Mirror {
	return c.mirror
}

// OnChange registers fn to be called after every parameter change.
func (c *Controls) OnChange(fn func(ID, float64)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Set clamps v to the parameter range, updates the mirror and sends the
// command. It returns the value actually sent.
func (c *Controls) Set(id ID, v float64) float64 {
	if !id.Valid() {
		return v
	}
	v = Clamp(id, v)
	c.mirror.Set(id, v)
	c.out.SetParam(id, v)

	c.mu.Lock()
	fns := c.onChange
	c.mu.Unlock()
	for _, fn := range fns {
		fn(id, v)
	}
	return v
}

// SetUI takes a value in panel units (percent, milliseconds).
func (c *Controls) SetUI(id ID, ui float64) float64 {
	return c.Set(id, FromUI(id, ui))
}

// Nudge moves a parameter by steps increments. Bool parameters toggle.
func (c *Controls) Nudge(id ID, steps int) float64 {
	d := id.Describe()
	cur := c.mirror.Value(id)
	if d.Kind == Bool {
		if steps == 0 {
			return cur
		}
		return c.Set(id, 1-cur)
	}
	return c.Set(id, cur+float64(steps)*d.Step)
}

// Apply sends every parameter of s in apply order.
func (c *Controls) Apply(s Snapshot) {
	for _, id := range s.Ordered() {
		c.Set(id, s[id])
	}
}

// Reset loads the power-on defaults.
func (c *Controls) Reset() {
	c.Apply(Defaults())
}

// Sync resends the whole mirror. Used once the engine reports it is
// initialized, since anything sent before that was dropped.
func (c *Controls) Sync() {
	snap := c.mirror.Snapshot()
	for _, id := range snap.Ordered() {
		c.out.SetParam(id, snap[id])
	}
}
