package bridge

// Renderer is what an audio host drives.
type Renderer interface {
	Process(left, right []float32)
	Quantum() int
	SampleRate() float64
}

var _ Renderer = (*RenderLoop)(nil)

// RenderLoop copies engine output into host buffers, one quantum per call.
// Render must not allocate, lock or log.
type RenderLoop struct {
	d *Dispatcher
}

func NewRenderLoop(d *Dispatcher) *RenderLoop {
	return &RenderLoop{d: d}
}

// Process drains pending commands then renders. Hosts call this once per
// quantum, never concurrently with itself.
func (r *RenderLoop) Process(left, right []float32) {
	r.d.Drain()
	r.Render(left, right)
}

// Render fills left and right. Without an engine the output is silence.
// Requests larger than the handle's buffers are rendered in chunks.
func (r *RenderLoop) Render(left, right []float32) {
	frames := min(len(left), len(right))
	clear(left[frames:])
	clear(right[frames:])

	h := r.d.handle
	if h == nil {
		clear(left[:frames])
		clear(right[:frames])
		return
	}

	step := h.Capacity()
	for off := 0; off < frames; off += step {
		n := min(step, frames-off)
		h.engine.Render(h.left[:n], h.right[:n], n)
		copy(left[off:off+n], h.left[:n])
		copy(right[off:off+n], h.right[:n])
	}
}

// Quantum is the frame count the engine buffers hold.
func (r *RenderLoop) Quantum() int {
	return r.d.quantum
}

// SampleRate is the rate the engine is built for.
func (r *RenderLoop) SampleRate() float64 {
	return r.d.sampleRate
}

// Shutdown releases the engine. Call only after the host has stopped
// calling Process.
func (r *RenderLoop) Shutdown() {
	r.d.Close()
	r.d.pending.Store(nil)
	r.d.handle = nil
}
