// Package audio connects the render loop to a sound device.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"go-juno/bridge"
)

const (
	Channels       = 2
	bytesPerSample = 4
	frameBytes     = Channels * bytesPerSample
)

// Host turns whole render quanta into interleaved little-endian float32
// stereo bytes. Read may be asked for any length; bytes left over from a
// quantum are served first on the next call.
type Host struct {
	r     bridge.Renderer
	left  []float32
	right []float32
	buf   []byte
	off   int

	stopped atomic.Bool
}

func NewHost(r bridge.Renderer) *Host {
	q := r.Quantum()
	return &Host{
		r:     r,
		left:  make([]float32, q),
		right: make([]float32, q),
		buf:   make([]byte, q*frameBytes),
		off:   q * frameBytes,
	}
}

// Read implements io.Reader. After Stop it yields silence.
func (h *Host) Read(p []byte) (int, error) {
	if h.stopped.Load() {
		clear(p)
		return len(p), nil
	}

	n := 0
	for n < len(p) {
		if h.off == len(h.buf) {
			h.fill()
		}
		c := copy(p[n:], h.buf[h.off:])
		h.off += c
		n += c
	}
	return n, nil
}

func (h *Host) fill() {
	h.r.Process(h.left, h.right)
	for i := range h.left {
		j := i * frameBytes
		binary.LittleEndian.PutUint32(h.buf[j:], math.Float32bits(h.left[i]))
		binary.LittleEndian.PutUint32(h.buf[j+bytesPerSample:], math.Float32bits(h.right[i]))
	}
	h.off = 0
}

// Stop makes further reads silent without touching the renderer.
func (h *Host) Stop() {
	h.stopped.Store(true)
}

// Output is a running sound device.
type Output interface {
	Start() error
	Close() error
}
