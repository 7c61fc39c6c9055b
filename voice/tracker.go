// Package voice tracks which notes are sounding, for display. It follows
// the same event stream the engine receives but knows nothing about the
// engine's real polyphony.
package voice

import (
	"sync"
	"time"
)

const (
	noteOff     = 0x80
	noteOn      = 0x90
	controlChg  = 0xB0
	allNotesOff = 123

	DefaultDisplayCount = 6
)

// Tracker holds the set of sounding notes and when each was struck.
type Tracker struct {
	mu       sync.Mutex
	started  [128]time.Time // zero means silent
	channel  [128]uint8     // channel of the latest note on
	count    int
	display  int
	now      func() time.Time
	onChange func()
}

// NewTracker returns an empty tracker whose DisplayCount is clamped to
// display (DefaultDisplayCount when display <= 0).
func NewTracker(display int) *Tracker {
	if display <= 0 {
		display = DefaultDisplayCount
	}
	return &Tracker{display: display, now: time.Now}
}

// SetClock replaces the timestamp source (tests).
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// OnChange registers fn to run after the sounding set changes. fn runs
// without the tracker lock held.
func (t *Tracker) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Apply feeds one 3-byte channel message through the state machine.
// Messages other than note on/off and all-notes-off are ignored.
func (t *Tracker) Apply(msg [3]byte) {
	status := msg[0] & 0xF0
	note := msg[1] & 0x7F

	t.mu.Lock()
	changed := false
	switch {
	case status == noteOn && msg[2] > 0:
		if t.started[note].IsZero() {
			t.count++
			changed = true
		}
		t.started[note] = t.now()
		t.channel[note] = msg[0] & 0x0F
	case status == noteOn, status == noteOff:
		if !t.started[note].IsZero() {
			t.started[note] = time.Time{}
			t.count--
			changed = true
		}
	case status == controlChg && msg[1] == allNotesOff:
		changed = t.count > 0
		t.started = [128]time.Time{}
		t.count = 0
	}
	fn := t.onChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
}

// ReleaseAll empties the set and returns a note-off for each note that
// was sounding, lowest note first, on the channel the note was struck on.
func (t *Tracker) ReleaseAll() [][3]byte {
	t.mu.Lock()
	var offs [][3]byte
	for n := range t.started {
		if !t.started[n].IsZero() {
			offs = append(offs, [3]byte{noteOff | t.channel[n], byte(n), 0})
			t.started[n] = time.Time{}
		}
	}
	t.count = 0
	fn := t.onChange
	t.mu.Unlock()

	if len(offs) > 0 && fn != nil {
		fn()
	}
	return offs
}

// IsSounding reports whether note is in the set.
func (t *Tracker) IsSounding(note uint8) bool {
	if note > 127 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.started[note].IsZero()
}

// Since returns when note was last struck, and false if it is silent.
func (t *Tracker) Since(note uint8) (time.Time, bool) {
	if note > 127 {
		return time.Time{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := t.started[note]
	return ts, !ts.IsZero()
}

// Sounding returns the sounding notes in ascending order.
func (t *Tracker) Sounding() []uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	notes := make([]uint8, 0, t.count)
	for n := range t.started {
		if !t.started[n].IsZero() {
			notes = append(notes, uint8(n))
		}
	}
	return notes
}

// Count is the number of sounding notes.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// DisplayCount is Count clamped to the number of voice indicators.
func (t *Tracker) DisplayCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return min(t.count, t.display)
}

// Display is the number of voice indicators.
func (t *Tracker) Display() int {
	return t.display
}
