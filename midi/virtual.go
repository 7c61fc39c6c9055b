package midi

import (
	"sort"
	"sync"
	"time"
)

// VirtualID is the source name used for computer-keyboard notes.
const VirtualID = "virtual"

// Computer keys mapped to semitones above the current octave's C.
var virtualKeyMap = map[rune]uint8{
	'z': 0, 's': 1, 'x': 2, 'd': 3, 'c': 4, 'v': 5, 'g': 6, 'b': 7,
	'h': 8, 'n': 9, 'j': 10, 'm': 11, ',': 12, 'l': 13, '.': 14, ';': 15, '/': 16,
}

const (
	DefaultOctave   = 4
	DefaultVelocity = 100
	MaxOctave       = 8
)

// Dispatcher is where the virtual keyboard sends its notes.
type Dispatcher interface {
	Dispatch(source string, msg Message) bool
}

type heldKey struct {
	note  uint8
	until time.Time
}

// VirtualKeyboard plays notes from computer keys. Terminals report key
// presses but not releases, so a held note is released once its hold
// time passes without a repeat press (auto-repeat refreshes it).
type VirtualKeyboard struct {
	mu       sync.Mutex
	out      Dispatcher
	octave   int
	velocity uint8
	channel  uint8
	hold     time.Duration
	held     map[rune]heldKey
	now      func() time.Time
}

func NewVirtualKeyboard(out Dispatcher, hold time.Duration) *VirtualKeyboard {
	if hold <= 0 {
		hold = 250 * time.Millisecond
	}
	return &VirtualKeyboard{
		out:      out,
		octave:   DefaultOctave,
		velocity: DefaultVelocity,
		hold:     hold,
		held:     make(map[rune]heldKey),
		now:      time.Now,
	}
}

// IsNoteKey reports whether key plays a note.
func IsNoteKey(key rune) bool {
	_, ok := virtualKeyMap[key]
	return ok
}

// Press starts the note for key, or extends its hold if already sounding.
func (vk *VirtualKeyboard) Press(key rune) bool {
	offset, ok := virtualKeyMap[key]
	if !ok {
		return false
	}
	vk.mu.Lock()
	defer vk.mu.Unlock()

	until := vk.now().Add(vk.hold)
	if h, ok := vk.held[key]; ok {
		h.until = until
		vk.held[key] = h
		return true
	}
	note := vk.octave*12 + int(offset)
	if note > 127 {
		return false
	}
	vk.held[key] = heldKey{note: uint8(note), until: until}
	vk.out.Dispatch(VirtualID, NoteOnMsg(vk.channel, uint8(note), vk.velocity))
	return true
}

// Release ends the note for key.
func (vk *VirtualKeyboard) Release(key rune) bool {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	h, ok := vk.held[key]
	if !ok {
		return false
	}
	delete(vk.held, key)
	vk.out.Dispatch(VirtualID, NoteOffMsg(vk.channel, h.note))
	return true
}

// Expire releases every note whose hold has run out by now.
func (vk *VirtualKeyboard) Expire(now time.Time) int {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	var due []rune
	for k, h := range vk.held {
		if !now.Before(h.until) {
			due = append(due, k)
		}
	}
	vk.releaseKeys(due)
	return len(due)
}

// Forget drops every held key without sending note offs. It is for when
// the notes were already released downstream, e.g. by Router.ReleaseAll.
func (vk *VirtualKeyboard) Forget() {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	clear(vk.held)
}

// ReleaseAll ends every held note.
func (vk *VirtualKeyboard) ReleaseAll() int {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	return vk.releaseAllLocked()
}

func (vk *VirtualKeyboard) releaseAllLocked() int {
	keys := make([]rune, 0, len(vk.held))
	for k := range vk.held {
		keys = append(keys, k)
	}
	vk.releaseKeys(keys)
	return len(keys)
}

// releaseKeys requires vk.mu. Notes go out lowest first.
func (vk *VirtualKeyboard) releaseKeys(keys []rune) {
	sort.Slice(keys, func(i, j int) bool { return vk.held[keys[i]].note < vk.held[keys[j]].note })
	for _, k := range keys {
		note := vk.held[k].note
		delete(vk.held, k)
		vk.out.Dispatch(VirtualID, NoteOffMsg(vk.channel, note))
	}
}

// ShiftOctave moves the keyboard range by delta octaves. Held notes are
// released first so none are left stuck in the old range.
func (vk *VirtualKeyboard) ShiftOctave(delta int) int {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	next := max(0, min(MaxOctave, vk.octave+delta))
	if next == vk.octave {
		return next
	}
	vk.releaseAllLocked()
	vk.octave = next
	return next
}

func (vk *VirtualKeyboard) Octave() int {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	return vk.octave
}

// SetVelocity clamps to 1..127.
func (vk *VirtualKeyboard) SetVelocity(v int) uint8 {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	vk.velocity = uint8(max(1, min(127, v)))
	return vk.velocity
}

func (vk *VirtualKeyboard) Velocity() uint8 {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	return vk.velocity
}

// Held returns the held notes in ascending order.
func (vk *VirtualKeyboard) Held() []uint8 {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	notes := make([]uint8, 0, len(vk.held))
	for _, h := range vk.held {
		notes = append(notes, h.note)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}
