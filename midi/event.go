package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI channel-voice status nibbles
const (
	NoteOff         uint8 = 0x80
	NoteOn          uint8 = 0x90
	PolyPressure    uint8 = 0xA0
	CC              uint8 = 0xB0
	ProgramChange   uint8 = 0xC0
	ChannelPressure uint8 = 0xD0
	PitchBend       uint8 = 0xE0
)

const (
	CCModWheel    uint8 = 1
	CCAllNotesOff uint8 = 123
)

// Message is one channel-voice message. Two-byte messages (program
// change, channel pressure) carry a zero third byte.
type Message [3]byte

// FromBytes accepts a raw message and reports whether it is a
// channel-voice message. System messages (0xF0 and up) are rejected.
func FromBytes(b []byte) (Message, bool) {
	var m Message
	if len(b) == 0 || b[0] < 0x80 || b[0] >= 0xF0 {
		return m, false
	}
	copy(m[:], b)
	m[1] &= 0x7F
	m[2] &= 0x7F
	return m, true
}

func NoteOnMsg(channel, key, velocity uint8) Message {
	m, _ := FromBytes(gomidi.NoteOn(channel&0x0F, key, velocity))
	return m
}

func NoteOffMsg(channel, key uint8) Message {
	m, _ := FromBytes(gomidi.NoteOff(channel&0x0F, key))
	return m
}

func (m Message) Status() uint8  { return m[0] & 0xF0 }
func (m Message) Channel() uint8 { return m[0] & 0x0F }
func (m Message) Key() uint8     { return m[1] }

// IsNoteOn is true only for a note on with non-zero velocity.
func (m Message) IsNoteOn() bool {
	return m.Status() == NoteOn && m[2] > 0
}

// IsNoteOff includes note on with velocity zero.
func (m Message) IsNoteOff() bool {
	return m.Status() == NoteOff || (m.Status() == NoteOn && m[2] == 0)
}

// Bytes returns the message at its wire length.
func (m Message) Bytes() []byte {
	switch m.Status() {
	case ProgramChange, ChannelPressure:
		return []byte{m[0], m[1]}
	}
	return []byte{m[0], m[1], m[2]}
}

func (m Message) String() string {
	return gomidi.Message(m.Bytes()).String()
}
