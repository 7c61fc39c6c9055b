package bridge

import (
	"fmt"

	"go-juno/params"
)

// Kind tags a Command.
type Kind uint8

const (
	KindInit Kind = iota
	KindNoteEvent
	KindSetParam
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindNoteEvent:
		return "note-event"
	case KindSetParam:
		return "set-param"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Command travels from the control side to the render side.
type Command struct {
	Kind  Kind
	Note  [3]byte   // KindNoteEvent
	Param params.ID // KindSetParam
	Value float64   // KindSetParam, engine units
}

func (c Command) String() string {
	switch c.Kind {
	case KindNoteEvent:
		return fmt.Sprintf("note-event [%02X %d %d]", c.Note[0], c.Note[1], c.Note[2])
	case KindSetParam:
		return fmt.Sprintf("set %s=%g", c.Param, c.Value)
	}
	return c.Kind.String()
}

// StatusKind tags a Status.
type StatusKind uint8

const (
	StatusReady StatusKind = iota
	StatusInitialized
	StatusError
)

// Status travels from the render side back to the control side.
type Status struct {
	Kind    StatusKind
	Message string // StatusError only
}

func (s Status) String() string {
	switch s.Kind {
	case StatusReady:
		return "ready"
	case StatusInitialized:
		return "initialized"
	case StatusError:
		return "error: " + s.Message
	}
	return fmt.Sprintf("status(%d)", uint8(s.Kind))
}
