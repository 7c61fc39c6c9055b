package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8, symbols []rune) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c, symbols[i]))
	}
	return out.String()
}

// RenderBar draws norm (0-1) as a bar width cells wide.
func RenderBar(norm float64, width int, full, empty rune) string {
	if width <= 0 {
		return ""
	}
	n := int(norm*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
}

// KeyStrip draws one cell per semitone from low for count notes. Held
// notes use down; others use white or black by key color.
func KeyStrip(low, count int, held func(note int) bool, white, black, down rune) string {
	var out strings.Builder
	for n := low; n < low+count; n++ {
		switch {
		case held(n):
			out.WriteRune(down)
		case IsBlackKey(n):
			out.WriteRune(black)
		default:
			out.WriteRune(white)
		}
	}
	return out.String()
}

// IsBlackKey reports whether the MIDI note is a sharp.
func IsBlackKey(note int) bool {
	switch note % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI note as e.g. C4 (middle C is 60).
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
