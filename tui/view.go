package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-juno/midi"
	"go-juno/params"
	"go-juno/widgets"
)

const (
	barWidth    = 16
	listHeight  = 14
	stripOctave = 2
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	msgStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Surface()).
		Padding(0, 1)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("  ")
	out.WriteString(m.voicePads())
	out.WriteString("\n\n")
	out.WriteString(m.tabs())
	out.WriteString("\n\n")

	switch m.pane {
	case paneParams:
		out.WriteString(m.paramsView())
	case panePresets:
		out.WriteString(m.presetsView())
	case paneDevices:
		out.WriteString(m.devicesView())
	}
	out.WriteString("\n\n")
	out.WriteString(m.keyboardView())
	out.WriteString("\n\n")

	switch {
	case m.naming:
		out.WriteString("save as: " + m.input.View())
	case m.confirm != "":
		out.WriteString(msgStyle.Render(fmt.Sprintf("delete %q? y/n", m.confirm)))
	case m.message != "":
		out.WriteString(msgStyle.Render(m.message))
	}
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("tab:pane  ↑↓:move  ←→:adjust  enter:load/select  S:save  D:delete  R:reset  -/=:octave  [/]:vel  space:panic  q:quit"))
	return out.String()
}

func (m Model) header() string {
	engine := m.deps.Engine.State()
	if m.hasStatus {
		engine = strings.ToLower(m.status.String())
	}
	device := "none"
	if id, ok := m.deps.Router.Selected(); ok {
		device = id
		for _, p := range m.deps.Devices.Ports() {
			if p.ID == id {
				device = p.Name
			}
		}
	}
	return fmt.Sprintf("go-juno  engine:%s  input:%s  oct:%d vel:%d",
		engine, device, m.deps.Keyboard.Octave(), m.deps.Keyboard.Velocity())
}

// voicePads lights one pad per sounding note, up to the display count.
func (m Model) voicePads() string {
	n := m.deps.Tracker.Display()
	lit := m.deps.Tracker.DisplayCount()
	colors := make([][3]uint8, n)
	symbols := make([]rune, n)
	for i := range colors {
		if i < lit {
			colors[i] = m.Theme.RGB(0.6 + 0.4*float64(i)/float64(max(1, n-1)))
			symbols[i] = m.Theme.Symbols.Solid
		} else {
			colors[i] = m.Theme.RGB(0.2)
			symbols[i] = m.Theme.Symbols.Empty
		}
	}
	return widgets.RenderPadRow(colors, symbols)
}

func (m Model) tabs() string {
	on := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
	off := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	parts := make([]string, paneCount)
	for p := pane(0); p < paneCount; p++ {
		if p == m.pane {
			parts[p] = on.Render("[" + p.String() + "]")
		} else {
			parts[p] = off.Render(" " + p.String() + " ")
		}
	}
	return strings.Join(parts, " ")
}

// window returns the slice bounds that keep cursor visible.
func window(cursor, total int) (int, int) {
	start := 0
	if cursor >= listHeight {
		start = cursor - listHeight + 1
	}
	return start, min(total, start+listHeight)
}

func (m Model) row(selected bool, text string) string {
	cursor := " "
	style := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if selected {
		cursor = string(m.Theme.Symbols.Cursor)
		style = style.Foreground(m.Theme.Cursor())
	}
	return style.Render(cursor + " " + text)
}

func (m Model) paramsView() string {
	mirror := m.deps.Controls.Mirror()
	groupStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	barStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())

	cur := m.cursor[paneParams]
	start, end := window(cur, len(m.ids))
	var lines []string
	for i := start; i < end; i++ {
		id := m.ids[i]
		d := id.Describe()
		v, ok := mirror.Get(id)
		value := "--"
		norm := 0.0
		if ok {
			value = params.Format(id, v)
			if d.Max > d.Min {
				norm = (v - d.Min) / (d.Max - d.Min)
			}
		}
		bar := barStyle.Render(widgets.RenderBar(norm, barWidth, m.Theme.Symbols.BarFull, m.Theme.Symbols.BarEmpty))
		text := fmt.Sprintf("%-8s %-8s %s %s", groupStyle.Render(d.Group.String()), d.Label, bar, value)
		lines = append(lines, m.row(i == cur, text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) presetsView() string {
	names := m.deps.Store.Names()
	if len(names) == 0 {
		return "  (no presets)"
	}
	last := ""
	if m.deps.Config != nil {
		last = m.deps.Config.UI.LastPreset
	}
	cur := m.cursor[panePresets]
	start, end := window(cur, len(names))
	var lines []string
	for i := start; i < end; i++ {
		mark := ' '
		if r, err := m.deps.Store.Get(names[i]); err == nil && r.Builtin {
			mark = m.Theme.Symbols.Builtin
		}
		if names[i] == last {
			mark = m.Theme.Symbols.Selected
		}
		lines = append(lines, m.row(i == cur, fmt.Sprintf("%c %s", mark, names[i])))
	}
	return strings.Join(lines, "\n")
}

func (m Model) devicesView() string {
	selected, _ := m.deps.Router.Selected()
	cur := m.cursor[paneDevices]
	mark := func(on bool) rune {
		if on {
			return m.Theme.Symbols.Selected
		}
		return ' '
	}
	lines := []string{m.row(cur == 0, fmt.Sprintf("%c (none)", mark(selected == "")))}
	for i, p := range m.deps.Devices.Ports() {
		lines = append(lines, m.row(cur == i+1, fmt.Sprintf("%c %s", mark(p.ID == selected), p.Name)))
	}
	return strings.Join(lines, "\n")
}

// keyboardView shows two octaves from the virtual keyboard's base note,
// marking every sounding note from any source.
func (m Model) keyboardView() string {
	low := m.deps.Keyboard.Octave() * 12
	held := map[int]bool{}
	for _, n := range m.deps.Tracker.Sounding() {
		held[int(n)] = true
	}
	for _, n := range m.deps.Keyboard.Held() {
		held[int(n)] = true
	}
	s := m.Theme.Symbols
	strip := widgets.KeyStrip(low, 12*stripOctave+1, func(n int) bool { return held[n] }, s.KeyWhite, s.KeyBlack, s.KeyDown)
	label := lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render(
		fmt.Sprintf("%s  z-/ plays %s..%s", midi.VirtualID, widgets.NoteName(low), widgets.NoteName(low+16)))
	return lipgloss.NewStyle().Foreground(m.Theme.Success()).Render(strip) + "  " + label
}
