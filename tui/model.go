package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go-juno/bridge"
	"go-juno/config"
	"go-juno/debug"
	"go-juno/midi"
	"go-juno/params"
	"go-juno/preset"
	"go-juno/theme"
	"go-juno/voice"
)

type pane int

const (
	paneParams pane = iota
	panePresets
	paneDevices
	paneCount
)

func (p pane) String() string {
	return [...]string{"PARAMS", "PRESETS", "DEVICES"}[p]
}

// Router is the part of midi.Router the UI drives.
type Router interface {
	Select(id string) error
	Selected() (string, bool)
	Events() <-chan midi.DeviceEvent
	ReleaseAll() int
}

type Devices interface {
	Ports() []midi.Port
}

type Engine interface {
	State() string
}

type Deps struct {
	Controls *params.Controls
	Store    *preset.Store
	Router   Router
	Devices  Devices
	Tracker  *voice.Tracker
	Keyboard *midi.VirtualKeyboard
	Engine   Engine
	// Init asks the bridge to build the engine.
	Init     func()
	Statuses <-chan bridge.Status
	Config   *config.Config
	// SaveConfig persists Config; nil skips saving.
	SaveConfig func(*config.Config) error
}

type Model struct {
	deps  Deps
	Theme *theme.Theme

	pane     pane
	cursor   [paneCount]int
	ids      []params.ID
	quitting bool

	input     textinput.Model
	naming    bool   // save-as prompt open
	confirm   string // preset awaiting delete confirmation
	message   string
	status    bridge.Status
	hasStatus bool
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

type StatusMsg bridge.Status

const tickRate = 50 * time.Millisecond

func NewModel(deps Deps, th *theme.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "preset name"
	ti.CharLimit = 64
	ti.Width = 32
	return Model{
		deps:  deps,
		Theme: th,
		ids:   params.All(),
		input: ti,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func ListenForDevices(r Router) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-r.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForStatus(ch <-chan bridge.Status) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return StatusMsg(s)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		ListenForDevices(m.deps.Router),
		ListenForStatus(m.deps.Statuses),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.naming {
			return m.updateNaming(msg)
		}
		if m.confirm != "" {
			return m.updateConfirm(msg), nil
		}
		return m.handleKey(msg)

	case TickMsg:
		m.deps.Keyboard.Expire(time.Time(msg))
		return m, tick()

	case DeviceEventMsg:
		ev := midi.DeviceEvent(msg)
		m.message = fmt.Sprintf("%s %s", ev.Port.Name, strings.ToLower(ev.Type.String()))
		m.clampCursor(paneDevices)
		return m, ListenForDevices(m.deps.Router)

	case StatusMsg:
		m.status = bridge.Status(msg)
		m.hasStatus = true
		if m.status.Kind == bridge.StatusError {
			m.message = "engine: " + m.status.Message
		}
		return m, ListenForStatus(m.deps.Statuses)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && midi.IsNoteKey(msg.Runes[0]) {
		m.deps.Keyboard.Press(msg.Runes[0])
		return m, nil
	}

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		m.deps.Keyboard.ReleaseAll()
		return m, tea.Quit

	case "tab":
		m.pane = (m.pane + 1) % paneCount
	case "shift+tab":
		m.pane = (m.pane + paneCount - 1) % paneCount

	case "up":
		m.move(-1)
	case "down":
		m.move(1)
	case "pgup":
		m.move(-8)
	case "pgdown":
		m.move(8)

	case "left", "right", "shift+left", "shift+right":
		if m.pane == paneParams {
			steps := 1
			if strings.HasPrefix(key, "shift+") {
				steps = 10
			}
			if strings.HasSuffix(key, "left") {
				steps = -steps
			}
			id := m.ids[m.cursor[paneParams]]
			m.deps.Controls.Nudge(id, steps)
		}

	case "enter":
		m.activate()

	case "-":
		m.message = fmt.Sprintf("octave %d", m.deps.Keyboard.ShiftOctave(-1))
	case "=":
		m.message = fmt.Sprintf("octave %d", m.deps.Keyboard.ShiftOctave(1))
	case "[":
		m.message = fmt.Sprintf("velocity %d", m.deps.Keyboard.SetVelocity(int(m.deps.Keyboard.Velocity())-10))
	case "]":
		m.message = fmt.Sprintf("velocity %d", m.deps.Keyboard.SetVelocity(int(m.deps.Keyboard.Velocity())+10))

	case " ":
		n := m.deps.Keyboard.ReleaseAll() + m.deps.Router.ReleaseAll()
		m.message = fmt.Sprintf("released %d notes", n)

	case "R":
		m.deps.Controls.Reset()
		m.message = "parameters reset"

	case "I":
		if m.deps.Init != nil {
			m.deps.Init()
			m.message = "engine init requested"
		}

	case "S":
		m.naming = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case "D":
		if m.pane == panePresets {
			if name, ok := m.currentPreset(); ok {
				m.confirm = name
			}
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	m.cursor[m.pane] += delta
	m.clampCursor(m.pane)
}

func (m *Model) clampCursor(p pane) {
	n := m.rows(p)
	c := m.cursor[p]
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	m.cursor[p] = c
}

func (m Model) rows(p pane) int {
	switch p {
	case paneParams:
		return len(m.ids)
	case panePresets:
		return len(m.deps.Store.Names())
	case paneDevices:
		return len(m.deps.Devices.Ports()) + 1 // row 0 is "none"
	}
	return 0
}

func (m Model) currentPreset() (string, bool) {
	names := m.deps.Store.Names()
	c := m.cursor[panePresets]
	if c < 0 || c >= len(names) {
		return "", false
	}
	return names[c], true
}

func (m *Model) activate() {
	switch m.pane {
	case panePresets:
		name, ok := m.currentPreset()
		if !ok {
			return
		}
		if err := m.deps.Store.Recall(name); err != nil {
			m.message = err.Error()
			return
		}
		m.message = "loaded " + name
		if m.deps.Config != nil {
			m.deps.Config.UI.LastPreset = name
			m.saveConfig()
		}

	case paneDevices:
		c := m.cursor[paneDevices]
		if c == 0 {
			m.deps.Router.Select("")
			m.message = "no input selected"
			return
		}
		ports := m.deps.Devices.Ports()
		if c-1 >= len(ports) {
			return
		}
		port := ports[c-1]
		if err := m.deps.Router.Select(port.ID); err != nil {
			m.message = err.Error()
			return
		}
		m.message = "input: " + port.Name
		if m.deps.Config != nil {
			m.deps.Config.AddController(config.ControllerConfig{PortName: port.Name, AutoConnect: true})
			m.deps.Config.UI.LastDevice = port.Name
			m.saveConfig()
		}
	}
}

func (m *Model) saveConfig() {
	if m.deps.SaveConfig == nil {
		return
	}
	if err := m.deps.SaveConfig(m.deps.Config); err != nil {
		debug.Warn("tui", "save config: %v", err)
	}
}

func (m Model) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.naming = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.naming = false
		m.input.Blur()
		m.saveAs(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) saveAs(name string) {
	snap, err := m.deps.Store.Capture()
	if err == nil {
		err = m.deps.Store.Save(context.Background(), strings.TrimSpace(name), snap)
	}
	switch {
	case err == nil:
		m.message = "saved " + strings.TrimSpace(name)
	case errors.Is(err, preset.ErrPersist):
		m.message = "saved in memory only: " + err.Error()
	default:
		m.message = err.Error()
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) Model {
	name := m.confirm
	m.confirm = ""
	if msg.String() != "y" {
		m.message = "delete cancelled"
		return m
	}
	if err := m.deps.Store.Delete(context.Background(), name); err != nil && !errors.Is(err, preset.ErrPersist) {
		m.message = err.Error()
		return m
	}
	m.message = "deleted " + name
	m.clampCursor(panePresets)
	return m
}
