// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Shows playback and VOX state, levels, and the mute toggle
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/op183/AStream/internal/meter"
)

// StatusMsg updates the UI with the latest player state. Nil/empty fields
// leave the previous value unchanged.
type StatusMsg struct {
	State    string
	Track    string
	File     string
	Sessions *int
	Average  *float64
	Peak     *float64
}

// Model represents the TUI state.
type Model struct {
	// Playback
	track string
	muted bool

	// VOX
	state    string
	file     string
	sessions int
	average  float64
	peak     float64

	// Dimensions
	width  int
	height int

	controls *Controls
}

// NewModel creates the initial TUI model.
func NewModel(ctrl *Controls) Model {
	return Model{
		state:    "idle",
		average:  meter.Silence,
		peak:     meter.Silence,
		controls: ctrl,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		m.muted = !m.muted
		if m.controls != nil {
			select {
			case m.controls.Mute <- m.muted:
			default:
			}
		}
	case "q", "ctrl+c", "ctrl+d":
		if m.controls != nil {
			select {
			case m.controls.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	}

	return m, nil
}

// applyStatus folds a status update into the model.
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Track != "" {
		m.track = msg.Track
	}
	if msg.File != "" {
		m.file = msg.File
	}
	if msg.Sessions != nil {
		m.sessions = *msg.Sessions
	}
	if msg.Average != nil {
		m.average = *msg.Average
	}
	if msg.Peak != nil {
		m.peak = *msg.Peak
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := "AStream\n\n"

	track := m.track
	if track == "" {
		track = "(waiting for stream)"
	}
	s += fmt.Sprintf("  Playing:  %s\n", track)

	playback := "on"
	if m.muted {
		playback = "muted"
	}
	s += fmt.Sprintf("  Output:   %s\n\n", playback)

	s += fmt.Sprintf("  Level:    %s %6.1f dBFS (peak %6.1f)\n", levelBar(m.average), m.average, m.peak)

	voxLine := strings.ToUpper(m.state)
	if m.state == "recording" && m.file != "" {
		voxLine += "  ->  " + m.file
	}
	s += fmt.Sprintf("  VOX:      %s\n", voxLine)
	s += fmt.Sprintf("  Sessions: %d\n", m.sessions)

	s += "\n  [m] mute  [q] quit\n"

	return s
}

// levelBar renders a coarse dBFS level bar over the -60..0 range.
func levelBar(db float64) string {
	const width = 20
	const floor = -60.0

	filled := 0
	if db > floor {
		filled = int((db - floor) / -floor * width)
		if filled > width {
			filled = width
		}
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
