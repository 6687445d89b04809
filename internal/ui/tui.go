// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Controls holds channels for keyboard control communication.
type Controls struct {
	Mute chan bool
	Quit chan struct{}
}

// NewControls creates a control channel set.
func NewControls() *Controls {
	return &Controls{
		Mute: make(chan bool, 10),
		Quit: make(chan struct{}, 1),
	}
}

// Run starts the TUI program.
func Run(ctrl *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
