// ABOUTME: Tests for the TUI model
// ABOUTME: Tests status updates and keyboard handling
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/op183/AStream/internal/meter"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)

	if model.state != "idle" {
		t.Errorf("expected initial state idle, got %q", model.state)
	}
	if model.muted {
		t.Error("expected unmuted initially")
	}
	if model.average != meter.Silence || model.peak != meter.Silence {
		t.Error("expected silence levels initially")
	}
}

func TestStatusMsgUpdatesFields(t *testing.T) {
	model := NewModel(nil)

	sessions := 2
	avg, peak := -42.5, -30.0
	model.applyStatus(StatusMsg{
		State:    "recording",
		Track:    "http://radio.example/stream",
		File:     "26_08_30_14-05-09.37.ogg",
		Sessions: &sessions,
		Average:  &avg,
		Peak:     &peak,
	})

	if model.state != "recording" {
		t.Errorf("expected recording, got %q", model.state)
	}
	if model.sessions != 2 {
		t.Errorf("expected 2 sessions, got %d", model.sessions)
	}
	if model.average != -42.5 || model.peak != -30.0 {
		t.Errorf("unexpected levels: %f / %f", model.average, model.peak)
	}
}

func TestStatusMsgPartialUpdateKeepsRest(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{Track: "stream-a"})
	model.applyStatus(StatusMsg{State: "recording"})

	if model.track != "stream-a" {
		t.Errorf("partial update clobbered track: %q", model.track)
	}
	if model.state != "recording" {
		t.Errorf("expected recording, got %q", model.state)
	}
}

func TestMuteKeyTogglesAndSignals(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m := updated.(Model)

	if !m.muted {
		t.Error("expected muted after pressing m")
	}
	select {
	case v := <-ctrl.Mute:
		if !v {
			t.Error("expected mute=true signal")
		}
	default:
		t.Error("expected a mute signal on the channel")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if updated.(Model).muted {
		t.Error("expected unmuted after second press")
	}
}

func TestQuitKeysSignalQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyCtrlD},
	} {
		ctrl := NewControls()
		model := NewModel(ctrl)

		_, cmd := model.Update(key)
		if cmd == nil {
			t.Errorf("key %v: expected tea.Quit command", key)
		}
		select {
		case <-ctrl.Quit:
		default:
			t.Errorf("key %v: expected quit signal", key)
		}
	}
}

func TestViewShowsRecordingFile(t *testing.T) {
	model := NewModel(nil)
	model.width = 80
	model.applyStatus(StatusMsg{State: "recording", File: "26_08_30_14-05-09.37.ogg"})

	view := model.View()
	if !strings.Contains(view, "RECORDING") {
		t.Error("expected RECORDING in view")
	}
	if !strings.Contains(view, "26_08_30_14-05-09.37.ogg") {
		t.Error("expected session file name in view")
	}
}

func TestLevelBar(t *testing.T) {
	if got := levelBar(meter.Silence); strings.Contains(got, "#") {
		t.Errorf("silence must render an empty bar, got %s", got)
	}
	if got := levelBar(0); strings.Contains(got, "-") {
		t.Errorf("full scale must render a full bar, got %s", got)
	}
}
