// ABOUTME: Voice-operated switch decision engine
// ABOUTME: Two-state hysteresis machine over per-tick power readings
package vox

import "github.com/op183/AStream/internal/meter"

// State is the recording state of the switch.
type State int

const (
	StateIdle State = iota
	StateRecording
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	}
	return "unknown"
}

// Decision is the transition proposed for one tick.
type Decision int

const (
	// DecisionNone keeps the current state.
	DecisionNone Decision = iota

	// DecisionStart transitions Idle -> Recording.
	DecisionStart

	// DecisionStop transitions Recording -> Idle.
	DecisionStop
)

// Detector evaluates power readings against two thresholds with hysteresis.
// Evaluate proposes a transition without mutating state; the caller commits
// it with Advance once the matching resource operation has succeeded, so a
// failed session open never leaves the machine claiming to record.
//
// Detector itself is not safe for concurrent use; the orchestrator
// serializes access under its tick lock.
type Detector struct {
	recordThreshold  float64 // dBFS, average power must exceed to start
	silenceThreshold float64 // dBFS, peak power must drop below to stop
	state            State
}

// NewDetector creates a detector starting in the Idle state. Equal
// thresholds are legal; they permit rapid toggling near the boundary.
func NewDetector(recordThreshold, silenceThreshold float64) *Detector {
	return &Detector{
		recordThreshold:  recordThreshold,
		silenceThreshold: silenceThreshold,
		state:            StateIdle,
	}
}

// Evaluate applies the rule for the current state to the reading. Only the
// rule matching the current state is considered, and both comparisons are
// strict: equality never triggers.
func (d *Detector) Evaluate(r meter.PowerReading) Decision {
	switch d.state {
	case StateIdle:
		if r.Average > d.recordThreshold {
			return DecisionStart
		}
	case StateRecording:
		if r.Peak < d.silenceThreshold {
			return DecisionStop
		}
	}
	return DecisionNone
}

// Advance commits a previously evaluated decision.
func (d *Detector) Advance(dec Decision) {
	switch dec {
	case DecisionStart:
		d.state = StateRecording
	case DecisionStop:
		d.state = StateIdle
	}
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}
