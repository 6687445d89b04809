// ABOUTME: VOX orchestrator driving the record sink from live buffers
// ABOUTME: One locked tick: measure, decide, transition the sink, append
package engine

import (
	"log"
	"sync"

	"github.com/op183/AStream/internal/audio"
	"github.com/op183/AStream/internal/meter"
	"github.com/op183/AStream/internal/vox"
)

// Meter samples power readings from the live output stage.
type Meter interface {
	Enable()
	Disable()
	Sample() meter.PowerReading
}

// Sink owns the recording session resource.
type Sink interface {
	Open(format audio.Format) error
	Append(buf audio.Buffer) error
	Close() error
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Probe    Meter
	Detector *vox.Detector
	Sink     Sink

	// Detach unregisters the buffer tap. Shutdown calls it first and
	// relies on it to block until any in-flight tick has drained.
	Detach func()

	// OnTransition, if set, is notified after a committed state change.
	// It is called outside the tick lock.
	OnTransition func(vox.State)
}

// Engine is the buffer-delivery handler. Every tick runs as one atomic
// unit under a single mutex guarding the detector state and the sink
// handle together, so "state is Recording" and "a session exists" are
// always equivalent when observed from any goroutine.
type Engine struct {
	probe        Meter
	detector     *vox.Detector
	sink         Sink
	detach       func()
	onTransition func(vox.State)

	mu          sync.Mutex
	down        bool
	sessions    int
	lastReading meter.PowerReading
}

// New creates the orchestrator and enables metering at the probe.
func New(cfg Config) *Engine {
	e := &Engine{
		probe:        cfg.Probe,
		detector:     cfg.Detector,
		sink:         cfg.Sink,
		detach:       cfg.Detach,
		onTransition: cfg.OnTransition,
		lastReading:  meter.PowerReading{Average: meter.Silence, Peak: meter.Silence},
	}
	e.probe.Enable()
	return e
}

// OnBuffer processes one delivered buffer. Ordering within the tick is
// fixed: the session opened by a tick's decision receives that same tick's
// buffer as its first content, because Open completes under the lock
// before Append runs.
func (e *Engine) OnBuffer(buf audio.Buffer) {
	var fired vox.State
	var notify bool

	e.mu.Lock()
	if e.down {
		e.mu.Unlock()
		return
	}

	reading := e.probe.Sample()
	e.lastReading = reading

	switch e.detector.Evaluate(reading) {
	case vox.DecisionStart:
		if err := e.sink.Open(buf.Format); err != nil {
			// Absorbed: stay Idle, the next qualifying reading retries
			log.Printf("Recording not started: %v", err)
		} else {
			e.detector.Advance(vox.DecisionStart)
			e.sessions++
			fired, notify = vox.StateRecording, true
		}
	case vox.DecisionStop:
		if err := e.sink.Close(); err != nil {
			log.Printf("Error closing recording session: %v", err)
		}
		e.detector.Advance(vox.DecisionStop)
		fired, notify = vox.StateIdle, true
	}

	if err := e.sink.Append(buf); err != nil {
		// Never interrupts playback or the decision loop
		log.Printf("Recording write failed: %v", err)
	}
	e.mu.Unlock()

	if notify && e.onTransition != nil {
		e.onTransition(fired)
	}
}

// State returns the current VOX state.
func (e *Engine) State() vox.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.State()
}

// LastReading returns the most recent power reading.
func (e *Engine) LastReading() meter.PowerReading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReading
}

// Sessions returns how many recording sessions have been opened.
func (e *Engine) Sessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// Shutdown detaches the buffer tap, force-closes any open session
// regardless of state, and releases the metering flag. No tick runs after
// it returns; repeated calls are no-ops.
func (e *Engine) Shutdown() {
	if e.detach != nil {
		e.detach()
	}

	e.mu.Lock()
	if e.down {
		e.mu.Unlock()
		return
	}
	e.down = true

	if err := e.sink.Close(); err != nil {
		log.Printf("Error closing recording session: %v", err)
	}
	if e.detector.State() == vox.StateRecording {
		e.detector.Advance(vox.DecisionStop)
	}
	e.mu.Unlock()

	e.probe.Disable()
}
