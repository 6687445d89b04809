// ABOUTME: Tests for the VOX decision engine
// ABOUTME: Tests hysteresis transitions, strict boundaries, and idempotence
package vox

import (
	"testing"

	"github.com/op183/AStream/internal/meter"
)

func reading(avg, peak float64) meter.PowerReading {
	return meter.PowerReading{Average: avg, Peak: peak}
}

func TestStartWhenAverageExceedsThreshold(t *testing.T) {
	d := NewDetector(-50, -50)

	dec := d.Evaluate(reading(-40, -40))
	if dec != DecisionStart {
		t.Fatalf("expected DecisionStart, got %v", dec)
	}

	d.Advance(dec)
	if d.State() != StateRecording {
		t.Errorf("expected recording state, got %v", d.State())
	}
}

func TestNoStartAtExactThreshold(t *testing.T) {
	d := NewDetector(-50, -50)

	if dec := d.Evaluate(reading(-50, -50)); dec != DecisionNone {
		t.Errorf("equality must not trigger a start, got %v", dec)
	}
}

func TestStopWhenPeakFallsBelowThreshold(t *testing.T) {
	d := NewDetector(-50, -50)
	d.Advance(DecisionStart)

	dec := d.Evaluate(reading(-60, -55))
	if dec != DecisionStop {
		t.Fatalf("expected DecisionStop, got %v", dec)
	}

	d.Advance(dec)
	if d.State() != StateIdle {
		t.Errorf("expected idle state, got %v", d.State())
	}
}

func TestNoStopAtExactThreshold(t *testing.T) {
	d := NewDetector(-50, -50)
	d.Advance(DecisionStart)

	if dec := d.Evaluate(reading(-60, -50)); dec != DecisionNone {
		t.Errorf("equality must not trigger a stop, got %v", dec)
	}
}

func TestRepeatedHighReadingsAreIdempotent(t *testing.T) {
	d := NewDetector(-50, -50)

	for i := 0; i < 5; i++ {
		dec := d.Evaluate(reading(-30, -30))
		if i == 0 {
			if dec != DecisionStart {
				t.Fatalf("tick %d: expected start, got %v", i, dec)
			}
		} else if dec != DecisionNone {
			t.Fatalf("tick %d: expected no further transition, got %v", i, dec)
		}
		d.Advance(dec)
	}

	if d.State() != StateRecording {
		t.Errorf("expected recording state, got %v", d.State())
	}
}

func TestOnlyCurrentStateRuleApplies(t *testing.T) {
	// Inverted thresholds: a reading can satisfy both rules, but only the
	// rule for the current state may fire in a tick.
	d := NewDetector(-60, -40)

	// avg -50 > -60 (start rule) and peak -50 < -40 (stop rule)
	dec := d.Evaluate(reading(-50, -50))
	if dec != DecisionStart {
		t.Fatalf("idle state must evaluate the start rule only, got %v", dec)
	}
	d.Advance(dec)

	dec = d.Evaluate(reading(-50, -50))
	if dec != DecisionStop {
		t.Fatalf("recording state must evaluate the stop rule only, got %v", dec)
	}
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	d := NewDetector(-50, -50)

	d.Evaluate(reading(-30, -30))
	if d.State() != StateIdle {
		t.Error("Evaluate must not change state before Advance")
	}
}

func TestEndToEndSequence(t *testing.T) {
	// Synthetic sequence from a known scenario: transitions at ticks 3 and 5
	// (1-based) with both thresholds at -50.
	levels := []float64{-60, -60, -40, -40, -55, -55}
	d := NewDetector(-50, -50)

	var starts, stops []int
	for i, lv := range levels {
		dec := d.Evaluate(reading(lv, lv))
		switch dec {
		case DecisionStart:
			starts = append(starts, i+1)
		case DecisionStop:
			stops = append(stops, i+1)
		}
		d.Advance(dec)
	}

	if len(starts) != 1 || starts[0] != 3 {
		t.Errorf("expected single start at tick 3, got %v", starts)
	}
	if len(stops) != 1 || stops[0] != 5 {
		t.Errorf("expected single stop at tick 5, got %v", stops)
	}
	if d.State() != StateIdle {
		t.Errorf("expected idle at end, got %v", d.State())
	}
}

func TestSilenceSentinelNeverTriggers(t *testing.T) {
	d := NewDetector(-120, -120)

	if dec := d.Evaluate(reading(meter.Silence, meter.Silence)); dec != DecisionNone {
		t.Errorf("silence sentinel must stay below any legal threshold, got %v", dec)
	}
}

func TestStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StateRecording.String() != "recording" {
		t.Error("unexpected state names")
	}
}
