// ABOUTME: Tests for power metering
// ABOUTME: Tests dBFS math, channel reduction, and the silence fallback
package meter

import (
	"math"
	"testing"
)

type stubSource struct {
	levels  []ChannelPower
	ok      bool
	enabled bool
}

func (s *stubSource) EnableMetering()  { s.enabled = true }
func (s *stubSource) DisableMetering() { s.enabled = false }
func (s *stubSource) ReadLevels() ([]ChannelPower, bool) {
	return s.levels, s.ok
}

func TestSampleReducesChannelsByMax(t *testing.T) {
	src := &stubSource{
		levels: []ChannelPower{
			{Average: -40, Peak: -20},
			{Average: -30, Peak: -25},
		},
		ok: true,
	}
	probe := NewProbe(src)

	r := probe.Sample()
	if r.Average != -30 {
		t.Errorf("expected average -30 (louder channel), got %f", r.Average)
	}
	if r.Peak != -20 {
		t.Errorf("expected peak -20 (louder channel), got %f", r.Peak)
	}
}

func TestSampleNilSourceReportsSilence(t *testing.T) {
	probe := NewProbe(nil)

	r := probe.Sample()
	if r.Average != Silence || r.Peak != Silence {
		t.Errorf("expected silence sentinel, got %+v", r)
	}
}

func TestSampleUnavailableMeteringReportsSilence(t *testing.T) {
	probe := NewProbe(&stubSource{ok: false})

	r := probe.Sample()
	if r.Average != Silence || r.Peak != Silence {
		t.Errorf("expected silence sentinel, got %+v", r)
	}
}

func TestEnableDisablePropagate(t *testing.T) {
	src := &stubSource{}
	probe := NewProbe(src)

	probe.Enable()
	if !src.enabled {
		t.Error("expected source metering enabled")
	}

	probe.Disable()
	if src.enabled {
		t.Error("expected source metering disabled")
	}
}

func TestAnalyzeFullScale(t *testing.T) {
	samples := make([]int16, 480)
	for i := range samples {
		samples[i] = -32768
	}

	levels := Analyze(samples, 1)
	if len(levels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(levels))
	}

	// Full-scale square wave: 0 dBFS average and peak
	if math.Abs(levels[0].Average) > 0.01 {
		t.Errorf("expected ~0 dBFS average, got %f", levels[0].Average)
	}
	if math.Abs(levels[0].Peak) > 0.01 {
		t.Errorf("expected ~0 dBFS peak, got %f", levels[0].Peak)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	samples := make([]int16, 480)

	levels := Analyze(samples, 2)
	for ch, l := range levels {
		if l.Average != Silence || l.Peak != Silence {
			t.Errorf("channel %d: expected silence sentinel, got %+v", ch, l)
		}
	}
}

func TestAnalyzeHalfScale(t *testing.T) {
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = 16384
	}

	levels := Analyze(samples, 1)

	// Half amplitude is about -6.02 dBFS
	if math.Abs(levels[0].Peak-(-6.02)) > 0.05 {
		t.Errorf("expected ~-6.02 dBFS peak, got %f", levels[0].Peak)
	}
}

func TestAnalyzePerChannel(t *testing.T) {
	// Left channel loud, right channel silent
	samples := make([]int16, 200)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 16384
	}

	levels := Analyze(samples, 2)
	if len(levels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(levels))
	}
	if levels[0].Peak == Silence {
		t.Error("expected left channel above silence")
	}
	if levels[1].Peak != Silence {
		t.Errorf("expected right channel at silence, got %f", levels[1].Peak)
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	if levels := Analyze(nil, 2); levels != nil {
		t.Errorf("expected nil for empty input, got %+v", levels)
	}
	if levels := Analyze([]int16{1, 2, 3}, 0); levels != nil {
		t.Errorf("expected nil for zero channels, got %+v", levels)
	}
}
