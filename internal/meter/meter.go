// ABOUTME: Power metering for the live output stage
// ABOUTME: Derives average and peak-hold dBFS readings from backend levels
package meter

import "math"

// Silence is the sentinel reading reported when metering is unavailable.
// It is below any configurable threshold, so the VOX engine never triggers.
const Silence = -160.0

// PowerReading holds the per-tick power levels in dBFS, reduced across
// channels by taking the maximum per metric.
type PowerReading struct {
	Average float64
	Peak    float64
}

// ChannelPower holds the power levels of a single channel in dBFS.
type ChannelPower struct {
	Average float64
	Peak    float64
}

// LevelSource is the metering capability of an audio output backend.
// Metering is off by default and must be enabled before ReadLevels
// reports anything useful.
type LevelSource interface {
	// EnableMetering turns level measurement on.
	EnableMetering()

	// DisableMetering turns level measurement off again.
	DisableMetering()

	// ReadLevels returns the latest per-channel levels and whether
	// metering is currently enabled and has seen audio.
	ReadLevels() ([]ChannelPower, bool)
}

// Probe samples power readings from an output backend's metering facility.
// A nil source degrades to permanent silence readings.
type Probe struct {
	src LevelSource
}

// NewProbe creates a probe over the given level source.
func NewProbe(src LevelSource) *Probe {
	return &Probe{src: src}
}

// Enable turns on metering at the source. Call once at startup.
func (p *Probe) Enable() {
	if p.src != nil {
		p.src.EnableMetering()
	}
}

// Disable releases the metering flag at the source.
func (p *Probe) Disable() {
	if p.src != nil {
		p.src.DisableMetering()
	}
}

// Sample reads the instantaneous levels and reduces them across channels,
// letting the louder channel dominate the decision. If metering is
// unavailable it reports the silence sentinel instead of failing.
func (p *Probe) Sample() PowerReading {
	if p.src == nil {
		return PowerReading{Average: Silence, Peak: Silence}
	}

	levels, ok := p.src.ReadLevels()
	if !ok || len(levels) == 0 {
		return PowerReading{Average: Silence, Peak: Silence}
	}

	reading := PowerReading{Average: Silence, Peak: Silence}
	for _, ch := range levels {
		reading.Average = math.Max(reading.Average, ch.Average)
		reading.Peak = math.Max(reading.Peak, ch.Peak)
	}
	return reading
}

// Analyze computes per-channel average (RMS) and instantaneous peak power in
// dBFS from interleaved int16 samples.
func Analyze(samples []int16, channels int) []ChannelPower {
	if channels <= 0 || len(samples) < channels {
		return nil
	}

	frames := len(samples) / channels
	levels := make([]ChannelPower, channels)

	for ch := 0; ch < channels; ch++ {
		var sumSquares float64
		var peak float64

		for f := 0; f < frames; f++ {
			v := float64(samples[f*channels+ch]) / 32768.0
			sumSquares += v * v
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}

		rms := math.Sqrt(sumSquares / float64(frames))
		levels[ch] = ChannelPower{
			Average: amplitudeToDB(rms),
			Peak:    amplitudeToDB(peak),
		}
	}

	return levels
}

// amplitudeToDB converts a normalized [0,1] amplitude to dBFS, floored at
// the silence sentinel.
func amplitudeToDB(a float64) float64 {
	if a <= 0 {
		return Silence
	}
	db := 20 * math.Log10(a)
	if db < Silence {
		return Silence
	}
	return db
}
