// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for playback backends with software gain
package output

// Output represents an audio playback device.
type Output interface {
	// Open initializes the device for the given stream parameters.
	Open(sampleRate, channels int) error

	// Write plays interleaved int16 samples (blocks until accepted).
	Write(samples []int16) error

	// SetVolume sets playback volume (0-100).
	SetVolume(volume int)

	// SetMuted sets the mute state. Mute affects playback gain only;
	// metering always observes the unattenuated signal.
	SetMuted(muted bool)

	// IsMuted returns the mute state.
	IsMuted() bool

	// Close releases device resources.
	Close() error
}

// applyVolume returns an attenuated copy of samples. The input is left
// untouched so metering and recording see the original signal.
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := volumeMultiplier(volume, muted)

	result := make([]int16, len(samples))
	if multiplier == 0 {
		return result
	}
	for i, sample := range samples {
		result[i] = int16(float64(sample) * multiplier)
	}
	return result
}

// volumeMultiplier calculates the linear gain for a volume percentage.
func volumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	return float64(volume) / 100.0
}
