// ABOUTME: Runtime configuration and validation
// ABOUTME: Holds thresholds, output location, and playback options
package config

import "fmt"

const (
	// DefaultRecordThreshold is the average-power level above which
	// recording starts, in dBFS.
	DefaultRecordThreshold = -50.0

	// MinThreshold and MaxThreshold bound the legal dBFS range.
	MinThreshold = -120.0
	MaxThreshold = 0.0

	// DefaultVolume is the initial playback volume percentage.
	DefaultVolume = 100
)

// Config holds the runtime configuration of the player.
type Config struct {
	// URL is the stream URL, playlist URL, or local file path to play.
	URL string

	// OutputDir is where recording sessions are written.
	OutputDir string

	// RecordThreshold starts recording when average power rises above it
	// (dBFS, strict comparison).
	RecordThreshold float64

	// SilenceThreshold stops recording when peak power falls below it
	// (dBFS, strict comparison). May equal RecordThreshold; a gap between
	// the two provides hysteresis against rapid toggling.
	SilenceThreshold float64

	// Volume is the initial playback volume (0-100).
	Volume int

	// LogFile is the log destination path.
	LogFile string

	// NoTUI disables the terminal UI and streams logs to stdout instead.
	NoTUI bool
}

// Validate checks the configuration before the engine starts. Threshold
// errors here abort the process; they are never tolerated at runtime.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("no stream URL or file given")
	}
	if err := validateThreshold("record threshold", c.RecordThreshold); err != nil {
		return err
	}
	if err := validateThreshold("silence threshold", c.SilenceThreshold); err != nil {
		return err
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume must be in [0,100], got %d", c.Volume)
	}
	return nil
}

func validateThreshold(name string, v float64) error {
	if v < MinThreshold || v > MaxThreshold {
		return fmt.Errorf("%s must be in [%.1f,%.1f] dBFS, got %.1f",
			name, MinThreshold, MaxThreshold, v)
	}
	return nil
}
