// ABOUTME: Tests for configuration validation
// ABOUTME: Tests threshold ranges and required fields
package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		URL:              "http://example.com/stream.mp3",
		OutputDir:        ".",
		RecordThreshold:  DefaultRecordThreshold,
		SilenceThreshold: DefaultRecordThreshold,
		Volume:           DefaultVolume,
	}
}

func TestValidateAccepts(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateBoundaryThresholds(t *testing.T) {
	c := validConfig()
	c.RecordThreshold = -120.0
	c.SilenceThreshold = 0.0
	if err := c.Validate(); err != nil {
		t.Errorf("range endpoints must be legal, got %v", err)
	}
}

func TestValidateEqualThresholdsAllowed(t *testing.T) {
	c := validConfig()
	c.RecordThreshold = -42
	c.SilenceThreshold = -42
	if err := c.Validate(); err != nil {
		t.Errorf("equal thresholds are configurable behavior, got %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"record too low", func(c *Config) { c.RecordThreshold = -120.1 }, "record threshold"},
		{"record too high", func(c *Config) { c.RecordThreshold = 0.1 }, "record threshold"},
		{"silence too low", func(c *Config) { c.SilenceThreshold = -200 }, "silence threshold"},
		{"silence too high", func(c *Config) { c.SilenceThreshold = 5 }, "silence threshold"},
		{"missing url", func(c *Config) { c.URL = "" }, "no stream URL"},
		{"volume", func(c *Config) { c.Volume = 150 }, "volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
