// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and PCM buffers shared by the pipeline
package audio

import (
	"encoding/binary"
	"time"
)

// Format describes a PCM stream format.
type Format struct {
	Codec      string // source codec name ("mp3", "flac", ...)
	SampleRate int
	Channels   int
}

// Buffer represents one tick of decoded PCM audio. Samples are interleaved
// int16. The pipeline owns the buffer for the duration of the tick; consumers
// must not retain it afterwards.
type Buffer struct {
	Samples []int16
	Format  Format
}

// Frames returns the number of sample frames in the buffer.
func (b Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback duration of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// SamplesToBytes converts interleaved int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToSamples converts little-endian bytes to interleaved int16 samples.
// A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
