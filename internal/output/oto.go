// ABOUTME: Oto-based audio output implementation
// ABOUTME: PCM playback with software volume control and level metering
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/op183/AStream/internal/audio"
	"github.com/op183/AStream/internal/meter"
)

// peakDecayDBPerSec is the fall rate of the peak-hold meter.
const peakDecayDBPerSec = 20.0

// Oto output implementation using the oto library. It also implements
// meter.LevelSource: when metering is enabled, every written buffer updates
// per-channel average and peak-hold levels before volume is applied.
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int

	mu     sync.Mutex
	volume int
	muted  bool
	ready  bool

	// Metering state; guarded separately so level reads never contend
	// with the blocking pipe write.
	meterMu  sync.Mutex
	metering bool
	levels   []meter.ChannelPower
	measured bool
}

// NewOto creates a new Oto output. Metering is off until enabled.
func NewOto() *Oto {
	return &Oto{volume: 100}
}

// Open initializes the output device.
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// oto allows a single context per process; reuse it when the format
	// matches and keep going when it does not.
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			log.Printf("Warning: format change (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization, continuing with existing context",
				o.sampleRate, o.channels, sampleRate, channels)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels

	// Continuous streaming through a pipe feeding one persistent player
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// Write outputs audio samples, blocking until the device accepts them.
// Levels are measured from the unattenuated samples, then volume and mute
// are applied to a copy for playback.
func (o *Oto) Write(samples []int16) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return fmt.Errorf("output not initialized")
	}
	volume, muted := o.volume, o.muted
	channels, sampleRate := o.channels, o.sampleRate
	pw := o.pipeWriter
	o.mu.Unlock()

	o.updateLevels(samples, channels, sampleRate)

	attenuated := applyVolume(samples, volume, muted)

	if _, err := pw.Write(audio.SamplesToBytes(attenuated)); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// SetVolume sets the playback volume (0-100).
func (o *Oto) SetVolume(volume int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume = volume
}

// SetMuted sets the mute state.
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.muted = muted
}

// IsMuted returns the mute state.
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// Close stops playback and releases the device.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
	}
	o.ready = false
	return nil
}

// EnableMetering turns on level measurement.
func (o *Oto) EnableMetering() {
	o.meterMu.Lock()
	defer o.meterMu.Unlock()
	o.metering = true
}

// DisableMetering turns off level measurement and clears held levels.
func (o *Oto) DisableMetering() {
	o.meterMu.Lock()
	defer o.meterMu.Unlock()
	o.metering = false
	o.levels = nil
	o.measured = false
}

// ReadLevels returns the latest per-channel levels.
func (o *Oto) ReadLevels() ([]meter.ChannelPower, bool) {
	o.meterMu.Lock()
	defer o.meterMu.Unlock()

	if !o.metering || !o.measured {
		return nil, false
	}
	out := make([]meter.ChannelPower, len(o.levels))
	copy(out, o.levels)
	return out, true
}

// updateLevels measures the buffer and folds it into the peak-hold meter.
func (o *Oto) updateLevels(samples []int16, channels, sampleRate int) {
	o.meterMu.Lock()
	metering := o.metering
	o.meterMu.Unlock()
	if !metering {
		return
	}

	measured := meter.Analyze(samples, channels)
	if measured == nil {
		return
	}

	var dt float64
	if sampleRate > 0 && channels > 0 {
		dt = float64(len(samples)/channels) / float64(sampleRate)
	}
	decay := peakDecayDBPerSec * dt

	o.meterMu.Lock()
	defer o.meterMu.Unlock()
	if !o.metering {
		return
	}

	if len(o.levels) != len(measured) {
		o.levels = make([]meter.ChannelPower, len(measured))
		for i := range o.levels {
			o.levels[i] = meter.ChannelPower{Average: meter.Silence, Peak: meter.Silence}
		}
	}

	for ch, m := range measured {
		held := o.levels[ch].Peak - decay
		if m.Peak > held {
			held = m.Peak
		}
		if held < meter.Silence {
			held = meter.Silence
		}
		o.levels[ch] = meter.ChannelPower{Average: m.Average, Peak: held}
	}
	o.measured = true
}
