// ABOUTME: Recording sink owning the at-most-one open session
// ABOUTME: Encodes PCM to Opus-in-Ogg files named by UTC timestamp
package record

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	opus "gopkg.in/hraban/opus.v2"

	"github.com/op183/AStream/internal/audio"
)

const (
	// timestampLayout names session files to centisecond granularity,
	// e.g. 26_08_30_14-05-09.37.ogg.
	timestampLayout = "06_01_02_15-04-05.00"

	containerExt = ".ogg"

	// opusRate is the encode rate used when the mix rate is not one the
	// Opus codec accepts.
	opusRate = 48000

	// Opus RTP timestamps tick at 48kHz regardless of encode rate.
	rtpTicksPerFrame = opusRate / framesPerSecond

	// framesPerSecond fixes the 20ms Opus frame duration.
	framesPerSecond = 50

	opusPayloadType = 111
	maxPacketSize   = 4000
)

// Sink owns the recording session resource. At most one session is open at
// a time; Open, Append, and Close are mutually exclusive under one lock, so
// a buffer is never written to a session that is concurrently being closed.
type Sink struct {
	dir string

	mu      sync.Mutex
	session *session
}

// session is one continuous recording: a timestamp-named Ogg/Opus file
// open for sequential append.
type session struct {
	id        uuid.UUID
	path      string
	writer    *oggwriter.OggWriter
	encoder   *opus.Encoder
	resampler *audio.Resampler

	channels     int
	encodeRate   int
	frameSamples int // interleaved samples per 20ms frame

	pending []int16
	rtpSeq  uint16
	rtpTS   uint32
	ssrc    uint32
	frames  int
	started time.Time
}

// NewSink creates a sink writing sessions into dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Open creates a new session file for the given live mix format, creating
// the destination directory if absent. On failure the sink remains closed
// and no session is installed.
func (s *Sink) Open(format audio.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil
	}

	sess, err := s.openSession(format)
	if err != nil {
		return err
	}
	s.session = sess

	log.Printf("Recording session %s started: %s (%dHz, %d channels)",
		shortID(sess.id), sess.path, sess.encodeRate, sess.channels)
	return nil
}

func (s *Sink) openSession(format audio.Format) (*session, error) {
	if format.Channels < 1 || format.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count for recording: %d", format.Channels)
	}
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", format.SampleRate)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	encodeRate := format.SampleRate
	var resampler *audio.Resampler
	if !opusLegalRate(encodeRate) {
		encodeRate = opusRate
		resampler = audio.NewResampler(format.SampleRate, encodeRate, format.Channels)
	}

	id := uuid.New()
	path := filepath.Join(s.dir, time.Now().UTC().Format(timestampLayout)+containerExt)

	writer, err := oggwriter.New(path, uint32(encodeRate), uint16(format.Channels))
	if err != nil {
		return nil, fmt.Errorf("failed to create session file: %w", err)
	}

	encoder, err := opus.NewEncoder(encodeRate, format.Channels, opus.AppAudio)
	if err != nil {
		writer.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &session{
		id:           id,
		path:         path,
		writer:       writer,
		encoder:      encoder,
		resampler:    resampler,
		channels:     format.Channels,
		encodeRate:   encodeRate,
		frameSamples: encodeRate / framesPerSecond * format.Channels,
		ssrc:         id.ID(),
		started:      time.Now(),
	}, nil
}

// Append writes the buffer's samples to the open session. With no session
// open it is a successful no-op, so the caller can append unconditionally
// per tick.
func (s *Sink) Append(buf audio.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil {
		return nil
	}

	samples := buf.Samples
	if sess.resampler != nil {
		out := make([]int16, sess.resampler.OutputSamplesNeeded(len(samples)))
		n := sess.resampler.Resample(samples, out)
		samples = out[:n]
	}

	sess.pending = append(sess.pending, samples...)

	for len(sess.pending) >= sess.frameSamples {
		if err := sess.encodeFrame(sess.pending[:sess.frameSamples]); err != nil {
			return err
		}
		sess.pending = sess.pending[sess.frameSamples:]
	}
	return nil
}

// Close flushes and releases the open session; no-op if already closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil {
		return nil
	}
	s.session = nil

	var firstErr error

	// Flush the partial tail frame, zero-padded to a whole frame
	if len(sess.pending) > 0 {
		tail := make([]int16, sess.frameSamples)
		copy(tail, sess.pending)
		if err := sess.encodeFrame(tail); err != nil {
			firstErr = err
		}
	}

	if err := sess.writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close session file: %w", err)
	}

	dur := time.Duration(sess.frames) * time.Second / framesPerSecond
	log.Printf("Recording session %s closed: %s (%v)", shortID(sess.id), sess.path, dur)

	return firstErr
}

// Current returns the path of the open session file, if any.
func (s *Sink) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", false
	}
	return s.session.path, true
}

// Dir returns the destination directory.
func (s *Sink) Dir() string {
	return s.dir
}

// encodeFrame encodes one whole 20ms frame and appends it to the container.
func (sess *session) encodeFrame(frame []int16) error {
	data := make([]byte, maxPacketSize)
	n, err := sess.encoder.Encode(frame, data)
	if err != nil {
		return fmt.Errorf("opus encode error: %w", err)
	}

	packet := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    opusPayloadType,
			SequenceNumber: sess.rtpSeq,
			Timestamp:      sess.rtpTS,
			SSRC:           sess.ssrc,
		},
		Payload: data[:n],
	}
	if err := sess.writer.WriteRTP(packet); err != nil {
		return fmt.Errorf("session write error: %w", err)
	}

	sess.rtpSeq++
	sess.rtpTS += rtpTicksPerFrame
	sess.frames++
	return nil
}

// opusLegalRate reports whether the Opus codec accepts rate directly.
func opusLegalRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
