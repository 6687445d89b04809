// ABOUTME: Playback pipeline for stream URLs and local files
// ABOUTME: Decodes sources sequentially and delivers buffers to the tap
package player

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/op183/AStream/internal/audio"
	"github.com/op183/AStream/internal/decode"
	"github.com/op183/AStream/internal/output"
)

// Pipeline plays a queue of audio sources through one output device. All
// buffers are delivered on the single Play goroutine: decode, tap delivery,
// and the playback write happen in order for every buffer, so the tap sees
// a strictly serialized stream with no loss or reordering.
type Pipeline struct {
	out     output.Output
	client  *http.Client
	onTrack func(name string)

	// tapMu serializes tap delivery with attach/detach, so ClearTap
	// blocks until an in-flight delivery has drained.
	tapMu sync.Mutex
	tap   func(audio.Buffer)
}

// Config wires the pipeline's collaborators.
type Config struct {
	Output     output.Output
	HTTPClient *http.Client

	// OnTrackChange, if set, is notified when playback moves to a source.
	OnTrackChange func(name string)
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Pipeline{
		out:     cfg.Output,
		client:  client,
		onTrack: cfg.OnTrackChange,
	}
}

// SetTap registers the buffer-delivery handler. The tap is invoked
// synchronously for every decoded buffer.
func (p *Pipeline) SetTap(fn func(audio.Buffer)) {
	p.tapMu.Lock()
	defer p.tapMu.Unlock()
	p.tap = fn
}

// ClearTap detaches the tap, blocking until any in-flight delivery has
// completed. After it returns no further buffers are delivered.
func (p *Pipeline) ClearTap() {
	p.tapMu.Lock()
	defer p.tapMu.Unlock()
	p.tap = nil
}

// Play plays the sources in order until the queue is exhausted or the
// context is cancelled. Failure to open the first source is fatal; later
// sources are logged and skipped so a long queue survives a dead entry.
func (p *Pipeline) Play(ctx context.Context, sources []string) error {
	for i, src := range sources {
		if ctx.Err() != nil {
			return nil
		}

		err := p.playOne(ctx, src)
		if err == nil || ctx.Err() != nil {
			continue
		}
		if i == 0 {
			return fmt.Errorf("cannot play %s: %w", src, err)
		}
		log.Printf("Skipping %s: %v", src, err)
	}
	return nil
}

// playOne plays a single source to completion.
func (p *Pipeline) playOne(ctx context.Context, src string) error {
	body, contentType, err := p.openSource(ctx, src)
	if err != nil {
		return err
	}
	defer body.Close()

	dec, err := decode.New(src, contentType, body)
	if err != nil {
		return err
	}
	defer dec.Close()

	format := dec.Format()
	if err := p.out.Open(format.SampleRate, format.Channels); err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}

	log.Printf("Playing %s: %s %dHz %dch", src, format.Codec, format.SampleRate, format.Channels)
	if p.onTrack != nil {
		p.onTrack(src)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		buf, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := p.out.Write(buf.Samples); err != nil {
			return fmt.Errorf("playback error: %w", err)
		}

		p.deliver(buf)
	}
}

// deliver hands the buffer to the tap, if attached.
func (p *Pipeline) deliver(buf audio.Buffer) {
	p.tapMu.Lock()
	defer p.tapMu.Unlock()
	if p.tap != nil {
		p.tap(buf)
	}
}

// openSource opens an HTTP stream or a local file.
func (p *Pipeline) openSource(ctx context.Context, src string) (io.ReadCloser, string, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open file: %w", err)
		}
		return f, "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("malformed URL: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("stream request failed: HTTP %d", resp.StatusCode)
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}
