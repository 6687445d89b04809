// ABOUTME: MP3 stream decoder
// ABOUTME: Decodes MP3 audio to interleaved int16 buffers
package decode

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/op183/AStream/internal/audio"
)

// mp3ChunkBytes is the read size per tick: 4096 stereo frames.
const mp3ChunkBytes = 4096 * 4

// MP3Decoder decodes an MP3 stream. go-mp3 always emits 16-bit stereo at
// the source sample rate.
type MP3Decoder struct {
	decoder *mp3.Decoder
	format  audio.Format
	buf     []byte
}

// NewMP3 creates an MP3 decoder over the raw stream.
func NewMP3(r io.Reader) (Decoder, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder: d,
		format: audio.Format{
			Codec:      "mp3",
			SampleRate: d.SampleRate(),
			Channels:   2,
		},
		buf: make([]byte, mp3ChunkBytes),
	}, nil
}

// Format returns the decoded stream format.
func (d *MP3Decoder) Format() audio.Format {
	return d.format
}

// Next decodes the next chunk of the stream.
func (d *MP3Decoder) Next() (audio.Buffer, error) {
	n, err := io.ReadFull(d.decoder, d.buf)
	if n == 0 {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err == nil {
			err = io.EOF
		}
		return audio.Buffer{}, err
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return audio.Buffer{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	return audio.Buffer{
		Samples: audio.BytesToSamples(d.buf[:n]),
		Format:  d.format,
	}, nil
}

// Close releases decoder resources.
func (d *MP3Decoder) Close() error {
	return nil
}
