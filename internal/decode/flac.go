// ABOUTME: FLAC stream decoder
// ABOUTME: Decodes FLAC frames to interleaved int16 buffers
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/op183/AStream/internal/audio"
)

// FLACDecoder decodes a FLAC stream frame by frame using mewkiz/flac.
type FLACDecoder struct {
	stream *flac.Stream
	format audio.Format
	shift  int // bits to shift source samples down to int16
}

// NewFLAC creates a FLAC decoder over the raw stream.
func NewFLAC(r io.Reader) (Decoder, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}

	info := stream.Info
	return &FLACDecoder{
		stream: stream,
		format: audio.Format{
			Codec:      "flac",
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
		},
		shift: int(info.BitsPerSample) - 16,
	}, nil
}

// Format returns the decoded stream format.
func (d *FLACDecoder) Format() audio.Format {
	return d.format
}

// Next decodes the next FLAC frame into an interleaved buffer.
func (d *FLACDecoder) Next() (audio.Buffer, error) {
	frame, err := d.stream.ParseNext()
	if err == io.EOF {
		return audio.Buffer{}, io.EOF
	}
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("flac decode error: %w", err)
	}

	channels := len(frame.Subframes)
	if channels == 0 {
		return audio.Buffer{}, fmt.Errorf("flac frame with no subframes")
	}
	frames := len(frame.Subframes[0].Samples)

	samples := make([]int16, frames*channels)
	for ch, sub := range frame.Subframes {
		for i, s := range sub.Samples {
			samples[i*channels+ch] = d.toInt16(s)
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format:  d.format,
	}, nil
}

// toInt16 scales a source sample to 16-bit range.
func (d *FLACDecoder) toInt16(s int32) int16 {
	if d.shift > 0 {
		return int16(s >> uint(d.shift))
	}
	if d.shift < 0 {
		return int16(s << uint(-d.shift))
	}
	return int16(s)
}

// Close releases decoder resources.
func (d *FLACDecoder) Close() error {
	return d.stream.Close()
}
