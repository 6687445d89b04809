// ABOUTME: Decoder interface and codec selection
// ABOUTME: Stream-oriented decoders producing interleaved int16 PCM buffers
package decode

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/op183/AStream/internal/audio"
)

// Decoder reads an encoded audio stream and produces PCM buffers.
type Decoder interface {
	// Format returns the decoded stream format.
	Format() audio.Format

	// Next returns the next decoded buffer, or io.EOF at end of stream.
	Next() (audio.Buffer, error)

	// Close releases decoder resources.
	Close() error
}

// New picks a decoder for the source by extension, falling back to the
// HTTP Content-Type when the extension is not recognized.
func New(name, contentType string, r io.Reader) (Decoder, error) {
	switch codecFor(name, contentType) {
	case "mp3":
		return NewMP3(r)
	case "flac":
		return NewFLAC(r)
	}
	return nil, fmt.Errorf("unsupported audio source: %s", name)
}

func codecFor(name, contentType string) string {
	switch ext(name) {
	case ".mp3":
		return "mp3"
	case ".flac":
		return "flac"
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return "mp3"
	case strings.Contains(ct, "flac"):
		return "flac"
	}

	// Shoutcast-style endpoints often have no extension at all; MP3 is the
	// overwhelmingly common stream codec.
	if ext(name) == "" {
		return "mp3"
	}
	return ""
}

func ext(name string) string {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		if u, err := url.Parse(name); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(path.Ext(name))
}
