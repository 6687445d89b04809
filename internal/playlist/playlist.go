// ABOUTME: Playlist manifest resolution for indirect stream URLs
// ABOUTME: Fetches .pls/.m3u bodies and extracts playable sub-URLs in order
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// IsPlaylist reports whether the URL or file path points at a playlist
// manifest rather than a direct audio source.
func IsPlaylist(raw string) bool {
	switch ext(raw) {
	case ".pls", ".m3u", ".m3u8":
		return true
	}
	return false
}

// Resolve fetches the playlist at raw and returns its sub-URLs in file
// order. A non-2xx HTTP status or an empty playlist is an error; resolution
// happens at startup and failures are fatal to the caller.
func Resolve(client *http.Client, raw string) ([]string, error) {
	body, err := fetch(client, raw)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var entries []string
	switch ext(raw) {
	case ".pls":
		entries, err = parsePLS(body)
	case ".m3u", ".m3u8":
		entries, err = parseM3U(body)
	default:
		return nil, fmt.Errorf("not a recognized playlist: %s", raw)
	}
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("playlist contains no playable entries: %s", raw)
	}

	log.Printf("Resolved playlist %s: %d entries", raw, len(entries))
	return entries, nil
}

// fetch opens the playlist body from HTTP or the local filesystem.
func fetch(client *http.Client, raw string) (io.ReadCloser, error) {
	if !isHTTP(raw) {
		f, err := os.Open(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to open playlist: %w", err)
		}
		return f, nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("playlist fetch failed: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parsePLS extracts FileN=<url> entries from a PLS body, preserving file
// order. Other keys (TitleN, LengthN, NumberOfEntries) are ignored.
func parsePLS(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(key), "file") {
			continue
		}

		value = strings.TrimSpace(value)
		if value != "" {
			urls = append(urls, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist body: %w", err)
	}

	return urls, nil
}

// parseM3U extracts non-comment lines from an M3U body.
func parseM3U(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist body: %w", err)
	}

	return urls, nil
}

// ext returns the lower-cased extension of a URL path or file path,
// ignoring any query string.
func ext(raw string) string {
	if isHTTP(raw) {
		if u, err := url.Parse(raw); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(path.Ext(raw))
}

func isHTTP(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
