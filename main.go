// ABOUTME: Entry point for the AStream VOX recording player
// ABOUTME: Parses CLI flags, resolves playlists, and wires the pipeline
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/op183/AStream/internal/config"
	"github.com/op183/AStream/internal/engine"
	"github.com/op183/AStream/internal/meter"
	"github.com/op183/AStream/internal/output"
	"github.com/op183/AStream/internal/player"
	"github.com/op183/AStream/internal/playlist"
	"github.com/op183/AStream/internal/record"
	"github.com/op183/AStream/internal/ui"
	"github.com/op183/AStream/internal/vox"
)

var (
	streamURL        = flag.String("url", "", "Stream URL, playlist URL (.pls/.m3u), or local audio file")
	outputDir        = flag.String("dir", ".", "Directory for recording sessions")
	recordThreshold  = flag.Float64("record-threshold", config.DefaultRecordThreshold, "Average power starting a recording, dBFS")
	silenceThreshold = flag.Float64("silence-threshold", config.DefaultRecordThreshold, "Peak power stopping a recording, dBFS (default: record threshold)")
	volume           = flag.Int("volume", config.DefaultVolume, "Initial playback volume (0-100)")
	logFile          = flag.String("log-file", "astream.log", "Log file path")
	noTUI            = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	cfg := config.Config{
		URL:              *streamURL,
		OutputDir:        *outputDir,
		RecordThreshold:  *recordThreshold,
		SilenceThreshold: *silenceThreshold,
		Volume:           *volume,
		LogFile:          *logFile,
		NoTUI:            *noTUI,
	}
	if cfg.URL == "" && flag.NArg() > 0 {
		cfg.URL = flag.Arg(0)
	}

	// Silence threshold follows the record threshold unless set explicitly
	silenceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "silence-threshold" {
			silenceSet = true
		}
	})
	if !silenceSet {
		cfg.SilenceThreshold = cfg.RecordThreshold
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.NoTUI {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		log.Printf("Starting AStream: %s", cfg.URL)
	} else {
		log.SetOutput(f)
	}

	// Resolve an indirect playlist URL into playable sub-URLs
	sources := []string{cfg.URL}
	if playlist.IsPlaylist(cfg.URL) {
		sources, err = playlist.Resolve(http.DefaultClient, cfg.URL)
		if err != nil {
			log.Fatalf("Playlist resolution failed: %v", err)
		}
	}

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if !cfg.NoTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	// Build the pipeline: output stage, metering probe, VOX engine
	out := output.NewOto()
	out.SetVolume(cfg.Volume)

	sink := record.NewSink(cfg.OutputDir)

	pipeline := player.New(player.Config{
		Output: out,
		OnTrackChange: func(name string) {
			updateTUI(ui.StatusMsg{Track: name})
		},
	})

	eng := engine.New(engine.Config{
		Probe:    meter.NewProbe(out),
		Detector: vox.NewDetector(cfg.RecordThreshold, cfg.SilenceThreshold),
		Sink:     sink,
		Detach:   pipeline.ClearTap,
		OnTransition: func(state vox.State) {
			log.Printf("VOX transition: %s", state)
			msg := ui.StatusMsg{State: state.String()}
			if path, ok := sink.Current(); ok {
				msg.File = path
			}
			updateTUI(msg)
		},
	})
	pipeline.SetTap(eng.OnBuffer)

	log.Printf("VOX thresholds: record > %.1f dBFS, silence < %.1f dBFS, recordings in %s",
		cfg.RecordThreshold, cfg.SilenceThreshold, cfg.OutputDir)

	// Start playback
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	playDone := make(chan error, 1)
	go func() {
		playDone <- pipeline.Play(ctx, sources)
	}()

	// Mute control from TUI
	if controls != nil {
		go func() {
			for muted := range controls.Mute {
				log.Printf("Playback muted: %v", muted)
				out.SetMuted(muted)
			}
		}()
	}

	// Periodic TUI status updates
	if tuiProg != nil {
		go statsUpdateLoop(ctx, eng, sink, updateTUI)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var playErr error
	if controls != nil {
		select {
		case <-controls.Quit:
			log.Printf("Quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case playErr = <-playDone:
		}
	} else {
		select {
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case playErr = <-playDone:
		}
	}

	// Stop delivery, then tear down: detach tap, force close the session,
	// release metering, and only then close the output device.
	cancel()
	eng.Shutdown()
	if err := out.Close(); err != nil {
		log.Printf("Error closing audio output: %v", err)
	}
	if tuiProg != nil {
		tuiProg.Quit()
	}

	if playErr != nil {
		log.Fatalf("Playback failed: %v", playErr)
	}
	log.Printf("Stopped (%d recording sessions)", eng.Sessions())
}

// statsUpdateLoop periodically refreshes the TUI with levels and VOX state.
func statsUpdateLoop(ctx context.Context, eng *engine.Engine, sink *record.Sink, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading := eng.LastReading()
			sessions := eng.Sessions()

			msg := ui.StatusMsg{
				State:    eng.State().String(),
				Sessions: &sessions,
				Average:  &reading.Average,
				Peak:     &reading.Peak,
			}
			if path, ok := sink.Current(); ok {
				msg.File = path
			}
			updateTUI(msg)
		}
	}
}
