package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"k8s.io/utils/clock"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/audio"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mediagraph"
	"github.com/mmcdole/reel/internal/otime"
	"github.com/mmcdole/reel/internal/player"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// lastPreset selects the most recently played preset
const lastPreset = "last"

type options struct {
	preset   string
	headless bool
	seconds  float64
	seek     string
	follow   bool
}

func main() {
	var (
		showVersion bool
		listPresets bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&listPresets, "presets", false, "list the built-in timelines")
	flag.StringVar(&opts.preset, "preset", "", `timeline preset to play, or "last"`)
	flag.BoolVar(&opts.headless, "headless", false, "play without the viewer and print cache statistics")
	flag.Float64Var(&opts.seconds, "seconds", 5, "headless playback length in seconds")
	flag.StringVar(&opts.seek, "seek", "", "start time as timecode, frame number or seconds (e.g. 2.5s)")
	flag.BoolVar(&opts.follow, "follow", false, "run a second player that follows the first")
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}
	if listPresets {
		printPresets(os.Stdout)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)
	logger.Info("starting reel", "version", Version)

	settings, err := store.NewSettingsStore(cfg.StorePath())
	if err != nil {
		logger.Warn("settings store unavailable, keeping settings in memory", "error", err)
		settings, _ = store.NewSettingsStore("")
	}
	defer settings.Close()

	preset, err := resolvePreset(opts.preset, cfg.Source.Preset, settings)
	if err != nil {
		return err
	}
	if cfg.Source.Duration > 0 {
		preset.Duration = cfg.Source.Duration.Seconds()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	clk := clock.RealClock{}
	device, err := audio.New(cfg.Audio.Device, clk, logger)
	if err != nil {
		return fmt.Errorf("failed to create audio device: %w", err)
	}

	graph := newGraph(preset, cfg, logger)
	defer graph.Close()

	p, err := player.New(ctx, graph, device, playerOptions(cfg, clk, logger))
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	defer p.Close()

	if err := configurePlayer(p, cfg, settings, preset.Name, opts.seek); err != nil {
		return err
	}

	var follower *player.Player
	if opts.follow {
		followerGraph := newGraph(preset, cfg, logger)
		defer followerGraph.Close()
		follower, err = player.New(ctx, followerGraph, audio.Null{}, playerOptions(cfg, clk, logger.With("role", "follower")))
		if err != nil {
			return fmt.Errorf("failed to create follower: %w", err)
		}
		defer follower.Close()
		follower.SetExternalTime(p)
	}

	if opts.headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = runHeadless(ctx, p, follower, time.Duration(opts.seconds*float64(time.Second)), cfg.UI.FPS, os.Stdout)
	} else {
		err = runViewer(p, preset.Name, cfg.UI.FPS, logger)
	}

	if saveErr := settings.Save(preset.Name, p.Settings()); saveErr != nil {
		logger.Warn("failed to save settings", "error", saveErr)
	}
	logger.Info("shutting down")
	return err
}

func resolvePreset(flagName, configName string, settings *store.SettingsStore) (mediagraph.Preset, error) {
	name := flagName
	if name == "" {
		name = configName
	}
	if strings.EqualFold(name, lastPreset) {
		last, ok := settings.LastPreset()
		if !ok {
			return mediagraph.Preset{}, fmt.Errorf("%w: nothing played yet", domain.ErrPresetNotFound)
		}
		name = last
	}
	return mediagraph.FindPreset(name)
}

func newGraph(preset mediagraph.Preset, cfg *adapter.Config, logger *slog.Logger) *mediagraph.Graph {
	return mediagraph.New(preset,
		mediagraph.WithWorkers(cfg.Source.Workers),
		mediagraph.WithLatency(cfg.Source.Latency),
		mediagraph.WithLogger(logger),
	)
}

func playerOptions(cfg *adapter.Config, clk clock.WithTicker, logger *slog.Logger) player.Options {
	return player.Options{
		ReadAhead:         cfg.Player.ReadAhead,
		ReadBehind:        cfg.Player.ReadBehind,
		AudioBufferFrames: cfg.Audio.BufferFrames,
		MuteTimeout:       cfg.Player.MuteTimeout,
		EnginePeriod:      cfg.Player.EnginePeriod,
		Clock:             clk,
		Logger:            logger,
	}
}

// configurePlayer applies configuration, then stored settings, then the
// start time given on the command line.
func configurePlayer(p *player.Player, cfg *adapter.Config, settings *store.SettingsStore, preset, seek string) error {
	if loop, err := domain.ParseLoop(cfg.Player.Loop); err == nil {
		p.SetLoop(loop)
	}
	if cfg.Player.Speed > 0 {
		p.SetSpeed(cfg.Player.Speed)
	}
	if s, ok := settings.Load(preset); ok {
		p.ApplySettings(s)
	}
	if seek == "" {
		return nil
	}
	t, err := otime.Parse(seek, p.Rate())
	if err != nil {
		return fmt.Errorf("invalid --seek: %w", err)
	}
	if !strings.Contains(seek, ":") {
		// Frame numbers and seconds count from the start of the timeline.
		t = p.TimeRange().Start.Add(t)
	}
	p.Seek(t)
	return nil
}

func runViewer(p *player.Player, preset string, fps int, logger *slog.Logger) error {
	model := tui.NewModel(p, preset, fps, logger)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	logger.Info("starting TUI")
	if _, err := program.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runHeadless plays forward for d, ticking the players at fps and printing
// cache statistics once per second.
func runHeadless(ctx context.Context, p, follower *player.Player, d time.Duration, fps int, w io.Writer) error {
	if fps <= 0 {
		fps = 30
	}
	frameTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer frameTicker.Stop()
	reportTicker := time.NewTicker(time.Second)
	defer reportTicker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	p.SetPlayback(domain.Forward)
	defer p.SetPlayback(domain.Stop)

	for {
		select {
		case <-ctx.Done():
			printStats(w, "player", p)
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-deadline.C:
			printStats(w, "player", p)
			if follower != nil {
				printStats(w, "follower", follower)
			}
			return nil
		case <-frameTicker.C:
			p.Tick()
			if follower != nil {
				follower.Tick()
			}
		case <-reportTicker.C:
			printStats(w, "player", p)
		}
	}
}

func printStats(w io.Writer, name string, p *player.Player) {
	stats := p.CacheStats()
	fmt.Fprintf(w, "%-8s %s %-7s cache %5.1f%% pending %3d video %s audio %s\n",
		name,
		p.CurrentTime().Get(),
		p.Playback().Get(),
		stats.Percentage,
		stats.Pending,
		formatRanges(stats.VideoRanges),
		formatRanges(stats.AudioRanges),
	)
}

func formatRanges(ranges []otime.TimeRange) string {
	if len(ranges) == 0 {
		return "-"
	}
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func printPresets(w io.Writer) {
	for _, name := range mediagraph.PresetNames() {
		preset, err := mediagraph.FindPreset(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%-12s %s\n", preset.Name, preset.Description)
	}
}
