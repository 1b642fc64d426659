package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"go.uber.org/zap"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/config"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/ingest"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/rank"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	headless := cfg.Once || !term.IsTerminal(os.Stdout.Fd())
	logPath := cfg.LogFile
	if headless {
		logPath = ""
	}
	logger, err := newLogger(logPath, cfg.Verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newClient(cfg, logger)
	if headless {
		if err := runOnce(ctx, client, tableBounds(cfg), os.Stdout); err != nil {
			logger.Error("fetch failed", zap.String("kind", ingest.KindName(err)), zap.Error(err))
			_ = logger.Sync()
			stop()
			os.Exit(1)
		}
		return
	}

	m := newModel(ctx, client, logger, modelConfig{
		bounds:       tableBounds(cfg),
		rank:         rankConfig(cfg),
		viewSplit:    cfg.ViewSplit,
		statsEnabled: cfg.StatsEnabled,
		statsWindow:  cfg.StatsWindow,
		logScale:     cfg.LogScale,
	})
	opts := []tui.ProgramOption{tui.WithContext(ctx)}
	if cfg.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	logger.Info("starting dashboard", zap.String("source", client.Source()))
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tui.ErrProgramKilled) {
		logger.Error("dashboard exited", zap.Error(err))
		log.Fatal(err)
	}
}

// parseConfig binds the flags over the defaults. When -config names a YAML
// file its values replace the defaults and the flags are applied again on
// top, so explicit flags always win.
func parseConfig(args []string, output io.Writer) (config.Config, error) {
	cfg := config.Default()
	path, err := parseFlags(&cfg, args, output)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		cfg = config.Default()
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
		if _, err := parseFlags(&cfg, args, output); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

func parseFlags(cfg *config.Config, args []string, output io.Writer) (configPath string, err error) {
	fs := flag.NewFlagSet("covid-dash", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&configPath, "config", "", "Load settings from this YAML file (flags override it)")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "Fetch records from this URL")
	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Read records from this JSON file instead of -source")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Give up on the fetch after this long (0 = no limit)")
	fs.BoolVar(&cfg.OpenDateBounds, "open-date-bounds", cfg.OpenDateBounds, "Apply a single start or end date in the table (default: only when both are set)")

	fs.IntVar(&cfg.TopK, "k", cfg.TopK, "Rank the top K countries in the chart selector")
	fs.IntVar(&cfg.WindowDays, "window-days", cfg.WindowDays, "Rank countries by cases over this many report days")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Sketch width")
	fs.IntVar(&cfg.Depth, "depth", cfg.Depth, "Sketch depth")
	fs.Float64Var(&cfg.Decay, "decay", cfg.Decay, "Counter decay probability on collisions")
	fs.IntVar(&cfg.DecayLUTSize, "decay-lut-size", cfg.DecayLUTSize, "Sketch decay look-up table size")

	fs.BoolVar(&cfg.LogScale, "log-scale", cfg.LogScale, "Use a logarithmic Y axis scale (default: linear)")
	fs.IntVar(&cfg.ViewSplit, "view-split", cfg.ViewSplit, "Split the chart view at this % of the total screen width [20,80]")
	fs.BoolVar(&cfg.AltScreen, "alt-screen", cfg.AltScreen, "Use the terminal alternate screen buffer")
	fs.BoolVar(&cfg.StatsEnabled, "stats", cfg.StatsEnabled, "Show runtime stats")
	fs.IntVar(&cfg.StatsWindow, "stats-window", cfg.StatsWindow, "Number of recent samples kept per metric")
	fs.BoolVar(&cfg.Once, "once", cfg.Once, "Print the table once and exit (default when stdout is not a terminal)")

	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file while the dashboard runs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log at debug level")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return configPath, nil
}

func newClient(cfg config.Config, logger *zap.Logger) *ingest.Client {
	opts := []ingest.Option{
		ingest.WithURL(cfg.Source),
		ingest.WithTimeout(cfg.Timeout),
		ingest.WithLogger(logger),
	}
	if cfg.InputPath != "" {
		opts = append(opts, ingest.WithFile(cfg.InputPath))
	}
	return ingest.NewClient(opts...)
}

func tableBounds(cfg config.Config) pipeline.Bounds {
	if cfg.OpenDateBounds {
		return pipeline.BoundsOpen
	}
	return pipeline.BoundsBoth
}

func rankConfig(cfg config.Config) rank.Config {
	return rank.Config{
		K:            cfg.TopK,
		WindowDays:   cfg.WindowDays,
		Width:        cfg.Width,
		Depth:        cfg.Depth,
		Decay:        cfg.Decay,
		DecayLUTSize: cfg.DecayLUTSize,
	}
}
