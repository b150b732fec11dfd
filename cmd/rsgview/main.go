// rsgview is a top-down monitor for the 3D robot soccer simulator. It
// connects to the server's monitor port, renders the match, and draws the
// debug shapes agents send to its UDP port.
//
// Instead of a live server it can play back a recording made earlier with
// --record.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/phanxgames/rsgview"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		server      string
		listen      string
		noDraw      bool
		record      string
		replay      string
		replaySpeed float64
		logLevel    string
		scriptPath  string
		debug       bool
	)

	flagSet := pflag.NewFlagSet("rsgview", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flagSet.StringVarP(&server, "server", "s", "", "server monitor address, host:port")
	flagSet.StringVar(&listen, "listen", "", "UDP address for debug drawings")
	flagSet.BoolVar(&noDraw, "no-draw", false, "do not listen for debug drawings")
	flagSet.StringVar(&record, "record", "", "record server messages to this file")
	flagSet.StringVar(&replay, "replay", "", "play back a recording instead of connecting")
	flagSet.Float64Var(&replaySpeed, "replay-speed", 1, "replay speed multiplier, 0 for no pacing")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&scriptPath, "script", "", "viewer script to run (clicks, keys, screenshots)")
	flagSet.BoolVar(&debug, "debug", false, "log per-frame render stats")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg := rsgview.DefaultConfig()
	if configPath != "" {
		loaded, err := rsgview.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flagSet.Changed("server") {
		cfg.Server.Address = server
	}
	if flagSet.Changed("listen") {
		cfg.Draw.Listen = listen
	}
	if noDraw {
		cfg.Draw.Disabled = true
	}
	if flagSet.Changed("record") {
		cfg.Record = record
	}
	if flagSet.Changed("replay") {
		cfg.Replay = replay
	}
	if flagSet.Changed("replay-speed") {
		cfg.ReplaySpeed = replaySpeed
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	world := rsgview.NewWorldModel(logger)
	drawings := rsgview.NewDrawings()

	stopIngest, err := startIngest(ctx, cfg, world, logger)
	if err != nil {
		return err
	}
	defer stopIngest()

	if !cfg.Draw.Disabled {
		receiver, err := rsgview.ListenDraw(cfg.Draw.Listen,
			&rsgview.DrawTarget{Drawings: drawings, World: world}, logger)
		if err != nil {
			// The viewer still works without drawings.
			logger.Error("debug drawings disabled", "error", err)
		} else {
			defer receiver.Close()
			go func() {
				if err := receiver.Run(); err != nil {
					logger.Error("draw receiver stopped", "error", err)
				}
			}()
			logger.Info("listening for debug drawings", "addr", receiver.Addr())
		}
	}

	viewer := rsgview.NewViewer(world, drawings, rsgview.ViewerOptions{
		Logger:        logger,
		ScreenshotDir: cfg.Window.ScreenshotDir,
		ShowHUD:       cfg.Window.ShowHUD,
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
	})
	viewer.SetDebugMode(debug)
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		script, err := rsgview.LoadScript(data)
		if err != nil {
			return err
		}
		viewer.SetScript(script)
	}
	err = rsgview.Run(viewer, cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	cancel()
	return err
}

// startIngest starts the goroutine feeding the world, from a recording or
// from the server. The returned function finishes any recording.
func startIngest(ctx context.Context, cfg rsgview.Config, world *rsgview.WorldModel, logger *slog.Logger) (func(), error) {
	if cfg.Replay != "" {
		replay, err := rsgview.OpenReplay(cfg.Replay)
		if err != nil {
			return nil, err
		}
		go func() {
			defer replay.Close()
			if err := rsgview.PlayReplay(ctx, replay, world, cfg.ReplaySpeed, logger); err != nil && ctx.Err() == nil {
				logger.Error("replay stopped", "error", err)
				return
			}
			logger.Info("replay finished", "file", cfg.Replay)
		}()
		return func() {}, nil
	}

	conn := &rsgview.ServerConn{
		Addr:          cfg.Server.Address,
		World:         world,
		Logger:        logger,
		RetryInterval: cfg.Server.RetryInterval,
	}
	stop := func() {}
	if cfg.Record != "" {
		recorder, err := rsgview.NewRecorder(cfg.Record)
		if err != nil {
			return nil, err
		}
		conn.Sink = recorder
		stop = func() {
			if err := recorder.Close(); err != nil {
				logger.Error("closing recording", "error", err)
			}
		}
		logger.Info("recording server messages", "file", cfg.Record)
	}
	go conn.Run(ctx)
	return stop, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `rsgview: top-down monitor for the 3D soccer simulator.

Connects to the simulator's monitor port and renders the match. Agents
can draw debug shapes by sending packets to the UDP listen address.

Usage:
  rsgview [flags]

Examples:
  # Watch a local server
  rsgview

  # Watch a remote server and record the match
  rsgview --server sim.lab:3200 --record match.rsgz

  # Play the recording back at double speed
  rsgview --replay match.rsgz --replay-speed 2

Keys:
  left click   select agent or ball     F   follow selection
  right drag   pan                      C   center on selection
  wheel        zoom                     R   reset view
  H  HUD       L  drawing set list      1-9 toggle drawing set
  V  flip view D  render stats          F12 screenshot
  Esc clear selection

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
