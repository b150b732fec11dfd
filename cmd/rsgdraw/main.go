// rsgdraw sends debug drawings to a running rsgview. Drawings are
// described by a small Lisp program:
//
//	(circle (vec3 0 0 0) 2 3 (rgb 1 1 0) "demo.center")
//	(annotate "kickoff" (vec3 0 0 0.5) (rgb 1 1 1) "demo.text")
//	(swap "demo.")
//
// With --interval the program is re-run on a timer and (frame) counts
// the runs, which is enough for simple animations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr     string
		expr     string
		interval time.Duration
		verbose  bool
	)

	flagSet := pflag.NewFlagSet("rsgdraw", pflag.ContinueOnError)
	flagSet.StringVarP(&addr, "addr", "a", "localhost:32769", "viewer draw address, host:port")
	flagSet.StringVarP(&expr, "eval", "e", "", "program text instead of a file")
	flagSet.DurationVar(&interval, "interval", 0, "re-run the program at this interval until interrupted")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log every packet sent")
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

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	source := expr
	switch args := flagSet.Args(); {
	case expr != "" && len(args) > 0:
		return fmt.Errorf("give either --eval or a file, not both")
	case expr == "" && len(args) != 1:
		printHelp(flagSet)
		return fmt.Errorf("expected one program file")
	case expr == "":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read program: %w", err)
		}
		source = string(data)
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	script := newDrawScript(func(packet []byte) error {
		_, err := conn.Write(packet)
		logger.Debug("packet sent", "addr", addr, "bytes", len(packet), "error", err)
		return err
	})

	if interval <= 0 {
		return script.Run(source)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := script.Run(source); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			logger.Info("stopped", "frames", script.frame, "packets", script.packets)
			return nil
		case <-ticker.C:
		}
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `rsgdraw: send debug drawings to rsgview.

Usage:
  rsgdraw [flags] program.lisp
  rsgdraw [flags] --eval '(circle (vec3 0 0 0) 1 2 (rgb 1 0 0) "a.b") (swap "a.")'

Builtins:
  (vec3 x y [z])  (rgb r g b [a])  (frame)  (sin x)  (cos x)
  (circle center radius thickness [color] [set])
  (line start end thickness [color] [set])
  (point pos size [color] [set])
  (sphere center radius [color] [set])
  (polygon (list v1 v2 v3 ...) [color] [set])
  (annotate text pos [color] [set])
  (agent_note side id text [color])
  (agent_clear side id)
  (select_agent side id)
  (swap [prefix])  (flush)

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
