// Command gfxdemo runs the gfxcore frame loop headlessly over an offscreen
// surface, allocating and churning binding slots every few frames.
//
// Usage:
//
//	gfxdemo [-config gfxdemo.toml] [-backend noop] [-frames 120] [-tui] [-v]
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/gogpu/gfxcore"
	"github.com/gogpu/gfxcore/backend"

	"github.com/gogpu/gfxcore/backend/wgpu"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		backendArg = flag.String("backend", "", "backend name (default: first available)")
		frames     = flag.Int("frames", 0, "number of frames to render (overrides config)")
		width      = flag.Uint("width", 0, "surface width (overrides config)")
		height     = flag.Uint("height", 0, "surface height (overrides config)")
		tui        = flag.Bool("tui", false, "show a live terminal view")
		verbose    = flag.Bool("v", false, "debug logging")
		dump       = flag.Bool("dump-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	cfg := gfxcore.DefaultConfig()
	if *configPath != "" {
		loaded, err := gfxcore.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("gfxdemo: %v", err)
		}
		cfg = loaded
	}
	if *backendArg != "" {
		cfg.Backend = *backendArg
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}
	if *width > 0 {
		cfg.Width = uint32(*width) //nolint:gosec // G115: flag value
	}
	if *height > 0 {
		cfg.Height = uint32(*height) //nolint:gosec // G115: flag value
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("gfxdemo: %v", err)
	}

	if *dump {
		if err := cfg.Encode(os.Stdout); err != nil {
			log.Fatalf("gfxdemo: %v", err)
		}
		return
	}

	interactive := *tui && term.IsTerminal(int(os.Stdout.Fd()))
	if *tui && !interactive {
		fmt.Fprintln(os.Stderr, "gfxdemo: stdout is not a terminal, running headless")
	}

	// Logs would tear the terminal view.
	if !interactive {
		level := slog.LevelInfo
		if *verbose {
			level = slog.LevelDebug
		}
		gfxcore.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	if err := run(cfg, interactive); err != nil {
		log.Fatalf("gfxdemo: %v", err)
	}
}

func run(cfg gfxcore.Config, interactive bool) error {
	logger := gfxcore.Logger()

	dev, err := backend.Open(cfg.Backend, cfg.BackendOptions("gfxdemo", logger))
	if err != nil {
		return err
	}
	defer dev.Close()

	wdev, ok := dev.(*wgpu.Device)
	if !ok {
		return fmt.Errorf("backend %T has no resource constructors", dev)
	}

	d, err := newDemo(wdev, cfg, logger)
	if err != nil {
		return err
	}

	if interactive {
		err = runTUI(d)
	} else {
		err = runHeadless(d)
	}
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return err
}

func runHeadless(d *demo) error {
	start := time.Now()
	for !d.done() {
		if err := d.step(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	s := d.engine.Stats()
	fmt.Printf("%s: %d frames in %v (%s), %d presented\n",
		wdevName(d), s.FramesPresented, elapsed.Round(time.Millisecond), s.Extent, d.surface.Presented())
	for _, ch := range s.Channels {
		fmt.Printf("  %-16s %-14s live %3d/%-3d high-water %3d pending %d\n",
			ch.Label, ch.Type, ch.Live, ch.Capacity, ch.HighWaterMark, ch.Pending)
	}
	return nil
}

func wdevName(d *demo) string {
	if name := d.dev.AdapterName(); name != "" {
		return name
	}
	return d.dev.Info().Backend
}
