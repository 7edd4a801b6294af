// ABOUTME: Entry point for the seekdeck terminal client
// ABOUTME: Loads settings, wires backend, push channel and engine, then runs the TUI or a one-shot download

package main

import (
	_ "github.com/mauromedda/seekdeck/internal/termfix" // must be first: sets dark bg before bubbletea init

	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/mauromedda/seekdeck/internal/backend"
	"github.com/mauromedda/seekdeck/internal/config"
	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/log"
	"github.com/mauromedda/seekdeck/internal/push"
	"github.com/mauromedda/seekdeck/internal/sched"
	"github.com/mauromedda/seekdeck/internal/screenshot"
	"github.com/mauromedda/seekdeck/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownGrace = 2 * time.Second

func main() {
	args, err := parseFlags(filepath.Base(os.Args[0]), os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	if args.version {
		fmt.Printf("seekdeck %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args cliArgs) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	settings, err := config.Load(cwd, args.configPath, config.Overrides{
		URL:      args.url,
		LogLevel: args.logLevel(),
		LogFile:  args.logFile,
	})
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	closeLog, err := setupLogging(settings.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	header := http.Header{}
	var opts []backend.Option
	for k, v := range settings.Headers {
		header.Set(k, v)
		opts = append(opts, backend.WithHeader(k, v))
	}
	api, err := backend.New(settings.URL, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args.download != "" {
		path, err := engine.DownloadTo(ctx, api, args.download)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}
		fmt.Println(path)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive mode needs a terminal (use --download for scripted use)")
	}

	log.Info("seekdeck %s connecting to %s", version, api.BaseURL())

	loop := sched.NewLoop()
	loop.Start()
	defer loop.Close()

	eng := engine.New(engine.Options{
		Sched:       loop,
		Backend:     api,
		Dialer:      push.WebSocketDialer{Header: header},
		Endpoint:    func() (string, error) { return api.WebSocketURL(), nil },
		Timing:      settings.Timing,
		DownloadDir: settings.DownloadDir,
	})
	eng.Start()

	runErr := tui.Run(ctx, eng, tui.Options{Protocol: imageProtocol(settings.ImageProtocol)})

	eng.Close()
	select {
	case <-eng.Done():
	case <-time.After(shutdownGrace):
		log.Warn("engine did not shut down within %s", shutdownGrace)
	}
	return runErr
}

// setupLogging routes the logger to the configured file. "-" means stderr.
func setupLogging(l config.Log) (func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	if l.File != "-" {
		path := config.ExpandHome(l.File)
		if path == "" {
			path = config.LogFile()
		}
		if err := config.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
	}

	log.Setup(l.Level, l.Format, w)
	return closer, nil
}

func imageProtocol(name string) screenshot.Protocol {
	switch name {
	case "kitty":
		return screenshot.Kitty
	case "halfblock":
		return screenshot.HalfBlock
	default:
		return screenshot.DetectProtocol()
	}
}
