// ABOUTME: Entry point for the interactive TUI
// ABOUTME: Starts the tea.Program, the snapshot bridge, and blocks until exit

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/engine"
	"github.com/mauromedda/seekdeck/internal/eventbus"
	"github.com/mauromedda/seekdeck/internal/screenshot"
)

// Engine is what Run needs from the engine.
type Engine interface {
	Actions
	Bus() *eventbus.Bus[engine.Snapshot]
}

var _ Engine = (*engine.Engine)(nil)

// Options configures Run.
type Options struct {
	Protocol screenshot.Protocol
	Input    io.Reader
	Output   io.Writer
}

// Run shows the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, eng Engine, o Options) error {
	m := NewAppModel(eng, o.Protocol)

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	if o.Input != nil {
		opts = append(opts, tea.WithInput(o.Input))
	}
	if o.Output != nil {
		opts = append(opts, tea.WithOutput(o.Output))
	}
	p := tea.NewProgram(m, opts...)

	snaps, stop := eng.Bus().Watch()
	defer stop()
	bridgeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go RunBridge(bridgeCtx, p, snaps)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
