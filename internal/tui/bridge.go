// ABOUTME: Snapshot-to-Bubble Tea bridge goroutine
// ABOUTME: Reads the coalescing snapshot channel and forwards each value via ProgramSender

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/seekdeck/internal/engine"
)

// ProgramSender matches *tea.Program's Send method.
type ProgramSender interface {
	Send(msg tea.Msg)
}

// SnapshotMsg carries a new engine snapshot into the update loop.
type SnapshotMsg struct{ Snapshot engine.Snapshot }

// RunBridge forwards snapshots until the channel closes or ctx is done.
func RunBridge(ctx context.Context, program ProgramSender, snaps <-chan engine.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snaps:
			if !ok {
				return
			}
			program.Send(SnapshotMsg{Snapshot: s})
		}
	}
}
