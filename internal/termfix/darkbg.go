// ABOUTME: Fixes the lipgloss background to dark before the TUI packages initialise
// ABOUTME: Blank-imported first by cmd/seekdeck so no OSC colour query reaches the terminal

package termfix

import "github.com/charmbracelet/lipgloss"

// With an explicit background set, bubbletea's init skips the OSC 11 probe
// whose reply would otherwise land in the editor as stray input. This
// package must not import bubbletea.
func init() {
	lipgloss.SetHasDarkBackground(true)
}
