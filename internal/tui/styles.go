// ABOUTME: Lipgloss palette for every panel, built once and shared
// ABOUTME: Semantic names only; panels never construct colours inline

package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeStyles holds the pre-built styles for the TUI.
type ThemeStyles struct {
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Border    lipgloss.Style
	Selection lipgloss.Style
	Prompt    lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	UserBg     lipgloss.Style
	Reasoning  lipgloss.Style

	FooterConn  lipgloss.Style
	FooterModel lipgloss.Style
	ProgressOn  lipgloss.Style
	ProgressOff lipgloss.Style

	Overlay lipgloss.Style

	Bold lipgloss.Style
	Dim  lipgloss.Style
}

var (
	stylesOnce sync.Once
	styles     ThemeStyles
)

// Styles returns the palette.
func Styles() ThemeStyles {
	stylesOnce.Do(func() { styles = buildStyles() })
	return styles
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func buildStyles() ThemeStyles {
	return ThemeStyles{
		Primary:   fg("39"),
		Secondary: fg("245"),
		Muted:     fg("241"),
		Accent:    fg("208"),

		Success: fg("42"),
		Warning: fg("214"),
		Error:   fg("196"),
		Info:    fg("75"),

		Border:    fg("238"),
		Selection: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24")),
		Prompt:    fg("39").Bold(true),

		TabActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25")).Bold(true).Padding(0, 1),
		TabInactive: fg("245").Padding(0, 1),

		UserLabel:  fg("39").Bold(true),
		AgentLabel: fg("208").Bold(true),
		UserBg:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Reasoning:  fg("243").Italic(true),

		FooterConn:  fg("245"),
		FooterModel: fg("141"),
		ProgressOn:  fg("42"),
		ProgressOff: fg("238"),

		Overlay: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1),

		Bold: lipgloss.NewStyle().Bold(true),
		Dim:  lipgloss.NewStyle().Faint(true),
	}
}
