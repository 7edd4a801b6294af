// ABOUTME: Static per-extension icon and colour table for file lists
// ABOUTME: Unknown extensions fall back to the default entry

package tui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FileIcon is the glyph and colour shown next to a file name.
type FileIcon struct {
	Glyph string
	Color lipgloss.Color
}

var defaultIcon = FileIcon{Glyph: "·", Color: "245"}

var fileIcons = map[string]FileIcon{
	".html": {Glyph: "◇", Color: "208"},
	".htm":  {Glyph: "◇", Color: "208"},
	".css":  {Glyph: "#", Color: "39"},
	".js":   {Glyph: "ƒ", Color: "220"},
	".mjs":  {Glyph: "ƒ", Color: "220"},
	".ts":   {Glyph: "ƒ", Color: "33"},
	".tsx":  {Glyph: "ƒ", Color: "33"},
	".jsx":  {Glyph: "ƒ", Color: "45"},
	".json": {Glyph: "{", Color: "178"},
	".py":   {Glyph: "λ", Color: "71"},
	".go":   {Glyph: "∞", Color: "44"},
	".rs":   {Glyph: "®", Color: "166"},
	".java": {Glyph: "☕", Color: "166"},
	".c":    {Glyph: "c", Color: "67"},
	".cpp":  {Glyph: "c", Color: "67"},
	".h":    {Glyph: "h", Color: "67"},
	".sh":   {Glyph: "$", Color: "113"},
	".md":   {Glyph: "¶", Color: "252"},
	".txt":  {Glyph: "≡", Color: "250"},
	".csv":  {Glyph: "≡", Color: "107"},
	".yaml": {Glyph: "≡", Color: "168"},
	".yml":  {Glyph: "≡", Color: "168"},
	".png":  {Glyph: "▣", Color: "135"},
	".jpg":  {Glyph: "▣", Color: "135"},
	".jpeg": {Glyph: "▣", Color: "135"},
	".gif":  {Glyph: "▣", Color: "135"},
	".svg":  {Glyph: "▣", Color: "135"},
	".webp": {Glyph: "▣", Color: "135"},
	".zip":  {Glyph: "▤", Color: "137"},
	".pdf":  {Glyph: "▤", Color: "160"},
}

// IconFor returns the icon for a file name.
func IconFor(name string) FileIcon {
	if icon, ok := fileIcons[strings.ToLower(filepath.Ext(name))]; ok {
		return icon
	}
	return defaultIcon
}

// Render draws the glyph in its colour.
func (i FileIcon) Render() string {
	return lipgloss.NewStyle().Foreground(i.Color).Render(i.Glyph)
}
