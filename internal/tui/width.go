// ABOUTME: Display-width helpers over grapheme clusters for plain (unstyled) text
// ABOUTME: Truncation and padding happen before styling so escapes never split

package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ellipsis is appended by Truncate.
const ellipsis = "…"

// VisibleWidth returns the terminal column width of plain text.
func VisibleWidth(s string) int {
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
	}
	return w
}

func clusterWidth(cluster string) int {
	// Emoji sequences and flags report a width per rune; the first rune
	// decides the cell count.
	for _, r := range cluster {
		return runewidth.RuneWidth(r)
	}
	return 0
}

// Truncate cuts s to at most n columns, ending in an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if VisibleWidth(s) <= n {
		return s
	}
	limit := n - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := clusterWidth(cluster)
		if w+cw > limit {
			break
		}
		b.WriteString(cluster)
		w += cw
	}
	b.WriteString(ellipsis)
	return b.String()
}

// PadRight truncates or pads s to exactly n columns.
func PadRight(s string, n int) string {
	s = Truncate(s, n)
	if w := VisibleWidth(s); w < n {
		s += strings.Repeat(" ", n-w)
	}
	return s
}
