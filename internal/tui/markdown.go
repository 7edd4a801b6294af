// ABOUTME: Glamour markdown renderer for agent messages
// ABOUTME: Caches rendered output keyed by content hash and width

package tui

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps glamour with a render cache. It is owned by one
// model and not safe for concurrent use.
type MarkdownRenderer struct {
	cache map[string]string
	width int
	tr    *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer with an empty cache.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{cache: make(map[string]string)}
}

// Render returns md styled for the terminal at the given wrap width. Render
// errors fall back to the raw text.
func (r *MarkdownRenderer) Render(md string, width int) string {
	if md == "" {
		return ""
	}
	key := cacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	if r.tr == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		r.tr, r.width = tr, width
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	out = strings.Trim(out, "\n ")
	r.cache[key] = out
	return out
}

func cacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}
