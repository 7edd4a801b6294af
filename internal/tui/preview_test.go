// ABOUTME: Tests for PreviewModel tab stepping and body rendering
// ABOUTME: HTML bodies are flattened; images show a size line

package tui

import (
	"strings"
	"testing"

	"github.com/mauromedda/seekdeck/internal/engine"
)

func TestPreviewModel_Step(t *testing.T) {
	t.Parallel()

	m := NewPreviewModel().SetSnapshot(engine.Snapshot{
		PreviewFiles: []string{"a.html", "b.html", "c.html"},
		PreviewMain:  "b.html",
	})
	if f, ok := m.Step(1); !ok || f != "b.html" {
		t.Errorf("no selection steps to main: %q", f)
	}

	m = m.SetSnapshot(engine.Snapshot{
		PreviewFiles:    []string{"a.html", "b.html", "c.html"},
		SelectedPreview: "c.html",
	})
	if f, _ := m.Step(1); f != "a.html" {
		t.Errorf("wrap forward = %q", f)
	}
	if f, _ := m.Step(-1); f != "b.html" {
		t.Errorf("back = %q", f)
	}
	if _, ok := NewPreviewModel().Step(1); ok {
		t.Error("empty list stepped")
	}
}

func TestPreviewModel_Content(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap engine.Snapshot
		want string
	}{
		{"html", engine.Snapshot{SelectedPreview: "index.html", PreviewType: "text/html", PreviewBody: "<h1>Hi</h1><script>x()</script>"}, "# Hi"},
		{"image", engine.Snapshot{SelectedPreview: "logo.png", PreviewType: "image/png", PreviewBody: strings.Repeat("x", 2048)}, "2.0 kB"},
		{"text", engine.Snapshot{SelectedPreview: "notes.txt", PreviewType: "text/plain", PreviewBody: "plain body"}, "plain body"},
		{"loading", engine.Snapshot{SelectedPreview: "a.html", PreviewLoading: true}, "Loading a.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewPreviewModel().SetSize(80, 20).SetSnapshot(tt.snap)
			out := m.View()
			if !strings.Contains(out, tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, out)
			}
			if strings.Contains(out, "x()") {
				t.Error("script leaked into preview")
			}
		})
	}
}
