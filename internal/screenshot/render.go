// ABOUTME: Terminal rendering for screenshot handles: Kitty graphics or half-block ANSI art
// ABOUTME: Kitty images carry the handle id so a released handle can be deleted from the screen

package screenshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"
)

// Protocol selects how images reach the terminal.
type Protocol int

const (
	HalfBlock Protocol = iota
	Kitty
)

func (p Protocol) String() string {
	if p == Kitty {
		return "kitty"
	}
	return "halfblock"
}

// DetectProtocol inspects the environment for a Kitty-compatible terminal.
func DetectProtocol() Protocol {
	return detectProtocol(os.Getenv)
}

func detectProtocol(getenv func(string) string) Protocol {
	if getenv("KITTY_WINDOW_ID") != "" || getenv("GHOSTTY_RESOURCES_DIR") != "" || getenv("WEZTERM_PANE") != "" {
		return Kitty
	}
	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "kitty", "ghostty", "wezterm":
		return Kitty
	}
	if strings.Contains(getenv("TERM"), "kitty") {
		return Kitty
	}
	return HalfBlock
}

const kittyChunk = 4096

// Render draws h into a cols x rows cell box. NoImage and released handles
// render as nothing.
func Render(h *Handle, proto Protocol, cols, rows int) []string {
	return RenderFrame(h.Frame(), proto, cols, rows)
}

// RenderFrame draws f into a cols x rows cell box.
func RenderFrame(f Frame, proto Protocol, cols, rows int) []string {
	if f.Empty() || cols <= 0 || rows <= 0 {
		return nil
	}
	if proto == Kitty {
		return renderKitty(f, cols, rows)
	}
	return halfBlock(f.Image, cols, rows)
}

// KittyDelete returns the sequence that removes image id from the screen.
func KittyDelete(id uint32) string {
	return fmt.Sprintf("\x1b_Ga=d,d=I,i=%d,q=2\x1b\\", id)
}

func renderKitty(f Frame, cols, rows int) []string {
	img := f.Image
	data := f.Raw
	if f.Format != "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return halfBlock(img, cols, rows)
		}
		data = buf.Bytes()
	}
	cols, rows = fitCells(img.Bounds().Dx(), img.Bounds().Dy(), cols, rows)

	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for i := 0; i < len(encoded); i += kittyChunk {
		end := min(i+kittyChunk, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,q=2,i=%d,c=%d,r=%d,m=%d;%s\x1b\\", f.ID, cols, rows, more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}

	// The image occupies rows lines; the escape goes on the first one.
	lines := make([]string, rows)
	lines[0] = b.String()
	return lines
}

// fitCells scales w x h pixels into the cell box keeping the aspect ratio.
// A cell is roughly twice as tall as it is wide.
func fitCells(w, h, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	c := cols
	r := c * h / w / 2
	if r > rows {
		r = rows
		c = r * 2 * w / h
	}
	return max(c, 1), max(r, 1)
}

// halfBlock renders two pixel rows per line using "▄": the cell background
// is the top pixel, the foreground the bottom one.
func halfBlock(img image.Image, cols, rows int) []string {
	b := img.Bounds()
	tw, tr := fitCells(b.Dx(), b.Dy(), cols, rows)
	th := tr * 2

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	lines := make([]string, 0, tr)
	for y := 0; y < th; y += 2 {
		var sb strings.Builder
		for x := range tw {
			top := dst.RGBAAt(x, y)
			bot := dst.RGBAAt(x, y+1)
			fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm▄",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		sb.WriteString("\x1b[0m")
		lines = append(lines, sb.String())
	}
	return lines
}
