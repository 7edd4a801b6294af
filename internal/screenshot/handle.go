// ABOUTME: Decoded screenshot handles with counted, idempotent release
// ABOUTME: NoImage is the placeholder adopted after a failed fetch and is never released

package screenshot

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/webp" // register decoder
)

var nextID atomic.Uint32

// Handle is one displayable screenshot. It is released on the engine loop
// while the UI may still be reading it, so the pixel fields are locked.
type Handle struct {
	id     uint32
	format string

	mu       sync.RWMutex
	img      image.Image
	raw      []byte
	released bool
}

// Frame is an immutable render-side view of a handle. It stays drawable
// after the handle it came from is released.
type Frame struct {
	ID     uint32
	Image  image.Image
	Raw    []byte
	Format string
}

// Empty reports whether the frame has nothing to draw.
func (f Frame) Empty() bool { return f.Image == nil }

// Size returns the image dimensions.
func (f Frame) Size() (int, int) {
	if f.Image == nil {
		return 0, 0
	}
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// NoImage is the placeholder handle.
var NoImage = &Handle{}

// Decode turns fetched bytes into a Handle.
func Decode(data []byte) (*Handle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode screenshot: empty payload")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return &Handle{id: nextID.Add(1), img: img, raw: data, format: format}, nil
}

// ID is a process-unique identifier, used as the Kitty image id.
func (h *Handle) ID() uint32 { return h.id }

// IsPlaceholder reports whether h is NoImage.
func (h *Handle) IsPlaceholder() bool { return h == nil || h == NoImage }

// Frame captures the drawable state. Placeholders and released handles
// give an empty frame.
func (h *Handle) Frame() Frame {
	if h.IsPlaceholder() {
		return Frame{}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return Frame{}
	}
	return Frame{ID: h.id, Image: h.img, Raw: h.raw, Format: h.format}
}

// Image returns the decoded image, or nil for NoImage and released handles.
func (h *Handle) Image() image.Image { return h.Frame().Image }

// Raw returns the original encoded bytes.
func (h *Handle) Raw() []byte { return h.Frame().Raw }

// Format is the decoder name, such as "png".
func (h *Handle) Format() string {
	if h.IsPlaceholder() {
		return ""
	}
	return h.format
}

// Size returns the image dimensions.
func (h *Handle) Size() (int, int) { return h.Frame().Size() }

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	if h.IsPlaceholder() {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}

// Release frees the pixel data. Only the first call has any effect, and the
// placeholder is never released. Frames taken earlier keep their image.
func (h *Handle) Release() {
	if h.IsPlaceholder() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	h.img = nil
	h.raw = nil
}
