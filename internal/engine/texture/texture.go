// Package texture manages GPU textures and the images they are built from.
package texture

import (
	"errors"
	"fmt"

	"github.com/Faultbox/coati/internal/engine/gpu"
)

// ErrUnsupportedFormat is returned for pixel layouts and image files that
// cannot be turned into a texture.
var ErrUnsupportedFormat = errors.New("texture: unsupported format")

// Texture is a GPU texture that can also be rendered into.
// The screen is represented by a Texture bound to the default framebuffer.
type Texture struct {
	ID     gpu.TextureID
	FB     gpu.Framebuffer
	Width  int
	Height int

	screen bool
}

// Screen returns the texture standing for the window's default framebuffer.
func Screen(width, height int) *Texture {
	return &Texture{FB: gpu.ScreenFramebuffer, Width: width, Height: height, screen: true}
}

// IsScreen reports whether t is the window's default framebuffer.
func (t *Texture) IsScreen() bool { return t.screen }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) { return t.Width, t.Height }

// Resize updates the recorded size of the screen texture.
// Offscreen textures keep their allocated size.
func (t *Texture) Resize(width, height int) {
	if !t.screen {
		return
	}
	t.Width, t.Height = width, height
}

// Create allocates an empty width x height texture.
func Create(dev gpu.Device, width, height int) (*Texture, error) {
	return upload(dev, width, height, gpu.FormatRGBA, nil)
}

// FromPixels uploads a tightly packed pixel buffer. bytesPerPixel selects
// RGB (3) or RGBA (4).
func FromPixels(dev gpu.Device, width, height, bytesPerPixel int, pixels []byte) (*Texture, error) {
	var format gpu.PixelFormat
	switch bytesPerPixel {
	case 3:
		format = gpu.FormatRGB
	case 4:
		format = gpu.FormatRGBA
	default:
		return nil, fmt.Errorf("%w: %d bytes per pixel", ErrUnsupportedFormat, bytesPerPixel)
	}
	if want := width * height * bytesPerPixel; len(pixels) < want {
		return nil, fmt.Errorf("texture %dx%d: got %d bytes, want %d", width, height, len(pixels), want)
	}
	return upload(dev, width, height, format, pixels)
}

// Free releases the GPU resources held by t. Freeing the screen is a no-op.
func (t *Texture) Free(dev gpu.Device) {
	if t.screen || t.ID == 0 {
		return
	}
	dev.DeleteTexture(t.ID, t.FB)
	t.ID, t.FB = 0, 0
}

func upload(dev gpu.Device, width, height int, format gpu.PixelFormat, pixels []byte) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture: invalid size %dx%d", width, height)
	}
	id, fb, err := dev.CreateTexture(width, height, format, pixels)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	return &Texture{ID: id, FB: fb, Width: width, Height: height}, nil
}
