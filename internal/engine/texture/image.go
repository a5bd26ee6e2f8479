package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/Faultbox/coati/internal/engine/gpu"
)

// Magenta is the colour key conventionally used for transparency in
// palette-based sprite sheets.
var Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// LoadOptions control how image files become textures.
type LoadOptions struct {
	// ColourKey, when set, turns matching pixels fully transparent.
	ColourKey *color.RGBA
}

// Decode decodes image data. The name's extension selects the TGA decoder,
// which has no magic number; other formats are detected from the data.
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		}
		return nil, err
	}
	return img, nil
}

// ToRGBA converts img to a tightly packed RGBA image with its origin at 0,0.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// ApplyColourKey makes every pixel equal to key (ignoring alpha) transparent.
func ApplyColourKey(img *image.RGBA, key color.RGBA) {
	p := img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if p[i] == key.R && p[i+1] == key.G && p[i+2] == key.B {
			p[i], p[i+1], p[i+2], p[i+3] = 0, 0, 0, 0
		}
	}
}

// FromImage uploads img as an RGBA texture.
func FromImage(dev gpu.Device, img image.Image) (*Texture, error) {
	rgba := ToRGBA(img)
	return upload(dev, rgba.Rect.Dx(), rgba.Rect.Dy(), gpu.FormatRGBA, rgba.Pix)
}

// Load reads an image file and uploads it as a texture.
func Load(dev gpu.Device, path string, opts LoadOptions) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	img, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	rgba := ToRGBA(img)
	if opts.ColourKey != nil {
		ApplyColourKey(rgba, *opts.ColourKey)
	}
	return upload(dev, rgba.Rect.Dx(), rgba.Rect.Dy(), gpu.FormatRGBA, rgba.Pix)
}
