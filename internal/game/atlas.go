package game

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Faultbox/coati/internal/assets"
	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/texture"
)

// atlasCellSize is the edge of one generated atlas cell in pixels.
const atlasCellSize = 32

var atlasColours = [AtlasCells * AtlasCells]color.RGBA{
	{R: 0xe6, G: 0x4a, B: 0x19, A: 0xff},
	{R: 0x43, G: 0xa0, B: 0x47, A: 0xff},
	{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	{R: 0xfd, G: 0xd8, B: 0x35, A: 0xff},
}

// GenerateAtlas draws a fallback atlas of filled discs, one colour per cell.
func GenerateAtlas() *image.RGBA {
	size := atlasCellSize * AtlasCells
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	const r = atlasCellSize / 2
	for cell, c := range atlasColours {
		ox := (cell % AtlasCells) * atlasCellSize
		oy := (cell / AtlasCells) * atlasCellSize
		for y := 0; y < atlasCellSize; y++ {
			for x := 0; x < atlasCellSize; x++ {
				dx, dy := x-r, y-r
				if dx*dx+dy*dy < r*r {
					img.SetRGBA(ox+x, oy+y, c)
				}
			}
		}
	}
	return img
}

// loadAtlas loads name from store, or generates an atlas when name is
// empty. Magenta pixels in loaded images become transparent.
func loadAtlas(dev gpu.Device, store *assets.Manager, name string) (*texture.Texture, error) {
	if name == "" {
		return texture.FromImage(dev, GenerateAtlas())
	}
	data, err := store.Load(name)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	rgba := texture.ToRGBA(img)
	texture.ApplyColourKey(rgba, texture.Magenta)
	return texture.FromImage(dev, rgba)
}
