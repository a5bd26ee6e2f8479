package gpu

// Colour is an RGBA colour with float components (0.0 to 1.0).
type Colour struct {
	R, G, B, A float32
}

var (
	White       = Colour{1, 1, 1, 1}
	Black       = Colour{0, 0, 0, 1}
	Transparent = Colour{0, 0, 0, 0}
)

// RGBA creates a colour from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Colour {
	return Colour{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// WithAlpha returns a copy of the colour with a different alpha value.
func (c Colour) WithAlpha(a float32) Colour {
	return Colour{c.R, c.G, c.B, a}
}

// Array returns the components in uniform upload order.
func (c Colour) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}
