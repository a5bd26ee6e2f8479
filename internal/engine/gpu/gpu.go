// Package gpu defines the graphics primitives the renderer core drives.
//
// The core never talks to a graphics API directly. Every side effect of a
// state push or a draw goes through a Device, which keeps the batching and
// state-stack logic testable without a GL context.
package gpu

import "github.com/Faultbox/coati/pkg/math"

// MatrixKind selects which matrix uniform an upload targets.
type MatrixKind int

const (
	MatrixModelView MatrixKind = iota
	MatrixProjection
)

func (k MatrixKind) String() string {
	switch k {
	case MatrixModelView:
		return "modelview"
	case MatrixProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
)

// PixelFormat describes the channel layout of a pixel buffer.
type PixelFormat int

const (
	FormatRGB PixelFormat = iota
	FormatRGBA
	FormatBGR
	FormatBGRA
)

// BytesPerPixel returns the size of one pixel in the format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB, FormatBGR:
		return 3
	default:
		return 4
	}
}

// Program identifies a linked shader program.
type Program uint32

// TextureID identifies a texture object.
type TextureID uint32

// Framebuffer identifies a framebuffer object. Zero is the window.
type Framebuffer uint32

// ScreenFramebuffer is the default framebuffer owned by the window.
const ScreenFramebuffer Framebuffer = 0

// Device is the set of synchronous graphics primitives used by the renderer.
// Uniform uploads apply to the most recently bound program.
type Device interface {
	UploadMatrix(kind MatrixKind, m math.Mat4)
	UploadColour(c Colour)
	EnableBlend()
	BindBlendFunc(src, dst BlendFactor)
	BindShaderProgram(p Program)
	BindFramebuffer(fb Framebuffer, width, height int)
	BindTexture(t TextureID)

	// DrawIndexed draws count indices as triangles. Each vertex in vertices
	// is four floats: x, y, u, v.
	DrawIndexed(vertices []float32, indices []uint32, count int)

	// ClearFramebuffer clears the bound framebuffer to c.
	ClearFramebuffer(c Colour)

	// CreateTexture uploads pixels (nil for an empty texture) and returns the
	// texture together with a framebuffer that renders into it.
	CreateTexture(width, height int, format PixelFormat, pixels []byte) (TextureID, Framebuffer, error)
	DeleteTexture(t TextureID, fb Framebuffer)
}
