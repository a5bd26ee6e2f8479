package gpu

import (
	"fmt"

	"github.com/Faultbox/coati/pkg/math"
)

// Op names a recorded Device call.
type Op string

const (
	OpUploadMatrix Op = "upload_matrix"
	OpUploadColour Op = "upload_colour"
	OpEnableBlend  Op = "enable_blend"
	OpBlendFunc    Op = "blend_func"
	OpBindProgram  Op = "bind_program"
	OpBindTarget   Op = "bind_framebuffer"
	OpBindTexture  Op = "bind_texture"
	OpDraw         Op = "draw_indexed"
	OpClear        Op = "clear"
	OpCreate       Op = "create_texture"
	OpDelete       Op = "delete_texture"
)

// Call is one recorded Device call. Only the fields relevant to Op are set.
type Call struct {
	Op          Op
	Kind        MatrixKind
	Matrix      math.Mat4
	Colour      Colour
	Src, Dst    BlendFactor
	Program     Program
	Framebuffer Framebuffer
	Width       int
	Height      int
	Texture     TextureID
	Count       int
	Vertices    []float32
	Indices     []uint32
}

// Recorder is an in-memory Device. It tracks the resulting GPU state and
// keeps a log of every call, which makes it usable both as a headless
// backend and as a test double.
type Recorder struct {
	Calls []Call

	Program     Program
	Framebuffer Framebuffer
	Viewport    [2]int
	Texture     TextureID
	Blending    bool
	BlendSrc    BlendFactor
	BlendDst    BlendFactor
	Colour      Colour
	ModelView   math.Mat4
	Projection  math.Mat4

	// FailCreate makes CreateTexture return an error.
	FailCreate bool

	nextTexture TextureID
	nextFB      Framebuffer
	textures    map[TextureID]Framebuffer
}

// NewRecorder returns a Recorder in the GL default state.
func NewRecorder() *Recorder {
	return &Recorder{
		BlendSrc:   BlendOne,
		BlendDst:   BlendZero,
		ModelView:  math.Identity(),
		Projection: math.Identity(),
		textures:   make(map[TextureID]Framebuffer),
	}
}

func (r *Recorder) UploadMatrix(kind MatrixKind, m math.Mat4) {
	if kind == MatrixProjection {
		r.Projection = m
	} else {
		r.ModelView = m
	}
	r.Calls = append(r.Calls, Call{Op: OpUploadMatrix, Kind: kind, Matrix: m})
}

func (r *Recorder) UploadColour(c Colour) {
	r.Colour = c
	r.Calls = append(r.Calls, Call{Op: OpUploadColour, Colour: c})
}

func (r *Recorder) EnableBlend() {
	r.Blending = true
	r.Calls = append(r.Calls, Call{Op: OpEnableBlend})
}

func (r *Recorder) BindBlendFunc(src, dst BlendFactor) {
	r.BlendSrc, r.BlendDst = src, dst
	r.Calls = append(r.Calls, Call{Op: OpBlendFunc, Src: src, Dst: dst})
}

func (r *Recorder) BindShaderProgram(p Program) {
	r.Program = p
	r.Calls = append(r.Calls, Call{Op: OpBindProgram, Program: p})
}

func (r *Recorder) BindFramebuffer(fb Framebuffer, width, height int) {
	r.Framebuffer = fb
	r.Viewport = [2]int{width, height}
	r.Calls = append(r.Calls, Call{Op: OpBindTarget, Framebuffer: fb, Width: width, Height: height})
}

func (r *Recorder) BindTexture(t TextureID) {
	r.Texture = t
	r.Calls = append(r.Calls, Call{Op: OpBindTexture, Texture: t})
}

func (r *Recorder) DrawIndexed(vertices []float32, indices []uint32, count int) {
	r.Calls = append(r.Calls, Call{
		Op:       OpDraw,
		Count:    count,
		Program:  r.Program,
		Texture:  r.Texture,
		Vertices: append([]float32(nil), vertices...),
		Indices:  append([]uint32(nil), indices[:count]...),
	})
}

func (r *Recorder) ClearFramebuffer(c Colour) {
	r.Calls = append(r.Calls, Call{Op: OpClear, Colour: c, Framebuffer: r.Framebuffer})
}

func (r *Recorder) CreateTexture(width, height int, format PixelFormat, pixels []byte) (TextureID, Framebuffer, error) {
	if r.FailCreate {
		return 0, 0, fmt.Errorf("create texture %dx%d: device refused", width, height)
	}
	if pixels != nil && len(pixels) < width*height*format.BytesPerPixel() {
		return 0, 0, fmt.Errorf("create texture %dx%d: short pixel buffer (%d bytes)", width, height, len(pixels))
	}
	if r.textures == nil {
		r.textures = make(map[TextureID]Framebuffer)
	}
	r.nextTexture++
	r.nextFB++
	r.textures[r.nextTexture] = r.nextFB
	r.Calls = append(r.Calls, Call{Op: OpCreate, Texture: r.nextTexture, Framebuffer: r.nextFB, Width: width, Height: height})
	return r.nextTexture, r.nextFB, nil
}

func (r *Recorder) DeleteTexture(t TextureID, fb Framebuffer) {
	delete(r.textures, t)
	r.Calls = append(r.Calls, Call{Op: OpDelete, Texture: t, Framebuffer: fb})
}

// LiveTextures returns the number of textures created and not yet deleted.
func (r *Recorder) LiveTextures() int {
	return len(r.textures)
}

// Draws returns the recorded draw calls.
func (r *Recorder) Draws() []Call {
	return r.Filter(OpDraw)
}

// Filter returns the recorded calls with the given op.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the call log, keeping the tracked state.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

var _ Device = (*Recorder)(nil)
