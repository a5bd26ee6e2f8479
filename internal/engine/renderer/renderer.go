// Package renderer implements gpu.Device on OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/engine/framebuffer"
	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/shader"
	"github.com/Faultbox/coati/internal/logger"
	"github.com/Faultbox/coati/pkg/math"
)

// Renderer is the OpenGL device. All methods must be called on the thread
// that owns the GL context.
type Renderer struct {
	vao uint32
	vbo uint32
	ebo uint32

	program        uint32
	defaultProgram uint32
	uniforms       map[uint32]shader.Uniforms
}

// New initializes OpenGL and the sprite pipeline.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{uniforms: make(map[uint32]shader.Uniforms)}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	program, err := shader.CompileSprite()
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite shader: %w", err)
	}
	r.defaultProgram = program
	r.uniforms[program] = shader.Locate(program)
	r.program = program

	r.createBuffers()
	return r, nil
}

// DefaultProgram returns the built-in sprite program.
func (r *Renderer) DefaultProgram() gpu.Program {
	return gpu.Program(r.defaultProgram)
}

// NewProgram compiles a custom sprite program. It must declare the same
// uniforms and attributes as the built-in one.
func (r *Renderer) NewProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("compile program: %w", err)
	}
	r.uniforms[program] = shader.Locate(program)
	gl.UseProgram(r.program)

	logger.Debug("shader program created", zap.Uint32("program", program))
	return gpu.Program(program), nil
}

// DeleteProgram releases a program created by NewProgram.
func (r *Renderer) DeleteProgram(p gpu.Program) {
	id := uint32(p)
	if id == r.defaultProgram {
		return
	}
	delete(r.uniforms, id)
	gl.DeleteProgram(id)
}

// Close releases all GL resources owned by the renderer.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	for id := range r.uniforms {
		gl.DeleteProgram(id)
	}
	r.uniforms = nil
}

func (r *Renderer) UploadMatrix(kind gpu.MatrixKind, m math.Mat4) {
	u := r.uniforms[r.program]
	loc := u.ModelView
	if kind == gpu.MatrixProjection {
		loc = u.Projection
	}
	gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
}

func (r *Renderer) UploadColour(c gpu.Colour) {
	gl.Uniform4f(r.uniforms[r.program].Colour, c.R, c.G, c.B, c.A)
}

func (r *Renderer) EnableBlend() {
	gl.Enable(gl.BLEND)
}

func (r *Renderer) BindBlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (r *Renderer) BindShaderProgram(p gpu.Program) {
	id := uint32(p)
	if _, ok := r.uniforms[id]; !ok {
		r.uniforms[id] = shader.Locate(id)
	}
	r.program = id
	gl.UseProgram(id)
}

func (r *Renderer) BindFramebuffer(fb gpu.Framebuffer, width, height int) {
	framebuffer.Bind(uint32(fb), width, height)
}

func (r *Renderer) BindTexture(t gpu.TextureID) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (r *Renderer) DrawIndexed(vertices []float32, indices []uint32, count int) {
	if count <= 0 || len(vertices) == 0 {
		return
	}
	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STREAM_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, count*4, gl.Ptr(indices), gl.STREAM_DRAW)

	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *Renderer) ClearFramebuffer(c gpu.Colour) {
	framebuffer.Clear(c.R, c.G, c.B, c.A)
}

func (r *Renderer) CreateTexture(width, height int, format gpu.PixelFormat, pixels []byte) (gpu.TextureID, gpu.Framebuffer, error) {
	if pixels != nil && len(pixels) < width*height*format.BytesPerPixel() {
		return 0, 0, fmt.Errorf("create texture %dx%d: short pixel buffer (%d bytes)", width, height, len(pixels))
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	var ptr unsafe.Pointer
	if pixels != nil {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		pixelFormat(format), gl.UNSIGNED_BYTE, ptr)

	fbo, err := framebuffer.Attach(tex)
	if err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, 0, fmt.Errorf("create texture %dx%d: %w", width, height, err)
	}

	logger.Debug("texture created",
		zap.Uint32("texture", tex),
		zap.Uint32("fbo", fbo),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return gpu.TextureID(tex), gpu.Framebuffer(fbo), nil
}

func (r *Renderer) DeleteTexture(t gpu.TextureID, fb gpu.Framebuffer) {
	framebuffer.Delete(uint32(fb))
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

// ReadPixels returns the RGBA contents of fb, bottom row first.
func (r *Renderer) ReadPixels(fb gpu.Framebuffer, width, height int) []byte {
	return framebuffer.ReadPixels(uint32(fb), width, height)
}

// createBuffers sets up the VAO with the x, y, u, v vertex layout.
func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	stride := int32(quad.FloatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(shader.AttribPosition, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(shader.AttribPosition)
	gl.VertexAttribPointerWithOffset(shader.AttribTexCoord, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(shader.AttribTexCoord)

	gl.BindVertexArray(0)

	logger.Debug("sprite buffers created",
		zap.Uint32("vao", r.vao),
		zap.Uint32("vbo", r.vbo),
		zap.Uint32("ebo", r.ebo),
	)
}

func blendFactor(f gpu.BlendFactor) uint32 {
	switch f {
	case gpu.BlendZero:
		return gl.ZERO
	case gpu.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case gpu.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.BlendDstColor:
		return gl.DST_COLOR
	default:
		return gl.ONE
	}
}

func pixelFormat(f gpu.PixelFormat) uint32 {
	switch f {
	case gpu.FormatRGB:
		return gl.RGB
	case gpu.FormatBGR:
		return gl.BGR
	case gpu.FormatBGRA:
		return gl.BGRA
	default:
		return gl.RGBA
	}
}

var _ gpu.Device = (*Renderer)(nil)
