// Package render holds the drawing state of a frame.
//
// A Context owns five bounded state stacks (transform, colour, blend mode,
// shader and render target). Every push applies its effect to the device
// immediately and returns a function that pops it again, so callers nest
// state with
//
//	defer ctx.PushColour(tint)()
//
// Overflowing a stack resets it to its base entry before the push and
// underflowing it re-applies the base entry. Both are recorded as the
// Context's last error and logged, or panic in strict mode.
package render

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/texture"
	"github.com/Faultbox/coati/internal/logger"
	"github.com/Faultbox/coati/pkg/math"
)

var (
	// ErrStackOverflow is recorded when a push exceeds the maximum depth.
	ErrStackOverflow = errors.New("render: stack overflow")

	// ErrStackUnderflow is recorded when a pop would remove the base entry.
	ErrStackUnderflow = errors.New("render: stack underflow")
)

// Option configures a Context.
type Option func(*Context)

// WithMaxDepth sets how many entries each stack holds above its base.
func WithMaxDepth(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithStrict makes stack overflow and underflow panic instead of recovering.
func WithStrict(strict bool) Option {
	return func(c *Context) { c.strict = strict }
}

// WithLogger sets the logger used for stack errors. The default is the
// global logger named "render".
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// Context is the drawing state machine. It is not safe for concurrent use
// and must be driven from the thread that owns the graphics context.
type Context struct {
	dev      gpu.Device
	log      *zap.Logger
	maxDepth int
	strict   bool

	screen *texture.Texture

	transforms stack[transformEntry]
	running    math.Mat4
	colours    stack[gpu.Colour]
	blends     stack[BlendMode]
	shaders    stack[gpu.Program]
	targets    stack[*texture.Texture]

	blending bool
	lastErr  error
}

// NewContext creates a Context drawing to screen with program as the base
// shader, and applies the base state to dev.
func NewContext(dev gpu.Device, screen *texture.Texture, program gpu.Program, opts ...Option) *Context {
	c := &Context{
		dev:      dev,
		log:      logger.Named("render"),
		maxDepth: DefaultMaxDepth,
		screen:   screen,
		running:  math.Identity(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transforms = newStack(transformEntry{inverse: math.Identity()}, c.maxDepth)
	c.colours = newStack(gpu.White, c.maxDepth)
	c.blends = newStack(BlendNormal, c.maxDepth)
	c.shaders = newStack(program, c.maxDepth)
	c.targets = newStack(screen, c.maxDepth)

	dev.BindShaderProgram(program)
	c.bindTarget(screen)
	dev.UploadMatrix(gpu.MatrixModelView, c.running)
	dev.UploadColour(gpu.White)
	c.bindBlend(BlendNormal)
	return c
}

// Device returns the device the Context drives.
func (c *Context) Device() gpu.Device { return c.dev }

// Screen returns the texture standing for the window.
func (c *Context) Screen() *texture.Texture { return c.screen }

// ResizeScreen records a new window size and rebinds the screen if it is
// the active target.
func (c *Context) ResizeScreen(width, height int) {
	c.screen.Resize(width, height)
	if c.Target().IsScreen() {
		c.bindTarget(c.screen)
	}
}

// LastError returns the most recent stack error, or nil.
func (c *Context) LastError() error { return c.lastErr }

// ClearError resets the last error.
func (c *Context) ClearError() { c.lastErr = nil }

// MaxDepth returns the per-stack depth limit.
func (c *Context) MaxDepth() int { return c.maxDepth }

// Depth returns the number of entries pushed on s above its base.
func (c *Context) Depth(s Stack) int {
	switch s {
	case StackTransform:
		return c.transforms.depth()
	case StackColour:
		return c.colours.depth()
	case StackBlend:
		return c.blends.depth()
	case StackShader:
		return c.shaders.depth()
	case StackTarget:
		return c.targets.depth()
	default:
		return 0
	}
}

// ModelView returns the running model matrix.
func (c *Context) ModelView() math.Mat4 { return c.running }

// Colour returns the effective tint.
func (c *Context) Colour() gpu.Colour { return c.colours.top() }

// Blend returns the effective blend mode.
func (c *Context) Blend() BlendMode { return c.blends.top() }

// Shader returns the effective shader program.
func (c *Context) Shader() gpu.Program { return c.shaders.top() }

// Target returns the effective render target.
func (c *Context) Target() *texture.Texture { return c.targets.top() }

// transformEntry is what PopTransform needs to undo one push. A singular
// matrix has no inverse, so the running matrix before the push is kept.
type transformEntry struct {
	inverse  math.Mat4
	singular bool
	saved    math.Mat4
}

// PushTransform composes a translation to pos, a rotation of rot radians
// and a uniform scale, all about the centre of the unit square, onto the
// running model matrix.
func (c *Context) PushTransform(pos math.Vec2, scale, rot float32) func() {
	m := math.Translate(0.5, 0.5, 0).
		Mul(math.Scale(scale, scale, 1)).
		Mul(math.RotateZ(rot)).
		Mul(math.Translate(pos.X-0.5, pos.Y-0.5, 0))

	var e transformEntry
	inv, ok := m.TryInverse()
	if ok {
		e.inverse = inv
	} else {
		e.singular = true
		e.saved = c.running
	}

	if c.transforms.push(e, c.maxDepth) {
		c.running = math.Identity()
		if e.singular {
			e.saved = c.running
			c.transforms.setTop(e)
		}
		c.fail(ErrStackOverflow, StackTransform)
	}
	c.running = c.running.Mul(m)
	return c.PopTransform
}

// PopTransform undoes the most recent PushTransform by multiplying with the
// inverse of the pushed matrix.
func (c *Context) PopTransform() {
	e, under := c.transforms.pop()
	if under {
		c.running = math.Identity()
		c.fail(ErrStackUnderflow, StackTransform)
		return
	}
	if e.singular {
		c.running = e.saved
		return
	}
	c.running = c.running.Mul(e.inverse)
}

// PushColour sets the tint applied to subsequent draws.
func (c *Context) PushColour(col gpu.Colour) func() {
	if c.colours.push(col, c.maxDepth) {
		c.fail(ErrStackOverflow, StackColour)
	}
	c.dev.UploadColour(col)
	return c.PopColour
}

// PopColour restores the previous tint, or opaque white.
func (c *Context) PopColour() {
	if _, under := c.colours.pop(); under {
		c.fail(ErrStackUnderflow, StackColour)
	}
	c.dev.UploadColour(c.colours.top())
}

// PushBlend sets the blend mode, enabling blending on first use.
func (c *Context) PushBlend(m BlendMode) func() {
	if c.blends.push(m, c.maxDepth) {
		c.fail(ErrStackOverflow, StackBlend)
	}
	if !c.blending {
		c.dev.EnableBlend()
		c.blending = true
	}
	c.bindBlend(m)
	return c.PopBlend
}

// PopBlend restores the previous blend mode, or BlendNormal.
func (c *Context) PopBlend() {
	if _, under := c.blends.pop(); under {
		c.fail(ErrStackUnderflow, StackBlend)
	}
	c.bindBlend(c.blends.top())
}

// PushShader makes p the active program and uploads the current uniforms
// to it.
func (c *Context) PushShader(p gpu.Program) func() {
	if c.shaders.push(p, c.maxDepth) {
		c.fail(ErrStackOverflow, StackShader)
	}
	c.useShader(p)
	return c.PopShader
}

// PopShader reactivates the previous program.
func (c *Context) PopShader() {
	if _, under := c.shaders.pop(); under {
		c.fail(ErrStackUnderflow, StackShader)
	}
	c.useShader(c.shaders.top())
}

// PushTarget redirects drawing into t. A nil t means the screen.
func (c *Context) PushTarget(t *texture.Texture) func() {
	if t == nil {
		t = c.screen
	}
	if c.targets.push(t, c.maxDepth) {
		c.fail(ErrStackOverflow, StackTarget)
	}
	c.bindTarget(t)
	return c.PopTarget
}

// PopTarget rebinds the previous target, or the screen.
func (c *Context) PopTarget() {
	if _, under := c.targets.pop(); under {
		c.fail(ErrStackUnderflow, StackTarget)
	}
	c.bindTarget(c.targets.top())
}

// PushAll pushes a target, colour, transform and blend mode in one call.
func (c *Context) PushAll(target *texture.Texture, col gpu.Colour, pos math.Vec2, scale, rot float32, blend BlendMode) func() {
	c.PushTarget(target)
	c.PushColour(col)
	c.PushTransform(pos, scale, rot)
	c.PushBlend(blend)
	return c.PopAll
}

// PopAll undoes PushAll.
func (c *Context) PopAll() {
	c.PopBlend()
	c.PopTransform()
	c.PopColour()
	c.PopTarget()
}

// Reset drops every pushed entry and re-applies the base state.
func (c *Context) Reset() {
	c.transforms.reset()
	c.colours.reset()
	c.blends.reset()
	c.shaders.reset()
	c.targets.reset()
	c.running = math.Identity()

	c.useShader(c.shaders.top())
	c.bindTarget(c.targets.top())
	c.bindBlend(c.blends.top())
}

// Projection returns the projection matrix used when drawing into t.
// The unit square covers the whole target; the screen's Y axis points down.
func Projection(t *texture.Texture) math.Mat4 {
	if t.IsScreen() {
		return math.Ortho(0, 1, 1, 0, -100, 100)
	}
	return math.Ortho(0, 1, 0, 1, -100, 100)
}

func (c *Context) bindTarget(t *texture.Texture) {
	c.dev.BindFramebuffer(t.FB, t.Width, t.Height)
	c.dev.UploadMatrix(gpu.MatrixProjection, Projection(t))
}

func (c *Context) bindBlend(m BlendMode) {
	src, dst := m.Factors()
	c.dev.BindBlendFunc(src, dst)
}

// useShader binds p and uploads the uniforms it has not seen yet.
func (c *Context) useShader(p gpu.Program) {
	c.dev.BindShaderProgram(p)
	c.dev.UploadMatrix(gpu.MatrixProjection, Projection(c.targets.top()))
	c.dev.UploadMatrix(gpu.MatrixModelView, c.running)
	c.dev.UploadColour(c.colours.top())
}

func (c *Context) fail(kind error, s Stack) {
	err := fmt.Errorf("%w: %s", kind, s)
	if c.strict {
		panic(err)
	}
	c.lastErr = err
	c.log.Error("state stack error",
		zap.String("stack", s.String()),
		zap.Int("depth", c.maxDepth),
		zap.Error(err))
}
