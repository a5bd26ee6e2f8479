// Package camera provides a 2D camera for the unit-square render space.
package camera

import (
	gomath "math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/coati/internal/engine/render"
	"github.com/Faultbox/coati/pkg/math"
)

// screenCentre is the middle of the unit square.
var screenCentre = math.Vec2{X: 0.5, Y: 0.5}

// scrollAnim holds the tweens of an animated view change.
type scrollAnim struct {
	tweens [3]*gween.Tween // centre x, centre y, zoom
	done   [3]bool
}

// Camera looks at a point of the unit square with a zoom and a rotation.
type Camera struct {
	// Centre is the world point shown in the middle of the target.
	Centre math.Vec2

	Zoom     float32
	Rotation float32 // radians

	// Constraints
	MinZoom float32
	MaxZoom float32

	// Sensitivity
	PanSpeed        float32 // unit-square widths per second at zoom 1
	RotateSpeed     float32 // radians per second
	ZoomSensitivity float32

	scroll *scrollAnim
}

// New creates a camera showing the whole unit square.
func New() *Camera {
	return &Camera{
		Centre:          screenCentre,
		Zoom:            1,
		MinZoom:         0.25,
		MaxZoom:         4,
		PanSpeed:        0.5,
		RotateSpeed:     1.5,
		ZoomSensitivity: 0.1,
	}
}

// Reset returns to the default view, keeping the constraints.
func (c *Camera) Reset() {
	c.scroll = nil
	c.Centre = screenCentre
	c.Zoom = 1
	c.Rotation = 0
}

// ScrollTo animates the centre and zoom over duration seconds. Rotation is
// reset at once.
func (c *Camera) ScrollTo(centre math.Vec2, zoom, duration float32, easeFn ease.TweenFunc) {
	c.Rotation = 0
	c.scroll = &scrollAnim{tweens: [3]*gween.Tween{
		gween.New(c.Centre.X, centre.X, duration, easeFn),
		gween.New(c.Centre.Y, centre.Y, duration, easeFn),
		gween.New(c.Zoom, zoom, duration, easeFn),
	}}
}

// ScrollHome animates back to the default view.
func (c *Camera) ScrollHome(duration float32) {
	c.ScrollTo(screenCentre, 1, duration, ease.OutCubic)
}

// Scrolling reports whether a ScrollTo animation is running.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// Update advances a running scroll animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.scroll == nil {
		return
	}
	fields := [3]*float32{&c.Centre.X, &c.Centre.Y, &c.Zoom}
	finished := true
	for i, tw := range c.scroll.tweens {
		if c.scroll.done[i] {
			continue
		}
		v, done := tw.Update(dt)
		*fields[i] = v
		c.scroll.done[i] = done
		finished = finished && done
	}
	if finished {
		c.scroll = nil
	}
}

// HandleZoom scales the zoom by delta steps, e.g. wheel clicks.
func (c *Camera) HandleZoom(delta float32) {
	if delta == 0 {
		return
	}
	c.scroll = nil
	c.Zoom += delta * c.Zoom * c.ZoomSensitivity
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
}

// HandleMovement pans by right and down, in screen directions, for dt
// seconds. The speed is constant on screen regardless of zoom.
func (c *Camera) HandleMovement(right, down, dt float32) {
	if right == 0 && down == 0 {
		return
	}
	c.scroll = nil
	step := math.Vec2{X: right, Y: down}.Scale(c.PanSpeed * dt / c.Zoom)
	c.Centre = c.Centre.Add(c.unrotate(step))
}

// HandleRotate turns the view by dir (-1, 0 or 1) for dt seconds.
func (c *Camera) HandleRotate(dir, dt float32) {
	c.Rotation += dir * c.RotateSpeed * dt
}

// Offset returns the translation that brings Centre to the middle of the
// target.
func (c *Camera) Offset() math.Vec2 {
	return screenCentre.Sub(c.Centre)
}

// Apply pushes the camera transform onto ctx and returns its pop.
func (c *Camera) Apply(ctx *render.Context) func() {
	return ctx.PushTransform(c.Offset(), c.Zoom, c.Rotation)
}

// ScreenToWorld maps a unit-square screen point to world space.
func (c *Camera) ScreenToWorld(p math.Vec2) math.Vec2 {
	return c.unrotate(p.Sub(screenCentre).Scale(1 / c.Zoom)).Add(c.Centre)
}

// unrotate turns a screen-space vector into world space.
func (c *Camera) unrotate(v math.Vec2) math.Vec2 {
	if c.Rotation == 0 {
		return v
	}
	s, cos := gomath.Sincos(float64(-c.Rotation))
	return v.Rotate(float32(s), float32(cos))
}
