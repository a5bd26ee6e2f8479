package render

import (
	"testing"

	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/texture"
	"github.com/Faultbox/coati/pkg/math"
)

func TestDrawTextureUsesEffectiveState(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex, _ := texture.Create(dev, 4, 4)
	tint := gpu.Colour{R: 0.5, G: 0.5, B: 0.5, A: 1}

	defer ctx.PushColour(tint)()
	defer ctx.PushTransform(math.Vec2{X: 0.2, Y: 0.1}, 1, 0)()
	dev.Reset()

	tr := quad.Transform{Src: quad.UnitRect, Dst: quad.Rect{Left: 0, Right: 0.5, Top: 0, Bottom: 0.5}}
	ctx.DrawTexture(tex, tr)

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Count != quad.IndicesPerQuad || d.Texture != tex.ID || d.Program != 7 {
		t.Errorf("draw = count %d tex %d program %d", d.Count, d.Texture, d.Program)
	}
	want := quad.Vertices(tr)
	for i, v := range d.Vertices {
		if v != want[i] {
			t.Fatalf("vertex float %d = %v, want %v", i, v, want[i])
		}
	}
	if dev.Colour != tint {
		t.Errorf("Colour = %v, want %v", dev.Colour, tint)
	}
	if !dev.ModelView.ApproxEqual(ctx.ModelView(), 0) {
		t.Errorf("uploaded ModelView = %v, want %v", dev.ModelView, ctx.ModelView())
	}
}

func TestDrawQuadsBounds(t *testing.T) {
	ctx, dev := newTestContext(t)
	tex, _ := texture.Create(dev, 4, 4)
	dev.Reset()

	vertices := make([]float32, 3*quad.FloatsPerQuad)
	indices := make([]uint32, 4*quad.IndicesPerQuad)
	quad.FillIndices(indices, 0, 4)

	ctx.DrawQuads(tex, vertices, indices, 0)
	if len(dev.Draws()) != 0 {
		t.Error("drew with zero quads")
	}

	ctx.DrawQuads(tex, vertices, indices, 2)
	d := dev.Draws()[0]
	if d.Count != 12 || len(d.Vertices) != 2*quad.FloatsPerQuad {
		t.Errorf("draw count %d vertices %d, want 12 and %d", d.Count, len(d.Vertices), 2*quad.FloatsPerQuad)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when quads exceed the vertex buffer")
		}
	}()
	ctx.DrawQuads(tex, vertices, indices, 4)
}

func TestClearTexture(t *testing.T) {
	ctx, dev := newTestContext(t)
	off, _ := texture.Create(dev, 8, 8)
	dev.Reset()

	ctx.ClearTexture(off, gpu.Black)

	clears := dev.Filter(gpu.OpClear)
	if len(clears) != 1 || clears[0].Framebuffer != off.FB || clears[0].Colour != gpu.Black {
		t.Errorf("clears = %+v", clears)
	}
	if dev.Framebuffer != gpu.ScreenFramebuffer {
		t.Errorf("fb after clear = %d, want screen", dev.Framebuffer)
	}
	if ctx.Depth(StackTarget) != 0 {
		t.Errorf("target depth = %d, want 0", ctx.Depth(StackTarget))
	}
}

func TestCopyTexture(t *testing.T) {
	ctx, dev := newTestContext(t)
	src, _ := texture.Create(dev, 20, 10)

	defer ctx.PushColour(gpu.Colour{R: 1, A: 0.5})()
	defer ctx.PushTransform(math.Vec2{X: 0.3}, 2, 1)()
	dev.Reset()

	dst, err := ctx.CopyTexture(src)
	if err != nil {
		t.Fatalf("CopyTexture: %v", err)
	}
	if w, h := dst.Size(); w != 20 || h != 10 {
		t.Errorf("copy size = %dx%d, want 20x10", w, h)
	}
	if dst.ID == src.ID {
		t.Error("copy shares the source texture")
	}

	var drawFB gpu.Framebuffer
	for _, c := range dev.Calls {
		if c.Op == gpu.OpBindTarget {
			drawFB = c.Framebuffer
		}
		if c.Op == gpu.OpDraw {
			break
		}
	}
	if drawFB != dst.FB {
		t.Errorf("drew into fb %d, want %d", drawFB, dst.FB)
	}

	var mv []gpu.Call
	for _, c := range dev.Filter(gpu.OpUploadMatrix) {
		if c.Kind == gpu.MatrixModelView {
			mv = append(mv, c)
		}
	}
	if len(mv) == 0 || !mv[len(mv)-1].Matrix.ApproxEqual(math.Identity(), 0) {
		t.Error("copy was not drawn with an identity model matrix")
	}

	if dev.Framebuffer != gpu.ScreenFramebuffer {
		t.Errorf("fb after copy = %d, want screen", dev.Framebuffer)
	}
	if ctx.Depth(StackColour) != 1 || ctx.Depth(StackBlend) != 0 {
		t.Errorf("depths after copy colour %d blend %d, want 1 and 0",
			ctx.Depth(StackColour), ctx.Depth(StackBlend))
	}
}

func TestCopyTextureDeviceFailure(t *testing.T) {
	ctx, dev := newTestContext(t)
	src, _ := texture.Create(dev, 2, 2)
	dev.FailCreate = true

	if _, err := ctx.CopyTexture(src); err == nil {
		t.Error("expected error")
	}
	if ctx.Depth(StackTarget) != 0 {
		t.Error("failed copy left a target pushed")
	}
}
