package gpu

import (
	"testing"

	"github.com/Faultbox/coati/pkg/math"
)

func TestRecorderTracksState(t *testing.T) {
	r := NewRecorder()

	r.BindShaderProgram(3)
	r.BindFramebuffer(7, 64, 32)
	r.EnableBlend()
	r.BindBlendFunc(BlendSrcAlpha, BlendOneMinusSrcAlpha)
	r.UploadColour(Colour{1, 0, 0, 1})
	r.UploadMatrix(MatrixProjection, math.Scale(2, 2, 1))

	if r.Program != 3 {
		t.Errorf("Program = %d, want 3", r.Program)
	}
	if r.Framebuffer != 7 || r.Viewport != [2]int{64, 32} {
		t.Errorf("Framebuffer = %d %v, want 7 [64 32]", r.Framebuffer, r.Viewport)
	}
	if !r.Blending || r.BlendSrc != BlendSrcAlpha || r.BlendDst != BlendOneMinusSrcAlpha {
		t.Errorf("blend state = %v %v %v", r.Blending, r.BlendSrc, r.BlendDst)
	}
	if r.Projection != math.Scale(2, 2, 1) {
		t.Errorf("Projection = %v", r.Projection)
	}
	if r.ModelView != math.Identity() {
		t.Errorf("ModelView changed by projection upload: %v", r.ModelView)
	}
	if len(r.Calls) != 6 {
		t.Errorf("len(Calls) = %d, want 6", len(r.Calls))
	}
}

func TestRecorderDrawCopiesBuffers(t *testing.T) {
	r := NewRecorder()
	verts := []float32{1, 2, 3, 4}
	idx := []uint32{0, 1, 2, 0, 2, 3, 9, 9}

	r.DrawIndexed(verts, idx, 6)
	verts[0] = 100

	draws := r.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws) = %d, want 1", len(draws))
	}
	if draws[0].Vertices[0] != 1 {
		t.Error("recorded vertices alias the caller's slice")
	}
	if len(draws[0].Indices) != 6 {
		t.Errorf("recorded %d indices, want 6", len(draws[0].Indices))
	}
}

func TestRecorderTextures(t *testing.T) {
	r := NewRecorder()

	id, fb, err := r.CreateTexture(2, 2, FormatRGBA, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if id == 0 || fb == ScreenFramebuffer {
		t.Errorf("CreateTexture returned zero ids: %d %d", id, fb)
	}
	if _, _, err := r.CreateTexture(2, 2, FormatRGBA, make([]byte, 3)); err == nil {
		t.Error("expected error for short pixel buffer")
	}
	if r.LiveTextures() != 1 {
		t.Errorf("LiveTextures = %d, want 1", r.LiveTextures())
	}
	r.DeleteTexture(id, fb)
	if r.LiveTextures() != 0 {
		t.Errorf("LiveTextures after delete = %d, want 0", r.LiveTextures())
	}
}

func TestPixelFormatBytes(t *testing.T) {
	tests := map[PixelFormat]int{FormatRGB: 3, FormatBGR: 3, FormatRGBA: 4, FormatBGRA: 4}
	for f, want := range tests {
		if got := f.BytesPerPixel(); got != want {
			t.Errorf("%d.BytesPerPixel() = %d, want %d", f, got, want)
		}
	}
}

func TestColourHelpers(t *testing.T) {
	c := RGBA(255, 0, 51, 255)
	if c.R != 1 || c.G != 0 || c.A != 1 {
		t.Errorf("RGBA() = %+v", c)
	}
	if got := White.WithAlpha(0.5); got.A != 0.5 || got.R != 1 {
		t.Errorf("WithAlpha() = %+v", got)
	}
}
