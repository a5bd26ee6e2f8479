package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/coati/internal/engine/gpu"
)

func TestBlendFactor(t *testing.T) {
	tests := []struct {
		in   gpu.BlendFactor
		want uint32
	}{
		{gpu.BlendZero, gl.ZERO},
		{gpu.BlendOne, gl.ONE},
		{gpu.BlendSrcAlpha, gl.SRC_ALPHA},
		{gpu.BlendOneMinusSrcAlpha, gl.ONE_MINUS_SRC_ALPHA},
		{gpu.BlendDstColor, gl.DST_COLOR},
	}
	for _, tt := range tests {
		if got := blendFactor(tt.in); got != tt.want {
			t.Errorf("blendFactor(%d) = 0x%x, want 0x%x", tt.in, got, tt.want)
		}
	}
}

func TestPixelFormat(t *testing.T) {
	tests := []struct {
		in   gpu.PixelFormat
		want uint32
	}{
		{gpu.FormatRGB, gl.RGB},
		{gpu.FormatRGBA, gl.RGBA},
		{gpu.FormatBGR, gl.BGR},
		{gpu.FormatBGRA, gl.BGRA},
	}
	for _, tt := range tests {
		if got := pixelFormat(tt.in); got != tt.want {
			t.Errorf("pixelFormat(%d) = 0x%x, want 0x%x", tt.in, got, tt.want)
		}
	}
}
