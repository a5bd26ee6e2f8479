package render

import (
	"fmt"

	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/texture"
	"github.com/Faultbox/coati/pkg/math"
)

// DrawQuads draws the first quads quads of vertices with tex, using the
// effective shader, model matrix and colour. indices must hold at least
// quads*quad.IndicesPerQuad entries.
func (c *Context) DrawQuads(tex *texture.Texture, vertices []float32, indices []uint32, quads int) {
	c.drawWith(c.running, tex, vertices, indices, quads)
}

// DrawTexture draws a single sprite of tex placed by t.
func (c *Context) DrawTexture(tex *texture.Texture, t quad.Transform) {
	v := quad.Vertices(t)
	c.DrawQuads(tex, v[:], quad.IndexPattern[:], 1)
}

// ClearTexture fills t with col.
func (c *Context) ClearTexture(t *texture.Texture, col gpu.Colour) {
	defer c.PushTarget(t)()
	c.dev.ClearFramebuffer(col)
}

// CopyTexture returns a new texture holding the pixels of src.
// The copy is drawn untinted with an identity model matrix regardless of
// the current state.
func (c *Context) CopyTexture(src *texture.Texture) (*texture.Texture, error) {
	w, h := src.Size()
	dst, err := texture.Create(c.dev, w, h)
	if err != nil {
		return nil, fmt.Errorf("copy texture: %w", err)
	}

	popTarget := c.PushTarget(dst)
	popColour := c.PushColour(gpu.White)
	popBlend := c.PushBlend(BlendNormal)

	v := quad.Vertices(quad.Unit())
	c.drawWith(math.Identity(), src, v[:], quad.IndexPattern[:], 1)

	popBlend()
	popColour()
	popTarget()
	return dst, nil
}

func (c *Context) drawWith(model math.Mat4, tex *texture.Texture, vertices []float32, indices []uint32, quads int) {
	if quads <= 0 || tex == nil {
		return
	}
	count := quads * quad.IndicesPerQuad
	if count > len(indices) || quads*quad.FloatsPerQuad > len(vertices) {
		panic(fmt.Sprintf("render: %d quads exceed buffers (%d vertices, %d indices)",
			quads, len(vertices), len(indices)))
	}

	c.dev.BindShaderProgram(c.shaders.top())
	c.dev.BindTexture(tex.ID)
	c.dev.UploadMatrix(gpu.MatrixModelView, model)
	c.dev.UploadColour(c.colours.top())
	c.dev.DrawIndexed(vertices[:quads*quad.FloatsPerQuad], indices, count)
}
