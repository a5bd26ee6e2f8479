// Package batch draws many sprites sharing one texture with a single draw
// call.
//
// Sprite geometry lives in a dense.Store, so live quads are always packed at
// the front of the vertex buffer. The index buffer covers the store's full
// capacity and is only ever extended; rendering bounds it by the live count.
package batch

import (
	"fmt"

	"github.com/Faultbox/coati/internal/engine/dense"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/render"
	"github.com/Faultbox/coati/internal/engine/texture"
)

// Handle identifies a sprite in a Batch.
type Handle = dense.Handle

// Batch is a set of textured quads. It is not safe for concurrent use.
type Batch struct {
	store   *dense.Store
	indices []uint32
}

// New creates a batch with room for capacityHint sprites.
func New(capacityHint int) *Batch {
	b := &Batch{store: dense.New(quad.FloatsPerQuad, capacityHint)}
	b.ensureIndices()
	return b
}

// Len returns the number of live sprites.
func (b *Batch) Len() int { return b.store.Len() }

// Capacity returns the number of sprites the batch holds before growing.
func (b *Batch) Capacity() int { return b.store.Capacity() }

// Indices returns the index buffer. Its length is Capacity()*6.
func (b *Batch) Indices() []uint32 { return b.indices }

// Vertices returns the packed vertex data of the live sprites. The slice
// is invalidated by the next Push or Remove.
func (b *Batch) Vertices() []float32 { return b.store.Data() }

// Push adds a sprite placed by t.
func (b *Batch) Push(t quad.Transform) (Handle, error) {
	b.store.EnsureCapacity(b.store.Len() + 1)
	b.ensureIndices()

	v := quad.Vertices(t)
	h, err := b.store.Insert(v[:])
	if err != nil {
		return 0, fmt.Errorf("batch push: %w", err)
	}
	return h, nil
}

// Remove deletes a sprite. The last sprite moves into its slot.
func (b *Batch) Remove(h Handle) error {
	if err := b.store.Remove(h); err != nil {
		return fmt.Errorf("batch remove: %w", err)
	}
	return nil
}

// Update recomputes the geometry of a sprite in place.
func (b *Batch) Update(h Handle, t quad.Transform) error {
	err := b.store.Borrow(h, func(chunk []float32) {
		quad.Write(chunk, t)
	})
	if err != nil {
		return fmt.Errorf("batch update: %w", err)
	}
	return nil
}

// Sprite returns a copy of the vertices of h.
func (b *Batch) Sprite(h Handle) ([quad.FloatsPerQuad]float32, error) {
	var out [quad.FloatsPerQuad]float32
	chunk, err := b.store.Chunk(h)
	if err != nil {
		return out, fmt.Errorf("batch sprite: %w", err)
	}
	copy(out[:], chunk)
	return out, nil
}

// Contains reports whether h is a live sprite.
func (b *Batch) Contains(h Handle) bool { return b.store.Contains(h) }

// Render draws every live sprite with atlas in one call, using the
// effective state of ctx. An empty batch draws nothing.
func (b *Batch) Render(ctx *render.Context, atlas *texture.Texture) {
	n := b.store.Len()
	if n == 0 {
		return
	}
	ctx.DrawQuads(atlas, b.store.Data(), b.indices, n)
}

// ensureIndices extends the index buffer to cover the store's capacity.
// Calling it when nothing grew is a no-op.
func (b *Batch) ensureIndices() {
	have := len(b.indices) / quad.IndicesPerQuad
	want := b.store.Capacity()
	if have >= want {
		return
	}
	b.indices = append(b.indices, make([]uint32, (want-have)*quad.IndicesPerQuad)...)
	quad.FillIndices(b.indices, have, want-have)
}
