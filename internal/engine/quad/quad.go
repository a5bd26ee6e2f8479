// Package quad turns sprite transforms into textured quad vertices.
package quad

import (
	"math"

	cmath "github.com/Faultbox/coati/pkg/math"
)

const (
	FloatsPerVertex = 4 // x, y, u, v
	VerticesPerQuad = 4
	FloatsPerQuad   = FloatsPerVertex * VerticesPerQuad
	IndicesPerQuad  = 6

	// RotationEpsilon is the largest angle treated as no rotation.
	RotationEpsilon = 1e-4
)

// IndexPattern is the two-triangle index order for one quad whose vertices
// are left-top, right-top, right-bottom, left-bottom.
var IndexPattern = [IndicesPerQuad]uint32{0, 1, 2, 0, 2, 3}

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Right, Top, Bottom float32
}

// UnitRect covers the whole unit square.
var UnitRect = Rect{Left: 0, Right: 1, Top: 0, Bottom: 1}

// Transform describes where a region of a texture lands.
// Src is in texture space, Dst in local unit space. Rotation is in radians
// around Origin.
type Transform struct {
	Src      Rect
	Dst      Rect
	Origin   cmath.Vec2
	Rotation float32
	FlipH    bool
	FlipV    bool
}

// Unit returns a transform that maps the whole texture onto the unit square.
func Unit() Transform {
	return Transform{Src: UnitRect, Dst: UnitRect}
}

// Vertices computes the four vertices of t.
func Vertices(t Transform) [FloatsPerQuad]float32 {
	var out [FloatsPerQuad]float32
	Write(out[:], t)
	return out
}

// Write stores the vertices of t into dst, which must hold FloatsPerQuad floats.
func Write(dst []float32, t Transform) {
	_ = dst[FloatsPerQuad-1]

	src := t.Src
	if t.FlipH {
		src.Left, src.Right = src.Right, src.Left
	}
	if t.FlipV {
		src.Top, src.Bottom = src.Bottom, src.Top
	}

	corners := [VerticesPerQuad]cmath.Vec2{
		{X: t.Dst.Left, Y: t.Dst.Top},
		{X: t.Dst.Right, Y: t.Dst.Top},
		{X: t.Dst.Right, Y: t.Dst.Bottom},
		{X: t.Dst.Left, Y: t.Dst.Bottom},
	}
	uvs := [VerticesPerQuad][2]float32{
		{src.Left, src.Top},
		{src.Right, src.Top},
		{src.Right, src.Bottom},
		{src.Left, src.Bottom},
	}

	rotated := !isZero(t.Rotation)
	var sin, cos float32
	if rotated {
		s, c := math.Sincos(float64(t.Rotation))
		sin, cos = float32(s), float32(c)
	}

	for i, p := range corners {
		p = p.Sub(t.Origin)
		if rotated {
			p = p.Rotate(sin, cos).Add(t.Origin)
		}
		o := i * FloatsPerVertex
		dst[o], dst[o+1] = p.X, p.Y
		dst[o+2], dst[o+3] = uvs[i][0], uvs[i][1]
	}
}

// FillIndices writes IndexPattern for quads [first, first+n) into dst,
// starting at dst[first*IndicesPerQuad].
func FillIndices(dst []uint32, first, n int) {
	for q := first; q < first+n; q++ {
		base := uint32(q * VerticesPerQuad)
		o := q * IndicesPerQuad
		for i, idx := range IndexPattern {
			dst[o+i] = idx + base
		}
	}
}

func isZero(v float32) bool {
	return v < RotationEpsilon && v > -RotationEpsilon
}
