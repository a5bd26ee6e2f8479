package render

import "github.com/Faultbox/coati/internal/engine/gpu"

// BlendMode selects how drawn pixels combine with the target.
type BlendMode int

const (
	// BlendNormal overwrites the destination.
	BlendNormal BlendMode = iota
	// BlendTrans is standard alpha transparency.
	BlendTrans
	// BlendAdd multiplies the destination by the source colour.
	BlendAdd
	// BlendOneOne adds source and destination.
	BlendOneOne
)

// Factors returns the source and destination blend factors for m.
// Unknown modes fall back to BlendNormal.
func (m BlendMode) Factors() (src, dst gpu.BlendFactor) {
	switch m {
	case BlendTrans:
		return gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha
	case BlendAdd:
		return gpu.BlendDstColor, gpu.BlendOneMinusSrcAlpha
	case BlendOneOne:
		return gpu.BlendOne, gpu.BlendOne
	default:
		return gpu.BlendOne, gpu.BlendZero
	}
}

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendTrans:
		return "trans"
	case BlendAdd:
		return "add"
	case BlendOneOne:
		return "one-one"
	default:
		return "unknown"
	}
}

// ParseBlendMode converts a config name to a BlendMode.
func ParseBlendMode(s string) (BlendMode, bool) {
	for m := BlendNormal; m <= BlendOneOne; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return BlendNormal, false
}
