package viewer

import (
	"github.com/Faultbox/rigscope/internal/engine/debug"
	"github.com/Faultbox/rigscope/internal/session"
)

// Grid extent and spacing in world units.
const (
	gridHalf = 2
	gridStep = 0.25
	axesLen  = 0.3
)

// Layers selects which overlays FrameLines draws.
type Layers struct {
	Grid     bool
	Bounds   bool
	Skeleton bool
}

// FrameLines builds every line drawn in one frame.
func FrameLines(s *session.Session, l Layers) []debug.LineVertex {
	var out []debug.LineVertex
	if l.Grid {
		out = append(out, debug.GridLines(gridHalf, gridStep, debug.ColorGrid)...)
		out = append(out, debug.AxesLines(axesLen)...)
	}
	root := s.Root()
	if root == nil {
		return out
	}
	if l.Bounds {
		if b, ok := s.Bounds(); ok {
			out = append(out, debug.BoxLines(b, debug.ColorBounds)...)
		}
	}
	if l.Skeleton {
		out = append(out, debug.SkeletonLines(root, s.TrackedNodes())...)
	}
	return out
}
