// Package picking finds the bone under the cursor in a 3D view.
package picking

import (
	gomath "math"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// Viewport is the pixel size of the view points are projected into.
type Viewport struct {
	Width  float32
	Height float32
}

// ToScreen projects a world point to pixel coordinates with the origin at
// the top-left corner. ok is false for points behind the camera or
// outside the depth range.
func ToScreen(p math.Vec3, viewProj math.Mat4, vp Viewport) (x, y float32, ok bool) {
	ndc, w := viewProj.Project(p)
	if w <= 0 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * vp.Width
	y = (1 - ndc.Y) * 0.5 * vp.Height
	return x, y, true
}

// Hit is a picked bone and its distance to the cursor in pixels.
type Hit struct {
	Node     *scene.Node
	Distance float32
}

// NearestBone returns the bone whose projected origin lies closest to the
// cursor, if any lies within maxDist pixels. Ties keep the bone found
// first in traversal order.
func NearestBone(root *scene.Node, viewProj math.Mat4, vp Viewport, cursorX, cursorY, maxDist float32) (Hit, bool) {
	best := Hit{Distance: maxDist}
	found := false
	root.Traverse(func(n *scene.Node) {
		if !n.IsBone() {
			return
		}
		x, y, ok := ToScreen(n.WorldPosition(), viewProj, vp)
		if !ok {
			return
		}
		d := float32(gomath.Hypot(float64(x-cursorX), float64(y-cursorY)))
		if d < best.Distance || (!found && d == best.Distance) {
			best = Hit{Node: n, Distance: d}
			found = true
		}
	})
	return best, found
}
