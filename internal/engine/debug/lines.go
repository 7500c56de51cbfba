// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// Color is a linear RGB triple.
type Color [3]float32

// Palette used by the viewers.
var (
	ColorGrid      = Color{0.28, 0.3, 0.34}
	ColorBone      = Color{0.85, 0.85, 0.9}
	ColorTracked   = Color{1.0, 0.62, 0.2}
	ColorBounds    = Color{0.35, 0.7, 1.0}
	ColorAxisX     = Color{0.9, 0.25, 0.25}
	ColorAxisY     = Color{0.25, 0.85, 0.3}
	ColorAxisZ     = Color{0.3, 0.45, 0.95}
	ColorHighlight = Color{1.0, 0.95, 0.3}
)

// LineVertex is one endpoint of a line segment, laid out as [x y z r g b]
// for a single interleaved vertex buffer.
type LineVertex struct {
	X, Y, Z float32
	R, G, B float32
}

// LineVertexSize is the byte size of one LineVertex.
const LineVertexSize = 6 * 4

func vertex(p math.Vec3, c Color) LineVertex {
	return LineVertex{X: p.X, Y: p.Y, Z: p.Z, R: c[0], G: c[1], B: c[2]}
}

// Segment appends the line a-b to dst.
func Segment(dst []LineVertex, a, b math.Vec3, c Color) []LineVertex {
	return append(dst, vertex(a, c), vertex(b, c))
}

// BoxLines returns the 12 edges of b (24 vertices).
func BoxLines(b scene.Bounds, c Color) []LineVertex {
	k := b.Corners()
	// Corners() enumerates min/max per axis with X varying fastest.
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
	}
	out := make([]LineVertex, 0, BoxVertexCount)
	for _, e := range edges {
		out = Segment(out, k[e[0]], k[e[1]], c)
	}
	return out
}

// BoxVertexCount is the number of vertices BoxLines produces (12 edges × 2).
const BoxVertexCount = 24

// GridLines returns a square floor grid on the XZ plane centered on the
// origin, with lines every step units out to half in each direction.
func GridLines(half, step float32, c Color) []LineVertex {
	if step <= 0 || half <= 0 {
		return nil
	}
	n := int(half / step)
	out := make([]LineVertex, 0, (2*n+1)*4)
	for i := -n; i <= n; i++ {
		o := float32(i) * step
		out = Segment(out, math.Vec3{X: o, Z: -half}, math.Vec3{X: o, Z: half}, c)
		out = Segment(out, math.Vec3{X: -half, Z: o}, math.Vec3{X: half, Z: o}, c)
	}
	return out
}

// AxesLines returns the three world axes from the origin.
func AxesLines(length float32) []LineVertex {
	var out []LineVertex
	origin := math.Vec3{}
	out = Segment(out, origin, math.Vec3{X: length}, ColorAxisX)
	out = Segment(out, origin, math.Vec3{Y: length}, ColorAxisY)
	out = Segment(out, origin, math.Vec3{Z: length}, ColorAxisZ)
	return out
}

// MarkerLines draws a three-axis cross of the given half size centered on p.
func MarkerLines(p math.Vec3, size float32, c Color) []LineVertex {
	var out []LineVertex
	out = Segment(out, p.Sub(math.Vec3{X: size}), p.Add(math.Vec3{X: size}), c)
	out = Segment(out, p.Sub(math.Vec3{Y: size}), p.Add(math.Vec3{Y: size}), c)
	out = Segment(out, p.Sub(math.Vec3{Z: size}), p.Add(math.Vec3{Z: size}), c)
	return out
}

// SkeletonLines draws one segment from every bone to its bone parent, in
// world space. Bones in tracked are drawn in ColorTracked.
func SkeletonLines(root *scene.Node, tracked map[*scene.Node]bool) []LineVertex {
	var out []LineVertex
	root.Traverse(func(n *scene.Node) {
		if !n.IsBone() || n.Parent == nil || !n.Parent.IsBone() {
			return
		}
		c := ColorBone
		if tracked[n] {
			c = ColorTracked
		}
		out = Segment(out, n.Parent.WorldPosition(), n.WorldPosition(), c)
	})
	return out
}
