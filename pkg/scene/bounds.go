package scene

import "github.com/Faultbox/rigscope/pkg/math"

// WorldBounds returns the world-space box around every mesh under root.
// ok is false when root carries no geometry.
func WorldBounds(root *Node) (b Bounds, ok bool) {
	root.Traverse(func(n *Node) {
		if !n.IsMesh() || n.Mesh.VertexCount == 0 {
			return
		}
		world := n.WorldMatrix()
		for _, c := range n.Mesh.Bounds.Corners() {
			p := world.TransformVec3(c)
			if !ok {
				b = Bounds{Min: p, Max: p}
				ok = true
				continue
			}
			b.Min = b.Min.Min(p)
			b.Max = b.Max.Max(p)
		}
	})
	return b, ok
}

// Normalize wraps root in a pivot group, recenters it on the origin and
// scales it so the largest extent equals targetSize. The pivot is returned
// and becomes the root callers should hold on to.
func Normalize(root *Node, targetSize float32) *Node {
	pivot := NewNode("pivot", KindGroup)

	b, ok := WorldBounds(root)
	if ok {
		size := b.Size()
		largest := max(orOne(size.X), orOne(size.Y), orOne(size.Z))
		s := targetSize / largest
		root.Position = root.Position.Sub(b.Center())
		pivot.Scale = math.Vec3{X: s, Y: s, Z: s}
	}

	pivot.Add(root)
	return pivot
}

func orOne(v float32) float32 {
	if v == 0 {
		return 1
	}
	return v
}
