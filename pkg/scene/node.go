// Package scene provides the node tree that loaders produce and that the rig
// accessor and the motion player read and write.
package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/rigscope/pkg/math"
)

// Kind classifies a node.
type Kind int

const (
	KindGroup       Kind = iota // Plain transform node
	KindBone                    // Skeleton joint
	KindMesh                    // Static mesh
	KindSkinnedMesh             // Mesh deformed by a skeleton
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindBone:
		return "Bone"
	case KindMesh:
		return "Mesh"
	case KindSkinnedMesh:
		return "SkinnedMesh"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Node is a transform node in the scene tree.
type Node struct {
	Name     string
	Kind     Kind
	Position math.Vec3
	Rotation math.Euler
	Scale    math.Vec3

	Parent   *Node
	Children []*Node

	// Mesh is set for KindMesh and KindSkinnedMesh nodes.
	Mesh *Mesh
}

// NewNode creates a node with unit scale.
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:  name,
		Kind:  kind,
		Scale: math.One(),
	}
}

// NewBone creates a bone at the given local offset.
func NewBone(name string, x, y, z float32) *Node {
	n := NewNode(name, KindBone)
	n.Position = math.Vec3{X: x, Y: y, Z: z}
	return n
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.remove(c)
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.remove(n)
	}
}

func (n *Node) remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Traverse visits n and every descendant depth-first in child order.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// IsBone reports whether n is a skeleton joint.
func (n *Node) IsBone() bool {
	return n != nil && n.Kind == KindBone
}

// IsMesh reports whether n carries geometry.
func (n *Node) IsMesh() bool {
	return n != nil && (n.Kind == KindMesh || n.Kind == KindSkinnedMesh) && n.Mesh != nil
}

// Find returns the first node in traversal order whose name equals name
// case-insensitively, or nil.
func (n *Node) Find(name string) *Node {
	var hit *Node
	n.Traverse(func(o *Node) {
		if hit == nil && strings.EqualFold(o.Name, name) {
			hit = o
		}
	})
	return hit
}

// LocalMatrix returns T * R * S for the node.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the product of all ancestor local matrices and n's own.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldMatrix().Translation()
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
