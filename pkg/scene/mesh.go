package scene

import (
	"sort"

	"github.com/Faultbox/rigscope/pkg/math"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the eight box corners.
func (b Bounds) Corners() [8]math.Vec3 {
	return [8]math.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Skeleton is the ordered bone list a skinned mesh binds to.
// Meshes that share a skeleton share the pointer.
type Skeleton struct {
	Bones []*Node
}

// Contains reports whether bone belongs to the skeleton.
func (s *Skeleton) Contains(bone *Node) bool {
	for _, b := range s.Bones {
		if b == bone {
			return true
		}
	}
	return false
}

// Mesh holds the geometry facts the inspector and the rig accessor need.
// Vertex data itself stays with the loader.
type Mesh struct {
	VertexCount int
	Bounds      Bounds

	// SkinWeights holds four influence weights per vertex, nil when unskinned.
	SkinWeights [][4]float32
	Skeleton    *Skeleton

	// MorphNames maps a morph channel name to its index in Influences.
	MorphNames map[string]int
	Influences []float32
}

// HasMorphs reports whether the mesh exposes morph channels.
func (m *Mesh) HasMorphs() bool {
	return m != nil && len(m.MorphNames) > 0 && len(m.Influences) > 0
}

// MorphChannelNames returns the channel names sorted alphabetically.
func (m *Mesh) MorphChannelNames() []string {
	names := make([]string, 0, len(m.MorphNames))
	for name := range m.MorphNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetMorphs installs named channels with zero influence, in order.
func (m *Mesh) SetMorphs(names ...string) {
	m.MorphNames = make(map[string]int, len(names))
	m.Influences = make([]float32, len(names))
	for i, name := range names {
		m.MorphNames[name] = i
	}
}
