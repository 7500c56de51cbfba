package formats

import (
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// TrackPath is the node property a track animates.
type TrackPath int

const (
	TrackTranslation TrackPath = iota
	TrackRotation
	TrackScale
	TrackWeights
)

// String returns the glTF path name.
func (p TrackPath) String() string {
	switch p {
	case TrackTranslation:
		return "translation"
	case TrackRotation:
		return "rotation"
	case TrackScale:
		return "scale"
	case TrackWeights:
		return "weights"
	default:
		return "unknown"
	}
}

// Track is one keyed property of one node. Values holds Width floats per
// key: 3 for translation and scale, 4 for a rotation quaternion and one per
// morph target for weights.
type Track struct {
	Node   *scene.Node
	Path   TrackPath
	Step   bool
	Times  []float32
	Values []float32
	Width  int
}

func (tr *Track) key(i int) []float32 {
	return tr.Values[i*tr.Width : (i+1)*tr.Width]
}

// Sample returns the track value at t seconds. Times before the first key
// hold the first key, times after the last hold the last.
func (tr *Track) Sample(t float32) []float32 {
	out := make([]float32, tr.Width)
	if len(tr.Times) == 0 || tr.Width == 0 {
		return out
	}

	// Keys are sorted by time.
	var prev, next int
	for i := range tr.Times {
		if tr.Times[i] > t {
			next = i
			break
		}
		prev = i
		next = i
	}

	if prev == next || tr.Step {
		copy(out, tr.key(prev))
		return out
	}

	k0, k1 := tr.key(prev), tr.key(next)
	f := float32(0)
	if span := tr.Times[next] - tr.Times[prev]; span > 0 {
		f = (t - tr.Times[prev]) / span
	}

	if tr.Path == TrackRotation {
		q0 := math.Quat{X: k0[0], Y: k0[1], Z: k0[2], W: k0[3]}
		q1 := math.Quat{X: k1[0], Y: k1[1], Z: k1[2], W: k1[3]}
		q := q0.Slerp(q1, f)
		out[0], out[1], out[2], out[3] = q.X, q.Y, q.Z, q.W
		return out
	}
	for i := range out {
		out[i] = k0[i] + f*(k1[i]-k0[i])
	}
	return out
}

// Apply writes the sampled value at t onto the track's node.
func (tr *Track) Apply(t float32) {
	if tr.Node == nil {
		return
	}
	v := tr.Sample(t)
	switch tr.Path {
	case TrackTranslation:
		tr.Node.Position = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case TrackRotation:
		tr.Node.Rotation = math.EulerFromQuat(math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]})
	case TrackScale:
		tr.Node.Scale = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case TrackWeights:
		mesh := morphMesh(tr.Node)
		if mesh == nil {
			return
		}
		for i := 0; i < len(v) && i < len(mesh.Influences); i++ {
			mesh.Influences[i] = v[i]
		}
	}
}

// morphMesh finds the mesh a weights track drives: the node's own mesh, or
// the mesh child added when the node is also a joint.
func morphMesh(n *scene.Node) *scene.Mesh {
	if n.Mesh != nil {
		return n.Mesh
	}
	for _, c := range n.Children {
		if c.Mesh != nil && c.Name == n.Name+"_mesh" {
			return c.Mesh
		}
	}
	return nil
}

// Clip is an authored animation clip found in a file.
type Clip struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"` // seconds
	Tracks   []Track `yaml:"-"`
}

// Apply poses every track of the clip at t seconds.
func (c *Clip) Apply(t float64) {
	for i := range c.Tracks {
		c.Tracks[i].Apply(float32(t))
	}
}

// Nodes returns every node the clip animates, each once.
func (c *Clip) Nodes() []*scene.Node {
	seen := make(map[*scene.Node]bool)
	var out []*scene.Node
	for _, tr := range c.Tracks {
		if tr.Node != nil && !seen[tr.Node] {
			seen[tr.Node] = true
			out = append(out, tr.Node)
		}
	}
	return out
}
