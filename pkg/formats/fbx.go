package formats

import (
	"fmt"
	gomath "math"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// fbxTicks is the number of FBX time units per second.
const fbxTicks = 46186158000

// LoadFBX reads a binary FBX file.
func LoadFBX(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening FBX %s: %w", path, err)
	}
	m, err := ParseFBX(data)
	if err != nil {
		return nil, fmt.Errorf("parsing FBX %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

type fbxObject struct {
	id       int64
	class    string // record name: Model, Geometry, Deformer, ...
	name     string
	subclass string // LimbNode, Mesh, Skin, BlendShapeChannel, ...
	node     *fbxNode
}

type fbxLink struct {
	child, parent int64
	prop          string
}

// fbxScene indexes the Objects and Connections sections.
type fbxScene struct {
	objects  map[int64]*fbxObject
	order    []int64
	children map[int64][]fbxLink // by parent id
	parents  map[int64][]fbxLink // by child id
}

// ParseFBX converts a binary FBX document.
//
// LimbNode models become bones and the remaining models groups. Mesh
// geometry gives vertex counts and bounds, skin clusters give per-vertex
// weights and blend shape channels become morph channels named after the
// channel. Each animation stack becomes a clip whose tracks are sampled
// from the Lcl Translation, Lcl Rotation and Lcl Scaling curves.
func ParseFBX(data []byte) (*Model, error) {
	_, tree, err := parseFBXTree(data)
	if err != nil {
		return nil, err
	}
	idx := indexFBX(tree)

	root := scene.NewNode("Scene", scene.KindGroup)
	models := make(map[int64]*scene.Node)
	for _, id := range idx.order {
		o := idx.objects[id]
		if o.class != "Model" {
			continue
		}
		models[id] = fbxModel(o)
	}
	for _, id := range idx.order {
		n, ok := models[id]
		if !ok {
			continue
		}
		parent := root
		for _, l := range idx.parents[id] {
			if p, ok := models[l.parent]; ok && l.prop == "" && p != n {
				parent = p
				break
			}
		}
		parent.Add(n)
	}

	for _, id := range idx.order {
		o := idx.objects[id]
		if o.class != "Geometry" || o.subclass != "Mesh" {
			continue
		}
		mesh := idx.mesh(o, models)
		for _, l := range idx.parents[id] {
			if n, ok := models[l.parent]; ok {
				attachMesh(n, mesh)
				break
			}
		}
	}

	return &Model{
		Root:   root,
		Clips:  idx.clips(models),
		Format: FormatFBX,
	}, nil
}

func indexFBX(tree *fbxNode) *fbxScene {
	s := &fbxScene{
		objects:  make(map[int64]*fbxObject),
		children: make(map[int64][]fbxLink),
		parents:  make(map[int64][]fbxLink),
	}
	if objs := tree.child("Objects"); objs != nil {
		for _, n := range objs.Children {
			id, ok := n.prop(0).(int64)
			if !ok {
				continue
			}
			name, _ := n.prop(1).(string)
			sub, _ := n.prop(2).(string)
			s.objects[id] = &fbxObject{id: id, class: n.Name, name: fbxName(name), subclass: sub, node: n}
			s.order = append(s.order, id)
		}
	}
	if conns := tree.child("Connections"); conns != nil {
		for _, c := range conns.Children {
			kind, _ := c.prop(0).(string)
			child, ok1 := c.prop(1).(int64)
			parent, ok2 := c.prop(2).(int64)
			if c.Name != "C" || !ok1 || !ok2 {
				continue
			}
			l := fbxLink{child: child, parent: parent}
			if kind == "OP" {
				l.prop, _ = c.prop(3).(string)
			}
			s.children[parent] = append(s.children[parent], l)
			s.parents[child] = append(s.parents[child], l)
		}
	}
	return s
}

// fbxName strips the "\x00\x01Class" suffix binary files append to names.
func fbxName(s string) string {
	if i := strings.Index(s, "\x00\x01"); i >= 0 {
		return s[:i]
	}
	return s
}

// linked returns the objects of class connected below parent.
func (s *fbxScene) linked(parent int64, class, subclass string) []*fbxObject {
	var out []*fbxObject
	for _, l := range s.children[parent] {
		o, ok := s.objects[l.child]
		if ok && o.class == class && (subclass == "" || o.subclass == subclass) {
			out = append(out, o)
		}
	}
	return out
}

// fbxProps70 reads the Properties70 block into name → numeric values.
func fbxProps70(n *fbxNode) map[string][]float64 {
	out := make(map[string][]float64)
	for _, p := range n.child("Properties70").childrenNamed("P") {
		name, _ := p.prop(0).(string)
		var vals []float64
		for _, v := range p.Props[min(4, len(p.Props)):] {
			switch x := v.(type) {
			case float64:
				vals = append(vals, x)
			case float32:
				vals = append(vals, float64(x))
			case int32:
				vals = append(vals, float64(x))
			case int64:
				vals = append(vals, float64(x))
			}
		}
		out[name] = vals
	}
	return out
}

func (n *fbxNode) childrenNamed(name string) []*fbxNode {
	if n == nil {
		return nil
	}
	var out []*fbxNode
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func vec3Prop(props map[string][]float64, name string, def math.Vec3) math.Vec3 {
	v := props[name]
	if len(v) < 3 {
		return def
	}
	return math.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}

// fbxRotation converts FBX XYZ Euler degrees, applied X first, with an
// optional pre-rotation, to a quaternion.
func fbxRotation(deg, pre math.Vec3) math.Quat {
	euler := func(d math.Vec3) math.Quat {
		const rad = gomath.Pi / 180
		qx := math.QuatFromAxisAngle(math.Vec3{X: 1}, d.X*rad)
		qy := math.QuatFromAxisAngle(math.Vec3{Y: 1}, d.Y*rad)
		qz := math.QuatFromAxisAngle(math.Vec3{Z: 1}, d.Z*rad)
		return qz.Mul(qy).Mul(qx)
	}
	return euler(pre).Mul(euler(deg))
}

func fbxModel(o *fbxObject) *scene.Node {
	kind := scene.KindGroup
	if o.subclass == "LimbNode" {
		kind = scene.KindBone
	}
	name := o.name
	if name == "" {
		name = fmt.Sprintf("model_%d", o.id)
	}
	n := scene.NewNode(name, kind)

	props := fbxProps70(o.node)
	n.Position = vec3Prop(props, "Lcl Translation", math.Vec3{})
	pre := vec3Prop(props, "PreRotation", math.Vec3{})
	rot := vec3Prop(props, "Lcl Rotation", math.Vec3{})
	n.Rotation = math.EulerFromQuat(fbxRotation(rot, pre))
	n.Scale = vec3Prop(props, "Lcl Scaling", math.One())
	return n
}

func floatArray(n *fbxNode) []float64 {
	switch v := n.prop(0).(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	}
	return nil
}

func intArray(n *fbxNode) []int32 {
	v, _ := n.prop(0).([]int32)
	return v
}

// mesh builds the geometry facts, skin weights and morph channels of one
// Geometry object.
func (s *fbxScene) mesh(o *fbxObject, models map[int64]*scene.Node) *scene.Mesh {
	mesh := &scene.Mesh{}
	verts := floatArray(o.node.child("Vertices"))
	mesh.VertexCount = len(verts) / 3
	for i := 0; i+2 < len(verts); i += 3 {
		v := math.Vec3{X: float32(verts[i]), Y: float32(verts[i+1]), Z: float32(verts[i+2])}
		if i == 0 {
			mesh.Bounds = scene.Bounds{Min: v, Max: v}
			continue
		}
		mesh.Bounds.Min = mesh.Bounds.Min.Min(v)
		mesh.Bounds.Max = mesh.Bounds.Max.Max(v)
	}

	for _, skin := range s.linked(o.id, "Deformer", "Skin") {
		s.skin(mesh, skin, models)
	}

	var names []string
	var weights []float32
	for _, bs := range s.linked(o.id, "Deformer", "BlendShape") {
		for _, ch := range s.linked(bs.id, "Deformer", "BlendShapeChannel") {
			names = append(names, ch.name)
			var w float32
			if pct, ok := ch.node.child("DeformPercent").prop(0).(float64); ok {
				w = float32(pct / 100)
			} else if pct := fbxProps70(ch.node)["DeformPercent"]; len(pct) > 0 {
				w = float32(pct[0] / 100)
			}
			weights = append(weights, w)
		}
	}
	if len(names) > 0 {
		mesh.SetMorphs(names...)
		copy(mesh.Influences, weights)
	}
	return mesh
}

// skin fills mesh.SkinWeights from the clusters of one Skin deformer,
// keeping the four largest influences per vertex.
func (s *fbxScene) skin(mesh *scene.Mesh, skin *fbxObject, models map[int64]*scene.Node) {
	perVertex := make([][]float32, mesh.VertexCount)
	sk := &scene.Skeleton{}
	for _, cl := range s.linked(skin.id, "Deformer", "Cluster") {
		for _, l := range s.children[cl.id] {
			if bone, ok := models[l.child]; ok && bone.IsBone() && !sk.Contains(bone) {
				sk.Bones = append(sk.Bones, bone)
			}
		}
		idx := intArray(cl.node.child("Indexes"))
		w := floatArray(cl.node.child("Weights"))
		for i := 0; i < len(idx) && i < len(w); i++ {
			if v := int(idx[i]); v >= 0 && v < len(perVertex) && w[i] > 0 {
				perVertex[v] = append(perVertex[v], float32(w[i]))
			}
		}
	}
	if len(sk.Bones) == 0 {
		return
	}
	mesh.Skeleton = sk
	mesh.SkinWeights = make([][4]float32, mesh.VertexCount)
	for v, ws := range perVertex {
		sort.Slice(ws, func(a, b int) bool { return ws[a] > ws[b] })
		copy(mesh.SkinWeights[v][:], ws)
	}
}

// clips turns each AnimationStack into a clip. Key times are measured from
// the stack's LocalStart.
func (s *fbxScene) clips(models map[int64]*scene.Node) []Clip {
	var clips []Clip
	for _, id := range s.order {
		st := s.objects[id]
		if st.class != "AnimationStack" {
			continue
		}
		c := Clip{Name: st.name}
		if c.Name == "" {
			c.Name = fmt.Sprintf("clip_%d", len(clips))
		}
		props := fbxProps70(st.node)
		var start, stop float64
		if v := props["LocalStart"]; len(v) > 0 {
			start = v[0]
		}
		if v := props["LocalStop"]; len(v) > 0 {
			stop = v[0]
		}
		if stop > start {
			c.Duration = (stop - start) / fbxTicks
		}

		for _, layer := range s.linked(id, "AnimationLayer", "") {
			for _, cn := range s.linked(layer.id, "AnimationCurveNode", "") {
				tr, ok := s.curveTrack(cn, models, start)
				if !ok {
					continue
				}
				if last := float64(tr.Times[len(tr.Times)-1]); last > c.Duration {
					c.Duration = last
				}
				c.Tracks = append(c.Tracks, tr)
			}
		}
		clips = append(clips, c)
	}
	return clips
}

type fbxCurve struct {
	times  []int64
	values []float64
}

// at samples the curve linearly, holding the end keys.
func (c fbxCurve) at(t int64) float64 {
	n := min(len(c.times), len(c.values))
	if n == 0 {
		return 0
	}
	if t <= c.times[0] {
		return c.values[0]
	}
	for i := 1; i < n; i++ {
		if t <= c.times[i] {
			span := float64(c.times[i] - c.times[i-1])
			if span <= 0 {
				return c.values[i]
			}
			f := float64(t-c.times[i-1]) / span
			return c.values[i-1] + f*(c.values[i]-c.values[i-1])
		}
	}
	return c.values[n-1]
}

var fbxCurvePaths = map[string]TrackPath{
	"Lcl Translation": TrackTranslation,
	"Lcl Rotation":    TrackRotation,
	"Lcl Scaling":     TrackScale,
}

// curveTrack merges the X, Y and Z curves of one curve node into a track
// keyed at the union of their key times.
func (s *fbxScene) curveTrack(cn *fbxObject, models map[int64]*scene.Node, start float64) (Track, bool) {
	var tr Track
	var target *fbxObject
	for _, l := range s.parents[cn.id] {
		path, ok := fbxCurvePaths[l.prop]
		if n, isModel := models[l.parent]; ok && isModel {
			tr.Node, tr.Path, target = n, path, s.objects[l.parent]
			break
		}
	}
	if tr.Node == nil {
		return Track{}, false
	}

	defaults := fbxProps70(cn.node)
	var curves [3]fbxCurve
	var def [3]float64
	keyed := make(map[int64]bool)
	for axis, name := range []string{"d|X", "d|Y", "d|Z"} {
		if v := defaults[name]; len(v) > 0 {
			def[axis] = v[0]
		}
		for _, l := range s.children[cn.id] {
			o, ok := s.objects[l.child]
			if !ok || o.class != "AnimationCurve" || l.prop != name {
				continue
			}
			times, _ := o.node.child("KeyTime").prop(0).([]int64)
			curves[axis] = fbxCurve{times: times, values: floatArray(o.node.child("KeyValueFloat"))}
			for _, t := range times {
				keyed[t] = true
			}
		}
	}
	if len(keyed) == 0 {
		return Track{}, false
	}

	times := make([]int64, 0, len(keyed))
	for t := range keyed {
		times = append(times, t)
	}
	sort.Slice(times, func(a, b int) bool { return times[a] < times[b] })

	pre := vec3Prop(fbxProps70(target.node), "PreRotation", math.Vec3{})
	tr.Width = 3
	if tr.Path == TrackRotation {
		tr.Width = 4
	}
	for _, t := range times {
		var v [3]float64
		for axis := range v {
			v[axis] = def[axis]
			if len(curves[axis].times) > 0 {
				v[axis] = curves[axis].at(t)
			}
		}
		tr.Times = append(tr.Times, float32((float64(t)-start)/fbxTicks))
		vec := math.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
		if tr.Path == TrackRotation {
			q := fbxRotation(vec, pre)
			tr.Values = append(tr.Values, q.X, q.Y, q.Z, q.W)
		} else {
			tr.Values = append(tr.Values, vec.X, vec.Y, vec.Z)
		}
	}
	return tr, true
}
