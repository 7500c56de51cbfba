package formats

import (
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// LoadGLTF opens a .gltf or .glb file, resolving external buffers relative
// to the file.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF %s: %w", path, err)
	}
	m, err := FromGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("converting glTF %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// FromGLTF converts a decoded glTF document into a scene tree.
//
// Every node referenced by a skin becomes a bone. Meshes on skinned nodes
// become skinned meshes sharing one Skeleton per skin. Morph channel names
// come from the mesh "targetNames" extra, falling back to "morph_N".
func FromGLTF(doc *gltf.Document) (*Model, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	if sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("%w: scene index %d out of range", ErrNoScene, sceneIdx)
	}

	joints := make(map[int]bool)
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			joints[int(j)] = true
		}
	}

	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = convertNode(i, gn, joints[i])
	}

	skeletons := make([]*scene.Skeleton, len(doc.Skins))
	for i, skin := range doc.Skins {
		sk := &scene.Skeleton{}
		for _, j := range skin.Joints {
			if int(j) < len(nodes) {
				sk.Bones = append(sk.Bones, nodes[j])
			}
		}
		skeletons[i] = sk
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if int(c) < len(nodes) && int(c) != i {
				nodes[i].Add(nodes[c])
			}
		}
		if gn.Mesh == nil || int(*gn.Mesh) >= len(doc.Meshes) {
			continue
		}
		var skel *scene.Skeleton
		if gn.Skin != nil && int(*gn.Skin) < len(skeletons) {
			skel = skeletons[*gn.Skin]
		}
		mesh, err := convertMesh(doc, doc.Meshes[*gn.Mesh], gn, skel)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nodes[i].Name, err)
		}
		attachMesh(nodes[i], mesh)
	}

	gs := doc.Scenes[sceneIdx]
	root := scene.NewNode(gs.Name, scene.KindGroup)
	if root.Name == "" {
		root.Name = "Scene"
	}
	for _, idx := range gs.Nodes {
		if int(idx) < len(nodes) && nodes[idx].Parent == nil {
			root.Add(nodes[idx])
		}
	}

	return &Model{
		Root:   root,
		Clips:  readClips(doc, nodes),
		Format: FormatGLTF,
	}, nil
}

func convertNode(i int, gn *gltf.Node, joint bool) *scene.Node {
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	kind := scene.KindGroup
	if joint {
		kind = scene.KindBone
	}
	n := scene.NewNode(name, kind)

	if m := gn.MatrixOrDefault(); m != gltf.DefaultMatrix {
		pos, q, scale := math.Decompose(math.Mat4(m))
		n.Position = pos
		n.Rotation = math.EulerFromQuat(q)
		n.Scale = scale
		return n
	}

	t := gn.Translation
	n.Position = math.Vec3{X: t[0], Y: t[1], Z: t[2]}

	r := gn.RotationOrDefault()
	n.Rotation = math.EulerFromQuat(math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]})

	s := gn.Scale
	n.Scale = math.Vec3{X: orOne(s[0]), Y: orOne(s[1]), Z: orOne(s[2])}
	return n
}

// attachMesh puts mesh on n, or on a child when n is a bone so the joint
// stays a bone.
func attachMesh(n *scene.Node, mesh *scene.Mesh) {
	kind := scene.KindMesh
	if mesh.Skeleton != nil {
		kind = scene.KindSkinnedMesh
	}
	if n.IsBone() {
		child := scene.NewNode(n.Name+"_mesh", kind)
		child.Mesh = mesh
		n.Add(child)
		return
	}
	n.Kind = kind
	n.Mesh = mesh
}

func convertMesh(doc *gltf.Document, gm *gltf.Mesh, gn *gltf.Node, skel *scene.Skeleton) (*scene.Mesh, error) {
	mesh := &scene.Mesh{Skeleton: skel}
	haveBounds := false
	targets := 0

	for _, prim := range gm.Primitives {
		if len(prim.Targets) > targets {
			targets = len(prim.Targets)
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok || int(posIdx) >= len(doc.Accessors) {
			continue
		}
		acr := doc.Accessors[posIdx]
		mesh.VertexCount += int(acr.Count)

		if b, ok := accessorBounds(doc, acr); ok {
			if haveBounds {
				mesh.Bounds = mesh.Bounds.Union(b)
			} else {
				mesh.Bounds = b
				haveBounds = true
			}
		}

		if skel == nil {
			continue
		}
		wIdx, ok := prim.Attributes[gltf.WEIGHTS_0]
		if !ok || int(wIdx) >= len(doc.Accessors) {
			// Skinned primitive without weights: every vertex unweighted.
			mesh.SkinWeights = append(mesh.SkinWeights, make([][4]float32, acr.Count)...)
			continue
		}
		weights, err := modeler.ReadWeights(doc, doc.Accessors[wIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading skin weights: %w", err)
		}
		mesh.SkinWeights = append(mesh.SkinWeights, weights...)
	}

	if targets > 0 {
		names := targetNames(gm.Extras)
		channels := make([]string, targets)
		for i := range channels {
			if i < len(names) && names[i] != "" {
				channels[i] = names[i]
			} else {
				channels[i] = fmt.Sprintf("morph_%d", i)
			}
		}
		mesh.SetMorphs(channels...)

		weights := gm.Weights
		if len(gn.Weights) > 0 {
			weights = gn.Weights
		}
		for i := 0; i < len(weights) && i < targets; i++ {
			mesh.Influences[i] = float32(weights[i])
		}
	}
	return mesh, nil
}

// accessorBounds prefers the declared min/max and reads the data otherwise.
func accessorBounds(doc *gltf.Document, acr *gltf.Accessor) (scene.Bounds, bool) {
	if len(acr.Min) >= 3 && len(acr.Max) >= 3 {
		return scene.Bounds{
			Min: math.Vec3{X: float32(acr.Min[0]), Y: float32(acr.Min[1]), Z: float32(acr.Min[2])},
			Max: math.Vec3{X: float32(acr.Max[0]), Y: float32(acr.Max[1]), Z: float32(acr.Max[2])},
		}, true
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil || len(pos) == 0 {
		return scene.Bounds{}, false
	}
	first := math.Vec3{X: pos[0][0], Y: pos[0][1], Z: pos[0][2]}
	b := scene.Bounds{Min: first, Max: first}
	for _, p := range pos[1:] {
		v := math.Vec3{X: p[0], Y: p[1], Z: p[2]}
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b, true
}

// targetNames pulls the conventional morph names out of mesh extras, which
// arrive as raw JSON when decoded and as a map when built in memory.
func targetNames(extras any) []string {
	var raw []byte
	switch v := extras.(type) {
	case nil:
		return nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		raw = b
	}
	var x struct {
		TargetNames []string `json:"targetNames"`
	}
	if err := json.Unmarshal(raw, &x); err != nil {
		return nil
	}
	return x.TargetNames
}

// readClips converts each animation into a clip. The duration is the
// largest sampler input time. Channels whose accessors are missing or whose
// key counts disagree are skipped.
func readClips(doc *gltf.Document, nodes []*scene.Node) []Clip {
	clips := make([]Clip, 0, len(doc.Animations))
	for i, anim := range doc.Animations {
		c := Clip{Name: anim.Name}
		if c.Name == "" {
			c.Name = fmt.Sprintf("clip_%d", i)
		}
		for _, s := range anim.Samplers {
			if int(s.Input) >= len(doc.Accessors) {
				continue
			}
			if hi := doc.Accessors[s.Input].Max; len(hi) > 0 && float64(hi[0]) > c.Duration {
				c.Duration = float64(hi[0])
			}
		}
		for _, ch := range anim.Channels {
			if ch.Sampler == nil || int(*ch.Sampler) >= len(anim.Samplers) {
				continue
			}
			if ch.Target.Node == nil || int(*ch.Target.Node) >= len(nodes) {
				continue
			}
			tr, ok := readTrack(doc, anim.Samplers[*ch.Sampler], ch.Target.Path)
			if !ok {
				continue
			}
			tr.Node = nodes[*ch.Target.Node]
			if n := len(tr.Times); n > 0 && float64(tr.Times[n-1]) > c.Duration {
				c.Duration = float64(tr.Times[n-1])
			}
			c.Tracks = append(c.Tracks, tr)
		}
		clips = append(clips, c)
	}
	return clips
}

func readTrack(doc *gltf.Document, s *gltf.AnimationSampler, path gltf.TRSProperty) (Track, bool) {
	if int(s.Input) >= len(doc.Accessors) || int(s.Output) >= len(doc.Accessors) {
		return Track{}, false
	}
	times, ok := readFloats(doc, doc.Accessors[s.Input])
	if !ok || len(times) == 0 {
		return Track{}, false
	}
	values, ok := readFloats(doc, doc.Accessors[s.Output])
	if !ok {
		return Track{}, false
	}

	tr := Track{Times: times, Step: s.Interpolation == gltf.InterpolationStep}
	switch path {
	case gltf.TRSTranslation:
		tr.Path, tr.Width = TrackTranslation, 3
	case gltf.TRSRotation:
		tr.Path, tr.Width = TrackRotation, 4
	case gltf.TRSScale:
		tr.Path, tr.Width = TrackScale, 3
	case gltf.TRSWeights:
		tr.Path = TrackWeights
		per := len(times)
		if s.Interpolation == gltf.InterpolationCubicSpline {
			per *= 3
		}
		if len(values)%per != 0 {
			return Track{}, false
		}
		tr.Width = len(values) / per
	default:
		return Track{}, false
	}
	if tr.Width == 0 {
		return Track{}, false
	}

	// Cubic spline keys are stored as in-tangent, value, out-tangent; only
	// the value is kept and played linearly.
	if s.Interpolation == gltf.InterpolationCubicSpline {
		if len(values) != 3*len(times)*tr.Width {
			return Track{}, false
		}
		kept := make([]float32, 0, len(times)*tr.Width)
		for k := range times {
			start := (3*k + 1) * tr.Width
			kept = append(kept, values[start:start+tr.Width]...)
		}
		values = kept
	}
	if len(values) != len(times)*tr.Width {
		return Track{}, false
	}
	tr.Values = values
	return tr, true
}

// readFloats reads an accessor as a flat float slice, denormalizing
// integer components.
func readFloats(doc *gltf.Document, acr *gltf.Accessor) ([]float32, bool) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil || data == nil {
		return nil, false
	}
	switch v := data.(type) {
	case []float32:
		return v, true
	case [][3]float32:
		return flatten3(v), true
	case [][4]float32:
		return flatten4(v), true
	case []int8:
		return denormalize(v, gltf.DenormalizeByte), true
	case []uint8:
		return denormalize(v, gltf.DenormalizeUbyte), true
	case []int16:
		return denormalize(v, gltf.DenormalizeShort), true
	case []uint16:
		return denormalize(v, gltf.DenormalizeUshort), true
	case [][4]int8:
		return denormalize(flatten4(v), gltf.DenormalizeByte), true
	case [][4]uint8:
		return denormalize(flatten4(v), gltf.DenormalizeUbyte), true
	case [][4]int16:
		return denormalize(flatten4(v), gltf.DenormalizeShort), true
	case [][4]uint16:
		return denormalize(flatten4(v), gltf.DenormalizeUshort), true
	}
	return nil, false
}

func flatten3[T any](in [][3]T) []T {
	out := make([]T, 0, 3*len(in))
	for _, a := range in {
		out = append(out, a[:]...)
	}
	return out
}

func flatten4[T any](in [][4]T) []T {
	out := make([]T, 0, 4*len(in))
	for _, a := range in {
		out = append(out, a[:]...)
	}
	return out
}

func denormalize[T any](in []T, f func(T) float32) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func orOne(v float32) float32 {
	if v == 0 {
		return 1
	}
	return v
}
