package scene

import "github.com/Faultbox/rigscope/pkg/math"

// MannequinMorphs lists the channels carried by the mannequin face mesh.
var MannequinMorphs = []string{
	"eyeBlink",
	"jawOpen",
	"viseme_aa",
	"viseme_O",
	"viseme_E",
	"viseme_I",
	"viseme_U",
	"mouthSmile",
	"mouthSmirk",
}

// Mannequin builds a reference humanoid in meters: a Mixamo-style skeleton,
// a skinned body mesh and a face mesh with blink, viseme and smile channels.
func Mannequin() *Node {
	return MannequinWithPrefix("")
}

// MannequinWithPrefix builds the mannequin with every bone name prefixed,
// e.g. "mixamorig:".
func MannequinWithPrefix(prefix string) *Node {
	bone := func(name string, x, y, z float32) *Node {
		return NewBone(prefix+name, x, y, z)
	}

	root := NewNode("Armature", KindGroup)
	hips := bone("Hips", 0, 1.0, 0)
	spine := bone("Spine", 0, 0.1, 0)
	spine1 := bone("Spine1", 0, 0.12, 0)
	spine2 := bone("Spine2", 0, 0.12, 0)
	neck := bone("Neck", 0, 0.15, 0)
	head := bone("Head", 0, 0.1, 0)

	head.Add(
		bone("LeftEye", 0.03, 0.06, 0.08),
		bone("RightEye", -0.03, 0.06, 0.08),
		bone("Jaw", 0, -0.02, 0.05),
		bone("HeadTop_End", 0, 0.18, 0),
	)
	neck.Add(head)

	arm := func(side string, dir float32) *Node {
		shoulder := bone(side+"Shoulder", 0.05*dir, 0.1, 0)
		upper := bone(side+"Arm", 0.12*dir, 0, 0)
		fore := bone(side+"ForeArm", 0.26*dir, 0, 0)
		hand := bone(side+"Hand", 0.25*dir, 0, 0)
		fore.Add(hand)
		upper.Add(fore)
		shoulder.Add(upper)
		return shoulder
	}
	spine2.Add(neck, arm("Left", 1), arm("Right", -1))
	spine1.Add(spine2)
	spine.Add(spine1)

	leg := func(side string, dir float32) *Node {
		up := bone(side+"UpLeg", 0.09*dir, -0.05, 0)
		low := bone(side+"Leg", 0, -0.42, 0)
		foot := bone(side+"Foot", 0, -0.4, 0)
		low.Add(foot)
		up.Add(low)
		return up
	}
	hips.Add(spine, leg("Left", 1), leg("Right", -1))
	root.Add(hips)

	var bones []*Node
	hips.Traverse(func(n *Node) {
		if n.IsBone() {
			bones = append(bones, n)
		}
	})

	body := NewNode("Body", KindSkinnedMesh)
	body.Mesh = &Mesh{
		VertexCount: 8,
		Bounds: Bounds{
			Min: math.Vec3{X: -0.8, Y: 0, Z: -0.15},
			Max: math.Vec3{X: 0.8, Y: 1.8, Z: 0.15},
		},
		SkinWeights: [][4]float32{
			{1, 0, 0, 0},
			{0.5, 0.5, 0, 0},
			{0.4, 0.3, 0.3, 0},
			{0.25, 0.25, 0.25, 0.25},
			{1, 0, 0, 0},
			{0.7, 0.3, 0, 0},
			{0, 0, 0, 0},
			{1, 0, 0, 0},
		},
		Skeleton: &Skeleton{Bones: bones},
	}

	face := NewNode("Face", KindMesh)
	face.Mesh = &Mesh{
		VertexCount: 4,
		Bounds: Bounds{
			Min: math.Vec3{X: -0.1, Y: 1.55, Z: 0},
			Max: math.Vec3{X: 0.1, Y: 1.75, Z: 0.12},
		},
	}
	face.Mesh.SetMorphs(MannequinMorphs...)

	root.Add(body, face)
	return root
}
