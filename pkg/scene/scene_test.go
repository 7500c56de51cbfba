package scene

import (
	"testing"

	"github.com/Faultbox/rigscope/pkg/math"
)

func TestTraverseOrder(t *testing.T) {
	root := NewNode("root", KindGroup)
	a := NewNode("a", KindGroup)
	b := NewNode("b", KindGroup)
	a1 := NewNode("a1", KindBone)
	a.Add(a1)
	root.Add(a, b)

	var got []string
	root.Traverse(func(n *Node) { got = append(got, n.Name) })

	want := []string{"root", "a", "a1", "b"}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTraverseNil(t *testing.T) {
	var n *Node
	called := false
	n.Traverse(func(*Node) { called = true })
	if called {
		t.Error("Traverse on nil node should not call fn")
	}
}

func TestAddReparents(t *testing.T) {
	a := NewNode("a", KindGroup)
	b := NewNode("b", KindGroup)
	c := NewNode("c", KindBone)

	a.Add(c)
	b.Add(c)

	if c.Parent != b {
		t.Errorf("expected parent b, got %v", c.Parent)
	}
	if len(a.Children) != 0 {
		t.Errorf("expected a to lose its child, has %d", len(a.Children))
	}

	c.Detach()
	if c.Parent != nil || len(b.Children) != 0 {
		t.Error("Detach should clear both sides of the link")
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	root := Mannequin()
	if n := root.Find("head"); n == nil || n.Name != "Head" {
		t.Errorf("Find(head) = %v", n)
	}
	if n := root.Find("Tail"); n != nil {
		t.Errorf("Find(Tail) = %v, want nil", n)
	}
}

func TestWorldPosition(t *testing.T) {
	root := NewNode("root", KindGroup)
	root.Position = math.Vec3{X: 1}
	child := NewBone("child", 0, 2, 0)
	root.Add(child)

	got := child.WorldPosition()
	want := math.Vec3{X: 1, Y: 2}
	if got != want {
		t.Errorf("WorldPosition() = %v, want %v", got, want)
	}
	if child.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", child.Depth())
	}
}

func TestNormalize(t *testing.T) {
	root := Mannequin()
	pivot := Normalize(root, 1.6)

	if root.Parent != pivot {
		t.Fatal("root should be re-parented under the pivot")
	}

	b, ok := WorldBounds(pivot)
	if !ok {
		t.Fatal("expected bounds after normalize")
	}
	size := b.Size().MaxComponent()
	if size < 1.599 || size > 1.601 {
		t.Errorf("largest extent = %f, want 1.6", size)
	}
	c := b.Center()
	if c.Length() > 1e-4 {
		t.Errorf("center = %v, want origin", c)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	root := NewNode("empty", KindGroup)
	pivot := Normalize(root, 1.6)
	if pivot.Scale != math.One() {
		t.Errorf("empty model should keep unit scale, got %v", pivot.Scale)
	}
}

func TestMannequinPrefix(t *testing.T) {
	root := MannequinWithPrefix("mixamorig:")
	if root.Find("mixamorig:Head") == nil {
		t.Error("expected prefixed head bone")
	}
	if root.Find("Head") != nil {
		t.Error("unprefixed name should not exist")
	}
}

func TestMorphChannelNamesSorted(t *testing.T) {
	m := &Mesh{}
	m.SetMorphs("b", "c", "a")
	got := m.MorphChannelNames()
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("MorphChannelNames() = %v", got)
	}
	if m.MorphNames["c"] != 1 {
		t.Errorf("index of c = %d, want 1", m.MorphNames["c"])
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindGroup, "Group"},
		{KindBone, "Bone"},
		{KindMesh, "Mesh"},
		{KindSkinnedMesh, "SkinnedMesh"},
		{Kind(9), "Unknown(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %s, want %s", int(tt.kind), got, tt.want)
		}
	}
}
