package formats

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

const cubeOBJ = `# two quads
o Front
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 1 2 3 4
o Back
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
f 5/1 6/2 7/3 8/4
`

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(cubeOBJ), "cube")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if m.Root.Name != "cube" || len(m.Root.Children) != 2 {
		t.Fatalf("root %q with %d children", m.Root.Name, len(m.Root.Children))
	}

	back := m.Root.Find("Back")
	if back == nil || !back.IsMesh() {
		t.Fatal("Back mesh missing")
	}
	if back.Mesh.VertexCount != 4 {
		t.Errorf("Back vertices = %d, want 4", back.Mesh.VertexCount)
	}
	want := math.Vec3{X: 1, Y: 1, Z: -1}
	if back.Mesh.Bounds.Max != want {
		t.Errorf("Back bounds max = %+v, want %+v", back.Mesh.Bounds.Max, want)
	}

	m.Root.Traverse(func(n *scene.Node) {
		if n.IsBone() {
			t.Errorf("OBJ produced bone %q", n.Name)
		}
	})
}

func TestParseOBJIndices(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		verts   int
		wantErr bool
	}{
		{"relative", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n", 3, false},
		{"texture and normal refs", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", 3, false},
		{"shared vertices count once", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 4 3\n", 4, false},
		{"out of range", "v 0 0 0\nf 1 2 3\n", 0, true},
		{"bad index", "v 0 0 0\nf a b c\n", 0, true},
		{"short vertex", "v 0 0\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseOBJ(strings.NewReader(tt.src), "mesh")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := m.Root.Children[0].Mesh.VertexCount; got != tt.verts {
				t.Errorf("vertex count = %d, want %d", got, tt.verts)
			}
		})
	}
}

func TestParseOBJPointCloud(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader("v 0 0 0\nv 2 4 6\n"), "points")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Root.Children) != 1 || m.Root.Children[0].Mesh.VertexCount != 2 {
		t.Error("vertices without faces should become one mesh")
	}
}

func TestParseOBJEmpty(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("# nothing\n"), "empty")
	if !errors.Is(err, ErrEmptyOBJ) {
		t.Errorf("error = %v, want ErrEmptyOBJ", err)
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cube.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Format != FormatOBJ || m.Path != path || m.Root.Name != "Cube" {
		t.Errorf("model = %+v", m)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestParseOBJLegacyNames(t *testing.T) {
	src := "o Caf\xe9\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\ng Bras_d\xe9\nf 1 2 3\n"
	m, err := ParseOBJ(strings.NewReader(src), "legacy")
	if err != nil {
		t.Fatal(err)
	}
	if m.Root.Find("Café") == nil {
		t.Errorf("Windows-1252 object name not decoded: %q", m.Root.Children[0].Name)
	}
	if m.Root.Find("Bras_dé") == nil {
		t.Error("Windows-1252 group name not decoded")
	}
}

func TestDecodeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Body", "Body"},
		{"Ünïcode", "Ünïcode"},
		{"Stra\xdfe", "Straße"},
	}
	for _, tt := range tests {
		if got := decodeName(tt.in); got != tt.want {
			t.Errorf("decodeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
