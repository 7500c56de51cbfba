package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := ParseOBJ(f, name)
	if err != nil {
		return nil, fmt.Errorf("parsing OBJ %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

type objGroup struct {
	name    string
	used    map[int]bool
	order   []int
	hasFace bool
}

// ParseOBJ builds one mesh node per object or group. Vertices referenced by
// a group's faces count toward that group; a file with vertices but no
// faces becomes a single point-cloud mesh. OBJ carries no skeleton, so the
// result never has bones.
func ParseOBJ(r io.Reader, name string) (*Model, error) {
	var (
		verts  []math.Vec3
		groups []*objGroup
		cur    *objGroup
	)
	startGroup := func(n string) {
		cur = &objGroup{name: n, used: make(map[int]bool)}
		groups = append(groups, cur)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var c [3]float32
			for i := range c {
				v, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				c[i] = float32(v)
			}
			verts = append(verts, math.Vec3{X: c[0], Y: c[1], Z: c[2]})

		case "o", "g":
			n := decodeName(strings.Join(fields[1:], " "))
			if n == "" {
				n = fmt.Sprintf("group_%d", len(groups))
			}
			if cur != nil && !cur.hasFace {
				cur.name = n // a bare "o" followed by "g" names one group
				continue
			}
			startGroup(n)

		case "f":
			if cur == nil {
				startGroup(name)
			}
			cur.hasFace = true
			for _, ref := range fields[1:] {
				idx, err := objIndex(ref, len(verts))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				if !cur.used[idx] {
					cur.used[idx] = true
					cur.order = append(cur.order, idx)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(verts) == 0 {
		return nil, ErrEmptyOBJ
	}

	root := scene.NewNode(name, scene.KindGroup)
	faced := 0
	for _, g := range groups {
		if !g.hasFace {
			continue
		}
		faced++
		root.Add(objMesh(g.name, verts, g.order))
	}
	if faced == 0 {
		all := make([]int, len(verts))
		for i := range all {
			all[i] = i
		}
		root.Add(objMesh(name, verts, all))
	}

	return &Model{Root: root, Format: FormatOBJ}, nil
}

// decodeName returns s unchanged when it is valid UTF-8. Older exporters
// write object names in Windows-1252, which is decoded instead.
func decodeName(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// objIndex resolves a face reference ("7", "7/1", "7//3", "-1") to a
// zero-based vertex index.
func objIndex(ref string, count int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", n, count)
	}
}

func objMesh(name string, verts []math.Vec3, idx []int) *scene.Node {
	n := scene.NewNode(name, scene.KindMesh)
	mesh := &scene.Mesh{VertexCount: len(idx)}
	if len(idx) > 0 {
		b := scene.Bounds{Min: verts[idx[0]], Max: verts[idx[0]]}
		for _, i := range idx[1:] {
			b.Min = b.Min.Min(verts[i])
			b.Max = b.Max.Max(verts[i])
		}
		mesh.Bounds = b
	}
	n.Mesh = mesh
	return n
}
