package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/rigscope/pkg/scene"
)

// fbxRec is a record to encode into a test document.
type fbxRec struct {
	name     string
	props    []any
	children []fbxRec
}

// zipped is a float64 array written with zlib encoding.
type zipped []float64

func rec(name string, props []any, children ...fbxRec) fbxRec {
	return fbxRec{name: name, props: props, children: children}
}

func obj(class string, id int64, name, sub string, children ...fbxRec) fbxRec {
	return rec(class, []any{id, name + "\x00\x01" + class, sub}, children...)
}

func p70(entries ...fbxRec) fbxRec {
	return rec("Properties70", nil, entries...)
}

func pv(name, typ string, vals ...any) fbxRec {
	return rec("P", append([]any{name, typ, "", "A"}, vals...))
}

func oo(child, parent int64) fbxRec {
	return rec("C", []any{"OO", child, parent})
}

func op(child, parent int64, prop string) fbxRec {
	return rec("C", []any{"OP", child, parent, prop})
}

func encodeFBX(t *testing.T, version uint32, recs []fbxRec) []byte {
	t.Helper()
	var out bytes.Buffer
	out.WriteString(fbxMagic)
	out.Write([]byte{0x1a, 0})
	binary.Write(&out, binary.LittleEndian, version)
	wide := version >= fbxWideVersion
	for _, r := range recs {
		writeFBXRecord(t, &out, r, wide)
	}
	out.Write(make([]byte, nullRecordSize(wide)))
	return out.Bytes()
}

func nullRecordSize(wide bool) int {
	if wide {
		return 25
	}
	return 13
}

func writeFBXRecord(t *testing.T, out *bytes.Buffer, r fbxRec, wide bool) {
	le := binary.LittleEndian
	var props bytes.Buffer
	for _, p := range r.props {
		encodeFBXProp(t, &props, p)
	}
	word := func(v int) {
		if wide {
			binary.Write(out, le, uint64(v))
		} else {
			binary.Write(out, le, uint32(v))
		}
	}

	start := out.Len()
	word(0) // end offset, patched below
	word(len(r.props))
	word(props.Len())
	out.WriteByte(byte(len(r.name)))
	out.WriteString(r.name)
	out.Write(props.Bytes())
	if len(r.children) > 0 {
		for _, c := range r.children {
			writeFBXRecord(t, out, c, wide)
		}
		out.Write(make([]byte, nullRecordSize(wide)))
	}
	if wide {
		le.PutUint64(out.Bytes()[start:], uint64(out.Len()))
	} else {
		le.PutUint32(out.Bytes()[start:], uint32(out.Len()))
	}
}

func encodeFBXProp(t *testing.T, buf *bytes.Buffer, v any) {
	le := binary.LittleEndian
	array := func(code byte, n int, data any) {
		var raw bytes.Buffer
		binary.Write(&raw, le, data)
		buf.WriteByte(code)
		binary.Write(buf, le, []uint32{uint32(n), 0, uint32(raw.Len())})
		buf.Write(raw.Bytes())
	}
	switch x := v.(type) {
	case int64:
		buf.WriteByte('L')
		binary.Write(buf, le, x)
	case int32:
		buf.WriteByte('I')
		binary.Write(buf, le, x)
	case float64:
		buf.WriteByte('D')
		binary.Write(buf, le, x)
	case string:
		buf.WriteByte('S')
		binary.Write(buf, le, uint32(len(x)))
		buf.WriteString(x)
	case []float64:
		array('d', len(x), x)
	case []float32:
		array('f', len(x), x)
	case []int32:
		array('i', len(x), x)
	case []int64:
		array('l', len(x), x)
	case zipped:
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		binary.Write(zw, le, []float64(x))
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		buf.WriteByte('d')
		binary.Write(buf, le, []uint32{uint32(len(x)), 1, uint32(z.Len())})
		buf.Write(z.Bytes())
	default:
		t.Fatalf("cannot encode %T", v)
	}
}

// riggedFBX is a two-bone skeleton with a skinned body carrying two blend
// shape channels and one take that turns the head a quarter turn over two
// seconds.
func riggedFBX() []fbxRec {
	const second = int64(fbxTicks)
	return []fbxRec{
		rec("FBXHeaderExtension", nil, rec("FBXVersion", []any{int32(7400)})),
		rec("Objects", nil,
			obj("Model", 100, "Hips", "LimbNode", p70(
				pv("Lcl Translation", "Lcl Translation", 0.0, 100.0, 0.0),
			)),
			obj("Model", 101, "Head", "LimbNode", p70(
				pv("Lcl Rotation", "Lcl Rotation", 0.0, 60.0, 0.0),
			)),
			obj("Model", 200, "Body", "Mesh"),
			obj("Geometry", 300, "Body", "Mesh",
				rec("Vertices", []any{zipped{-1, 0, 0, 1, 2, 0, 0, 1, 0.5}}),
				rec("PolygonVertexIndex", []any{[]int32{0, 1, -3}}),
			),
			obj("Deformer", 400, "Skin", "Skin"),
			obj("Deformer", 401, "Hips", "Cluster",
				rec("Indexes", []any{[]int32{0, 1}}),
				rec("Weights", []any{[]float64{1, 0.5}}),
			),
			obj("Deformer", 402, "Head", "Cluster",
				rec("Indexes", []any{[]int32{1}}),
				rec("Weights", []any{[]float64{0.5}}),
			),
			obj("Deformer", 500, "Morphs", "BlendShape"),
			obj("Deformer", 501, "eyeBlink", "BlendShapeChannel", rec("DeformPercent", []any{50.0})),
			obj("Deformer", 502, "jawOpen", "BlendShapeChannel"),
			obj("AnimationStack", 600, "Take 001", "", p70(
				pv("LocalStop", "KTime", 2*second),
			)),
			obj("AnimationLayer", 700, "BaseLayer", ""),
			obj("AnimationCurveNode", 800, "R", "", p70(
				pv("d|X", "Number", 0.0),
				pv("d|Y", "Number", 0.0),
				pv("d|Z", "Number", 0.0),
			)),
			obj("AnimationCurve", 900, "", "",
				rec("KeyTime", []any{[]int64{0, 2 * second}}),
				rec("KeyValueFloat", []any{[]float32{0, 90}}),
			),
		),
		rec("Connections", nil,
			oo(100, 0), oo(101, 100), oo(200, 0),
			oo(300, 200), oo(400, 300),
			oo(401, 400), oo(402, 400), oo(100, 401), oo(101, 402),
			oo(500, 300), oo(501, 500), oo(502, 500),
			oo(700, 600), oo(800, 700),
			op(800, 101, "Lcl Rotation"), op(900, 800, "d|Y"),
		),
	}
}

func TestParseFBX(t *testing.T) {
	for _, version := range []uint32{7400, 7500} {
		t.Run(fmt.Sprintf("version %d", version), func(t *testing.T) {
			m, err := ParseFBX(encodeFBX(t, version, riggedFBX()))
			if err != nil {
				t.Fatalf("ParseFBX: %v", err)
			}
			if m.Format != FormatFBX {
				t.Errorf("format = %s", m.Format)
			}

			hips := m.Root.Find("Hips")
			head := m.Root.Find("Head")
			if hips == nil || head == nil {
				t.Fatal("missing joints")
			}
			if !hips.IsBone() || !head.IsBone() || head.Parent != hips || hips.Parent != m.Root {
				t.Error("LimbNodes should form the bone hierarchy")
			}
			if hips.Position.Y != 100 {
				t.Errorf("hips translation = %+v", hips.Position)
			}
			if gomath.Abs(float64(head.Rotation.Y)-gomath.Pi/3) > 1e-4 {
				t.Errorf("head yaw = %f, want pi/3", head.Rotation.Y)
			}

			body := m.Root.Find("Body")
			if body.Kind != scene.KindSkinnedMesh {
				t.Fatalf("body kind = %s", body.Kind)
			}
			mesh := body.Mesh
			if mesh.VertexCount != 3 || mesh.Bounds.Max.Y != 2 || mesh.Bounds.Min.X != -1 {
				t.Errorf("geometry = %d verts, bounds %+v", mesh.VertexCount, mesh.Bounds)
			}
			if len(mesh.SkinWeights) != 3 || mesh.SkinWeights[1] != [4]float32{0.5, 0.5, 0, 0} || mesh.SkinWeights[2] != [4]float32{} {
				t.Errorf("skin weights = %v", mesh.SkinWeights)
			}
			if sk := mesh.Skeleton; sk == nil || len(sk.Bones) != 2 || !sk.Contains(head) {
				t.Error("skeleton should hold Hips and Head")
			}
			if got := strings.Join(mesh.MorphChannelNames(), ","); got != "eyeBlink,jawOpen" {
				t.Errorf("morphs = %s", got)
			}
			if w := mesh.Influences[mesh.MorphNames["eyeBlink"]]; w != 0.5 {
				t.Errorf("eyeBlink weight = %f, want 0.5", w)
			}

			if len(m.Clips) != 1 {
				t.Fatalf("clips = %+v", m.Clips)
			}
			c := m.Clips[0]
			if c.Name != "Take 001" || gomath.Abs(c.Duration-2) > 1e-9 || len(c.Tracks) != 1 {
				t.Errorf("clip = %s %.3fs %d tracks", c.Name, c.Duration, len(c.Tracks))
			}
			c.Apply(1)
			if gomath.Abs(float64(head.Rotation.Y)-gomath.Pi/4) > 1e-3 {
				t.Errorf("head yaw at 1s = %f, want pi/4", head.Rotation.Y)
			}
		})
	}
}

func TestParseFBXErrors(t *testing.T) {
	good := encodeFBX(t, 7400, riggedFBX())
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"ascii", []byte("; FBX 7.4.0 project file\nFBXHeaderExtension:  {\n}\n"), ErrNotBinaryFBX},
		{"header only", []byte(fbxMagic), ErrFBXTruncated},
		{"cut record", good[:len(good)/2], ErrFBXTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFBX(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFBXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.fbx")
	if err := os.WriteFile(path, encodeFBX(t, 7400, riggedFBX()), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Path != path || m.Root.Find("Head") == nil {
		t.Errorf("model = %+v", m)
	}
}

func TestFBXName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hips\x00\x01Model", "Hips"},
		{"plain", "plain"},
		{"\x00\x01Geometry", ""},
	}
	for _, tt := range tests {
		if got := fbxName(tt.in); got != tt.want {
			t.Errorf("fbxName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
