package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalizeZero(t *testing.T) {
	q := Quat{}.Normalize()
	if q != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", q)
	}
}

func TestEulerQuatRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		e    Euler
	}{
		{"zero", Euler{}},
		{"pitch", Euler{X: 0.3}},
		{"yaw", Euler{Y: -0.7}},
		{"roll", Euler{Z: 1.1}},
		{"mixed", Euler{X: 0.2, Y: -0.4, Z: 0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerFromQuat(tt.e.Quat())
			if abs(got.X-tt.e.X) > 1e-4 || abs(got.Y-tt.e.Y) > 1e-4 || abs(got.Z-tt.e.Z) > 1e-4 {
				t.Errorf("EulerFromQuat(Quat(%v)) = %v", tt.e, got)
			}
		})
	}
}

func TestEulerMatchesQuatMatrix(t *testing.T) {
	e := Euler{X: 0.25, Y: 0.5, Z: -0.35}
	a := e.Mat4()
	b := e.Quat().ToMat4()
	for i := range a {
		if abs(a[i]-b[i]) > 1e-5 {
			t.Fatalf("element %d: Euler.Mat4=%f Quat.ToMat4=%f", i, a[i], b[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	e := EulerFromQuat(q)
	if abs(e.Y-float32(math.Pi/2)) > 1e-3 {
		t.Errorf("expected yaw of pi/2, got %v", e)
	}
}

func TestEaseCurves(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"smoothstep start", Smoothstep(0), 0},
		{"smoothstep mid", Smoothstep(0.5), 0.5},
		{"smoothstep clamp", Smoothstep(2), 1},
		{"ease mid", EaseInOut(0.5), 0.5},
		{"gaussian peak", Gaussian(0.3, 0.3, 40), 1},
		{"triangle peak", Triangle(0.5, 0.5, 0.2), 1},
		{"triangle edge", Triangle(0.7, 0.5, 0.2), 0},
		{"lerp", Lerp(2, 4, 0.25), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		pos   Vec3
		rot   Euler
		scale Vec3
	}{
		{"identity", Vec3{}, Euler{}, One()},
		{"roll and offset", Vec3{1, 2, 3}, Euler{Z: float32(math.Pi / 2)}, One()},
		{"mixed", Vec3{-0.5, 0, 4}, Euler{X: 0.3, Y: -0.6, Z: 0.9}, Vec3{2, 2, 2}},
		{"uneven scale", Vec3{}, Euler{Y: 0.4}, Vec3{1, 3, 0.5}},
		{"half turn", Vec3{}, Euler{Y: float32(math.Pi)}, One()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, q, scale := Decompose(Compose(tt.pos, tt.rot, tt.scale))
			if pos.Sub(tt.pos).Length() > 1e-5 {
				t.Errorf("translation = %v, want %v", pos, tt.pos)
			}
			if scale.Sub(tt.scale).Length() > 1e-4 {
				t.Errorf("scale = %v, want %v", scale, tt.scale)
			}
			// q and -q are the same rotation; compare the matrices.
			a, b := q.ToMat4(), tt.rot.Mat4()
			for i := range a {
				if abs(a[i]-b[i]) > 1e-4 {
					t.Fatalf("rotation element %d = %f, want %f", i, a[i], b[i])
				}
			}
		})
	}
}

func TestDecomposeMirrored(t *testing.T) {
	_, q, scale := Decompose(Scale(-1, 1, 1))
	if scale.X != -1 || scale.Y != 1 || scale.Z != 1 {
		t.Errorf("scale = %v, want (-1, 1, 1)", scale)
	}
	if abs(abs(q.W)-1) > 1e-5 {
		t.Errorf("rotation = %v, want identity", q)
	}
}

func TestQuatFromMat4(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateZ(float32(math.Pi / 2)))
	e := EulerFromQuat(QuatFromMat4(m))
	if abs(e.Z-float32(math.Pi/2)) > 1e-4 || abs(e.X) > 1e-4 || abs(e.Y) > 1e-4 {
		t.Errorf("EulerFromQuat = %v, want Z=pi/2", e)
	}
}

func TestSlerp(t *testing.T) {
	a := QuatIdentity()
	b := Euler{Y: 1.2}.Quat()

	tests := []struct {
		name string
		t    float32
		want float32
	}{
		{"start", 0, 0},
		{"middle", 0.5, 0.6},
		{"quarter", 0.25, 0.3},
		{"end", 1, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerFromQuat(a.Slerp(b, tt.t))
			if abs(got.Y-tt.want) > 1e-4 {
				t.Errorf("yaw = %v, want %v", got.Y, tt.want)
			}
		})
	}

	// The negated end is the same rotation; the short arc must still win.
	neg := Quat{-b.X, -b.Y, -b.Z, -b.W}
	if got := EulerFromQuat(a.Slerp(neg, 0.5)); abs(got.Y-0.6) > 1e-4 {
		t.Errorf("short arc yaw = %v, want 0.6", got.Y)
	}
}

func TestQuatMulMatchesMatrices(t *testing.T) {
	a := Euler{X: 0.4}.Quat()
	b := Euler{Z: -0.7}.Quat()
	got := a.Mul(b).ToMat4()
	want := RotateX(0.4).Mul(RotateZ(-0.7))
	for i := range got {
		if abs(got[i]-want[i]) > 1e-5 {
			t.Fatalf("element %d = %f, want %f", i, got[i], want[i])
		}
	}
	if id := a.Mul(QuatIdentity()); id != a {
		t.Errorf("q * identity = %v, want %v", id, a)
	}
}
