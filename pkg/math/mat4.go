package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// rotation fills the 2x2 block spanned by axes a and b with a
// counter-clockwise rotation of angle radians.
func rotation(a, b int, angle float32) Mat4 {
	s, c := math.Sincos(float64(angle))
	m := Identity()
	m[a*4+a], m[b*4+b] = float32(c), float32(c)
	m[a*4+b], m[b*4+a] = float32(s), float32(-s)
	return m
}

// RotateX rotates angle radians around X.
func RotateX(angle float32) Mat4 { return rotation(1, 2, angle) }

// RotateY rotates angle radians around Y.
func RotateY(angle float32) Mat4 { return rotation(2, 0, angle) }

// RotateZ rotates angle radians around Z.
func RotateZ(angle float32) Mat4 { return rotation(0, 1, angle) }

// Compose builds a local transform as T * R * S.
func Compose(position Vec3, rotation Euler, scale Vec3) Mat4 {
	return Translate(position.X, position.Y, position.Z).
		Mul(rotation.Mat4()).
		Mul(Scale(scale.X, scale.Y, scale.Z))
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformVec3 transforms a point with w=1, dividing by the resulting w
// when the matrix is projective.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	p, w := m.Project(v)
	if w == 0 {
		return Vec3{}
	}
	return p
}

// Project transforms a point to normalized device coordinates and also
// returns the clip-space w. Points with w <= 0 lie behind the eye.
func (m Mat4) Project(v Vec3) (Vec3, float32) {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		return Vec3{}, 0
	}
	return Vec3{x / w, y / w, z / w}, w
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Decompose splits an affine T * R * S matrix into translation, rotation
// and scale. A negative determinant is folded into the X scale and shear
// is discarded.
func Decompose(m Mat4) (Vec3, Quat, Vec3) {
	translation := m.Translation()
	cx := Vec3{m[0], m[1], m[2]}
	cy := Vec3{m[4], m[5], m[6]}
	cz := Vec3{m[8], m[9], m[10]}
	scale := Vec3{cx.Length(), cy.Length(), cz.Length()}
	if cx.Cross(cy).Dot(cz) < 0 {
		scale.X = -scale.X
	}
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return translation, QuatIdentity(), scale
	}
	cx, cy, cz = cx.Scale(1/scale.X), cy.Scale(1/scale.Y), cz.Scale(1/scale.Z)
	q := quatFromBasis(
		float64(cx.X), float64(cy.X), float64(cz.X),
		float64(cx.Y), float64(cy.Y), float64(cz.Y),
		float64(cx.Z), float64(cy.Z), float64(cz.Z),
	)
	return translation, q, scale
}
