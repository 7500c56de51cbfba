package math

import "math"

// Quat is a rotation quaternion with W as the scalar part. glTF stores node
// rotations this way; scene nodes convert them to Euler on load.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the quaternion of no rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle rotates angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math.Sincos(float64(angle) / 2)
	v := axis.Scale(float32(s))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: float32(c)}
}

func (q Quat) lengthSq() float64 {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)
	return x*x + y*y + z*z + w*w
}

// Normalize scales q to unit length. Degenerate input, such as the zero
// quaternion some exporters write for unset rotations, becomes identity.
func (q Quat) Normalize() Quat {
	l2 := q.lengthSq()
	if l2 < 1e-8 {
		return QuatIdentity()
	}
	inv := float32(1 / math.Sqrt(l2))
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// ToMat4 returns the column-major rotation matrix of q.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, yy, zz := q.X*x2, q.Y*y2, q.Z*z2
	xy, xz, yz := q.X*y2, q.X*z2, q.Y*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	m := Identity()
	m[0], m[1], m[2] = 1-(yy+zz), xy+wz, xz-wy
	m[4], m[5], m[6] = xy-wz, 1-(xx+zz), yz+wx
	m[8], m[9], m[10] = xz+wy, yz-wx, 1-(xx+yy)
	return m
}

// QuatFromMat4 extracts the rotation of an affine matrix. Column scale is
// divided out first, and a mirrored basis flips the X column.
func QuatFromMat4(m Mat4) Quat {
	_, q, _ := Decompose(m)
	return q
}

// quatFromBasis converts an orthonormal rotation matrix, given row by row.
func quatFromBasis(r00, r01, r02, r10, r11, r12, r20, r21, r22 float64) Quat {
	var x, y, z, w float64
	switch tr := r00 + r11 + r22; {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1)
		w = 0.25 / s
		x = (r21 - r12) * s
		y = (r02 - r20) * s
		z = (r10 - r01) * s
	case r00 > r11 && r00 > r22:
		s := 2 * math.Sqrt(1+r00-r11-r22)
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	case r11 > r22:
		s := 2 * math.Sqrt(1+r11-r00-r22)
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	default:
		s := 2 * math.Sqrt(1+r22-r00-r11)
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}
	return Quat{float32(x), float32(y), float32(z), float32(w)}.Normalize()
}

// Mul returns the Hamilton product q * other, the rotation that applies
// other first and then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Dot returns the four-component dot product.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Slerp interpolates along the shorter arc from q to other. Nearly equal
// inputs fall back to a normalized linear blend.
func (q Quat) Slerp(other Quat, t float32) Quat {
	cos := float64(q.Dot(other))
	if cos < 0 {
		other = Quat{-other.X, -other.Y, -other.Z, -other.W}
		cos = -cos
	}
	a, b := 1-float64(t), float64(t)
	if cos < 0.9995 {
		theta := math.Acos(cos)
		sin := math.Sin(theta)
		a = math.Sin((1-float64(t))*theta) / sin
		b = math.Sin(float64(t)*theta) / sin
	}
	fa, fb := float32(a), float32(b)
	return Quat{
		X: q.X*fa + other.X*fb,
		Y: q.Y*fa + other.Y*fb,
		Z: q.Z*fa + other.Z*fb,
		W: q.W*fa + other.W*fb,
	}.Normalize()
}
