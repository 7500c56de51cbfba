package math

import "math"

// Euler is a rotation expressed as three angles in radians, applied in
// intrinsic X, Y, Z order (matrix = Rx * Ry * Rz).
//
// The components are independent scalars so callers can drive a single axis
// without touching the others.
type Euler struct {
	X, Y, Z float32
}

// Add returns e + other, component-wise.
func (e Euler) Add(other Euler) Euler {
	return Euler{e.X + other.X, e.Y + other.Y, e.Z + other.Z}
}

// Mat4 returns the rotation matrix for e.
func (e Euler) Mat4() Mat4 {
	return RotateX(e.X).Mul(RotateY(e.Y)).Mul(RotateZ(e.Z))
}

// Quat returns the quaternion for e.
func (e Euler) Quat() Quat {
	c1 := math.Cos(float64(e.X) / 2)
	c2 := math.Cos(float64(e.Y) / 2)
	c3 := math.Cos(float64(e.Z) / 2)
	s1 := math.Sin(float64(e.X) / 2)
	s2 := math.Sin(float64(e.Y) / 2)
	s3 := math.Sin(float64(e.Z) / 2)

	return Quat{
		X: float32(s1*c2*c3 + c1*s2*s3),
		Y: float32(c1*s2*c3 - s1*c2*s3),
		Z: float32(c1*c2*s3 + s1*s2*c3),
		W: float32(c1*c2*c3 - s1*s2*s3),
	}
}

// EulerFromQuat converts a quaternion to XYZ Euler angles.
// Near gimbal lock (|Y| close to 90 degrees) Z is forced to zero.
func EulerFromQuat(q Quat) Euler {
	q = q.Normalize()
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)

	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - z*w)
	m13 := 2 * (x*z + y*w)
	m22 := 1 - 2*(x*x+z*z)
	m23 := 2 * (y*z - x*w)
	m32 := 2 * (y*z + x*w)
	m33 := 1 - 2*(x*x+y*y)

	ey := math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		return Euler{
			X: float32(math.Atan2(-m23, m33)),
			Y: float32(ey),
			Z: float32(math.Atan2(-m12, m11)),
		}
	}
	return Euler{
		X: float32(math.Atan2(m32, m22)),
		Y: float32(ey),
	}
}
