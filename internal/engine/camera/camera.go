// Package camera provides the orbit camera used by the viewers.
package camera

import (
	gomath "math"

	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera looking at a 1.6 unit tall model
// standing on the origin.
func NewOrbitCamera(fov float32) *OrbitCamera {
	return &OrbitCamera{
		Center:          math.Vec3{Y: 0.8},
		Distance:        3.0,
		RotationX:       0.15,
		FOV:             fov,
		Near:            0.01,
		Far:             100,
		MinDistance:     0.1,
		MaxDistance:     50.0,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))

	return c.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective matrix for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(radians(c.FOV), aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers on b and backs off until its largest extent fills
// the vertical field of view, times padding. Near and far planes follow the
// new distance.
func (c *OrbitCamera) FitToBounds(b scene.Bounds, padding float32) {
	c.Center = b.Center()

	largest := b.Size().MaxComponent()
	if largest <= 0 {
		largest = 1
	}
	half := float64(radians(c.FOV)) / 2
	dist := float32(float64(largest)/(2*gomath.Tan(half))) * padding

	c.Distance = clamp(dist, c.MinDistance, c.MaxDistance)
	c.Near = c.Distance / 100
	c.Far = c.Distance * 100
	c.RotationX = 0.15
	c.RotationY = 0
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
