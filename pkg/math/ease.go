package math

import "math"

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Smoothstep is the cubic Hermite ease 3t²-2t³ over a clamped t.
func Smoothstep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// EaseInOut is a sine ease over a clamped t.
func EaseInOut(t float64) float64 {
	t = Clamp01(t)
	return 0.5 - 0.5*math.Cos(t*math.Pi)
}

// Lerp interpolates linearly from a to b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Gaussian returns exp(-sharpness * (q - center)²), peaking at 1.
func Gaussian(q, center, sharpness float64) float64 {
	d := q - center
	return math.Exp(-sharpness * d * d)
}

// Triangle is a symmetric tent of height 1 centered at center that reaches
// zero at center ± halfWidth.
func Triangle(p, center, halfWidth float64) float64 {
	if halfWidth <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(p-center)/halfWidth)
}
