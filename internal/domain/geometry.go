package domain

import "math"

// Vector is a position in world space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit-length copy of v, or the zero vector when v is zero.
func (v Vector) Normalized() Vector {
	l := v.Length()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b Vector) float64 {
	return a.Sub(b).Length()
}

// Rotator is an orientation in degrees.
type Rotator struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// NormalizeAngle wraps an angle in degrees into [-180, 180).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg >= 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}

// AngularDelta returns the largest of the absolute normalized yaw and pitch
// differences between two orientations.
func AngularDelta(a, b Rotator) float64 {
	yaw := math.Abs(NormalizeAngle(a.Yaw - b.Yaw))
	pitch := math.Abs(NormalizeAngle(a.Pitch - b.Pitch))
	return math.Max(yaw, pitch)
}
