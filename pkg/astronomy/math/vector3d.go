package math

import "math"

// Vector3d is a double-precision vector used by orbital-element and energy
// diagnostics, never by the integrator.
type Vector3d struct {
	X, Y, Z float64
}

// Add returns the sum of two vectors
func (v Vector3d) Add(other Vector3d) Vector3d {
	return Vector3d{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns the difference between two vectors
func (v Vector3d) Sub(other Vector3d) Vector3d {
	return Vector3d{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns the vector scaled by a scalar
func (v Vector3d) Scale(s float64) Vector3d {
	return Vector3d{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of two vectors
func (v Vector3d) Dot(other Vector3d) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vector3d) Cross(other Vector3d) Vector3d {
	return Vector3d{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Magnitude returns the length of the vector
func (v Vector3d) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance between two vectors
func (v Vector3d) Distance(other Vector3d) float64 {
	return v.Sub(other).Magnitude()
}
