package math

import "math"

// Vector3 is the single-precision vector the simulation state is stored in.
// Positions are in meters, the velocity term in meters per step and the
// acceleration accumulator in m/s².
type Vector3 struct {
	X, Y, Z float32
}

// Zero returns the zero vector
func Zero() Vector3 {
	return Vector3{}
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale returns the vector scaled by a scalar
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the Euclidean length. The squares are summed in float32,
// which holds up to ~1.8e19 m before overflowing.
func (v Vector3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float32 {
	return v.Sub(other).Length()
}

// IsZero checks if the vector is zero
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Float64 widens the vector for diagnostics
func (v Vector3) Float64() Vector3d {
	return Vector3d{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
