package nbody

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// G is the gravitational constant [m³/(kg·s²)]
const G float32 = 6.6743e-11

// Body represents a point mass in the simulation
type Body struct {
	Name   string
	Mass   float32 // [kg]
	Radius float32 // [m], display only
	Color  colorful.Color

	Position astromath.Vector3 // [m]

	// VelocityTerm is the initial velocity times the time step. It is not
	// recomputed while the accumulator carries over.
	VelocityTerm astromath.Vector3

	// Acceleration accumulates gravitational contributions [m/s²]
	Acceleration astromath.Vector3
}

// NewBody builds a body from a catalog record
func NewBody(r ephemerides.Record, timeStep float32) Body {
	return Body{
		Name:         r.Name,
		Mass:         r.Mass,
		Radius:       r.Radius,
		Color:        r.Color,
		Position:     r.Position,
		VelocityTerm: r.Velocity.Scale(timeStep),
	}
}

// Velocity returns the velocity the next position update will apply,
// (velocityTerm + acc·dt²)/dt, valid in both accumulator modes.
func (b Body) Velocity(timeStep float32) astromath.Vector3 {
	return b.VelocityTerm.Add(b.Acceleration.Scale(timeStep * timeStep)).Scale(1 / timeStep)
}
