package orbital

import (
	"math"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// OrbitalElements represents Keplerian orbital elements
type OrbitalElements struct {
	SemiMajorAxis          float64 // a [m]
	Eccentricity           float64 // e
	Inclination            float64 // i [rad]
	LongitudeAscendingNode float64 // Ω [rad]
	ArgumentPerihelion     float64 // ω [rad]
	MeanAnomaly            float64 // M [rad]
}

// CircularSpeed returns the speed of a circular orbit of radius r around a
// body with gravitational parameter mu = G·M
func CircularSpeed(mu, r float64) float64 {
	return math.Sqrt(mu / r)
}

// OrbitalPeriod returns the period in seconds for semi-major axis a
func OrbitalPeriod(mu, a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

// GetPerihelion returns the perihelion distance
func (oe OrbitalElements) GetPerihelion() float64 {
	return oe.SemiMajorAxis * (1 - oe.Eccentricity)
}

// GetAphelion returns the aphelion distance
func (oe OrbitalElements) GetAphelion() float64 {
	return oe.SemiMajorAxis * (1 + oe.Eccentricity)
}

// IsBound reports whether the orbit is closed
func (oe OrbitalElements) IsBound() bool {
	return oe.SemiMajorAxis > 0 && oe.Eccentricity < 1
}

// CartesianToOrbital converts relative position and velocity to orbital
// elements. The reference plane is x-z with y up, matching the simulation.
func CartesianToOrbital(pos, vel astromath.Vector3d, mu float64) OrbitalElements {
	// swap to a z-up frame so the classic formulas apply
	pos = astromath.Vector3d{X: pos.X, Y: pos.Z, Z: -pos.Y}
	vel = astromath.Vector3d{X: vel.X, Y: vel.Z, Z: -vel.Y}

	h := pos.Cross(vel)
	r := pos.Magnitude()
	v := vel.Magnitude()

	eVec := vel.Cross(h).Scale(1.0 / mu).Sub(pos.Scale(1.0 / r))
	e := eVec.Magnitude()

	a := 1.0 / (2.0/r - v*v/mu)

	i := 0.0
	if hm := h.Magnitude(); hm > 0 {
		i = math.Acos(h.Z / hm)
	}

	n := astromath.Vector3d{Z: 1}.Cross(h)
	Omega := 0.0
	if n.Magnitude() > 1e-10 {
		Omega = math.Atan2(n.Y, n.X)
		if Omega < 0 {
			Omega += 2 * math.Pi
		}
	}

	omega := 0.0
	if n.Magnitude() > 1e-10 && e > 1e-10 {
		cosOmega := n.Dot(eVec) / (n.Magnitude() * e)
		if math.Abs(cosOmega) <= 1.0 {
			omega = math.Acos(cosOmega)
			if eVec.Z < 0 {
				omega = 2*math.Pi - omega
			}
		}
	}

	M := 0.0
	if e > 1e-10 && e < 1 {
		cosE := (1 - r/a) / e
		if math.Abs(cosE) <= 1.0 {
			E := math.Acos(cosE)
			if pos.Dot(vel) < 0 {
				E = 2*math.Pi - E
			}
			M = E - e*math.Sin(E)
		}
	}

	return OrbitalElements{
		SemiMajorAxis:          a,
		Eccentricity:           e,
		Inclination:            i,
		LongitudeAscendingNode: Omega,
		ArgumentPerihelion:     omega,
		MeanAnomaly:            M,
	}
}
