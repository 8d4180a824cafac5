package orbital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

const (
	muSun = 1.32712440018e20
	au    = 1.495978707e11
)

func TestCircularOrbitElements(t *testing.T) {
	v := CircularSpeed(muSun, au)
	assert.InDelta(t, 29784.7, v, 1)

	oe := CartesianToOrbital(astromath.Vector3d{X: au}, astromath.Vector3d{Z: v}, muSun)
	assert.InEpsilon(t, au, oe.SemiMajorAxis, 1e-9)
	assert.InDelta(t, 0, oe.Eccentricity, 1e-9)
	// x-z plane, moving towards +z from +x is prograde
	assert.InDelta(t, 0, oe.Inclination, 1e-9)
	assert.True(t, oe.IsBound())
}

func TestEllipticalOrbitElements(t *testing.T) {
	// at perihelion with 1.1x circular speed
	v := 1.1 * CircularSpeed(muSun, au)
	oe := CartesianToOrbital(astromath.Vector3d{X: au}, astromath.Vector3d{Z: v}, muSun)

	// e = r·v²/mu - 1 at an apsis
	assert.InDelta(t, 0.21, oe.Eccentricity, 1e-9)
	assert.InEpsilon(t, au, oe.GetPerihelion(), 1e-9)
	assert.Greater(t, oe.GetAphelion(), au)
}

func TestRetrogradeAndEscapeOrbits(t *testing.T) {
	v := CircularSpeed(muSun, au)

	retro := CartesianToOrbital(astromath.Vector3d{X: au}, astromath.Vector3d{Z: -v}, muSun)
	assert.InDelta(t, math.Pi, retro.Inclination, 1e-9)

	escape := CartesianToOrbital(astromath.Vector3d{X: au}, astromath.Vector3d{Z: 1.5 * v}, muSun)
	assert.False(t, escape.IsBound())
}

func TestOrbitalPeriodOfEarth(t *testing.T) {
	days := OrbitalPeriod(muSun, au) / 86400
	assert.InDelta(t, 365.25, days, 0.1)
}
