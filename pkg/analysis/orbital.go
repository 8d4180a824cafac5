package analysis

import (
	"io"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/orbitalsim/internal/types"
	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/nbody"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/orbital"
)

const codespace = "analysis"

var (
	ErrNoAsteroids = errorsmod.Register(codespace, 2, "no asteroids to analyze")
	ErrNoPrimary   = errorsmod.Register(codespace, 3, "no primary body")
)

// BeltStatistics computes the distribution of asteroid distances and
// orbital elements relative to the primary. A nil logger discards output.
func BeltStatistics(sim *nbody.Simulation, logger *log.Logger) (*types.BeltReport, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sim.AsteroidCount() == 0 {
		return nil, ErrNoAsteroids
	}
	p := sim.PrimaryIndex()
	if p < 0 {
		return nil, ErrNoPrimary
	}

	bodies := sim.Bodies()
	dt := sim.TimeStep()
	primary := bodies[p]
	mu := float64(nbody.G) * float64(primary.Mass)
	origin := primary.Position.Float64()
	drift := primary.Velocity(dt).Float64()

	n := sim.AsteroidCount()
	radii := make([]float64, 0, n)
	eccs := make([]float64, 0, n)
	incs := make([]float64, 0, n)
	bound := 0

	for _, b := range bodies[sim.StarCount()+sim.PlanetCount():] {
		pos := b.Position.Float64().Sub(origin)
		vel := b.Velocity(dt).Float64().Sub(drift)
		oe := orbital.CartesianToOrbital(pos, vel, mu)

		radii = append(radii, pos.Magnitude())
		eccs = append(eccs, oe.Eccentricity)
		incs = append(incs, oe.Inclination)
		if oe.IsBound() {
			bound++
		}
	}

	report := &types.BeltReport{
		Primary:      primary.Name,
		Count:        n,
		Bound:        bound,
		Radius:       describe(radii),
		Eccentricity: describe(eccs),
		Inclination:  describe(incs),
	}

	logger.Debug("belt statistics",
		"asteroids", n,
		"bound", bound,
		"mean_radius", report.Radius.Mean,
		"mean_eccentricity", report.Eccentricity.Mean,
	)
	return report, nil
}

// describe sorts x in place
func describe(x []float64) types.Distribution {
	sort.Float64s(x)
	return types.Distribution{
		Mean:   stat.Mean(x, nil),
		StdDev: stat.StdDev(x, nil),
		Min:    x[0],
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, x, nil),
		Max:    x[len(x)-1],
	}
}

// Energy returns the total kinetic plus potential energy in joules, using
// the velocity the next position update will apply. Pairs at zero
// separation are left out of the potential.
func Energy(sim *nbody.Simulation) float64 {
	bodies := sim.Bodies()
	dt := sim.TimeStep()
	g := float64(nbody.G)

	var kinetic, potential float64
	pos := make([]astromath.Vector3d, len(bodies))
	for i, b := range bodies {
		v := b.Velocity(dt).Float64()
		kinetic += 0.5 * float64(b.Mass) * v.Dot(v)
		pos[i] = b.Position.Float64()
	}
	for i := range bodies {
		mi := float64(bodies[i].Mass)
		for j := i + 1; j < len(bodies); j++ {
			r := pos[i].Distance(pos[j])
			if r == 0 {
				continue
			}
			potential -= g * mi * float64(bodies[j].Mass) / r
		}
	}
	return kinetic + potential
}
