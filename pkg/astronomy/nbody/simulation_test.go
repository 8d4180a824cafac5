package nbody

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

func TestNewSolarSystemLayout(t *testing.T) {
	catalog := ephemerides.SolarSystem()
	sim, err := New(catalog, tenDaysStep, 500, StarDominant, WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, 0, sim.StarCount())
	assert.Equal(t, 9, sim.PlanetCount())
	assert.Equal(t, 500, sim.AsteroidCount())
	require.Len(t, sim.Bodies(), 509)
	assert.Equal(t, tenDaysStep, sim.TimeStep())
	assert.Zero(t, sim.ElapsedTime())

	for i, r := range catalog.Planets {
		b := sim.Bodies()[i]
		assert.Equal(t, r.Name, b.Name)
		assert.Equal(t, r.Mass, b.Mass)
		assert.Equal(t, r.Position, b.Position)
		assert.Equal(t, r.Velocity.Scale(tenDaysStep), b.VelocityTerm)
	}
	for _, b := range sim.Bodies()[9:] {
		assert.Equal(t, AsteroidMass, b.Mass)
	}
	for _, b := range sim.Bodies() {
		assert.True(t, b.Acceleration.IsZero())
	}
}

func TestNewAlphaCentauriPutsStarsFirst(t *testing.T) {
	sim, err := New(ephemerides.AlphaCentauri(), tenDaysStep, 10, Full)
	require.NoError(t, err)

	assert.Equal(t, 3, sim.StarCount())
	assert.Equal(t, 9, sim.PlanetCount())
	assert.Equal(t, "Alpha Centauri A", sim.Bodies()[0].Name)
	assert.Equal(t, "Sun", sim.Bodies()[3].Name)
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	noSun := ephemerides.SolarSystem()
	noSun.Planets[0].Mass = 0

	tests := []struct {
		name      string
		catalog   ephemerides.Catalog
		timeStep  float32
		asteroids int
		policy    ForcePolicy
		opts      []Option
		want      error
	}{
		{"zero time step", ephemerides.SolarSystem(), 0, 10, Full, nil, ErrInvalidTimeStep},
		{"negative time step", ephemerides.SolarSystem(), -1, 10, Full, nil, ErrInvalidTimeStep},
		{"nan time step", ephemerides.SolarSystem(), float32(math.NaN()), 10, Full, nil, ErrInvalidTimeStep},
		{"negative asteroids", ephemerides.SolarSystem(), tenDaysStep, -1, Full, nil, ErrInvalidAsteroidCount},
		{"too many asteroids", ephemerides.SolarSystem(), tenDaysStep, MaxBodies, Full, nil, ErrInvalidAsteroidCount},
		{"unknown policy", ephemerides.SolarSystem(), tenDaysStep, 10, ForcePolicy(9), nil, ErrInvalidPolicy},
		{"massless sun", noSun, tenDaysStep, 10, Full, nil, ephemerides.ErrInvalidCatalog},
		{"nothing to orbit", ephemerides.Catalog{}, tenDaysStep, 10, Full, nil, ephemerides.ErrInvalidCatalog},
		{"clamp without separation", ephemerides.SolarSystem(), tenDaysStep, 0, Full,
			[]Option{WithDegeneratePolicy(DegenerateClamp), WithMinSeparation(0)}, ErrInvalidPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := New(tt.catalog, tt.timeStep, tt.asteroids, tt.policy, tt.opts...)
			assert.Nil(t, sim)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAttractorRanges(t *testing.T) {
	tests := []struct {
		name    string
		catalog ephemerides.Catalog
		policy  ForcePolicy
		want    AttractorRange
	}{
		{"solar full", ephemerides.SolarSystem(), Full, AttractorRange{0, 29}},
		{"solar planets", ephemerides.SolarSystem(), PlanetDominant, AttractorRange{0, 9}},
		{"solar star falls back to sun", ephemerides.SolarSystem(), StarDominant, AttractorRange{0, 1}},
		{"alpha planets", ephemerides.AlphaCentauri(), PlanetDominant, AttractorRange{3, 12}},
		{"alpha stars", ephemerides.AlphaCentauri(), StarDominant, AttractorRange{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := New(tt.catalog, tenDaysStep, 29-tt.catalog.Len(), tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sim.Attractors())
		})
	}
}

func TestParsePolicies(t *testing.T) {
	p, err := ParseForcePolicy("Star")
	require.NoError(t, err)
	assert.Equal(t, StarDominant, p)

	m, err := ParseAccumulatorMode("reset")
	require.NoError(t, err)
	assert.Equal(t, AccumulateReset, m)

	d, err := ParseDegeneratePolicy("clamp")
	require.NoError(t, err)
	assert.Equal(t, DegenerateClamp, d)

	_, err = ParseForcePolicy("barnes-hut")
	assert.True(t, errors.Is(err, ErrInvalidPolicy))

	for _, p := range []ForcePolicy{Full, PlanetDominant, StarDominant} {
		parsed, err := ParseForcePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestReleaseStopsStepping(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 5, StarDominant)
	require.NoError(t, err)
	require.NoError(t, sim.Step())

	sim.Release()
	assert.Nil(t, sim.Bodies())
	assert.True(t, errors.Is(sim.Step(), ErrReleased))
	assert.Equal(t, int64(1), sim.Steps())

	// counts follow the empty buffer
	assert.Zero(t, sim.StarCount()+sim.PlanetCount()+sim.AsteroidCount())
	assert.Equal(t, -1, sim.PrimaryIndex())
	assert.Equal(t, AttractorRange{}, sim.Attractors())
}

func TestDateFollowsElapsedTime(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), 86400, 0, StarDominant)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, sim.Step())
	}
	assert.Equal(t, time.Date(2022, time.January, 11, 0, 0, 0, 0, time.UTC), sim.Date(DefaultEpoch))
}

func TestDateBeyondDurationRange(t *testing.T) {
	const hundredDays = 100 * 86400
	sim, err := New(ephemerides.SolarSystem(), hundredDays, 0, StarDominant)
	require.NoError(t, err)

	// 1200 steps is about 328 years, past what a time.Duration can hold
	for i := 0; i < 1200; i++ {
		require.NoError(t, sim.Step())
	}
	date := sim.Date(DefaultEpoch)
	assert.Equal(t, DefaultEpoch.AddDate(0, 0, 120000), date)
	assert.Equal(t, 2350, date.Year())
}

func TestSnapshotIsACopy(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 3, StarDominant)
	require.NoError(t, err)

	snap := sim.Snapshot()
	snap[0].Position = astromath.Vector3{X: 1, Y: 2, Z: 3}
	assert.NotEqual(t, snap[0].Position, sim.Bodies()[0].Position)
}

func TestStarDominantFollowsPrimaryInReorderedCatalog(t *testing.T) {
	catalog := ephemerides.SolarSystem()
	catalog.Planets[0], catalog.Planets[3] = catalog.Planets[3], catalog.Planets[0]

	sim, err := New(catalog, tenDaysStep, 20, StarDominant)
	require.NoError(t, err)

	assert.Equal(t, 3, sim.PrimaryIndex())
	assert.Equal(t, AttractorRange{3, 4}, sim.Attractors())
	assert.Equal(t, "Sun", sim.Bodies()[sim.Attractors().Start].Name)
}

func TestPrimaryIndex(t *testing.T) {
	solar, err := New(ephemerides.SolarSystem(), tenDaysStep, 0, Full)
	require.NoError(t, err)
	assert.Equal(t, 0, solar.PrimaryIndex())

	alpha, err := New(ephemerides.AlphaCentauri(), tenDaysStep, 0, Full)
	require.NoError(t, err)
	assert.Equal(t, 3, alpha.PrimaryIndex())

	starsOnly := ephemerides.AlphaCentauri()
	starsOnly.Planets = nil
	lonely, err := New(starsOnly, tenDaysStep, 0, Full)
	require.NoError(t, err)
	assert.Equal(t, 0, lonely.PrimaryIndex())
}
