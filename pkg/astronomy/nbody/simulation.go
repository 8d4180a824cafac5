package nbody

import (
	"math"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/charmbracelet/log"

	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// MaxBodies bounds the body buffer so a bad asteroid count fails at
// construction instead of exhausting memory
const MaxBodies = 1 << 22

// DefaultEpoch is the calendar date elapsed time zero maps to
var DefaultEpoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// Simulation owns the body buffer and the scalar state advanced by Step.
//
// Bodies are laid out [stars | planets | asteroids]. A Simulation is not
// safe for concurrent use; readers must not overlap a Step.
type Simulation struct {
	bodies []Body

	timeStep float32
	dt2      float32
	elapsed  float64
	steps    int64

	stars     int
	planets   int
	asteroids int

	policy     ForcePolicy
	attractors AttractorRange

	mode              AccumulatorMode
	degenerate        DegeneratePolicy
	minSeparation     float32
	skipAsteroidPairs bool
	workers           int

	// scratch holds accumulators for rollback and per-body faults under
	// DegenerateFail
	scratch []astromath.Vector3
	faults  []int32

	logger *log.Logger
}

// New builds a simulation from a catalog: stars, then planets, then
// asteroidCount sampled asteroids.
func New(catalog ephemerides.Catalog, timeStep float32, asteroidCount int, policy ForcePolicy, opts ...Option) (*Simulation, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.fill()

	if !(timeStep > 0) || math.IsInf(float64(timeStep), 0) {
		return nil, errorsmod.Wrapf(ErrInvalidTimeStep, "time step must be positive, got %g", timeStep)
	}
	if !policy.valid() {
		return nil, errorsmod.Wrapf(ErrInvalidPolicy, "unknown force policy %d", int(policy))
	}
	if cfg.degenerate == DegenerateClamp && !(cfg.minSeparation > 0) {
		return nil, errorsmod.Wrapf(ErrInvalidPolicy, "clamp needs a positive minimum separation, got %g", cfg.minSeparation)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if asteroidCount < 0 || asteroidCount > MaxBodies-catalog.Len() {
		return nil, errorsmod.Wrapf(ErrInvalidAsteroidCount, "%d asteroids, want 0..%d", asteroidCount, MaxBodies-catalog.Len())
	}

	var sampler *Sampler
	if asteroidCount > 0 {
		primary, ok := catalog.Primary()
		if !ok {
			return nil, errorsmod.Wrap(ephemerides.ErrInvalidCatalog, "asteroids need at least one catalog body to orbit")
		}
		var err error
		if sampler, err = NewSampler(primary.Mass, timeStep, cfg.rng, cfg.aligned); err != nil {
			return nil, err
		}
	}

	sim := &Simulation{
		bodies:            make([]Body, catalog.Len()+asteroidCount),
		timeStep:          timeStep,
		dt2:               timeStep * timeStep,
		stars:             len(catalog.Stars),
		planets:           len(catalog.Planets),
		asteroids:         asteroidCount,
		policy:            policy,
		mode:              cfg.mode,
		degenerate:        cfg.degenerate,
		minSeparation:     cfg.minSeparation,
		skipAsteroidPairs: cfg.skipAsteroidPairs,
		workers:           cfg.workers,
		logger:            cfg.logger,
	}

	for i, r := range catalog.Records() {
		sim.bodies[i] = NewBody(r, timeStep)
	}
	for i := catalog.Len(); i < len(sim.bodies); i++ {
		sim.bodies[i] = sampler.Sample()
	}
	for i := range sim.bodies {
		sim.bodies[i].Acceleration = astromath.Zero()
	}

	sim.attractors = sim.resolveAttractors()
	if sim.degenerate == DegenerateFail {
		sim.scratch = make([]astromath.Vector3, len(sim.bodies))
		sim.faults = make([]int32, len(sim.bodies))
	}

	sim.logger.Info("simulation created",
		"catalog", catalog.Name,
		"stars", sim.stars,
		"planets", sim.planets,
		"asteroids", sim.asteroids,
		"policy", sim.policy,
		"attractors", sim.attractors.Len(),
		"accumulator", sim.mode,
		"time_step", sim.timeStep,
	)
	return sim, nil
}

// resolveAttractors maps the force policy to an index range
func (s *Simulation) resolveAttractors() AttractorRange {
	switch s.policy {
	case PlanetDominant:
		return AttractorRange{Start: s.stars, End: s.stars + s.planets}
	case StarDominant:
		if s.stars == 0 {
			// the primary stands in for the sun
			p := s.PrimaryIndex()
			if p < 0 {
				return AttractorRange{}
			}
			return AttractorRange{Start: p, End: p + 1}
		}
		return AttractorRange{Start: 0, End: s.stars}
	default:
		return AttractorRange{Start: 0, End: len(s.bodies)}
	}
}

// Bodies borrows the body buffer. The slice is only valid until the next
// Step and must not be modified.
func (s *Simulation) Bodies() []Body {
	return s.bodies
}

// Snapshot returns a copy of every body
func (s *Simulation) Snapshot() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// TimeStep returns the fixed step in seconds
func (s *Simulation) TimeStep() float32 { return s.timeStep }

// ElapsedTime returns simulated seconds since construction
func (s *Simulation) ElapsedTime() float64 { return s.elapsed }

// Steps returns the number of completed steps
func (s *Simulation) Steps() int64 { return s.steps }

// StarCount returns the size of the star block
func (s *Simulation) StarCount() int { return s.stars }

// PlanetCount returns the size of the planetary block
func (s *Simulation) PlanetCount() int { return s.planets }

// AsteroidCount returns the number of sampled asteroids
func (s *Simulation) AsteroidCount() int { return s.asteroids }

// Policy returns the force policy
func (s *Simulation) Policy() ForcePolicy { return s.policy }

// Attractors returns the index range whose gravity is summed each step
func (s *Simulation) Attractors() AttractorRange { return s.attractors }

// AccumulatorMode returns the accumulator behavior
func (s *Simulation) AccumulatorMode() AccumulatorMode { return s.mode }

// Date maps elapsed time onto a calendar starting at epoch. Whole seconds
// go through Unix time since a time.Duration tops out near 292 years.
func (s *Simulation) Date(epoch time.Time) time.Time {
	whole := math.Floor(s.elapsed)
	t := time.Unix(epoch.Unix()+int64(whole), int64(epoch.Nanosecond())).In(epoch.Location())
	return t.Add(time.Duration((s.elapsed - whole) * float64(time.Second)))
}

// Release drops the body buffer. Later calls to Step return ErrReleased.
func (s *Simulation) Release() {
	s.bodies = nil
	s.scratch = nil
	s.faults = nil
	s.stars, s.planets, s.asteroids = 0, 0, 0
	s.attractors = AttractorRange{}
}

// PrimaryIndex returns the index of the body asteroids orbit: the most
// massive planetary body, else the most massive star, else -1.
func (s *Simulation) PrimaryIndex() int {
	pick := func(start, end int) int {
		best := -1
		for i := start; i < end; i++ {
			if best < 0 || s.bodies[i].Mass > s.bodies[best].Mass {
				best = i
			}
		}
		return best
	}
	if i := pick(s.stars, s.stars+s.planets); i >= 0 {
		return i
	}
	return pick(0, s.stars)
}
