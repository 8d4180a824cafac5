package nbody

import (
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
)

// DefaultSeed seeds the sampler when no random source is given
const DefaultSeed uint64 = 20220101

// DefaultMinSeparation is the clamp distance used by DegenerateClamp [m]
const DefaultMinSeparation float32 = 1

type settings struct {
	rng               *rand.Rand
	seed              uint64
	aligned           bool
	mode              AccumulatorMode
	degenerate        DegeneratePolicy
	minSeparation     float32
	skipAsteroidPairs bool
	workers           int
	logger            *log.Logger
}

func defaultSettings() settings {
	return settings{
		seed:          DefaultSeed,
		mode:          AccumulateCarry,
		degenerate:    DegeneratePropagate,
		minSeparation: DefaultMinSeparation,
		workers:       1,
	}
}

// Option configures a Simulation
type Option func(*settings)

// WithRand injects the random source used to place asteroids
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

// WithSeed seeds a fresh random source; ignored when WithRand is given
func WithSeed(seed uint64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithAligned places every asteroid at phi = 0
func WithAligned(aligned bool) Option {
	return func(s *settings) { s.aligned = aligned }
}

// WithAccumulatorMode selects carry or reset behavior
func WithAccumulatorMode(mode AccumulatorMode) Option {
	return func(s *settings) { s.mode = mode }
}

// WithDegeneratePolicy selects how coincident bodies are handled
func WithDegeneratePolicy(p DegeneratePolicy) Option {
	return func(s *settings) { s.degenerate = p }
}

// WithMinSeparation sets the clamp distance for DegenerateClamp
func WithMinSeparation(d float32) Option {
	return func(s *settings) { s.minSeparation = d }
}

// WithSkipAsteroidPairs skips asteroid-asteroid pairs under the Full policy
func WithSkipAsteroidPairs(skip bool) Option {
	return func(s *settings) { s.skipAsteroidPairs = skip }
}

// WithWorkers splits the accumulation sweep of range policies across n
// goroutines
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func (s *settings) fill() {
	if s.rng == nil {
		s.rng = NewRand(s.seed)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
}
