package nbody

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/rand"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/orbital"
)

const (
	// AsteroidMeanRadius is the characteristic radius of the belt [m]
	AsteroidMeanRadius float32 = 4e11
	// AsteroidMass is a typical asteroid: one billion tons [kg]
	AsteroidMass float32 = 1e12
	// AsteroidRadius is a typical asteroid radius [m]
	AsteroidRadius float32 = 2e3

	asteroidMinSpeedFactor   float32 = 0.6
	asteroidMaxSpeedFactor   float32 = 1.2
	asteroidMaxVerticalSpeed float32 = 1e2
)

// AsteroidColor is the display color of generated asteroids
var AsteroidColor = colorful.Color{R: 130.0 / 255, G: 130.0 / 255, B: 130.0 / 255}

// NewRand returns a seeded random source for a Sampler
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Sampler places asteroids around a primary mass at the origin
type Sampler struct {
	primaryMass float32
	timeStep    float32
	rng         *rand.Rand
	aligned     bool
}

// NewSampler creates a sampler. With aligned set every asteroid is placed at
// phi = 0, on the positive x axis.
func NewSampler(primaryMass, timeStep float32, rng *rand.Rand, aligned bool) (*Sampler, error) {
	if !(primaryMass > 0) || math.IsInf(float64(primaryMass), 0) {
		return nil, errorsmod.Wrapf(ErrInvalidPrimaryMass, "primary mass must be positive, got %g", primaryMass)
	}
	if !(timeStep > 0) || math.IsInf(float64(timeStep), 0) {
		return nil, errorsmod.Wrapf(ErrInvalidTimeStep, "time step must be positive, got %g", timeStep)
	}
	if rng == nil {
		rng = NewRand(DefaultSeed)
	}
	return &Sampler{
		primaryMass: primaryMass,
		timeStep:    timeStep,
		rng:         rng,
		aligned:     aligned,
	}, nil
}

// Sample returns one asteroid.
//
// The radius follows a logit-transformed uniform variate pushed through the
// disk-point-picking sqrt, so most asteroids sit near AsteroidMeanRadius with
// a long tail. Speed is circular-orbit speed times a factor in [0.6, 1.2].
func (s *Sampler) Sample() Body {
	for {
		x := s.uniform(0, 1)
		if x == 0 {
			continue
		}
		l := logf(x) - logf(1-x) + 1

		r := AsteroidMeanRadius * sqrtf(absf(l))
		phi := s.uniform(0, 2*math.Pi)
		if s.aligned {
			phi = 0
		}

		mu := float64(G * s.primaryMass)
		v := float32(orbital.CircularSpeed(mu, float64(r))) * s.uniform(asteroidMinSpeedFactor, asteroidMaxSpeedFactor)
		vy := s.uniform(-asteroidMaxVerticalSpeed, asteroidMaxVerticalSpeed)
		if r == 0 {
			continue
		}

		sin, cos := math.Sincos(float64(phi))
		sinPhi, cosPhi := float32(sin), float32(cos)
		velocity := astromath.Vector3{X: -v * sinPhi, Y: vy, Z: v * cosPhi}

		return Body{
			Mass:         AsteroidMass,
			Radius:       AsteroidRadius,
			Color:        AsteroidColor,
			Position:     astromath.Vector3{X: r * cosPhi, Y: 0, Z: r * sinPhi},
			VelocityTerm: velocity.Scale(s.timeStep),
		}
	}
}

func (s *Sampler) uniform(min, max float32) float32 {
	return min + (max-min)*s.rng.Float32()
}

// Single precision wrappers. Each rounds to float32 right after the call so
// the radius pipeline never carries float64 intermediates between steps.

func logf(x float32) float32 { return float32(math.Log(float64(x))) }

func sqrtf(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func absf(x float32) float32 { return math.Float32frombits(math.Float32bits(x) &^ (1 << 31)) }
