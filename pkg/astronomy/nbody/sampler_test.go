package nbody

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sunMass     float32 = 1.9885e30
	tenDaysStep float32 = 10 * 86400 / 60
)

func TestNewSamplerRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name     string
		mass     float32
		timeStep float32
		want     error
	}{
		{"zero mass", 0, tenDaysStep, ErrInvalidPrimaryMass},
		{"negative mass", -1, tenDaysStep, ErrInvalidPrimaryMass},
		{"nan mass", float32(math.NaN()), tenDaysStep, ErrInvalidPrimaryMass},
		{"zero step", sunMass, 0, ErrInvalidTimeStep},
		{"infinite step", sunMass, float32(math.Inf(1)), ErrInvalidTimeStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSampler(tt.mass, tt.timeStep, NewRand(1), false)
			assert.Nil(t, s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSamplerInvariants(t *testing.T) {
	s, err := NewSampler(sunMass, tenDaysStep, NewRand(42), false)
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		b := s.Sample()
		require.Equal(t, AsteroidMass, b.Mass)
		require.Equal(t, AsteroidRadius, b.Radius)
		require.Equal(t, float32(0), b.Position.Y)
		require.Greater(t, b.Position.Length(), float32(0))
		require.True(t, b.Acceleration.IsZero())

		speed := b.VelocityTerm.Scale(1 / tenDaysStep).Length()
		require.False(t, math.IsInf(float64(speed), 0) || math.IsNaN(float64(speed)), "sample %d speed %v", i, speed)
		require.Greater(t, speed, float32(0))
	}
}

func TestSamplerSpeedWithinCircularBand(t *testing.T) {
	s, err := NewSampler(sunMass, tenDaysStep, NewRand(3), false)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		b := s.Sample()
		r := float64(b.Position.Length())
		v := b.VelocityTerm.Scale(1 / tenDaysStep)
		horizontal := math.Hypot(float64(v.X), float64(v.Z))
		circular := math.Sqrt(float64(G) * float64(sunMass) / r)

		assert.GreaterOrEqual(t, horizontal/circular, 0.6-1e-4)
		assert.LessOrEqual(t, horizontal/circular, 1.2+1e-4)
		assert.LessOrEqual(t, math.Abs(float64(v.Y)), 100.0+1e-3)
	}
}

func TestSamplerAlignedMode(t *testing.T) {
	s, err := NewSampler(sunMass, tenDaysStep, NewRand(7), true)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		b := s.Sample()
		assert.Equal(t, float32(0), b.Position.Z)
		assert.Greater(t, b.Position.X, float32(0))
		// tangential velocity points along +z
		assert.Greater(t, b.VelocityTerm.Z, float32(0))
	}
}

func TestSamplerIsDeterministicPerSeed(t *testing.T) {
	a, err := NewSampler(sunMass, tenDaysStep, NewRand(99), false)
	require.NoError(t, err)
	b, err := NewSampler(sunMass, tenDaysStep, NewRand(99), false)
	require.NoError(t, err)
	c, err := NewSampler(sunMass, tenDaysStep, NewRand(100), false)
	require.NoError(t, err)

	differs := false
	for i := 0; i < 100; i++ {
		sa, sb, sc := a.Sample(), b.Sample(), c.Sample()
		require.Equal(t, sa, sb)
		if sa.Position != sc.Position {
			differs = true
		}
	}
	assert.True(t, differs, "different seeds produced identical asteroids")
}

func TestAlignedModeConsumesSameRandomStream(t *testing.T) {
	free, _ := NewSampler(sunMass, tenDaysStep, NewRand(5), false)
	aligned, _ := NewSampler(sunMass, tenDaysStep, NewRand(5), true)

	for i := 0; i < 50; i++ {
		f, a := free.Sample(), aligned.Sample()
		// same radius and vertical speed, only the angle differs
		assert.InDelta(t, f.Position.Length(), a.Position.Length(), float64(f.Position.Length())*1e-6)
		assert.Equal(t, f.VelocityTerm.Y, a.VelocityTerm.Y)
	}
}

func TestSampleRadiusStaysSinglePrecision(t *testing.T) {
	const seed = 3
	x := NewRand(seed).Float32()
	require.NotZero(t, x)

	s, err := NewSampler(sunMass, tenDaysStep, NewRand(seed), true)
	require.NoError(t, err)
	b := s.Sample()

	want := AsteroidMeanRadius * sqrtf(absf(logf(x)-logf(1-x)+1))
	// aligned asteroids sit on the positive x axis, so X is the radius
	assert.Equal(t, want, b.Position.X)

	assert.Equal(t, float32(0), logf(1))
	assert.Equal(t, float32(2), sqrtf(4))
	assert.Equal(t, float32(1.5), absf(-1.5))
}
