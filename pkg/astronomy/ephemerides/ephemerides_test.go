package ephemerides

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolarSystemLayout(t *testing.T) {
	c := SolarSystem()
	require.NoError(t, c.Validate())
	assert.Empty(t, c.Stars)
	assert.Len(t, c.Planets, 9)
	assert.Equal(t, "Sun", c.Planets[0].Name)

	primary, ok := c.Primary()
	require.True(t, ok)
	assert.Equal(t, "Sun", primary.Name)
}

func TestAlphaCentauriStarsPrecedePlanets(t *testing.T) {
	c := AlphaCentauri()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Stars, 3)

	records := c.Records()
	assert.Equal(t, "Alpha Centauri A", records[0].Name)
	assert.Equal(t, "Sun", records[3].Name)

	// the sun stays the asteroid primary even though star A is heavier
	primary, _ := c.Primary()
	assert.Equal(t, "Sun", primary.Name)
}

func TestBuiltinsAreIndependentCopies(t *testing.T) {
	a := SolarSystem()
	a.Planets[0].Mass = 1

	b := SolarSystem()
	assert.NotEqual(t, float32(1), b.Planets[0].Mass)
}

func TestValidateRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{"zero mass", func(c *Catalog) { c.Planets[2].Mass = 0 }},
		{"negative radius", func(c *Catalog) { c.Planets[1].Radius = -1 }},
		{"too many stars", func(c *Catalog) {
			c.Stars = append(c.Stars, c.Planets[0], c.Planets[0], c.Planets[0], c.Planets[0])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := SolarSystem()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestMarshalLoadPreservesCatalog(t *testing.T) {
	orig := AlphaCentauri()
	data, err := Marshal(orig)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, orig.Name, loaded.Name)
	require.Len(t, loaded.Stars, len(orig.Stars))
	require.Len(t, loaded.Planets, len(orig.Planets))
	for i, r := range orig.Planets {
		assert.Equal(t, r.Name, loaded.Planets[i].Name)
		assert.Equal(t, r.Mass, loaded.Planets[i].Mass)
		assert.Equal(t, r.Position, loaded.Planets[i].Position)
		assert.Equal(t, r.Color.Hex(), loaded.Planets[i].Color.Hex())
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
planets:
  - name: Sun
    mass: 2e30
    radius: 7e8
    color: "not-a-color"
    position: [0, 0, 0]
    velocity: [0, 0, 0]
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestResolveUnknownName(t *testing.T) {
	_, err := Resolve("no-such-catalog")
	assert.Error(t, err)
}
