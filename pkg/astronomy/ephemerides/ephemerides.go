// Package ephemerides holds the initial physical state of known bodies.
//
// A Catalog is plain data handed to the simulation at construction time. The
// built-in catalogs are returned by value from functions so no caller can
// mutate a shared table.
package ephemerides

import (
	"fmt"
	"math"
	"os"

	errorsmod "cosmossdk.io/errors"
	"github.com/lucasb-eyer/go-colorful"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// MaxStars is the largest companion-star block a catalog may carry
const MaxStars = 3

const codespace = "ephemerides"

// ErrInvalidCatalog is returned for catalogs the simulation cannot be built from
var ErrInvalidCatalog = errorsmod.Register(codespace, 2, "invalid catalog")

// Record is the initial state of one body
type Record struct {
	Name     string
	Mass     float32 // [kg]
	Radius   float32 // [m]
	Color    colorful.Color
	Position astromath.Vector3 // [m]
	Velocity astromath.Vector3 // [m/s]
}

// Catalog is an ordered set of records. Stars always precede planets in the
// simulation's body layout.
type Catalog struct {
	Name    string
	Stars   []Record
	Planets []Record
}

// Len returns the total number of records
func (c Catalog) Len() int {
	return len(c.Stars) + len(c.Planets)
}

// Records returns stars followed by planets in a fresh slice
func (c Catalog) Records() []Record {
	out := make([]Record, 0, c.Len())
	out = append(out, c.Stars...)
	return append(out, c.Planets...)
}

// Primary returns the body asteroids are placed around: the most
// massive planetary body, or the most massive star if there are none.
func (c Catalog) Primary() (Record, bool) {
	pick := func(rs []Record) (Record, bool) {
		if len(rs) == 0 {
			return Record{}, false
		}
		best := rs[0]
		for _, r := range rs[1:] {
			if r.Mass > best.Mass {
				best = r
			}
		}
		return best, true
	}
	if r, ok := pick(c.Planets); ok {
		return r, true
	}
	return pick(c.Stars)
}

// Validate checks the invariants the simulation relies on
func (c Catalog) Validate() error {
	if len(c.Stars) > MaxStars {
		return errorsmod.Wrapf(ErrInvalidCatalog, "%d stars, at most %d allowed", len(c.Stars), MaxStars)
	}
	for i, r := range c.Records() {
		if !(r.Mass > 0) || math.IsInf(float64(r.Mass), 0) {
			return errorsmod.Wrapf(ErrInvalidCatalog, "record %d (%s): mass must be positive, got %g", i, r.Name, r.Mass)
		}
		if !(r.Radius > 0) || math.IsInf(float64(r.Radius), 0) {
			return errorsmod.Wrapf(ErrInvalidCatalog, "record %d (%s): radius must be positive, got %g", i, r.Name, r.Radius)
		}
		if !r.Position.IsFinite() || !r.Velocity.IsFinite() {
			return errorsmod.Wrapf(ErrInvalidCatalog, "record %d (%s): non-finite position or velocity", i, r.Name)
		}
	}
	return nil
}

// Resolve maps a catalog name to a built-in catalog, or loads it from a file
func Resolve(name string) (Catalog, error) {
	switch name {
	case "", "solar", "solar-system":
		return SolarSystem(), nil
	case "alpha-centauri":
		return AlphaCentauri(), nil
	}
	if _, err := os.Stat(name); err != nil {
		return Catalog{}, fmt.Errorf("unknown catalog %q: %w", name, err)
	}
	return Load(name)
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
