package ephemerides

import (
	"fmt"
	"os"

	errorsmod "cosmossdk.io/errors"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// catalogFile is the on-disk YAML layout
type catalogFile struct {
	Name    string       `yaml:"name"`
	Stars   []recordFile `yaml:"stars,omitempty"`
	Planets []recordFile `yaml:"planets"`
}

type recordFile struct {
	Name     string     `yaml:"name"`
	Mass     float32    `yaml:"mass"`
	Radius   float32    `yaml:"radius"`
	Color    string     `yaml:"color"`
	Position [3]float32 `yaml:"position,flow"`
	Velocity [3]float32 `yaml:"velocity,flow"`
}

// Load reads a YAML catalog from disk and validates it
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and validates it
func Parse(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Catalog{}, errorsmod.Wrapf(ErrInvalidCatalog, "yaml: %v", err)
	}

	c := Catalog{Name: f.Name}
	var err error
	if c.Stars, err = decodeRecords(f.Stars); err != nil {
		return Catalog{}, err
	}
	if c.Planets, err = decodeRecords(f.Planets); err != nil {
		return Catalog{}, err
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Marshal encodes a catalog in the same layout Load reads
func Marshal(c Catalog) ([]byte, error) {
	f := catalogFile{
		Name:    c.Name,
		Stars:   encodeRecords(c.Stars),
		Planets: encodeRecords(c.Planets),
	}
	return yaml.Marshal(f)
}

func decodeRecords(in []recordFile) ([]Record, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		col := colorful.Color{R: 1, G: 1, B: 1}
		if r.Color != "" {
			c, err := colorful.Hex(r.Color)
			if err != nil {
				return nil, errorsmod.Wrapf(ErrInvalidCatalog, "record %s: color %q: %v", r.Name, r.Color, err)
			}
			col = c
		}
		out[i] = Record{
			Name:     r.Name,
			Mass:     r.Mass,
			Radius:   r.Radius,
			Color:    col,
			Position: astromath.Vector3{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
			Velocity: astromath.Vector3{X: r.Velocity[0], Y: r.Velocity[1], Z: r.Velocity[2]},
		}
	}
	return out, nil
}

func encodeRecords(in []Record) []recordFile {
	if len(in) == 0 {
		return nil
	}
	out := make([]recordFile, len(in))
	for i, r := range in {
		out[i] = recordFile{
			Name:     r.Name,
			Mass:     r.Mass,
			Radius:   r.Radius,
			Color:    r.Color.Hex(),
			Position: [3]float32{r.Position.X, r.Position.Y, r.Position.Z},
			Velocity: [3]float32{r.Velocity.X, r.Velocity.Y, r.Velocity.Z},
		}
	}
	return out
}
