package ephemerides

import (
	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

// Initial states for 2022-01-01 00:00 UTC, y axis up. Planets are placed on
// their mean circular orbits.

func sun() Record {
	return Record{
		Name:   "Sun",
		Mass:   1.9885e30,
		Radius: 6.957e8,
		Color:  mustHex("#fdb813"),
	}
}

func planets() []Record {
	return []Record{
		{Name: "Mercury", Mass: 3.3011e23, Radius: 2.4397e6, Color: mustHex("#c7c1b9"),
			Position: astromath.Vector3{X: 5.33377e10, Y: 2.74825e9, Z: 2.23827e10},
			Velocity: astromath.Vector3{X: -18642.7, Y: 5373.73, Z: 43765.5}},
		{Name: "Venus", Mass: 4.8675e24, Radius: 6.0518e6, Color: mustHex("#e6c27a"),
			Position: astromath.Vector3{X: -5.46294e10, Y: 5.52341e9, Z: 9.32444e10},
			Velocity: astromath.Vector3{X: -30230.7, Y: -1045.48, Z: -17649.4}},
		{Name: "Earth", Mass: 5.9724e24, Radius: 6.371e6, Color: mustHex("#3a7bd5"),
			Position: astromath.Vector3{X: -2.66656e10, Y: 0, Z: 1.47204e11},
			Velocity: astromath.Vector3{X: -29308.2, Y: 0, Z: -5309.09}},
		{Name: "Mars", Mass: 6.4171e23, Radius: 3.3895e6, Color: mustHex("#c1440e"),
			Position: astromath.Vector3{X: 2.11409e11, Y: -2.7512e9, Z: -8.5177e10},
			Velocity: astromath.Vector3{X: 9021.6, Y: 722.492, Z: 22368.3}},
		{Name: "Jupiter", Mass: 1.8982e27, Radius: 6.9911e7, Color: mustHex("#d8ca9d"),
			Position: astromath.Vector3{X: 5.85333e11, Y: 1.16472e10, Z: 5.13245e11},
			Velocity: astromath.Vector3{X: -8609.06, Y: 222.693, Z: 9813.2}},
		{Name: "Saturn", Mass: 5.6834e26, Radius: 5.8232e7, Color: mustHex("#e3c16f"),
			Position: astromath.Vector3{X: -5.74546e11, Y: -5.70574e10, Z: -1.31208e12},
			Velocity: astromath.Vector3{X: 8815.38, Y: -167.546, Z: -3852.86}},
		{Name: "Uranus", Mass: 8.681e25, Radius: 2.5362e7, Color: mustHex("#9fe3e6"),
			Position: astromath.Vector3{X: 1.67088e12, Y: 3.13998e10, Z: 2.33633e12},
			Velocity: astromath.Vector3{X: -5529.02, Y: 53.1346, Z: 3953.51}},
		{Name: "Neptune", Mass: 1.0241e26, Radius: 2.4622e7, Color: mustHex("#5b5ddf"),
			Position: astromath.Vector3{X: 3.34007e12, Y: -9.29186e10, Z: -3.00686e12},
			Velocity: astromath.Vector3{X: 3636.45, Y: 124.708, Z: 4035.57}},
	}
}

// SolarSystem returns the Sun and the eight planets, with no companion stars
func SolarSystem() Catalog {
	return Catalog{
		Name:    "solar",
		Planets: append([]Record{sun()}, planets()...),
	}
}

// AlphaCentauri returns the solar system plus the three Alpha Centauri stars.
//
// The stars are moved in to roughly 35 AU. |d|³ overflows float32 beyond
// ~7e12 m, so at their real distance they would exert no force at all.
func AlphaCentauri() Catalog {
	c := SolarSystem()
	c.Name = "alpha-centauri"
	c.Stars = []Record{
		{Name: "Alpha Centauri A", Mass: 2.1447e30, Radius: 8.5145e8, Color: mustHex("#fff4e8"),
			Position: astromath.Vector3{X: 4.84058e12, Y: 2.5e11, Z: -2.6e12},
			Velocity: astromath.Vector3{X: 0, Y: 0, Z: 6281.94}},
		{Name: "Alpha Centauri B", Mass: 1.8091e30, Radius: 6.0239e8, Color: mustHex("#ffd2a1"),
			Position: astromath.Vector3{X: 3.44058e12, Y: 2.5e11, Z: -2.6e12},
			Velocity: astromath.Vector3{X: 0, Y: 0, Z: -7447.29}},
		{Name: "Proxima Centauri", Mass: 2.4285e29, Radius: 1.0745e8, Color: mustHex("#ff6f4a"),
			Position: astromath.Vector3{X: 5.1e12, Y: 1.5e11, Z: -1.1e12},
			Velocity: astromath.Vector3{X: -10523.4, Y: 0, Z: 6314.04}},
	}
	return c
}
