package nbody

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// ForcePolicy selects which bodies exert gravity during a step
type ForcePolicy int

const (
	// Full sums every pair, O(n²)
	Full ForcePolicy = iota
	// PlanetDominant sums only the planetary block onto every body
	PlanetDominant
	// StarDominant sums only the star block onto every body. With no stars
	// the first planetary body (the sun) stands in.
	StarDominant
)

func (p ForcePolicy) String() string {
	switch p {
	case Full:
		return "full"
	case PlanetDominant:
		return "planet"
	case StarDominant:
		return "star"
	}
	return fmt.Sprintf("ForcePolicy(%d)", int(p))
}

func (p ForcePolicy) valid() bool {
	return p >= Full && p <= StarDominant
}

// ParseForcePolicy accepts full, planet or star
func ParseForcePolicy(s string) (ForcePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "pairwise":
		return Full, nil
	case "planet", "planet-dominant":
		return PlanetDominant, nil
	case "star", "star-dominant":
		return StarDominant, nil
	}
	return 0, errorsmod.Wrapf(ErrInvalidPolicy, "unknown force policy %q", s)
}

// AttractorRange is the half-open index range of bodies whose gravity is
// summed onto every other body
type AttractorRange struct {
	Start, End int
}

// Len returns the number of attractors
func (r AttractorRange) Len() int {
	return r.End - r.Start
}

// Contains reports whether body i is an attractor
func (r AttractorRange) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// AccumulatorMode decides what happens to the acceleration accumulator
// between steps
type AccumulatorMode int

const (
	// AccumulateCarry keeps a running sum for the whole run. With the
	// velocity term held constant the position update
	// p += v0·dt + Σa·dt² is symplectic Euler with the velocity never
	// materialized.
	AccumulateCarry AccumulatorMode = iota
	// AccumulateReset folds each step's a·dt² into the velocity term and
	// zeroes the accumulator. Same recurrence, different rounding: the
	// velocity term drifts instead of the accumulator growing.
	AccumulateReset
)

func (m AccumulatorMode) String() string {
	switch m {
	case AccumulateCarry:
		return "carry"
	case AccumulateReset:
		return "reset"
	}
	return fmt.Sprintf("AccumulatorMode(%d)", int(m))
}

// ParseAccumulatorMode accepts carry or reset
func ParseAccumulatorMode(s string) (AccumulatorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carry", "":
		return AccumulateCarry, nil
	case "reset":
		return AccumulateReset, nil
	}
	return 0, errorsmod.Wrapf(ErrInvalidPolicy, "unknown accumulator mode %q", s)
}

// DegeneratePolicy decides how coincident bodies (|d|³ == 0) are handled
type DegeneratePolicy int

const (
	// DegeneratePropagate divides anyway; Inf/NaN enters the state
	DegeneratePropagate DegeneratePolicy = iota
	// DegenerateClamp raises separations below the minimum to the minimum.
	// Exactly coincident pairs have no direction and are skipped.
	DegenerateClamp
	// DegenerateFail aborts the step with ErrDegenerateConfiguration
	DegenerateFail
)

func (d DegeneratePolicy) String() string {
	switch d {
	case DegeneratePropagate:
		return "propagate"
	case DegenerateClamp:
		return "clamp"
	case DegenerateFail:
		return "fail"
	}
	return fmt.Sprintf("DegeneratePolicy(%d)", int(d))
}

// ParseDegeneratePolicy accepts propagate, clamp or fail
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "propagate", "":
		return DegeneratePropagate, nil
	case "clamp":
		return DegenerateClamp, nil
	case "fail", "error":
		return DegenerateFail, nil
	}
	return 0, errorsmod.Wrapf(ErrInvalidPolicy, "unknown degenerate policy %q", s)
}
