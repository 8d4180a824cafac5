package nbody

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/dgravesa/go-parallel/parallel"

	astromath "github.com/oxygene76/orbitalsim/pkg/astronomy/math"
)

type pairStatus int

const (
	pairOK pairStatus = iota
	pairSkip
	pairFault
)

// Step advances the simulation by exactly one time step.
//
// Accumulation runs to completion for every body before any position moves.
func (s *Simulation) Step() error {
	if s.bodies == nil {
		return ErrReleased
	}

	if s.degenerate == DegenerateFail {
		for i := range s.bodies {
			s.scratch[i] = s.bodies[i].Acceleration
			s.faults[i] = -1
		}
	}

	if s.policy == Full {
		s.accumulatePairs()
	} else {
		s.accumulateRange()
	}

	if s.degenerate == DegenerateFail {
		if err := s.checkFaults(); err != nil {
			return err
		}
	}

	s.advance()
	s.elapsed += float64(s.timeStep)
	s.steps++
	return nil
}

// separation returns diff·G and |diff|³ for the pair (i, j). G is applied
// before anything is divided by |diff|³: at 1e12 m |diff|³ is ~1e36 and
// only a few orders of magnitude from the float32 ceiling.
func (s *Simulation) separation(i, j int) (astromath.Vector3, float32, pairStatus) {
	diff := s.bodies[i].Position.Sub(s.bodies[j].Position)
	dist := diff.Length()
	dist3 := dist * dist * dist

	switch s.degenerate {
	case DegenerateClamp:
		if dist < s.minSeparation {
			if diff.IsZero() {
				return astromath.Vector3{}, 0, pairSkip
			}
			dist3 = s.minSeparation * s.minSeparation * s.minSeparation
		}
	case DegenerateFail:
		if dist3 == 0 {
			return astromath.Vector3{}, 0, pairFault
		}
	}

	return diff.Scale(G), dist3, pairOK
}

// accumulatePairs applies every pair once, with the reaction on j, so each
// separation is computed a single time.
func (s *Simulation) accumulatePairs() {
	n := len(s.bodies)
	heavy := s.stars + s.planets

	for i := 0; i < n; i++ {
		if s.skipAsteroidPairs && i >= heavy {
			// every remaining pair is asteroid-asteroid
			break
		}
		bi := &s.bodies[i]
		for j := i + 1; j < n; j++ {
			term, dist3, status := s.separation(i, j)
			if status == pairSkip {
				continue
			}
			if status == pairFault {
				s.markFault(i, j)
				continue
			}
			bj := &s.bodies[j]
			bi.Acceleration = bi.Acceleration.Sub(term.Scale(bj.Mass / dist3))
			bj.Acceleration = bj.Acceleration.Add(term.Scale(bi.Mass / dist3))
		}
	}
}

// accumulateRange sums the attractor range onto every body. Bodies are
// independent here, so the sweep may be split across goroutines.
func (s *Simulation) accumulateRange() {
	n := len(s.bodies)
	if s.workers > 1 && n > 1 {
		parallel.WithNumGoroutines(s.workers).For(n, func(i, _ int) {
			s.accumulateBody(i)
		})
		return
	}
	for i := 0; i < n; i++ {
		s.accumulateBody(i)
	}
}

func (s *Simulation) accumulateBody(i int) {
	acc := s.bodies[i].Acceleration
	for j := s.attractors.Start; j < s.attractors.End; j++ {
		if j == i {
			continue
		}
		term, dist3, status := s.separation(i, j)
		if status == pairSkip {
			continue
		}
		if status == pairFault {
			s.markFault(i, j)
			continue
		}
		acc = acc.Sub(term.Scale(s.bodies[j].Mass / dist3))
	}
	s.bodies[i].Acceleration = acc
}

// markFault records the first coincident partner of body i. Only index i is
// written, so concurrent sweeps never race on it.
func (s *Simulation) markFault(i, j int) {
	if s.faults[i] < 0 {
		s.faults[i] = int32(j)
	}
}

// checkFaults rolls back the accumulators and reports the lowest faulted pair
func (s *Simulation) checkFaults() error {
	for i, j := range s.faults {
		if j < 0 {
			continue
		}
		for k := range s.bodies {
			s.bodies[k].Acceleration = s.scratch[k]
		}
		s.logger.Warn("coincident bodies", "i", i, "j", j, "step", s.steps)
		return errorsmod.Wrapf(ErrDegenerateConfiguration,
			"bodies %d (%s) and %d (%s) coincide at step %d",
			i, s.bodies[i].Name, j, s.bodies[j].Name, s.steps)
	}
	return nil
}

// advance moves every body by velocityTerm + acc·dt²
func (s *Simulation) advance() {
	n := len(s.bodies)
	if s.workers > 1 && n > 1 {
		parallel.WithNumGoroutines(s.workers).For(n, func(i, _ int) {
			s.advanceBody(i)
		})
		return
	}
	for i := 0; i < n; i++ {
		s.advanceBody(i)
	}
}

func (s *Simulation) advanceBody(i int) {
	b := &s.bodies[i]
	switch s.mode {
	case AccumulateReset:
		b.VelocityTerm = b.VelocityTerm.Add(b.Acceleration.Scale(s.dt2))
		b.Position = b.Position.Add(b.VelocityTerm)
		b.Acceleration = astromath.Zero()
	default:
		b.Position = b.Position.Add(b.VelocityTerm.Add(b.Acceleration.Scale(s.dt2)))
	}
}
