// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"gonum.org/v1/gonum/mat"
)

// Ender determines when an episode should end. If End() returns true,
// it also adjusts the argument TimeStep so that it is the last step in
// the episode with the appropriate ending type.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Environment implements a simulated environment.
//
// The first TimeStep of each episode is returned by Reset(). Each call
// to Step() returns the next TimeStep and whether or not that TimeStep
// is the last in the episode. Whether the episode was terminated or
// truncated is reported by the TimeStep's EndType.
type Environment interface {
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec

	// Close performs resource cleanup after the environment is no
	// longer needed
	Close() error
}

// Seeder is an environment whose randomness can be reseeded
type Seeder interface {
	Seed(seed uint64)
}
