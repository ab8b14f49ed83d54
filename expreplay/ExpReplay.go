// Package expreplay implements experience replay buffers of
// transitions with discrete, one-dimensional actions
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/timestep"
)

// Config implements a specific configuration of an ExperienceReplayer.
// The zero Config describes no replay: learners update online from the
// most recent transition only.
type Config struct {
	// Capacity is the maximum number of transitions held. The oldest
	// transition is removed first once the buffer is full.
	Capacity int `yaml:"buffer_size" toml:"buffer_size"`

	// LearningStarts is the number of transitions needed in the buffer
	// before it can be sampled
	LearningStarts int `yaml:"learning_starts" toml:"learning_starts"`

	BatchSize int `yaml:"batch_size" toml:"batch_size"`
}

// Enabled returns whether the Config describes a replay buffer
func (c Config) Enabled() bool {
	return c.Capacity > 0
}

// Validate checks that the Config describes a legal buffer
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive \n\thave(%v)",
			c.BatchSize)
	}
	if c.Capacity < c.BatchSize {
		return fmt.Errorf("cannot have batch size(%v) > max buffer "+
			"capacity (%v)", c.BatchSize, c.Capacity)
	}
	if c.LearningStarts < 1 || c.LearningStarts > c.Capacity {
		return fmt.Errorf("learning starts must be in [1, %v] "+
			"\n\thave(%v)", c.Capacity, c.LearningStarts)
	}
	return nil
}

// Create creates and returns the ExperienceReplayer with the specified
// Config
func (c Config) Create(featureSize int, seed uint64) (ExperienceReplayer,
	error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("create: replay is disabled")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	return New(NewUniformSelector(c.BatchSize, seed), c.LearningStarts,
		c.Capacity, featureSize)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample samples a batch of experience from the buffer and returns
	// the batch of (S, A, R, γ, S') tuples as flattened []float64.
	// States are stored row-wise, one row per transition.
	Sample() (states, actions, rewards, discounts, nextStates []float64,
		err error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int

	// FeatureSize returns the length of the states held
	FeatureSize() int
}
