// Package checkpointer implements periodic saving of agents during an
// experiment
package checkpointer

import (
	ts "github.com/samuelfneumann/highwayrl/timestep"
)

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
