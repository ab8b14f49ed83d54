// Package experiment implements functionality for running an experiment
package experiment

import (
	"github.com/samuelfneumann/highwayrl/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each environment TimeStep to Trackers, which cache
// the data they need to be later saved to disk by Save(). Run() runs
// all episodes until the maximum timestep limit is reached and
// RunEpisode() runs a single episode.
type Experiment interface {
	Run() error

	// RunEpisode returns whether the step limit of the experiment has
	// been reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save()

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}
