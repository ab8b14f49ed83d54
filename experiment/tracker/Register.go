package tracker

import (
	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/timestep"
)

// registeredTracker registers an Environment with some Tracker so
// that the Tracker tracks data from the registered Environment only.
// registeredTracker itself is a Tracker.
//
// This is used when an experiment runs on an Environment wrapper but
// data from the wrapped Environment should be tracked. For example,
// registering the highway with a Return Tracker while training on a
// reward shaping wrapper tracks the native return instead of the
// shaped return.
type registeredTracker struct {
	Tracker
	env environment.Environment
}

// Register registers a new Tracker with an Environment, to track data
// from the registered Environment only.
//
// Note: the underlying concrete type of the registered Tracker is
// lost when registering an Environment with a Tracker.
func Register(t Tracker, env environment.Environment) Tracker {
	return &registeredTracker{t, env}
}

// Track calls Track() on the embedded Tracker using the most recent
// TimeStep from the registered Environment. The argument is ignored.
func (r *registeredTracker) Track(timestep.TimeStep) {
	r.Tracker.Track(r.env.CurrentTimeStep())
}
