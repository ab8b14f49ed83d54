package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/reward"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Viewer is an environment that exposes a view of its world after each
// Reset() and Step()
type Viewer interface {
	environment.Environment

	// WorldView returns a Snapshot of the ego vehicle and the road
	WorldView() reward.Snapshot

	// Info returns diagnostic information about the latest step
	Info() reward.Info
}

// RewardShaping wraps a Viewer and replaces its rewards with the native
// reward plus the shaped reward computed by reward.Compose. Observations,
// discounts, step types, and end types are passed through unchanged.
//
// RewardShaping tracks the ego lane between steps so that lane changes
// can be penalized. The tracker is re-initialized on each call to
// Reset().
//
// RewardShaping itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type RewardShaping struct {
	Viewer
	config  reward.Config
	tracker reward.LaneTracker

	currentTimeStep ts.TimeStep
	lastResult      reward.Result
	logger          log.FieldLogger
}

// NewRewardShaping returns a new RewardShaping environment wrapper and
// the first step of its first episode
func NewRewardShaping(env Viewer, c reward.Config) (*RewardShaping,
	ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRewardShaping: %v", err)
	}

	r := &RewardShaping{Viewer: env, config: c}
	step, err := r.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRewardShaping: %v", err)
	}
	return r, step, nil
}

// SetLogger sets a logger that records every degraded reward term as a
// warning. A nil logger disables logging, which is the default.
func (r *RewardShaping) SetLogger(l log.FieldLogger) {
	r.logger = l
}

// Reset resets the embedded environment and the lane tracker
func (r *RewardShaping) Reset() (ts.TimeStep, error) {
	step, err := r.Viewer.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}

	r.tracker = reward.TrackerFor(r.WorldView())
	r.lastResult = reward.Result{}
	r.currentTimeStep = step

	return step, nil
}

// Step takes one environmental step given some action and returns the
// next timestep with its reward replaced by the combined reward
func (r *RewardShaping) Step(action *mat.VecDense) (ts.TimeStep, bool,
	error) {
	step, last, err := r.Viewer.Step(action)
	if err != nil {
		return ts.TimeStep{}, true, err
	}

	var result reward.Result
	result, r.tracker = reward.Compose(r.config, r.WorldView(), step.Reward,
		r.Info(), r.tracker)
	r.logDegraded(step.Number, result)

	step.Reward = result.Total
	r.lastResult = result
	r.currentTimeStep = step

	return step, last, nil
}

// logDegraded records the degraded terms of a step if a logger is set
func (r *RewardShaping) logDegraded(n int, result reward.Result) {
	if r.logger == nil {
		return
	}
	for _, t := range reward.Terms {
		if err, ok := result.Degraded[t]; ok {
			r.logger.WithFields(log.Fields{
				"step":    n,
				"term":    t,
				"neutral": reward.NeutralValue(t),
			}).WithError(err).Warn("reward term degraded")
		}
	}
}

// LastResult returns the breakdown of the reward of the last step. It
// is the zero Result after Reset().
func (r *RewardShaping) LastResult() reward.Result {
	return r.lastResult
}

// Config returns the reward shaping configuration
func (r *RewardShaping) Config() reward.Config {
	return r.config
}

// Tracker returns the lane tracker that the next step will be composed
// with
func (r *RewardShaping) Tracker() reward.LaneTracker {
	return r.tracker
}

// CurrentTimeStep returns the current time step in the environment
func (r *RewardShaping) CurrentTimeStep() ts.TimeStep {
	return r.currentTimeStep
}

// Seed reseeds the embedded environment if it can be seeded
func (r *RewardShaping) Seed(seed uint64) {
	if s, ok := r.Viewer.(environment.Seeder); ok {
		s.Seed(seed)
	}
}

// RewardSpec returns the reward specification for the environment.
// Shaped rewards are unbounded in general, so no bounds are given.
func (r *RewardShaping) RewardSpec() environment.Spec {
	rewardSpec := r.Viewer.RewardSpec()
	rewardSpec.LowerBound = nil
	rewardSpec.UpperBound = nil
	return rewardSpec
}

func (r *RewardShaping) String() string {
	return fmt.Sprintf("Reward Shaping: %v  |  %v", r.config, r.Viewer)
}
