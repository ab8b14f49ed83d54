package highway

import (
	"math"

	"github.com/samuelfneumann/highwayrl/environment"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"github.com/samuelfneumann/highwayrl/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Cruise implements the native task of the highway: drive fast, keep
// right, and avoid collisions.
//
// The reward on each step is
//
//	collision * crashed + rightLane * lane/(lanes-1) + highSpeed * speed
//
// where speed is the ego speed mapped from the reward speed range to
// [0, 1] and clipped. If the reward is normalized, it is mapped from
// [collision, rightLane + highSpeed] to [0, 1].
//
// Episodes terminate when the ego vehicle crashes and are truncated
// after Duration steps.
type Cruise struct {
	stepEnder  *environment.StepLimit
	speedRange r1.Interval
	collision  float64
	rightLane  float64
	highSpeed  float64
	normalize  bool
}

// NewCruise returns the native task described by c
func NewCruise(c Config) *Cruise {
	return &Cruise{
		stepEnder:  environment.NewStepLimit(c.Duration),
		speedRange: c.SpeedRange(),
		collision:  c.CollisionReward,
		rightLane:  c.RightLaneReward,
		highSpeed:  c.HighSpeedReward,
		normalize:  c.NormalizeReward,
	}
}

// GetReward returns the reward for the ego vehicle on a road with the
// given number of lanes
func (c *Cruise) GetReward(ego *Vehicle, lanes int) float64 {
	scaled := floatutils.Lmap(ego.speed, c.speedRange,
		r1.Interval{Min: 0, Max: 1})
	right := float64(ego.Lane()) / math.Max(float64(lanes-1), 1)

	reward := c.collision*floatutils.Indicator(ego.crashed) +
		c.rightLane*floatutils.Clip(right, 0, 1) +
		c.highSpeed*floatutils.Clip(scaled, 0, 1)

	if c.normalize {
		reward = floatutils.Lmap(reward, c.bounds(),
			r1.Interval{Min: 0, Max: 1})
	}
	return reward
}

// bounds returns the interval that normalized rewards are mapped from
func (c *Cruise) bounds() r1.Interval {
	return r1.Interval{Min: c.collision, Max: c.highSpeed + c.rightLane}
}

// Min returns the minimum attainable reward over all timesteps
func (c *Cruise) Min() float64 {
	if c.normalize {
		return 0.0
	}
	return math.Min(c.collision, 0) + math.Min(c.rightLane, 0) +
		math.Min(c.highSpeed, 0)
}

// Max returns the maximum attainable reward over all timesteps
func (c *Cruise) Max() float64 {
	if c.normalize {
		return 1.0
	}
	return math.Max(c.collision, 0) + math.Max(c.rightLane, 0) +
		math.Max(c.highSpeed, 0)
}

// RewardSpec returns the reward specification of the Task
func (c *Cruise) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{c.Min()})
	upperBound := mat.NewVecDense(1, []float64{c.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// End determines if a timestep is the last timestep in the episode,
// adjusting its StepType and EndType if so. Crashes terminate the
// episode and reaching the step limit truncates it.
func (c *Cruise) End(t *ts.TimeStep, crashed bool) bool {
	if crashed {
		t.SetEnd(ts.TerminalStateReached)
		return true
	}
	return c.stepEnder.End(t)
}

// Steps returns the maximum number of steps in an episode
func (c *Cruise) Steps() int {
	return c.stepEnder.Steps()
}
