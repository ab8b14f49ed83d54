package highway

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// Observation features that can be configured
const (
	Presence string = "presence"
	X        string = "x"
	Y        string = "y"
	VX       string = "vx"
	VY       string = "vy"
	CosH     string = "cos_h"
	SinH     string = "sin_h"
)

// ObservationConfig configures the kinematics observation. Each
// observation is a flattened VehiclesCount x len(Features) matrix. The
// first row describes the ego vehicle and the remaining rows describe
// the closest other vehicles, nearest first. Missing rows are zero.
type ObservationConfig struct {
	VehiclesCount int                  `yaml:"vehicles_count" toml:"vehicles_count"`
	Features      []string             `yaml:"features" toml:"features"`
	FeaturesRange map[string][]float64 `yaml:"features_range" toml:"features_range"`

	// Absolute reports other vehicles in absolute coordinates if true and
	// relative to the ego vehicle if false
	Absolute bool `yaml:"absolute" toml:"absolute"`

	// SeeBehind includes vehicles behind the ego vehicle if true
	SeeBehind bool `yaml:"see_behind" toml:"see_behind"`
}

// Config configures the highway and its native reward
type Config struct {
	LanesCount      int     `yaml:"lanes_count" toml:"lanes_count"`
	VehiclesCount   int     `yaml:"vehicles_count" toml:"vehicles_count"`
	Duration        int     `yaml:"duration" toml:"duration"`               // Policy steps per episode
	InitialLaneID   int     `yaml:"initial_lane_id" toml:"initial_lane_id"` // -1 for a random lane
	EgoSpacing      float64 `yaml:"ego_spacing" toml:"ego_spacing"`
	VehiclesDensity float64 `yaml:"vehicles_density" toml:"vehicles_density"`

	SimulationFrequency int       `yaml:"simulation_frequency" toml:"simulation_frequency"` // Hz
	PolicyFrequency     int       `yaml:"policy_frequency" toml:"policy_frequency"`         // Hz
	TargetSpeeds        []float64 `yaml:"target_speeds" toml:"target_speeds"`

	// Native reward
	RewardSpeedRange []float64 `yaml:"reward_speed_range" toml:"reward_speed_range"`
	CollisionReward  float64   `yaml:"collision_reward" toml:"collision_reward"`
	RightLaneReward  float64   `yaml:"right_lane_reward" toml:"right_lane_reward"`
	HighSpeedReward  float64   `yaml:"high_speed_reward" toml:"high_speed_reward"`
	NormalizeReward  bool      `yaml:"normalize_reward" toml:"normalize_reward"`

	Observation ObservationConfig `yaml:"observation" toml:"observation"`
}

// DefaultConfig returns the default highway configuration: four lanes,
// thirty other vehicles, and forty policy steps per episode.
func DefaultConfig() Config {
	return Config{
		LanesCount:          4,
		VehiclesCount:       30,
		Duration:            40,
		InitialLaneID:       -1,
		EgoSpacing:          2,
		VehiclesDensity:     1,
		SimulationFrequency: 5,
		PolicyFrequency:     1,
		TargetSpeeds:        []float64{20, 25, 30},
		RewardSpeedRange:    []float64{20, 30},
		CollisionReward:     -1,
		RightLaneReward:     0.1,
		HighSpeedReward:     0.4,
		NormalizeReward:     true,
		Observation: ObservationConfig{
			VehiclesCount: 15,
			Features:      []string{Presence, X, Y, VX, VY},
			FeaturesRange: map[string][]float64{
				X:  {-100, 100},
				Y:  {-100, 100},
				VX: {-30, 30},
				VY: {-30, 30},
			},
			Absolute:  false,
			SeeBehind: false,
		},
	}
}

// SpeedRange returns the reward speed range as an interval
func (c Config) SpeedRange() r1.Interval {
	if len(c.RewardSpeedRange) != 2 {
		return r1.Interval{}
	}
	return r1.Interval{Min: c.RewardSpeedRange[0], Max: c.RewardSpeedRange[1]}
}

// FeatureRange returns the range used to normalize a feature and whether
// one is configured
func (c ObservationConfig) FeatureRange(feature string) (r1.Interval, bool) {
	bounds, ok := c.FeaturesRange[feature]
	if !ok || len(bounds) != 2 {
		return r1.Interval{}, false
	}
	return r1.Interval{Min: bounds[0], Max: bounds[1]}, true
}

// Validate checks that a Config describes a legal highway
func (c Config) Validate() error {
	if c.LanesCount < 1 {
		return fmt.Errorf("validate: at least one lane is needed "+
			"\n\twant(>0) \n\thave(%v)", c.LanesCount)
	}
	if c.VehiclesCount < 0 {
		return fmt.Errorf("validate: vehicles count must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.VehiclesCount)
	}
	if c.Duration < 1 {
		return fmt.Errorf("validate: duration must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.Duration)
	}
	if c.InitialLaneID >= c.LanesCount {
		return fmt.Errorf("validate: initial lane %v does not exist on a "+
			"%v lane highway", c.InitialLaneID, c.LanesCount)
	}
	if c.SimulationFrequency < 1 || c.PolicyFrequency < 1 {
		return fmt.Errorf("validate: frequencies must be positive "+
			"\n\thave(simulation=%v, policy=%v)", c.SimulationFrequency,
			c.PolicyFrequency)
	}
	if c.SimulationFrequency%c.PolicyFrequency != 0 {
		return fmt.Errorf("validate: simulation frequency %v must be a "+
			"multiple of policy frequency %v", c.SimulationFrequency,
			c.PolicyFrequency)
	}
	if c.VehiclesDensity <= 0 {
		return fmt.Errorf("validate: vehicles density must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.VehiclesDensity)
	}
	if len(c.TargetSpeeds) == 0 {
		return fmt.Errorf("validate: at least one target speed is needed")
	}
	if len(c.RewardSpeedRange) != 2 {
		return fmt.Errorf("validate: reward speed range must have 2 values "+
			"\n\thave(%v)", c.RewardSpeedRange)
	}

	obs := c.Observation
	if obs.VehiclesCount < 1 {
		return fmt.Errorf("validate: observation must include at least " +
			"the ego vehicle")
	}
	if len(obs.Features) == 0 {
		return fmt.Errorf("validate: observation needs at least one feature")
	}
	for _, feature := range obs.Features {
		switch feature {
		case Presence, X, Y, VX, VY, CosH, SinH:
		default:
			return fmt.Errorf("validate: no such feature %v", feature)
		}
	}
	for feature, bounds := range obs.FeaturesRange {
		if len(bounds) != 2 || bounds[1] <= bounds[0] {
			return fmt.Errorf("validate: feature range of %v must be a "+
				"non-empty [min, max] pair \n\thave(%v)", feature, bounds)
		}
	}

	return nil
}
