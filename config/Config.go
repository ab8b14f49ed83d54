// Package config implements the configuration of training, evaluation,
// and playing runs. A configuration describes the highway, the reward
// shaping wrapper, and the Q-learning agent, and creates each of them.
//
// Configurations are stored as YAML or TOML. Values missing from a file
// keep their defaults.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samuelfneumann/highwayrl/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/highwayrl/environment/highway"
	"github.com/samuelfneumann/highwayrl/environment/wrappers"
	"github.com/samuelfneumann/highwayrl/expreplay"
	"github.com/samuelfneumann/highwayrl/reward"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"gopkg.in/yaml.v3"
)

// Shaping holds the weights of the reward shaping terms. The target
// speed range is taken from the highway configuration.
type Shaping struct {
	AlphaSpeed       float64 `yaml:"alpha_speed" toml:"alpha_speed"`
	BetaRightLane    float64 `yaml:"beta_right_lane" toml:"beta_right_lane"`
	GammaCrash       float64 `yaml:"gamma_crash" toml:"gamma_crash"`
	DeltaUnsafe      float64 `yaml:"delta_unsafe" toml:"delta_unsafe"`
	LambdaLaneChange float64 `yaml:"lambda_lane_change" toml:"lambda_lane_change"`
	UnsafeDistance   float64 `yaml:"unsafe_distance_m" toml:"unsafe_distance_m"`
}

// Train configures a training run
type Train struct {
	Seed           uint64  `yaml:"seed" toml:"seed"`
	TotalTimesteps int     `yaml:"total_timesteps" toml:"total_timesteps"`
	HalfTimesteps  int     `yaml:"half_timesteps" toml:"half_timesteps"`
	Discount       float64 `yaml:"gamma" toml:"gamma"`

	// CheckpointEvery saves the agent every CheckpointEvery steps, 0
	// disables checkpointing
	CheckpointEvery int `yaml:"checkpoint_every" toml:"checkpoint_every"`
	EvalEpisodes    int `yaml:"eval_episodes" toml:"eval_episodes"`

	ModelsDir string `yaml:"models_dir" toml:"models_dir"`
	RunsDir   string `yaml:"runs_dir" toml:"runs_dir"`

	Agent   qlearning.Config `yaml:"agent" toml:"agent"`
	Shaping Shaping          `yaml:"reward" toml:"reward"`
	Env     highway.Config   `yaml:"env" toml:"env"`
}

// Default returns the default training configuration
func Default() Train {
	return Train{
		Seed:            42,
		TotalTimesteps:  300_000,
		HalfTimesteps:   150_000,
		Discount:        0.99,
		CheckpointEvery: 0,
		EvalEpisodes:    5,
		ModelsDir:       "models",
		RunsDir:         "runs",
		Agent: qlearning.Config{
			Epsilon:      0.05,
			LearningRate: 5e-4,
			Replay: expreplay.Config{
				Capacity:       50_000,
				LearningStarts: 1_000,
				BatchSize:      64,
			},
		},
		Shaping: Shaping{
			AlphaSpeed:       reward.DefaultAlphaSpeed,
			BetaRightLane:    reward.DefaultBetaRightLane,
			GammaCrash:       reward.DefaultGammaCrash,
			DeltaUnsafe:      reward.DefaultDeltaUnsafe,
			LambdaLaneChange: reward.DefaultLambdaLaneChange,
			UnsafeDistance:   reward.DefaultUnsafeDistance,
		},
		Env: highway.DefaultConfig(),
	}
}

// Load reads a configuration file over the defaults. Files ending in
// .toml are decoded as TOML, all others as YAML.
func Load(filename string) (Train, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Train{}, fmt.Errorf("load: could not read config: %w", err)
	}

	c := Default()
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return Train{}, fmt.Errorf("load: could not parse %v: %w", filename,
			err)
	}

	if err := c.Validate(); err != nil {
		return Train{}, fmt.Errorf("load: %v", err)
	}
	return c, nil
}

// Save writes the configuration to filename as YAML, or as TOML if
// filename ends in .toml
func (c Train) Save(filename string) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(c); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("save: could not encode config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %w", err)
	}
	return nil
}

// Validate checks that the configuration describes a legal run
func (c Train) Validate() error {
	if c.TotalTimesteps < 1 {
		return fmt.Errorf("validate: total timesteps must be positive "+
			"\n\thave(%v)", c.TotalTimesteps)
	}
	if c.HalfTimesteps < 0 || c.HalfTimesteps > c.TotalTimesteps {
		return fmt.Errorf("validate: half timesteps must be in [0, %v] "+
			"\n\thave(%v)", c.TotalTimesteps, c.HalfTimesteps)
	}
	if c.Discount < 0 || c.Discount > 1 || math.IsNaN(c.Discount) {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Discount)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval cannot be "+
			"negative \n\thave(%v)", c.CheckpointEvery)
	}
	if c.EvalEpisodes < 1 {
		return fmt.Errorf("validate: at least one evaluation episode is "+
			"needed \n\thave(%v)", c.EvalEpisodes)
	}

	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %v", err)
	}
	if err := c.RewardConfig().Validate(); err != nil {
		return fmt.Errorf("validate: reward: %v", err)
	}
	if err := c.Env.Validate(); err != nil {
		return fmt.Errorf("validate: env: %v", err)
	}
	return nil
}

// RewardConfig returns the reward shaping configuration, with the
// target speed range of the highway
func (c Train) RewardConfig() reward.Config {
	return reward.Config{
		AlphaSpeed:       c.Shaping.AlphaSpeed,
		BetaRightLane:    c.Shaping.BetaRightLane,
		GammaCrash:       c.Shaping.GammaCrash,
		DeltaUnsafe:      c.Shaping.DeltaUnsafe,
		LambdaLaneChange: c.Shaping.LambdaLaneChange,
		UnsafeDistance:   c.Shaping.UnsafeDistance,
		SpeedRange:       c.Env.SpeedRange(),
	}
}

// CreateEnv creates the highway seeded with seed and wraps it with
// reward shaping. Both the wrapper and the highway it wraps are
// returned, along with the first step of the wrapper.
func (c Train) CreateEnv(seed uint64) (*wrappers.RewardShaping,
	*highway.Highway, ts.TimeStep, error) {
	h, _, err := highway.New(c.Env, c.Discount, seed)
	if err != nil {
		return nil, nil, ts.TimeStep{}, fmt.Errorf("createEnv: %v", err)
	}

	r, step, err := wrappers.NewRewardShaping(h, c.RewardConfig())
	if err != nil {
		return nil, nil, ts.TimeStep{}, fmt.Errorf("createEnv: %v", err)
	}
	return r, h, step, nil
}

// CreateAgent creates a Q-learning agent for env
func (c Train) CreateAgent(env *wrappers.RewardShaping) (*qlearning.QLearning,
	error) {
	a, err := c.Agent.CreateAgent(env, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: %v", err)
	}
	if !c.Agent.ValidAgent(a) {
		return nil, fmt.Errorf("createAgent: unexpected agent %T", a)
	}
	return a.(*qlearning.QLearning), nil
}
