package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/samuelfneumann/highwayrl/expreplay"
	"github.com/samuelfneumann/highwayrl/reward"
	"gonum.org/v1/gonum/spatial/r1"
)

func write(t *testing.T, name, content string) string {
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestRewardConfig(t *testing.T) {
	c := Default()
	c.Env.RewardSpeedRange = []float64{15, 35}

	r := c.RewardConfig()
	want := reward.DefaultConfig()
	want.SpeedRange = r1.Interval{Min: 15, Max: 35}
	if r != want {
		t.Errorf("reward config: want(%v) have(%v)", want, r)
	}
}

func TestLoadYAML(t *testing.T) {
	filename := write(t, "train.yaml", `
seed: 7
total_timesteps: 1000
half_timesteps: 400
agent:
  epsilon: 0.2
reward:
  unsafe_distance_m: 15
env:
  lanes_count: 3
  reward_speed_range: [22, 28]
  observation:
    vehicles_count: 5
`)

	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}

	if c.Seed != 7 || c.TotalTimesteps != 1000 || c.HalfTimesteps != 400 {
		t.Errorf("timesteps not loaded: %+v", c)
	}
	if c.Agent.Epsilon != 0.2 || c.Agent.LearningRate != 5e-4 {
		t.Errorf("agent: want(epsilon=0.2, lr=5e-4) have(%+v)", c.Agent)
	}
	if c.Shaping.UnsafeDistance != 15 ||
		c.Shaping.GammaCrash != reward.DefaultGammaCrash {
		t.Errorf("shaping: unexpected values %+v", c.Shaping)
	}
	if c.Env.LanesCount != 3 || c.Env.VehiclesCount != 30 {
		t.Errorf("env: want(lanes=3, vehicles=30) have(lanes=%v, "+
			"vehicles=%v)", c.Env.LanesCount, c.Env.VehiclesCount)
	}
	if c.Env.Observation.VehiclesCount != 5 ||
		len(c.Env.Observation.Features) != 5 {
		t.Errorf("observation: unexpected values %+v", c.Env.Observation)
	}
	if got := c.RewardConfig().SpeedRange; got != (r1.Interval{Min: 22,
		Max: 28}) {
		t.Errorf("speed range: want([22, 28]) have(%v)", got)
	}
}

func TestLoadTOML(t *testing.T) {
	filename := write(t, "train.toml", `
seed = 3
half_timesteps = 10

[agent]
learning_rate = 0.01

[env]
duration = 20
`)

	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 3 || c.HalfTimesteps != 10 || c.Agent.LearningRate != 0.01 ||
		c.Env.Duration != 20 {
		t.Errorf("toml config not loaded: %+v", c)
	}
	if c.TotalTimesteps != Default().TotalTimesteps {
		t.Error("missing values should keep their defaults")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"half above total", "total_timesteps: 10\nhalf_timesteps: 20\n"},
		{"discount", "gamma: 1.5\n"},
		{"epsilon", "agent:\n  epsilon: 2\n"},
		{"unsafe distance", "reward:\n  unsafe_distance_m: -1\n"},
		{"lanes", "env:\n  lanes_count: 0\n"},
		{"replay batch", "agent:\n  replay:\n    batch_size: 100000\n"},
		{"syntax", "seed: [1\n"},
	}

	for _, test := range tests {
		filename := write(t, "train.yaml", test.content)
		if _, err := Load(filename); err == nil {
			t.Errorf("%v: expected error", test.name)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		c := Default()
		c.Seed = 11
		c.Shaping.DeltaUnsafe = 0.75
		c.Env.TargetSpeeds = []float64{18, 24, 30}

		filename := filepath.Join(t.TempDir(), name)
		if err := c.Save(filename); err != nil {
			t.Fatal(err)
		}
		loaded, err := Load(filename)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(c, loaded) {
			t.Errorf("%v: want(%+v) have(%+v)", name, c, loaded)
		}
	}
}

func TestCreate(t *testing.T) {
	c := Default()
	c.Env.VehiclesCount = 5
	c.Agent.Replay = expreplay.Config{
		Capacity:       100,
		LearningStarts: 10,
		BatchSize:      8,
	}

	env, h, step, err := c.CreateEnv(c.Seed)
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() {
		t.Error("create should return the first step")
	}
	if env.Config() != c.RewardConfig() {
		t.Error("wrapper should use the reward config")
	}
	if h.Config().LanesCount != c.Env.LanesCount {
		t.Error("highway should use the env config")
	}

	q, err := c.CreateAgent(env)
	if err != nil {
		t.Fatal(err)
	}
	if rows, cols := q.Weights()["weights"].Dims(); rows != 5 ||
		cols != step.Observation.Len() {
		t.Errorf("weights: want(5, %v) have(%v, %v)",
			step.Observation.Len(), rows, cols)
	}
	if r := q.Replay(); r == nil || r.MaxCapacity() != 100 ||
		r.BatchSize() != 8 {
		t.Errorf("replay: unexpected buffer %v", r)
	}
}
