package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/agent"
	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/expreplay"
	"github.com/samuelfneumann/highwayrl/utils/matutils/initializers/weights"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 `yaml:"epsilon" toml:"epsilon"` // epislon for behaviour policy
	LearningRate float64 `yaml:"learning_rate" toml:"learning_rate"`

	// InitScale is the half width of the uniform distribution initial
	// weights are drawn from. Weights are initialized to zero if it is 0.
	InitScale float64 `yaml:"init_scale" toml:"init_scale"`

	// Replay configures experience replay. The zero value learns online.
	Replay expreplay.Config `yaml:"replay" toml:"replay"`
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createAgent: %v", err)
	}
	return New(env, c, c.Initializer(seed), seed)
}

// Initializer returns the weight initializer described by the Config
func (c Config) Initializer(seed uint64) weights.Initializer {
	if c.InitScale == 0 {
		return weights.NewLinearUV(weights.NewZeroUV())
	}
	return weights.NewLinearUV(distuv.Uniform{
		Min: -c.InitScale,
		Max: c.InitScale,
		Src: rand.NewSource(seed),
	})
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epislon must be in [0, 1] \n\thave(%v)", c.Epsilon)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive \n\thave(%v)",
			c.LearningRate)
	}
	if c.InitScale < 0 {
		return fmt.Errorf("init scale cannot be negative \n\thave(%v)",
			c.InitScale)
	}
	if err := c.Replay.Validate(); err != nil {
		return fmt.Errorf("replay: %v", err)
	}
	return nil
}

var _ agent.Config = Config{}
