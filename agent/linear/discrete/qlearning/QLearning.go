// Package qlearning implements the Q-Learning algorithm with linear
// function approximation and an ε-greedy behaviour policy
package qlearning

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/highwayrl/agent"
	"github.com/samuelfneumann/highwayrl/agent/linear/discrete/policy"
	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/utils/matutils"
	"github.com/samuelfneumann/highwayrl/utils/matutils/initializers/weights"
	"gonum.org/v1/gonum/mat"
)

// QLearning implements the online Q-Learning algorithm. Actions selected
// by this algorithm will always be enumerated as (0, 1, 2, ... N) where
// N is the maximum possible action.
//
// The behaviour policy is ε-greedy while training and greedy in
// evaluation mode.
type QLearning struct {
	*QLearner
	*policy.EGreedy
	config Config
	seed   uint64
}

// New creates a new QLearning agent for the environment env
func New(env environment.Environment, c Config, init weights.Initializer,
	seed uint64) (*QLearning, error) {
	behaviour, err := policy.NewEGreedy(c.Epsilon, seed, env)
	if err != nil {
		return nil, fmt.Errorf("qlearning: invalid behaviour policy: %v", err)
	}

	// Policy and learner share the same weights
	w := behaviour.Weights()[policy.WeightsKey]
	init.Initialize(w)

	learner, err := NewQLearner(w, c.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("qlearning: cannot create learner: %v", err)
	}
	if c.Replay.Enabled() {
		_, features := w.Dims()
		replay, err := c.Replay.Create(features, seed)
		if err != nil {
			return nil, fmt.Errorf("qlearning: cannot create replay: %v", err)
		}
		if err := learner.SetReplay(replay); err != nil {
			return nil, fmt.Errorf("qlearning: %v", err)
		}
	}

	return &QLearning{learner, behaviour, c, seed}, nil
}

// Weights gets and returns the weights shared by the policy and learner
func (q *QLearning) Weights() map[string]*mat.Dense {
	return q.EGreedy.Weights()
}

// SetWeights copies new weights into the weights shared by the policy
// and learner
func (q *QLearning) SetWeights(w map[string]*mat.Dense) error {
	newWeights, ok := w[policy.WeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"",
			policy.WeightsKey)
	}

	current := q.EGreedy.Weights()[policy.WeightsKey]
	r, c := newWeights.Dims()
	wantR, wantC := current.Dims()
	if r != wantR || c != wantC {
		return fmt.Errorf("setWeights: incorrect shape \n\twant(%v, %v) "+
			"\n\thave(%v, %v)", wantR, wantC, r, c)
	}

	current.Copy(newWeights)
	return nil
}

// Config returns the configuration of the agent
func (q *QLearning) Config() Config {
	return q.config
}

// model is the on-disk representation of a QLearning agent
type model struct {
	Config  Config
	Weights []byte
}

// Save saves the agent's configuration and weights to a file
func (q *QLearning) Save(filename string) error {
	data, err := q.EGreedy.Weights()[policy.WeightsKey].MarshalBinary()
	if err != nil {
		return fmt.Errorf("save: could not marshal weights: %v", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(model{q.config, data}); err != nil {
		return fmt.Errorf("save: could not encode model: %v", err)
	}
	return nil
}

// Load loads weights saved with Save into the agent. The saved weights
// must have the same shape as the agent's.
func (q *QLearning) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	var m model
	if err := gob.NewDecoder(file).Decode(&m); err != nil {
		return fmt.Errorf("load: could not decode model: %v", err)
	}

	var w mat.Dense
	if err := w.UnmarshalBinary(m.Weights); err != nil {
		return fmt.Errorf("load: could not unmarshal weights: %v", err)
	}
	if err := q.SetWeights(map[string]*mat.Dense{policy.WeightsKey: &w}); err != nil {
		return fmt.Errorf("load: %v", err)
	}
	return nil
}

func (q *QLearning) String() string {
	return fmt.Sprintf("QLearning  |  ε: %v  |  Learning Rate: %v\n%v",
		q.config.Epsilon, q.config.LearningRate,
		matutils.Format(q.EGreedy.Weights()[policy.WeightsKey]))
}

var (
	_ agent.Saver    = &QLearning{}
	_ agent.Weighted = &QLearning{}
)
