package qlearning

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/highwayrl/agent"
	"github.com/samuelfneumann/highwayrl/expreplay"
	"github.com/samuelfneumann/highwayrl/timestep"
	"gonum.org/v1/gonum/mat"
)

// QLearner implements the update functionality for the Q-Learning
// algorithm.
//
// Without a replay buffer, each call to Step() updates the weights with
// the most recently observed transition. With a replay buffer, Step()
// adds the most recent transition to the buffer and updates the weights
// with the mean update over a sampled batch, once the buffer holds
// enough transitions.
type QLearner struct {
	weights      *mat.Dense
	step         timestep.TimeStep
	action       *mat.VecDense
	nextStep     timestep.TimeStep
	learningRate float64

	replay expreplay.ExperienceReplayer
}

// NewQLearner creates a new QLearner struct
//
// weights are the weights of the policy to learn
func NewQLearner(weights *mat.Dense, learningRate float64) (*QLearner,
	error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("newQLearner: learning rate must be "+
			"positive \n\twant(>0) \n\thave(%v)", learningRate)
	}
	return &QLearner{weights: weights, learningRate: learningRate}, nil
}

// SetReplay sets the replay buffer of the learner. A nil buffer makes
// the learner update online.
func (q *QLearner) SetReplay(r expreplay.ExperienceReplayer) error {
	if r != nil {
		if _, features := q.weights.Dims(); r.FeatureSize() != features {
			return fmt.Errorf("setReplay: incorrect feature size "+
				"\n\twant(%v) \n\thave(%v)", features, r.FeatureSize())
		}
	}
	q.replay = r
	return nil
}

// Replay returns the replay buffer of the learner, or nil if it learns
// online
func (q *QLearner) Replay() expreplay.ExperienceReplayer {
	return q.replay
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n",
			t.Number)
	}
	q.step = timestep.TimeStep{}
	q.action = nil
	q.nextStep = t
	return nil
}

// Observe observes and records any timestep other than the first timestep
func (q *QLearner) Observe(action mat.Vector, nextStep timestep.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: value-based methods cannot have "+
			"multi-dimensional actions (action dim = %d)", action.Len())
	}
	q.step = q.nextStep
	q.action = mat.NewVecDense(1, []float64{action.AtVec(0)})
	q.nextStep = nextStep
	return nil
}

// TdError returns the Q-learning TD error of a transition
func (q *QLearner) TdError(t timestep.Transition) float64 {
	// Calculate the action values in the next state
	numActions, _ := q.weights.Dims()
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(q.weights, t.NextState)

	// Create the update target
	target := t.Reward + t.Discount*mat.Max(actionValues)

	// Find the current estimate of the taken action
	weights := q.weights.RowView(int(t.Action.AtVec(0)))
	currentEstimate := mat.Dot(weights, t.State)

	return target - currentEstimate
}

// Step updates the weights of the Agent's Learner and Policy
func (q *QLearner) Step() error {
	if q.action == nil || q.step.Observation == nil {
		return fmt.Errorf("step: no transition has been observed")
	}

	transition := timestep.NewTransition(q.step, q.action, q.nextStep, nil)
	if q.replay == nil {
		q.update(transition, q.learningRate*q.TdError(transition))
		return nil
	}

	if err := q.replay.Add(transition); err != nil {
		return fmt.Errorf("step: %v", err)
	}
	states, actions, rewards, discounts, nextStates, err := q.replay.Sample()
	if expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("step: %v", err)
	}

	// TD errors of the whole batch are computed before any update
	features := q.replay.FeatureSize()
	batch := make([]timestep.Transition, len(actions))
	scales := make([]float64, len(actions))
	for i := range batch {
		row := i * features
		batch[i] = timestep.Transition{
			State:     mat.NewVecDense(features, states[row:row+features]),
			Action:    mat.NewVecDense(1, []float64{actions[i]}),
			Reward:    rewards[i],
			Discount:  discounts[i],
			NextState: mat.NewVecDense(features, nextStates[row:row+features]),
		}
		scales[i] = q.learningRate * q.TdError(batch[i]) / float64(len(batch))
	}
	for i := range batch {
		q.update(batch[i], scales[i])
	}
	return nil
}

// update performs gradient descent on the weights of the action taken
// in transition t: ∇weights = scale * state
func (q *QLearner) update(t timestep.Transition, scale float64) {
	action := int(t.Action.AtVec(0))
	weights := q.weights.RowView(action)
	newWeights := mat.NewVecDense(weights.Len(), nil)
	newWeights.AddScaledVec(weights, scale, t.State)
	q.weights.SetRow(action, newWeights.RawVector().Data)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {}

// Weights gets and returns the weights of the learner
func (q *QLearner) Weights() map[string]*mat.Dense {
	return map[string]*mat.Dense{"weights": q.weights}
}

var _ agent.TdErrorer = &QLearner{}
