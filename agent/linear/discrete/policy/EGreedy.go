// Package policy implements policies using linear function
// approximation
package policy

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/timestep"
	"github.com/samuelfneumann/highwayrl/utils/matutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Keys for weights map: map[string]*mat.Dense
	WeightsKey string = "weights"
)

// EGreedy implements an ε-greedy policy using linear function
// approximation. Action values are the product of a weight matrix with
// rows = actions and cols = features and the observation. In evaluation
// mode the policy is greedy.
type EGreedy struct {
	weights *mat.Dense
	epsilon float64
	source  rand.Source
	eval    bool
}

// NewEGreedy constructs a new EGreedy policy, where e=epislon is the
// probability with which a random action is selected. The environment
// must have discrete, 1-dimensional actions enumerated from 0.
func NewEGreedy(e float64, seed uint64,
	env environment.Environment) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1] "+
			"\n\thave(%v)", e)
	}

	actions, err := env.ActionSpec().NumActions()
	if err != nil {
		return nil, fmt.Errorf("newEGreedy: %v", err)
	}
	features := env.ObservationSpec().Shape.Len()

	// Create the weight matrix: rows = actions, cols = features
	weights := mat.NewDense(actions, features, nil)

	return &EGreedy{
		weights: weights,
		epsilon: e,
		source:  rand.NewSource(seed),
	}, nil
}

// Weights gets and returns the weights of the EGreedy policy as a
// string description -> weights
func (p *EGreedy) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)
	weights[WeightsKey] = p.weights

	return weights
}

// SetWeights sets the weight pointers to point to a new set of weights.
// The SetWeights function can take the output of a call to Weights()
// on another EGreedy Policy directly
func (p *EGreedy) SetWeights(weights map[string]*mat.Dense) error {
	newWeights, ok := weights[WeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"", WeightsKey)
	}

	r, c := newWeights.Dims()
	wantR, wantC := p.weights.Dims()
	if r != wantR || c != wantC {
		return fmt.Errorf("setWeights: incorrect shape \n\twant(%v, %v) "+
			"\n\thave(%v, %v)", wantR, wantC, r, c)
	}

	p.weights = newWeights
	return nil
}

// ActionValues returns the value of each action given an observation
func (p *EGreedy) ActionValues(obs mat.Vector) *mat.VecDense {
	numActions, _ := p.weights.Dims()
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(p.weights, obs)
	return actionValues
}

// SelectAction selects an action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	actionValues := p.ActionValues(t.Observation)
	greedyAction := matutils.MaxVec(actionValues)

	epsilon := p.epsilon
	if p.eval {
		epsilon = 0
	}
	if epsilon == 0 {
		return mat.NewVecDense(1, []float64{float64(greedyAction)})
	}

	// Calculate the ε probability of choosing any action at random
	numActions := actionValues.Len()
	prob := epsilon / float64(numActions)
	actionProbabilities := make([]float64, numActions)
	for i := range actionProbabilities {
		actionProbabilities[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilities[greedyAction] += 1.0 - epsilon

	dist := distuv.NewCategorical(actionProbabilities, p.source)
	return mat.NewVecDense(1, []float64{dist.Rand()})
}

// Epsilon returns the exploration rate of the policy
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// Eval sets the policy to evaluation mode
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }
