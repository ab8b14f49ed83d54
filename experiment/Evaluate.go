package experiment

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/agent"
	env "github.com/samuelfneumann/highwayrl/environment"
	"gonum.org/v1/gonum/stat"
)

// Evaluation holds the results of evaluating a policy
type Evaluation struct {
	Returns []float64
	Lengths []int
	Mean    float64 // Mean return
	Std     float64 // Population standard deviation of returns
}

func (e Evaluation) String() string {
	return fmt.Sprintf("Episodes: %v  |  Mean Return: %.3f  |  Std Return: "+
		"%.3f", len(e.Returns), e.Mean, e.Std)
}

// Evaluate runs the policy p in evaluation mode for a number of episodes.
// If the environment implements environment.Seeder, episode i is seeded
// with seed+i. The policy is returned to its previous mode afterwards.
func Evaluate(e env.Environment, p agent.Policy, episodes int,
	seed uint64) (Evaluation, error) {
	if episodes < 1 {
		return Evaluation{}, fmt.Errorf("evaluate: at least one episode "+
			"is needed \n\thave(%v)", episodes)
	}

	if !p.IsEval() {
		p.Eval()
		defer p.Train()
	}

	var result Evaluation
	for i := 0; i < episodes; i++ {
		if s, ok := e.(env.Seeder); ok {
			s.Seed(seed + uint64(i))
		}

		step, err := e.Reset()
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate: %v", err)
		}

		ret := 0.0
		for !step.Last() {
			step, _, err = e.Step(p.SelectAction(step))
			if err != nil {
				return Evaluation{}, fmt.Errorf("evaluate: %v", err)
			}
			ret += step.Reward
		}

		result.Returns = append(result.Returns, ret)
		result.Lengths = append(result.Lengths, step.Number)
	}

	result.Mean, result.Std = stat.PopMeanStdDev(result.Returns, nil)
	return result, nil
}
