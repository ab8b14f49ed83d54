package main

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/mitchellh/go-homedir"
	"github.com/samuelfneumann/highwayrl/agent/linear/discrete/policy"
	"github.com/samuelfneumann/highwayrl/environment/highway"
	"github.com/samuelfneumann/highwayrl/reward"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// play runs a single episode with a trained model, or with uniformly
// random actions if no model is given, and prints each step
func play(args []string) error {
	fs, filename := flags("play")
	model := fs.String("model", "", "model file (random actions if empty)")
	seed := fs.Uint64("seed", 0, "seed of the episode")
	fs.Parse(args)

	c, err := loadConfig(*filename)
	if err != nil {
		return fmt.Errorf("play: %v", err)
	}

	env, h, step, err := c.CreateEnv(*seed)
	if err != nil {
		return fmt.Errorf("play: %v", err)
	}
	defer env.Close()

	selectAction := randomActions(*seed)
	if *model != "" {
		path, err := homedir.Expand(*model)
		if err != nil {
			return fmt.Errorf("play: %v", err)
		}
		q, err := c.CreateAgent(env)
		if err != nil {
			return fmt.Errorf("play: %v", err)
		}
		if err := q.Load(path); err != nil {
			return fmt.Errorf("play: %v", err)
		}
		greedy, err := policy.NewGreedy(*seed, env)
		if err != nil {
			return fmt.Errorf("play: %v", err)
		}
		if err := greedy.SetWeights(q.Weights()); err != nil {
			return fmt.Errorf("play: %v", err)
		}
		selectAction = greedy.SelectAction
		info("Playing model %v", path)
	} else {
		warn("No model given, playing random actions")
	}

	ret := 0.0
	for !step.Last() {
		action := selectAction(step)
		step, _, err = env.Step(action)
		if err != nil {
			return fmt.Errorf("play: %v", err)
		}
		ret += step.Reward

		result := env.LastResult()
		fmt.Printf("%3d  %-10v  speed %5.2f  lane %v  native %+.3f  "+
			"shaped %+.3f  %v\n", step.Number,
			highway.ActionNames[int(action.AtVec(0))], h.Ego().Speed(),
			h.Ego().Lane(), result.Native, result.Shaped, events(result))
	}

	end := aurora.Green(step.EndType())
	if step.Terminated() {
		end = aurora.Red(step.EndType())
	}
	fmt.Printf("\n%v after %v steps, return %.3f\n", end, step.Number, ret)
	return nil
}

// randomActions returns a function selecting uniformly random actions
func randomActions(seed uint64) func(ts.TimeStep) *mat.VecDense {
	rng := rand.New(rand.NewSource(seed))
	return func(ts.TimeStep) *mat.VecDense {
		a := float64(rng.Intn(highway.NumActions))
		return mat.NewVecDense(1, []float64{a})
	}
}

// events lists the flagged terms of a step
func events(r reward.Result) string {
	var e []string
	if r.Crashed {
		e = append(e, aurora.Red("CRASH").String())
	}
	if r.Unsafe {
		e = append(e, aurora.Yellow("UNSAFE").String())
	}
	if r.LaneChanged {
		e = append(e, "LANE_CHANGE")
	}
	if len(r.Degraded) > 0 {
		e = append(e, fmt.Sprintf("degraded=%v", len(r.Degraded)))
	}
	return strings.Join(e, " ")
}
