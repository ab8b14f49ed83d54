package experiment

import (
	"fmt"
	"io"

	"github.com/samuelfneumann/highwayrl/agent"
	env "github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/experiment/checkpointer"
	"github.com/samuelfneumann/highwayrl/experiment/tracker"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"github.com/samuelfneumann/highwayrl/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps      int
	currentSteps  int
	episodes      int
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	progress     *progressbar.ManualProgressBar
	displayEvery int
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for. Trackers determine which
// data is saved and checkpointers when the agent is saved.
func NewOnline(e env.Environment, a agent.Agent, steps int,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{
		Environment:   e,
		Agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
	}
}

// ShowProgress displays a progress bar of the given width on out while
// the experiment runs
func (o *Online) ShowProgress(out io.Writer, width int) {
	o.progress = progressbar.NewManualProgressBar(out, width, o.maxSteps)
	o.displayEvery = o.maxSteps / 200
	if o.displayEvery < 1 {
		o.displayEvery = 1
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not step: %v", err)
		}
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}

		if err := o.checkpoint(step); err != nil {
			return true, fmt.Errorf("runEpisode: could not checkpoint: %v",
				err)
		}
		o.display()
	}

	if step.Last() {
		o.Agent.EndEpisode()
		o.episodes++
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	if o.progress != nil {
		defer o.progress.Close()
	}

	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(); err != nil {
			return err
		}
	}
	return nil
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() int {
	return o.currentSteps
}

// Episodes returns the number of episodes finished so far
func (o *Online) Episodes() int {
	return o.episodes
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}

func (o *Online) display() {
	if o.progress == nil {
		return
	}
	o.progress.Increment()
	if o.currentSteps%o.displayEvery == 0 || o.currentSteps == o.maxSteps {
		o.progress.Display()
	}
}
