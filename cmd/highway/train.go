package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/highwayrl/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/highwayrl/environment/wrappers"
	"github.com/samuelfneumann/highwayrl/experiment"
	"github.com/samuelfneumann/highwayrl/experiment/checkpointer"
	"github.com/samuelfneumann/highwayrl/experiment/tracker"
	"github.com/samuelfneumann/highwayrl/experiment/trackers"
	log "github.com/sirupsen/logrus"
)

const progressWidth = 50

// train trains an agent for half of the configured timesteps, saves it,
// then trains it for the remaining timesteps and saves it again. If a
// half model already exists, it is loaded instead of trained.
func train(args []string) error {
	fs, filename := flags("train")
	verbose := fs.Bool("verbose", false, "log degraded reward terms")
	fs.Parse(args)

	c, err := loadConfig(*filename)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	for _, dir := range []string{c.ModelsDir, c.RunsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("train: %v", err)
		}
	}
	if err := c.Save(filepath.Join(c.RunsDir, "config.yaml")); err != nil {
		return fmt.Errorf("train: %v", err)
	}

	env, h, _, err := c.CreateEnv(c.Seed)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	defer env.Close()
	if *verbose {
		logger := log.New()
		logger.SetOutput(os.Stderr)
		env.SetLogger(logger.WithField("seed", c.Seed))
	}

	q, err := c.CreateAgent(env)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	// The episode log holds the native rewards of the highway, the
	// return trackers hold both
	episodes, err := trackers.NewEpisodeLog(filepath.Join(c.RunsDir,
		"episode_rewards.jsonl"))
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	t := []tracker.Tracker{
		tracker.Register(episodes, h),
		trackers.NewReturn(filepath.Join(c.RunsDir, "shaped_returns.bin")),
		tracker.Register(trackers.NewReturn(filepath.Join(c.RunsDir,
			"native_returns.bin")), h),
		trackers.NewEpisodeLength(filepath.Join(c.RunsDir,
			"episode_lengths.bin")),
	}

	var check []checkpointer.Checkpointer
	if c.CheckpointEvery > 0 {
		name := filepath.Join(c.ModelsDir, "qlearning_checkpoint")
		check = append(check, checkpointer.NewNStep(c.CheckpointEvery, q,
			checkpointer.FilenameEnumerator(0, name, ".bin")))
	}

	halfPath := filepath.Join(c.ModelsDir, halfModel)
	fullPath := filepath.Join(c.ModelsDir, fullModel)

	if exists(halfPath) {
		info("Resuming from half model: %v", halfPath)
		if err := q.Load(halfPath); err != nil {
			return fmt.Errorf("train: %v", err)
		}
	} else {
		info("Training half model...")
		if err := run(env, q, c.HalfTimesteps, t, check); err != nil {
			return fmt.Errorf("train: %v", err)
		}
		if err := q.Save(halfPath); err != nil {
			return fmt.Errorf("train: %v", err)
		}
		success("Saved half model: %v", halfPath)
	}

	remaining := c.TotalTimesteps - c.HalfTimesteps
	info("Training full model, remaining steps: %v", remaining)
	if err := run(env, q, remaining, t, check); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if err := q.Save(fullPath); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	success("Saved full model: %v", fullPath)

	for _, tr := range t {
		tr.Save()
	}
	success("Logged %v episodes to %v", episodes.Episodes(), c.RunsDir)

	fmt.Printf("\nHalf: %v\nFull: %v\n\n", halfPath, fullPath)
	return nil
}

// run trains q online on env for a number of steps
func run(env *wrappers.RewardShaping, q *qlearning.QLearning, steps int,
	t []tracker.Tracker, check []checkpointer.Checkpointer) error {
	if steps < 1 {
		return nil
	}

	e := experiment.NewOnline(env, q, steps, t, check)
	e.ShowProgress(os.Stdout, progressWidth)
	if err := e.Run(); err != nil {
		return err
	}
	info("Finished %v episodes in %v steps", e.Episodes(), e.Steps())
	return nil
}
