package main

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/samuelfneumann/highwayrl/experiment"
)

// evaluate runs a trained model greedily and reports the mean and
// standard deviation of its shaped returns
func evaluate(args []string) error {
	fs, filename := flags("evaluate")
	model := fs.String("model", "", "model file (default <models_dir>/"+
		fullModel+")")
	episodes := fs.Int("episodes", 0, "episodes to evaluate (default "+
		"eval_episodes of the config)")
	seed := fs.Int64("seed", -1, "seed of the first episode (default seed "+
		"of the config)")
	fs.Parse(args)

	c, err := loadConfig(*filename)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	if *episodes > 0 {
		c.EvalEpisodes = *episodes
	}
	if *seed >= 0 {
		c.Seed = uint64(*seed)
	}

	path := filepath.Join(c.ModelsDir, fullModel)
	if *model != "" {
		if path, err = homedir.Expand(*model); err != nil {
			return fmt.Errorf("evaluate: %v", err)
		}
	}
	if !exists(path) {
		return fmt.Errorf("evaluate: missing model: %v", path)
	}

	env, _, _, err := c.CreateEnv(c.Seed)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	defer env.Close()

	q, err := c.CreateAgent(env)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	if err := q.Load(path); err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}

	result, err := experiment.Evaluate(env, q, c.EvalEpisodes, c.Seed)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}

	fmt.Printf("Model: %v\n", filepath.Base(path))
	fmt.Printf("Episodes: %v\n", len(result.Returns))
	fmt.Printf("Mean return: %.2f | Std: %.2f\n", result.Mean, result.Std)
	return nil
}
