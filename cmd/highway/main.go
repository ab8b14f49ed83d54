// Command highway trains, evaluates, and plays Q-learning agents on the
// highway environment with reward shaping.
//
// Usage:
//
//	highway train    [-config file] [-verbose]
//	highway evaluate [-config file] [-model file] [-episodes n] [-seed s]
//	highway play     [-config file] [-model file] [-seed s]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/mitchellh/go-homedir"
	"github.com/samuelfneumann/highwayrl/config"
)

const (
	halfModel = "qlearning_half.bin"
	fullModel = "qlearning_full.bin"
)

var commands = map[string]func(args []string) error{
	"train":    train,
	"evaluate": evaluate,
	"play":     play,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}
	if err := command(os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red("[ERROR]"), err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %v <train|evaluate|play> [flags]\n",
		os.Args[0])
}

func info(format string, args ...interface{}) {
	fmt.Println(aurora.Cyan("[INFO]"), fmt.Sprintf(format, args...))
}

func success(format string, args ...interface{}) {
	fmt.Println(aurora.Green("[OK]"), fmt.Sprintf(format, args...))
}

func warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, aurora.Yellow("[WARN]"), fmt.Sprintf(format,
		args...))
}

// loadConfig loads the configuration file at filename, or the default
// configuration if filename is empty. Directories in the configuration
// are expanded.
func loadConfig(filename string) (config.Train, error) {
	c := config.Default()
	if filename != "" {
		path, err := homedir.Expand(filename)
		if err != nil {
			return config.Train{}, err
		}
		if c, err = config.Load(path); err != nil {
			return config.Train{}, err
		}
	}

	var err error
	if c.ModelsDir, err = homedir.Expand(c.ModelsDir); err != nil {
		return config.Train{}, err
	}
	if c.RunsDir, err = homedir.Expand(c.RunsDir); err != nil {
		return config.Train{}, err
	}
	return c, nil
}

// flags returns a flag set for command with a -config flag
func flags(command string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	filename := fs.String("config", "", "configuration file (YAML or TOML)")
	return fs, filename
}

// exists returns whether filename is an existing non-empty file
func exists(filename string) bool {
	stat, err := os.Stat(filename)
	return err == nil && !stat.IsDir() && stat.Size() > 0
}
