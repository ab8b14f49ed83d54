package trackers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samuelfneumann/highwayrl/experiment/tracker"
	ts "github.com/samuelfneumann/highwayrl/timestep"
)

// EpisodeRecord is a single line of an episode log
type EpisodeRecord struct {
	Episode int     `json:"episode"`
	Reward  float64 `json:"reward"`
	Length  int     `json:"length"`
}

// EpisodeLog writes one JSON line per finished episode holding the
// episode number, starting from 1, its return, and its length. Lines
// are written as episodes finish so that the log can be read while an
// experiment runs.
type EpisodeLog struct {
	file     *os.File
	out      *bufio.Writer
	enc      *json.Encoder
	episodes int
	current  float64
}

// NewEpisodeLog creates the log file filename and returns an EpisodeLog
// writing to it
func NewEpisodeLog(filename string) (*EpisodeLog, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("newEpisodeLog: could not create log: %v", err)
	}
	out := bufio.NewWriter(file)
	return &EpisodeLog{file: file, out: out, enc: json.NewEncoder(out)}, nil
}

// Track accumulates the reward of the episode and writes its record
// when the episode ends
func (e *EpisodeLog) Track(step ts.TimeStep) {
	if step.First() {
		e.current = 0
		return
	}

	e.current += step.Reward
	if !step.Last() {
		return
	}

	e.episodes++
	record := EpisodeRecord{e.episodes, e.current, step.Number}
	if err := e.enc.Encode(record); err != nil {
		log.Fatalf("could not write episode record: %v", err)
	}
	if err := e.out.Flush(); err != nil {
		log.Fatalf("could not flush episode log: %v", err)
	}
	e.current = 0
}

// Episodes returns the number of episodes logged
func (e *EpisodeLog) Episodes() int {
	return e.episodes
}

// Save flushes and closes the log
func (e *EpisodeLog) Save() {
	if err := e.out.Flush(); err != nil {
		log.Fatalf("could not flush episode log: %v", err)
	}
	if err := e.file.Close(); err != nil {
		log.Fatalf("could not close episode log: %v", err)
	}
}

// LoadEpisodeLog reads all records of an episode log
func LoadEpisodeLog(filename string) ([]EpisodeRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadEpisodeLog: could not open log: %v", err)
	}
	defer file.Close()

	var records []EpisodeRecord
	dec := json.NewDecoder(file)
	for {
		var record EpisodeRecord
		err := dec.Decode(&record)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loadEpisodeLog: could not decode "+
				"record %v: %v", len(records)+1, err)
		}
		records = append(records, record)
	}
}

var _ tracker.Tracker = &EpisodeLog{}
