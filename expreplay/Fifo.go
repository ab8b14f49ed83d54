package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/highwayrl/timestep"
)

// fifoCache implements a concrete ExperienceReplayer where elements are
// removed from the buffer in a FiFo manner, one at a time. Data is held
// in a ring of flat caches, so adding to a full buffer overwrites the
// oldest transition in place.
type fifoCache struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	discountCache  []float64
	nextStateCache []float64

	next   int // Index the next transition is written to
	isFull bool

	// Outlines how data is sampled
	sampler Selector

	minCapacity int
	maxCapacity int
	featureSize int
}

// New creates and returns a new ExperienceReplayer. The sampler
// determines how data is sampled from the buffer. The featureSize
// parameter defines the length of the state vectors. The minCapacity
// parameter determines the minimum number of samples that should be in
// the buffer before sampling is allowed and maxCapacity the maximum
// number of samples allowed in the buffer at any given time.
func New(sampler Selector, minCapacity, maxCapacity,
	featureSize int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < minCapacity {
		return nil, fmt.Errorf("new: maxCapacity must be >= minCapacity")
	}
	if maxCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size(%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}
	if featureSize < 1 {
		return nil, fmt.Errorf("new: featureSize must be > 0")
	}

	return &fifoCache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),

		sampler: sampler,

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
	}, nil
}

// Add adds a transition to the buffer, removing the oldest transition
// if the buffer is full
func (c *fifoCache) Add(t timestep.Transition) error {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("incorrect state size \n\twant(%v) "+
				"\n\thave(%v, %v)", c.featureSize, t.State.Len(),
				t.NextState.Len()),
		}
	}
	if t.Action.Len() != 1 {
		return &ExpReplayError{
			Op:  "add",
			Err: fmt.Errorf("actions must be 1-dimensional"),
		}
	}

	start, stop := c.next*c.featureSize, (c.next+1)*c.featureSize
	copy(c.stateCache[start:stop], t.State.RawVector().Data)
	copy(c.nextStateCache[start:stop], t.NextState.RawVector().Data)
	c.actionCache[c.next] = t.Action.AtVec(0)
	c.rewardCache[c.next] = t.Reward
	c.discountCache[c.next] = t.Discount

	c.next++
	if c.next == c.maxCapacity {
		c.next = 0
		c.isFull = true
	}
	return nil
}

// Sample samples a batch of transitions from the buffer
func (c *fifoCache) Sample() ([]float64, []float64, []float64, []float64,
	[]float64, error) {
	if c.Capacity() == 0 {
		return nil, nil, nil, nil, nil,
			&ExpReplayError{Op: "sample", Err: ErrEmptyBuffer}
	}
	if c.Capacity() < c.minCapacity {
		return nil, nil, nil, nil, nil,
			&ExpReplayError{Op: "sample", Err: ErrInsufficientSamples}
	}

	indices := c.sampler.choose(c)
	n := len(indices)
	states := make([]float64, n*c.featureSize)
	nextStates := make([]float64, n*c.featureSize)
	actions := make([]float64, n)
	rewards := make([]float64, n)
	discounts := make([]float64, n)

	for i, index := range indices {
		start, stop := index*c.featureSize, (index+1)*c.featureSize
		copy(states[i*c.featureSize:], c.stateCache[start:stop])
		copy(nextStates[i*c.featureSize:], c.nextStateCache[start:stop])
		actions[i] = c.actionCache[index]
		rewards[i] = c.rewardCache[index]
		discounts[i] = c.discountCache[index]
	}
	return states, actions, rewards, discounts, nextStates, nil
}

// Capacity returns the current number of samples in the buffer
func (c *fifoCache) Capacity() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.next
}

// MaxCapacity returns the maximum allowable samples in the buffer
func (c *fifoCache) MaxCapacity() int { return c.maxCapacity }

// MinCapacity returns the number of samples needed before sampling
func (c *fifoCache) MinCapacity() int { return c.minCapacity }

// BatchSize returns the number of samples sampled using Sample()
func (c *fifoCache) BatchSize() int { return c.sampler.BatchSize() }

// FeatureSize returns the length of the states held
func (c *fifoCache) FeatureSize() int { return c.featureSize }

func (c *fifoCache) String() string {
	return fmt.Sprintf("FiFo Replay  |  Capacity: %v/%v  |  Batch Size: %v",
		c.Capacity(), c.maxCapacity, c.BatchSize())
}
