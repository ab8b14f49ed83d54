package expreplay

import (
	"golang.org/x/exp/rand"
)

// Selector implements functionality for choosing how data should be
// sampled from an experience replay buffer
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c *fifoCache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly, with replacement
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer
func NewUniformSelector(samples int, seed uint64) Selector {
	return &uniformSelector{
		samples: samples,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

func (u *uniformSelector) choose(c *fifoCache) []int {
	selected := make([]int, u.BatchSize())
	for i := range selected {
		selected[i] = u.rng.Intn(c.Capacity())
	}
	return selected
}

// latestSelector is a Selector which selects the most recently added
// data
type latestSelector struct {
	samples int
}

// NewLatestSelector returns a new Selector which draws the most
// recently added data from an experience replay buffer, newest first
func NewLatestSelector(samples int) Selector {
	return &latestSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (l *latestSelector) BatchSize() int {
	return l.samples
}

func (l *latestSelector) choose(c *fifoCache) []int {
	n := l.BatchSize()
	if n > c.Capacity() {
		n = c.Capacity()
	}

	selected := make([]int, n)
	for i := range selected {
		selected[i] = (c.next - 1 - i + c.maxCapacity) % c.maxCapacity
	}
	return selected
}
