package checkpointer

import ts "github.com/samuelfneumann/highwayrl/timestep"

// nStep implements checkpointing every N environment steps, counted
// across episodes
type nStep struct {
	interval int
	steps    int
	object   Serializable // Object to save

	// filename returns the name of the file to save the object in.
	//
	// If each checkpoint should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// file1.bin, file2.bin, ..., fileK.bin), then use
	// FilenameEnumerator. To overwrite a single file, use a function
	// returning a constant.
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints every n steps.
func NewNStep(n int, object Serializable,
	filename func() string) Checkpointer {
	if n < 1 {
		panic("newNStep: interval must be positive")
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint counts a step and saves the tracked object every interval
// steps. The first timestep of an episode is not counted since no
// action led to it.
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.First() {
		return nil
	}
	n.steps++
	if n.steps%n.interval == 0 {
		return n.object.Save(n.filename())
	}
	return nil
}
