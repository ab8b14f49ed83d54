package reward

// LaneTracker remembers the ego lane of the previous step so that lane
// changes can be detected. LaneTracker is a value: Observe returns the
// tracker to use on the next step rather than modifying the receiver.
//
// The zero LaneTracker knows no previous lane.
type LaneTracker struct {
	previous int
	known    bool
}

// NewLaneTracker returns a LaneTracker whose previous lane is slot if ok
// is true, and unknown otherwise.
func NewLaneTracker(slot int, ok bool) LaneTracker {
	if !ok {
		return LaneTracker{}
	}
	return LaneTracker{previous: slot, known: true}
}

// TrackerFor returns a LaneTracker starting from the ego lane of s. It
// should be used after each episode reset.
func TrackerFor(s Snapshot) LaneTracker {
	slot, err := LaneSlot(s)
	return NewLaneTracker(slot, err == nil)
}

// Previous returns the previous lane and whether it is known
func (t LaneTracker) Previous() (int, bool) {
	return t.previous, t.known
}

// Observe records the current lane, which is unknown if ok is false.
// It returns whether the lane changed and the tracker for the next step.
// A lane change is reported only if both the previous and current lanes
// are known and differ. The next tracker always holds the current lane,
// known or not. Observe must be called exactly once per step.
func (t LaneTracker) Observe(slot int, ok bool) (bool, LaneTracker) {
	changed := ok && t.known && slot != t.previous
	return changed, NewLaneTracker(slot, ok)
}
