package reward

import "github.com/samuelfneumann/highwayrl/utils/floatutils"

// DefaultLanesCount is used when the number of lanes can be determined
// neither from the configuration nor from the road network
const DefaultLanesCount int = 4

// LanesCount returns the number of lanes on the road. The configured
// number of lanes is used if known. Otherwise, the number of lanes is
// read from the road network: from the edge the ego vehicle is on if its
// lane is a tuple lane, or from the first edge of the network if not.
// If that also fails, DefaultLanesCount is returned. The result is at
// least 1.
func LanesCount(s Snapshot) int {
	lanes, ok := s.LanesCount, s.HasLanesCount
	if !ok {
		lanes, ok = networkLanes(s)
	}
	if !ok {
		lanes = DefaultLanesCount
	}
	return max(lanes, 1)
}

// networkLanes infers the number of lanes from the road network
func networkLanes(s Snapshot) (int, bool) {
	if s.Road == nil || len(s.Road.Network) == 0 {
		return 0, false
	}
	network := s.Road.Network

	if s.Ego != nil {
		if from, to, ok := s.Ego.Lane.Edge(); ok {
			if lanes, ok := network.Lanes(from, to); ok && lanes > 0 {
				return lanes, true
			}
		}
	}

	from, to, ok := network.FirstEdge()
	if !ok {
		return 0, false
	}
	lanes, ok := network.Lanes(from, to)
	return lanes, ok && lanes > 0
}

// RightLaneReward returns the right lane preference of the ego lane:
//
//	clip((lanes - 1 - lane) / max(lanes - 1, 1), 0, 1)
//
// Lane 0 is rewarded with 1.0, decaying to 0.0 at the highest lane
// index. The orientation is fixed by lane index and is not derived from
// lane geometry. Note that package highway numbers lanes from left to
// right.
//
// If the ego lane or the road is unavailable, the neutral value 0 is
// returned together with a *TermError.
func RightLaneReward(s Snapshot) (float64, error) {
	lane, err := LaneSlot(s)
	if err != nil {
		return 0, termError(RightLane, err)
	}
	if s.Road == nil {
		return 0, termError(RightLane, ErrNoRoad)
	}

	lanes := LanesCount(s)
	pref := float64(lanes-1-lane) / float64(max(lanes-1, 1))
	return floatutils.Clip(pref, 0, 1), nil
}
