package reward

import "github.com/samuelfneumann/highwayrl/utils/floatutils"

// SpeedReward returns the ego speed normalized into [0, 1] by the target
// speed range of c:
//
//	clip((speed - min) / (max - min), 0, 1)
//
// If the ego speed is unavailable or the speed range is empty, the
// neutral value 0 is returned together with a *TermError.
func SpeedReward(c Config, s Snapshot) (float64, error) {
	if s.Ego == nil {
		return 0, termError(Speed, ErrNoEgo)
	}
	speed, ok := s.Ego.KnownSpeed()
	if !ok {
		return 0, termError(Speed, ErrNoSpeed)
	}

	min, max := c.SpeedRange.Min, c.SpeedRange.Max
	if max <= min {
		return 0, termError(Speed, ErrEmptySpeedRange)
	}

	return floatutils.Clip((speed-min)/(max-min), 0, 1), nil
}

// LaneSlot returns the numeric lane index of the ego vehicle. An error
// means there is no lane signal this step; it must never be treated as
// lane 0.
func LaneSlot(s Snapshot) (int, error) {
	if s.Ego == nil {
		return 0, ErrNoEgo
	}
	slot, ok := s.Ego.Lane.Slot()
	if !ok {
		return 0, ErrNoLane
	}
	return slot, nil
}
