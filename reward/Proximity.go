package reward

import "github.com/samber/lo"

// NearestAhead returns the longitudinal gap between the ego vehicle and
// the nearest vehicle ahead of it in the same lane. Only vehicles whose
// lane is exactly equal to the ego lane are considered, and only
// strictly positive gaps count as ahead. The returned bool is false if
// no vehicle is ahead.
//
// An error is returned if the ego vehicle, its position, its lane, or
// the road is unavailable, or if a vehicle in the ego lane has no
// position.
func NearestAhead(s Snapshot) (float64, bool, error) {
	if s.Ego == nil {
		return 0, false, ErrNoEgo
	}
	if s.Road == nil {
		return 0, false, ErrNoRoad
	}

	ego := *s.Ego
	position, ok := ego.KnownPosition()
	if !ok {
		return 0, false, ErrNoPosition
	}
	if !ego.Lane.Known() {
		return 0, false, ErrNoLane
	}

	sameLane := lo.Filter(s.Road.Vehicles, func(v VehicleState, _ int) bool {
		return v.ID != ego.ID && v.Lane.Equal(ego.Lane)
	})
	if lo.SomeBy(sameLane, func(v VehicleState) bool {
		return !v.Has(FieldPosition)
	}) {
		return 0, false, ErrScanFault
	}

	gaps := lo.FilterMap(sameLane, func(v VehicleState, _ int) (float64, bool) {
		dx := v.Position.X - position.X
		return dx, dx > 0
	})
	if len(gaps) == 0 {
		return 0, false, nil
	}
	return lo.Min(gaps), true, nil
}

// IsUnsafeGap returns whether the nearest vehicle ahead in the ego lane
// is strictly closer than c.UnsafeDistance. If there is no vehicle
// ahead, false is returned. If the scan cannot be performed, the neutral
// value false is returned together with a *TermError.
func IsUnsafeGap(c Config, s Snapshot) (bool, error) {
	gap, found, err := NearestAhead(s)
	if err != nil {
		return false, termError(UnsafeGap, err)
	}
	return found && gap < c.UnsafeDistance, nil
}
