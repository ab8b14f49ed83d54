package highway

import (
	"cmp"
	"math"

	"github.com/samber/lo"
	"github.com/samuelfneumann/highwayrl/reward"
	"golang.org/x/exp/slices"
)

// Nodes of the single straight road segment
const (
	StartNode string = "0"
	EndNode   string = "1"
)

// Road is a straight multi-lane road segment from StartNode to EndNode.
// Lane 0 is the leftmost lane and lane LanesCount-1 the rightmost.
type Road struct {
	lanes    int
	vehicles []*Vehicle
}

func newRoad(lanes int) *Road {
	return &Road{lanes: lanes}
}

// Lanes returns the number of lanes on the road
func (r *Road) Lanes() int { return r.lanes }

// Vehicles returns the vehicles on the road
func (r *Road) Vehicles() []*Vehicle { return r.vehicles }

func (r *Road) add(v *Vehicle) {
	r.vehicles = append(r.vehicles, v)
}

// Network returns the lane network of the road
func (r *Road) Network() reward.LaneNetwork {
	return reward.LaneNetwork{StartNode: {EndNode: r.lanes}}
}

// LaneIndex returns the lane index of the lane a vehicle is on
func (r *Road) LaneIndex(v *Vehicle) reward.LaneIndex {
	return reward.Tuple(StartNode, EndNode, v.Lane())
}

// State returns the view of v used when computing rewards
func (r *Road) State(v *Vehicle) reward.VehicleState {
	return reward.VehicleState{
		ID:       v.id,
		Position: v.position,
		Speed:    v.speed,
		Lane:     r.LaneIndex(v),
		Crashed:  v.crashed,
		Present:  reward.FieldPosition | reward.FieldSpeed | reward.FieldCrashed,
	}
}

// front returns the closest vehicle ahead of v in its lane and the
// bumper to bumper gap to it. If there is no such vehicle, front
// returns nil.
func (r *Road) front(v *Vehicle) (*Vehicle, float64) {
	var leader *Vehicle
	gap := math.Inf(1)
	for _, other := range r.vehicles {
		if other == v || other.Lane() != v.Lane() {
			continue
		}
		dx := other.position.X - v.position.X
		if dx > 0 && dx-VehicleLength < gap {
			leader, gap = other, dx-VehicleLength
		}
	}
	return leader, gap
}

// step advances all vehicles on the road by dt seconds and then checks
// for collisions
func (r *Road) step(dt float64) {
	acc := make([]float64, len(r.vehicles))
	for i, v := range r.vehicles {
		if v.controlled {
			acc[i] = v.control()
		} else {
			acc[i] = v.follow(r.front(v))
		}
	}

	for i, v := range r.vehicles {
		v.integrate(acc[i], dt)
	}

	r.collide()
}

// collide marks overlapping vehicles as crashed. Crashed vehicles stop.
func (r *Road) collide() {
	for i, v := range r.vehicles {
		for _, other := range r.vehicles[i+1:] {
			if v.collides(other) {
				v.crashed, other.crashed = true, true
				v.speed, other.speed = 0, 0
			}
		}
	}
}

// closest returns at most count vehicles other than v within radius of
// v, nearest first. Vehicles behind v are included only if seeBehind is
// true.
func (r *Road) closest(v *Vehicle, count int, radius float64,
	seeBehind bool) []*Vehicle {
	near := lo.Filter(r.vehicles, func(other *Vehicle, _ int) bool {
		dx := other.position.X - v.position.X
		return other != v && math.Abs(dx) < radius &&
			(seeBehind || dx > -2*VehicleLength)
	})

	slices.SortStableFunc(near, func(a, b *Vehicle) int {
		return cmp.Compare(math.Abs(a.position.X-v.position.X),
			math.Abs(b.position.X-v.position.X))
	})

	if len(near) > count {
		near = near[:count]
	}
	return near
}
