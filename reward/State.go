package reward

import (
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r2"
)

// LaneKind denotes how a simulator identifies a lane
type LaneKind int

const (
	// NoLane means the lane is unknown
	NoLane LaneKind = iota

	// TupleLane identifies a lane by the road network edge (from, to)
	// that it lies on and its index on that edge
	TupleLane

	// BareLane identifies a lane by its index only
	BareLane
)

// LaneIndex identifies a lane. Simulators report lanes either as a
// (from, to, index) tuple or as a bare index, and LaneIndex represents
// both. The zero value is an unknown lane.
//
// Two LaneIndex values identify the same lane only if they have the same
// kind and all of their components are equal.
type LaneIndex struct {
	kind LaneKind
	from string
	to   string
	id   int
}

// Tuple returns the LaneIndex of lane id on the network edge (from, to)
func Tuple(from, to string, id int) LaneIndex {
	return LaneIndex{kind: TupleLane, from: from, to: to, id: id}
}

// Bare returns the LaneIndex of lane id
func Bare(id int) LaneIndex {
	return LaneIndex{kind: BareLane, id: id}
}

// Kind returns the kind of the LaneIndex
func (l LaneIndex) Kind() LaneKind {
	return l.kind
}

// Known returns whether the lane is known
func (l LaneIndex) Known() bool {
	return l.kind != NoLane
}

// Slot returns the numeric lane index: the third element of a tuple
// lane or the bare index itself. The returned bool is false if the
// lane is unknown.
func (l LaneIndex) Slot() (int, bool) {
	if !l.Known() {
		return 0, false
	}
	return l.id, true
}

// Edge returns the road network edge of a tuple lane. The returned bool
// is false for bare or unknown lanes.
func (l LaneIndex) Edge() (from, to string, ok bool) {
	if l.kind != TupleLane {
		return "", "", false
	}
	return l.from, l.to, true
}

// Equal returns whether l and other identify the same lane
func (l LaneIndex) Equal(other LaneIndex) bool {
	return l == other
}

func (l LaneIndex) String() string {
	switch l.Kind() {
	case TupleLane:
		return fmt.Sprintf("(%v, %v, %v)", l.from, l.to, l.id)
	case BareLane:
		return fmt.Sprint(l.id)
	default:
		return "None"
	}
}

// Field is a set of optional VehicleState fields
type Field uint8

const (
	FieldPosition Field = 1 << iota
	FieldSpeed
	FieldCrashed
)

// VehicleState is a read-only view of a single vehicle at one timestep.
// Fields not included in Present are unknown and must not be read. The
// lane is unknown if Lane is the zero LaneIndex.
type VehicleState struct {
	ID       int
	Position r2.Vec // X is longitudinal, Y is lateral
	Speed    float64
	Lane     LaneIndex
	Crashed  bool
	Present  Field
}

// Has returns whether all fields in f are known
func (v VehicleState) Has(f Field) bool {
	return v.Present&f == f
}

// KnownPosition returns the position and whether it is known
func (v VehicleState) KnownPosition() (r2.Vec, bool) {
	return v.Position, v.Has(FieldPosition)
}

// KnownSpeed returns the speed and whether it is known
func (v VehicleState) KnownSpeed() (float64, bool) {
	return v.Speed, v.Has(FieldSpeed)
}

// KnownCrashed returns the crashed flag and whether it is known
func (v VehicleState) KnownCrashed() (bool, bool) {
	return v.Crashed, v.Has(FieldCrashed)
}

// LaneNetwork describes the topology of a road network as the number of
// lanes on each edge, indexed by from node and then to node.
type LaneNetwork map[string]map[string]int

// Lanes returns the number of lanes on the edge (from, to)
func (n LaneNetwork) Lanes(from, to string) (int, bool) {
	tos, ok := n[from]
	if !ok {
		return 0, false
	}
	lanes, ok := tos[to]
	return lanes, ok
}

// FirstEdge returns the first edge of the network, ordering nodes by
// name.
func (n LaneNetwork) FirstEdge() (from, to string, ok bool) {
	froms := lo.Keys(n)
	slices.Sort(froms)

	for _, from := range froms {
		tos := lo.Keys(n[from])
		if len(tos) == 0 {
			continue
		}
		slices.Sort(tos)
		return from, tos[0], true
	}
	return "", "", false
}

// RoadState is a read-only view of a road: all vehicles on it, including
// the ego vehicle, and its lane network.
type RoadState struct {
	Vehicles []VehicleState
	Network  LaneNetwork
}

// Snapshot is a read-only view of the simulator world at one timestep.
// A nil Ego or Road means that the simulator could not provide it.
type Snapshot struct {
	Ego  *VehicleState
	Road *RoadState

	// LanesCount is the number of lanes set in the environment
	// configuration, valid only if HasLanesCount is true
	LanesCount    int
	HasLanesCount bool
}

// Info is the auxiliary information returned by a simulator step
type Info map[string]interface{}

// Keys of an Info mapping
const (
	InfoCrashed string = "crashed"
	InfoSpeed   string = "speed"
	InfoAction  string = "action"
)
