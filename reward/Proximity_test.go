package reward

import (
	"errors"
	"testing"
)

func TestIsUnsafeGap(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)

	otherEdge := vehicle(5, 103, 1, 25)
	otherEdge.Lane = Tuple("1", "2", 1)

	bareSameSlot := vehicle(6, 103, 1, 25)
	bareSameSlot.Lane = Bare(1)

	noLane := vehicle(7, 101, 1, 25)
	noLane.Lane = LaneIndex{}

	tests := []struct {
		name   string
		others []VehicleState
		want   bool
	}{
		{"empty road", nil, false},
		{"far ahead", []VehicleState{vehicle(1, 115, 1, 20)}, false},
		{"close ahead", []VehicleState{vehicle(1, 105, 1, 20)}, true},
		{"exactly at threshold", []VehicleState{vehicle(1, 110, 1, 20)}, false},
		{"just inside threshold", []VehicleState{vehicle(1, 109.99, 1, 20)}, true},
		{"close behind", []VehicleState{vehicle(1, 95, 1, 20)}, false},
		{"level with ego", []VehicleState{vehicle(1, 100, 1, 20)}, false},
		{"adjacent lane", []VehicleState{vehicle(1, 101, 0, 20)}, false},
		{"other edge", []VehicleState{otherEdge}, false},
		{"bare lane with same slot", []VehicleState{bareSameSlot}, false},
		{"unknown lane", []VehicleState{noLane}, false},
		{"nearest decides", []VehicleState{
			vehicle(1, 150, 1, 20),
			vehicle(2, 108, 1, 20),
			vehicle(3, 95, 1, 20),
		}, true},
	}

	for _, test := range tests {
		got, err := IsUnsafeGap(c, scene(ego, test.others...))
		if err != nil {
			t.Errorf("%v: unexpected error %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("%v: want(%v) have(%v)", test.name, test.want, got)
		}
	}
}

func TestNearestAhead(t *testing.T) {
	ego := vehicle(0, 100, 1, 25)
	s := scene(ego, vehicle(1, 140, 1, 20), vehicle(2, 115, 1, 20),
		vehicle(3, 90, 1, 20), vehicle(4, 102, 2, 20))

	gap, found, err := NearestAhead(s)
	if err != nil || !found || gap != 15 {
		t.Errorf("want(15, true, nil) have(%v, %v, %v)", gap, found, err)
	}
}

func TestIsUnsafeGapDegrades(t *testing.T) {
	c := testConfig()

	noPosition := vehicle(1, 105, 1, 20)
	noPosition.Present &^= FieldPosition

	noLaneEgo := vehicle(0, 100, 1, 25)
	noLaneEgo.Lane = LaneIndex{}

	noPositionEgo := vehicle(0, 100, 1, 25)
	noPositionEgo.Present &^= FieldPosition

	noRoad := scene(vehicle(0, 100, 1, 25), vehicle(1, 105, 1, 20))
	noRoad.Road = nil

	tests := []struct {
		name string
		s    Snapshot
		want error
	}{
		{"no ego", Snapshot{}, ErrNoEgo},
		{"no road", noRoad, ErrNoRoad},
		{"ego without lane", scene(noLaneEgo, vehicle(1, 105, 1, 20)), ErrNoLane},
		{"ego without position", scene(noPositionEgo), ErrNoPosition},
		{"scan fault", scene(vehicle(0, 100, 1, 25), vehicle(2, 103, 1, 20),
			noPosition), ErrScanFault},
	}

	for _, test := range tests {
		got, err := IsUnsafeGap(c, test.s)
		if got {
			t.Errorf("%v: want(false) have(true)", test.name)
		}
		if !errors.Is(err, test.want) {
			t.Errorf("%v: error want(%v) have(%v)", test.name, test.want, err)
		}
	}
}

func TestIsUnsafeGapSkipsEgo(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)

	// The ego vehicle appears in the road's vehicles and must never be
	// its own nearest vehicle, even if its recorded position differs
	shifted := ego
	shifted.Position.X = 105
	s := scene(ego)
	s.Road.Vehicles = append(s.Road.Vehicles, shifted)

	if got, _ := IsUnsafeGap(c, s); got {
		t.Error("ego vehicle should be skipped during the scan")
	}
}
