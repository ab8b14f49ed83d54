package reward

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestSpeedRewardBounds(t *testing.T) {
	c := testConfig()

	tests := []struct {
		speed, want float64
	}{
		{-5, 0},
		{0, 0},
		{20, 0},
		{22.5, 0.25},
		{25, 0.5},
		{30, 1},
		{45, 1},
	}

	for _, test := range tests {
		s := scene(vehicle(0, 0, 0, test.speed))
		got, err := SpeedReward(c, s)
		if err != nil {
			t.Errorf("speed %v: unexpected error %v", test.speed, err)
		}
		if math.Abs(got-test.want) > tolerance {
			t.Errorf("speed %v: want(%v) have(%v)", test.speed, test.want, got)
		}
	}
}

func TestSpeedRewardMonotone(t *testing.T) {
	c := testConfig()

	last := math.Inf(-1)
	for v := 0.0; v <= 40; v += 0.25 {
		got, _ := SpeedReward(c, scene(vehicle(0, 0, 0, v)))
		if got < last {
			t.Fatalf("speed reward decreased at %v: %v < %v", v, got, last)
		}
		if got < 0 || got > 1 {
			t.Fatalf("speed reward out of bounds at %v: %v", v, got)
		}
		last = got
	}
}

func TestSpeedRewardDegrades(t *testing.T) {
	c := testConfig()

	noSpeed := vehicle(0, 0, 0, 25)
	noSpeed.Present &^= FieldSpeed

	empty := c
	empty.SpeedRange = r1.Interval{Min: 30, Max: 30}

	tests := []struct {
		name string
		c    Config
		s    Snapshot
		want error
	}{
		{"no ego", c, Snapshot{}, ErrNoEgo},
		{"no speed", c, scene(noSpeed), ErrNoSpeed},
		{"empty range", empty, scene(vehicle(0, 0, 0, 25)), ErrEmptySpeedRange},
	}

	for _, test := range tests {
		got, err := SpeedReward(test.c, test.s)
		if got != 0 {
			t.Errorf("%v: want(0) have(%v)", test.name, got)
		}
		if !errors.Is(err, test.want) {
			t.Errorf("%v: error want(%v) have(%v)", test.name, test.want, err)
		}
	}
}

func TestLaneSlot(t *testing.T) {
	tuple := vehicle(0, 0, 2, 25)

	bare := vehicle(0, 0, 0, 25)
	bare.Lane = Bare(3)

	none := vehicle(0, 0, 0, 25)
	none.Lane = LaneIndex{}

	tests := []struct {
		name string
		s    Snapshot
		want int
		err  error
	}{
		{"tuple", scene(tuple), 2, nil},
		{"bare", scene(bare), 3, nil},
		{"none", scene(none), 0, ErrNoLane},
		{"no ego", Snapshot{}, 0, ErrNoEgo},
	}

	for _, test := range tests {
		got, err := LaneSlot(test.s)
		if got != test.want || !errors.Is(err, test.err) {
			t.Errorf("%v: want(%v, %v) have(%v, %v)", test.name, test.want,
				test.err, got, err)
		}
	}
}

func TestLaneIndexKind(t *testing.T) {
	tests := []struct {
		lane LaneIndex
		kind LaneKind
		str  string
	}{
		{Tuple("0", "1", 2), TupleLane, "(0, 1, 2)"},
		{Bare(3), BareLane, "3"},
		{LaneIndex{}, NoLane, "None"},
	}

	for _, test := range tests {
		if got := test.lane.Kind(); got != test.kind {
			t.Errorf("%v: kind want(%v) have(%v)", test.str, test.kind, got)
		}
		if got := test.lane.String(); got != test.str {
			t.Errorf("string: want(%v) have(%v)", test.str, got)
		}
	}
}
