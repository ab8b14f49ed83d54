package reward

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
)

const tolerance = 1e-9

// vehicle returns a fully known vehicle on lane ("0", "1", lane)
func vehicle(id int, x float64, lane int, speed float64) VehicleState {
	return VehicleState{
		ID:       id,
		Position: r2.Vec{X: x, Y: 4 * float64(lane)},
		Speed:    speed,
		Lane:     Tuple("0", "1", lane),
		Present:  FieldPosition | FieldSpeed | FieldCrashed,
	}
}

// scene returns a Snapshot of a 4-lane road with the ego vehicle and
// others on it
func scene(ego VehicleState, others ...VehicleState) Snapshot {
	vehicles := append([]VehicleState{ego}, others...)
	return Snapshot{
		Ego: &ego,
		Road: &RoadState{
			Vehicles: vehicles,
			Network:  LaneNetwork{"0": {"1": 4}},
		},
		LanesCount:    4,
		HasLanesCount: true,
	}
}

func testConfig() Config {
	return Config{
		AlphaSpeed:       1.0,
		BetaRightLane:    0.2,
		GammaCrash:       2.0,
		DeltaUnsafe:      0.5,
		LambdaLaneChange: 0.05,
		UnsafeDistance:   10.0,
		SpeedRange:       r1.Interval{Min: 20, Max: 30},
	}
}

func TestComposeCruise(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)
	s := scene(ego, vehicle(1, 115, 1, 22))

	tracker := TrackerFor(s)
	r, _ := Compose(c, s, 0.3, Info{}, tracker)

	want := 1.0*0.5 + 0.2*(2.0/3.0)
	if math.Abs(r.Shaped-want) > tolerance {
		t.Errorf("shaped: want(%v) have(%v)", want, r.Shaped)
	}
	if math.Abs(r.Shaped-0.6333) > 1e-4 {
		t.Errorf("shaped: want(≈0.6333) have(%v)", r.Shaped)
	}
	if math.Abs(r.Total-(0.3+want)) > tolerance {
		t.Errorf("total: want(%v) have(%v)", 0.3+want, r.Total)
	}
	if r.Degraded != nil {
		t.Errorf("no term should degrade: %v", r.Degraded)
	}
}

func TestComposeCrash(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)
	ego.Crashed = true
	s := scene(ego, vehicle(1, 115, 1, 22))

	r, _ := Compose(c, s, 0.0, Info{}, TrackerFor(s))

	want := 1.0*0.5 + 0.2*(2.0/3.0) - 2.0
	if math.Abs(r.Shaped-want) > tolerance {
		t.Errorf("shaped: want(%v) have(%v)", want, r.Shaped)
	}
	if math.Abs(r.Shaped-(-1.3667)) > 1e-4 {
		t.Errorf("shaped: want(≈-1.3667) have(%v)", r.Shaped)
	}
}

func TestComposeAllPenalties(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 2, 30)
	ego.Crashed = true
	s := scene(ego, vehicle(1, 105, 2, 22))

	// Previous lane 1, current lane 2
	r, next := Compose(c, s, 0.0, Info{}, NewLaneTracker(1, true))

	want := 1.0*1.0 + 0.2*(1.0/3.0) - 2.0 - 0.5 - 0.05
	if math.Abs(r.Shaped-want) > tolerance {
		t.Errorf("shaped: want(%v) have(%v)", want, r.Shaped)
	}
	if !r.Crashed || !r.Unsafe || !r.LaneChanged {
		t.Errorf("all penalties should apply: %v", r)
	}
	if lane, ok := next.Previous(); !ok || lane != 2 {
		t.Errorf("next tracker: want(2, true) have(%v, %v)", lane, ok)
	}
}

func TestComposeContributionSigns(t *testing.T) {
	c := testConfig()

	ego := vehicle(0, 100, 1, 25)
	ego.Crashed = true
	s := scene(ego, vehicle(1, 105, 1, 22))

	r, _ := Compose(c, s, 0.0, Info{}, NewLaneTracker(2, true))
	for _, term := range []Term{Crash, UnsafeGap, LaneChange} {
		if got := r.Contribution(c, term); got >= 0 {
			t.Errorf("%v contribution: want(<0) have(%v)", term, got)
		}
	}
	for _, term := range []Term{Speed, RightLane} {
		if got := r.Contribution(c, term); got < 0 {
			t.Errorf("%v contribution: want(>=0) have(%v)", term, got)
		}
	}
}

func TestComposeDegradesToNeutral(t *testing.T) {
	c := testConfig()

	r, next := Compose(c, Snapshot{}, 1.5, Info{}, NewLaneTracker(2, true))
	if r.Shaped != 0 {
		t.Errorf("shaped: want(0) have(%v)", r.Shaped)
	}
	if r.Total != 1.5 {
		t.Errorf("total: want(1.5) have(%v)", r.Total)
	}
	for _, term := range Terms {
		err, ok := r.Degraded[term]
		if !ok {
			t.Errorf("term %v should degrade", term)
			continue
		}
		if got := NeutralValue(term); got != 0 {
			t.Errorf("term %v: neutral value want(0) have(%v)", term, got)
		}
		var termErr *TermError
		if !errors.As(err, &termErr) || termErr.Term != term {
			t.Errorf("term %v: want *TermError for term, have(%v)", term, err)
		}
	}
	if _, ok := next.Previous(); ok {
		t.Error("next tracker should hold an unknown lane")
	}
}

func TestComposeCrashFallsBackToInfo(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)
	ego.Present &^= FieldCrashed
	s := scene(ego)

	r, _ := Compose(c, s, 0.0, Info{InfoCrashed: true}, TrackerFor(s))
	if !r.Crashed {
		t.Error("crash should be read from info")
	}
	if _, ok := r.Degraded[Crash]; ok {
		t.Error("crash should not degrade when info has the flag")
	}

	r, _ = Compose(c, s, 0.0, Info{}, TrackerFor(s))
	if r.Crashed {
		t.Error("crash should degrade to false")
	}
	if !errors.Is(r.Degraded[Crash], ErrNoCrashFlag) {
		t.Errorf("crash degrade reason: want(%v) have(%v)", ErrNoCrashFlag,
			r.Degraded[Crash])
	}
}

func TestComposeCrashPrefersEgoFlag(t *testing.T) {
	c := testConfig()
	ego := vehicle(0, 100, 1, 25)
	s := scene(ego)

	r, _ := Compose(c, s, 0.0, Info{InfoCrashed: true}, TrackerFor(s))
	if r.Crashed {
		t.Error("ego crashed flag should take precedence over info")
	}
}

func TestComposeDeterministic(t *testing.T) {
	c := testConfig()
	script := []Snapshot{
		scene(vehicle(0, 0, 1, 20), vehicle(1, 30, 1, 20)),
		scene(vehicle(0, 25, 1, 24), vehicle(1, 32, 1, 20)),
		scene(vehicle(0, 50, 2, 27), vehicle(1, 60, 2, 20)),
		{},
		scene(vehicle(0, 100, 2, 31), vehicle(1, 90, 2, 20)),
		scene(vehicle(0, 130, 0, 19)),
	}

	run := func() []float64 {
		tracker := TrackerFor(script[0])
		var rewards []float64
		for _, s := range script[1:] {
			var r Result
			r, tracker = Compose(c, s, 0.1, Info{}, tracker)
			rewards = append(rewards, r.Total)
		}
		return rewards
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("step %v: rewards differ %v != %v", i, first[i],
				second[i])
		}
	}
}

func BenchmarkCompose(b *testing.B) {
	c := testConfig()
	others := make([]VehicleState, 50)
	for i := range others {
		others[i] = vehicle(i+1, float64(i*20), i%4, 22)
	}
	s := scene(vehicle(0, 500, 1, 25), others...)
	tracker := TrackerFor(s)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, tracker = Compose(c, s, 0, Info{}, tracker)
	}
}
