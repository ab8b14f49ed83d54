package wrappers

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/reward"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
)

// scripted is an environment that replays a fixed sequence of world
// views and native rewards. views[0] is the view after Reset() and
// views[i] the view after the ith step.
type scripted struct {
	views  []reward.Snapshot
	native []float64
	info   reward.Info
	i      int
	seed   uint64
	last   ts.TimeStep
}

func (s *scripted) obs() *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(s.i)})
}

func (s *scripted) Reset() (ts.TimeStep, error) {
	s.i = 0
	s.last = ts.New(ts.First, 0, 0.9, s.obs(), 0)
	return s.last, nil
}

func (s *scripted) Step(*mat.VecDense) (ts.TimeStep, bool, error) {
	s.i++
	step := ts.New(ts.Mid, s.native[s.i-1], 0.9, s.obs(), s.i)
	if s.i == len(s.views)-1 {
		step.SetEnd(ts.Timeout)
	}
	s.last = step
	return step, step.Last(), nil
}

func (s *scripted) WorldView() reward.Snapshot   { return s.views[s.i] }
func (s *scripted) Info() reward.Info            { return s.info }
func (s *scripted) CurrentTimeStep() ts.TimeStep { return s.last }
func (s *scripted) Close() error                 { return nil }
func (s *scripted) Seed(seed uint64)             { s.seed = seed }

func (s *scripted) spec(t environment.SpecType) environment.Spec {
	v := mat.NewVecDense(1, []float64{1})
	return environment.NewSpec(v, t, v, v, environment.Continuous)
}

func (s *scripted) RewardSpec() environment.Spec {
	return s.spec(environment.Reward)
}

func (s *scripted) DiscountSpec() environment.Spec {
	return s.spec(environment.Discount)
}

func (s *scripted) ObservationSpec() environment.Spec {
	return s.spec(environment.Observation)
}

func (s *scripted) ActionSpec() environment.Spec {
	return s.spec(environment.Action)
}

func car(id int, x float64, lane int, speed float64) reward.VehicleState {
	return reward.VehicleState{
		ID:       id,
		Position: r2.Vec{X: x, Y: 4 * float64(lane)},
		Speed:    speed,
		Lane:     reward.Tuple("0", "1", lane),
		Present: reward.FieldPosition | reward.FieldSpeed |
			reward.FieldCrashed,
	}
}

func view(ego reward.VehicleState,
	others ...reward.VehicleState) reward.Snapshot {
	return reward.Snapshot{
		Ego: &ego,
		Road: &reward.RoadState{
			Vehicles: append([]reward.VehicleState{ego}, others...),
			Network:  reward.LaneNetwork{"0": {"1": 4}},
		},
		LanesCount:    4,
		HasLanesCount: true,
	}
}

func shapingConfig() reward.Config {
	c := reward.DefaultConfig()
	c.SpeedRange = r1.Interval{Min: 20, Max: 30}
	return c
}

func newShaping(t *testing.T, env *scripted) *RewardShaping {
	r, _, err := NewRewardShaping(env, shapingConfig())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRewardShapingCruise(t *testing.T) {
	env := &scripted{
		views: []reward.Snapshot{
			view(car(0, 85, 1, 25), car(1, 112, 1, 22)),
			view(car(0, 100, 1, 25), car(1, 115, 1, 22)),
		},
		native: []float64{0.3},
		info:   reward.Info{},
	}
	r := newShaping(t, env)

	step, last, err := r.Step(mat.NewVecDense(1, []float64{1}))
	if err != nil {
		t.Fatal(err)
	}

	want := 0.3 + 0.5 + 0.2*(2.0/3.0)
	if math.Abs(step.Reward-want) > 1e-9 {
		t.Errorf("reward: want(%v) have(%v)", want, step.Reward)
	}
	if math.Abs(r.LastResult().Shaped-0.6333) > 1e-4 {
		t.Errorf("shaped: want(≈0.6333) have(%v)", r.LastResult().Shaped)
	}
	if r.LastResult().LaneChanged {
		t.Error("first step in the same lane should not change lanes")
	}

	// Everything but the reward passes through
	if !last || !step.Truncated() {
		t.Error("end type should pass through")
	}
	if step.Discount != 0.9 || step.Observation.AtVec(0) != 1 ||
		step.Number != 1 {
		t.Errorf("step should pass through: %v", step)
	}
	if r.CurrentTimeStep().Reward != step.Reward {
		t.Error("current timestep should hold the combined reward")
	}
}

func TestRewardShapingCrash(t *testing.T) {
	ego := car(0, 100, 1, 25)
	ego.Crashed = true
	env := &scripted{
		views: []reward.Snapshot{
			view(car(0, 85, 1, 25)),
			view(ego, car(1, 115, 1, 22)),
		},
		native: []float64{0},
	}
	r := newShaping(t, env)

	step, _, err := r.Step(mat.NewVecDense(1, []float64{1}))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(step.Reward-(-1.3667)) > 1e-4 {
		t.Errorf("reward: want(≈-1.3667) have(%v)", step.Reward)
	}
}

func TestRewardShapingLaneChanges(t *testing.T) {
	lanes := []int{1, 1, 2, 2, -1, -1, 3, 0}
	want := []bool{false, true, false, false, false, false, true}

	views := make([]reward.Snapshot, len(lanes))
	for i, lane := range lanes {
		ego := car(0, float64(20*i), lane, 25)
		if lane < 0 {
			ego.Lane = reward.LaneIndex{}
		}
		views[i] = view(ego)
	}
	env := &scripted{views: views, native: make([]float64, len(lanes))}
	r := newShaping(t, env)

	for i := range want {
		if _, _, err := r.Step(nil); err != nil {
			t.Fatal(err)
		}
		if got := r.LastResult().LaneChanged; got != want[i] {
			t.Errorf("step %v: lane changed want(%v) have(%v)", i+1, want[i],
				got)
		}
	}
}

func TestRewardShapingResetTracksNewLane(t *testing.T) {
	env := &scripted{
		views: []reward.Snapshot{
			view(car(0, 0, 2, 25)),
			view(car(0, 25, 0, 25)),
			view(car(0, 50, 0, 25)),
		},
		native: []float64{0, 0},
	}
	r := newShaping(t, env)

	if _, _, err := r.Step(nil); err != nil {
		t.Fatal(err)
	}
	if !r.LastResult().LaneChanged {
		t.Fatal("lane 2 to lane 0 should be a lane change")
	}

	// After a reset the tracker holds lane 2 again
	if _, err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	if lane, ok := r.Tracker().Previous(); !ok || lane != 2 {
		t.Errorf("tracker after reset: want(2, true) have(%v, %v)", lane, ok)
	}
	if r.LastResult().Total != 0 {
		t.Error("last result should be cleared on reset")
	}
}

func TestRewardShapingDeterministic(t *testing.T) {
	script := func() *scripted {
		return &scripted{
			views: []reward.Snapshot{
				view(car(0, 0, 1, 20), car(1, 30, 1, 20)),
				view(car(0, 25, 1, 24), car(1, 32, 1, 20)),
				view(car(0, 50, 2, 27), car(1, 55, 2, 20)),
				{},
				view(car(0, 100, 2, 31)),
			},
			native: []float64{0.1, 0.2, 0.3, 0.4},
		}
	}
	first, second := newShaping(t, script()), newShaping(t, script())

	for i := 0; i < 4; i++ {
		s1, _, _ := first.Step(nil)
		s2, _, _ := second.Step(nil)
		if s1.Reward != s2.Reward {
			t.Errorf("step %v: rewards differ %v != %v", i, s1.Reward,
				s2.Reward)
		}
	}
}

func TestRewardShapingLogsDegradedTerms(t *testing.T) {
	env := &scripted{
		views:  []reward.Snapshot{view(car(0, 0, 1, 25)), {}},
		native: []float64{0.5},
	}
	r := newShaping(t, env)

	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	r.SetLogger(logger)

	step, _, err := r.Step(nil)
	if err != nil {
		t.Fatal(err)
	}
	if step.Reward != 0.5 {
		t.Errorf("degraded terms should be neutral: want(0.5) have(%v)",
			step.Reward)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(reward.Terms) {
		t.Errorf("want %v log lines, have %v: %v", len(reward.Terms),
			len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "term=speed") {
		t.Errorf("log lines should carry the term: %v", lines[0])
	}
}

func TestRewardShapingValidatesConfig(t *testing.T) {
	c := shapingConfig()
	c.UnsafeDistance = -1
	if _, _, err := NewRewardShaping(&scripted{}, c); err == nil {
		t.Error("expected error for a negative unsafe distance")
	}
}

func TestRewardShapingSeed(t *testing.T) {
	env := &scripted{
		views:  []reward.Snapshot{view(car(0, 0, 1, 25))},
		native: []float64{},
	}
	r := newShaping(t, env)
	r.Seed(11)
	if env.seed != 11 {
		t.Errorf("seed should pass through: want(11) have(%v)", env.seed)
	}
	if r.RewardSpec().LowerBound != nil {
		t.Error("shaped rewards should be unbounded")
	}
}
