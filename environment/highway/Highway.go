// Package highway implements a multi-lane highway driving environment
// with discrete meta-actions. The agent controls an ego vehicle through
// dense traffic following the intelligent driver model.
package highway

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/reward"
	ts "github.com/samuelfneumann/highwayrl/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete meta-actions
const (
	LaneLeft int = iota
	Idle
	LaneRight
	Faster
	Slower

	NumActions int = 5
	ActionDims int = 1
)

// ActionNames maps each meta-action to its name
var ActionNames = map[int]string{
	LaneLeft:  "LANE_LEFT",
	Idle:      "IDLE",
	LaneRight: "LANE_RIGHT",
	Faster:    "FASTER",
	Slower:    "SLOWER",
}

const (
	// Initial speed of the ego vehicle
	EgoSpeed float64 = 25.0

	// Bounds of the initial speed of background vehicles
	MinVehicleSpeed float64 = 21.0
	MaxVehicleSpeed float64 = 24.0
)

// Highway implements the highway environment.
//
// On each step the agent picks one of the meta-actions:
//
//	Action	Meaning
//	  0		Change to the lane on the left
//	  1		Keep lane and target speed
//	  2		Change to the lane on the right
//	  3		Increase the target speed
//	  4		Decrease the target speed
//
// Lane changes off the road and target speeds outside the configured
// TargetSpeeds are ignored. Each policy step simulates
// SimulationFrequency / PolicyFrequency frames.
//
// Observations are kinematics observations, see ObservationConfig.
// Rewards are given by the Cruise task.
//
// Highway implements the environment.Environment interface
type Highway struct {
	*Cruise
	config     Config
	observer   kinematics
	road       *Road
	ego        *Vehicle
	speedIndex int
	lastAction int // -1 before the first action of an episode

	rng      *rand.Rand
	speeds   distuv.Uniform
	spacing  distuv.Uniform
	discount float64
	lastStep ts.TimeStep
}

// New creates a new Highway environment seeded with seed and returns
// it along with the first step of the first episode
func New(c Config, discount float64, seed uint64) (*Highway, ts.TimeStep,
	error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	rng := rand.New(rand.NewSource(seed))
	h := &Highway{
		Cruise:   NewCruise(c),
		config:   c,
		observer: kinematics{c.Observation},
		rng:      rng,
		speeds: distuv.Uniform{
			Min: MinVehicleSpeed,
			Max: MaxVehicleSpeed,
			Src: rng,
		},
		spacing:  distuv.Uniform{Min: 0.9, Max: 1.1, Src: rng},
		discount: discount,
	}

	step, err := h.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return h, step, nil
}

// Seed reseeds the environment. The next call to Reset() starts an
// episode determined only by seed.
func (h *Highway) Seed(seed uint64) {
	h.rng.Seed(seed)
}

// Config returns the configuration of the environment
func (h *Highway) Config() Config {
	return h.config
}

// Reset resets the environment, populating a new road with traffic
func (h *Highway) Reset() (ts.TimeStep, error) {
	h.populate()
	h.lastAction = -1

	h.lastStep = ts.New(ts.First, 0, h.discount, h.observe(), 0)
	return h.lastStep, nil
}

// populate creates a new road with the ego vehicle and background
// traffic ahead of it
func (h *Highway) populate() {
	c := h.config
	h.road = newRoad(c.LanesCount)

	lane := c.InitialLaneID
	if lane < 0 {
		lane = h.rng.Intn(c.LanesCount)
	}
	h.ego = newEgo(0, 0, lane, EgoSpeed)
	h.speedIndex = closestIndex(c.TargetSpeeds, EgoSpeed)
	h.ego.targetSpeed = c.TargetSpeeds[h.speedIndex]
	h.road.add(h.ego)

	x := h.ego.position.X + h.offset(c.EgoSpacing, EgoSpeed)
	for id := 1; id <= c.VehiclesCount; id++ {
		speed := h.speeds.Rand()
		x += h.offset(1.0, speed) * h.spacing.Rand()
		h.road.add(newVehicle(id, x, h.rng.Intn(c.LanesCount), speed))
	}
}

// offset returns the nominal longitudinal distance to the next spawned
// vehicle
func (h *Highway) offset(spacing, speed float64) float64 {
	lanes := float64(h.config.LanesCount)
	return spacing / h.config.VehiclesDensity * (12 + speed) *
		math.Exp(-5.0/40.0*lanes)
}

// Step takes one environmental step given action a and returns the next
// timestep and whether or not it is the last in the episode. Actions
// must be 1-dimensional and in {0, 1, 2, 3, 4}.
func (h *Highway) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if h.lastStep.Last() {
		return ts.TimeStep{}, true, fmt.Errorf("step: episode has ended, " +
			"call Reset() first")
	}
	action, err := h.action(a)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}

	h.act(action)
	frames := h.config.SimulationFrequency / h.config.PolicyFrequency
	dt := 1.0 / float64(h.config.SimulationFrequency)
	for i := 0; i < frames; i++ {
		h.road.step(dt)
	}
	h.lastAction = action

	r := h.GetReward(h.ego, h.road.Lanes())
	nextStep := ts.New(ts.Mid, r, h.discount, h.observe(),
		h.lastStep.Number+1)
	last := h.End(&nextStep, h.ego.crashed)

	h.lastStep = nextStep
	return nextStep, last, nil
}

// action validates a and returns the meta-action it encodes
func (h *Highway) action(a *mat.VecDense) (int, error) {
	if a == nil || a.Len() != ActionDims {
		return 0, fmt.Errorf("action: actions should be %v-dimensional",
			ActionDims)
	}

	value := a.AtVec(0)
	action := int(value)
	if float64(action) != value || action < 0 || action >= NumActions {
		return 0, fmt.Errorf("action: illegal action %v \n\twant(0 <= a < "+
			"%v)", value, NumActions)
	}
	return action, nil
}

// act applies a meta-action to the ego vehicle
func (h *Highway) act(action int) {
	switch action {
	case LaneLeft:
		if h.ego.targetLane > 0 {
			h.ego.targetLane--
		}
	case LaneRight:
		if h.ego.targetLane < h.road.Lanes()-1 {
			h.ego.targetLane++
		}
	case Faster:
		h.speedIndex = lo.Min([]int{h.speedIndex + 1,
			len(h.config.TargetSpeeds) - 1})
	case Slower:
		h.speedIndex = lo.Max([]int{h.speedIndex - 1, 0})
	}
	h.ego.targetSpeed = h.config.TargetSpeeds[h.speedIndex]
}

func (h *Highway) observe() *mat.VecDense {
	return h.observer.observe(h.ego, h.road)
}

// WorldView returns a snapshot of the ego vehicle and the road. Every
// field of every vehicle is known.
func (h *Highway) WorldView() reward.Snapshot {
	ego := h.road.State(h.ego)
	vehicles := lo.Map(h.road.Vehicles(),
		func(v *Vehicle, _ int) reward.VehicleState {
			return h.road.State(v)
		})

	return reward.Snapshot{
		Ego: &ego,
		Road: &reward.RoadState{
			Vehicles: vehicles,
			Network:  h.road.Network(),
		},
		LanesCount:    h.config.LanesCount,
		HasLanesCount: true,
	}
}

// Info returns diagnostic information about the last step
func (h *Highway) Info() reward.Info {
	return reward.Info{
		reward.InfoSpeed:   h.ego.speed,
		reward.InfoCrashed: h.ego.crashed,
		reward.InfoAction:  h.lastAction,
	}
}

// Ego returns the ego vehicle
func (h *Highway) Ego() *Vehicle {
	return h.ego
}

// Road returns the road of the current episode
func (h *Highway) Road() *Road {
	return h.road
}

// CurrentTimeStep returns the last timestep of the environment
func (h *Highway) CurrentTimeStep() ts.TimeStep {
	return h.lastStep
}

// ObservationSpec returns the observation specification of the
// environment
func (h *Highway) ObservationSpec() environment.Spec {
	return h.observer.Spec()
}

// ActionSpec returns the action specification of the environment
func (h *Highway) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, []float64{0})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(NumActions - 1)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// DiscountSpec returns the discounting specification of the environment
func (h *Highway) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{h.discount})
	upperBound := mat.NewVecDense(1, []float64{h.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (h *Highway) Close() error {
	return nil
}

func (h *Highway) String() string {
	str := "Highway  |  Lanes: %v  |  Vehicles: %v  |  Step: %v  |  %v"
	return fmt.Sprintf(str, h.road.Lanes(), len(h.road.Vehicles()),
		h.lastStep.Number, h.ego)
}

// closestIndex returns the index of the value in values closest to v
func closestIndex(values []float64, v float64) int {
	best := 0
	for i, value := range values {
		if math.Abs(value-v) < math.Abs(values[best]-v) {
			best = i
		}
	}
	return best
}
