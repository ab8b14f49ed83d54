package highway

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	VehicleLength float64 = 5.0 // m
	VehicleWidth  float64 = 2.0 // m
	LaneWidth     float64 = 4.0 // m
	MaxSpeed      float64 = 40.0

	// Intelligent driver model parameters of the background traffic
	MaxAcceleration  float64 = 6.0  // m/s²
	ComfortAccMax    float64 = 3.0  // m/s²
	ComfortAccMin    float64 = -5.0 // m/s²
	MaxBraking       float64 = -9.0 // m/s²
	DistanceWanted   float64 = 5.0 + VehicleLength
	TimeWanted       float64 = 1.5 // s
	Delta            float64 = 4.0
	LaneChangeTime   float64 = 1.0 // s to move one lane over
	SpeedTimeConst   float64 = 0.6 // s, speed controller of the ego vehicle
	PerceptionRadius float64 = 5 * MaxSpeed
)

// Vehicle is a single vehicle on the highway. Background vehicles follow
// the intelligent driver model in their lane. The ego vehicle tracks a
// target speed and a target lane set by the agent's actions.
type Vehicle struct {
	id          int
	position    r2.Vec
	speed       float64
	targetSpeed float64
	targetLane  int
	crashed     bool
	controlled  bool
}

// newVehicle returns a background vehicle at longitudinal position x in
// lane
func newVehicle(id int, x float64, lane int, speed float64) *Vehicle {
	return &Vehicle{
		id:          id,
		position:    r2.Vec{X: x, Y: laneCenter(lane)},
		speed:       speed,
		targetSpeed: speed,
		targetLane:  lane,
	}
}

// newEgo returns a controlled vehicle at longitudinal position x in lane
func newEgo(id int, x float64, lane int, speed float64) *Vehicle {
	v := newVehicle(id, x, lane, speed)
	v.controlled = true
	return v
}

// ID returns the vehicle's identifier, unique on its road
func (v *Vehicle) ID() int { return v.id }

// Position returns the vehicle's position. X is longitudinal and Y is
// lateral, increasing with the lane index.
func (v *Vehicle) Position() r2.Vec { return v.position }

// Speed returns the vehicle's longitudinal speed
func (v *Vehicle) Speed() float64 { return v.speed }

// Crashed returns whether the vehicle has collided
func (v *Vehicle) Crashed() bool { return v.crashed }

// Lane returns the lane closest to the vehicle's lateral position
func (v *Vehicle) Lane() int {
	return int(math.Round(v.position.Y / LaneWidth))
}

// lateralSpeed returns the signed lateral speed of the vehicle
func (v *Vehicle) lateralSpeed() float64 {
	dy := laneCenter(v.targetLane) - v.position.Y
	if dy == 0 || v.crashed {
		return 0
	}
	return math.Copysign(LaneWidth/LaneChangeTime, dy)
}

// follow returns the intelligent driver model acceleration given the
// vehicle ahead and the bumper to bumper gap to it. A nil front vehicle
// means the lane ahead is free.
func (v *Vehicle) follow(front *Vehicle, gap float64) float64 {
	targetSpeed := math.Max(v.targetSpeed, 1e-3)
	acc := MaxAcceleration * (1 - math.Pow(math.Max(v.speed, 0)/targetSpeed,
		Delta))

	if front != nil {
		if gap <= 0 {
			return MaxBraking
		}
		dv := v.speed - front.speed
		wanted := DistanceWanted + math.Max(0, v.speed*TimeWanted+
			v.speed*dv/(2*math.Sqrt(ComfortAccMax*-ComfortAccMin)))
		acc -= MaxAcceleration * math.Pow(wanted/gap, 2)
	}
	return lo.Clamp(acc, MaxBraking, MaxAcceleration)
}

// control returns the acceleration of the ego vehicle's speed controller
func (v *Vehicle) control() float64 {
	acc := (v.targetSpeed - v.speed) / SpeedTimeConst
	return lo.Clamp(acc, MaxBraking, MaxAcceleration)
}

// integrate advances the vehicle by dt seconds under acceleration acc
func (v *Vehicle) integrate(acc, dt float64) {
	if v.crashed {
		v.speed = 0
		return
	}

	v.speed = lo.Clamp(v.speed+acc*dt, 0, MaxSpeed)
	v.position.X += v.speed * dt

	dy := laneCenter(v.targetLane) - v.position.Y
	step := LaneWidth / LaneChangeTime * dt
	if math.Abs(dy) <= step {
		v.position.Y += dy
	} else {
		v.position.Y += math.Copysign(step, dy)
	}
}

// collides returns whether v and other overlap
func (v *Vehicle) collides(other *Vehicle) bool {
	dx := math.Abs(v.position.X - other.position.X)
	dy := math.Abs(v.position.Y - other.position.Y)
	return dx < VehicleLength && dy < VehicleWidth
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle #%v  |  Position: (%.2f, %.2f)  |  "+
		"Speed: %.2f  |  Lane: %v  |  Crashed: %v", v.id, v.position.X,
		v.position.Y, v.speed, v.Lane(), v.crashed)
}

// laneCenter returns the lateral position of the center of a lane
func laneCenter(lane int) float64 {
	return float64(lane) * LaneWidth
}
