package highway

import (
	"math"

	"github.com/samuelfneumann/highwayrl/environment"
	"github.com/samuelfneumann/highwayrl/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

var normalized = r1.Interval{Min: -1, Max: 1}

// kinematics builds the kinematics observation of the ego vehicle
type kinematics struct {
	ObservationConfig
}

// Len returns the length of a flattened observation
func (k kinematics) Len() int {
	return k.VehiclesCount * len(k.Features)
}

// observe returns the observation of ego on road
func (k kinematics) observe(ego *Vehicle, road *Road) *mat.VecDense {
	obs := mat.NewVecDense(k.Len(), nil)
	k.fill(obs, 0, ego, nil)

	others := road.closest(ego, k.VehiclesCount-1, PerceptionRadius,
		k.SeeBehind)
	origin := ego
	if k.Absolute {
		origin = nil
	}
	for i, v := range others {
		k.fill(obs, i+1, v, origin)
	}
	return obs
}

// fill writes the features of v into row of obs. If origin is non-nil,
// positions and velocities are relative to it.
func (k kinematics) fill(obs *mat.VecDense, row int, v, origin *Vehicle) {
	for j, feature := range k.Features {
		value := k.feature(feature, v, origin)
		if bounds, ok := k.FeatureRange(feature); ok {
			value = floatutils.Lmap(value, bounds, normalized)
			value = floatutils.ClipInterval(value, normalized)
		}
		obs.SetVec(row*len(k.Features)+j, value)
	}
}

func (k kinematics) feature(feature string, v, origin *Vehicle) float64 {
	var dx, dy, dvx, dvy float64
	if origin != nil {
		dx, dy = origin.position.X, origin.position.Y
		dvx, dvy = origin.speed, origin.lateralSpeed()
	}

	switch feature {
	case Presence:
		return 1.0
	case X:
		return v.position.X - dx
	case Y:
		return v.position.Y - dy
	case VX:
		return v.speed - dvx
	case VY:
		return v.lateralSpeed() - dvy
	case CosH:
		return math.Cos(math.Atan2(v.lateralSpeed(), v.speed))
	case SinH:
		return math.Sin(math.Atan2(v.lateralSpeed(), v.speed))
	}
	panic("feature: no such feature " + feature)
}

// Spec returns the observation specification
func (k kinematics) Spec() environment.Spec {
	lower := make([]float64, k.Len())
	upper := make([]float64, k.Len())
	for row := 0; row < k.VehiclesCount; row++ {
		for j, feature := range k.Features {
			i := row*len(k.Features) + j
			switch {
			case feature == Presence:
				lower[i], upper[i] = 0, 1
			case feature == CosH || feature == SinH:
				lower[i], upper[i] = -1, 1
			default:
				if _, ok := k.FeatureRange(feature); ok {
					lower[i], upper[i] = normalized.Min, normalized.Max
				} else {
					lower[i], upper[i] = math.Inf(-1), math.Inf(1)
				}
			}
		}
	}

	shape := mat.NewVecDense(k.Len(), nil)
	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(k.Len(), lower), mat.NewVecDense(k.Len(), upper),
		environment.Continuous)
}
