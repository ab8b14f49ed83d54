// Package reward implements reward shaping for multi-lane highway
// driving.
//
// At every simulation step, a Snapshot of the simulator's world state is
// inspected and five independent terms are combined with the
// simulator's native reward:
//
//	shaped = AlphaSpeed       * speed reward in [0, 1]
//	       + BetaRightLane    * right lane reward in [0, 1]
//	       - GammaCrash       * 1{ego crashed}
//	       - DeltaUnsafe      * 1{nearest vehicle ahead in lane < UnsafeDistance}
//	       - LambdaLaneChange * 1{lane changed since last step}
//	total  = native + shaped
//
// Every term degrades to a neutral value (0 or false) when the state it
// needs is unavailable. Degradation is never fatal: it is reported in the
// Result of Compose as a *TermError, and the term's contribution is
// dropped for that step.
package reward

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Default weights and thresholds
const (
	DefaultAlphaSpeed       float64 = 1.0
	DefaultBetaRightLane    float64 = 0.2
	DefaultGammaCrash       float64 = 2.0
	DefaultDeltaUnsafe      float64 = 0.5
	DefaultLambdaLaneChange float64 = 0.05
	DefaultUnsafeDistance   float64 = 10.0 // meters
	DefaultMinSpeed         float64 = 20.0 // m/s
	DefaultMaxSpeed         float64 = 30.0 // m/s
)

// Config holds the weights of each reward term, the unsafe gap threshold,
// and the target speed range used to normalize speeds. A Config is passed
// by value and should be treated as immutable once constructed.
//
// If SpeedRange.Max <= SpeedRange.Min, the speed term always contributes
// zero.
type Config struct {
	AlphaSpeed       float64
	BetaRightLane    float64
	GammaCrash       float64
	DeltaUnsafe      float64
	LambdaLaneChange float64

	// UnsafeDistance is the longitudinal gap in meters below which the
	// nearest vehicle ahead in the ego lane is considered unsafe
	UnsafeDistance float64

	// SpeedRange is the range of target speeds in m/s
	SpeedRange r1.Interval
}

// DefaultConfig returns the default reward shaping configuration
func DefaultConfig() Config {
	return Config{
		AlphaSpeed:       DefaultAlphaSpeed,
		BetaRightLane:    DefaultBetaRightLane,
		GammaCrash:       DefaultGammaCrash,
		DeltaUnsafe:      DefaultDeltaUnsafe,
		LambdaLaneChange: DefaultLambdaLaneChange,
		UnsafeDistance:   DefaultUnsafeDistance,
		SpeedRange:       r1.Interval{Min: DefaultMinSpeed, Max: DefaultMaxSpeed},
	}
}

// Validate checks that all values of the Config are finite and that the
// weights and the unsafe distance are non-negative. Penalties are always
// subtracted, so a penalty never contributes positively. An empty speed
// range is valid.
func (c Config) Validate() error {
	values := map[string]float64{
		"alpha_speed":        c.AlphaSpeed,
		"beta_right_lane":    c.BetaRightLane,
		"gamma_crash":        c.GammaCrash,
		"delta_unsafe":       c.DeltaUnsafe,
		"lambda_lane_change": c.LambdaLaneChange,
		"unsafe_distance_m":  c.UnsafeDistance,
		"speed_range.min":    c.SpeedRange.Min,
		"speed_range.max":    c.SpeedRange.Max,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("validate: %v must be finite, have(%v)", name, v)
		}
	}

	weights := map[string]float64{
		"alpha_speed":        c.AlphaSpeed,
		"beta_right_lane":    c.BetaRightLane,
		"gamma_crash":        c.GammaCrash,
		"delta_unsafe":       c.DeltaUnsafe,
		"lambda_lane_change": c.LambdaLaneChange,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("validate: %v must be non-negative "+
				"\n\twant(>=0) \n\thave(%v)", name, w)
		}
	}

	if c.UnsafeDistance < 0 {
		return fmt.Errorf("validate: unsafe distance must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.UnsafeDistance)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Reward Config | α: %v  |  β: %v  |  γ: %v  |  "+
		"δ: %v  |  λ: %v  |  Unsafe Distance: %vm  |  Speed Range: [%v, %v]",
		c.AlphaSpeed, c.BetaRightLane, c.GammaCrash, c.DeltaUnsafe,
		c.LambdaLaneChange, c.UnsafeDistance, c.SpeedRange.Min,
		c.SpeedRange.Max)
}
