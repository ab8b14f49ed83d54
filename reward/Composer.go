package reward

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/highwayrl/utils/floatutils"
)

// neutral is the value each term takes when it degrades. Indicator
// terms (Crash, UnsafeGap, LaneChange) take 0, meaning false.
var neutral = map[Term]float64{
	Speed:      0.0,
	RightLane:  0.0,
	Crash:      0.0,
	UnsafeGap:  0.0,
	LaneChange: 0.0,
}

// Result is the reward of a single step, broken down by term
type Result struct {
	Native float64 // Reward from the simulator
	Shaped float64 // Weighted sum of the five terms
	Total  float64 // Native + Shaped

	// Unweighted terms
	Speed       float64
	RightLane   float64
	Crashed     bool
	Unsafe      bool
	LaneChanged bool

	// Degraded holds the reason each degraded term fell back to its
	// neutral value. It is nil if no term degraded.
	Degraded map[Term]error
}

// Contribution returns the signed, weighted contribution of term t to
// the shaped reward
func (r Result) Contribution(c Config, t Term) float64 {
	switch t {
	case Speed:
		return c.AlphaSpeed * r.Speed
	case RightLane:
		return c.BetaRightLane * r.RightLane
	case Crash:
		return -c.GammaCrash * floatutils.Indicator(r.Crashed)
	case UnsafeGap:
		return -c.DeltaUnsafe * floatutils.Indicator(r.Unsafe)
	case LaneChange:
		return -c.LambdaLaneChange * floatutils.Indicator(r.LaneChanged)
	}
	panic(fmt.Sprintf("contribution: no such term %v", t))
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reward | Total: %.4f  |  Native: %.4f  |  Shaped: %.4f"+
		"  |  Speed: %.3f  |  Right Lane: %.3f  |  Crashed: %v  |  "+
		"Unsafe: %v  |  Lane Changed: %v", r.Total, r.Native, r.Shaped,
		r.Speed, r.RightLane, r.Crashed, r.Unsafe, r.LaneChanged)

	for _, t := range Terms {
		if err, ok := r.Degraded[t]; ok {
			fmt.Fprintf(&b, "  |  degraded %v", err)
		}
	}
	return b.String()
}

// degrade records that term t fell back to its neutral value
func (r *Result) degrade(t Term, err error) float64 {
	if r.Degraded == nil {
		r.Degraded = make(map[Term]error)
	}
	r.Degraded[t] = err
	return neutral[t]
}

// NeutralValue returns the value term t takes when it degrades
func NeutralValue(t Term) float64 {
	return neutral[t]
}

// value returns v, or the neutral value of t if err is non-nil
func (r *Result) value(t Term, v float64, err error) float64 {
	if err != nil {
		return r.degrade(t, err)
	}
	return v
}

// flag returns b, or the neutral value of t if err is non-nil
func (r *Result) flag(t Term, b bool, err error) bool {
	if err != nil {
		return r.degrade(t, err) != 0
	}
	return b
}

// IsCrashed returns whether the ego vehicle crashed. The crashed flag
// of the ego vehicle is preferred, and the InfoCrashed entry of info is
// used if the ego vehicle or its flag is unavailable. If neither is
// available, the neutral value false is returned with a *TermError.
func IsCrashed(s Snapshot, info Info) (bool, error) {
	if s.Ego != nil {
		if crashed, ok := s.Ego.KnownCrashed(); ok {
			return crashed, nil
		}
	}

	if v, ok := info[InfoCrashed]; ok {
		if crashed, ok := v.(bool); ok {
			return crashed, nil
		}
	}
	return false, termError(Crash, ErrNoCrashFlag)
}

// Compose computes the reward of a single step from the simulator's
// native reward and a Snapshot of the world taken after the step. The
// tracker holds the lane of the previous step; the tracker for the next
// step is returned along with the Result.
//
// Compose never fails: a term whose inputs are unavailable takes its
// neutral value and the reason is recorded in Result.Degraded. Bonus
// terms are always added and penalty terms are always subtracted.
func Compose(c Config, s Snapshot, native float64, info Info,
	tracker LaneTracker) (Result, LaneTracker) {
	r := Result{Native: native}

	speed, err := SpeedReward(c, s)
	r.Speed = r.value(Speed, speed, err)

	right, err := RightLaneReward(s)
	r.RightLane = r.value(RightLane, right, err)

	crashed, err := IsCrashed(s, info)
	r.Crashed = r.flag(Crash, crashed, err)

	unsafe, err := IsUnsafeGap(c, s)
	r.Unsafe = r.flag(UnsafeGap, unsafe, err)

	slot, err := LaneSlot(s)
	changed, next := tracker.Observe(slot, err == nil)
	if err != nil {
		changed = r.flag(LaneChange, changed, termError(LaneChange, err))
	}
	r.LaneChanged = changed

	for _, t := range Terms {
		r.Shaped += r.Contribution(c, t)
	}
	r.Total = r.Native + r.Shaped

	return r, next
}
