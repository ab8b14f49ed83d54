package reward

import (
	"errors"
	"fmt"
)

// Term identifies one of the five terms of the shaped reward
type Term int

const (
	Speed Term = iota
	RightLane
	Crash
	UnsafeGap
	LaneChange
)

// Terms lists all reward terms in the order they are composed
var Terms = []Term{Speed, RightLane, Crash, UnsafeGap, LaneChange}

func (t Term) String() string {
	switch t {
	case Speed:
		return "speed"
	case RightLane:
		return "right_lane"
	case Crash:
		return "crash"
	case UnsafeGap:
		return "unsafe_gap"
	case LaneChange:
		return "lane_change"
	}
	return fmt.Sprintf("term(%d)", int(t))
}

// Reasons for a term to degrade to its neutral value
var (
	ErrNoEgo           = errors.New("ego vehicle unavailable")
	ErrNoRoad          = errors.New("road unavailable")
	ErrNoSpeed         = errors.New("ego speed unavailable")
	ErrNoLane          = errors.New("lane index unavailable")
	ErrNoPosition      = errors.New("ego position unavailable")
	ErrNoCrashFlag     = errors.New("crash flag unavailable")
	ErrEmptySpeedRange = errors.New("reward speed range is empty")
	ErrScanFault       = errors.New("vehicle attribute unavailable " +
		"during proximity scan")
)

// TermError reports why a term degraded to its neutral value
type TermError struct {
	Term Term
	Err  error
}

func (e *TermError) Error() string {
	return fmt.Sprintf("%v: %v", e.Term, e.Err)
}

func (e *TermError) Unwrap() error {
	return e.Err
}

func termError(t Term, err error) error {
	return &TermError{Term: t, Err: err}
}
