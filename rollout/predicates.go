package rollout

import (
	"errors"
	"math"

	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/types"
)

// Predicate is a condition on an (observation, action) pair
type Predicate func(types.Obs4, types.Action2) bool

func (p Predicate) And(other Predicate) Predicate {
	return func(o types.Obs4, a types.Action2) bool {
		return p(o, a) && other(o, a)
	}
}

func (p Predicate) Or(other Predicate) Predicate {
	return func(o types.Obs4, a types.Action2) bool {
		return p(o, a) || other(o, a)
	}
}

func (p Predicate) Not() Predicate {
	return func(o types.Obs4, a types.Action2) bool {
		return !p(o, a)
	}
}

// Invariant turns the predicate into an environment invariant that fails with reason when p does not hold
func (p Predicate) Invariant(reason string) env.InvariantFunc {
	err := errors.New(reason)
	return func(o types.Obs4, a types.Action2) error {
		if !p(o, a) {
			return err
		}
		return nil
	}
}

// SpeedBelow holds when the (vx, vy) components of a point mass observation have norm at most max
func SpeedBelow(max float64) Predicate {
	return func(o types.Obs4, _ types.Action2) bool {
		return math.Hypot(float64(o[2]), float64(o[3])) <= max
	}
}

// PushingOut holds when the point mass is past margin on an axis and the action accelerates it further out
func PushingOut(margin float32) Predicate {
	return func(o types.Obs4, a types.Action2) bool {
		for i := 0; i < types.ActionDim; i++ {
			if (o[i] > margin && a[i] > 0) || (o[i] < -margin && a[i] < 0) {
				return true
			}
		}
		return false
	}
}
