package types

import (
	"iter"
	"math"
)

// ActionDim is the arity of an action
const ActionDim = 2

// Action2 is a 2 component action. All arithmetic returns a new value.
type Action2 [ActionDim]float32

var _ Vector = Action2{}

func NewAction2(a, b float32) Action2 {
	return Action2{a, b}
}

// Action2FromSlice copies exactly ActionDim values into a new action
func Action2FromSlice(s []float32) (Action2, error) {
	var a Action2
	if err := fromSlice(a[:], s); err != nil {
		return Action2{}, err
	}
	return a, nil
}

func (a Action2) Len() int {
	return ActionDim
}

func (a Action2) At(i int) (float32, error) {
	return at(a[:], i)
}

func (a *Action2) Set(i int, v float32) error {
	return set(a[:], i, v)
}

func (a Action2) Values() []float32 {
	out := make([]float32, ActionDim)
	copy(out, a[:])
	return out
}

func (a Action2) All() iter.Seq2[int, float32] {
	return all(a[:])
}

func (a Action2) Map(f func(float32) float32) Action2 {
	var out Action2
	for i, v := range a {
		out[i] = f(v)
	}
	return out
}

func (a Action2) Add(b Action2) Action2 {
	return Action2{a[0] + b[0], a[1] + b[1]}
}

func (a Action2) Sub(b Action2) Action2 {
	return Action2{a[0] - b[0], a[1] - b[1]}
}

// Mul is the elementwise product, not a dot product
func (a Action2) Mul(b Action2) Action2 {
	return Action2{a[0] * b[0], a[1] * b[1]}
}

// Div divides elementwise, a zero divisor yields +Inf for that component
func (a Action2) Div(b Action2) Action2 {
	var out Action2
	for i := range a {
		if b[i] == 0 {
			out[i] = float32(math.Inf(1))
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}

func (a Action2) Scale(s float32) Action2 {
	return Action2{a[0] * s, a[1] * s}
}

// ScaleAction is the scalar-first form of Scale, ScaleAction(s, a) == a.Scale(s)
func ScaleAction(s float32, a Action2) Action2 {
	return a.Scale(s)
}

// Clamp bounds every component to [min, max].
// When min > max the range is empty and every component collapses to min.
func (a Action2) Clamp(min, max float32) Action2 {
	if min > max {
		return Action2{min, min}
	}
	return a.Map(func(x float32) float32 {
		if x < min {
			return min
		}
		if x > max {
			return max
		}
		return x
	})
}

func (a Action2) Max() float32 {
	if a[1] > a[0] {
		return a[1]
	}
	return a[0]
}

func (a Action2) Min() float32 {
	if a[1] < a[0] {
		return a[1]
	}
	return a[0]
}

// ArgMax is the index of the largest component, ties go to the higher index
func (a Action2) ArgMax() int {
	if a[1] >= a[0] {
		return 1
	}
	return 0
}

func (a Action2) Softmax() Action2 {
	m := a.Max()
	e0 := math.Exp(float64(a[0] - m))
	e1 := math.Exp(float64(a[1] - m))
	sum := e0 + e1
	return Action2{float32(e0 / sum), float32(e1 / sum)}
}

// IsWithinBounds is true iff every component lies in [min, max]
func (a Action2) IsWithinBounds(min, max float32) bool {
	for _, x := range a {
		if !(x >= min && x <= max) {
			return false
		}
	}
	return true
}

func (a Action2) IsFinite() bool {
	return finite(a[:])
}

func (a Action2) String() string {
	return format(a[:])
}
