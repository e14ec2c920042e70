package types

import (
	"iter"
	"math"
)

// ObsDim is the arity of an observation
const ObsDim = 4

// Obs4 is a 4 component observation. Being an array it is copied on assignment.
type Obs4 [ObsDim]float32

var _ Vector = Obs4{}

func NewObs4(a, b, c, d float32) Obs4 {
	return Obs4{a, b, c, d}
}

// Obs4FromSlice copies exactly ObsDim values into a new observation
func Obs4FromSlice(s []float32) (Obs4, error) {
	var o Obs4
	if err := fromSlice(o[:], s); err != nil {
		return Obs4{}, err
	}
	return o, nil
}

func (o Obs4) Len() int {
	return ObsDim
}

func (o Obs4) At(i int) (float32, error) {
	return at(o[:], i)
}

func (o *Obs4) Set(i int, v float32) error {
	return set(o[:], i, v)
}

func (o Obs4) Values() []float32 {
	out := make([]float32, ObsDim)
	copy(out, o[:])
	return out
}

func (o Obs4) All() iter.Seq2[int, float32] {
	return all(o[:])
}

func (o Obs4) Map(f func(float32) float32) Obs4 {
	var out Obs4
	for i, v := range o {
		out[i] = f(v)
	}
	return out
}

func (o Obs4) Add(other Obs4) Obs4 {
	var out Obs4
	for i := range o {
		out[i] = o[i] + other[i]
	}
	return out
}

func (o Obs4) Sub(other Obs4) Obs4 {
	var out Obs4
	for i := range o {
		out[i] = o[i] - other[i]
	}
	return out
}

func (o Obs4) Dot(other Obs4) float32 {
	sum := float32(0)
	for i := range o {
		sum += o[i] * other[i]
	}
	return sum
}

// Norm is the euclidean length of the observation
func (o Obs4) Norm() float32 {
	return float32(math.Sqrt(float64(o.Dot(o))))
}

// Normalize scales the observation to unit length. The zero observation stays zero.
func (o Obs4) Normalize() Obs4 {
	n := o.Norm()
	if n == 0 {
		return Obs4{}
	}
	return o.Map(func(x float32) float32 { return x / n })
}

// IsFinite is false if any component is NaN or infinite
func (o Obs4) IsFinite() bool {
	return finite(o[:])
}

func (o Obs4) String() string {
	return format(o[:])
}
