package policies

import (
	"fmt"
	"math"

	"github.com/zeu5/leanrl/types"
	"gonum.org/v1/gonum/mat"
)

// LinearPolicy computes tanh(W·obs + b) with W of shape ActionDim x ObsDim
type LinearPolicy struct {
	Alpha float32
	w     *mat.Dense
	b     *mat.VecDense
}

var _ types.Policy = &LinearPolicy{}

// NewLinearPolicy starts from the deterministic initialisation w[i][j] = (i+j)*0.01, zero bias
func NewLinearPolicy() *LinearPolicy {
	w := mat.NewDense(types.ActionDim, types.ObsDim, nil)
	for i := 0; i < types.ActionDim; i++ {
		for j := 0; j < types.ObsDim; j++ {
			w.Set(i, j, float64(i+j)*0.01)
		}
	}
	return &LinearPolicy{
		Alpha: 0.01,
		w:     w,
		b:     mat.NewVecDense(types.ActionDim, nil),
	}
}

// NewLinearPolicyFrom builds a policy with explicit weights and bias
func NewLinearPolicyFrom(alpha float32, w [types.ActionDim][types.ObsDim]float32, b [types.ActionDim]float32) *LinearPolicy {
	p := NewLinearPolicy()
	p.Alpha = alpha
	for i := range w {
		for j := range w[i] {
			p.w.Set(i, j, float64(w[i][j]))
		}
		p.b.SetVec(i, float64(b[i]))
	}
	return p
}

// DecodeLinearFA reads: f32 alpha, ActionDim*ObsDim f32 weights (row major), ActionDim f32 bias
func DecodeLinearFA(body []byte) (*LinearPolicy, error) {
	d := newDecoder(body)
	alpha := d.f32("linear alpha")
	w := d.f64s(types.ActionDim*types.ObsDim, "linear weight matrix")
	b := d.f64s(types.ActionDim, "linear bias")
	if d.err != nil {
		return nil, d.err
	}
	return &LinearPolicy{
		Alpha: alpha,
		w:     mat.NewDense(types.ActionDim, types.ObsDim, w),
		b:     mat.NewVecDense(types.ActionDim, b),
	}, nil
}

func (l *LinearPolicy) Act(obs types.Obs4) (types.Action2, error) {
	if !obs.IsFinite() {
		return types.Action2{}, fmt.Errorf("linear policy on %v: non finite observation: %w", obs, types.ErrPolicy)
	}
	x := mat.NewVecDense(types.ObsDim, []float64{float64(obs[0]), float64(obs[1]), float64(obs[2]), float64(obs[3])})
	out := mat.NewVecDense(types.ActionDim, nil)
	out.MulVec(l.w, x)
	out.AddVec(out, l.b)
	var action types.Action2
	for i := range action {
		action[i] = float32(math.Tanh(out.AtVec(i)))
	}
	if !action.IsFinite() {
		return types.Action2{}, fmt.Errorf("linear policy on %v: non finite action %v: %w", obs, action, types.ErrPolicy)
	}
	return action, nil
}

// Weight returns w[actionIdx][obsIdx]
func (l *LinearPolicy) Weight(actionIdx, obsIdx int) float32 {
	return float32(l.w.At(actionIdx, obsIdx))
}

func (l *LinearPolicy) Bias(actionIdx int) float32 {
	return float32(l.b.AtVec(actionIdx))
}

func (l *LinearPolicy) Algorithm() string {
	return LinearFA.String()
}

func (l *LinearPolicy) Encode() []byte {
	e := newEncoder(LinearFA)
	e.f32(l.Alpha)
	e.f64s(l.w.RawMatrix().Data)
	e.f64s(l.b.RawVector().Data)
	return e.bytes()
}

func (l *LinearPolicy) String() string {
	return fmt.Sprintf("linear %dx%d, alpha=%g", types.ActionDim, types.ObsDim, l.Alpha)
}
