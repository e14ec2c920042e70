package policies

import (
	"fmt"

	"github.com/zeu5/leanrl/types"
)

// FixedPolicy ignores the observation and always returns the same action
type FixedPolicy struct {
	Action types.Action2
}

var _ types.Policy = &FixedPolicy{}

func NewFixedPolicy(action types.Action2) *FixedPolicy {
	return &FixedPolicy{Action: action}
}

// DecodeFixed reads ActionDim f32 values
func DecodeFixed(body []byte) (*FixedPolicy, error) {
	d := newDecoder(body)
	var a types.Action2
	for i := range a {
		a[i] = d.f32("fixed action")
	}
	if d.err != nil {
		return nil, d.err
	}
	if !a.IsFinite() {
		return nil, fmt.Errorf("fixed action %v is not finite: %w", a, types.ErrInvalidWeights)
	}
	return &FixedPolicy{Action: a}, nil
}

func (f *FixedPolicy) Act(types.Obs4) (types.Action2, error) {
	return f.Action, nil
}

func (f *FixedPolicy) Algorithm() string {
	return Fixed.String()
}

func (f *FixedPolicy) Encode() []byte {
	e := newEncoder(Fixed)
	for _, v := range f.Action {
		e.f32(v)
	}
	return e.bytes()
}

func (f *FixedPolicy) String() string {
	return fmt.Sprintf("fixed %v", f.Action)
}
