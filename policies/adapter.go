package policies

import (
	"fmt"

	"github.com/zeu5/leanrl/types"
)

// Adapter is the default policy adapter. It reads the algorithm tag in the
// first byte of the blob and decodes the rest with that algorithm's layout.
type Adapter struct{}

var _ types.PolicyAdapter = Adapter{}

func NewAdapter() Adapter {
	return Adapter{}
}

// Load decodes the blob into an immutable policy
func (Adapter) Load(weights []byte) (types.Policy, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("empty weights data: %w", types.ErrInvalidWeights)
	}
	tag := Algorithm(weights[0])
	body := weights[1:]
	switch tag {
	case TabularQ:
		return DecodeTabularQ(body)
	case LinearFA:
		return DecodeLinearFA(body)
	case TinyNN:
		return DecodeTinyNN(body)
	case Fixed:
		return DecodeFixed(body)
	}
	return nil, fmt.Errorf("algorithm tag %d: %w: %w", weights[0], types.ErrUnsupportedAlgorithm, types.ErrInvalidWeights)
}

// Info summarises a weights blob without building an environment
type Info struct {
	Algorithm Algorithm
	Size      int
	Details   string
}

// Describe decodes the blob and reports what it contains
func Describe(weights []byte) (Info, error) {
	p, err := Adapter{}.Load(weights)
	if err != nil {
		return Info{}, err
	}
	info := Info{Algorithm: Algorithm(weights[0]), Size: len(weights)}
	if s, ok := p.(fmt.Stringer); ok {
		info.Details = s.String()
	}
	return info, nil
}

// Encoder is implemented by every policy in this package, Encode includes the algorithm tag
type Encoder interface {
	Encode() []byte
}

// NewDefault returns the deterministic initial policy of an algorithm
func NewDefault(a Algorithm) (Encoder, error) {
	switch a {
	case TabularQ:
		return NewTablePolicy(10, types.ActionDim), nil
	case LinearFA:
		return NewLinearPolicy(), nil
	case TinyNN:
		return NewNetworkPolicy(DefaultActivations)
	case Fixed:
		return NewFixedPolicy(types.Action2{}), nil
	}
	return nil, fmt.Errorf("algorithm %d: %w", a, types.ErrUnsupportedAlgorithm)
}
