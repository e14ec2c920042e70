package types

import "fmt"

// PolicyAdapter turns an opaque weights blob into a Policy.
// Load is where the weights get validated, the environment never looks inside the blob.
type PolicyAdapter interface {
	Load([]byte) (Policy, error)
}

// Policy computes an action from an observation.
// A loaded policy is immutable and can be shared between environment copies.
type Policy interface {
	Act(Obs4) (Action2, error)
}

// Named is implemented by policies that can report the algorithm behind them
type Named interface {
	Algorithm() string
}

// Compatible is implemented by policies that restrict which policy may replace them
type Compatible interface {
	Compatible(next Policy) error
}

// EvaluateFunc is the bare evaluate(weights, obs) capability.
// It satisfies PolicyAdapter, accepting any non-empty blob.
type EvaluateFunc func([]byte, Obs4) (Action2, error)

var _ PolicyAdapter = EvaluateFunc(nil)

func (f EvaluateFunc) Load(weights []byte) (Policy, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("empty weights: %w", ErrInvalidWeights)
	}
	bound := make([]byte, len(weights))
	copy(bound, weights)
	return &boundPolicy{weights: bound, eval: f}, nil
}

type boundPolicy struct {
	weights []byte
	eval    EvaluateFunc
}

func (b *boundPolicy) Act(obs Obs4) (Action2, error) {
	return b.eval(b.weights, obs)
}

// PolicyFunc adapts a plain function to the Policy interface
type PolicyFunc func(Obs4) (Action2, error)

func (f PolicyFunc) Act(obs Obs4) (Action2, error) {
	return f(obs)
}
