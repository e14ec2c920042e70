package policies

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeu5/leanrl/types"
)

// Algorithm is the tag stored in the first byte of every weights blob
type Algorithm uint8

const (
	TabularQ Algorithm = iota
	LinearFA
	TinyNN
	Fixed
)

var algorithmNames = map[Algorithm]string{
	TabularQ: "TabularQLearning",
	LinearFA: "LinearFA",
	TinyNN:   "TinyNN",
	Fixed:    "Fixed",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// ParseAlgorithm accepts the algorithm name case-insensitively
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	switch strings.ToLower(s) {
	case "tabular", "q", "tabularq":
		return TabularQ, nil
	case "linear":
		return LinearFA, nil
	case "nn", "tinynn":
		return TinyNN, nil
	case "mock", "const":
		return Fixed, nil
	}
	return 0, fmt.Errorf("%q: %w", s, types.ErrUnsupportedAlgorithm)
}

// Activation applied after each layer of a TinyNN
type Activation uint8

const (
	ReLU Activation = iota
	Tanh
	Sigmoid
	Linear
)

func (a Activation) Apply(x float64) float64 {
	switch a {
	case ReLU:
		return math.Max(x, 0)
	case Tanh:
		return math.Tanh(x)
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	default:
		return x
	}
}

func (a Activation) valid() bool {
	return a <= Linear
}

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("Activation(%d)", uint8(a))
}
