package env

import (
	"errors"
	"fmt"

	"github.com/zeu5/leanrl/policies"
	"github.com/zeu5/leanrl/types"
)

// InvariantFunc is an extra safety predicate checked on every transition.
// A non nil error is reported as a violation with the error as the reason.
type InvariantFunc func(types.Obs4, types.Action2) error

// EnvConfig configures an Env4x2
type EnvConfig struct {
	// Adapter turns weights into a policy
	Adapter types.PolicyAdapter
	// bounds used by the safety invariant and by clamping
	ActionMin float32
	ActionMax float32
	// ClampActions clamps every returned action into [ActionMin, ActionMax]
	ClampActions bool
	// RequireSameAlgorithm rejects weight updates that switch algorithm
	RequireSameAlgorithm bool
	// Invariants are checked after the built in bounds and finiteness checks
	Invariants []InvariantFunc
}

// DefaultEnvConfig uses the algorithm tagged weights adapter, clamps to [-1, 1]
func DefaultEnvConfig() *EnvConfig {
	return &EnvConfig{
		Adapter:              policies.NewAdapter(),
		ActionMin:            -1,
		ActionMax:            1,
		ClampActions:         true,
		RequireSameAlgorithm: true,
	}
}

func (c *EnvConfig) Printable() map[string]interface{} {
	out := make(map[string]interface{})
	out["action_min"] = c.ActionMin
	out["action_max"] = c.ActionMax
	out["clamp_actions"] = c.ClampActions
	out["require_same_algorithm"] = c.RequireSameAlgorithm
	out["invariants"] = len(c.Invariants)
	out["adapter"] = fmt.Sprintf("%T", c.Adapter)
	return out
}

func (c *EnvConfig) clone() *EnvConfig {
	out := *c
	out.Invariants = append([]InvariantFunc(nil), c.Invariants...)
	return &out
}

var errNoAdapter = errors.New("no policy adapter configured")

func (c *EnvConfig) validate() error {
	if c.Adapter == nil {
		return errNoAdapter
	}
	return nil
}
