package env

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/zeu5/leanrl/types"
)

// Env4x2 runs 4 component observations through a weights parameterised policy
// and returns 2 component actions, counting episodes and steps.
//
// Env4x2 is not safe for concurrent use. Callers either serialise access
// or give every goroutine its own Clone.
type Env4x2 struct {
	config *EnvConfig

	weights     []byte
	weightsHash [sha256.Size]byte
	policy      types.Policy
	algorithm   string

	stepCount    uint64
	episodeCount uint64
	lastObs      types.Obs4
}

// NewEnv4x2 validates the weights with the configured adapter and returns a ready environment.
// The config is copied, later changes to it do not reach the environment.
func NewEnv4x2(config *EnvConfig, weights []byte) (*Env4x2, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("empty weights: %w", types.ErrInvalidWeights)
	}
	policy, err := load(config.Adapter, weights)
	if err != nil {
		return nil, err
	}
	e := &Env4x2{config: config.clone()}
	e.bind(weights, policy)
	return e, nil
}

// CreateEnv4x2 constructs an environment with DefaultEnvConfig
func CreateEnv4x2(weights []byte) (*Env4x2, error) {
	return NewEnv4x2(DefaultEnvConfig(), weights)
}

func load(adapter types.PolicyAdapter, weights []byte) (types.Policy, error) {
	policy, err := adapter.Load(weights)
	if err != nil {
		if errors.Is(err, types.ErrInvalidWeights) || errors.Is(err, types.ErrAllocation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidWeights, err)
	}
	if policy == nil {
		return nil, fmt.Errorf("adapter returned no policy: %w", types.ErrInvalidWeights)
	}
	return policy, nil
}

func (e *Env4x2) bind(weights []byte, policy types.Policy) {
	e.weights = make([]byte, len(weights))
	copy(e.weights, weights)
	e.weightsHash = sha256.Sum256(e.weights)
	e.policy = policy
	e.algorithm = ""
	if n, ok := policy.(types.Named); ok {
		e.algorithm = n.Algorithm()
	}
}

func (e *Env4x2) act(obs types.Obs4) (types.Action2, error) {
	if !e.IsValid() {
		return types.Action2{}, fmt.Errorf("environment has no valid weights: %w", types.ErrInvalidWeights)
	}
	action, err := e.policy.Act(obs)
	if err != nil {
		if errors.Is(err, types.ErrPolicy) {
			return types.Action2{}, err
		}
		return types.Action2{}, fmt.Errorf("%w: %w", types.ErrPolicy, err)
	}
	if e.config.ClampActions {
		action = action.Clamp(e.config.ActionMin, e.config.ActionMax)
	}
	return action, nil
}

// Reset starts a new episode from obs and returns the first action.
// The episode counter only moves when the policy produced an action.
func (e *Env4x2) Reset(obs types.Obs4) (types.Action2, error) {
	action, err := e.act(obs)
	if err != nil {
		return types.Action2{}, fmt.Errorf("reset: %w", err)
	}
	e.episodeCount++
	e.lastObs = obs
	return action, nil
}

// Step returns the action for obs. The step counter is not cleared by Reset.
func (e *Env4x2) Step(obs types.Obs4) (types.Action2, error) {
	action, err := e.act(obs)
	if err != nil {
		return types.Action2{}, fmt.Errorf("step: %w", err)
	}
	e.stepCount++
	e.lastObs = obs
	return action, nil
}

// State returns (steps, episodes)
func (e *Env4x2) State() (uint64, uint64) {
	return e.stepCount, e.episodeCount
}

// LastObs is the observation of the last successful Reset or Step
func (e *Env4x2) LastObs() types.Obs4 {
	return e.lastObs
}

func (e *Env4x2) Algorithm() string {
	return e.algorithm
}

// CheckInvariant reports whether the pair satisfies the safety predicate
func (e *Env4x2) CheckInvariant(obs types.Obs4, action types.Action2) bool {
	return e.VerifyInvariant(obs, action) == nil
}

// VerifyInvariant is CheckInvariant with the reason of the violation
func (e *Env4x2) VerifyInvariant(obs types.Obs4, action types.Action2) error {
	if !obs.IsFinite() {
		return fmt.Errorf("observation %v is not finite: %w", obs, types.ErrInvariantViolation)
	}
	if !action.IsFinite() {
		return fmt.Errorf("action %v is not finite: %w", action, types.ErrInvariantViolation)
	}
	if !action.IsWithinBounds(e.config.ActionMin, e.config.ActionMax) {
		return fmt.Errorf("action %v outside [%g, %g]: %w", action, e.config.ActionMin, e.config.ActionMax, types.ErrInvariantViolation)
	}
	for _, inv := range e.config.Invariants {
		if err := inv(obs, action); err != nil {
			return fmt.Errorf("%w: %w", types.ErrInvariantViolation, err)
		}
	}
	return nil
}

// UpdateWeights swaps in new weights if they validate and reports whether it did
func (e *Env4x2) UpdateWeights(weights []byte) bool {
	return e.TryUpdateWeights(weights) == nil
}

// TryUpdateWeights is UpdateWeights with the rejection reason.
// On error the weights and counters are untouched.
func (e *Env4x2) TryUpdateWeights(weights []byte) error {
	if len(weights) == 0 {
		return fmt.Errorf("empty weights: %w", types.ErrInvalidWeights)
	}
	policy, err := load(e.config.Adapter, weights)
	if err != nil {
		return err
	}
	if e.config.RequireSameAlgorithm {
		if n, ok := policy.(types.Named); ok && e.algorithm != "" && n.Algorithm() != e.algorithm {
			return fmt.Errorf("algorithm type mismatch: have %s, got %s: %w", e.algorithm, n.Algorithm(), types.ErrInvalidWeights)
		}
		if c, ok := e.policy.(types.Compatible); ok {
			if err := c.Compatible(policy); err != nil {
				return err
			}
		}
	}
	e.bind(weights, policy)
	return nil
}

// Weights returns a copy of the current weights
func (e *Env4x2) Weights() []byte {
	out := make([]byte, len(e.weights))
	copy(out, e.weights)
	return out
}

// IsValid is true for a constructed environment holding validated weights
func (e *Env4x2) IsValid() bool {
	return e != nil && e.config != nil && len(e.weights) > 0 && e.policy != nil
}

// Clone returns an independent environment with the same weights, config and counters.
// The loaded policy is shared, policies do not change after loading.
func (e *Env4x2) Clone() *Env4x2 {
	c := *e
	c.config = e.config.clone()
	c.weights = make([]byte, len(e.weights))
	copy(c.weights, e.weights)
	return &c
}

func (e *Env4x2) String() string {
	return fmt.Sprintf("Env4x2{algorithm=%s, steps=%d, episodes=%d, weights=%d bytes}", e.algorithm, e.stepCount, e.episodeCount, len(e.weights))
}
