package rollout

import (
	"context"
	"fmt"

	"github.com/zeu5/leanrl/env"
)

type AgentConfig struct {
	Episodes int
	Horizon  int
	Env      *env.Env4x2
	Plant    Plant
}

// Agent drives an environment against a plant
type Agent struct {
	config *AgentConfig
	// collects the traces of the run
	// Only populated if the Run function is invoked
	traces []*Trace
	env    *env.Env4x2
	plant  Plant
}

func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config: config,
		traces: make([]*Trace, 0, config.Episodes),
		env:    config.Env,
		plant:  config.Plant,
	}
}

// Run the agent for the specified number of episodes and horizon.
// Stops at the first episode that fails.
func (a *Agent) Run(ctx context.Context) error {
	for i := 0; i < a.config.Episodes; i++ {
		trace, err := a.RunEpisode(ctx, i)
		a.traces = append(a.traces, trace)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) Traces() []*Trace {
	return a.traces
}

// RunEpisode runs a single episode and returns the trace collected so far,
// along with the error that ended it early, if any
func (a *Agent) RunEpisode(ctx context.Context, episode int) (*Trace, error) {
	trace := NewTrace(episode)
	obs := a.plant.Reset()
	action, err := a.env.Reset(obs)
	if err != nil {
		return trace, fmt.Errorf("episode %d: %w", episode, err)
	}

	for i := 0; i < a.config.Horizon; i++ {
		select {
		case <-ctx.Done():
			return trace, ctx.Err()
		default:
		}
		violation := ""
		if err := a.env.VerifyInvariant(obs, action); err != nil {
			violation = err.Error()
		}
		next, reward, done := a.plant.Advance(action)
		trace.Append(Transition{
			Step:      i,
			Obs:       obs,
			Action:    action,
			Reward:    reward,
			NextObs:   next,
			Violation: violation,
		})
		if done || i == a.config.Horizon-1 {
			break
		}
		action, err = a.env.Step(next)
		if err != nil {
			return trace, fmt.Errorf("episode %d step %d: %w", episode, i, err)
		}
		obs = next
	}
	return trace, nil
}
