package env

import (
	"encoding/hex"

	"github.com/zeu5/leanrl/types"
)

// EnvState is a point in time view of an environment, for tests and debugging
type EnvState struct {
	StepCount    uint64     `json:"step_count"`
	EpisodeCount uint64     `json:"episode_count"`
	LastObs      types.Obs4 `json:"last_obs"`
	WeightsHash  string     `json:"weights_hash"`
	Algorithm    string     `json:"algorithm,omitempty"`
}

func (e *Env4x2) Snapshot() EnvState {
	return EnvState{
		StepCount:    e.stepCount,
		EpisodeCount: e.episodeCount,
		LastObs:      e.lastObs,
		WeightsHash:  hex.EncodeToString(e.weightsHash[:]),
		Algorithm:    e.algorithm,
	}
}

// SetState overwrites the counters and last observation.
// It is a debugging hook: counters may go backwards, which Reset and Step never do.
// Weights are not part of the restored state.
func (e *Env4x2) SetState(s EnvState) {
	e.stepCount = s.StepCount
	e.episodeCount = s.EpisodeCount
	e.lastObs = s.LastObs
}

// Hash is the hex sha256 of the current weights
func (e *Env4x2) Hash() string {
	return hex.EncodeToString(e.weightsHash[:])
}
