package rollout

import (
	"github.com/google/uuid"
	"github.com/zeu5/leanrl/types"
)

// Transition is one step of an episode
type Transition struct {
	Step    int           `json:"step"`
	Obs     types.Obs4    `json:"obs"`
	Action  types.Action2 `json:"action"`
	Reward  float64       `json:"reward"`
	NextObs types.Obs4    `json:"next_obs"`
	// Violation holds the invariant failure for (Obs, Action), empty when it held
	Violation string `json:"violation,omitempty"`
}

// Trace of an episode
type Trace struct {
	ID          string       `json:"id"`
	Episode     int          `json:"episode"`
	Transitions []Transition `json:"transitions"`
}

func NewTrace(episode int) *Trace {
	return &Trace{
		ID:          uuid.NewString(),
		Episode:     episode,
		Transitions: make([]Transition, 0),
	}
}

func (t *Trace) Append(tr Transition) {
	t.Transitions = append(t.Transitions, tr)
}

func (t *Trace) Len() int {
	return len(t.Transitions)
}

func (t *Trace) Get(i int) (Transition, bool) {
	if i < 0 || i >= len(t.Transitions) {
		return Transition{}, false
	}
	return t.Transitions[i], true
}

func (t *Trace) Last() (Transition, bool) {
	return t.Get(len(t.Transitions) - 1)
}

// GetPrefix returns the trace made of the first i transitions.
// Appending to the prefix does not touch t.
func (t *Trace) GetPrefix(i int) (*Trace, bool) {
	if i < 0 || i > len(t.Transitions) {
		return nil, false
	}
	return &Trace{
		ID:          t.ID,
		Episode:     t.Episode,
		Transitions: t.Transitions[0:i:i],
	}, true
}

// Return is the undiscounted sum of rewards
func (t *Trace) Return() float64 {
	sum := 0.0
	for _, tr := range t.Transitions {
		sum += tr.Reward
	}
	return sum
}

func (t *Trace) Violations() int {
	count := 0
	for _, tr := range t.Transitions {
		if tr.Violation != "" {
			count++
		}
	}
	return count
}
