package policies

import (
	"fmt"

	"github.com/zeu5/leanrl/types"
)

const (
	tabularHeaderSize = 16
	// cells, 4 MiB of float32
	MaxTableCells = 1 << 20
)

// TablePolicy is a greedy policy over a Q table indexed by a discretised observation.
// Only the first observation component is used, mapped from [-1, 1] onto the states.
type TablePolicy struct {
	NumStates  int
	NumActions int
	Alpha      float32
	Gamma      float32
	// row major, q[s*NumActions+a]
	q []float32
}

var _ types.Policy = &TablePolicy{}

func NewTablePolicy(numStates, numActions int) *TablePolicy {
	return &TablePolicy{
		NumStates:  numStates,
		NumActions: numActions,
		Alpha:      0.1,
		Gamma:      0.9,
		q:          make([]float32, numStates*numActions),
	}
}

// DecodeTabularQ reads: u32 states, u32 actions, f32 alpha, f32 gamma and
// an optional states*actions f32 Q table. Without the table all values are zero.
func DecodeTabularQ(body []byte) (*TablePolicy, error) {
	if len(body) < tabularHeaderSize {
		return nil, fmt.Errorf("insufficient weights for TabularQLearning: %w", types.ErrInvalidWeights)
	}
	d := newDecoder(body)
	numStates := int(d.u32("state count"))
	numActions := int(d.u32("action count"))
	alpha := d.f32("alpha")
	gamma := d.f32("gamma")
	if numStates == 0 || numActions == 0 {
		return nil, fmt.Errorf("q table of %dx%d: %w", numStates, numActions, types.ErrInvalidWeights)
	}
	if numStates > MaxTableCells || numActions > MaxTableCells || numStates*numActions > MaxTableCells {
		return nil, fmt.Errorf("q table of %dx%d: %w: %w", numStates, numActions, types.ErrInvalidWeights, types.ErrAllocation)
	}
	tableSize := numStates * numActions
	t := NewTablePolicy(numStates, numActions)
	t.Alpha = alpha
	t.Gamma = gamma
	// a missing or partial table leaves every value at zero
	if d.remaining() >= 4*tableSize {
		values := d.f64s(tableSize, "q table")
		if d.err != nil {
			return nil, d.err
		}
		for i, v := range values {
			t.q[i] = float32(v)
		}
	}
	return t, nil
}

// State discretises the observation
func (t *TablePolicy) State(obs types.Obs4) int {
	s := int((obs[0] + 1) * float32(t.NumStates) / 2)
	if s < 0 {
		return 0
	}
	if s > t.NumStates-1 {
		return t.NumStates - 1
	}
	return s
}

// Act picks the greedy action index and returns it one hot.
// Ties go to the highest index. Indices beyond the action arity give the zero action.
func (t *TablePolicy) Act(obs types.Obs4) (types.Action2, error) {
	if !obs.IsFinite() {
		return types.Action2{}, fmt.Errorf("q table on %v: non finite observation: %w", obs, types.ErrPolicy)
	}
	s := t.State(obs)
	row := t.q[s*t.NumActions : (s+1)*t.NumActions]
	best := 0
	for i, v := range row {
		if v >= row[best] {
			best = i
		}
	}
	var action types.Action2
	if best < types.ActionDim {
		action[best] = 1
	}
	return action, nil
}

func (t *TablePolicy) Q(state, action int) float32 {
	return t.q[state*t.NumActions+action]
}

func (t *TablePolicy) SetQ(state, action int, v float32) {
	t.q[state*t.NumActions+action] = v
}

// Compatible rejects replacement tables of a different shape
func (t *TablePolicy) Compatible(next types.Policy) error {
	n, ok := next.(*TablePolicy)
	if !ok {
		return nil
	}
	if n.NumStates != t.NumStates || n.NumActions != t.NumActions {
		return fmt.Errorf("state/action dimensions mismatch: have %dx%d, got %dx%d: %w",
			t.NumStates, t.NumActions, n.NumStates, n.NumActions, types.ErrInvalidWeights)
	}
	return nil
}

func (t *TablePolicy) Algorithm() string {
	return TabularQ.String()
}

func (t *TablePolicy) Encode() []byte {
	e := newEncoder(TabularQ)
	e.u32(uint32(t.NumStates))
	e.u32(uint32(t.NumActions))
	e.f32(t.Alpha)
	e.f32(t.Gamma)
	for _, v := range t.q {
		e.f32(v)
	}
	return e.bytes()
}

func (t *TablePolicy) String() string {
	return fmt.Sprintf("q table %dx%d, alpha=%g, gamma=%g", t.NumStates, t.NumActions, t.Alpha, t.Gamma)
}
