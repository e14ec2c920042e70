package policies

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/zeu5/leanrl/types"
	"gonum.org/v1/gonum/floats/scalar"
)

func f32le(vs ...float32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func TestLoadRejectsEmptyAndUnknown(t *testing.T) {
	a := NewAdapter()
	if _, err := a.Load(nil); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	_, err := a.Load([]byte{42, 1, 2, 3})
	if !errors.Is(err, types.ErrInvalidWeights) || !errors.Is(err, types.ErrUnsupportedAlgorithm) {
		t.Errorf("expected invalid weights and unsupported algorithm, got %v", err)
	}
}

func TestLinearFromWeights(t *testing.T) {
	blob := []byte{byte(LinearFA)}
	blob = append(blob, f32le(0.01)...)
	for i := 0; i < 8; i++ {
		blob = append(blob, f32le(float32(i)*0.1)...)
	}
	blob = append(blob, f32le(0.1, 0.2)...)

	p, err := NewAdapter().Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	l, ok := p.(*LinearPolicy)
	if !ok {
		t.Fatalf("expected *LinearPolicy, got %T", p)
	}
	if l.Alpha != 0.01 || l.Weight(0, 0) != 0 || l.Weight(0, 1) != 0.1 || l.Bias(0) != 0.1 || l.Bias(1) != 0.2 {
		t.Errorf("unexpected decoded policy %v", l)
	}
	if !bytes.Equal(l.Encode(), blob) {
		t.Errorf("encode does not reproduce the blob")
	}

	obs := types.NewObs4(1, 2, 3, 4)
	action, err := l.Act(obs)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	// row 0: 0*1 + .1*2 + .2*3 + .3*4 + .1 = 2.1
	if !scalar.EqualWithinAbs(float64(action[0]), math.Tanh(2.1), 1e-5) {
		t.Errorf("unexpected action %v", action)
	}
	if !action.IsWithinBounds(-1, 1) {
		t.Errorf("tanh output out of bounds %v", action)
	}
}

func TestLinearTruncated(t *testing.T) {
	blob := append([]byte{byte(LinearFA)}, f32le(0.01, 1, 2)...)
	if _, err := NewAdapter().Load(blob); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestLinearDefaultIsBounded(t *testing.T) {
	a, err := NewLinearPolicy().Act(types.NewObs4(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !a.IsWithinBounds(-1, 1) {
		t.Errorf("action out of bounds %v", a)
	}
	if _, err := NewLinearPolicy().Act(types.NewObs4(float32(math.NaN()), 0, 0, 0)); !errors.Is(err, types.ErrPolicy) {
		t.Errorf("expected ErrPolicy, got %v", err)
	}
}

func TestTabularFromWeights(t *testing.T) {
	blob := []byte{byte(TabularQ)}
	blob = binary.LittleEndian.AppendUint32(blob, 5)
	blob = binary.LittleEndian.AppendUint32(blob, 2)
	blob = append(blob, f32le(0.1, 0.9)...)

	p, err := NewAdapter().Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	q := p.(*TablePolicy)
	if q.NumStates != 5 || q.NumActions != 2 || q.Alpha != 0.1 || q.Gamma != 0.9 {
		t.Errorf("unexpected header %v", q)
	}
	// all zero table picks the last action
	a, err := q.Act(types.NewObs4(0.5, 0, 0, 0))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if a != types.NewAction2(0, 1) {
		t.Errorf("unexpected action %v", a)
	}
}

func TestTabularGreedy(t *testing.T) {
	q := NewTablePolicy(4, 3)
	q.SetQ(3, 1, 2)
	q.SetQ(0, 2, 5)

	decoded, err := DecodeTabularQ(q.Encode()[1:])
	if err != nil {
		t.Fatalf("DecodeTabularQ: %v", err)
	}
	if decoded.Q(3, 1) != 2 || decoded.Q(0, 2) != 5 {
		t.Errorf("q table not round tripped")
	}
	a, _ := decoded.Act(types.NewObs4(0.9, 0, 0, 0))
	if a != types.NewAction2(0, 1) {
		t.Errorf("expected one hot on action 1, got %v", a)
	}
	// best index 2 is beyond the action arity
	a, _ = decoded.Act(types.NewObs4(-1, 0, 0, 0))
	if a != (types.Action2{}) {
		t.Errorf("expected zero action, got %v", a)
	}
	if decoded.State(types.NewObs4(-5, 0, 0, 0)) != 0 || decoded.State(types.NewObs4(5, 0, 0, 0)) != 3 {
		t.Errorf("state not clamped")
	}
}

func TestTabularRejects(t *testing.T) {
	short := []byte{byte(TabularQ), 1, 0, 0}
	if _, err := NewAdapter().Load(short); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	zero := []byte{byte(TabularQ)}
	zero = binary.LittleEndian.AppendUint32(zero, 0)
	zero = binary.LittleEndian.AppendUint32(zero, 2)
	zero = append(zero, f32le(0.1, 0.9)...)
	if _, err := NewAdapter().Load(zero); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	huge := []byte{byte(TabularQ)}
	huge = binary.LittleEndian.AppendUint32(huge, math.MaxUint32)
	huge = binary.LittleEndian.AppendUint32(huge, math.MaxUint32)
	huge = append(huge, f32le(0.1, 0.9)...)
	if _, err := NewAdapter().Load(huge); !errors.Is(err, types.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	// a short header must not size a large table
	tall := []byte{byte(TabularQ)}
	tall = binary.LittleEndian.AppendUint32(tall, 1<<24)
	tall = binary.LittleEndian.AppendUint32(tall, 1)
	tall = append(tall, f32le(0.1, 0.9)...)
	if _, err := NewAdapter().Load(tall); !errors.Is(err, types.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	edge := []byte{byte(TabularQ)}
	edge = binary.LittleEndian.AppendUint32(edge, MaxTableCells/2)
	edge = binary.LittleEndian.AppendUint32(edge, 2)
	edge = append(edge, f32le(0.1, 0.9)...)
	p, err := NewAdapter().Load(edge)
	if err != nil {
		t.Fatalf("table at the cell limit: %v", err)
	}
	if got := len(p.(*TablePolicy).q); got != MaxTableCells {
		t.Errorf("expected %d cells, got %d", MaxTableCells, got)
	}
}

func TestTabularTies(t *testing.T) {
	q := NewTablePolicy(10, types.ActionDim)
	a, _ := q.Act(types.Obs4{})
	if a != types.NewAction2(0, 1) {
		t.Errorf("ties should pick the last action, got %v", a)
	}
	q.SetQ(5, 0, 1)
	q.SetQ(5, 1, 1)
	if a, _ = q.Act(types.Obs4{}); a != types.NewAction2(0, 1) {
		t.Errorf("ties should pick the last action, got %v", a)
	}
	q.SetQ(5, 0, 2)
	if a, _ = q.Act(types.Obs4{}); a != types.NewAction2(1, 0) {
		t.Errorf("expected action 0, got %v", a)
	}
}

func TestTabularCompatible(t *testing.T) {
	q := NewTablePolicy(10, 2)
	if err := q.Compatible(NewTablePolicy(10, 2)); err != nil {
		t.Errorf("same shape: %v", err)
	}
	if err := q.Compatible(NewTablePolicy(5, 2)); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected dimensions mismatch, got %v", err)
	}
	if err := q.Compatible(NewLinearPolicy()); err != nil {
		t.Errorf("other algorithms are not checked here: %v", err)
	}
}

func TestNetworkRoundTrip(t *testing.T) {
	n, err := NewNetworkPolicy(DefaultActivations)
	if err != nil {
		t.Fatalf("NewNetworkPolicy: %v", err)
	}
	n.SetWeight(2, 1, 0, -0.5)
	n.SetBias(0, 3, 0.25)
	blob := n.Encode()

	p, err := NewAdapter().Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	decoded := p.(*NetworkPolicy)
	if decoded.Weight(2, 1, 0) != -0.5 || decoded.NumLayers() != 4 {
		t.Errorf("network not decoded")
	}
	if !bytes.Equal(decoded.Encode(), blob) {
		t.Errorf("encode does not reproduce the blob")
	}

	obs := types.NewObs4(0.1, -0.2, 0.3, -0.4)
	a1, err := n.Act(obs)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	a2, _ := decoded.Act(obs)
	// decoding rounds the weights to float32
	if !scalar.EqualWithinAbs(float64(a1[0]), float64(a2[0]), 1e-5) || !scalar.EqualWithinAbs(float64(a1[1]), float64(a2[1]), 1e-5) {
		t.Errorf("decoded network acts differently: %v vs %v", a1, a2)
	}
	if !a1.IsWithinBounds(-1, 1) {
		t.Errorf("tanh output out of bounds %v", a1)
	}
}

func TestNetworkRejects(t *testing.T) {
	n, _ := NewNetworkPolicy(DefaultActivations)
	blob := n.Encode()
	cases := map[string][]byte{
		"short":          blob[:6],
		"truncated":      blob[:len(blob)-3],
		"bad activation": append([]byte{byte(TinyNN), 4, 0, 0, 9, 1}, blob[6:]...),
		"layer count":    append([]byte{byte(TinyNN), 3, 0}, blob[3:]...),
	}
	for name, b := range cases {
		if _, err := NewAdapter().Load(b); !errors.Is(err, types.ErrInvalidWeights) {
			t.Errorf("%s: expected ErrInvalidWeights, got %v", name, err)
		}
	}
}

func TestFixed(t *testing.T) {
	f := NewFixedPolicy(types.NewAction2(0.5, -0.3))
	p, err := NewAdapter().Load(f.Encode())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, _ := p.Act(types.NewObs4(1, 2, 3, 4))
	if a != types.NewAction2(0.5, -0.3) {
		t.Errorf("unexpected action %v", a)
	}
	if _, err := NewAdapter().Load([]byte{byte(Fixed), 1, 2}); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	info, err := Describe(NewLinearPolicy().Encode())
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if info.Algorithm != LinearFA || info.Size != 1+4+4*10 || info.Details == "" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for s, want := range map[string]Algorithm{"linearfa": LinearFA, "TinyNN": TinyNN, "tabular": TabularQ, "mock": Fixed} {
		got, err := ParseAlgorithm(s)
		if err != nil || got != want {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseAlgorithm("transformer"); !errors.Is(err, types.ErrUnsupportedAlgorithm) {
		t.Errorf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestActivations(t *testing.T) {
	if ReLU.Apply(-1) != 0 || ReLU.Apply(1) != 1 {
		t.Errorf("relu")
	}
	if Tanh.Apply(0) != 0 || Sigmoid.Apply(0) != 0.5 || Linear.Apply(-3) != -3 {
		t.Errorf("activation values")
	}
}

func TestNewDefaultLoads(t *testing.T) {
	for _, a := range []Algorithm{TabularQ, LinearFA, TinyNN, Fixed} {
		p, err := NewDefault(a)
		if err != nil {
			t.Fatalf("NewDefault(%s): %v", a, err)
		}
		info, err := Describe(p.Encode())
		if err != nil || info.Algorithm != a {
			t.Errorf("%s: Describe gave %+v, %v", a, info, err)
		}
	}
	if _, err := NewDefault(Algorithm(9)); !errors.Is(err, types.ErrUnsupportedAlgorithm) {
		t.Errorf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestNonFiniteValues(t *testing.T) {
	nan := float32(math.NaN())
	blob := append([]byte{byte(Fixed)}, f32le(nan, 0)...)
	if _, err := NewAdapter().Load(blob); !errors.Is(err, types.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights for a NaN fixed action, got %v", err)
	}

	inf := float32(math.Inf(1))
	l := NewLinearPolicyFrom(0.1, [types.ActionDim][types.ObsDim]float32{{inf, 0, 0, 0}, {0, 0, 0, 0}}, [types.ActionDim]float32{})
	// inf * 0 is NaN
	if _, err := l.Act(types.Obs4{}); !errors.Is(err, types.ErrPolicy) {
		t.Errorf("expected ErrPolicy, got %v", err)
	}
	if a, err := l.Act(types.NewObs4(1, 0, 0, 0)); err != nil || a[0] != 1 {
		t.Errorf("saturated tanh should still act, got %v %v", a, err)
	}
}
