package types

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-6

func actionsClose(a, b Action2) bool {
	for i := range a {
		if !scalar.EqualWithinAbsOrRel(float64(a[i]), float64(b[i]), 1e-4, tol) {
			return false
		}
	}
	return true
}

var sampleActions = []Action2{
	{0, 0},
	{0.5, -0.3},
	{-1.25, 3.5},
	{1e3, -1e-3},
	{7, 7},
	{-2, -8},
}

func TestObsCopyIsIndependent(t *testing.T) {
	obs := NewObs4(1, 2, 3, 4)
	cp := obs
	if err := cp.Set(0, 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if obs[0] != 1 {
		t.Errorf("original modified through copy: %v", obs)
	}
	for i, v := range NewObs4(1, 2, 3, 4).Values() {
		if math.Float32bits(v) != math.Float32bits(obs[i]) {
			t.Errorf("component %d not bit identical", i)
		}
	}
}

func TestObsFromSlice(t *testing.T) {
	obs, err := Obs4FromSlice([]float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Obs4FromSlice: %v", err)
	}
	if obs != NewObs4(1, 2, 3, 4) {
		t.Errorf("unexpected obs %v", obs)
	}
	if _, err := Obs4FromSlice([]float32{1, 2}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := Action2FromSlice([]float32{1, 2, 3}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	obs := Obs4{}
	for _, i := range []int{-1, 4, 100} {
		if _, err := obs.At(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At(%d): expected ErrOutOfRange, got %v", i, err)
		}
		if err := obs.Set(i, 1); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set(%d): expected ErrOutOfRange, got %v", i, err)
		}
	}
	a := Action2{}
	if _, err := a.At(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if v, err := a.At(1); err != nil || v != 0 {
		t.Errorf("At(1) = %v, %v", v, err)
	}
}

func TestIterationRestarts(t *testing.T) {
	obs := NewObs4(4, 3, 2, 1)
	for round := 0; round < 2; round++ {
		expected := 0
		for i, v := range obs.All() {
			if i != expected {
				t.Fatalf("round %d: index %d, expected %d", round, i, expected)
			}
			if v != obs[i] {
				t.Fatalf("round %d: value mismatch at %d", round, i)
			}
			expected++
		}
		if expected != obs.Len() {
			t.Fatalf("round %d: visited %d components", round, expected)
		}
	}
	// early exit does not break the next iteration
	for range obs.All() {
		break
	}
	count := 0
	for range obs.All() {
		count++
	}
	if count != 4 {
		t.Errorf("expected 4 components, got %d", count)
	}
}

func TestActionAddSub(t *testing.T) {
	for _, a := range sampleActions {
		for _, b := range sampleActions {
			if got := a.Add(b).Sub(b); !actionsClose(got, a) {
				t.Errorf("(%v + %v) - %v = %v", a, b, b, got)
			}
		}
	}
}

func TestActionMulIsElementwise(t *testing.T) {
	got := NewAction2(2, 3).Mul(NewAction2(4, -5))
	if got != NewAction2(8, -15) {
		t.Errorf("unexpected product %v", got)
	}
}

func TestScaleCommutes(t *testing.T) {
	for _, a := range sampleActions {
		for _, s := range []float32{0, 1, -2, 0.5, 1e4} {
			if a.Scale(s) != ScaleAction(s, a) {
				t.Errorf("scale not commutative for %v and %v", a, s)
			}
		}
	}
	if got := NewAction2(1, -0.3).Scale(2); !actionsClose(got, NewAction2(2, -0.6)) {
		t.Errorf("unexpected scaled action %v", got)
	}
}

func TestClamp(t *testing.T) {
	bounds := [][2]float32{{-1, 1}, {0, 0}, {-10, -5}, {2, 100}}
	for _, a := range sampleActions {
		for _, b := range bounds {
			c := a.Clamp(b[0], b[1])
			for _, x := range c {
				if x < b[0] || x > b[1] {
					t.Errorf("%v.Clamp(%v, %v) = %v", a, b[0], b[1], c)
				}
			}
			if !c.IsWithinBounds(b[0], b[1]) {
				t.Errorf("clamped action %v not within [%v, %v]", c, b[0], b[1])
			}
		}
	}
	if got := NewAction2(1.5, -2).Clamp(-1, 1); got != NewAction2(1, -1) {
		t.Errorf("unexpected clamp %v", got)
	}
}

func TestClampInvertedRange(t *testing.T) {
	got := NewAction2(0.3, -4).Clamp(1, -1)
	if got != NewAction2(1, 1) {
		t.Errorf("expected collapse to min, got %v", got)
	}
	if got2 := NewAction2(0.3, -4).Clamp(1, -1); got2 != got {
		t.Errorf("clamp not deterministic")
	}
}

func TestMaxMin(t *testing.T) {
	for _, a := range sampleActions {
		if a.Max() < a.Min() {
			t.Errorf("max < min for %v", a)
		}
		if (a.Max() == a.Min()) != (a[0] == a[1]) {
			t.Errorf("max == min iff components equal, failed for %v", a)
		}
	}
}

func TestIsWithinBounds(t *testing.T) {
	cases := []struct {
		a        Action2
		min, max float32
		want     bool
	}{
		{NewAction2(0.5, -0.3), -1, 1, true},
		{NewAction2(1, -1), -1, 1, true},
		{NewAction2(1.5, -0.3), -1, 1, false},
		{NewAction2(0, float32(math.NaN())), -1, 1, false},
	}
	for _, c := range cases {
		if got := c.a.IsWithinBounds(c.min, c.max); got != c.want {
			t.Errorf("%v.IsWithinBounds(%v, %v) = %v", c.a, c.min, c.max, got)
		}
	}
}

func TestDivByZero(t *testing.T) {
	got := NewAction2(1, 4).Div(NewAction2(0, 2))
	if !math.IsInf(float64(got[0]), 1) || got[1] != 2 {
		t.Errorf("unexpected quotient %v", got)
	}
}

func TestSoftmaxAndArgMax(t *testing.T) {
	s := NewAction2(1, 2).Softmax()
	if !scalar.EqualWithinAbs(float64(s[0]+s[1]), 1, tol) {
		t.Errorf("softmax does not sum to one: %v", s)
	}
	if NewAction2(0.1, 0.8).ArgMax() != 1 {
		t.Errorf("wrong argmax")
	}
	if NewAction2(0.5, 0.5).ArgMax() != 1 {
		t.Errorf("ties should go to the higher index")
	}
	if NewAction2(0.9, 0.5).ArgMax() != 0 {
		t.Errorf("wrong argmax")
	}
}

func TestObsNormalize(t *testing.T) {
	n := NewObs4(3, 4, 0, 0).Normalize()
	if !scalar.EqualWithinAbs(float64(n.Norm()), 1, tol) {
		t.Errorf("expected unit norm, got %v", n.Norm())
	}
	if (Obs4{}).Normalize() != (Obs4{}) {
		t.Errorf("zero observation should stay zero")
	}
	if NewObs4(1, 2, 3, 4).Dot(NewObs4(1, 1, 1, 1)) != 10 {
		t.Errorf("wrong dot product")
	}
}

func TestFinite(t *testing.T) {
	if !NewObs4(1, 2, 3, 4).IsFinite() {
		t.Errorf("finite observation reported as non finite")
	}
	if NewObs4(1, float32(math.Inf(-1)), 3, 4).IsFinite() {
		t.Errorf("infinite component not detected")
	}
	if NewAction2(float32(math.NaN()), 0).IsFinite() {
		t.Errorf("NaN component not detected")
	}
}

func TestCode(t *testing.T) {
	if Code(nil) != CodeOK {
		t.Errorf("nil should map to CodeOK")
	}
	_, err := Obs4FromSlice(nil)
	if Code(err) != CodeInvalidSize {
		t.Errorf("expected CodeInvalidSize for %v", err)
	}
	if Code(ErrInvalidWeights) != CodeBadWeights {
		t.Errorf("expected CodeBadWeights")
	}
	if Code(errors.New("boom")) != CodeInternalFail {
		t.Errorf("expected CodeInternalFail")
	}
}
