package types

import (
	"fmt"
	"iter"
	"math"
)

// Vector is the shape shared by the fixed-length observation and action types
type Vector interface {
	// Len is the fixed arity of the vector
	Len() int
	// At returns the component at index i, ErrOutOfRange outside [0, Len)
	At(int) (float32, error)
	// Values returns a copy of the components in index order
	Values() []float32
	// All iterates over (index, component) pairs starting at index 0
	All() iter.Seq2[int, float32]
}

func at(data []float32, i int) (float32, error) {
	if i < 0 || i >= len(data) {
		return 0, fmt.Errorf("index %d not in [0, %d): %w", i, len(data), ErrOutOfRange)
	}
	return data[i], nil
}

func set(data []float32, i int, v float32) error {
	if i < 0 || i >= len(data) {
		return fmt.Errorf("index %d not in [0, %d): %w", i, len(data), ErrOutOfRange)
	}
	data[i] = v
	return nil
}

func all(data []float32) iter.Seq2[int, float32] {
	return func(yield func(int, float32) bool) {
		for i, v := range data {
			if !yield(i, v) {
				return
			}
		}
	}
}

func fromSlice(dst, src []float32) error {
	if len(src) != len(dst) {
		return fmt.Errorf("expected %d components, got %d: %w", len(dst), len(src), ErrInvalidSize)
	}
	copy(dst, src)
	return nil
}

func finite(data []float32) bool {
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func format(data []float32) string {
	s := "["
	for i, v := range data {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%.4f", v)
	}
	return s + "]"
}
