// Package bridge converts observations and actions to and from the numeric
// containers used by linear algebra and tensor libraries. All conversions copy.
package bridge

import (
	"fmt"

	"github.com/zeu5/leanrl/types"
	"gonum.org/v1/gonum/mat"
)

func ObsToVec(obs types.Obs4) *mat.VecDense {
	return mat.NewVecDense(types.ObsDim, widen(obs[:]))
}

func ActionToVec(a types.Action2) *mat.VecDense {
	return mat.NewVecDense(types.ActionDim, widen(a[:]))
}

// VecToObs fails with ErrInvalidSize unless v has exactly ObsDim elements
func VecToObs(v mat.Vector) (types.Obs4, error) {
	var obs types.Obs4
	if err := narrowVec(obs[:], v); err != nil {
		return types.Obs4{}, err
	}
	return obs, nil
}

// VecToAction fails with ErrInvalidSize unless v has exactly ActionDim elements
func VecToAction(v mat.Vector) (types.Action2, error) {
	var a types.Action2
	if err := narrowVec(a[:], v); err != nil {
		return types.Action2{}, err
	}
	return a, nil
}

func widen(vs []float32) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

func narrowVec(dst []float32, v mat.Vector) error {
	if v == nil || v.Len() != len(dst) {
		n := 0
		if v != nil {
			n = v.Len()
		}
		return fmt.Errorf("vector of length %d, expected %d: %w", n, len(dst), types.ErrInvalidSize)
	}
	for i := range dst {
		dst[i] = float32(v.AtVec(i))
	}
	return nil
}
