package bridge

import "github.com/zeu5/leanrl/types"

// ToObs zero pads or truncates s to an observation
func ToObs(s []float32) types.Obs4 {
	var obs types.Obs4
	copy(obs[:], s)
	return obs
}

// ToAction zero pads or truncates s to an action
func ToAction(s []float32) types.Action2 {
	var a types.Action2
	copy(a[:], s)
	return a
}

func ToSlice(v types.Vector) []float32 {
	return v.Values()
}

func ToFloat64s(v types.Vector) []float64 {
	return widen(v.Values())
}
