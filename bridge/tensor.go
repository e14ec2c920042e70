package bridge

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"github.com/zeu5/leanrl/types"
)

func ObsToTensor(obs types.Obs4) *etensor.Float32 {
	t := etensor.NewFloat32([]int{types.ObsDim}, nil, nil)
	copy(t.Values, obs[:])
	return t
}

func ActionToTensor(a types.Action2) *etensor.Float32 {
	t := etensor.NewFloat32([]int{types.ActionDim}, nil, nil)
	copy(t.Values, a[:])
	return t
}

// TensorToObs reads the tensor in row major order, any shape with ObsDim elements is accepted
func TensorToObs(t etensor.Tensor) (types.Obs4, error) {
	var obs types.Obs4
	if err := narrowTensor(obs[:], t); err != nil {
		return types.Obs4{}, err
	}
	return obs, nil
}

func TensorToAction(t etensor.Tensor) (types.Action2, error) {
	var a types.Action2
	if err := narrowTensor(a[:], t); err != nil {
		return types.Action2{}, err
	}
	return a, nil
}

func narrowTensor(dst []float32, t etensor.Tensor) error {
	if t == nil || t.Len() != len(dst) {
		n := 0
		if t != nil {
			n = t.Len()
		}
		return fmt.Errorf("tensor of %d elements, expected %d: %w", n, len(dst), types.ErrInvalidSize)
	}
	for i := range dst {
		dst[i] = float32(t.FloatVal1D(i))
	}
	return nil
}

// raw buffers hold little endian float32 values, the layout inference engines bind as I/O

// ObsBufferSize is the byte size of an observation buffer
const ObsBufferSize = 4 * types.ObsDim

// ActionBufferSize is the byte size of an action buffer
const ActionBufferSize = 4 * types.ActionDim

// PutObs writes obs into dst, which must hold at least ObsBufferSize bytes
func PutObs(dst []byte, obs types.Obs4) error {
	return putFloats(dst, obs[:])
}

func PutAction(dst []byte, a types.Action2) error {
	return putFloats(dst, a[:])
}

func ObsFromBuffer(src []byte) (types.Obs4, error) {
	var obs types.Obs4
	if err := readFloats(obs[:], src); err != nil {
		return types.Obs4{}, err
	}
	return obs, nil
}

func ActionFromBuffer(src []byte) (types.Action2, error) {
	var a types.Action2
	if err := readFloats(a[:], src); err != nil {
		return types.Action2{}, err
	}
	return a, nil
}

func putFloats(dst []byte, vs []float32) error {
	if len(dst) < 4*len(vs) {
		return fmt.Errorf("buffer of %d bytes, need %d: %w", len(dst), 4*len(vs), types.ErrInvalidSize)
	}
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
	return nil
}

func readFloats(dst []float32, src []byte) error {
	if len(src) < 4*len(dst) {
		return fmt.Errorf("buffer of %d bytes, need %d: %w", len(src), 4*len(dst), types.ErrInvalidSize)
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
	return nil
}
