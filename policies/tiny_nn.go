package policies

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeu5/leanrl/types"
	"gonum.org/v1/gonum/mat"
)

// LayerSizes of the network, input to output
var LayerSizes = []int{types.ObsDim, 64, 32, types.ActionDim}

type layer struct {
	w   *mat.Dense    // out x in
	b   *mat.VecDense // out
	act Activation
}

// NetworkPolicy is a small fully connected network with the fixed LayerSizes shape
type NetworkPolicy struct {
	layers []layer
}

var _ types.Policy = &NetworkPolicy{}

// DefaultActivations: relu hidden layers, tanh output for bounded actions
var DefaultActivations = []Activation{ReLU, ReLU, Tanh}

// NewNetworkPolicy builds the network with the deterministic initialisation
// w[out][in] = (out+in) * sqrt(2/in) * 0.01 and zero biases
func NewNetworkPolicy(activations []Activation) (*NetworkPolicy, error) {
	if len(activations) != len(LayerSizes)-1 {
		return nil, fmt.Errorf("expected %d activations, got %d: %w", len(LayerSizes)-1, len(activations), types.ErrInvalidWeights)
	}
	n := &NetworkPolicy{layers: make([]layer, len(activations))}
	for i, act := range activations {
		if !act.valid() {
			return nil, fmt.Errorf("unknown activation %d: %w", act, types.ErrInvalidWeights)
		}
		in, out := LayerSizes[i], LayerSizes[i+1]
		scale := math.Sqrt(2 / float64(in))
		w := mat.NewDense(out, in, nil)
		for o := 0; o < out; o++ {
			for j := 0; j < in; j++ {
				w.Set(o, j, float64(o+j)*scale*0.01)
			}
		}
		n.layers[i] = layer{w: w, b: mat.NewVecDense(out, nil), act: act}
	}
	return n, nil
}

// DecodeTinyNN reads: u16 number of layers (including input), one activation byte
// per non input layer, then for every layer out*in f32 weights followed by out f32 biases
func DecodeTinyNN(body []byte) (*NetworkPolicy, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("insufficient weights for TinyNN: %w", types.ErrInvalidWeights)
	}
	d := newDecoder(body)
	numLayers := int(d.u16("layer count"))
	if numLayers < 2 || numLayers > 5 {
		return nil, fmt.Errorf("invalid number of layers %d: %w", numLayers, types.ErrInvalidWeights)
	}
	if numLayers != len(LayerSizes) {
		return nil, fmt.Errorf("layer size mismatch: %d layers, network has %d: %w", numLayers, len(LayerSizes), types.ErrInvalidWeights)
	}
	activations := make([]Activation, numLayers-1)
	for i := range activations {
		activations[i] = Activation(d.u8("activation"))
	}
	if d.err != nil {
		return nil, d.err
	}
	n, err := NewNetworkPolicy(activations)
	if err != nil {
		return nil, err
	}
	for i := range n.layers {
		in, out := LayerSizes[i], LayerSizes[i+1]
		w := d.f64s(out*in, fmt.Sprintf("layer %d weights", i))
		b := d.f64s(out, fmt.Sprintf("layer %d biases", i))
		if d.err != nil {
			return nil, d.err
		}
		n.layers[i].w = mat.NewDense(out, in, w)
		n.layers[i].b = mat.NewVecDense(out, b)
	}
	return n, nil
}

func (n *NetworkPolicy) Act(obs types.Obs4) (types.Action2, error) {
	if !obs.IsFinite() {
		return types.Action2{}, fmt.Errorf("network policy on %v: non finite observation: %w", obs, types.ErrPolicy)
	}
	x := mat.NewVecDense(types.ObsDim, []float64{float64(obs[0]), float64(obs[1]), float64(obs[2]), float64(obs[3])})
	for _, l := range n.layers {
		r, _ := l.w.Dims()
		y := mat.NewVecDense(r, nil)
		y.MulVec(l.w, x)
		y.AddVec(y, l.b)
		for i := 0; i < r; i++ {
			y.SetVec(i, l.act.Apply(y.AtVec(i)))
		}
		x = y
	}
	var action types.Action2
	for i := range action {
		action[i] = float32(x.AtVec(i))
	}
	if !action.IsFinite() {
		return types.Action2{}, fmt.Errorf("network policy produced %v: %w", action, types.ErrPolicy)
	}
	return action, nil
}

// SetWeight sets w[out][in] of the given layer
func (n *NetworkPolicy) SetWeight(layerIdx, out, in int, v float32) {
	n.layers[layerIdx].w.Set(out, in, float64(v))
}

func (n *NetworkPolicy) SetBias(layerIdx, out int, v float32) {
	n.layers[layerIdx].b.SetVec(out, float64(v))
}

func (n *NetworkPolicy) Weight(layerIdx, out, in int) float32 {
	return float32(n.layers[layerIdx].w.At(out, in))
}

func (n *NetworkPolicy) NumLayers() int {
	return len(n.layers) + 1
}

func (n *NetworkPolicy) Algorithm() string {
	return TinyNN.String()
}

func (n *NetworkPolicy) Encode() []byte {
	e := newEncoder(TinyNN)
	e.u16(uint16(len(n.layers) + 1))
	for _, l := range n.layers {
		e.u8(uint8(l.act))
	}
	for _, l := range n.layers {
		e.f64s(l.w.RawMatrix().Data)
		e.f64s(l.b.RawVector().Data)
	}
	return e.bytes()
}

func (n *NetworkPolicy) String() string {
	acts := make([]string, len(n.layers))
	for i, l := range n.layers {
		acts[i] = l.act.String()
	}
	sizes := make([]string, len(LayerSizes))
	for i, s := range LayerSizes {
		sizes[i] = fmt.Sprint(s)
	}
	return fmt.Sprintf("network %s, activations %s", strings.Join(sizes, "-"), strings.Join(acts, ","))
}
