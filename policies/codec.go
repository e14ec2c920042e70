package policies

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeu5/leanrl/types"
)

// decoder reads little-endian fields from a weights blob.
// The first short read sets err, later reads are no-ops.
type decoder struct {
	buf    []byte
	offset int
	err    error
}

func newDecoder(buf []byte) *decoder {
	return &decoder{buf: buf}
}

func (d *decoder) need(n int, what string) bool {
	if d.err != nil {
		return false
	}
	if d.offset+n > len(d.buf) {
		d.err = fmt.Errorf("insufficient data for %s: need %d bytes at offset %d, have %d: %w",
			what, n, d.offset, len(d.buf)-d.offset, types.ErrInvalidWeights)
		return false
	}
	return true
}

func (d *decoder) u8(what string) uint8 {
	if !d.need(1, what) {
		return 0
	}
	v := d.buf[d.offset]
	d.offset++
	return v
}

func (d *decoder) u16(what string) uint16 {
	if !d.need(2, what) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.offset:])
	d.offset += 2
	return v
}

func (d *decoder) u32(what string) uint32 {
	if !d.need(4, what) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.offset:])
	d.offset += 4
	return v
}

func (d *decoder) f32(what string) float32 {
	return math.Float32frombits(d.u32(what))
}

// f64s reads n float32 values widened to float64, the layout gonum wants
func (d *decoder) f64s(n int, what string) []float64 {
	if !d.need(4*n, what) {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(d.buf[d.offset:])))
		d.offset += 4
	}
	return out
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.offset
}

type encoder struct {
	buf []byte
}

func newEncoder(tag Algorithm) *encoder {
	return &encoder{buf: []byte{byte(tag)}}
}

func (e *encoder) u8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) u16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) f32(v float32) {
	e.u32(math.Float32bits(v))
}

func (e *encoder) f64s(vs []float64) {
	for _, v := range vs {
		e.f32(float32(v))
	}
}

func (e *encoder) bytes() []byte {
	return e.buf
}
