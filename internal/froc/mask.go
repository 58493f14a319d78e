package froc

import (
	"fmt"
	"slices"
)

// Mask is a dense N-dimensional grid of values stored in row-major order.
// It holds either a probability map or a binary mask where any nonzero
// value counts as set.
type Mask struct {
	shape   []int
	strides []int
	data    []float64
}

// NewMask wraps data with the given shape. The data slice is copied.
func NewMask(shape []int, data []float64) (*Mask, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: mask needs at least one dimension", ErrInvalidArgument)
	}
	size := 1
	for i, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("%w: dimension %d has size %d", ErrInvalidArgument, i, s)
		}
		size *= s
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrInvalidArgument, shape, size, len(data))
	}
	return &Mask{
		shape:   slices.Clone(shape),
		strides: stridesFor(shape),
		data:    slices.Clone(data),
	}, nil
}

// ZeroMask returns an all-zero mask of the given shape. It panics on a
// non-positive dimension.
func ZeroMask(shape ...int) *Mask {
	size := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("froc: invalid mask shape %v", shape))
		}
		size *= s
	}
	if len(shape) == 0 {
		panic("froc: mask needs at least one dimension")
	}
	return &Mask{
		shape:   slices.Clone(shape),
		strides: stridesFor(shape),
		data:    make([]float64, size),
	}
}

func stridesFor(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Shape returns a copy of the mask dimensions.
func (m *Mask) Shape() []int { return slices.Clone(m.shape) }

// NDim returns the number of dimensions.
func (m *Mask) NDim() int { return len(m.shape) }

// Len returns the number of cells.
func (m *Mask) Len() int { return len(m.data) }

// Data returns the backing row-major slice. Callers must not modify it.
func (m *Mask) Data() []float64 { return m.data }

// At returns the value at the given index.
func (m *Mask) At(idx ...int) float64 { return m.data[m.offset(idx)] }

// Set stores v at the given index.
func (m *Mask) Set(v float64, idx ...int) { m.data[m.offset(idx)] = v }

func (m *Mask) offset(idx []int) int {
	if len(idx) != len(m.shape) {
		panic(fmt.Sprintf("froc: index %v for mask of shape %v", idx, m.shape))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= m.shape[i] {
			panic(fmt.Sprintf("froc: index %v out of range for shape %v", idx, m.shape))
		}
		off += v * m.strides[i]
	}
	return off
}

// unravel writes the coordinate of flat offset off into coord.
func (m *Mask) unravel(off int, coord []int) {
	for i, s := range m.strides {
		coord[i] = off / s
		off %= s
	}
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	return &Mask{
		shape:   slices.Clone(m.shape),
		strides: slices.Clone(m.strides),
		data:    slices.Clone(m.data),
	}
}

// SameShape reports whether both masks have identical dimensions.
func (m *Mask) SameShape(o *Mask) bool {
	return slices.Equal(m.shape, o.shape)
}

// Binarize returns a mask holding 1 where the value is at least threshold
// and 0 elsewhere.
func (m *Mask) Binarize(threshold float64) *Mask {
	out := &Mask{
		shape:   m.shape,
		strides: m.strides,
		data:    make([]float64, len(m.data)),
	}
	for i, v := range m.data {
		if v >= threshold {
			out.data[i] = 1
		}
	}
	return out
}

// CountNonZero returns the number of set cells.
func (m *Mask) CountNonZero() int {
	n := 0
	for _, v := range m.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// AnyNonZero reports whether at least one cell is set.
func (m *Mask) AnyNonZero() bool {
	return slices.ContainsFunc(m.data, func(v float64) bool { return v != 0 })
}
