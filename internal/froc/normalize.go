package froc

import "gonum.org/v1/gonum/floats"

// Normalize rescales every mask with one shared affine map so that the
// smallest value across all masks becomes 0 and the largest 1. The inputs
// are not modified. When all values are equal every output cell is 0.
func Normalize(masks []*Mask) []*Mask {
	out := make([]*Mask, len(masks))
	if len(masks) == 0 {
		return out
	}

	lo, hi := valueBounds(masks)
	for i, m := range masks {
		c := m.Clone()
		if span := hi - lo; span != 0 {
			// Division keeps the maximum at exactly 1.
			floats.AddConst(-lo, c.data)
			for k := range c.data {
				c.data[k] /= span
			}
		} else {
			floats.Scale(0, c.data)
		}
		out[i] = c
	}
	return out
}

// valueBounds returns the minimum and maximum value over all masks.
func valueBounds(masks []*Mask) (lo, hi float64) {
	for i, m := range masks {
		mlo, mhi := floats.Min(m.data), floats.Max(m.data)
		if i == 0 || mlo < lo {
			lo = mlo
		}
		if i == 0 || mhi > hi {
			hi = mhi
		}
	}
	return lo, hi
}
