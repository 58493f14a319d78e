package froc

import (
	"fmt"
	"strings"
)

// Connectivity selects which neighbouring cells join a component.
type Connectivity int

const (
	// FullConnectivity joins every cell within one step along any
	// combination of axes (8 neighbours in 2-D, 26 in 3-D).
	FullConnectivity Connectivity = iota
	// FaceConnectivity joins only cells sharing a face (4 neighbours in
	// 2-D, 6 in 3-D).
	FaceConnectivity
)

func (c Connectivity) String() string {
	if c == FaceConnectivity {
		return "face"
	}
	return "full"
}

// ParseConnectivity maps "full" or "face" to a Connectivity. The empty
// string selects FullConnectivity.
func ParseConnectivity(s string) (Connectivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return FullConnectivity, nil
	case "face":
		return FaceConnectivity, nil
	default:
		return FullConnectivity, fmt.Errorf("%w: connectivity %q", ErrInvalidArgument, s)
	}
}

// neighbourOffsets lists the coordinate deltas for ndim dimensions.
func neighbourOffsets(ndim int, conn Connectivity) [][]int {
	if conn == FaceConnectivity {
		out := make([][]int, 0, 2*ndim)
		for axis := range ndim {
			for _, step := range []int{-1, 1} {
				d := make([]int, ndim)
				d[axis] = step
				out = append(out, d)
			}
		}
		return out
	}

	total := 1
	for range ndim {
		total *= 3
	}
	out := make([][]int, 0, total-1)
	for k := range total {
		d := make([]int, ndim)
		zero := true
		for axis, rem := ndim-1, k; axis >= 0; axis-- {
			d[axis] = rem%3 - 1
			rem /= 3
			if d[axis] != 0 {
				zero = false
			}
		}
		if !zero {
			out = append(out, d)
		}
	}
	return out
}

// LabelComponents assigns a label from 1 to count to every nonzero cell,
// grouping cells that are connected under conn. Labels follow the raster
// order of each component's first cell. Zero cells keep label 0.
func LabelComponents(m *Mask, conn Connectivity) (labels []int, count int) {
	labels = make([]int, m.Len())
	offsets := neighbourOffsets(m.NDim(), conn)
	coord := make([]int, m.NDim())
	next := make([]int, m.NDim())
	var stack []int

	for start, v := range m.data {
		if v == 0 || labels[start] != 0 {
			continue
		}
		count++
		labels[start] = count
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.unravel(cur, coord)

		neighbours:
			for _, d := range offsets {
				off := 0
				for axis := range coord {
					next[axis] = coord[axis] + d[axis]
					if next[axis] < 0 || next[axis] >= m.shape[axis] {
						continue neighbours
					}
					off += next[axis] * m.strides[axis]
				}
				if m.data[off] != 0 && labels[off] == 0 {
					labels[off] = count
					stack = append(stack, off)
				}
			}
		}
	}
	return labels, count
}

// ExtractCentroids returns one centre of mass per connected component of the
// nonzero cells of m, in label order. Cell values act as weights, so for a
// binary mask the centroid is the mean coordinate of the component.
func ExtractCentroids(m *Mask, conn Connectivity) PointSet {
	labels, count := LabelComponents(m, conn)
	if count == 0 {
		return PointSet{}
	}

	ndim := m.NDim()
	weighted := make([][]float64, count)
	plain := make([][]float64, count)
	weights := make([]float64, count)
	cells := make([]int, count)
	for i := range count {
		weighted[i] = make([]float64, ndim)
		plain[i] = make([]float64, ndim)
	}

	coord := make([]int, ndim)
	for off, l := range labels {
		if l == 0 {
			continue
		}
		k := l - 1
		w := m.data[off]
		m.unravel(off, coord)
		for axis, c := range coord {
			weighted[k][axis] += w * float64(c)
			plain[k][axis] += float64(c)
		}
		weights[k] += w
		cells[k]++
	}

	out := make(PointSet, count)
	for k := range count {
		p := make(Point, ndim)
		for axis := range ndim {
			if weights[k] != 0 {
				p[axis] = weighted[k][axis] / weights[k]
			} else {
				// Values cancelling out to zero weight fall back to the
				// geometric centre.
				p[axis] = plain[k][axis] / float64(cells[k])
			}
		}
		out[k] = p
	}
	return out
}
