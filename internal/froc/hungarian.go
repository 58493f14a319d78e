package froc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// HungarianAssign solves the rectangular linear assignment problem for an
// n×m cost matrix with the Kuhn–Munkres algorithm (Jonker–Volgenant
// potentials), in O(max(n,m)³) time.
//
// It returns assignments[i] = column assigned to row i, or -1 when row i is
// left over because n > m. Exactly min(n, m) rows are assigned and the total
// cost of those pairs is minimal.
//
// The matrix is padded to square with zero-cost dummy rows or columns.
func HungarianAssign(cost mat.Matrix) []int {
	if cost == nil {
		return nil
	}
	n, m := cost.Dims()
	if n == 0 {
		return nil
	}
	if m == 0 {
		result := make([]int, n)
		for i := range result {
			result[i] = -1
		}
		return result
	}

	dim := max(n, m)
	c := make([][]float64, dim)
	for i := range dim {
		c[i] = make([]float64, dim)
		if i >= n {
			continue
		}
		for j := range m {
			c[i][j] = cost.At(i, j)
		}
	}

	// 1-indexed arrays; index 0 is the virtual column.
	const inf = math.MaxFloat64 / 2

	u := make([]float64, dim+1) // row potentials
	v := make([]float64, dim+1) // column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // previous column on the augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0

		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				break
			}

			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	rowAssign := make([]int, dim)
	for i := range rowAssign {
		rowAssign[i] = -1
	}
	for j := 1; j <= dim; j++ {
		if p[j] > 0 {
			rowAssign[p[j]-1] = j - 1
		}
	}

	// Drop dummy rows and pairings with dummy columns.
	result := make([]int, n)
	for i := range n {
		if col := rowAssign[i]; col >= 0 && col < m {
			result[i] = col
		} else {
			result[i] = -1
		}
	}
	return result
}
