package tsplib

import (
	"fmt"
	"math"
)

// geoRadius is the TSPLIB earth radius for GEO instances, in kilometers.
const geoRadius = 6378.388

func coordMatrix(weightType string, coords [][2]float64) ([][]int, error) {
	var dist func(a, b [2]float64) int
	switch weightType {
	case WeightEuc2D:
		dist = euc2d
	case WeightCeil2D:
		dist = ceil2d
	case WeightATT:
		dist = att
	case WeightGeo:
		return geoMatrix(coords), nil
	default:
		return nil, fmt.Errorf("tsplib: unsupported EDGE_WEIGHT_TYPE %q", weightType)
	}
	n := len(coords)
	m := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(coords[i], coords[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m, nil
}

// euc2d rounds half-up, per the TSPLIB nint convention.
func euc2d(a, b [2]float64) int {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return int(math.Sqrt(dx*dx+dy*dy) + 0.5)
}

func ceil2d(a, b [2]float64) int {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return int(math.Ceil(math.Sqrt(dx*dx + dy*dy)))
}

// att is the pseudo-Euclidean distance used by att48/att532.
func att(a, b [2]float64) int {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	r := math.Sqrt((dx*dx + dy*dy) / 10.0)
	t := int(r + 0.5)
	if float64(t) < r {
		return t + 1
	}
	return t
}

// geoMatrix computes great-circle distances. Coordinate components are
// encoded as DDD.MM (degrees and minutes), not plain decimal degrees.
func geoMatrix(coords [][2]float64) [][]int {
	n := len(coords)
	lat := make([]float64, n)
	lon := make([]float64, n)
	for i, c := range coords {
		lat[i] = geoRadians(c[0])
		lon[i] = geoRadians(c[1])
	}
	m := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			q1 := math.Cos(lon[i] - lon[j])
			q2 := math.Cos(lat[i] - lat[j])
			q3 := math.Cos(lat[i] + lat[j])
			d := int(geoRadius*math.Acos(0.5*((1+q1)*q2-(1-q1)*q3)) + 1.0)
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

func geoRadians(c float64) float64 {
	deg := float64(int(c))
	min := c - deg
	return math.Pi * (deg + 5.0*min/3.0) / 180.0
}

func newMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func explicitMatrix(format string, values []int, n int) ([][]int, error) {
	switch format {
	case FormatFullMatrix:
		if len(values) < n*n {
			return nil, fmt.Errorf("tsplib: FULL_MATRIX needs %d values, got %d", n*n, len(values))
		}
		m := make([][]int, n)
		for i := 0; i < n; i++ {
			m[i] = append([]int(nil), values[i*n:(i+1)*n]...)
		}
		return m, nil
	case FormatLowerRow:
		return triangular(values, n, true, false)
	case FormatLowerDiagRow:
		return triangular(values, n, true, true)
	case FormatUpperRow:
		return triangular(values, n, false, false)
	case FormatUpperDiagRow:
		return triangular(values, n, false, true)
	default:
		return nil, fmt.Errorf("tsplib: unsupported EDGE_WEIGHT_FORMAT %q", format)
	}
}

// triangular mirrors each parsed value across the diagonal so the result is
// always a full symmetric matrix. DIAG formats carry the zero diagonal in the
// value stream; the others do not.
func triangular(values []int, n int, lower, diag bool) ([][]int, error) {
	need := n * (n - 1) / 2
	if diag {
		need += n
	}
	if len(values) < need {
		return nil, fmt.Errorf("tsplib: triangular matrix needs %d values, got %d", need, len(values))
	}
	m := newMatrix(n)
	k := 0
	for i := 0; i < n; i++ {
		if lower {
			hi := i
			if diag {
				hi = i + 1
			}
			for j := 0; j < hi; j++ {
				m[i][j] = values[k]
				m[j][i] = values[k]
				k++
			}
		} else {
			lo := i + 1
			if diag {
				lo = i
			}
			for j := lo; j < n; j++ {
				m[i][j] = values[k]
				m[j][i] = values[k]
				k++
			}
		}
	}
	return m, nil
}
