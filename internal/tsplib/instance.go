// Package tsplib builds TSP cost models from TSPLIB-formatted data:
// coordinate-based distance formulas, explicit weight matrices, and tour
// cost evaluation over the resulting symmetric integer matrix.
package tsplib

import "fmt"

// Supported EDGE_WEIGHT_TYPE values.
const (
	WeightEuc2D    = "EUC_2D"
	WeightCeil2D   = "CEIL_2D"
	WeightATT      = "ATT"
	WeightGeo      = "GEO"
	WeightExplicit = "EXPLICIT"
)

// Supported EDGE_WEIGHT_FORMAT values for EXPLICIT instances.
const (
	FormatFullMatrix   = "FULL_MATRIX"
	FormatLowerRow     = "LOWER_ROW"
	FormatLowerDiagRow = "LOWER_DIAG_ROW"
	FormatUpperRow     = "UPPER_ROW"
	FormatUpperDiagRow = "UPPER_DIAG_ROW"
)

// Instance is an immutable TSP instance: metadata plus a symmetric integer
// distance matrix with a zero diagonal. Build one via Parse, FromCoords or
// FromMatrix; do not mutate it afterwards.
type Instance struct {
	Name             string
	Comment          string
	Type             string
	Dimension        int
	EdgeWeightType   string
	EdgeWeightFormat string

	Coords        [][2]float64
	DisplayCoords [][2]float64
	Matrix        [][]int

	// Optimal is the known optimal tour length, when the catalog has one.
	Optimal *float64
}

// Evaluate returns the cyclic cost of tour: the sum of edge weights along
// the closed loop tour[0] → tour[1] → … → tour[n-1] → tour[0].
// Calling it before the matrix is built is a programming error.
func (in *Instance) Evaluate(tour []int) float64 {
	if in.Matrix == nil {
		panic("tsplib: Evaluate called before distance matrix was built")
	}
	total := 0
	n := len(tour)
	for k := 0; k < n; k++ {
		total += in.Matrix[tour[k]][tour[(k+1)%n]]
	}
	return float64(total)
}

// FromCoords builds an instance from coordinate pairs using the given
// coordinate-based EDGE_WEIGHT_TYPE.
func FromCoords(weightType string, coords [][2]float64) (*Instance, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("tsplib: no coordinates provided")
	}
	m, err := coordMatrix(weightType, coords)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Dimension:      len(coords),
		EdgeWeightType: weightType,
		Coords:         coords,
		Matrix:         m,
	}, nil
}

// FromMatrix builds an EXPLICIT instance of dimension n from a flat value
// stream in the given EDGE_WEIGHT_FORMAT. Triangular formats are mirrored
// into a full symmetric matrix.
func FromMatrix(format string, values []int, n int) (*Instance, error) {
	if n <= 0 {
		return nil, fmt.Errorf("tsplib: dimension must be positive, got %d", n)
	}
	m, err := explicitMatrix(format, values, n)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Dimension:        n,
		EdgeWeightType:   WeightExplicit,
		EdgeWeightFormat: format,
		Matrix:           m,
	}, nil
}
