package svm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"svmbridge/engine"
)

// asDense materializes x as a dense float64 matrix with contiguous
// row-major storage, copying only when the input is not already laid
// out that way.
func asDense(x mat.Matrix) *mat.Dense {
	if d, ok := x.(*mat.Dense); ok {
		rm := d.RawMatrix()
		if rm.Stride == rm.Cols {
			return d
		}
	}
	return mat.DenseCopyOf(x)
}

// DenseFromRows builds a dense matrix from row slices, rejecting ragged
// input. Convenience for callers holding [][]float64 rather than a
// mat.Matrix.
func DenseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrShapeMismatch)
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty rows", ErrShapeMismatch)
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, row 0 has %d",
				ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// NewProblem converts a dense sample matrix and target vector into the
// engine's sparse problem form: one sentinel-terminated node row per
// sample, 1-based feature indices 1..n_features. All node rows share a
// single backing slice to keep the conversion to one allocation per
// problem.
func NewProblem(x mat.Matrix, y []float64) (*engine.Problem, error) {
	d := asDense(x)
	n, features := d.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d samples but %d targets", ErrShapeMismatch, n, len(y))
	}

	rm := d.RawMatrix()
	width := features + 1
	backing := make([]engine.Node, n*width)

	prob := &engine.Problem{
		L: n,
		Y: append([]float64(nil), y...),
		X: make([][]engine.Node, n),
	}
	for i := 0; i < n; i++ {
		nodes := backing[i*width : (i+1)*width : (i+1)*width]
		row := rm.Data[i*rm.Stride : i*rm.Stride+features]
		for j, v := range row {
			nodes[j] = engine.Node{Index: j + 1, Value: v}
		}
		nodes[features] = engine.Node{Index: engine.SentinelIndex}
		prob.X[i] = nodes
	}
	return prob, nil
}

// newNodeBuffer allocates a single sentinel-terminated node row for
// prediction loops. The index structure is fixed once the feature count
// is known; setNodeRow overwrites only the values, so one buffer serves
// every row of a batch.
func newNodeBuffer(features int) []engine.Node {
	nodes := make([]engine.Node, features+1)
	for j := 0; j < features; j++ {
		nodes[j].Index = j + 1
	}
	nodes[features] = engine.Node{Index: engine.SentinelIndex}
	return nodes
}

func setNodeRow(nodes []engine.Node, row []float64) {
	for j, v := range row {
		nodes[j].Value = v
	}
}
