package svm

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"svmbridge/engine"
)

func TestNewProblemSparseConversion(t *testing.T) {
	x := mat.NewDense(1, 3, []float64{0.1, 0.2, 0.3})
	prob, err := NewProblem(x, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []engine.Node{{Index: 1, Value: 0.1}, {Index: 2, Value: 0.2}, {Index: 3, Value: 0.3}, {Index: engine.SentinelIndex, Value: 0}}
	if !reflect.DeepEqual(prob.X[0], want) {
		t.Fatalf("node conversion mismatch:\nwant %v\ngot  %v", want, prob.X[0])
	}
	if prob.L != 1 || prob.Y[0] != 1 {
		t.Fatalf("problem header wrong: %+v", prob)
	}
}

func TestNewProblemCopiesTargets(t *testing.T) {
	y := []float64{1, 2}
	prob, err := NewProblem(mat.NewDense(2, 1, []float64{5, 6}), y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y[0] = 99
	if prob.Y[0] != 1 {
		t.Fatal("problem must own a copy of the targets")
	}
}

func TestNewProblemShapeMismatch(t *testing.T) {
	x := mat.NewDense(3, 2, nil)
	if _, err := NewProblem(x, []float64{1, 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestNewProblemNonContiguousView(t *testing.T) {
	// A column slice of a wider matrix has stride > cols and must be
	// materialized before raw row access.
	base := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	view := base.Slice(0, 2, 1, 3)
	prob, err := NewProblem(view, []float64{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []engine.Node{{Index: 1, Value: 6}, {Index: 2, Value: 7}, {Index: engine.SentinelIndex, Value: 0}}
	if !reflect.DeepEqual(prob.X[1], want) {
		t.Fatalf("view conversion mismatch:\nwant %v\ngot  %v", want, prob.X[1])
	}
}

func TestDenseFromRowsRagged(t *testing.T) {
	if _, err := DenseFromRows([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if _, err := DenseFromRows(nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for empty input, got %v", err)
	}
}

func TestNodeBufferReuse(t *testing.T) {
	buf := newNodeBuffer(2)
	setNodeRow(buf, []float64{1, 2})
	setNodeRow(buf, []float64{3, 4})
	want := []engine.Node{{Index: 1, Value: 3}, {Index: 2, Value: 4}, {Index: engine.SentinelIndex, Value: 0}}
	if !reflect.DeepEqual(buf, want) {
		t.Fatalf("buffer reuse mismatch:\nwant %v\ngot  %v", want, buf)
	}
}
