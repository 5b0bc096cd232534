package engine

import "testing"

func TestSVMTypeClassifier(t *testing.T) {
	classifiers := map[SVMType]bool{
		CSVC:       true,
		NuSVC:      true,
		OneClass:   false,
		EpsilonSVR: false,
		NuSVR:      false,
	}
	for typ, want := range classifiers {
		if typ.IsClassifier() != want {
			t.Fatalf("%v: IsClassifier = %v, want %v", typ, typ.IsClassifier(), want)
		}
		if !typ.Valid() {
			t.Fatalf("%v must be valid", typ)
		}
	}
	if SVMType(5).Valid() || SVMType(-1).Valid() {
		t.Fatal("out-of-range svm types must be invalid")
	}
	if KernelType(5).Valid() || KernelType(-1).Valid() {
		t.Fatal("out-of-range kernel types must be invalid")
	}
}

func TestModelNrPairs(t *testing.T) {
	for _, tc := range []struct{ classes, pairs int }{{2, 1}, {3, 3}, {4, 6}} {
		m := Model{NrClass: tc.classes}
		if got := m.NrPairs(); got != tc.pairs {
			t.Fatalf("%d classes: expected %d pairs, got %d", tc.classes, tc.pairs, got)
		}
	}
}

func TestModelHasProbability(t *testing.T) {
	m := Model{NrClass: 2, ProbA: []float64{1}, ProbB: []float64{0}}
	m.Param.SVMType = CSVC
	if !m.HasProbability() {
		t.Fatal("calibrated classifier must report probability support")
	}
	m.Param.SVMType = EpsilonSVR
	if m.HasProbability() {
		t.Fatal("regression models never report probability support")
	}
	m.Param.SVMType = CSVC
	m.ProbA = nil
	if m.HasProbability() {
		t.Fatal("missing probA must disable probability support")
	}
}
