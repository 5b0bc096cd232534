package svm

import (
	"errors"
	"reflect"
	"testing"

	"svmbridge/engine"
)

func TestParameterRoundTrip(t *testing.T) {
	p := &engine.Parameter{
		SVMType:     engine.NuSVC,
		KernelType:  engine.RBF,
		Degree:      3,
		Gamma:       0.5,
		Coef0:       1.5,
		CacheSize:   100,
		Eps:         1e-3,
		C:           2,
		NrWeight:    2,
		WeightLabel: []int{-1, 1},
		Weight:      []float64{0.25, 0.75},
		Nu:          0.5,
		P:           0.1,
		Shrinking:   1,
		Probability: 1,
	}

	decoded, err := DecodeParameter(EncodeParameter(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p, decoded) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", p, decoded)
	}
}

func TestDecodeParameterDefaults(t *testing.T) {
	p, err := DecodeParameter(map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SVMType != engine.CSVC || p.KernelType != engine.Linear {
		t.Fatalf("expected engine defaults, got %+v", p)
	}
	if p.NrWeight != 0 || p.Weight != nil || p.WeightLabel != nil {
		t.Fatalf("expected no weights, got %+v", p)
	}
}

func TestDecodeParameterCoercesJSONTypes(t *testing.T) {
	// Everything arrives as float64 and []interface{} after a JSON trip.
	m := map[string]interface{}{
		"svm_type":     float64(engine.EpsilonSVR),
		"kernel_type":  float64(engine.Poly),
		"degree":       float64(4),
		"C":            float64(10),
		"shrinking":    true,
		"weight_label": []interface{}{float64(1), float64(2)},
		"weight":       []interface{}{float64(0.5), float64(0.5)},
	}
	p, err := DecodeParameter(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SVMType != engine.EpsilonSVR || p.KernelType != engine.Poly || p.Degree != 4 {
		t.Fatalf("coercion failed: %+v", p)
	}
	if p.Shrinking != 1 {
		t.Fatalf("expected bool shrinking to coerce to 1, got %d", p.Shrinking)
	}
	if p.NrWeight != 2 || p.WeightLabel[1] != 2 || p.Weight[0] != 0.5 {
		t.Fatalf("weight coercion failed: %+v", p)
	}
}

func TestDecodeParameterWeightLengthMismatch(t *testing.T) {
	m := map[string]interface{}{
		"weight_label": []int{1, 2},
		"weight":       []float64{0.1, 0.2, 0.7},
	}
	if _, err := DecodeParameter(m); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDecodeParameterRejectsUnknownEnums(t *testing.T) {
	cases := []map[string]interface{}{
		{"svm_type": 9},
		{"svm_type": -1},
		{"kernel_type": 7},
		{"svm_type": "c_svc"},
	}
	for i, m := range cases {
		if _, err := DecodeParameter(m); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("case %d: expected ErrInvalidParameter, got %v", i, err)
		}
	}
}

func TestDecodeParameterIgnoresUnknownKeys(t *testing.T) {
	p, err := DecodeParameter(map[string]interface{}{"C": 1.0, "not_a_thing": "whatever"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.C != 1.0 {
		t.Fatalf("expected C=1, got %v", p.C)
	}
}

func TestEncodeParameterOmitsEmptyWeights(t *testing.T) {
	m := EncodeParameter(&engine.Parameter{})
	if _, ok := m["weight"]; ok {
		t.Fatal("weight should be absent when nr_weight is 0")
	}
	if _, ok := m["weight_label"]; ok {
		t.Fatal("weight_label should be absent when nr_weight is 0")
	}
	if m["nr_weight"] != 0 {
		t.Fatalf("expected nr_weight 0, got %v", m["nr_weight"])
	}
}
