package svm

import (
	"fmt"

	"svmbridge/engine"
)

// DecodeParameter builds an engine parameter struct from a generic
// mapping. Unknown keys are ignored; absent scalars keep the engine
// defaults (zero values). Per-class weights are reconstructed only when
// both "weight_label" and "weight" are present with matching lengths.
func DecodeParameter(m map[string]interface{}) (*engine.Parameter, error) {
	p := &engine.Parameter{}

	svmType, err := intField(m, "svm_type", int(engine.CSVC))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if !engine.SVMType(svmType).Valid() {
		return nil, fmt.Errorf("%w: svm_type %d out of range", ErrInvalidParameter, svmType)
	}
	p.SVMType = engine.SVMType(svmType)

	kernelType, err := intField(m, "kernel_type", int(engine.Linear))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if !engine.KernelType(kernelType).Valid() {
		return nil, fmt.Errorf("%w: kernel_type %d out of range", ErrInvalidParameter, kernelType)
	}
	p.KernelType = engine.KernelType(kernelType)

	if p.Degree, err = intField(m, "degree", 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"gamma", &p.Gamma},
		{"coef0", &p.Coef0},
		{"cache_size", &p.CacheSize},
		{"eps", &p.Eps},
		{"C", &p.C},
		{"nu", &p.Nu},
		{"p", &p.P},
	} {
		if *f.dst, err = floatField(m, f.key, 0); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
	}
	if p.Shrinking, err = intField(m, "shrinking", 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if p.Probability, err = intField(m, "probability", 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	labels, err := intSlice(m, "weight_label")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	weights, err := floatSlice(m, "weight")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if labels != nil || weights != nil {
		if len(labels) != len(weights) {
			return nil, fmt.Errorf("%w: weight_label length %d != weight length %d",
				ErrInvalidParameter, len(labels), len(weights))
		}
		p.NrWeight = len(labels)
		p.WeightLabel = labels
		p.Weight = weights
	}

	return p, nil
}

// EncodeParameter is the inverse of DecodeParameter. All scalar fields
// are always present; the weight arrays appear only when NrWeight > 0.
func EncodeParameter(p *engine.Parameter) map[string]interface{} {
	m := map[string]interface{}{
		"svm_type":    int(p.SVMType),
		"kernel_type": int(p.KernelType),
		"degree":      p.Degree,
		"gamma":       p.Gamma,
		"coef0":       p.Coef0,
		"cache_size":  p.CacheSize,
		"eps":         p.Eps,
		"C":           p.C,
		"nr_weight":   p.NrWeight,
		"nu":          p.Nu,
		"p":           p.P,
		"shrinking":   p.Shrinking,
		"probability": p.Probability,
	}
	if p.NrWeight > 0 {
		labels := make([]int, p.NrWeight)
		copy(labels, p.WeightLabel)
		weights := make([]float64, p.NrWeight)
		copy(weights, p.Weight)
		m["weight_label"] = labels
		m["weight"] = weights
	}
	return m
}
