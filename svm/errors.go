package svm

import "errors"

var (
	// ErrShapeMismatch indicates inconsistent input dimensions: a target
	// vector whose length differs from the sample count, or ragged rows.
	ErrShapeMismatch = errors.New("svm: shape mismatch")

	// ErrInvalidParameter indicates a parameter mapping the codec cannot
	// decode: an enum value outside the recognized set, a value of an
	// unusable type, or weight arrays of differing lengths.
	ErrInvalidParameter = errors.New("svm: invalid parameter")

	// ErrInvalidModel indicates a model mapping with missing required
	// arrays or lengths inconsistent with its declared nr_class and l.
	ErrInvalidModel = errors.New("svm: invalid model")
)
