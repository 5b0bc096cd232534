// Package svm bridges dense float64 matrices to an external SVM engine.
// It translates generic key-value mappings into the engine's parameter
// and model structs and back, converts dense rows into the engine's
// sparse node form, and dispatches prediction calls to the entry point
// matching the model's type and class count. No SVM math happens here.
package svm

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"svmbridge/engine"
)

// SVM wraps an engine with the mapping codecs and prediction dispatch.
// A single SVM is safe for concurrent use: calls share no mutable state
// beyond the optional internally synchronised model cache.
type SVM struct {
	eng   engine.Engine
	log   *zap.Logger
	cache *modelCache
}

// Option configures an SVM.
type Option func(*SVM)

// WithLogger routes the engine's diagnostic output and this layer's own
// debug messages to log. Without it the engine is silenced, matching
// the usual quiet-mode binding behaviour.
func WithLogger(log *zap.Logger) Option {
	return func(s *SVM) {
		if log != nil {
			s.log = log
		}
	}
}

// WithModelCache keeps up to size decoded models, keyed by a
// fingerprint of the model mapping, so repeated predictions against the
// same mapping skip re-decoding. Caller-visible behaviour is unchanged:
// a modified mapping fingerprints differently and is decoded afresh.
func WithModelCache(size int) Option {
	return func(s *SVM) {
		if c, err := newModelCache(size); err == nil {
			s.cache = c
		}
	}
}

// New returns an SVM dispatching to eng.
func New(eng engine.Engine, opts ...Option) *SVM {
	s := &SVM{eng: eng, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the engine's version number.
func (s *SVM) Version() int {
	return s.eng.Version()
}

// hushEngine points the engine's print callback at our logger before a
// training call; with the nop logger this suppresses output entirely.
func (s *SVM) hushEngine() {
	log := s.log
	s.eng.SetPrintFunc(func(msg string) {
		log.Debug("engine", zap.String("msg", msg))
	})
}

// Train fits a model on x (n_samples × n_features) with targets y and
// returns its mapping form. The problem and parameter structs built
// here live only for the duration of the call.
func (s *SVM) Train(x mat.Matrix, y []float64, params map[string]interface{}) (map[string]interface{}, error) {
	p, err := DecodeParameter(params)
	if err != nil {
		return nil, err
	}
	prob, err := NewProblem(x, y)
	if err != nil {
		return nil, err
	}

	s.hushEngine()
	model, err := s.eng.Train(prob, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	s.log.Debug("trained model",
		zap.Stringer("svm_type", p.SVMType),
		zap.Int("nr_class", model.NrClass),
		zap.Int("support_vectors", model.L))
	return EncodeModel(model), nil
}

// CrossValidate performs folds-fold cross validation and returns the
// predicted target per sample.
func (s *SVM) CrossValidate(x mat.Matrix, y []float64, params map[string]interface{}, folds int) ([]float64, error) {
	p, err := DecodeParameter(params)
	if err != nil {
		return nil, err
	}
	prob, err := NewProblem(x, y)
	if err != nil {
		return nil, err
	}
	if folds < 2 || folds > prob.L {
		return nil, fmt.Errorf("%w: %d folds for %d samples", ErrInvalidParameter, folds, prob.L)
	}

	target := make([]float64, prob.L)
	s.hushEngine()
	if err := s.eng.CrossValidate(prob, p, folds, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return target, nil
}

// modelForPrediction decodes both mappings and overrides the model's
// embedded parameter with the caller-supplied one, so inference runs
// under the parameters the caller intends (probability mode toggles and
// the like). The returned struct is a private copy; cached decodes stay
// untouched.
func (s *SVM) modelForPrediction(params, modelMap map[string]interface{}) (*engine.Model, error) {
	p, err := DecodeParameter(params)
	if err != nil {
		return nil, err
	}
	decoded, err := s.decodeCached(modelMap)
	if err != nil {
		return nil, err
	}
	model := *decoded
	model.Param = *p
	return &model, nil
}

// Predict returns one predicted label or value per row of x.
func (s *SVM) Predict(x mat.Matrix, params, modelMap map[string]interface{}) ([]float64, error) {
	model, err := s.modelForPrediction(params, modelMap)
	if err != nil {
		return nil, err
	}

	d := asDense(x)
	n, features := d.Dims()
	rm := d.RawMatrix()

	out := make([]float64, n)
	nodes := newNodeBuffer(features)
	for i := 0; i < n; i++ {
		setNodeRow(nodes, rm.Data[i*rm.Stride:i*rm.Stride+features])
		out[i] = s.eng.Predict(model, nodes)
	}
	return out, nil
}

// decisionWidth returns the number of decision values per sample for
// the model: one for regression and one-class models, one per
// one-vs-one class pair for classifiers.
func decisionWidth(model *engine.Model) int {
	switch model.Param.SVMType {
	case engine.OneClass, engine.EpsilonSVR, engine.NuSVR:
		return 1
	case engine.CSVC, engine.NuSVC:
		return model.NrPairs()
	default:
		// DecodeParameter rejects anything outside the enum.
		panic(fmt.Sprintf("svm: unreachable svm_type %d", model.Param.SVMType))
	}
}

// DecisionFunction returns the raw decision values for each row of x,
// shaped n_samples × 1 for regression/one-class models and
// n_samples × nr_class*(nr_class-1)/2 for classifiers.
func (s *SVM) DecisionFunction(x mat.Matrix, params, modelMap map[string]interface{}) (*mat.Dense, error) {
	model, err := s.modelForPrediction(params, modelMap)
	if err != nil {
		return nil, err
	}

	d := asDense(x)
	n, features := d.Dims()
	rm := d.RawMatrix()

	width := decisionWidth(model)
	out := mat.NewDense(n, width, nil)
	dec := make([]float64, width)
	nodes := newNodeBuffer(features)
	for i := 0; i < n; i++ {
		setNodeRow(nodes, rm.Data[i*rm.Stride:i*rm.Stride+features])
		s.eng.PredictValues(model, nodes, dec)
		out.SetRow(i, dec)
	}
	return out, nil
}

// PredictProba returns per-class probability estimates, shaped
// n_samples × nr_class. When the model is not a classifier or carries
// no probability calibration the result is (nil, nil): an unsupported
// request, not a failure, matching the engine's best-effort convention.
func (s *SVM) PredictProba(x mat.Matrix, params, modelMap map[string]interface{}) (*mat.Dense, error) {
	model, err := s.modelForPrediction(params, modelMap)
	if err != nil {
		return nil, err
	}
	if !model.HasProbability() {
		s.log.Debug("model has no probability calibration, skipping predict_proba")
		return nil, nil
	}

	d := asDense(x)
	n, features := d.Dims()
	rm := d.RawMatrix()

	out := mat.NewDense(n, model.NrClass, nil)
	probs := make([]float64, model.NrClass)
	nodes := newNodeBuffer(features)
	for i := 0; i < n; i++ {
		setNodeRow(nodes, rm.Data[i*rm.Stride:i*rm.Stride+features])
		s.eng.PredictProbability(model, nodes, probs)
		out.SetRow(i, probs)
	}
	return out, nil
}

// LoadModel reads a model file in the engine's own format and returns
// the parameter and model mappings. A file the engine cannot load
// yields (nil, nil, nil); callers must check for absence.
func (s *SVM) LoadModel(path string) (map[string]interface{}, map[string]interface{}, error) {
	model, err := s.eng.LoadModel(path)
	if err != nil || model == nil {
		s.log.Debug("model load failed", zap.String("path", path), zap.Error(err))
		return nil, nil, nil
	}
	return EncodeParameter(&model.Param), EncodeModel(model), nil
}

// SaveModel writes the model in the engine's own file format, merging
// the caller's parameter mapping into the model first. Codec failures
// are errors; an engine write failure reports (false, nil).
func (s *SVM) SaveModel(path string, params, modelMap map[string]interface{}) (bool, error) {
	p, err := DecodeParameter(params)
	if err != nil {
		return false, err
	}
	model, err := DecodeModel(modelMap)
	if err != nil {
		return false, err
	}
	model.Param = *p

	if err := s.eng.SaveModel(path, model); err != nil {
		s.log.Warn("model save failed", zap.String("path", path), zap.Error(err))
		return false, nil
	}
	return true, nil
}
