package engine

// Engine is implemented by SVM backends. The call shapes mirror the
// LIBSVM C API: prediction entry points take a sentinel-terminated node
// slice and never fail, training and persistence return errors.
//
// Implementations must treat Model values handed to prediction calls as
// read-only; the caller may share one decoded model across goroutines.
type Engine interface {
	// Train fits a model for the given problem. The returned model owns
	// copies of any support vectors it retains.
	Train(prob *Problem, param *Parameter) (*Model, error)

	// CrossValidate performs k-fold cross validation, writing one
	// predicted target per sample into target (length prob.L).
	CrossValidate(prob *Problem, param *Parameter, folds int, target []float64) error

	// Predict returns the predicted label or regression value for x.
	Predict(model *Model, x []Node) float64

	// PredictValues writes the decision values for x into dec: one value
	// for regression/one-class models, one per one-vs-one class pair
	// otherwise. The returned value matches Predict.
	PredictValues(model *Model, x []Node, dec []float64) float64

	// PredictProbability writes per-class probability estimates into
	// probs (length model.NrClass) and returns the most probable label.
	// Only meaningful when model.HasProbability reports true.
	PredictProbability(model *Model, x []Node, probs []float64) float64

	// LoadModel reads a model from the engine's own file format.
	LoadModel(path string) (*Model, error)

	// SaveModel writes a model in the engine's own file format.
	SaveModel(path string, model *Model) error

	// SetPrintFunc installs the engine's diagnostic output callback.
	// Passing nil silences the engine. Configured once per engine value
	// before training; engines must tolerate repeated calls.
	SetPrintFunc(fn func(msg string))

	// Version returns the engine's version number.
	Version() int
}
