// Package enginetest provides a deterministic in-memory engine.Engine
// for tests, examples and offline tooling. Training memorizes the
// sample set (every sample becomes a support vector, grouped by class
// in first-appearance order like the real engine) and prediction is
// nearest-neighbour over the stored vectors. It honours the full
// engine contract — model layout, decision-value widths, probability
// calibration presence, its own model file format — without any SVM
// optimization, so results are bit-for-bit reproducible.
package enginetest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"svmbridge/engine"
)

// Version reported by this engine.
const Version = 325

// Engine is a deterministic nearest-neighbour stand-in for a real SVM
// backend. The zero value is not usable; call New.
type Engine struct {
	mu      sync.Mutex
	printFn func(string)
}

// New returns a ready-to-use engine.
func New() *Engine {
	return &Engine{}
}

// SetPrintFunc installs the diagnostic output callback. nil silences
// the engine.
func (e *Engine) SetPrintFunc(fn func(msg string)) {
	e.mu.Lock()
	e.printFn = fn
	e.mu.Unlock()
}

// Version implements engine.Engine.
func (e *Engine) Version() int {
	return Version
}

func (e *Engine) printf(format string, args ...interface{}) {
	e.mu.Lock()
	fn := e.printFn
	e.mu.Unlock()
	if fn != nil {
		fn(fmt.Sprintf(format, args...))
	}
}

func checkParameter(prob *engine.Problem, param *engine.Parameter) error {
	if !param.SVMType.Valid() {
		return fmt.Errorf("unknown svm type %d", param.SVMType)
	}
	if !param.KernelType.Valid() {
		return fmt.Errorf("unknown kernel type %d", param.KernelType)
	}
	if prob.L == 0 {
		return fmt.Errorf("empty problem")
	}
	switch param.SVMType {
	case engine.CSVC, engine.EpsilonSVR, engine.NuSVR:
		if param.C < 0 {
			return fmt.Errorf("C < 0")
		}
	}
	switch param.SVMType {
	case engine.NuSVC, engine.OneClass, engine.NuSVR:
		if param.Nu < 0 || param.Nu > 1 {
			return fmt.Errorf("nu out of range")
		}
	}
	if param.SVMType == engine.EpsilonSVR && param.P < 0 {
		return fmt.Errorf("p < 0")
	}
	return nil
}

// Train implements engine.Engine.
func (e *Engine) Train(prob *engine.Problem, param *engine.Parameter) (*engine.Model, error) {
	if err := checkParameter(prob, param); err != nil {
		return nil, err
	}
	e.printf("training %s model on %d samples", param.SVMType, prob.L)

	model := &engine.Model{
		Param:  *param,
		L:      prob.L,
		FreeSV: 1, // the model owns copies of its support vectors
	}

	if param.SVMType.IsClassifier() {
		if err := trainClassifier(model, prob, param); err != nil {
			return nil, err
		}
	} else {
		trainSingleOutput(model, prob)
	}
	e.printf("done, %d support vectors", model.L)
	return model, nil
}

// trainClassifier groups samples by class in order of first appearance
// and stores every sample as a support vector of its class group.
func trainClassifier(model *engine.Model, prob *engine.Problem, param *engine.Parameter) error {
	classOf := make([]int, prob.L)
	var labels []int
	for i := 0; i < prob.L; i++ {
		label := int(prob.Y[i])
		idx := -1
		for c, known := range labels {
			if known == label {
				idx = c
				break
			}
		}
		if idx < 0 {
			idx = len(labels)
			labels = append(labels, label)
		}
		classOf[i] = idx
	}
	k := len(labels)
	if k < 2 {
		return fmt.Errorf("training data in only one class")
	}

	model.NrClass = k
	model.Label = labels
	model.NSV = make([]int, k)
	model.SV = make([][]engine.Node, 0, prob.L)
	order := make([]int, 0, prob.L)
	for c := 0; c < k; c++ {
		for i := 0; i < prob.L; i++ {
			if classOf[i] == c {
				model.SV = append(model.SV, cloneRow(prob.X[i]))
				order = append(order, c)
				model.NSV[c]++
			}
		}
	}

	model.SVCoef = make([][]float64, k-1)
	for r := range model.SVCoef {
		coefs := make([]float64, prob.L)
		for i, c := range order {
			if c <= r {
				coefs[i] = 1
			} else {
				coefs[i] = -1
			}
		}
		model.SVCoef[r] = coefs
	}
	model.Rho = make([]float64, model.NrPairs())

	if param.Probability != 0 {
		model.ProbA = make([]float64, model.NrPairs())
		model.ProbB = make([]float64, model.NrPairs())
		for p := range model.ProbA {
			model.ProbA[p] = 1
		}
	}
	return nil
}

// trainSingleOutput covers the regression and one-class types, which
// share the two-"class" model layout with a single coefficient row.
func trainSingleOutput(model *engine.Model, prob *engine.Problem) {
	model.NrClass = 2
	model.SV = make([][]engine.Node, prob.L)
	coefs := make([]float64, prob.L)
	for i := 0; i < prob.L; i++ {
		model.SV[i] = cloneRow(prob.X[i])
		if model.Param.SVMType == engine.OneClass {
			coefs[i] = 1
		} else {
			coefs[i] = prob.Y[i]
		}
	}
	model.SVCoef = [][]float64{coefs}
	model.Rho = []float64{0}

	if model.Param.SVMType == engine.OneClass {
		// Inlier threshold: the widest nearest-neighbour gap seen in
		// training, so every training sample scores as an inlier.
		model.Rho[0] = inlierThreshold(model.SV)
	}
}

func inlierThreshold(sv [][]engine.Node) float64 {
	widest := 0.0
	for i := range sv {
		nearest := math.Inf(1)
		for j := range sv {
			if i == j {
				continue
			}
			if d := sqDist(sv[i], sv[j]); d < nearest {
				nearest = d
			}
		}
		if len(sv) > 1 && nearest > widest {
			widest = nearest
		}
	}
	return widest
}

// CrossValidate implements engine.Engine with a deterministic
// round-robin fold assignment (sample i lands in fold i mod folds).
func (e *Engine) CrossValidate(prob *engine.Problem, param *engine.Parameter, folds int, target []float64) error {
	if folds < 2 || folds > prob.L {
		return fmt.Errorf("invalid fold count %d for %d samples", folds, prob.L)
	}
	if len(target) != prob.L {
		return fmt.Errorf("target length %d != %d samples", len(target), prob.L)
	}
	for f := 0; f < folds; f++ {
		sub := &engine.Problem{}
		var held []int
		for i := 0; i < prob.L; i++ {
			if i%folds == f {
				held = append(held, i)
				continue
			}
			sub.X = append(sub.X, prob.X[i])
			sub.Y = append(sub.Y, prob.Y[i])
		}
		sub.L = len(sub.X)
		model, err := e.Train(sub, param)
		if err != nil {
			return fmt.Errorf("fold %d: %w", f, err)
		}
		for _, i := range held {
			target[i] = e.Predict(model, prob.X[i])
		}
	}
	return nil
}

// Predict implements engine.Engine.
func (e *Engine) Predict(model *engine.Model, x []engine.Node) float64 {
	dec := make([]float64, decisionLen(model))
	return e.PredictValues(model, x, dec)
}

func decisionLen(model *engine.Model) int {
	if model.Param.SVMType.IsClassifier() {
		return model.NrPairs()
	}
	return 1
}

// PredictValues implements engine.Engine. For classifiers the decision
// value of pair (i, j) is the distance advantage of class i over class
// j to its nearest support vector; the label wins by one-vs-one votes,
// exactly the real engine's aggregation.
func (e *Engine) PredictValues(model *engine.Model, x []engine.Node, dec []float64) float64 {
	switch model.Param.SVMType {
	case engine.EpsilonSVR, engine.NuSVR:
		v := model.SVCoef[0][nearestSV(model.SV, x)]
		dec[0] = v
		return v
	case engine.OneClass:
		d := math.Inf(1)
		for i := range model.SV {
			if s := sqDist(model.SV[i], x); s < d {
				d = s
			}
		}
		dec[0] = model.Rho[0] - d
		if dec[0] >= 0 {
			return 1
		}
		return -1
	default:
		dmin := classDistances(model, x)
		votes := make([]int, model.NrClass)
		p := 0
		for i := 0; i < model.NrClass; i++ {
			for j := i + 1; j < model.NrClass; j++ {
				dec[p] = dmin[j] - dmin[i]
				if dec[p] > 0 {
					votes[i]++
				} else {
					votes[j]++
				}
				p++
			}
		}
		best := 0
		for c := 1; c < model.NrClass; c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		return float64(model.Label[best])
	}
}

// PredictProbability implements engine.Engine. Without calibration it
// falls back to Predict, as the real engine does.
func (e *Engine) PredictProbability(model *engine.Model, x []engine.Node, probs []float64) float64 {
	if !model.HasProbability() {
		return e.Predict(model, x)
	}
	scale := model.ProbA[0]
	dmin := classDistances(model, x)
	total := 0.0
	for c := range dmin {
		probs[c] = math.Exp(-scale * dmin[c])
		total += probs[c]
	}
	best := 0
	for c := range probs {
		probs[c] /= total
		if probs[c] > probs[best] {
			best = c
		}
	}
	return float64(model.Label[best])
}

// classDistances returns, per class, the squared distance from x to the
// class's nearest support vector. Class membership of each vector is
// recovered from the cumulative nSV boundaries.
func classDistances(model *engine.Model, x []engine.Node) []float64 {
	dmin := make([]float64, model.NrClass)
	start := 0
	for c := 0; c < model.NrClass; c++ {
		nearest := math.Inf(1)
		for i := start; i < start+model.NSV[c]; i++ {
			if d := sqDist(model.SV[i], x); d < nearest {
				nearest = d
			}
		}
		dmin[c] = nearest
		start += model.NSV[c]
	}
	return dmin
}

func nearestSV(sv [][]engine.Node, x []engine.Node) int {
	best, bestDist := 0, math.Inf(1)
	for i := range sv {
		if d := sqDist(sv[i], x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// sqDist walks two sentinel-terminated sparse rows, treating indices
// present in only one row as zero in the other.
func sqDist(x, y []engine.Node) float64 {
	sum := 0.0
	i, j := 0, 0
	for x[i].Index != engine.SentinelIndex && y[j].Index != engine.SentinelIndex {
		switch {
		case x[i].Index == y[j].Index:
			d := x[i].Value - y[j].Value
			sum += d * d
			i++
			j++
		case x[i].Index < y[j].Index:
			sum += x[i].Value * x[i].Value
			i++
		default:
			sum += y[j].Value * y[j].Value
			j++
		}
	}
	for ; x[i].Index != engine.SentinelIndex; i++ {
		sum += x[i].Value * x[i].Value
	}
	for ; y[j].Index != engine.SentinelIndex; j++ {
		sum += y[j].Value * y[j].Value
	}
	return sum
}

func cloneRow(nodes []engine.Node) []engine.Node {
	return append([]engine.Node(nil), nodes...)
}

// SaveModel implements engine.Engine. This engine's file format is
// indented JSON of the model struct.
func (e *Engine) SaveModel(path string, model *engine.Model) error {
	payload, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// LoadModel implements engine.Engine.
func (e *Engine) LoadModel(path string) (*engine.Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model engine.Model
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, err
	}
	if len(model.SV) != model.L {
		return nil, fmt.Errorf("corrupt model file %s: %d support vectors, l = %d", path, len(model.SV), model.L)
	}
	return &model, nil
}
