// Package engine defines the boundary to an external SVM implementation:
// the native data structures exchanged with it (sparse sample nodes,
// problems, parameters, trained models) and the Engine interface every
// backend must satisfy. The numeric values of the type and kernel enums
// match the LIBSVM C API so that models survive a trip through an
// engine's own file format.
package engine

// SVMType selects the formulation the engine solves.
type SVMType int

const (
	CSVC SVMType = iota
	NuSVC
	OneClass
	EpsilonSVR
	NuSVR
)

// IsClassifier reports whether the type predicts discrete class labels.
func (t SVMType) IsClassifier() bool {
	return t == CSVC || t == NuSVC
}

// Valid reports whether t is one of the recognized formulations.
func (t SVMType) Valid() bool {
	return t >= CSVC && t <= NuSVR
}

func (t SVMType) String() string {
	switch t {
	case CSVC:
		return "c_svc"
	case NuSVC:
		return "nu_svc"
	case OneClass:
		return "one_class"
	case EpsilonSVR:
		return "epsilon_svr"
	case NuSVR:
		return "nu_svr"
	default:
		return "unknown"
	}
}

// KernelType selects the similarity function used by the engine.
type KernelType int

const (
	Linear KernelType = iota
	Poly
	RBF
	Sigmoid
	Precomputed
)

// Valid reports whether k is one of the recognized kernels.
func (k KernelType) Valid() bool {
	return k >= Linear && k <= Precomputed
}

func (k KernelType) String() string {
	switch k {
	case Linear:
		return "linear"
	case Poly:
		return "poly"
	case RBF:
		return "rbf"
	case Sigmoid:
		return "sigmoid"
	case Precomputed:
		return "precomputed"
	default:
		return "unknown"
	}
}

// SentinelIndex terminates every sparse sample. A node slice handed to an
// engine always ends with {Index: SentinelIndex, Value: 0}.
const SentinelIndex = -1

// Node is one (feature index, value) pair of a sparse sample. Feature
// indices are 1-based.
type Node struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Problem is a training set: L samples with targets Y and sparse feature
// rows X, each row sentinel-terminated.
type Problem struct {
	L int
	Y []float64
	X [][]Node
}

// Parameter mirrors the engine's training parameter struct. WeightLabel
// and Weight run parallel with length NrWeight; both are nil when no
// per-class weights were requested.
type Parameter struct {
	SVMType    SVMType    `json:"svm_type"`
	KernelType KernelType `json:"kernel_type"`

	Degree int     `json:"degree"`
	Gamma  float64 `json:"gamma"`
	Coef0  float64 `json:"coef0"`

	CacheSize   float64   `json:"cache_size"`
	Eps         float64   `json:"eps"`
	C           float64   `json:"C"`
	NrWeight    int       `json:"nr_weight"`
	WeightLabel []int     `json:"weight_label,omitempty"`
	Weight      []float64 `json:"weight,omitempty"`
	Nu          float64   `json:"nu"`
	P           float64   `json:"p"`
	Shrinking   int       `json:"shrinking"`
	Probability int       `json:"probability"`
}

// Model mirrors the engine's trained model struct.
//
// SV holds L sentinel-terminated support vectors. SVCoef is
// [NrClass-1][L]. Rho, ProbA and ProbB have one entry per one-vs-one
// class pair. Label and NSV have NrClass entries and are nil for
// regression and one-class models; ProbA/ProbB are nil unless
// probability calibration was trained. FreeSV records whether SV rows
// are owned by the model or borrowed from the originating problem.
type Model struct {
	Param   Parameter   `json:"param"`
	NrClass int         `json:"nr_class"`
	L       int         `json:"l"`
	SV      [][]Node    `json:"SV"`
	SVCoef  [][]float64 `json:"sv_coef"`
	Rho     []float64   `json:"rho"`
	ProbA   []float64   `json:"probA,omitempty"`
	ProbB   []float64   `json:"probB,omitempty"`
	Label   []int       `json:"label,omitempty"`
	NSV     []int       `json:"nSV,omitempty"`
	FreeSV  int         `json:"free_sv"`
}

// NrPairs returns the number of one-vs-one class pairs.
func (m *Model) NrPairs() int {
	return m.NrClass * (m.NrClass - 1) / 2
}

// HasProbability reports whether the model carries probability
// calibration for class-probability estimates.
func (m *Model) HasProbability() bool {
	return m.Param.SVMType.IsClassifier() && m.ProbA != nil && m.ProbB != nil
}
