package svm

import (
	"fmt"

	"svmbridge/engine"
)

// Support vectors travel through the mapping as one row per vector,
// each row a slice of [index, value] pairs without the sentinel node.
// The sentinel is an engine-boundary artifact: DecodeModel appends it,
// EncodeModel strips it.

// DecodeModel rebuilds an engine model struct from a generic mapping.
// "SV", "sv_coef" and "rho" are required; "probA"/"probB" and
// "label"/"nSV" are optional per the model's svm_type. The rebuilt
// model owns freshly allocated support vectors, so free_sv is forced on
// regardless of what the mapping says.
func DecodeModel(m map[string]interface{}) (*engine.Model, error) {
	model := &engine.Model{}

	paramMap, err := subMapping(m, "param")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if paramMap != nil {
		p, err := DecodeParameter(paramMap)
		if err != nil {
			return nil, fmt.Errorf("%w: embedded param: %v", ErrInvalidModel, err)
		}
		model.Param = *p
	}

	if model.NrClass, err = intField(m, "nr_class", 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.L, err = intField(m, "l", 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.NrClass < 2 {
		return nil, fmt.Errorf("%w: nr_class %d < 2", ErrInvalidModel, model.NrClass)
	}
	if model.L < 0 {
		return nil, fmt.Errorf("%w: l %d < 0", ErrInvalidModel, model.L)
	}

	svRows, err := nestedSlice(m, "SV")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if svRows == nil {
		return nil, fmt.Errorf("%w: missing SV", ErrInvalidModel)
	}
	if len(svRows) != model.L {
		return nil, fmt.Errorf("%w: SV has %d rows, l is %d", ErrInvalidModel, len(svRows), model.L)
	}
	model.SV = make([][]engine.Node, model.L)
	for i, row := range svRows {
		nodes := make([]engine.Node, len(row)+1)
		for j, e := range row {
			if nodes[j], err = decodeNode(e); err != nil {
				return nil, fmt.Errorf("%w: SV[%d][%d]: %v", ErrInvalidModel, i, j, err)
			}
		}
		nodes[len(row)] = engine.Node{Index: engine.SentinelIndex}
		model.SV[i] = nodes
	}

	coefRows, err := nestedSlice(m, "sv_coef")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if coefRows == nil {
		return nil, fmt.Errorf("%w: missing sv_coef", ErrInvalidModel)
	}
	if len(coefRows) != model.NrClass-1 {
		return nil, fmt.Errorf("%w: sv_coef has %d rows, want nr_class-1 = %d",
			ErrInvalidModel, len(coefRows), model.NrClass-1)
	}
	model.SVCoef = make([][]float64, len(coefRows))
	for i, row := range coefRows {
		if len(row) != model.L {
			return nil, fmt.Errorf("%w: sv_coef[%d] has %d entries, l is %d",
				ErrInvalidModel, i, len(row), model.L)
		}
		coefs := make([]float64, len(row))
		for j, e := range row {
			f, ok := coerceFloat(e)
			if !ok {
				return nil, fmt.Errorf("%w: sv_coef[%d][%d]: cannot use %T as float64",
					ErrInvalidModel, i, j, e)
			}
			coefs[j] = f
		}
		model.SVCoef[i] = coefs
	}

	pairs := model.NrPairs()
	if model.Rho, err = floatSlice(m, "rho"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.Rho == nil {
		return nil, fmt.Errorf("%w: missing rho", ErrInvalidModel)
	}
	if len(model.Rho) != pairs {
		return nil, fmt.Errorf("%w: rho has %d entries, want %d", ErrInvalidModel, len(model.Rho), pairs)
	}

	if model.ProbA, err = floatSlice(m, "probA"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.ProbB, err = floatSlice(m, "probB"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.ProbA != nil && len(model.ProbA) != pairs {
		return nil, fmt.Errorf("%w: probA has %d entries, want %d", ErrInvalidModel, len(model.ProbA), pairs)
	}
	if model.ProbB != nil && len(model.ProbB) != pairs {
		return nil, fmt.Errorf("%w: probB has %d entries, want %d", ErrInvalidModel, len(model.ProbB), pairs)
	}

	if model.Label, err = intSlice(m, "label"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.Label != nil && len(model.Label) != model.NrClass {
		return nil, fmt.Errorf("%w: label has %d entries, want %d",
			ErrInvalidModel, len(model.Label), model.NrClass)
	}
	if model.NSV, err = intSlice(m, "nSV"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if model.NSV != nil {
		if len(model.NSV) != model.NrClass {
			return nil, fmt.Errorf("%w: nSV has %d entries, want %d",
				ErrInvalidModel, len(model.NSV), model.NrClass)
		}
		total := 0
		for _, n := range model.NSV {
			total += n
		}
		if total != model.L {
			return nil, fmt.Errorf("%w: nSV sums to %d, l is %d", ErrInvalidModel, total, model.L)
		}
	}

	// The decoded model owns its SV rows, never a problem's.
	model.FreeSV = 1

	return model, nil
}

func decodeNode(v interface{}) (engine.Node, error) {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return engine.Node{}, fmt.Errorf("cannot use %T as [index, value] pair", v)
	}
	idx, ok := coerceInt(pair[0])
	if !ok {
		return engine.Node{}, fmt.Errorf("cannot use %T as node index", pair[0])
	}
	val, ok := coerceFloat(pair[1])
	if !ok {
		return engine.Node{}, fmt.Errorf("cannot use %T as node value", pair[1])
	}
	return engine.Node{Index: idx, Value: val}, nil
}

// EncodeModel is the inverse of DecodeModel. Optional arrays (probA,
// probB, label, nSV) appear in the mapping only when non-nil on the
// source model; callers must not assume their presence.
func EncodeModel(model *engine.Model) map[string]interface{} {
	m := map[string]interface{}{
		"param":    EncodeParameter(&model.Param),
		"nr_class": model.NrClass,
		"l":        model.L,
		"free_sv":  model.FreeSV,
	}

	sv := make([]interface{}, len(model.SV))
	for i, nodes := range model.SV {
		row := make([]interface{}, 0, len(nodes))
		for _, n := range nodes {
			if n.Index == engine.SentinelIndex {
				break
			}
			row = append(row, []interface{}{n.Index, n.Value})
		}
		sv[i] = row
	}
	m["SV"] = sv

	coef := make([]interface{}, len(model.SVCoef))
	for i, row := range model.SVCoef {
		out := make([]interface{}, len(row))
		for j, f := range row {
			out[j] = f
		}
		coef[i] = out
	}
	m["sv_coef"] = coef

	m["rho"] = append([]float64(nil), model.Rho...)
	if model.ProbA != nil {
		m["probA"] = append([]float64(nil), model.ProbA...)
	}
	if model.ProbB != nil {
		m["probB"] = append([]float64(nil), model.ProbB...)
	}
	if model.Label != nil {
		m["label"] = append([]int(nil), model.Label...)
	}
	if model.NSV != nil {
		m["nSV"] = append([]int(nil), model.NSV...)
	}
	return m
}
