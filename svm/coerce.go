package svm

import "fmt"

// Mapping values arrive from JSON, YAML or hand-built literals, so a
// field declared as int may show up as float64 and a slice as
// []interface{}. These helpers fold that zoo into the concrete types
// the engine structs need.

func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// intField reads an optional int-valued key, falling back to def when
// the key is absent. A present but uncoercible value is an error.
func intField(m map[string]interface{}, key string, def int) (int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	n, ok := coerceInt(v)
	if !ok {
		return 0, fmt.Errorf("key %q: cannot use %T as int", key, v)
	}
	return n, nil
}

func floatField(m map[string]interface{}, key string, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return 0, fmt.Errorf("key %q: cannot use %T as float64", key, v)
	}
	return f, nil
}

// intSlice reads an optional []int-valued key; absent or nil yields nil.
func intSlice(m map[string]interface{}, key string) ([]int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case []int:
		out := make([]int, len(s))
		copy(out, s)
		return out, nil
	case []interface{}:
		out := make([]int, len(s))
		for i, e := range s {
			n, ok := coerceInt(e)
			if !ok {
				return nil, fmt.Errorf("key %q[%d]: cannot use %T as int", key, i, e)
			}
			out[i] = n
		}
		return out, nil
	case []float64:
		out := make([]int, len(s))
		for i, f := range s {
			out[i] = int(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("key %q: cannot use %T as []int", key, v)
	}
}

func floatSlice(m map[string]interface{}, key string) ([]float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out, nil
	case []interface{}:
		out := make([]float64, len(s))
		for i, e := range s {
			f, ok := coerceFloat(e)
			if !ok {
				return nil, fmt.Errorf("key %q[%d]: cannot use %T as float64", key, i, e)
			}
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]float64, len(s))
		for i, n := range s {
			out[i] = float64(n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("key %q: cannot use %T as []float64", key, v)
	}
}

// nestedSlice reads a key holding a slice of per-row slices; each row is
// returned as []interface{} for the caller to coerce element-wise.
func nestedSlice(m map[string]interface{}, key string) ([][]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case [][]interface{}:
		return s, nil
	case []interface{}:
		out := make([][]interface{}, len(s))
		for i, e := range s {
			switch row := e.(type) {
			case []interface{}:
				out[i] = row
			case []float64:
				r := make([]interface{}, len(row))
				for j, f := range row {
					r[j] = f
				}
				out[i] = r
			default:
				return nil, fmt.Errorf("key %q[%d]: cannot use %T as row", key, i, e)
			}
		}
		return out, nil
	case [][]float64:
		out := make([][]interface{}, len(s))
		for i, row := range s {
			r := make([]interface{}, len(row))
			for j, f := range row {
				r[j] = f
			}
			out[i] = r
		}
		return out, nil
	default:
		return nil, fmt.Errorf("key %q: cannot use %T as nested slice", key, v)
	}
}

func subMapping(m map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	sub, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("key %q: cannot use %T as mapping", key, v)
	}
	return sub, nil
}
