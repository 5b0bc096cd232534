package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
	yaml "gopkg.in/yaml.v2"

	"svmbridge/svm"
)

// readLabeledCSV parses a CSV of float64 rows where the last column is
// the target and the rest are features.
func readLabeledCSV(path string) (*mat.Dense, []float64, error) {
	rows, err := readFloatCSV(path)
	if err != nil {
		return nil, nil, err
	}
	features := make([][]float64, len(rows))
	targets := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("%s row %d: need at least one feature and a target", path, i+1)
		}
		features[i] = row[:len(row)-1]
		targets[i] = row[len(row)-1]
	}
	x, err := svm.DenseFromRows(features)
	if err != nil {
		return nil, nil, err
	}
	return x, targets, nil
}

// readFeatureCSV parses a CSV of float64 feature rows.
func readFeatureCSV(path string) (*mat.Dense, error) {
	rows, err := readFloatCSV(path)
	if err != nil {
		return nil, err
	}
	return svm.DenseFromRows(rows)
}

func readFloatCSV(path string) ([][]float64, error) {
	if path == "" {
		return nil, fmt.Errorf("pass -data")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rows := make([][]float64, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", path, i+1, j+1, err)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// readParams loads a parameter mapping from YAML. An empty path yields
// an empty mapping, leaving everything at engine defaults.
func readParams(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalizeMapping(raw), nil
}

// normalizeMapping rewrites yaml.v2's map[interface{}]interface{}
// values into the string-keyed form the svm codecs take.
func normalizeMapping(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeValue(e)
		}
		return out
	case map[string]interface{}:
		return normalizeMapping(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
