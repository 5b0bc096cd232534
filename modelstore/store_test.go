package modelstore

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"svmbridge/enginetest"
	"svmbridge/svm"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "models.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func trainedMappings(t *testing.T) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	x, err := svm.DenseFromRows([][]float64{{0, 0}, {1, 1}, {2, 2}, {-1, -1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := map[string]interface{}{"svm_type": 0, "kernel_type": 0, "C": 1.0}
	model, err := svm.New(enginetest.New()).Train(x, []float64{0, 0, 1, 1}, params)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	return params, model
}

func TestPutGetSurvivesCodecs(t *testing.T) {
	store := openStore(t)
	params, model := trainedMappings(t)

	if err := store.Put("clf", params, model); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	gotParams, gotModel, err := store.Get("clf")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// JSON storage turns ints into float64; the codecs must absorb that.
	if _, err := svm.DecodeParameter(gotParams); err != nil {
		t.Fatalf("stored params no longer decode: %v", err)
	}
	decoded, err := svm.DecodeModel(gotModel)
	if err != nil {
		t.Fatalf("stored model no longer decodes: %v", err)
	}
	if decoded.NrClass != 2 || decoded.L != 4 {
		t.Fatalf("stored model lost shape: %+v", decoded)
	}

	x, _ := svm.DenseFromRows([][]float64{{0, 0}, {2, 2}})
	labels, err := svm.New(enginetest.New()).Predict(x, gotParams, gotModel)
	if err != nil {
		t.Fatalf("predict with stored model failed: %v", err)
	}
	if !reflect.DeepEqual(labels, []float64{0, 1}) {
		t.Fatalf("expected [0 1], got %v", labels)
	}
}

func TestPutUpsertsAndList(t *testing.T) {
	store := openStore(t)
	params, model := trainedMappings(t)

	if err := store.Put("a", params, model); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put("b", params, model); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put("a", params, model); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a" || entries[1].Name != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestGetUnknownName(t *testing.T) {
	store := openStore(t)
	if _, _, err := store.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := openStore(t)
	params, model := trainedMappings(t)
	if err := store.Put("gone", params, model); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Delete("gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRejectsEmptyName(t *testing.T) {
	store := openStore(t)
	params, model := trainedMappings(t)
	if err := store.Put("", params, model); err == nil {
		t.Fatal("expected empty name rejection")
	}
}
