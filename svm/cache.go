package svm

import (
	"crypto/sha256"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"svmbridge/engine"
)

// modelCache memoizes DecodeModel by mapping content. Rebuilding the
// full support-vector graph on every prediction call is wasted work
// when callers hold one model mapping and predict against it many
// times; the fingerprint keeps the contract stateless, since any edit
// to the mapping produces a different key.
type modelCache struct {
	lru *lru.Cache[string, *engine.Model]
}

func newModelCache(size int) (*modelCache, error) {
	c, err := lru.New[string, *engine.Model](size)
	if err != nil {
		return nil, err
	}
	return &modelCache{lru: c}, nil
}

// fingerprint derives a stable key from the mapping. encoding/json
// writes map keys in sorted order, so equal mappings hash equally.
func fingerprint(m map[string]interface{}) (string, bool) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return string(sum[:]), true
}

// decodeCached returns the decoded form of modelMap, consulting the
// cache when one is configured. Cached models are shared across calls
// and must be treated as read-only; modelForPrediction copies the
// struct header before touching Param.
func (s *SVM) decodeCached(modelMap map[string]interface{}) (*engine.Model, error) {
	if s.cache == nil {
		return DecodeModel(modelMap)
	}
	key, ok := fingerprint(modelMap)
	if !ok {
		return DecodeModel(modelMap)
	}
	if model, hit := s.cache.lru.Get(key); hit {
		return model, nil
	}
	model, err := DecodeModel(modelMap)
	if err != nil {
		return nil, err
	}
	s.cache.lru.Add(key, model)
	return model, nil
}
