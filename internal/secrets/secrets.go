package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that a secret, or a key within it, does not exist.
// Missing secrets are configuration failures and are never retried.
var ErrNotFound = errors.New("secrets: not found")

// Source retrieves a named secret value. A secret is either a single string
// (requested with an empty key) or a JSON object from which one key is
// extracted (e.g. "SECRET_KEY", "CONNECTION_STRING").
type Source interface {
	Fetch(ctx context.Context, name, key string) (string, error)
}

// extractKey interprets a raw secret string according to the requested key.
func extractKey(raw, name, key string) (string, error) {
	if key == "" {
		return raw, nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", fmt.Errorf("secrets: secret %q is not a JSON object: %w", name, err)
	}

	value, ok := fields[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("secrets: secret %q has no key %q: %w", name, key, ErrNotFound)
	}
	return value, nil
}

// StaticSource serves secrets from an in-memory map, keyed "name" or
// "name/key". It backs tests and deployments that configure secrets directly.
type StaticSource struct {
	values map[string]string
}

// NewStaticSource builds a static source from the provided values.
func NewStaticSource(values map[string]string) *StaticSource {
	cpy := make(map[string]string, len(values))
	for k, v := range values {
		cpy[k] = v
	}
	return &StaticSource{values: cpy}
}

// Fetch implements Source.
func (s *StaticSource) Fetch(_ context.Context, name, key string) (string, error) {
	lookup := name
	if key != "" {
		lookup = name + "/" + key
	}

	value, ok := s.values[lookup]
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("secrets: static source has no %q: %w", lookup, ErrNotFound)
	}
	return value, nil
}
