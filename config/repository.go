package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/joho/godotenv"
)

// FileRepository is an env.Repository serving the values of an env-file under an
// underlying repository. Values of the underlying repository win, writes go to it.
type FileRepository struct {
	values map[string]string
	base   env.Repository
}

// NewFileRepository reads the env-file at pth.
func NewFileRepository(pth string, base env.Repository) (*FileRepository, error) {
	values, err := godotenv.Read(pth)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file (%s): %w", pth, err)
	}
	return &FileRepository{values: values, base: base}, nil
}

// Get ...
func (r *FileRepository) Get(key string) string {
	if value := r.base.Get(key); value != "" {
		return value
	}
	return r.values[key]
}

// Set ...
func (r *FileRepository) Set(key, value string) error {
	return r.base.Set(key, value)
}

// Unset removes key from both layers.
func (r *FileRepository) Unset(key string) error {
	delete(r.values, key)
	return r.base.Unset(key)
}

// List returns KEY=value pairs of both layers, sorted by key.
func (r *FileRepository) List() []string {
	merged := map[string]string{}
	for key, value := range r.values {
		merged[key] = value
	}
	for _, key := range r.baseKeys() {
		if value := r.base.Get(key); value != "" {
			merged[key] = value
		}
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, key := range keys {
		list = append(list, key+"="+merged[key])
	}
	return list
}

func (r *FileRepository) baseKeys() []string {
	var keys []string
	for _, kv := range r.base.List() {
		if key, _, ok := strings.Cut(kv, "="); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
