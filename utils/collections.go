package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// CollectionFile is the on-device fallback persistence: a flat, synchronous
// store holding one JSON blob per logical collection, each in its own file
// under a single data directory.
type CollectionFile struct {
	dir string
	mu  sync.Mutex
}

// NewCollectionFile creates the data directory if it doesn't exist.
func NewCollectionFile(dir string) (*CollectionFile, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &CollectionFile{dir: dir}, nil
}

func (c *CollectionFile) path(name string) string {
	return filepath.Join(c.dir, name+".json")
}

// Read unmarshals the named collection into out. A missing or corrupt blob
// reads as absent: Read returns false and leaves out untouched, it never
// errors.
func (c *CollectionFile) Read(name string, out any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

// Write replaces the named collection blob.
func (c *CollectionFile) Write(name string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(name), data, 0o644)
}

// Remove drops the named collection. Missing is fine.
func (c *CollectionFile) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
