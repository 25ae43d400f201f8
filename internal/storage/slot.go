// Package storage provides the durable byte slots the audit record and
// submission snapshot are persisted into.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Slot is a durable keyed byte slot. Read reports absence via the boolean,
// not an error; keys are plain file-name-safe strings.
type Slot interface {
	Read(key string) (data []byte, ok bool, err error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FileSlot stores each key as a file under a directory. Writes go through a
// temp file and rename so a crash never leaves a torn blob.
type FileSlot struct {
	dir string
}

// NewFileSlot creates the directory if needed and returns a slot over it.
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &FileSlot{dir: dir}, nil
}

func (s *FileSlot) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileSlot) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileSlot) Write(key string, data []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("committing %s: %w", key, err)
	}
	return nil
}

func (s *FileSlot) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// MemSlot is an in-memory Slot for tests.
type MemSlot struct {
	data map[string][]byte
}

// NewMemSlot returns an empty in-memory slot.
func NewMemSlot() *MemSlot {
	return &MemSlot{data: make(map[string][]byte)}
}

func (s *MemSlot) Read(key string) ([]byte, bool, error) {
	d, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(d))
	copy(cp, d)
	return cp, true, nil
}

func (s *MemSlot) Write(key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.data[key] = cp
	return nil
}

func (s *MemSlot) Delete(key string) error {
	delete(s.data, key)
	return nil
}
