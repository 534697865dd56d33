// Package store persists job records as a single ordered YAML snapshot.
//
// The file is read and rewritten whole: every mutation is a load, filter,
// write cycle. Concurrent invocations race last-writer-wins, which is
// accepted for a single-user tool; the tmp-file + rename write only
// guards against torn files.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	yaml "go.yaml.in/yaml/v3"

	"pingme/internal/job"
)

const fileName = "scheduled.yaml"

// Store is a handle to one state directory's job snapshot.
type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

// Load returns all valid records. A missing store file is created empty,
// so the file exists from first use onward; records that fail validation
// are skipped rather than failing the snapshot.
func (s *Store) Load() ([]job.Record, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		if err := s.Save(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var all []job.Record
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	kept := all[:0]
	for _, r := range all {
		if r.Valid() {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// Save rewrites the snapshot (tmp file + rename).
func (s *Store) Save(records []job.Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if records == nil {
		records = []job.Record{}
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}
