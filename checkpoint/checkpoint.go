// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is relative to the working directory
const DefaultPath = "data/survey_data_last_checkpoint.txt"

// Store persists a single fingerprint in a plain-text file.
// There is no locking; concurrent writers race and the last write wins.
type Store struct {
	path string
}

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the checkpoint file location
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored fingerprint and whether one exists.
// On first use the file is missing: an empty placeholder is created and
// ("", false, nil) is returned.
func (s *Store) Read() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.ensureDir(); err != nil {
			return "", false, err
		}
		if err := os.WriteFile(s.path, nil, 0644); err != nil {
			return "", false, fmt.Errorf("failed to create checkpoint placeholder: %w", err)
		}
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	fp := strings.TrimSpace(string(data))
	if fp == "" {
		return "", false, nil
	}
	return fp, true, nil
}

// Write replaces the stored fingerprint
func (s *Store) Write(fp string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(fp), 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return nil
}
