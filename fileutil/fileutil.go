// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrWrongExtension = errors.New("wrong file extension")
	ErrNoDirectory    = errors.New("target directory does not exist")
	ErrNotFound       = errors.New("file not found")
)

var permittedFilename = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// IsPermittedFilename accepts plain ASCII names made of letters, digits,
// underscores and dots that end in .csv
func IsPermittedFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv") && permittedFilename.MatchString(name)
}

// ValidateWritePath checks that path ends in ext and its directory exists.
// Called before running a query so a bad path never costs a query.
func ValidateWritePath(path, ext string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("no file path given")
	}
	if !hasExt(path, ext) {
		return fmt.Errorf("%w: want a %s file", ErrWrongExtension, ext)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoDirectory, dir)
	}

	return nil
}

// ValidateReadPath checks that path ends in ext and exists
func ValidateReadPath(path, ext string) error {
	if !hasExt(path, ext) {
		return fmt.Errorf("%w: want a %s file", ErrWrongExtension, ext)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}

// ReadSQLFile loads a query from a .txt file
func ReadSQLFile(path string) (string, error) {
	if err := ValidateReadPath(path, ".txt"); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func hasExt(path, ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext))
}
