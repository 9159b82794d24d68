// Released under an MIT license. See LICENSE.

// Package script resolves file-inclusion forms against the filesystem.
//
// Scripts name the files they include with bare filenames. T resolves those
// names against the directory of the including file, then a fixed search
// path, and feeds the winner back through the load pipeline that owns it.
// Loading is re-entrant: an included file may include further files, all on
// the same goroutine and against the same environment store.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lodelisp/lode/internal/load"
)

// Loader is the part of the load pipeline T calls back into.
type Loader interface {
	Load(file, text string) (*load.Report, error)
}

// T implements load.Includer over the filesystem.
type T struct {
	loader   Loader
	path     []string // Search directories, most specific first.
	deferred []string // Registered by Defer, in order, for Drain.
	failed   int      // Failed forms seen across nested loads.
}

// New creates a new T searching dirs after the including file's directory.
func New(dirs ...string) *T {
	return &T{path: append([]string{"."}, dirs...)}
}

// Attach connects the loader. T and the loader reference each other, so one
// of the two has to be wired up after construction.
func (s *T) Attach(l Loader) {
	s.loader = l
}

// Load resolves name and loads it through the pipeline now.
func (s *T) Load(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Nested includes resolve relative to this file first.
	s.path = append([]string{filepath.Dir(path)}, s.path...)
	defer func() {
		s.path = s.path[1:]
	}()

	r, err := s.loader.Load(path, string(b))
	if r != nil {
		// Per-form failures inside the included file were already
		// isolated and reported there; they do not fail the include.
		s.failed += r.Failed
	}

	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Defer registers name to be loaded by a later Drain.
func (s *T) Defer(name string) error {
	s.deferred = append(s.deferred, name)

	return nil
}

// Drain loads everything registered by Defer, in registration order,
// including files registered during the drain itself.
func (s *T) Drain() error {
	var errs []error

	for len(s.deferred) > 0 {
		name := s.deferred[0]
		s.deferred = s.deferred[1:]

		if err := s.Load(name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Failed returns the number of failed forms seen across all nested loads.
func (s *T) Failed() int {
	return s.failed
}

func (s *T) resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}

		return name, nil
	}

	for _, dir := range s.path {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s: file not found", name)
}
