package workdir

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/assetbuild/internal/logfields"
)

// cwdMu serializes scopes; only one may hold the working directory at a time.
var cwdMu sync.Mutex

// Scope is an acquired change of working directory.
type Scope struct {
	original string
	dir      string
	once     sync.Once
	err      error
}

// Enter changes into dir and returns a Scope that must be restored. Enter
// blocks while another Scope is held.
func Enter(dir string) (*Scope, error) {
	cwdMu.Lock()
	original, err := os.Getwd()
	if err != nil {
		cwdMu.Unlock()
		return nil, fmt.Errorf("resolve current directory: %w", err)
	}
	abs := dir
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(original, dir)
	}
	if err := os.Chdir(abs); err != nil {
		cwdMu.Unlock()
		return nil, fmt.Errorf("enter %s: %w", dir, err)
	}
	slog.Debug("Entered working directory", logfields.Path(abs))
	return &Scope{original: original, dir: abs}, nil
}

// Dir is the absolute directory the scope changed into.
func (s *Scope) Dir() string { return s.dir }

// Restore changes back to the original directory and releases the scope.
// It is safe to call more than once; later calls return the first result.
func (s *Scope) Restore() error {
	s.once.Do(func() {
		defer cwdMu.Unlock()
		if err := os.Chdir(s.original); err != nil {
			s.err = fmt.Errorf("restore %s: %w", s.original, err)
			return
		}
		slog.Debug("Restored working directory", logfields.Path(s.original))
	})
	return s.err
}

// Within runs fn inside dir and restores the original directory afterwards,
// whether fn returns an error, succeeds or panics. An error from restoring is
// joined with fn's error.
func Within(dir string, fn func(*Scope) error) (err error) {
	s, err := Enter(dir)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.Restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(s)
}
