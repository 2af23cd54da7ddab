// Package toolchaintest provides a scripted toolchain.Runner for tests.
package toolchaintest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// Handler produces the outcome for a matched invocation.
type Handler func(inv toolchain.Invocation) toolchain.Outcome

type rule struct {
	pattern string
	fn      Handler
}

// Fake records invocations and answers them from programmed rules. Commands
// without a matching rule succeed.
type Fake struct {
	mu    sync.Mutex
	paths map[string]string
	rules []rule
	calls []toolchain.Invocation
}

// New returns an empty fake: nothing on PATH, every command succeeds.
func New() *Fake {
	return &Fake{paths: map[string]string{}}
}

// WithTool makes name resolvable on the fake PATH.
func (f *Fake) WithTool(name, path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
	return f
}

// On registers fn for invocations whose command line contains pattern. When
// several patterns match, the longest wins; among equal lengths the latest
// registration wins, so tests can override a default script.
func (f *Fake) On(pattern string, fn Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{pattern: pattern, fn: fn})
	return f
}

// LookPath implements toolchain.Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run implements toolchain.Runner.
func (f *Fake) Run(ctx context.Context, inv toolchain.Invocation) toolchain.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	var match *rule
	cmd := inv.String()
	for i := range f.rules {
		r := &f.rules[i]
		if strings.Contains(cmd, r.pattern) && (match == nil || len(r.pattern) >= len(match.pattern)) {
			match = r
		}
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		out := toolchain.Failure(inv, -1)
		out.Err = err
		return out
	}
	if match == nil {
		return toolchain.Success(inv)
	}
	return match.fn(inv)
}

// Calls returns the recorded invocations in order.
func (f *Fake) Calls() []toolchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]toolchain.Invocation, len(f.calls))
	copy(out, f.calls)
	return out
}

// Commands returns the recorded command lines in order.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// Fail returns a handler that exits with code.
func Fail(code int) Handler {
	return func(inv toolchain.Invocation) toolchain.Outcome {
		return toolchain.Failure(inv, code)
	}
}

// Creates returns a handler that simulates a tool producing the given paths.
// Relative paths resolve against the invocation directory (or the current
// directory when it is empty). Entries ending in a separator become
// directories, everything else an empty executable file.
func Creates(paths ...string) Handler {
	return func(inv toolchain.Invocation) toolchain.Outcome {
		for _, p := range paths {
			target := p
			if !filepath.IsAbs(target) {
				target = filepath.Join(inv.Dir, target)
			}
			if strings.HasSuffix(p, "/") {
				if err := os.MkdirAll(target, 0o750); err != nil {
					return failWith(inv, err)
				}
				continue
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return failWith(inv, err)
			}
			// #nosec G306 -- test fixture executable
			if err := os.WriteFile(target, []byte("#!/bin/sh\n"), 0o755); err != nil {
				return failWith(inv, err)
			}
		}
		return toolchain.Success(inv)
	}
}

func failWith(inv toolchain.Invocation, err error) toolchain.Outcome {
	out := toolchain.Failure(inv, -1)
	out.Err = err
	return out
}
