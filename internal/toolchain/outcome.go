package toolchain

import (
	"fmt"
	"strings"
	"time"
)

// Status classifies how an external invocation ended.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"    // process ran and exited nonzero (or could not be started)
	StatusNotFound Status = "not_found" // executable could not be located
)

// Invocation describes one external command.
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory for the process; empty inherits the current one.
	Dir string
}

// String renders the invocation as a shell-like command line for logs.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}
	return i.Name + " " + strings.Join(i.Args, " ")
}

// Outcome is the typed result of running an Invocation.
type Outcome struct {
	Command  string        `json:"command"`
	Status   Status        `json:"status"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	// Stderr holds the tail of the process' standard error.
	Stderr string `json:"stderr,omitempty"`
	Err    error  `json:"-"`
}

// OK reports whether the process exited with status zero.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// Error returns nil for successful outcomes and a descriptive error otherwise.
func (o Outcome) Error() error {
	switch o.Status {
	case StatusSuccess:
		return nil
	case StatusNotFound:
		if o.Err != nil {
			return fmt.Errorf("%s: executable not found: %w", o.Command, o.Err)
		}
		return fmt.Errorf("%s: executable not found", o.Command)
	default:
		msg := fmt.Sprintf("%s: exited with code %d", o.Command, o.ExitCode)
		if o.Stderr != "" {
			msg += ": " + strings.TrimSpace(o.Stderr)
		}
		if o.Err != nil {
			return fmt.Errorf("%s: %w", msg, o.Err)
		}
		return fmt.Errorf("%s", msg)
	}
}

// Success builds a successful outcome (used by fakes and tests).
func Success(inv Invocation) Outcome {
	return Outcome{Command: inv.String(), Status: StatusSuccess}
}

// Failure builds a failed outcome with the given exit code.
func Failure(inv Invocation, code int) Outcome {
	return Outcome{Command: inv.String(), Status: StatusFailed, ExitCode: code}
}

// NotFound builds an outcome for a missing executable.
func NotFound(inv Invocation) Outcome {
	return Outcome{Command: inv.String(), Status: StatusNotFound, ExitCode: -1}
}
