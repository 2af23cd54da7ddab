package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"git.home.luguber.info/inful/assetbuild/internal/logfields"
)

// Runner abstracts PATH lookups and process execution so the asset builder can
// be driven by a scripted fake in tests.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, inv Invocation) Outcome
}

// stderrTailBytes bounds how much stderr is kept on the Outcome.
const stderrTailBytes = 4 << 10

// waitDelay bounds how long Run waits for output pipes to drain once the
// process group has been killed. Descendants that left the group can still
// hold them open.
const waitDelay = 2 * time.Second

// ExecRunner invokes binaries through os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that streams child output to the given writers.
// Nil writers discard output.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &ExecRunner{Stdout: stdout, Stderr: stderr}
}

// LookPath resolves name against PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes inv and waits for it. A canceled context kills the child and
// every process it spawned (npm and ember fork node workers).
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) Outcome {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay
	tail := &tailBuffer{limit: stderrTailBytes}
	cmd.Stdout = r.stdout()
	cmd.Stderr = io.MultiWriter(r.stderr(), tail)

	slog.Debug("Running external command", logfields.Command(inv.String()), logfields.Path(inv.Dir))
	start := time.Now()
	err := cmd.Run()
	out := Outcome{
		Command:  inv.String(),
		Duration: time.Since(start),
		Stderr:   tail.String(),
	}
	return classify(out, err)
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return io.Discard
	}
	return r.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return io.Discard
	}
	return r.Stderr
}

func classify(out Outcome, err error) Outcome {
	if err == nil {
		out.Status = StatusSuccess
		return out
	}
	out.Err = err
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		out.Status = StatusFailed
		out.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		out.Status = StatusNotFound
		out.ExitCode = -1
	default:
		out.Status = StatusFailed
		out.ExitCode = -1
	}
	return out
}

// Exists reports whether path is present on disk (any file type).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string { return t.buf.String() }
