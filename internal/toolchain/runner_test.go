package toolchain

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunner_Success(t *testing.T) {
	requireShell(t)
	var stdout bytes.Buffer
	r := NewExecRunner(&stdout, nil)

	out := r.Run(context.Background(), Invocation{Name: "sh", Args: []string{"-c", "echo hello"}})

	require.True(t, out.OK(), "outcome: %+v", out)
	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, 0, out.ExitCode)
	assert.NoError(t, out.Error())
	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "sh -c echo hello", out.Command)
}

func TestExecRunner_NonzeroExit(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(nil, nil)

	out := r.Run(context.Background(), Invocation{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "broken\n", out.Stderr)
	require.Error(t, out.Error())
	assert.Contains(t, out.Error().Error(), "exited with code 3")
	assert.Contains(t, out.Error().Error(), "broken")
}

func TestExecRunner_NotFound(t *testing.T) {
	r := NewExecRunner(nil, nil)

	out := r.Run(context.Background(), Invocation{Name: "definitely-not-a-real-tool-assetbuild"})

	assert.Equal(t, StatusNotFound, out.Status)
	assert.Equal(t, -1, out.ExitCode)
	assert.Contains(t, out.Error().Error(), "executable not found")
}

func TestExecRunner_MissingRelativeBinary(t *testing.T) {
	r := NewExecRunner(nil, nil)

	out := r.Run(context.Background(), Invocation{Name: filepath.Join(t.TempDir(), "node_modules", "ember-cli", "bin", "ember")})

	assert.Equal(t, StatusNotFound, out.Status)
}

func TestExecRunner_Dir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	var stdout bytes.Buffer
	r := NewExecRunner(&stdout, nil)

	out := r.Run(context.Background(), Invocation{Name: "sh", Args: []string{"-c", "pwd"}, Dir: dir})

	require.True(t, out.OK())
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}

func TestExecRunner_ContextCancel(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := r.Run(ctx, Invocation{Name: "sh", Args: []string{"-c", "sleep 5"}})

	assert.Equal(t, StatusFailed, out.Status)
	assert.Less(t, out.Duration, waitDelay)
}

func TestExecRunner_ContextCancelKillsDescendants(t *testing.T) {
	requireShell(t)
	tests := []struct {
		name   string
		script string
	}{
		{"foreground grandchild", "sleep 5; true"},
		{"background grandchild", "sleep 5 & wait"},
		{"grandchild writing stderr", "(sleep 5; echo late >&2) & wait"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			r := NewExecRunner(nil, &stderr)
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			out := r.Run(ctx, Invocation{Name: "sh", Args: []string{"-c", tt.script}})

			assert.Equal(t, StatusFailed, out.Status)
			assert.Less(t, time.Since(start), waitDelay)
			assert.NotContains(t, stderr.String(), "late")
		})
	}
}

func TestExecRunner_LookPath(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(nil, nil)
	p, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, p)

	_, err = r.LookPath("definitely-not-a-real-tool-assetbuild")
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{limit: 4}
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defg"))
	assert.Equal(t, "defg", tb.String())
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestOutcomeHelpers(t *testing.T) {
	inv := Invocation{Name: "npm", Args: []string{"install"}}
	assert.True(t, Success(inv).OK())
	f := Failure(inv, 1)
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, "npm install: exited with code 1", f.Error().Error())
	assert.Equal(t, StatusNotFound, NotFound(inv).Status)
	assert.Equal(t, "npm", Invocation{Name: "npm"}.String())
}
