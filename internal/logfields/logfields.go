package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyStep        = "step"
	KeyPolicy      = "policy"
	KeyTool        = "tool"
	KeyCommand     = "command"
	KeyPath        = "path"
	KeyExitCode    = "exit_code"
	KeyStatus      = "status"
	KeyDurationMS  = "duration_ms"
	KeyEnvironment = "environment"
	KeyReason      = "reason"
	KeyVerb        = "verb"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Step(name string) slog.Attr       { return slog.String(KeyStep, name) }
func Policy(p string) slog.Attr        { return slog.String(KeyPolicy, p) }
func Tool(name string) slog.Attr       { return slog.String(KeyTool, name) }
func Command(cmd string) slog.Attr     { return slog.String(KeyCommand, cmd) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func ExitCode(code int) slog.Attr      { return slog.Int(KeyExitCode, code) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Environment(env string) slog.Attr { return slog.String(KeyEnvironment, env) }
func Reason(r string) slog.Attr        { return slog.String(KeyReason, r) }
func Verb(v string) slog.Attr          { return slog.String(KeyVerb, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Duration converts d into the canonical duration_ms attribute.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}
