package config

import (
	"fmt"
	"sort"
	"strings"
)

// enumNormalizer maps free-form config strings onto typed enum values.
type enumNormalizer[T ~string] struct {
	values   map[string]T
	fallback T
}

func newEnumNormalizer[T ~string](fallback T, values ...T) enumNormalizer[T] {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[normalizeKey(string(v))] = v
	}
	return enumNormalizer[T]{values: m, fallback: fallback}
}

// normalize returns the matching value, or the fallback when raw is unknown.
func (n enumNormalizer[T]) normalize(raw string) T {
	if v, ok := n.values[normalizeKey(raw)]; ok {
		return v
	}
	return n.fallback
}

// parse is like normalize but reports unknown input.
func (n enumNormalizer[T]) parse(raw string) (T, error) {
	if v, ok := n.values[normalizeKey(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys())
}

func (n enumNormalizer[T]) keys() []string {
	out := make([]string, 0, len(n.values))
	for k := range n.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = newEnumNormalizer(LogLevelInfo, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)

func NormalizeLogLevel(raw string) LogLevel { return logLevels.normalize(raw) }

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = newEnumNormalizer(LogFormatText, LogFormatJSON, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat { return logFormats.normalize(raw) }

// StepPolicy decides what a failed step does to the build.
type StepPolicy string

const (
	// PolicyFatal aborts the build on failure.
	PolicyFatal StepPolicy = "fatal"
	// PolicyWarn records a warning and continues.
	PolicyWarn StepPolicy = "warn"
)

var stepPolicies = newEnumNormalizer[StepPolicy]("", PolicyFatal, PolicyWarn)

// ParseStepPolicy validates raw as a step policy.
func ParseStepPolicy(raw string) (StepPolicy, error) { return stepPolicies.parse(raw) }
