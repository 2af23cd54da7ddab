package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// WithOutput redirects the user-facing message (tests).
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	if w != nil {
		a.out = w
	}
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if abe, ok := As(err); ok {
		return a.exitCodeFromAssetBuild(abe)
	}

	return 1
}

// exitCodeFromAssetBuild maps AssetBuildError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromAssetBuild(err *AssetBuildError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryToolchain:
		return 9 // Missing external tool
	case CategoryProcess, CategoryBuild, CategoryFileSystem:
		return 11 // Build error
	case CategoryCanceled:
		return 130 // Interrupted
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if abe, ok := As(err); ok {
		return a.formatAssetBuild(abe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatAssetBuild formats an AssetBuildError for display.
func (a *CLIErrorAdapter) formatAssetBuild(err *AssetBuildError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation, CategoryToolchain:
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// Handle logs and prints err and returns the process exit code; it never exits.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Handle(err))
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if abe, ok := As(err); ok {
		return abe.Category == CategoryInternal ||
			abe.Category == CategoryProcess ||
			abe.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if abe, ok := As(err); ok {
		level := a.slogLevelFromSeverity(abe.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(abe.Category)),
		}
		for k, v := range abe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if abe.Cause != nil {
			attrs = append(attrs, slog.String("cause", abe.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, abe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts AssetBuildError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
