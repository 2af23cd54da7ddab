package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(path string, cause error) *AssetBuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *AssetBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Toolchain errors

// ToolNotFound reports a required executable that is neither on PATH nor at its expected location.
func ToolNotFound(tool string) *AssetBuildError {
	return New(CategoryToolchain, SeverityFatal, tool+" not found, please install it").
		WithContext("tool", tool)
}

// StepFailed reports a fatal external step that did not exit cleanly.
func StepFailed(step string, exitCode int, cause error) *AssetBuildError {
	return Wrap(cause, CategoryProcess, SeverityFatal, step+" failed").
		WithContext("step", step).
		WithContext("exit_code", exitCode)
}

// Build errors

func FilesystemError(operation, path string, cause error) *AssetBuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

func Canceled(step string, cause error) *AssetBuildError {
	return Wrap(cause, CategoryCanceled, SeverityFatal, "build canceled").
		WithContext("step", step)
}

// Internal errors

func InternalError(message string, cause error) *AssetBuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
