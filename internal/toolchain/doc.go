// Package toolchain runs the external JavaScript tooling (npm, bower, ember-cli)
// and reports every invocation as a typed Outcome instead of a bare error, so
// callers decide per step whether a failure is fatal.
package toolchain
