// Package workdir provides scoped changes of the process working directory.
//
// The current directory is process-global state. A Scope holds it under a
// package mutex from Enter until Restore, and Within guarantees the original
// directory is restored on every exit path, including errors and panics.
package workdir
