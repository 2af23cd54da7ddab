// Package assets builds the snf-ui Ember.js front end into the static output
// directory of the Python package.
//
// A build is a fixed sequence of steps (see StepName). Each step declares a
// policy: a fatal step aborts the build on failure, a warn step records a
// warning and lets the build continue. Every step lands in the Report,
// including skipped ones, so a caller can tell which installs ran.
//
// The cwd is changed into the project directory while external tools run
// and is always restored before Build returns.
package assets
