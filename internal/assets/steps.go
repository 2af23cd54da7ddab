package assets

import (
	"context"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// StepName is a strongly-typed identifier for a build step.
type StepName string

// Canonical step names, in execution order.
const (
	StepResolveEnvironment StepName = "resolve_environment"
	StepRequireNPM         StepName = "require_npm"
	StepPrepareProject     StepName = "prepare_project"
	StepNPMInstall         StepName = "npm_install"
	StepEmberCLI           StepName = "ember_cli"
	StepResolveBower       StepName = "resolve_bower"
	StepBowerInstall       StepName = "bower_install"
	StepEmberBuild         StepName = "ember_build"
)

// StepResult classifies how a step ended in the report.
type StepResult string

const (
	ResultRan     StepResult = "ran"
	ResultSkipped StepResult = "skipped"
	ResultWarning StepResult = "warning"
	ResultFailed  StepResult = "failed"
)

// StepDef pairs a step name with its policy and functions.
type StepDef struct {
	Name   StepName
	Policy config.StepPolicy
	// Skip reports whether the step's work is already done, with a note for
	// the report. Nil means the step always runs.
	Skip func(st *buildState) (bool, string)
	// Run performs the step. The outcome is nil for steps that run no
	// external command.
	Run func(ctx context.Context, st *buildState) (*toolchain.Outcome, error)
}

// buildState carries resolved values between steps.
type buildState struct {
	environment string
	projectDir  string
	outputDir   string
	npm         string
	bower       string
	note        string
}

// setNote attaches a note to the step currently running.
func (st *buildState) setNote(note string) { st.note = note }
