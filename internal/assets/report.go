package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StepRecord is one step's entry in the report.
type StepRecord struct {
	Name       StepName           `json:"name"`
	Result     StepResult         `json:"result"`
	Outcome    *toolchain.Outcome `json:"outcome,omitempty"`
	DurationMS float64            `json:"duration_ms"`
	Note       string             `json:"note,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Report captures what a build did.
type Report struct {
	SchemaVersion int          `json:"schema_version"`
	BuildID       string       `json:"build_id"`
	Start         time.Time    `json:"start"`
	End           time.Time    `json:"end"`
	Environment   string       `json:"environment,omitempty"`
	ProjectDir    string       `json:"project_dir"`
	OutputDir     string       `json:"output_dir"`
	Steps         []StepRecord `json:"steps"`
	Warnings      []string     `json:"warnings,omitempty"`
	Outcome       BuildOutcome `json:"outcome"`
	Error         string       `json:"error,omitempty"`
}

func newReport(projectDir, outputDir string) *Report {
	return &Report{
		SchemaVersion: 1,
		BuildID:       uuid.NewString(),
		Start:         time.Now(),
		ProjectDir:    projectDir,
		OutputDir:     outputDir,
		Steps:         []StepRecord{},
	}
}

// Step returns the record for name, if the step was reached.
func (r *Report) Step(name StepName) (StepRecord, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepRecord{}, false
}

// Ran lists steps that executed, in order.
func (r *Report) Ran() []StepName {
	var out []StepName
	for _, s := range r.Steps {
		if s.Result == ResultRan || s.Result == ResultWarning {
			out = append(out, s.Name)
		}
	}
	return out
}

// Duration is the wall time between start and end.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	skipped := 0
	for _, s := range r.Steps {
		if s.Result == ResultSkipped {
			skipped++
		}
	}
	ran := make([]string, 0, len(r.Steps))
	for _, name := range r.Ran() {
		ran = append(ran, string(name))
	}
	return fmt.Sprintf("build=%s env=%s ran=%s skipped=%d warnings=%d duration=%s outcome=%s",
		r.BuildID, r.Environment, strings.Join(ran, ","), skipped, len(r.Warnings), r.Duration().Truncate(time.Millisecond), r.Outcome)
}

func (r *Report) finish(err error) {
	r.End = time.Now()
	switch {
	case err != nil && aerrors.IsCategory(err, aerrors.CategoryCanceled):
		r.Outcome = OutcomeCanceled
	case err != nil:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
	if err != nil {
		r.Error = err.Error()
	}
}

// Persist writes the report as indented JSON to path, atomically.
func (r *Report) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return aerrors.FilesystemError("ensure report directory", path, err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return aerrors.InternalError("marshal build report", err)
	}
	tmp := path + ".tmp"
	// #nosec G306 -- report is not sensitive
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return aerrors.FilesystemError("write report", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return aerrors.FilesystemError("rename report", path, err)
	}
	return nil
}
