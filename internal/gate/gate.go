// Package gate decides whether a packaging invocation should trigger the
// front-end asset build.
package gate

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	"git.home.luguber.info/inful/assetbuild/internal/logfields"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// ReasonCode explains a Decision. Codes are stable; they label metrics.
type ReasonCode string

const (
	ReasonNoTrigger     ReasonCode = "no_trigger"
	ReasonAlreadyBuilt  ReasonCode = "already_built"
	ReasonOptedOut      ReasonCode = "opted_out"
	ReasonBuildRequired ReasonCode = "build_required"
)

// Decision is the gate's verdict for one invocation.
type Decision struct {
	Run    bool       `json:"run"`
	Reason ReasonCode `json:"reason"`
	// Verb is the trigger verb that matched, if any.
	Verb string `json:"verb,omitempty"`
	// OutputDir is the asset output directory that was checked.
	OutputDir string `json:"output_dir"`
}

// Message is a one-line human summary of the decision.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonNoTrigger:
		return "No trigger verb in packaging command; skipping asset build"
	case ReasonAlreadyBuilt:
		return "Ember.js project already built in " + d.OutputDir
	case ReasonOptedOut:
		return "Automatic asset build disabled by SNFUI_AUTO_BUILD"
	default:
		return "Static assets missing; building Ember.js project"
	}
}

// Log writes the decision at info level, or debug when nothing triggered.
func (d Decision) Log(logger *slog.Logger) {
	attrs := []any{logfields.Reason(string(d.Reason)), logfields.Path(d.OutputDir)}
	if d.Verb != "" {
		attrs = append(attrs, logfields.Verb(d.Verb))
	}
	if d.Reason == ReasonNoTrigger {
		logger.Debug(d.Message(), attrs...)
		return
	}
	logger.Info(d.Message(), attrs...)
}

// MatchVerb returns the first trigger verb contained in the arguments joined
// without separators. "build_ext" matches "build", and a verb may span
// adjacent arguments.
func MatchVerb(args, verbs []string) (string, bool) {
	joined := strings.Join(args, "")
	for _, verb := range verbs {
		if strings.Contains(joined, verb) {
			return verb, true
		}
	}
	return "", false
}

// Decide applies the checks in order: trigger verb, existing output, opt-out.
func Decide(args []string, build config.BuildConfig, outputDir string) Decision {
	d := Decision{OutputDir: outputDir}
	verb, ok := MatchVerb(args, build.TriggerVerbs)
	if !ok {
		d.Reason = ReasonNoTrigger
		return d
	}
	d.Verb = verb
	if toolchain.Exists(outputDir) {
		d.Reason = ReasonAlreadyBuilt
		return d
	}
	if build.AutoBuildDisabled() {
		d.Reason = ReasonOptedOut
		return d
	}
	d.Run = true
	d.Reason = ReasonBuildRequired
	return d
}
