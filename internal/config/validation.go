package config

import (
	"path/filepath"
	"strings"

	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
)

// ValidateConfig validates a normalized configuration.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateBuild(); err != nil {
		return err
	}
	if err := cv.validateTools(); err != nil {
		return err
	}
	return cv.validatePackage()
}

func (cv *configurationValidator) validatePaths() error {
	c := cv.config
	if strings.TrimSpace(c.Project.Directory) == "" {
		return aerrors.ValidationFailed("project.directory", "must not be empty")
	}
	if strings.TrimSpace(c.Output.Directory) == "" {
		return aerrors.ValidationFailed("output.directory", "must not be empty")
	}
	if filepath.Clean(c.ProjectPath()) == filepath.Clean(c.OutputPath()) {
		return aerrors.ValidationFailed("output.directory", "must differ from project.directory")
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	b := cv.config.Build
	if strings.TrimSpace(b.Environment) == "" {
		return aerrors.ValidationFailed("build.environment", "must not be empty")
	}
	if len(b.TriggerVerbs) == 0 {
		return aerrors.ValidationFailed("build.trigger_verbs", "must not be empty")
	}
	for _, v := range b.TriggerVerbs {
		if strings.TrimSpace(v) == "" {
			return aerrors.ValidationFailed("build.trigger_verbs", "must not contain empty verbs")
		}
	}
	if _, err := ParseStepPolicy(string(b.EmberInstallPolicy)); err != nil {
		return aerrors.ValidationFailed("build.ember_install_policy", err.Error())
	}
	return nil
}

func (cv *configurationValidator) validateTools() error {
	t := cv.config.Tools
	required := []struct{ field, value string }{
		{"tools.npm", t.NPM},
		{"tools.bower", t.Bower},
		{"tools.ember_bin", t.EmberBin},
		{"tools.bower_local_bin", t.BowerLocalBin},
		{"tools.node_modules", t.NodeModules},
		{"tools.bower_components", t.BowerComponents},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return aerrors.ValidationFailed(r.field, "must not be empty")
		}
	}
	return nil
}

func (cv *configurationValidator) validatePackage() error {
	p := cv.config.Package
	if strings.TrimSpace(p.Name) == "" {
		return aerrors.ValidationFailed("package.name", "must not be empty")
	}
	if strings.TrimSpace(p.VersionFile) == "" {
		return aerrors.ValidationFailed("package.version_file", "must not be empty")
	}
	return nil
}
