package config

// Default returns the configuration matching the snf-ui packaging layout.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{Directory: "snf-ui"},
		Output:  OutputConfig{Directory: "synnefo_ui/static/snf-ui"},
		Build: BuildConfig{
			Environment:        "production",
			TriggerVerbs:       []string{"sdist", "build", "develop", "install"},
			CacheArgs:          []string{"--cache-min", "99999999"},
			EmberInstallPolicy: PolicyWarn,
		},
		Tools: ToolsConfig{
			NPM:             "npm",
			Bower:           "bower",
			EmberBin:        "node_modules/ember-cli/bin/ember",
			BowerLocalBin:   "node_modules/bower/bin/bower",
			NodeModules:     "node_modules",
			BowerComponents: "bower_components",
		},
		Package: PackageConfig{
			Name:            "snf-ui-app",
			VersionFile:     "synnefo_ui/version.py",
			Description:     "Synnefo UI component",
			License:         "GNU GPLv3",
			URL:             "http://www.synnefo.org/",
			Author:          "Synnefo development team",
			AuthorEmail:     "synnefo-devel@googlegroups.com",
			Maintainer:      "Synnefo development team",
			MaintainerEmail: "synnefo-devel@googlegroups.com",
			Requires: []string{
				"Django>=1.7, <1.8",
				"snf-django-lib",
				"snf-branding",
			},
			DependencyLinks: []string{"http://www.synnefo.org/packages/pypi"},
			EntryPoints: map[string]map[string]string{
				"synnefo": {
					"web_apps":               "synnefo_ui.synnefo_settings:installed_apps",
					"web_static":             "synnefo_ui.synnefo_settings:static_files",
					"web_context_processors": "synnefo_ui.synnefo_settings:synnefo_web_context_processors",
					"urls":                   "synnefo_ui.urls:urlpatterns",
				},
			},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}
