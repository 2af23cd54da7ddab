// Package pkginfo resolves the Python package metadata that accompanies the
// built assets.
package pkginfo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
)

// Metadata is the package description handed to packaging.
type Metadata struct {
	Name            string                       `yaml:"name" json:"name"`
	Version         string                       `yaml:"version" json:"version"`
	Description     string                       `yaml:"description,omitempty" json:"description,omitempty"`
	License         string                       `yaml:"license,omitempty" json:"license,omitempty"`
	URL             string                       `yaml:"url,omitempty" json:"url,omitempty"`
	Author          string                       `yaml:"author,omitempty" json:"author,omitempty"`
	AuthorEmail     string                       `yaml:"author_email,omitempty" json:"author_email,omitempty"`
	Maintainer      string                       `yaml:"maintainer,omitempty" json:"maintainer,omitempty"`
	MaintainerEmail string                       `yaml:"maintainer_email,omitempty" json:"maintainer_email,omitempty"`
	Requires        []string                     `yaml:"install_requires,omitempty" json:"install_requires,omitempty"`
	DependencyLinks []string                     `yaml:"dependency_links,omitempty" json:"dependency_links,omitempty"`
	EntryPoints     map[string]map[string]string `yaml:"entry_points,omitempty" json:"entry_points,omitempty"`
}

// Format selects the metadata rendering.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var versionAssign = regexp.MustCompile(`(?m)^\s*__version__\s*=\s*(?:'([^']*)'|"([^"]*)")`)

// ReadVersion extracts the version from a Python module assigning
// __version__, or from a file holding only the version string.
func ReadVersion(path string) (string, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return "", aerrors.FilesystemError("read version file", path, err)
	}
	if v, ok := parseVersion(data); ok {
		return v, nil
	}
	return "", aerrors.ValidationFailed("package.version_file", "no version found in "+path)
}

func parseVersion(data []byte) (string, bool) {
	if m := versionAssign.FindSubmatch(data); m != nil {
		v := string(m[1]) + string(m[2])
		return v, v != ""
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != 1 || strings.ContainsAny(lines[0], " \t=") {
		return "", false
	}
	return lines[0], true
}

// Load assembles metadata from cfg and its version file.
func Load(cfg *config.Config) (*Metadata, error) {
	version, err := ReadVersion(cfg.VersionFilePath())
	if err != nil {
		return nil, err
	}
	p := cfg.Package
	return &Metadata{
		Name:            p.Name,
		Version:         version,
		Description:     p.Description,
		License:         p.License,
		URL:             p.URL,
		Author:          p.Author,
		AuthorEmail:     p.AuthorEmail,
		Maintainer:      p.Maintainer,
		MaintainerEmail: p.MaintainerEmail,
		Requires:        p.Requires,
		DependencyLinks: p.DependencyLinks,
		EntryPoints:     p.EntryPoints,
	}, nil
}

// EntryPointLines renders one group as "name = target" lines, sorted by name.
func (m *Metadata) EntryPointLines(group string) []string {
	eps := m.EntryPoints[group]
	out := make([]string, 0, len(eps))
	for name, target := range eps {
		out = append(out, name+" = "+target)
	}
	slices.Sort(out)
	return out
}

// Write renders m to w in the given format.
func (m *Metadata) Write(w io.Writer, format Format) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return aerrors.InternalError("encode metadata yaml", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return aerrors.InternalError("encode metadata json", err)
		}
		return nil
	default:
		return aerrors.ValidationFailed("format", "unsupported metadata format "+string(format))
	}
}
