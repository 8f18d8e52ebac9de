// template.go parses and validates the version-metadata template
// (version.yml) that describes the identity embedded into the
// packaged executable.
package versionfile

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/megascrapper/freezepack/internal/model"
)

// Translation identifies a language/charset pair for the string table
// of the version resource. The numeric values are the Windows LANGID
// and code-page identifiers (e.g. 1033 = US English, 1200 = Unicode).
type Translation struct {
	LangID    int `yaml:"langID"`
	CharsetID int `yaml:"charsetID"`
}

// Template is the parsed version.yml. Field names mirror the keys of
// the template file, which in turn mirror the Windows version-info
// string table.
type Template struct {
	// Version is the application version, "major.minor.patch" or
	// "major.minor.patch.build". A pre-release suffix ("-rc1") is
	// accepted and ignored for the numeric quad.
	Version string `yaml:"Version"`

	CompanyName      string `yaml:"CompanyName"`
	FileDescription  string `yaml:"FileDescription"`
	InternalName     string `yaml:"InternalName"`
	LegalCopyright   string `yaml:"LegalCopyright"`
	OriginalFilename string `yaml:"OriginalFilename"`
	ProductName      string `yaml:"ProductName"`

	// Translations optionally overrides the language/charset pairs.
	// When empty, US English / Unicode is used.
	Translations []Translation `yaml:"Translation"`
}

// Quad is the four-component numeric file version embedded in the
// fixed part of a version resource.
type Quad struct {
	Major int
	Minor int
	Patch int
	Build int
}

// String renders the quad in dotted form ("1.2.3.0").
func (q Quad) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", q.Major, q.Minor, q.Patch, q.Build)
}

// versionRe matches 1 to 4 dot-separated numeric components with an
// optional pre-release suffix.
var versionRe = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:[-+].*)?$`)

// ParseQuad splits a version string into its numeric components.
// Missing components default to zero, so "1.2" parses as 1.2.0.0.
func ParseQuad(version string) (Quad, error) {
	matches := versionRe.FindStringSubmatch(strings.TrimSpace(version))
	if matches == nil {
		return Quad{}, fmt.Errorf("invalid version %q: want MAJOR[.MINOR[.PATCH[.BUILD]]]", version)
	}

	var q Quad
	parts := []*int{&q.Major, &q.Minor, &q.Patch, &q.Build}
	for i, dst := range parts {
		if matches[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return Quad{}, fmt.Errorf("invalid version component %q in %q", matches[i+1], version)
		}
		*dst = n
	}
	return q, nil
}

// LoadTemplate reads and parses the version template at path.
// Returns a CLIError with ExitVersionGenError on any failure, since a
// broken template makes version generation impossible.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitVersionGenError,
			fmt.Sprintf("failed to read version template %s", path), err)
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, model.WrapCLIError(model.ExitVersionGenError,
			fmt.Sprintf("failed to parse version template %s", path), err)
	}

	if err := tmpl.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitVersionGenError,
			fmt.Sprintf("invalid version template %s", path), err)
	}

	return &tmpl, nil
}

// Validate checks the template for the fields generation cannot do
// without. The string table entries are optional; the version is not.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("Version is required")
	}
	if _, err := ParseQuad(t.Version); err != nil {
		return err
	}
	return nil
}

// Quad returns the numeric version quad for the template.
// Validate has already checked parsability, so errors are unexpected.
func (t *Template) Quad() (Quad, error) {
	return ParseQuad(t.Version)
}
