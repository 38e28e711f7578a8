// Package importer reads the YAML files an operator can drop next to the
// service: a list of categories with bookmarks and a POI dataset.
package importer

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader reads and parses one YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

func (l *Loader) Path() string { return l.filePath }

// Load reads the import file
func (l *Loader) Load() (File, error) {
	var f File
	if err := l.decode(&f); err != nil {
		return File{}, err
	}
	return f, nil
}

// LoadPOIs reads the file as a POI dataset
func (l *Loader) LoadPOIs() (POIFile, error) {
	var f POIFile
	if err := l.decode(&f); err != nil {
		return POIFile{}, err
	}
	return f, nil
}

func (l *Loader) decode(out any) error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", l.filePath, err)
	}

	data = expandTemplateVariables(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.filePath, err)
	}
	return nil
}

// expandTemplateVariables replaces {{NAME}} with the value of the
// environment variable NAME, quoted. Unset variables become "".
func expandTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVar.FindSubmatch(m)[1]
		return fmt.Appendf(nil, "%q", os.Getenv(string(name)))
	})
}
