package seed

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader handles loading and parsing of the seed catalog file
type Loader struct {
	filePath string
	lookup   func(string) (string, bool)
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		lookup:   os.LookupEnv,
	}
}

// Load reads and parses the catalog file
func (l *Loader) Load() (CatalogFile, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return CatalogFile{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	data = expandTemplateVariables(data, l.lookup)

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return CatalogFile{}, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	return file, nil
}

// expandTemplateVariables replaces {{NAME}} with the environment value of NAME,
// or an empty string when unset.
// Example: url: "{{SHOPEE_STORE}}/emas" -> url: "https://shopee.co.id/raya/emas"
func expandTemplateVariables(data []byte, lookup func(string) (string, bool)) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := strings.TrimSpace(string(templateVar.FindSubmatch(m)[1]))
		v, _ := lookup(name)
		return []byte(v)
	})
}
