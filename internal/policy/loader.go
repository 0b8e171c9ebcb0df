package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the booking policy yaml file.
type Loader struct {
	filePath string
}

// NewLoader creates a new policy loader.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the policy file. A missing file is not an error:
// the shipped default policy applies until an operator provides one.
func (l *Loader) Load() (Policy, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy yaml: %w", err)
	}

	return p.withDefaults(), nil
}
