package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig defines a custom field visibility policy. Fields lists the
// optional fields the policy emits; everything else is hidden.
type PolicyConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Fields      []string `yaml:"fields"`
}

type policyFile struct {
	Policies []PolicyConfig `yaml:"policies"`
}

// LoadPolicyFile reads custom policies from a YAML document of the form
//
//	policies:
//	  - name: team
//	    fields: [summary, busy, status, location]
func LoadPolicyFile(path string) ([]PolicyConfig, error) {
	if path == "" {
		return nil, errors.New("policy file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	for i, p := range doc.Policies {
		if p.Name == "" {
			return nil, fmt.Errorf("policy file %s: policy %d has no name", path, i)
		}
	}
	return doc.Policies, nil
}

// Include returns the field set in the form the policy constructor takes.
func (p PolicyConfig) Include() map[string]bool {
	include := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		include[f] = true
	}
	return include
}
