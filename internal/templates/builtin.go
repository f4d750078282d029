package templates

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opencode-ai/templar/internal/placeholder"
	"github.com/opencode-ai/templar/internal/registry"
)

//go:embed builtin/defaults.yaml
var builtinFS embed.FS

// LoadBuiltinDefaults returns the default set bundled with templar.
func LoadBuiltinDefaults() (*DefaultSet, error) {
	data, err := builtinFS.ReadFile("builtin/defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("read builtin defaults: %w", err)
	}
	set, err := parseDefaults(data)
	if err != nil {
		return nil, fmt.Errorf("parse builtin defaults: %w", err)
	}
	set.Source = "builtin"
	return set, nil
}

// LoadDefaultsFile reads a default set from disk.
func LoadDefaultsFile(path string) (*DefaultSet, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("defaults path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults %s: %w", path, err)
	}

	set, err := parseDefaults(data)
	if err != nil {
		return nil, fmt.Errorf("parse defaults %s: %w", path, err)
	}
	set.Source = path
	return set, nil
}

func parseDefaults(data []byte) (*DefaultSet, error) {
	var set DefaultSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	if len(set.Platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}

	for i := range set.Platforms {
		p := &set.Platforms[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("platform %d: name is required", i+1)
		}
		for j := range p.MessageTypes {
			mt := &p.MessageTypes[j]
			mt.Name = strings.TrimSpace(mt.Name)
			if mt.Name == "" {
				return nil, fmt.Errorf("platform %q message type %d: name is required", p.Name, j+1)
			}
			if strings.TrimSpace(mt.Template) != "" && len(placeholder.Names(placeholder.Extract(mt.Template))) == 0 {
				return nil, fmt.Errorf("platform %q message type %q: template has no placeholders", p.Name, mt.Name)
			}
		}
	}

	return &set, nil
}

// Registry builds a registry holding the default set.
func (s *DefaultSet) Registry() *registry.Registry {
	r := registry.New()
	for _, p := range s.Platforms {
		r.AddPlatform(p.Name)
		for _, mt := range p.MessageTypes {
			r.AddTemplate(p.Name, mt.Name, mt.Template, placeholder.Extract(mt.Template))
		}
	}
	return r
}
