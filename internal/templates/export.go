package templates

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/opencode-ai/templar/internal/registry"
)

// FromDocument converts a stored document into a default set. Field lists
// are dropped; they are derived from the text when the set is loaded.
func FromDocument(doc registry.Document) *DefaultSet {
	set := &DefaultSet{Platforms: make([]DefaultPlatform, 0, len(doc))}
	for _, p := range doc {
		platform := DefaultPlatform{
			Name:         p.Name,
			MessageTypes: make([]DefaultMessageType, 0, len(p.MessageTypes)),
		}
		for _, mt := range p.MessageTypes {
			platform.MessageTypes = append(platform.MessageTypes, DefaultMessageType{
				Name:     mt.Name,
				Template: mt.Template,
			})
		}
		set.Platforms = append(set.Platforms, platform)
	}
	return set
}

// EncodeYAML writes the set in the defaults file format, so an export can
// be dropped into a defaults search path.
func (s *DefaultSet) EncodeYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	return buf.Bytes(), nil
}
