// Package templates provides the default template set and builds the
// session registry from the store.
package templates

// DefaultSet is a seed set of platforms used when no templates are saved.
type DefaultSet struct {
	Platforms []DefaultPlatform `yaml:"platforms"`
	Source    string            `yaml:"-"` // file path or "builtin"
}

// DefaultPlatform is a platform in a DefaultSet.
type DefaultPlatform struct {
	Name         string               `yaml:"name"`
	MessageTypes []DefaultMessageType `yaml:"message_types"`
}

// DefaultMessageType is a message type and its template text. Fields are
// always derived from the text.
type DefaultMessageType struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}
