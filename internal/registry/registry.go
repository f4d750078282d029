// Package registry holds the in-memory platform -> message type -> template
// hierarchy.
package registry

import "github.com/opencode-ai/templar/internal/models"

// Registry maps platform names to their message types. Names are unique and
// case-sensitive; insertion order is kept for display.
//
// A Registry is owned by a single caller and is not safe for concurrent use.
type Registry struct {
	platforms map[string]*platform
	order     []string
}

type platform struct {
	types map[string]models.TemplateRecord
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{platforms: make(map[string]*platform)}
}

// AddPlatform inserts an empty platform. It is a no-op when name exists.
func (r *Registry) AddPlatform(name string) {
	if _, ok := r.platforms[name]; ok {
		return
	}
	r.platforms[name] = &platform{types: make(map[string]models.TemplateRecord)}
	r.order = append(r.order, name)
}

// AddMessageType inserts an empty message type, creating the platform first
// if needed. An existing message type is left untouched.
func (r *Registry) AddMessageType(platformName, messageType string) {
	r.AddPlatform(platformName)
	p := r.platforms[platformName]
	if _, ok := p.types[messageType]; ok {
		return
	}
	p.types[messageType] = models.TemplateRecord{Fields: []string{}}
	p.order = append(p.order, messageType)
}

// AddTemplate upserts the record for platform/type. Any existing record is
// replaced as a whole; fields are never merged.
func (r *Registry) AddTemplate(platformName, messageType, text string, fields []string) {
	r.AddMessageType(platformName, messageType)
	r.platforms[platformName].types[messageType] = models.TemplateRecord{
		Template: text,
		Fields:   append(make([]string, 0, len(fields)), fields...),
	}
}

// RemoveMessageType deletes platform/type. Unknown keys are ignored.
func (r *Registry) RemoveMessageType(platformName, messageType string) {
	p, ok := r.platforms[platformName]
	if !ok {
		return
	}
	if _, ok := p.types[messageType]; !ok {
		return
	}
	delete(p.types, messageType)
	p.order = remove(p.order, messageType)
}

// RemovePlatform deletes a platform and all of its message types.
func (r *Registry) RemovePlatform(name string) {
	if _, ok := r.platforms[name]; !ok {
		return
	}
	delete(r.platforms, name)
	r.order = remove(r.order, name)
}

// HasPlatform reports whether name is registered.
func (r *Registry) HasPlatform(name string) bool {
	_, ok := r.platforms[name]
	return ok
}

// HasMessageType reports whether platform/type is registered.
func (r *Registry) HasMessageType(platformName, messageType string) bool {
	p, ok := r.platforms[platformName]
	if !ok {
		return false
	}
	_, ok = p.types[messageType]
	return ok
}

// Platforms returns platform names in insertion order.
func (r *Registry) Platforms() []string {
	return append(make([]string, 0, len(r.order)), r.order...)
}

// MessageTypes returns the message types of a platform in insertion order.
// Unknown platforms yield an empty slice.
func (r *Registry) MessageTypes(platformName string) []string {
	p, ok := r.platforms[platformName]
	if !ok {
		return []string{}
	}
	return append(make([]string, 0, len(p.order)), p.order...)
}

// Template returns a copy of the record for platform/type.
func (r *Registry) Template(platformName, messageType string) (models.TemplateRecord, bool) {
	p, ok := r.platforms[platformName]
	if !ok {
		return models.TemplateRecord{}, false
	}
	record, ok := p.types[messageType]
	if !ok {
		return models.TemplateRecord{}, false
	}
	return record.Clone(), true
}

// Len returns the number of platforms.
func (r *Registry) Len() int {
	return len(r.order)
}

// Serialize converts the registry into its persistence form.
func (r *Registry) Serialize() Document {
	doc := make(Document, 0, len(r.order))
	for _, name := range r.order {
		p := r.platforms[name]
		entry := PlatformEntry{Name: name, MessageTypes: make([]MessageTypeEntry, 0, len(p.order))}
		for _, typeName := range p.order {
			record := p.types[typeName].Clone()
			if record.Fields == nil {
				record.Fields = []string{}
			}
			entry.MessageTypes = append(entry.MessageTypes, MessageTypeEntry{
				Name:     typeName,
				Template: record.Template,
				Fields:   record.Fields,
			})
		}
		doc = append(doc, entry)
	}
	return doc
}

// Deserialize builds a registry from its persistence form. The document is
// taken as-is: stored fields are not checked against the template text.
func Deserialize(doc Document) *Registry {
	r := New()
	for _, entry := range doc {
		r.AddPlatform(entry.Name)
		for _, mt := range entry.MessageTypes {
			r.AddTemplate(entry.Name, mt.Name, mt.Template, mt.Fields)
		}
	}
	return r
}

func remove(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
