// Package models defines the core data types shared across templar.
package models

// TemplateRecord is a template string plus the placeholder names derived from it.
type TemplateRecord struct {
	// Template is the raw text containing {name} placeholders.
	Template string `json:"template" yaml:"template"`

	// Fields lists placeholder names in first-occurrence order.
	// Duplicates are kept as they appear in Template.
	Fields []string `json:"fields" yaml:"fields"`
}

// Clone returns a copy that does not share the Fields backing array.
func (r TemplateRecord) Clone() TemplateRecord {
	out := TemplateRecord{Template: r.Template}
	if r.Fields != nil {
		out.Fields = append(make([]string, 0, len(r.Fields)), r.Fields...)
	}
	return out
}

// IsEmpty reports whether the record has neither text nor fields.
// Freshly added message types start out empty.
func (r TemplateRecord) IsEmpty() bool {
	return r.Template == "" && len(r.Fields) == 0
}
