package templates

import (
	"slices"

	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/placeholder"
	"github.com/opencode-ai/templar/internal/registry"
)

// Persister loads and saves registry documents.
type Persister interface {
	Load() registry.Document
	Save(doc registry.Document) error
}

// Initialize builds the session registry. Saved templates win; when nothing
// is saved the default set is used and written back. A failed write is
// logged and the registry is still returned.
func Initialize(store Persister, projectDir string) (*registry.Registry, error) {
	logger := logging.Component("templates")

	if doc := store.Load(); len(doc) > 0 {
		reg := registry.Deserialize(doc)
		for _, drift := range Reconcile(reg) {
			logger.Warn().
				Str("template", drift.Key).
				Strs("missing", drift.Missing).
				Msg("stored fields did not match template text; re-derived")
		}
		return reg, nil
	}

	set, err := LoadDefaults(projectDir)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load custom defaults; using builtin set")
		set, err = LoadBuiltinDefaults()
		if err != nil {
			return nil, err
		}
	}
	logger.Info().Str("source", set.Source).Msg("seeding default templates")

	reg := set.Registry()
	_ = store.Save(reg.Serialize())
	return reg, nil
}

// Drift describes a record whose stored field list was re-derived.
type Drift struct {
	// Key is "platform/type".
	Key string
	// Missing lists placeholders in the text the stored list did not declare.
	// Empty when the list only differed in order or held extra names.
	Missing []string
}

// Reconcile re-derives the field list of every record from its template
// text and reports the records that changed. Records without text are left
// alone.
func Reconcile(reg *registry.Registry) []Drift {
	var changed []Drift
	for _, p := range reg.Platforms() {
		for _, mt := range reg.MessageTypes(p) {
			record, _ := reg.Template(p, mt)
			if record.Template == "" {
				continue
			}
			fields := placeholder.Extract(record.Template)
			if slices.Equal(fields, record.Fields) {
				continue
			}
			reg.AddTemplate(p, mt, record.Template, fields)
			changed = append(changed, Drift{
				Key:     p + "/" + mt,
				Missing: placeholder.Missing(record.Template, record.Fields),
			})
		}
	}
	return changed
}
