package events

import (
	"context"

	"github.com/opencode-ai/templar/internal/models"
)

// WithMetadata wraps repo so every event it creates carries metadata.
// Keys already set on an event are left alone.
func WithMetadata(repo Repository, metadata map[string]string) Repository {
	if repo == nil || len(metadata) == 0 {
		return repo
	}
	return &taggedRepository{repo: repo, metadata: metadata}
}

type taggedRepository struct {
	repo     Repository
	metadata map[string]string
}

func (r *taggedRepository) Create(ctx context.Context, event *models.Event) error {
	if event != nil {
		if event.Metadata == nil {
			event.Metadata = make(map[string]string, len(r.metadata))
		}
		for key, value := range r.metadata {
			if _, ok := event.Metadata[key]; !ok {
				event.Metadata[key] = value
			}
		}
	}
	return r.repo.Create(ctx, event)
}
