package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/templar/internal/tui/styles"
)

// EmptyState is a message shown in place of an empty list, with commands
// that fill it.
type EmptyState struct {
	Title       string
	Subtitle    string
	Suggestions []Suggestion
}

// Suggestion is a CLI command with a short description.
type Suggestion struct {
	Command     string
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	lines := []string{styleSet.Muted.Render(e.Title)}
	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	if len(e.Suggestions) > 0 {
		lines = append(lines, "", styleSet.Text.Render("Get started:"))
		for _, s := range e.Suggestions {
			cmdLine := fmt.Sprintf("  %s", styleSet.Accent.Render(s.Command))
			if s.Description != "" {
				cmdLine += styleSet.Muted.Render(fmt.Sprintf("  # %s", s.Description))
			}
			lines = append(lines, cmdLine)
		}
	}

	return strings.Join(lines, "\n")
}

// EmptyPlatforms is shown when no platform exists.
func EmptyPlatforms() EmptyState {
	return EmptyState{
		Title:    "No platforms yet",
		Subtitle: "Platforms group message types, e.g. Tickets or Correos.",
		Suggestions: []Suggestion{
			{Command: "templar platform add <name>", Description: "Add a platform"},
		},
	}
}

// EmptyMessageTypes is shown when platform has no message types.
func EmptyMessageTypes(platform string) EmptyState {
	return EmptyState{
		Title: fmt.Sprintf("No message types in %s", platform),
		Suggestions: []Suggestion{
			{Command: fmt.Sprintf("templar type add %q <type>", platform), Description: "Add a message type"},
		},
	}
}

// EmptyTemplate is shown when a message type has no template text.
func EmptyTemplate(platform, messageType string) EmptyState {
	return EmptyState{
		Title:    fmt.Sprintf("%s / %s has no template", platform, messageType),
		Subtitle: "Templates mark fields with {name}.",
		Suggestions: []Suggestion{
			{Command: fmt.Sprintf("templar template set %q %q", platform, messageType), Description: "Write the template"},
		},
	}
}
