// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/templar/internal/tui/styles"
)

// PickerItem is one selectable entry.
type PickerItem struct {
	Name   string
	Detail string
}

// Picker is a filterable single-choice list. Items keep the order they
// were given in.
type Picker struct {
	Title string
	Query string
	Index int
	Items []PickerItem
}

// NewPicker creates a picker over items.
func NewPicker(title string, items []PickerItem) *Picker {
	p := &Picker{Title: title}
	p.SetItems(items)
	return p
}

// SetItems replaces the list and resets the filter.
func (p *Picker) SetItems(items []PickerItem) {
	p.Items = append([]PickerItem(nil), items...)
	p.Query = ""
	p.Index = 0
}

// Type appends text to the filter.
func (p *Picker) Type(text string) {
	p.Query += text
	p.ClampIndex()
}

// Backspace removes the last rune of the filter.
func (p *Picker) Backspace() {
	runes := []rune(p.Query)
	if len(runes) == 0 {
		return
	}
	p.Query = string(runes[:len(runes)-1])
	p.ClampIndex()
}

// Move shifts the selection, wrapping at both ends.
func (p *Picker) Move(delta int) {
	items := p.Visible()
	if len(items) == 0 {
		p.Index = 0
		return
	}
	idx := p.Index
	if idx < 0 || idx >= len(items) {
		idx = 0
	}
	idx += delta
	if idx < 0 {
		idx = len(items) - 1
	} else if idx >= len(items) {
		idx = 0
	}
	p.Index = idx
}

// ClampIndex keeps the selection index in bounds.
func (p *Picker) ClampIndex() {
	items := p.Visible()
	if len(items) == 0 || p.Index < 0 {
		p.Index = 0
		return
	}
	if p.Index >= len(items) {
		p.Index = len(items) - 1
	}
}

// Selected returns the highlighted entry, if any.
func (p *Picker) Selected() (PickerItem, bool) {
	items := p.Visible()
	if p.Index < 0 || p.Index >= len(items) {
		return PickerItem{}, false
	}
	return items[p.Index], true
}

// Visible returns the items matching every word of the filter.
func (p *Picker) Visible() []PickerItem {
	tokens := strings.Fields(strings.ToLower(p.Query))
	if len(tokens) == 0 {
		return p.Items
	}
	out := make([]PickerItem, 0, len(p.Items))
	for _, item := range p.Items {
		haystack := strings.ToLower(item.Name + " " + item.Detail)
		if matchesTokens(haystack, tokens) {
			out = append(out, item)
		}
	}
	return out
}

// Render renders the picker lines.
func (p *Picker) Render(styleSet styles.Styles) []string {
	lines := []string{
		styleSet.Accent.Render(p.Title),
		styleSet.Text.Render(fmt.Sprintf("> %s", p.Query)),
	}

	items := p.Visible()
	if len(items) == 0 {
		return append(lines, styleSet.Muted.Render("  (no matches)"))
	}
	for idx, item := range items {
		label := item.Name
		if detail := strings.TrimSpace(item.Detail); detail != "" {
			label = fmt.Sprintf("%s - %s", item.Name, detail)
		}
		label = truncate(label, 72)
		if idx == p.Index {
			lines = append(lines, styleSet.Focus.Render("> "+label))
			continue
		}
		lines = append(lines, styleSet.Muted.Render("  "+label))
	}
	return lines
}

func matchesTokens(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
