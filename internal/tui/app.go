// Package tui implements the templar terminal form: pick a platform and a
// message type, fill the fields and watch the message take shape.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/models"
	"github.com/opencode-ai/templar/internal/tui/components"
	"github.com/opencode-ai/templar/internal/tui/styles"
)

// Service is the template API the form drives.
type Service interface {
	Platforms() []string
	MessageTypes(platform string) []string
	Template(platform, messageType string) (models.TemplateRecord, error)
	Fields(platform, messageType string) ([]string, error)
	Preview(platform, messageType string, values map[string]string) (string, error)
	Generate(ctx context.Context, platform, messageType string, values map[string]string) (string, error)
}

// Config configures the TUI.
type Config struct {
	Service Service

	// Theme names a palette in styles.Themes.
	Theme string

	// Clipboard copies text; nil disables ctrl+y.
	Clipboard func(string) error
}

// Run launches the TUI program and blocks until it exits.
func Run(cfg Config) error {
	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type step int

const (
	stepPlatform step = iota
	stepMessageType
	stepForm
)

const (
	minWidth      = 50
	minHeight     = 12
	statusTimeout = 4 * time.Second
)

type model struct {
	svc       Service
	clipboard func(string) error
	styles    styles.Styles
	width     int
	height    int

	step      step
	platforms *components.Picker
	types     *components.Picker

	platform    string
	messageType string
	record      models.TemplateRecord
	fields      []string
	inputs      []textinput.Model
	focus       int

	preview    string
	previewErr error
	generated  string

	status   string
	statusOK bool
	statusID int
}

func newModel(cfg Config) model {
	theme, ok := styles.ThemeByName(cfg.Theme)
	if !ok && cfg.Theme != "" {
		logger := logging.Component("tui")
		logger.Warn().Str("theme", cfg.Theme).Msg("unknown theme; using default")
	}

	m := model{
		svc:       cfg.Service,
		clipboard: cfg.Clipboard,
		styles:    styles.BuildStyles(theme),
		step:      stepPlatform,
		types:     components.NewPicker("Message type", nil),
	}
	m.platforms = components.NewPicker("Platform", m.platformItems())
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

type clearStatusMsg struct {
	id int
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.step {
		case stepPlatform:
			return m.updatePlatform(msg)
		case stepMessageType:
			return m.updateMessageType(msg)
		default:
			return m.updateForm(msg)
		}
	}

	if m.step == stepForm && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updatePlatform(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if updatePicker(m.platforms, msg) {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		item, ok := m.platforms.Selected()
		if !ok {
			return m, nil
		}
		m.platform = item.Name
		m.types.SetItems(m.messageTypeItems(item.Name))
		m.step = stepMessageType
	}
	return m, nil
}

func (m model) updateMessageType(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if updatePicker(m.types, msg) {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.step = stepPlatform
		m.platform = ""
	case tea.KeyEnter:
		item, ok := m.types.Selected()
		if !ok {
			return m, nil
		}
		return m.openForm(item.Name)
	}
	return m, nil
}

// updatePicker applies navigation and filter keys. It reports whether the
// key was consumed.
func updatePicker(p *components.Picker, msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		p.Move(-1)
	case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
		p.Move(1)
	case tea.KeyBackspace:
		p.Backspace()
	case tea.KeyRunes:
		p.Type(string(msg.Runes))
	case tea.KeySpace:
		p.Type(" ")
	default:
		return false
	}
	return true
}

func (m model) openForm(messageType string) (tea.Model, tea.Cmd) {
	record, err := m.svc.Template(m.platform, messageType)
	if err != nil {
		return m.setStatus(err.Error(), false)
	}
	fields, err := m.svc.Fields(m.platform, messageType)
	if err != nil {
		return m.setStatus(err.Error(), false)
	}

	m.messageType = messageType
	m.record = record
	m.fields = fields
	m.inputs = newInputs(fields)
	m.focus = 0
	m.generated = ""
	m.step = stepForm
	m.refreshPreview()

	if len(m.inputs) == 0 {
		return m, nil
	}
	return m, m.inputs[0].Focus()
}

func newInputs(fields []string) []textinput.Model {
	inputs := make([]textinput.Model, len(fields))
	for i, field := range fields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = "{" + field + "}"
		input.CharLimit = 0
		input.Width = 48
		inputs[i] = input
	}
	return inputs
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.step = stepMessageType
		m.inputs = nil
		m.fields = nil
		m.generated = ""
		return m, nil
	case tea.KeyCtrlS:
		return m.generate()
	case tea.KeyCtrlY:
		return m.copyGenerated()
	case tea.KeyTab, tea.KeyDown, tea.KeyEnter:
		return m, m.moveFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.moveFocus(-1)
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		// The generated message no longer matches the form.
		m.generated = ""
	}
	m.refreshPreview()
	return m, cmd
}

func (m *model) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m model) values() map[string]string {
	values := make(map[string]string, len(m.fields))
	for i, field := range m.fields {
		values[field] = m.inputs[i].Value()
	}
	return values
}

func (m *model) refreshPreview() {
	if m.record.Template == "" {
		m.preview, m.previewErr = "", nil
		return
	}
	m.preview, m.previewErr = m.svc.Preview(m.platform, m.messageType, m.values())
}

func (m model) generate() (tea.Model, tea.Cmd) {
	text, err := m.svc.Generate(context.Background(), m.platform, m.messageType, m.values())
	if err != nil {
		return m.setStatus(err.Error(), false)
	}
	m.generated = text
	if m.clipboard == nil {
		return m.setStatus("Message generated.", true)
	}
	return m.setStatus("Message generated. Press ctrl+y to copy.", true)
}

func (m model) copyGenerated() (tea.Model, tea.Cmd) {
	if m.clipboard == nil {
		return m.setStatus("Clipboard is not available.", false)
	}
	if m.generated == "" {
		next, _ := m.generate()
		m = next.(model)
		if m.generated == "" {
			return m, clearStatusAfter(m.statusID)
		}
	}
	if err := m.clipboard(m.generated); err != nil {
		return m.setStatus(fmt.Sprintf("Copy failed: %v", err), false)
	}
	return m.setStatus("Copied to clipboard.", true)
}

func (m model) setStatus(text string, ok bool) (model, tea.Cmd) {
	m.statusID++
	m.status = text
	m.statusOK = ok
	return m, clearStatusAfter(m.statusID)
}

func clearStatusAfter(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		return joinLines([]string{
			m.styles.Warning.Render(fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)),
			m.styles.Muted.Render(fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)),
		}) + "\n"
	}

	lines := []string{m.styles.Title.Render(m.breadcrumb()), ""}
	switch m.step {
	case stepPlatform:
		if len(m.platforms.Items) == 0 {
			lines = append(lines, components.EmptyPlatforms().Render(m.styles))
		} else {
			lines = append(lines, m.platforms.Render(m.styles)...)
		}
	case stepMessageType:
		if len(m.types.Items) == 0 {
			lines = append(lines, components.EmptyMessageTypes(m.platform).Render(m.styles))
		} else {
			lines = append(lines, m.types.Render(m.styles)...)
		}
	default:
		lines = append(lines, m.formLines()...)
	}

	if m.status != "" {
		style := m.styles.Error
		if m.statusOK {
			style = m.styles.Success
		}
		lines = append(lines, "", style.Render(m.status))
	}
	lines = append(lines, "", m.styles.Muted.Render(m.helpLine()))
	return joinLines(lines) + "\n"
}

func (m model) breadcrumb() string {
	parts := []string{"templar"}
	if m.platform != "" {
		parts = append(parts, m.platform)
	}
	if m.step == stepForm {
		parts = append(parts, m.messageType)
	}
	return strings.Join(parts, " / ")
}

func (m model) formLines() []string {
	if m.record.Template == "" {
		return []string{components.EmptyTemplate(m.platform, m.messageType).Render(m.styles)}
	}

	var lines []string
	for i, field := range m.fields {
		label := m.styles.Label.Render(field)
		if i == m.focus {
			label = m.styles.Focus.Inherit(m.styles.Label).Render(field)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, m.inputs[i].View()))
	}

	lines = append(lines, "", m.styles.Accent.Render("Preview"))
	if m.previewErr != nil {
		lines = append(lines, m.styles.Error.Render(m.previewErr.Error()))
	} else {
		lines = append(lines, m.renderPreview(m.preview))
	}

	if m.generated != "" {
		lines = append(lines, "", m.styles.Accent.Render("Generated"), m.renderPreview(m.generated))
	}
	return lines
}

func (m model) renderPreview(text string) string {
	style := m.styles.Preview
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(text)
}

func (m model) helpLine() string {
	switch m.step {
	case stepPlatform:
		return "type to filter | up/down move | enter select | esc quit"
	case stepMessageType:
		return "type to filter | up/down move | enter select | esc back"
	default:
		return "tab next field | ctrl+s generate | ctrl+y copy | esc back | ctrl+c quit"
	}
}

func (m model) platformItems() []components.PickerItem {
	names := m.svc.Platforms()
	items := make([]components.PickerItem, 0, len(names))
	for _, name := range names {
		items = append(items, components.PickerItem{Name: name, Detail: countLabel(len(m.svc.MessageTypes(name)), "type")})
	}
	return items
}

func (m model) messageTypeItems(platform string) []components.PickerItem {
	names := m.svc.MessageTypes(platform)
	items := make([]components.PickerItem, 0, len(names))
	for _, name := range names {
		detail := "no template"
		if fields, err := m.svc.Fields(platform, name); err == nil && len(fields) > 0 {
			detail = countLabel(len(fields), "field")
		}
		items = append(items, components.PickerItem{Name: name, Detail: detail})
	}
	return items
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
