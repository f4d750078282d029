package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/templar/internal/config"
	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/placeholder"
	"github.com/opencode-ai/templar/internal/prompt"
	"github.com/opencode-ai/templar/internal/store"
)

type fakeDriver struct {
	inputs  map[string]string
	confirm bool
	text    string
	asked   []string
}

func (d *fakeDriver) Input(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	for field, value := range d.inputs {
		if strings.Contains(cfg.Message, "'"+field+"'") {
			return value, nil
		}
	}
	return "", nil
}

func (d *fakeDriver) Confirm(ctx context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.confirm, nil
}

func (d *fakeDriver) Select(ctx context.Context, cfg prompt.SelectConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	return cfg.Options[len(cfg.Options)-1], nil
}

func (d *fakeDriver) TextArea(ctx context.Context, cfg prompt.TextAreaConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.text, nil
}

// setFlags sets global flag state for one test.
func setFlags(t *testing.T, interactive, jsonOut bool) {
	t.Helper()
	prevNonInteractive, prevJSON, prevJSONL := nonInteractive, jsonOutput, jsonlOutput
	prevTerminal := terminalAttached
	t.Cleanup(func() {
		nonInteractive, jsonOutput, jsonlOutput = prevNonInteractive, prevJSON, prevJSONL
		terminalAttached = prevTerminal
	})
	t.Setenv("TEMPLAR_NON_INTERACTIVE", "")
	require.NoError(t, os.Unsetenv("TEMPLAR_NON_INTERACTIVE"))
	if !interactive {
		nonInteractive = true
	} else {
		nonInteractive = false
		terminalAttached = func() bool { return true }
	}
	jsonOutput, jsonlOutput = jsonOut, false
}

func useDriver(t *testing.T, driver prompt.Driver) {
	t.Helper()
	prev := promptDriver
	promptDriver = driver
	t.Cleanup(func() { promptDriver = prev })
}

func newTestSession(t *testing.T) (*session, afero.Fs) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.History.Enabled = false

	sess, err := openSessionWith(cfg, store.New("templates_data.json", store.WithFs(fs)), sourceCLI)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, fs
}

func TestSessionSeedsDefaults(t *testing.T) {
	sess, fs := newTestSession(t)

	require.Equal(t, []string{"Tickets", "Correos"}, sess.service.Platforms())
	exists, err := afero.Exists(fs, "templates_data.json")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestPlatformCommands(t *testing.T) {
	setFlags(t, false, false)
	sess, _ := newTestSession(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, addPlatform(ctx, &out, sess.service, " Chat "))
	require.Equal(t, "Platform 'Chat' added\n", out.String())

	out.Reset()
	require.NoError(t, addPlatform(ctx, &out, sess.service, "Chat"))
	require.Equal(t, "Platform 'Chat' already exists\n", out.String())

	out.Reset()
	require.NoError(t, listPlatforms(&out, sess.service))
	require.Contains(t, out.String(), "PLATFORM")
	require.Contains(t, out.String(), "Tickets")
	require.Contains(t, out.String(), "Chat")

	out.Reset()
	require.NoError(t, removePlatform(ctx, &out, sess.service, "Chat"))
	require.Equal(t, "Platform 'Chat' removed\n", out.String())

	err := removePlatform(ctx, &out, sess.service, "Chat")
	require.ErrorIs(t, err, manager.ErrPlatformNotFound)
}

func TestPlatformListJSON(t *testing.T) {
	setFlags(t, false, true)
	sess, _ := newTestSession(t)

	var out bytes.Buffer
	require.NoError(t, listPlatforms(&out, sess.service))
	require.JSONEq(t, `[{"name":"Tickets","message_types":2},{"name":"Correos","message_types":1}]`, out.String())
}

func TestMessageTypeCommands(t *testing.T) {
	setFlags(t, false, false)
	sess, _ := newTestSession(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, addMessageType(ctx, &out, sess.service, "Correos", "Recordatorio"))
	require.Contains(t, out.String(), "Message type 'Recordatorio' added to 'Correos'")

	err := addMessageType(ctx, &out, sess.service, "Correos", "Recordatorio")
	require.ErrorIs(t, err, manager.ErrMessageTypeExists)

	err = addMessageType(ctx, &out, sess.service, "Missing", "Recordatorio")
	require.ErrorIs(t, err, manager.ErrPlatformNotFound)

	out.Reset()
	require.NoError(t, listMessageTypes(&out, sess.service, "Correos"))
	require.Contains(t, out.String(), "Seguimiento")
	require.Contains(t, out.String(), "Recordatorio")
	require.Contains(t, out.String(), "no")

	out.Reset()
	require.NoError(t, removeMessageType(ctx, &out, sess.service, "Correos", "Nada"))
	require.Contains(t, out.String(), "nothing removed")

	out.Reset()
	require.NoError(t, removeMessageType(ctx, &out, sess.service, "Correos", "Recordatorio"))
	require.Contains(t, out.String(), "removed from 'Correos'")
}

func TestTemplateSetShowAndFields(t *testing.T) {
	setFlags(t, false, false)
	sess, _ := newTestSession(t)
	ctx := context.Background()
	_, err := sess.service.AddMessageType(ctx, "Correos", "Recordatorio")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, setTemplate(ctx, &out, sess.service, "Correos", "Recordatorio", "Hola {nombre}, {nombre}: vence {fecha}"))
	require.Equal(t, "Template saved with fields: nombre, fecha\n", out.String())

	out.Reset()
	require.NoError(t, showTemplate(&out, sess.service, "Correos", "Recordatorio"))
	require.Contains(t, out.String(), "Hola {nombre}, {nombre}: vence {fecha}")
	require.Contains(t, out.String(), "Fields: nombre, fecha")

	out.Reset()
	require.NoError(t, listFields(&out, sess.service, "Correos", "Recordatorio"))
	require.Equal(t, "nombre\nfecha\n", out.String())

	err = setTemplate(ctx, &out, sess.service, "Correos", "Recordatorio", "sin campos")
	require.ErrorIs(t, err, manager.ErrNoPlaceholders)
}

func TestResolveTemplateText(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()
	reset := func() { templateSetText, templateSetFile, templateSetStdin = "", "", false }
	t.Cleanup(reset)

	prevFs := fileSystem
	fileSystem = afero.NewMemMapFs()
	t.Cleanup(func() { fileSystem = prevFs })
	require.NoError(t, afero.WriteFile(fileSystem, "tpl.txt", []byte("Hola {a}"), 0o644))

	t.Run("text flag", func(t *testing.T) {
		reset()
		templateSetText = "Hola {b}"
		text, err := resolveTemplateText(ctx, nil, sess.service, "Correos", "Seguimiento")
		require.NoError(t, err)
		require.Equal(t, "Hola {b}", text)
	})

	t.Run("file flag", func(t *testing.T) {
		reset()
		templateSetFile = "tpl.txt"
		text, err := resolveTemplateText(ctx, nil, sess.service, "Correos", "Seguimiento")
		require.NoError(t, err)
		require.Equal(t, "Hola {a}", text)
	})

	t.Run("stdin", func(t *testing.T) {
		reset()
		templateSetStdin = true
		text, err := resolveTemplateText(ctx, strings.NewReader("Hola {c}\n"), sess.service, "Correos", "Seguimiento")
		require.NoError(t, err)
		require.Equal(t, "Hola {c}\n", text)
	})

	t.Run("non-interactive without source", func(t *testing.T) {
		reset()
		setFlags(t, false, false)
		_, err := resolveTemplateText(ctx, nil, sess.service, "Correos", "Seguimiento")
		var preflight *PreflightError
		require.ErrorAs(t, err, &preflight)
	})

	t.Run("interactive editor", func(t *testing.T) {
		reset()
		setFlags(t, true, false)
		useDriver(t, &fakeDriver{text: "Editado {x}"})
		text, err := resolveTemplateText(ctx, nil, sess.service, "Correos", "Seguimiento")
		require.NoError(t, err)
		require.Equal(t, "Editado {x}", text)
	})
}

func TestGenerateNonInteractive(t *testing.T) {
	setFlags(t, false, false)
	sess, _ := newTestSession(t)
	ctx := context.Background()
	_, err := sess.service.AddMessageType(ctx, "Correos", "Corto")
	require.NoError(t, err)
	_, err = sess.service.SaveTemplate(ctx, "Correos", "Corto", "Hola {nombre}, ticket {ticket}")
	require.NoError(t, err)

	var copied string
	prevCopy := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = prevCopy })

	var out bytes.Buffer
	require.NoError(t, runGenerate(ctx, &out, sess.service, "Correos", "Corto", map[string]string{"nombre": "Ana"}, true))
	require.Equal(t, "Hola Ana, ticket \n", out.String())
	require.Equal(t, "Hola Ana, ticket ", copied)

	out.Reset()
	require.NoError(t, runPreview(&out, sess.service, "Correos", "Corto", map[string]string{"nombre": "Ana"}))
	require.Equal(t, "Hola Ana, ticket {ticket}\n", out.String())
}

func TestGenerateInteractivePromptsForUnset(t *testing.T) {
	setFlags(t, true, true)
	sess, _ := newTestSession(t)
	ctx := context.Background()
	_, err := sess.service.AddMessageType(ctx, "Correos", "Corto")
	require.NoError(t, err)
	_, err = sess.service.SaveTemplate(ctx, "Correos", "Corto", "Hola {nombre}, ticket {ticket}")
	require.NoError(t, err)

	driver := &fakeDriver{inputs: map[string]string{"ticket": "42"}}
	useDriver(t, driver)

	var out bytes.Buffer
	require.NoError(t, runGenerate(ctx, &out, sess.service, "Correos", "Corto", map[string]string{"nombre": "Ana"}, false))
	require.JSONEq(t, `{"platform":"Correos","message_type":"Corto","text":"Hola Ana, ticket 42","copied":false}`, out.String())
	require.Equal(t, []string{"Value for 'ticket':"}, driver.asked)
}

func TestResolveTarget(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	setFlags(t, false, false)
	_, _, err := resolveTarget(ctx, sess.service, []string{"Tickets"})
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)

	p, mt, err := resolveTarget(ctx, sess.service, []string{"Tickets", "Anulación"})
	require.NoError(t, err)
	require.Equal(t, "Tickets", p)
	require.Equal(t, "Anulación", mt)

	setFlags(t, true, false)
	useDriver(t, &fakeDriver{})
	p, mt, err = resolveTarget(ctx, sess.service, nil)
	require.NoError(t, err)
	require.Equal(t, "Correos", p)
	require.Equal(t, "Seguimiento", mt)
}

func TestExportFormats(t *testing.T) {
	sess, _ := newTestSession(t)
	doc := sess.service.Document()

	data, err := encodeExport(doc, "json")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "{\n    \"Tickets\": {"))
	require.Contains(t, string(data), "Anulación")

	fs := afero.NewMemMapFs()
	require.NoError(t, store.New("templates_data.json", store.WithFs(fs)).Save(doc))
	saved, err := afero.ReadFile(fs, "templates_data.json")
	require.NoError(t, err)
	require.Equal(t, string(saved), string(data))

	data, err = encodeExport(doc, "YAML")
	require.NoError(t, err)
	require.Contains(t, string(data), "platforms:")
	require.Contains(t, string(data), "- name: Tickets")

	_, err = encodeExport(doc, "xml")
	require.Error(t, err)
}

func TestHintFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing field", &placeholder.MissingFieldError{Name: "ref"}, "--set ref=<value>"},
		{"malformed", &placeholder.MalformedError{Offset: 3, Reason: "unclosed"}, "{{ and }}"},
		{"platform", manager.ErrPlatformNotFound, "templar platform list"},
		{"not persisted", manager.ErrNotPersisted, "writable"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := hintFor(tt.err)
			if tt.want == "" {
				require.Empty(t, hint)
				return
			}
			require.Contains(t, hint, tt.want)
		})
	}
}

func TestPrintErrorPreflight(t *testing.T) {
	var out bytes.Buffer
	printError(&out, &PreflightError{Message: "no template text given", Hint: "Pass --text", NextStep: "templar template set"})
	require.Equal(t, "Error: no template text given\nHint: Pass --text\nNext: templar template set\n", out.String())
}

func TestGenerateExamplesUseDefaultFields(t *testing.T) {
	sess, _ := newTestSession(t)

	for _, line := range strings.Split(generateCmd.Example, "\n") {
		args := strings.Fields(line)
		if len(args) < 4 || args[1] != "generate" {
			continue
		}
		t.Run(args[2]+"/"+args[3], func(t *testing.T) {
			fields, err := sess.service.Fields(args[2], args[3])
			require.NoError(t, err)
			for i, arg := range args {
				if arg != "--set" || i+1 >= len(args) {
					continue
				}
				name, _, ok := strings.Cut(args[i+1], "=")
				require.True(t, ok)
				require.Contains(t, fields, name)
			}
		})
	}
}
