package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/placeholder"
	"github.com/opencode-ai/templar/internal/prompt"
)

// fileSystem backs --file reads.
var fileSystem afero.Fs = afero.NewOsFs()

var (
	templateSetText  string
	templateSetFile  string
	templateSetStdin bool
)

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateSetCmd)
	templateCmd.AddCommand(templateFieldsCmd)

	templateSetCmd.Flags().StringVar(&templateSetText, "text", "", "template text")
	templateSetCmd.Flags().StringVarP(&templateSetFile, "file", "f", "", "read template text from a file")
	templateSetCmd.Flags().BoolVar(&templateSetStdin, "stdin", false, "read template text from stdin")
	templateSetCmd.MarkFlagsMutuallyExclusive("text", "file", "stdin")
}

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"tpl"},
	Short:   "Show and edit templates",
	Long: `Show and edit the template of a message type.

Templates mark fields with {name}. Use {{ and }} for literal braces.`,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <platform> <type>",
	Short: "Show a template and its fields",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return showTemplate(cmd.OutOrStdout(), sess.service, args[0], args[1])
	},
}

var templateSetCmd = &cobra.Command{
	Use:   "set <platform> <type>",
	Short: "Replace the template of a message type",
	Long: `Replace the template of a message type. Fields are derived from the
{placeholders} in the text; text without placeholders is rejected.

The text comes from --text, --file or --stdin. Without any of them an editor
prompt opens when running interactively.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := cmd.Context()
		text, err := resolveTemplateText(ctx, cmd.InOrStdin(), sess.service, args[0], args[1])
		if err != nil {
			return err
		}
		return setTemplate(ctx, cmd.OutOrStdout(), sess.service, args[0], args[1], text)
	},
}

var templateFieldsCmd = &cobra.Command{
	Use:   "fields <platform> <type>",
	Short: "List the input fields of a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return listFields(cmd.OutOrStdout(), sess.service, args[0], args[1])
	},
}

func showTemplate(out io.Writer, svc *manager.Service, platform, messageType string) error {
	record, err := svc.Template(platform, messageType)
	if err != nil {
		return err
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     manager.NormalizeName(platform),
			"message_type": manager.NormalizeName(messageType),
			"template":     record.Template,
			"fields":       record.Fields,
		})
	}

	if record.Template == "" {
		fmt.Fprintln(out, "(no template)")
		return nil
	}
	fmt.Fprintln(out, record.Template)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Fields: %s\n", strings.Join(placeholder.Names(record.Fields), ", "))
	return nil
}

func resolveTemplateText(ctx context.Context, in io.Reader, svc *manager.Service, platform, messageType string) (string, error) {
	switch {
	case templateSetText != "":
		return templateSetText, nil
	case templateSetFile != "":
		data, err := afero.ReadFile(fileSystem, templateSetFile)
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	case templateSetStdin:
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read template from stdin: %w", err)
		}
		return string(data), nil
	}

	if IsNonInteractive() {
		return "", &PreflightError{
			Message:  "no template text given",
			Hint:     "Pass --text, --file or --stdin when not running interactively",
			NextStep: "templar template set <platform> <type> --file template.txt",
		}
	}

	current, err := svc.Template(platform, messageType)
	if err != nil {
		return "", err
	}
	text, err := promptDriver.TextArea(ctx, prompt.TextAreaConfig{
		Message: fmt.Sprintf("Template for %s / %s:", manager.NormalizeName(platform), manager.NormalizeName(messageType)),
		Default: current.Template,
		Help:    "Mark fields with {name}; use {{ and }} for literal braces",
	})
	if errors.Is(err, prompt.ErrAborted) {
		return "", fmt.Errorf("template not changed: %w", err)
	}
	return text, err
}

func setTemplate(ctx context.Context, out io.Writer, svc *manager.Service, platform, messageType, text string) error {
	record, err := svc.SaveTemplate(ctx, platform, messageType, text)
	saved := err == nil
	if err := absorbNotPersisted(err); err != nil {
		return err
	}

	fields := placeholder.Names(record.Fields)
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     manager.NormalizeName(platform),
			"message_type": manager.NormalizeName(messageType),
			"fields":       fields,
			"saved":        saved,
		})
	}

	fmt.Fprintf(out, "Template saved with fields: %s\n", strings.Join(fields, ", "))
	return nil
}

func listFields(out io.Writer, svc *manager.Service, platform, messageType string) error {
	fields, err := svc.Fields(platform, messageType)
	if err != nil {
		return err
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, fields)
	}

	for _, field := range fields {
		fmt.Fprintln(out, field)
	}
	return nil
}
