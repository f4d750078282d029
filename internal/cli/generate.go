package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/prompt"
)

// copyToClipboard writes generated text to the system clipboard.
var copyToClipboard = clipboard.WriteAll

var (
	generateSet  []string
	generateCopy bool
	previewSet   []string
)

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)

	generateCmd.Flags().StringArrayVarP(&generateSet, "set", "s", nil, "field value as key=value (repeatable)")
	generateCmd.Flags().BoolVarP(&generateCopy, "copy", "c", false, "copy the message to the clipboard")
	previewCmd.Flags().StringArrayVarP(&previewSet, "set", "s", nil, "field value as key=value (repeatable)")
}

var generateCmd = &cobra.Command{
	Use:     "generate [platform] [type]",
	Aliases: []string{"gen"},
	Short:   "Fill a template and print the message",
	Long: `Fill a template and print the finished message.

Values come from --set. When running interactively, fields without a value
are asked for; any field still unset renders as empty text.`,
	Example: `  templar generate Tickets Anulación --set remitente=Ana --set numero_entrada=123
  templar generate Correos Seguimiento --copy`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseSetValues(generateSet)
		if err != nil {
			return err
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := cmd.Context()
		platform, messageType, err := resolveTarget(ctx, sess.service, args)
		if err != nil {
			return err
		}
		return runGenerate(ctx, cmd.OutOrStdout(), sess.service, platform, messageType, values, generateCopy)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <platform> <type>",
	Short: "Show a template with the given values filled in",
	Long:  "Show a template with the given values filled in. Fields without a value stay visible as {name}.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseSetValues(previewSet)
		if err != nil {
			return err
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return runPreview(cmd.OutOrStdout(), sess.service, args[0], args[1], values)
	},
}

// resolveTarget returns the platform and message type from args, asking for
// whatever is missing when a terminal is available.
func resolveTarget(ctx context.Context, svc *manager.Service, args []string) (string, string, error) {
	var platform, messageType string
	if len(args) > 0 {
		platform = args[0]
	}
	if len(args) > 1 {
		messageType = args[1]
	}
	if platform != "" && messageType != "" {
		return platform, messageType, nil
	}

	if IsNonInteractive() {
		return "", "", &PreflightError{
			Message:  "platform and message type are required",
			Hint:     "Pass both as arguments when not running interactively",
			NextStep: "templar generate <platform> <type> --set key=value",
		}
	}

	if platform == "" {
		platforms := svc.Platforms()
		if len(platforms) == 0 {
			return "", "", &PreflightError{
				Message:  "no platforms defined",
				NextStep: "templar platform add <name>",
			}
		}
		choice, err := promptDriver.Select(ctx, prompt.SelectConfig{Message: "Platform:", Options: platforms})
		if err != nil {
			return "", "", err
		}
		platform = choice
	}

	types := svc.MessageTypes(platform)
	if len(types) == 0 {
		return "", "", &PreflightError{
			Message:  fmt.Sprintf("platform %q has no message types", manager.NormalizeName(platform)),
			NextStep: fmt.Sprintf("templar type add %q <type>", manager.NormalizeName(platform)),
		}
	}
	choice, err := promptDriver.Select(ctx, prompt.SelectConfig{Message: "Message type:", Options: types})
	if err != nil {
		return "", "", err
	}
	return platform, choice, nil
}

func runGenerate(ctx context.Context, out io.Writer, svc *manager.Service, platform, messageType string, values map[string]string, copyText bool) error {
	if IsInteractive() {
		fields, err := svc.Fields(platform, messageType)
		if err != nil {
			return err
		}
		values, err = prompt.FillFields(ctx, promptDriver, fields, values)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return fmt.Errorf("generation cancelled: %w", err)
			}
			return err
		}
	}

	text, err := svc.Generate(ctx, platform, messageType, values)
	if err != nil {
		return err
	}

	copied := false
	if copyText {
		if err := copyToClipboard(text); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			copied = true
		}
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     manager.NormalizeName(platform),
			"message_type": manager.NormalizeName(messageType),
			"text":         text,
			"copied":       copied,
		})
	}

	fmt.Fprintln(out, text)
	if copied {
		fmt.Fprintln(os.Stderr, "Copied to clipboard.")
	}
	return nil
}

func runPreview(out io.Writer, svc *manager.Service, platform, messageType string, values map[string]string) error {
	text, err := svc.Preview(platform, messageType, values)
	if err != nil {
		return err
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     manager.NormalizeName(platform),
			"message_type": manager.NormalizeName(messageType),
			"text":         text,
		})
	}

	fmt.Fprintln(out, text)
	return nil
}
