package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opencode-ai/templar/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive template form",
	Long:  "Open the terminal form: pick a platform and message type, fill the fields with a live preview, then generate and copy the message.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "the form requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use 'templar generate'",
			NextStep: "templar generate <platform> <type> --set key=value",
		}
	}

	sess, err := openSessionAs(sourceTUI)
	if err != nil {
		return err
	}
	defer sess.Close()

	return tui.Run(tui.Config{
		Service:   sess.service,
		Theme:     GetConfig().TUI.Theme,
		Clipboard: copyToClipboard,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
