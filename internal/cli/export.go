package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/templar/internal/registry"
	"github.com/opencode-ai/templar/internal/templates"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all templates",
	Long: `Export all platforms, message types and templates.

json produces the template file format. yaml produces the defaults file
format, which can be placed at .templar/defaults.yaml to seed new setups.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		data, err := encodeExport(sess.service.Document(), exportFormat)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := afero.WriteFile(fileSystem, exportOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", exportOutput)
		return nil
	},
}

func encodeExport(doc registry.Document, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return encodeDocumentJSON(doc)
	case "yaml", "yml":
		return templates.FromDocument(doc).EncodeYAML()
	default:
		return nil, fmt.Errorf("unknown export format %q (expected json or yaml)", format)
	}
}

func encodeDocumentJSON(doc registry.Document) ([]byte, error) {
	data, err := doc.MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

