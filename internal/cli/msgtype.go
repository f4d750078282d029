package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/templar/internal/manager"
)

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.AddCommand(typeListCmd)
	typeCmd.AddCommand(typeAddCmd)
	typeCmd.AddCommand(typeRemoveCmd)
}

var typeCmd = &cobra.Command{
	Use:     "type",
	Aliases: []string{"types"},
	Short:   "Manage message types",
	Long:    "Manage the message types of a platform. Each message type holds one template.",
}

var typeListCmd = &cobra.Command{
	Use:     "list <platform>",
	Aliases: []string{"ls"},
	Short:   "List the message types of a platform",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return listMessageTypes(cmd.OutOrStdout(), sess.service, args[0])
	},
}

var typeAddCmd = &cobra.Command{
	Use:   "add <platform> <type>",
	Short: "Add an empty message type to a platform",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return addMessageType(cmd.Context(), cmd.OutOrStdout(), sess.service, args[0], args[1])
	},
}

var typeRemoveCmd = &cobra.Command{
	Use:     "remove <platform> <type>",
	Aliases: []string{"rm"},
	Short:   "Remove a message type and its template",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := cmd.Context()
		platform, messageType := manager.NormalizeName(args[0]), manager.NormalizeName(args[1])
		if !SkipConfirmation() && sess.service.HasMessageType(platform, messageType) {
			if !confirm(ctx, fmt.Sprintf("Remove message type '%s' from '%s'?", messageType, platform)) {
				if IsNonInteractive() {
					return fmt.Errorf("refusing to remove message type %q without confirmation; pass --yes", messageType)
				}
				fmt.Fprintln(os.Stderr, "Cancelled.")
				return nil
			}
		}

		return removeMessageType(ctx, cmd.OutOrStdout(), sess.service, platform, messageType)
	},
}

func listMessageTypes(out io.Writer, svc *manager.Service, platform string) error {
	type messageTypeRow struct {
		Name        string   `json:"name"`
		Fields      []string `json:"fields"`
		HasTemplate bool     `json:"has_template"`
	}

	platform = manager.NormalizeName(platform)
	if !svc.HasPlatform(platform) {
		return fmt.Errorf("%w: %q", manager.ErrPlatformNotFound, platform)
	}

	names := svc.MessageTypes(platform)
	rows := make([]messageTypeRow, 0, len(names))
	for _, name := range names {
		record, err := svc.Template(platform, name)
		if err != nil {
			return err
		}
		fields, _ := svc.Fields(platform, name)
		rows = append(rows, messageTypeRow{
			Name:        name,
			Fields:      fields,
			HasTemplate: !record.IsEmpty(),
		})
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No message types in '%s'.\n", platform)
		return nil
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, strconv.Itoa(len(row.Fields)), formatYesNo(row.HasTemplate)})
	}
	return writeTable(out, []string{"TYPE", "FIELDS", "TEMPLATE"}, table)
}

func addMessageType(ctx context.Context, out io.Writer, svc *manager.Service, platform, messageType string) error {
	added, err := svc.AddMessageType(ctx, platform, messageType)
	if err := absorbNotPersisted(err); err != nil {
		return err
	}

	platform = manager.NormalizeName(platform)
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     platform,
			"message_type": added,
		})
	}

	fmt.Fprintf(out, "Message type '%s' added to '%s'\n", added, platform)
	fmt.Fprintf(out, "Set its template with: templar template set %s %s\n", strconv.Quote(platform), strconv.Quote(added))
	return nil
}

func removeMessageType(ctx context.Context, out io.Writer, svc *manager.Service, platform, messageType string) error {
	removed, err := svc.RemoveMessageType(ctx, platform, messageType)
	if err := absorbNotPersisted(err); err != nil {
		return err
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform":     platform,
			"message_type": messageType,
			"removed":      removed,
		})
	}

	if !removed {
		fmt.Fprintf(out, "Message type '%s' not found in '%s'; nothing removed\n", messageType, platform)
		return nil
	}
	fmt.Fprintf(out, "Message type '%s' removed from '%s'\n", messageType, platform)
	return nil
}
