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
	rootCmd.AddCommand(platformCmd)
	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformAddCmd)
	platformCmd.AddCommand(platformRemoveCmd)
}

var platformCmd = &cobra.Command{
	Use:     "platform",
	Aliases: []string{"platforms"},
	Short:   "Manage platforms",
	Long:    "Manage the platforms that group message types.",
}

var platformListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List platforms",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return listPlatforms(cmd.OutOrStdout(), sess.service)
	},
}

var platformAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return addPlatform(cmd.Context(), cmd.OutOrStdout(), sess.service, args[0])
	},
}

var platformRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a platform and all of its message types",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := cmd.Context()
		name := manager.NormalizeName(args[0])
		if !SkipConfirmation() {
			types := sess.service.MessageTypes(name)
			if !confirm(ctx, fmt.Sprintf("Remove platform '%s' and its %d message type(s)?", name, len(types))) {
				if IsNonInteractive() {
					return fmt.Errorf("refusing to remove platform %q without confirmation; pass --yes", name)
				}
				fmt.Fprintln(os.Stderr, "Cancelled.")
				return nil
			}
		}

		return removePlatform(ctx, cmd.OutOrStdout(), sess.service, name)
	},
}

func listPlatforms(out io.Writer, svc *manager.Service) error {
	type platformRow struct {
		Name         string `json:"name"`
		MessageTypes int    `json:"message_types"`
	}

	names := svc.Platforms()
	rows := make([]platformRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, platformRow{Name: name, MessageTypes: len(svc.MessageTypes(name))})
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No platforms defined.")
		return nil
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, strconv.Itoa(row.MessageTypes)})
	}
	return writeTable(out, []string{"PLATFORM", "TYPES"}, table)
}

func addPlatform(ctx context.Context, out io.Writer, svc *manager.Service, name string) error {
	existed := svc.HasPlatform(name)
	added, err := svc.AddPlatform(ctx, name)
	if err := absorbNotPersisted(err); err != nil {
		return err
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform": added,
			"created":  !existed,
		})
	}

	if existed {
		fmt.Fprintf(out, "Platform '%s' already exists\n", added)
		return nil
	}
	fmt.Fprintf(out, "Platform '%s' added\n", added)
	return nil
}

func removePlatform(ctx context.Context, out io.Writer, svc *manager.Service, name string) error {
	removed, err := svc.RemovePlatform(ctx, name)
	if err := absorbNotPersisted(err); err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %q", manager.ErrPlatformNotFound, name)
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, map[string]any{
			"platform": name,
			"removed":  true,
		})
	}

	fmt.Fprintf(out, "Platform '%s' removed\n", name)
	return nil
}
