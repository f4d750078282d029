package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/templar/internal/db"
	"github.com/opencode-ai/templar/internal/events"
	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/models"
)

var (
	historyLimit int
	historyType  string
	historySince string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of events to show (default history.limit)")
	historyCmd.Flags().StringVar(&historyType, "type", "", "filter by event type (e.g. message.generated)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only events after a duration ago (30m, 2d) or a time (RFC3339, 2006-01-02)")
}

var historyCmd = &cobra.Command{
	Use:   "history [platform] [type]",
	Short: "Show recent changes and generated messages",
	Long: `Show recent changes and generated messages, newest first.

With a platform, only that platform's add and remove events are shown.
With a platform and a message type, only events for that message type are
shown.`,
	Example: `  templar history -n 10
  templar history Tickets Anulación --type message.generated
  templar history --since 2d`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer database.Close()

		limit := historyLimit
		if limit <= 0 {
			limit = GetConfig().History.Limit
		}
		query, err := buildHistoryQuery(args, historyType, historySince, limit, time.Now())
		if err != nil {
			return err
		}

		list, err := db.NewEventRepository(database).Query(cmd.Context(), query)
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), list)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one history event with its full payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer database.Close()

		event, err := db.NewEventRepository(database).Get(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, db.ErrEventNotFound) {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			return err
		}
		return writeHistoryEvent(cmd.OutOrStdout(), event)
	},
}

func openHistoryDB() (*db.DB, error) {
	cfg := GetConfig()
	if !cfg.History.Enabled {
		return nil, &PreflightError{
			Message:  "history is disabled",
			Hint:     "Set history.enabled: true in the config file or TEMPLAR_HISTORY_ENABLED=true",
			NextStep: "templar history",
		}
	}
	return db.Open(cfg.History.Path)
}

// buildHistoryQuery turns history arguments into a repository query. One
// argument selects platform events, two select message type events.
func buildHistoryQuery(args []string, eventType, since string, limit int, now time.Time) (db.EventQuery, error) {
	query := db.EventQuery{Limit: limit, Newest: true}

	if eventType != "" {
		t := models.EventType(eventType)
		query.Type = &t
	}

	switch len(args) {
	case 1:
		entityType := models.EntityTypePlatform
		entityID := manager.NormalizeName(args[0])
		query.EntityType, query.EntityID = &entityType, &entityID
	case 2:
		entityType := models.EntityTypeMessageType
		entityID := models.MessageTypeKey(manager.NormalizeName(args[0]), manager.NormalizeName(args[1]))
		query.EntityType, query.EntityID = &entityType, &entityID
	}

	if since != "" {
		t, err := parseSince(since, now)
		if err != nil {
			return db.EventQuery{}, err
		}
		query.Since = &t
	}
	return query, nil
}

// parseSince accepts a duration before now (with a "d" suffix for days) or
// an absolute time.
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if dur, err := parseDurationWithDays(value); err == nil {
		if dur < 0 {
			return time.Time{}, fmt.Errorf("invalid --since %q: duration must not be negative", value)
		}
		return now.UTC().Add(-dur), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since %q (use a duration like 30m or 2d, or a time like 2006-01-02)", value)
}

func parseDurationWithDays(value string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func writeHistory(out io.Writer, list []*models.Event) error {
	if list == nil {
		list = []*models.Event{}
	}
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, event := range list {
		rows = append(rows, []string{
			event.ID,
			event.Timestamp.Local().Format("2006-01-02 15:04:05"),
			string(event.Type),
			event.EntityID,
			event.Metadata["source"],
			historyDetail(event),
		})
	}
	return writeTable(out, []string{"ID", "TIME", "EVENT", "ENTITY", "SOURCE", "DETAIL"}, rows)
}

func writeHistoryEvent(out io.Writer, event *models.Event) error {
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, event)
	}

	fmt.Fprintf(out, "ID:      %s\n", event.ID)
	fmt.Fprintf(out, "Time:    %s\n", event.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Event:   %s\n", event.Type)
	fmt.Fprintf(out, "Entity:  %s %s\n", event.EntityType, event.EntityID)
	keys := make([]string, 0, len(event.Metadata))
	for key := range event.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "%-8s %s\n", key+":", event.Metadata[key])
	}

	switch event.Type {
	case models.EventTypeMessageGenerated:
		if payload, err := events.GeneratedMessage(event); err == nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, payload.Text)
		}
	case models.EventTypeTemplateSaved:
		if payload, err := events.SavedTemplate(event); err == nil {
			fmt.Fprintf(out, "Fields:  %s\n", strings.Join(payload.Fields, ", "))
		}
	}
	return nil
}

func historyDetail(event *models.Event) string {
	switch event.Type {
	case models.EventTypeMessageGenerated:
		payload, err := events.GeneratedMessage(event)
		if err != nil {
			return ""
		}
		return truncate(payload.Text, 60)
	case models.EventTypeTemplateSaved:
		payload, err := events.SavedTemplate(event)
		if err != nil {
			return ""
		}
		return "fields: " + strings.Join(payload.Fields, ", ")
	}
	return ""
}
