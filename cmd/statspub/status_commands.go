package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"statspub/internal/config"
	"statspub/internal/status"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect release publishing status",
	}

	statusCmd.AddCommand(newStatusListCommand(ctx))
	statusCmd.AddCommand(newStatusShowCommand(ctx))
	statusCmd.AddCommand(newStatusStatsCommand(ctx))
	statusCmd.AddCommand(newStatusClearSupersededCommand(ctx))

	return statusCmd
}

func newStatusListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publish attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *status.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(cmd, recordsJSON(records))
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No publish attempts recorded")
					return nil
				}
				colorize := shouldColorize(out)
				rows := buildStatusListRows(records, colorize)
				fmt.Fprintln(out, renderTable(
					[]string{"Release Version", "Publication", "Overall", "Publish At", "Updated"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newStatusShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <release-version-id>",
		Short: "Show every attempt for a release version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseVersionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid release version id %q: %w", args[0], err)
			}
			return ctx.withStore(func(cfg *config.Config, store *status.Store) error {
				records, err := store.QueryByReleaseVersion(cmd.Context(), releaseVersionID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(cmd, recordsJSON(records))
				}
				if len(records) == 0 {
					fmt.Fprintf(out, "No attempts recorded for %s\n", releaseVersionID)
					return nil
				}
				colorize := shouldColorize(out)
				for i, record := range records {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprint(out, renderRecordDetail(record, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newStatusStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize attempts by overall stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *status.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rows := buildStatsRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(out, "No publish attempts recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Overall", "Count"}, rows, 1))
				return nil
			})
		},
	}
}

func newStatusClearSupersededCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-superseded",
		Short: "Delete superseded attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *status.Store) error {
				removed, err := store.ClearSuperseded(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d superseded attempt(s)\n", removed)
				return nil
			})
		},
	}
}

// writeJSON renders v for the --json flag, indented for readability.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type recordJSON struct {
	ReleaseVersionID string         `json:"release_version_id"`
	ReleaseStatusID  string         `json:"release_status_id"`
	PublicationSlug  string         `json:"publication_slug,omitempty"`
	ReleaseSlug      string         `json:"release_slug,omitempty"`
	PublishAt        string         `json:"publish_at,omitempty"`
	Immediate        bool           `json:"immediate,omitempty"`
	Content          string         `json:"content"`
	Files            string         `json:"files"`
	Publishing       string         `json:"publishing"`
	Overall          string         `json:"overall"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Events           []status.Event `json:"events,omitempty"`
}

func recordsJSON(records []*status.Record) []recordJSON {
	items := make([]recordJSON, 0, len(records))
	for _, record := range records {
		item := recordJSON{
			ReleaseVersionID: record.ReleaseVersionID.String(),
			ReleaseStatusID:  record.ReleaseStatusID.String(),
			PublicationSlug:  record.PublicationSlug,
			ReleaseSlug:      record.ReleaseSlug,
			Immediate:        record.Immediate,
			Content:          string(record.Content),
			Files:            string(record.Files),
			Publishing:       string(record.Publishing),
			Overall:          string(record.Overall),
			CreatedAt:        record.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:        record.UpdatedAt.UTC().Format(time.RFC3339),
			Events:           record.Events,
		}
		if record.PublishAt != nil {
			item.PublishAt = record.PublishAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}
