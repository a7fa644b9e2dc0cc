package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"statspub/internal/config"
	"statspub/internal/publisher"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Schedule and run release publishes",
	}

	publishCmd.AddCommand(newPublishScheduleCommand(ctx))
	publishCmd.AddCommand(newPublishNowCommand(ctx))
	publishCmd.AddCommand(newPublishInvalidateCommand(ctx))

	return publishCmd
}

func newPublishScheduleCommand(ctx *commandContext) *cobra.Command {
	var atFlag string
	var publicationFlag string
	var releaseFlag string

	cmd := &cobra.Command{
		Use:   "schedule <release-version-id>",
		Short: "Schedule a release for a future publish time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseVersionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid release version id %q: %w", args[0], err)
			}
			publishAt, err := parsePublishTime(atFlag)
			if err != nil {
				return err
			}
			return ctx.withPublisher(func(cfg *config.Config, pub *publisher.Publisher) error {
				record, err := pub.Schedule(cmd.Context(), publisher.Request{
					ReleaseVersionID: releaseVersionID,
					PublicationSlug:  publicationFlag,
					ReleaseSlug:      releaseFlag,
				}, publishAt)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s for %s (attempt %s)\n",
					releaseVersionID, publishAt.UTC().Format(time.RFC3339), record.ReleaseStatusID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&atFlag, "at", "", "Publish time (RFC 3339, e.g. 2026-09-01T09:30:00Z)")
	cmd.Flags().StringVar(&publicationFlag, "publication", "", "Publication slug")
	cmd.Flags().StringVar(&releaseFlag, "release", "", "Release slug")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newPublishNowCommand(ctx *commandContext) *cobra.Command {
	var publicationFlag string
	var releaseFlag string

	cmd := &cobra.Command{
		Use:   "now <release-version-id>",
		Short: "Start an immediate publish run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseVersionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid release version id %q: %w", args[0], err)
			}
			return ctx.withPublisher(func(cfg *config.Config, pub *publisher.Publisher) error {
				record, err := pub.PublishImmediate(cmd.Context(), publisher.Request{
					ReleaseVersionID: releaseVersionID,
					PublicationSlug:  publicationFlag,
					ReleaseSlug:      releaseFlag,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Immediate publish started for %s (attempt %s)\n",
					releaseVersionID, record.ReleaseStatusID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&publicationFlag, "publication", "", "Publication slug")
	cmd.Flags().StringVar(&releaseFlag, "release", "", "Release slug")
	return cmd
}

func newPublishInvalidateCommand(ctx *commandContext) *cobra.Command {
	var reasons []string

	cmd := &cobra.Command{
		Use:   "invalidate <release-version-id>",
		Short: "Record a release rejected before publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseVersionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid release version id %q: %w", args[0], err)
			}
			return ctx.withPublisher(func(cfg *config.Config, pub *publisher.Publisher) error {
				record, err := pub.Invalidate(cmd.Context(), publisher.Request{
					ReleaseVersionID: releaseVersionID,
				}, reasons...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded invalid attempt %s for %s\n",
					record.ReleaseStatusID, releaseVersionID)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&reasons, "reason", nil, "Reason the release failed validation (repeatable)")
	return cmd
}

func parsePublishTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("publish time is required")
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publish time %q (expected RFC 3339): %w", value, err)
	}
	if !parsed.After(time.Now()) {
		return time.Time{}, fmt.Errorf("publish time %s is not in the future", parsed.Format(time.RFC3339))
	}
	return parsed, nil
}
