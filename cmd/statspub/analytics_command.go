package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"statspub/internal/analytics"
	"statspub/internal/analytics/downloads"
	"statspub/internal/analytics/queries"
	"statspub/internal/logging"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Analytics file processing",
	}

	analyticsCmd.AddCommand(newAnalyticsRunCommand(ctx))

	return analyticsCmd
}

func newAnalyticsRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [processor...]",
		Short: "Run enabled analytics processors once",
		Long: "Run claims captured analytics files, aggregates them, and writes " +
			"report files. With no arguments every configured processor runs; " +
			"otherwise only the named processors run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = cfg.Analytics.Processors
			}
			processors := make([]analytics.Processor, 0, len(names))
			for _, name := range names {
				switch name {
				case queries.Name:
					processors = append(processors, queries.New(cfg.Paths.AnalyticsDir))
				case downloads.Name:
					processors = append(processors, downloads.New(cfg.Paths.AnalyticsDir))
				default:
					return fmt.Errorf("unknown processor %q", name)
				}
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			workflow := analytics.NewWorkflow(logger, cfg.Analytics.ClaimConcurrency)

			out := cmd.OutOrStdout()
			for _, proc := range processors {
				if err := workflow.Process(cmd.Context(), proc); err != nil {
					return fmt.Errorf("process %s: %w", proc.Name(), err)
				}
				fmt.Fprintf(out, "Processor %s completed\n", proc.Name())
			}
			return nil
		},
	}
	return cmd
}
