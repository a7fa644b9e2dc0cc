package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"statspub/internal/config"
	"statspub/internal/msgq"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Message channel utilities",
	}

	queueCmd.AddCommand(newQueueDepthCommand(ctx))

	return queueCmd
}

func newQueueDepthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "depth",
		Short: "Show pending message counts per channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(cfg *config.Config, queue *msgq.Store) error {
				rows := make([][]string, 0, 2)
				for _, name := range []string{msgq.QueueStageWork, msgq.QueueStageUpdates, msgq.QueuePublishRequests} {
					depth, err := queue.Depth(cmd.Context(), name)
					if err != nil {
						return err
					}
					rows = append(rows, []string{name, fmt.Sprintf("%d", depth)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Channel", "Pending"}, rows, 1))
				return nil
			})
		},
	}
}
