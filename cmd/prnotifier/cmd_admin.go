package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.ScheduleStore.ListExecutionLogs(ctx, args[0], historyPage, historySize)
	if err != nil {
		return fmt.Errorf("list executions: %w", err)
	}
	return writeHistory(cmd.OutOrStdout(), result)
}

func writeHistory(w io.Writer, result *types.PaginationResult[types.ExecutionLog]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXECUTED AT\tSTATUS\tPRS\tSENT\tESCALATED\tDURATION\tERROR")
	for _, l := range result.Items {
		errMsg := ""
		if l.ErrorMessage != nil {
			errMsg = *l.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%dms\t%s\n",
			l.ExecutedAt.UTC().Format(time.RFC3339),
			l.Status,
			l.PullRequestsFound,
			l.MessagesSent,
			l.EscalationsTriggered,
			l.ExecutionTimeMs(),
			errMsg,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d executions)\n", result.Page, result.TotalPages, result.TotalItems)
	return err
}
