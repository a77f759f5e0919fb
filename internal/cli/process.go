package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmy/contentfactory/internal/service"
)

var (
	processQueueID   string
	processLimit     int
	processUntilDone bool
)

var processCmd = &cobra.Command{
	Use:   "process-queue",
	Short: "Generate the next chunk of an approved production queue",
	Long: `Generate articles for the next chunk of an approved production queue.

Without --until-done one chunk is processed per invocation, so a cron entry
can call it repeatedly until the queue reports done.

Examples:
  factoryctl process-queue --queue 2b7c...
  factoryctl process-queue --queue 2b7c... --limit 100 --until-done`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of a production queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := application.Runner.Status(cmd.Context(), processQueueID)
		if err != nil {
			return fmt.Errorf("queue status: %w", err)
		}
		printProgress(cmd, p)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&processQueueID, "queue", "q", "", "production queue id")
	processCmd.Flags().IntVarP(&processLimit, "limit", "l", 0, "chunk size (default production.chunk_size)")
	processCmd.Flags().BoolVar(&processUntilDone, "until-done", false, "keep processing chunks until the queue is done")
	_ = processCmd.MarkFlagRequired("queue")

	statusCmd.Flags().StringVarP(&processQueueID, "queue", "q", "", "production queue id")
	_ = statusCmd.MarkFlagRequired("queue")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		p   *service.Progress
		err error
	)
	if processUntilDone {
		p, err = application.Runner.RunUntilDone(ctx, processQueueID, processLimit)
	} else {
		p, err = application.Runner.ProcessQueue(ctx, processQueueID, processLimit)
	}
	if err != nil {
		return fmt.Errorf("process queue: %w", err)
	}
	printProgress(cmd, p)
	return nil
}

func printProgress(cmd *cobra.Command, p *service.Progress) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Queue %s: %s\n", p.QueueID, p.Status)
	fmt.Fprintf(out, "  progress:  %d/%d (%.1f%%)\n", p.Completed, p.Total, p.Percent)
	fmt.Fprintf(out, "  generated: %d\n", p.Generated)
	if p.Processed > 0 {
		fmt.Fprintf(out, "  this run:  %d\n", p.Processed)
	}
	if p.ErrorLog != "" {
		fmt.Fprintf(out, "  errors:\n%s\n", p.ErrorLog)
	}
}
