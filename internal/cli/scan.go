package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmy/contentfactory/internal/service"
)

var (
	scanQueueID   string
	scanNgramSize int
	scanThreshold int
)

var scanCmd = &cobra.Command{
	Use:   "scan-duplicates",
	Short: "Flag near-duplicate articles of a production queue",
	Long: `Compare every pair of articles generated by a queue and store a pending
quality flag for each pair sharing at least --threshold shingles.

Examples:
  factoryctl scan-duplicates --queue 2b7c...
  factoryctl scan-duplicates --queue 2b7c... --ngram 5 --threshold 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Scanner.ScanDuplicates(cmd.Context(), service.ScanRequest{
			QueueID:   scanQueueID,
			NgramSize: scanNgramSize,
			Threshold: scanThreshold,
		})
		if err != nil {
			return fmt.Errorf("scan duplicates: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scanned %d articles, %d collisions\n", res.Scanned, len(res.Collisions))
		for _, c := range res.Collisions {
			fmt.Fprintf(out, "  %s <-> %s  shared=%d similarity=%.2f%%\n", c.ArticleA, c.ArticleB, c.SharedCount, c.Similarity)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanQueueID, "queue", "q", "", "production queue id")
	scanCmd.Flags().IntVar(&scanNgramSize, "ngram", 0, "shingle size in words (default quality.ngram_size)")
	scanCmd.Flags().IntVar(&scanThreshold, "threshold", 0, "shared shingles needed to flag a pair (default quality.threshold)")
	_ = scanCmd.MarkFlagRequired("queue")
}
