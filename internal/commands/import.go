package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studylog/studylog/internal/core"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Batch import timesheet CSV pairs from a directory",
	Long: `Import every {year}_{season}_study.csv file found in the directory,
pairing each with its {year}_{season}_text.csv when present. Terms that
are already imported are reported as errors and skipped; the rest of
the batch continues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service) error {
			result, err := svc.BatchImport(ctx, dir)
			if err != nil {
				return err
			}
			printBatchResult(result)
			return nil
		})
	},
}

func printBatchResult(result *core.BatchResult) {
	for _, s := range result.Sessions {
		fmt.Printf("imported %-14s categories=%-3d days=%-3d observations=%-4d text=%d\n",
			s.SessionLabel, s.CategoriesCreated, s.DailyRecordsCreated,
			s.ObservationsCreated, s.TextEntriesCreated)
	}
	for _, e := range result.Errors {
		fmt.Printf("failed   %s: %s\n", e.File, e.Error)
	}
	fmt.Printf("%d imported, %d failed\n", result.Imported, len(result.Errors))
}
