package cli

import (
	"context"
	"fmt"

	"github.com/practice-coach/backend/internal/database"
	"github.com/practice-coach/backend/internal/ingest"
	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load problems or attempts from a .csv or .xlsx file",
	}
	cmd.PersistentFlags().StringVar(&sheet, "sheet", "", "workbook sheet to read (default: first sheet)")

	run := func(load func(*ingest.Loader, context.Context, string) (*ingest.Result, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(a.db, a.cfg.Database.Driver); err != nil {
				return err
			}

			loader := ingest.NewLoader(a.store(), sheet, a.log)
			res, err := load(loader, cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed: %d  inserted: %d  skipped: %d\n", res.Processed, res.Inserted, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "problems <file>",
			Short: "Upsert problems (problem_id, title, difficulty, concepts)",
			Args:  cobra.ExactArgs(1),
			RunE:  run((*ingest.Loader).LoadProblems),
		},
		&cobra.Command{
			Use:   "attempts <file>",
			Short: "Insert attempts (user_id, problem_id, timestamp, outcome, attempts, time_spent_minutes)",
			Args:  cobra.ExactArgs(1),
			RunE:  run((*ingest.Loader).LoadAttempts),
		},
	)
	return cmd
}
