package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/skills"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		page, pageSize int
		stats, asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history <user_id>",
		Short: "Print a user's attempts, newest first, or their summary stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hs := skills.NewHistoryService(a.store(), a.log)
			out := cmd.OutOrStdout()

			if stats {
				s, err := hs.GetUserHistoryStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, s)
				}
				fmt.Fprintf(out, "attempts: %d  passed: %d  pass rate: %.3f  problems: %d  minutes: %d\n",
					s.TotalAttempts, s.TotalPassed, s.PassRate, s.ProblemsAttempted, s.MinutesSpent)
				return nil
			}

			resp, err := hs.GetUserHistory(cmd.Context(), args[0], models.HistoryListRequest{Page: page, PageSize: pageSize})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, resp)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tPROBLEM\tPASSED\tATTEMPTS\tMINUTES")
			for _, it := range resp.Attempts {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\n",
					it.AttemptedAt.Format("2006-01-02 15:04"), it.ProblemID, it.Passed, it.AttemptCount, it.MinutesSpent)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "page %d, %d of %d attempts\n", resp.Page, len(resp.Attempts), resp.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "attempts per page (max 50)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print summary stats instead of attempts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
