package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		k      int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <user_id>",
		Short: "Print the top unattempted problems for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("k") {
				k = a.cfg.DefaultK
			}

			recs, err := a.service().Recommend(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "no recommendations")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPROBLEM\tDIFFICULTY\tSCORE\tREASON")
			for i, r := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", i+1, r.ProblemID, r.Difficulty, r.Score, r.Reason)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of recommendations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
