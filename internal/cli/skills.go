package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/practice-coach/backend/internal/models"
	"github.com/spf13/cobra"
)

func newSkillsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "skills <user_id>",
		Short: "Print per-concept mastery for a user, weakest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			report, err := a.service().SkillReport(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, models.SkillReportResponse{UserID: userID, Skills: report})
			}
			if len(report) == 0 {
				fmt.Fprintf(out, "no attempts recorded for %s\n", userID)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONCEPT\tMASTERY")
			for _, s := range report {
				fmt.Fprintf(tw, "%s\t%.3f\n", s.Concept, s.Mastery)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
