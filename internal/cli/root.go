// Package cli implements coachctl, the operator command line for the
// practice coach backend.
package cli

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/practice-coach/backend/internal/config"
	"github.com/practice-coach/backend/internal/database"
	"github.com/practice-coach/backend/internal/platform/logger"
	"github.com/practice-coach/backend/internal/skills"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *sqlx.DB
}

func (a *app) store() *skills.Store {
	return skills.NewStore(a.db)
}

func (a *app) service() *skills.Service {
	return skills.NewServiceFromConfig(a.store(), a.cfg.Scoring, a.log)
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// newRootCmd builds the coachctl command tree and the state its
// subcommands share.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "coachctl",
		Short: "Manage practice data and inspect skills",
		Long: `coachctl loads problems and attempts into the practice coach
database and prints per-concept skill estimates and recommendations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			a.cfg, a.log, a.db = cfg, log, db
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newLoadCmd(a),
		newSkillsCmd(a),
		newRecommendCmd(a),
		newHistoryCmd(a),
	)
	return root, a
}

// execute runs the tree and releases the database and logger whether or
// not the command failed. PersistentPostRun is skipped when RunE errors.
func execute(root *cobra.Command, a *app) error {
	defer a.close()
	return root.Execute()
}

func Execute() {
	if err := execute(newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
