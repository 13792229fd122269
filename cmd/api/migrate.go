package api

import (
	"fmt"

	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/repo/migrate"
	"github.com/scienceol/cellbank/pkg/repo/usagelog"
	"github.com/spf13/cobra"
)

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Create the usage log tables in postgres",
		SilenceUsage: true,
		PreRunE:      initMigrate,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Context(), db.DB())
		},
		PostRunE: closeMigrate,
	}
}

// NewImport copies the csv usage log into postgres.
func NewImport() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:          "import",
		Long:         "Import a csv usage log into the postgres usage log",
		SilenceUsage: true,
		PreRunE:      initMigrate,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := migrate.Table(ctx, db.DB()); err != nil {
				return err
			}
			entries, err := usagelog.NewCSV(path).List(ctx)
			if err != nil {
				return err
			}
			n, err := usagelog.Import(ctx, db.DB(), entries)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d usage entries from %s\n", n, path)
			return nil
		},
		PostRunE: closeMigrate,
	}
	cmd.Flags().StringVar(&path, "file", "usage_log.csv", "csv usage log to import")
	return cmd
}

func initMigrate(cmd *cobra.Command, _ []string) error {
	initPostgres(cmd.Context())
	return nil
}

func closeMigrate(cmd *cobra.Command, _ []string) error {
	db.ClosePostgres(cmd.Context())
	return nil
}
