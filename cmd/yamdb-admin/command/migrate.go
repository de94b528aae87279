package command

import (
	"yamdb/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.Migrate(db, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
