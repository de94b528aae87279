package command

// root.go wires the shared config, logger and database handle for every subcommand.

import (
	"fmt"
	"log/slog"
	"os"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg *config.Config
	log *slog.Logger
	db  *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:   "yamdb-admin",
	Short: "yamdb-admin - operator commands for the yamdb API",
	Long: `yamdb-admin runs maintenance tasks against the yamdb database:
- apply the schema
- create a superuser
- change a user's role
- re-send a confirmation code

Configuration is read from the same environment variables as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
		db, err = database.ConnectDB(cfg, log)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db == nil {
			return nil
		}
		return database.Close(db)
	},
}

// Execute is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
