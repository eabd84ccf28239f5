package cmd

import (
	"fmt"
	"strings"

	"eventboard-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uri, err := postgresURI()
		if err != nil {
			return err
		}
		if err := repository.MigrateUp(uri); err != nil {
			return err
		}
		log.Info().Msg("Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uri, err := postgresURI()
		if err != nil {
			return err
		}
		if err := repository.MigrateDown(uri, migrateSteps); err != nil {
			return err
		}
		log.Info().Int("steps", migrateSteps).Msg("Migrations rolled back")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func postgresURI() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	uri := cfg.Store.URI
	if !strings.HasPrefix(uri, "postgres://") && !strings.HasPrefix(uri, "postgresql://") {
		return "", fmt.Errorf("migrations need a postgres store uri")
	}
	return uri, nil
}
