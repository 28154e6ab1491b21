package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/eventmatch/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var databaseURL string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Operate and exercise the eventmatch service",
	Long: `matchctl ranks fixtures offline with the same engine the server uses,
manages the Postgres schema and seed data, and talks to a running server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.InitWithFormat("text"); err != nil {
			return errors.Wrap(err, "failed to initialize logging")
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logger.SetLevelString(level)
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", defaultDatabaseURL(),
		"PostgreSQL DSN (default from EVENTMATCH_DATABASE_URL or DATABASE_URL)")
}

func defaultDatabaseURL() (result string) {
	result = os.Getenv("EVENTMATCH_DATABASE_URL")
	if result == "" {
		result = os.Getenv("DATABASE_URL")
	}
	return result
}

func requireDatabaseURL() (err error) {
	if databaseURL == "" {
		err = errors.New("--database-url is required")
	}
	return err
}

func printJSON(w io.Writer, v any) (err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(v)
	if err != nil {
		err = errors.Wrap(err, "failed to write output")
	}
	return err
}
