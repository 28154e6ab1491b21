package main

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/eventmatch/internal/adapters/repository"
)

//nolint:gochecknoglobals // Cobra boilerplate
var seedFile string

//nolint:gochecknoglobals // Cobra boilerplate
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the Postgres tables if they do not exist",
	RunE:  runSchema,
}

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert a seed file into Postgres",
	Long: `Applies the schema, then upserts every volunteer and event of the seed file.
Running it twice is harmless.

Example:
  matchctl seed --file seed.yaml --database-url postgres://localhost/eventmatch?sslmode=disable`,
	RunE: runSeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (required)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSchema(cmd *cobra.Command, _ []string) (err error) {
	err = requireDatabaseURL()
	if err != nil {
		return err
	}
	var db *sql.DB
	db, err = repository.OpenPostgres(cmd.Context(), databaseURL)
	if err != nil {
		err = errors.Wrap(err, "failed to connect")
		return err
	}
	defer db.Close()

	err = repository.CreateSchema(cmd.Context(), db)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) (err error) {
	err = requireDatabaseURL()
	if err != nil {
		return err
	}
	var seed *repository.Seed
	seed, err = repository.LoadSeed(seedFile)
	if err != nil {
		return err
	}

	var db *sql.DB
	db, err = repository.OpenPostgres(cmd.Context(), databaseURL)
	if err != nil {
		err = errors.Wrap(err, "failed to connect")
		return err
	}
	defer db.Close()

	err = repository.CreateSchema(cmd.Context(), db)
	if err != nil {
		return err
	}
	err = seed.Apply(cmd.Context(), repository.NewPostgresStore(db))
	if err != nil {
		err = errors.Wrap(err, "failed to apply seed")
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d volunteers and %d events\n", len(seed.Volunteers), len(seed.Events))
	return nil
}
