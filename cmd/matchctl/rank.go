package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/eventmatch/internal/adapters/repository"
	service "github.com/okian/eventmatch/internal/app"
	"github.com/okian/eventmatch/internal/domain/types"
	"github.com/okian/eventmatch/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	rankFixture string
	rankTable   bool
)

//nolint:gochecknoglobals // Cobra boilerplate
var rankCmd = &cobra.Command{
	Use:   "rank <volunteer-id>",
	Short: "Rank a fixture's events for one volunteer without a server",
	Long: `Loads a YAML or JSON fixture (the seed format) into memory and ranks every
event for the volunteer exactly as GET /matches/{volunteerId} would.

Examples:
  matchctl rank vol-1 --fixture seed.yaml
  matchctl rank vol-1 --fixture seed.yaml --table`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVarP(&rankFixture, "fixture", "f", "", "Fixture file (required)")
	rankCmd.Flags().BoolVar(&rankTable, "table", false, "Print a table instead of JSON")
	_ = rankCmd.MarkFlagRequired("fixture")
}

func runRank(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	var store *repository.InMemoryStore
	store, err = repository.NewInMemoryStoreFromSeed(ctx, rankFixture)
	if err != nil {
		err = errors.Wrap(err, "failed to load fixture")
		return err
	}

	svc := service.New(store, service.WithLogger(logger.Named("rank")))
	var matches []types.Match
	matches, err = svc.Matches(ctx, args[0])
	if err != nil {
		err = errors.Wrapf(err, "failed to rank events for %s", args[0])
		return err
	}

	if rankTable {
		err = printTable(cmd.OutOrStdout(), matches)
		return err
	}
	err = printJSON(cmd.OutOrStdout(), matches)
	return err
}

func printTable(w io.Writer, matches []types.Match) (err error) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SCORE\tID\tTITLE\tDATE\tLOCATION")
	for _, m := range matches {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.MatchScore, m.ID, m.Title, m.Date, m.Location)
	}
	err = tw.Flush()
	if err != nil {
		err = errors.Wrap(err, "failed to write table")
	}
	return err
}
