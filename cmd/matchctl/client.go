package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/eventmatch/internal/adapters/repository"
	"github.com/okian/eventmatch/internal/domain/types"
	"github.com/okian/eventmatch/internal/loadtest"
)

const defaultServerURL = "http://localhost:9080"

//nolint:gochecknoglobals // Cobra boilerplate
var (
	serverURL     string
	clientTimeout time.Duration

	loadRequests int
	loadWorkers  int
	loadFixture  string
	loadIDs      []string

	genVolunteers int
	genEvents     int
	genSeed       uint64
	genOut        string
)

//nolint:gochecknoglobals // Cobra boilerplate
var matchCmd = &cobra.Command{
	Use:   "match <volunteer-id>",
	Short: "Fetch ranked events for a volunteer from a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

//nolint:gochecknoglobals // Cobra boilerplate
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fire concurrent match requests and verify response ordering",
	Long: `Queries GET /matches for the given volunteers round-robin and checks that
every response is ordered by matchScore descending, then title ascending.

Examples:
  matchctl load --fixture seed.yaml --requests 5000 --workers 32
  matchctl load --ids vol-1,vol-2 --requests 100`,
	RunE: runLoad,
}

//nolint:gochecknoglobals // Cobra boilerplate
var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random seed file",
	Long: `Writes a deterministic random fixture: the same --seed always produces the
same volunteers (vol-1..vol-N) and events.

Example:
  matchctl gen --volunteers 200 --events 1000 --out seed.yaml`,
	RunE: runGen,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	for _, c := range []*cobra.Command{matchCmd, loadCmd} {
		c.Flags().StringVar(&serverURL, "url", defaultServerURL, "Base URL of the service")
		c.Flags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "HTTP request timeout")
		rootCmd.AddCommand(c)
	}

	loadCmd.Flags().IntVar(&loadRequests, "requests", 1000, "Number of requests")
	loadCmd.Flags().IntVar(&loadWorkers, "workers", 8, "Number of concurrent workers")
	loadCmd.Flags().StringVarP(&loadFixture, "fixture", "f", "", "Take volunteer ids from this seed file")
	loadCmd.Flags().StringSliceVar(&loadIDs, "ids", nil, "Volunteer ids to query")

	genCmd.Flags().IntVar(&genVolunteers, "volunteers", 100, "Number of volunteers")
	genCmd.Flags().IntVar(&genEvents, "events", 500, "Number of events")
	genCmd.Flags().Uint64Var(&genSeed, "seed", 1, "Random seed")
	genCmd.Flags().StringVarP(&genOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(genCmd)
}

func runMatch(cmd *cobra.Command, args []string) (err error) {
	client := loadtest.NewClient(serverURL, clientTimeout)
	var matches []types.Match
	matches, err = client.Matches(cmd.Context(), args[0])
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch matches for %s", args[0])
		return err
	}
	err = printJSON(cmd.OutOrStdout(), matches)
	return err
}

func runLoad(cmd *cobra.Command, _ []string) (err error) {
	ids := loadIDs
	if loadFixture != "" {
		var seed *repository.Seed
		seed, err = repository.LoadSeed(loadFixture)
		if err != nil {
			return err
		}
		ids = append(ids, loadtest.VolunteerIDs(seed)...)
	}

	var stats *loadtest.Stats
	stats, err = loadtest.Run(cmd.Context(), loadtest.Config{
		BaseURL:      serverURL,
		VolunteerIDs: ids,
		Requests:     loadRequests,
		Workers:      loadWorkers,
		Timeout:      clientTimeout,
	})
	if err != nil {
		err = errors.Wrap(err, "load run failed")
		return err
	}

	err = printJSON(cmd.OutOrStdout(), map[string]any{
		"requests":        stats.Requests,
		"ok":              stats.OK,
		"notFound":        stats.NotFound,
		"failed":          stats.Failed,
		"orderViolations": stats.OrderViolations,
		"successRate":     stats.SuccessRate(),
		"duration":        stats.Duration.String(),
		"p50":             stats.P50.String(),
		"p95":             stats.P95.String(),
		"max":             stats.Max.String(),
	})
	if err != nil {
		return err
	}
	if stats.OrderViolations > 0 {
		err = fmt.Errorf("%d responses were out of order", stats.OrderViolations)
	}
	return err
}

func runGen(cmd *cobra.Command, _ []string) (err error) {
	seed := loadtest.GenerateSeed(genVolunteers, genEvents, genSeed, time.Now().UTC())
	var data []byte
	data, err = seed.Encode()
	if err != nil {
		return err
	}
	if strings.TrimSpace(genOut) == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	err = os.WriteFile(genOut, data, 0o600)
	if err != nil {
		err = errors.Wrap(err, "failed to write seed file")
	}
	return err
}
