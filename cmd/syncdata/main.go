package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"footysync/ingestion/internal/cache"
	"footysync/ingestion/internal/client"
	"footysync/ingestion/internal/config"
	"footysync/ingestion/internal/models"
	"footysync/ingestion/internal/ratelimit"
	"footysync/ingestion/internal/repository"
	"footysync/ingestion/internal/scheduler"
	"footysync/ingestion/internal/sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagSource  string
	flagType    string
	flagLeague  string
	flagMatch   string
	flagSeason  int
	flagSport   int
	flagDays    int
	flagDryRun  bool
	flagVerbose bool
	flagLimit   int
	flagLogType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "syncdata",
		Short: "Sync football data from external providers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(flagVerbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "FootballAPI", "data source (FootballAPI or FootballDataOrg)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync batch",
		RunE:  runSync,
	}
	syncCmd.Flags().StringVar(&flagType, "type", "full", "what to sync: leagues, teams, matches, standings, match-details or full")
	syncCmd.Flags().StringVar(&flagLeague, "league", "premier-league", "canonical league slug")
	syncCmd.Flags().StringVar(&flagMatch, "match", "", "provider match id (required for match-details)")
	syncCmd.Flags().IntVar(&flagSeason, "season", 0, "season starting year (default: current season)")
	syncCmd.Flags().IntVar(&flagSport, "sport", models.SportFootball, "sport id (only football is supported)")
	syncCmd.Flags().IntVar(&flagDays, "days", 7, "days ahead to fetch fixtures for")
	syncCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "fetch and normalize without writing")
	rootCmd.AddCommand(syncCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show quota usage, connectivity and recent sync batches",
		RunE:  runStatus,
	}
	statusCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of recent sync batches to show")
	statusCmd.Flags().StringVar(&flagLogType, "type", "", "only show batches for one data type (leagues, teams, matches, team_statistics)")
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// setup wires configuration, database, cache, counter and data source.
// The returned cleanup closes everything it opened.
func setup(ctx context.Context) (*sync.Service, client.DataSource, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := repository.NewDatabase(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, nil, nil, err
	}

	var responseCache cache.Cache
	var counter ratelimit.Counter
	var closeCache func()

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - using in-memory cache and counters")
		responseCache = cache.NewMemoryCache()
		counter = ratelimit.NewMemoryCounter()
		closeCache = func() {}
	} else {
		responseCache = redisCache
		counter = ratelimit.NewRedisCounter(redisCache.Client())
		closeCache = func() { redisCache.Close() }
	}

	source, err := client.New(flagSource, cfg, responseCache, counter)
	if err != nil {
		closeCache()
		db.Close()
		return nil, nil, nil, err
	}

	svc := sync.NewService(db, source,
		sync.WithDryRun(flagDryRun),
		sync.WithDaysAhead(flagDays),
	)

	cleanup := func() {
		closeCache()
		db.Close()
	}
	return svc, source, cleanup, nil
}

// validateSport rejects sport ids other than football, the only sport the
// providers and the data model cover
func validateSport(id int) error {
	if id != models.SportFootball {
		return fmt.Errorf("unsupported sport id %d: only football (%d) is supported", id, models.SportFootball)
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateSport(flagSport); err != nil {
		return err
	}

	svc, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	season := flagSeason
	if season == 0 {
		season = scheduler.CurrentSeason(time.Now())
	}

	var results []*sync.SyncResult
	switch flagType {
	case "leagues":
		result, err := svc.SyncLeagues(ctx)
		if err != nil {
			return err
		}
		results = append(results, result)
	case "teams":
		result, err := svc.SyncTeams(ctx, flagLeague, season)
		if err != nil {
			return err
		}
		results = append(results, result)
	case "matches":
		now := time.Now().UTC()
		result, err := svc.SyncMatches(ctx, flagLeague, season, now.AddDate(0, 0, -1), now.AddDate(0, 0, flagDays))
		if err != nil {
			return err
		}
		results = append(results, result)
	case "standings":
		result, err := svc.SyncStandings(ctx, flagLeague, season)
		if err != nil {
			return err
		}
		results = append(results, result)
	case "match-details":
		if flagMatch == "" {
			return fmt.Errorf("--match is required for match-details")
		}
		result, err := svc.SyncMatchDetails(ctx, flagMatch)
		if err != nil {
			return err
		}
		results = append(results, result)
	case "full":
		results, err = svc.InitialLoad(ctx, flagLeague, season)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown sync type %q", flagType)
	}

	failed := false
	for _, result := range results {
		fmt.Println(result)
		for _, msg := range result.ErrorMessages {
			fmt.Fprintln(os.Stderr, "  error:", msg)
		}
		if !result.Success() {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("sync completed with errors")
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, source, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := source.TestConnection(ctx); err != nil {
		fmt.Printf("connectivity: FAILED (%v)\n", err)
	} else {
		fmt.Println("connectivity: ok")
	}

	status, err := svc.GetSyncStatus(ctx, flagLogType, flagLimit)
	if err != nil {
		return err
	}

	fmt.Printf("source: %s\n", status.Source)
	fmt.Printf("quota:  %d/%d used in current window (%.0f%%, %d remaining)\n",
		status.Quota.Used, status.Quota.Limit, status.Quota.Percent, status.Quota.Remaining)

	if len(status.RecentLogs) == 0 {
		fmt.Println("no sync batches recorded")
		return nil
	}

	fmt.Println("recent sync batches:")
	for _, entry := range status.RecentLogs {
		fmt.Printf("  %s  %-16s %-10s total=%d ok=%d failed=%d\n",
			entry.SyncedAt.Format(time.RFC3339), entry.DataType, entry.SyncStatus,
			entry.TotalRecords, entry.SuccessfulRecords, entry.FailedRecords)
	}
	return nil
}
