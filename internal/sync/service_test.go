package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footysync/ingestion/internal/client"
	"footysync/ingestion/internal/models"
	"footysync/ingestion/internal/normalize"
)

// fakeSource serves canned raw records
type fakeSource struct {
	leagues   []normalize.RawLeague
	teams     []normalize.RawTeam
	matches   []normalize.RawMatch
	standings []normalize.RawStanding
	details   *normalize.RawMatchStats
	fetchErr  error
}

func (f *fakeSource) Source() string    { return normalize.SourceAPIFootball }
func (f *fakeSource) Leagues() []string { return []string{"premier-league"} }

func (f *fakeSource) LeagueExternalID(league string) (string, error) {
	if league != "premier-league" {
		return "", fmt.Errorf("no mapping for league %q", league)
	}
	return "39", nil
}

func (f *fakeSource) FetchLeagues(ctx context.Context) ([]normalize.RawLeague, error) {
	return f.leagues, f.fetchErr
}

func (f *fakeSource) FetchTeams(ctx context.Context, league string, season int) ([]normalize.RawTeam, error) {
	return f.teams, f.fetchErr
}

func (f *fakeSource) FetchMatches(ctx context.Context, league string, season int, from, to time.Time) ([]normalize.RawMatch, error) {
	return f.matches, f.fetchErr
}

func (f *fakeSource) FetchStandings(ctx context.Context, league string, season int) ([]normalize.RawStanding, error) {
	return f.standings, f.fetchErr
}

func (f *fakeSource) FetchMatchDetails(ctx context.Context, matchExternalID string) (*normalize.RawMatchStats, error) {
	return f.details, f.fetchErr
}

func (f *fakeSource) FetchFixture(ctx context.Context, matchExternalID string) (*normalize.RawMatch, error) {
	for i := range f.matches {
		if f.matches[i].ExternalID == matchExternalID {
			return &f.matches[i], nil
		}
	}
	return nil, f.fetchErr
}

func (f *fakeSource) FetchTeamStatistics(ctx context.Context, teamExternalID, league string, season int) (*normalize.RawStanding, error) {
	return nil, f.fetchErr
}

func (f *fakeSource) TestConnection(ctx context.Context) error { return nil }

func (f *fakeSource) Usage(ctx context.Context) (client.Usage, error) {
	return client.Usage{Used: 0, Limit: 100, Remaining: 100}, nil
}

type settleCall struct {
	matchID, home, away int
}

// fakeStore keeps rows in maps keyed by external id
type fakeStore struct {
	leagues map[string]*models.League
	teams   map[string]*models.Team
	matches map[string]*models.Match
	stats   map[string]*models.TeamStatistics
	logs    []models.SyncLog
	settled []settleCall
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leagues: make(map[string]*models.League),
		teams:   make(map[string]*models.Team),
		matches: make(map[string]*models.Match),
		stats:   make(map[string]*models.TeamStatistics),
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) FindLeagueByExternalID(_ context.Context, externalID, _ string) (*models.League, error) {
	if l, ok := s.leagues[externalID]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateLeague(_ context.Context, league *models.League) error {
	league.ID = s.id()
	copied := *league
	s.leagues[league.ExternalID] = &copied
	return nil
}

func (s *fakeStore) UpdateLeague(_ context.Context, league *models.League) error {
	copied := *league
	s.leagues[league.ExternalID] = &copied
	return nil
}

func (s *fakeStore) ListActiveLeagues(_ context.Context) ([]models.League, error) {
	var out []models.League
	for _, l := range s.leagues {
		if l.IsActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeStore) FindTeamByExternalID(_ context.Context, externalID, _ string) (*models.Team, error) {
	if t, ok := s.teams[externalID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateTeam(_ context.Context, team *models.Team) error {
	team.ID = s.id()
	copied := *team
	s.teams[team.ExternalID] = &copied
	return nil
}

func (s *fakeStore) UpdateTeam(_ context.Context, team *models.Team) error {
	copied := *team
	s.teams[team.ExternalID] = &copied
	return nil
}

func (s *fakeStore) FindMatchByExternalID(_ context.Context, externalID, _ string) (*models.Match, error) {
	if m, ok := s.matches[externalID]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateMatch(_ context.Context, match *models.Match) error {
	match.ID = s.id()
	copied := *match
	s.matches[match.ExternalID] = &copied
	return nil
}

func (s *fakeStore) UpdateMatch(_ context.Context, match *models.Match) error {
	copied := *match
	s.matches[match.ExternalID] = &copied
	return nil
}

func (s *fakeStore) GetTeamStats(_ context.Context, teamID int, season string) (*models.TeamStatistics, error) {
	if st, ok := s.stats[fmt.Sprintf("%d:%s", teamID, season)]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) UpsertTeamStats(_ context.Context, stats *models.TeamStatistics) error {
	key := fmt.Sprintf("%d:%s", stats.TeamID, stats.Season)
	copied := *stats
	s.stats[key] = &copied
	return nil
}

func (s *fakeStore) AppendSyncLog(_ context.Context, entry *models.SyncLog) error {
	entry.ID = s.id()
	entry.SyncedAt = time.Now()
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *fakeStore) ListSyncLogs(_ context.Context, _ string, _ int) ([]models.SyncLog, error) {
	return s.logs, nil
}

func (s *fakeStore) SettlePredictions(_ context.Context, matchID, homeScore, awayScore int) (int64, error) {
	s.settled = append(s.settled, settleCall{matchID: matchID, home: homeScore, away: awayScore})
	return 1, nil
}

func rawPremierLeague() normalize.RawLeague {
	return normalize.RawLeague{ExternalID: "39", Name: "Premier League", Country: "England", Season: "2025"}
}

func rawTeams() []normalize.RawTeam {
	return []normalize.RawTeam{
		{ExternalID: "42", Name: "Arsenal"},
		{ExternalID: "50", Name: "Manchester City"},
	}
}

// seed loads the league and teams so match and standings batches can attach
func seed(t *testing.T, svc *Service, ctx context.Context) {
	t.Helper()
	_, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)
	_, err = svc.SyncTeams(ctx, "premier-league", 2025)
	require.NoError(t, err)
}

func TestSyncLeagues_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{rawPremierLeague()}}
	svc := NewService(store, source)

	first, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.True(t, first.Success())

	second, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created, "Second run should not duplicate rows")
	assert.Equal(t, 1, second.Updated)
}

func TestSyncLeagues_BadRecordIsCountedNotFatal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{
		rawPremierLeague(),
		{ExternalID: "", Name: "Ghost League"},
	}}
	svc := NewService(store, source)

	result, err := svc.SyncLeagues(ctx)
	require.NoError(t, err, "A bad record should not fail the batch")
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Errors)
	assert.False(t, result.Success())
	require.Len(t, result.ErrorMessages, 1)
	assert.Contains(t, result.ErrorMessages[0], "external_id")
}

func TestSyncTeams_RequiresLeague(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{teams: rawTeams()}
	svc := NewService(store, source)

	_, err := svc.SyncTeams(ctx, "premier-league", 2025)
	require.Error(t, err, "Teams cannot sync before their league")
	assert.Contains(t, err.Error(), "sync leagues first")
}

func TestSyncTeams_AttachesLeague(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
	}
	svc := NewService(store, source)

	_, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)

	result, err := svc.SyncTeams(ctx, "premier-league", 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	team := store.teams["42"]
	require.NotNil(t, team)
	require.True(t, team.LeagueID.Valid)
	assert.Equal(t, store.leagues["39"].ID, int(team.LeagueID.Int32))
}

func TestSyncMatches_SkipsUnknownTeams(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{
			{
				ExternalID:         "1001",
				HomeTeamExternalID: "42",
				AwayTeamExternalID: "50",
				MatchDate:          "2025-09-01T15:00:00Z",
				StatusCode:         "NS",
			},
			{
				// Away side was never synced
				ExternalID:         "1002",
				HomeTeamExternalID: "42",
				AwayTeamExternalID: "999",
				MatchDate:          "2025-09-02T15:00:00Z",
				StatusCode:         "NS",
			},
		},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.SyncMatches(ctx, "premier-league", 2025, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped, "Unknown sibling team should skip, not error")
	assert.Equal(t, 0, result.Errors)
	assert.True(t, result.Success(), "Skips alone should not fail the batch")
}

func TestSyncMatches_ErrorMessagesNameTheRecord(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{
			{
				ExternalID:         "1003",
				HomeTeamExternalID: "42",
				AwayTeamExternalID: "42",
				MatchDate:          "2025-09-01T15:00:00Z",
				StatusCode:         "NS",
			},
		},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.SyncMatches(ctx, "premier-league", 2025, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorMessages, 1)
	assert.Contains(t, result.ErrorMessages[0], "1003")
}

func TestSyncMatches_SettlesPredictionsOnFinish(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	scheduled := normalize.RawMatch{
		ExternalID:         "1001",
		HomeTeamExternalID: "42",
		AwayTeamExternalID: "50",
		MatchDate:          "2025-09-01T15:00:00Z",
		StatusCode:         "NS",
	}
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{scheduled},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	_, err := svc.SyncMatches(ctx, "premier-league", 2025, from, to)
	require.NoError(t, err)
	assert.Empty(t, store.settled, "Scheduled match should not settle anything")

	// The match finishes 2-1
	finished := scheduled
	finished.StatusCode = "FT"
	finished.HomeScore = float64(2)
	finished.AwayScore = float64(1)
	source.matches = []normalize.RawMatch{finished}

	_, err = svc.SyncMatches(ctx, "premier-league", 2025, from, to)
	require.NoError(t, err)
	require.Len(t, store.settled, 1, "Transition to finished should settle once")
	assert.Equal(t, 2, store.settled[0].home)
	assert.Equal(t, 1, store.settled[0].away)

	// Re-syncing the finished match must not settle again
	_, err = svc.SyncMatches(ctx, "premier-league", 2025, from, to)
	require.NoError(t, err)
	assert.Len(t, store.settled, 1, "Already finished match should not re-settle")
}

func TestSyncMatchDetails_AppliesExpectedGoals(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{{
			ExternalID:         "1001",
			HomeTeamExternalID: "42",
			AwayTeamExternalID: "50",
			MatchDate:          "2025-09-01T15:00:00Z",
			StatusCode:         "FT",
			HomeScore:          float64(2),
			AwayScore:          float64(1),
		}},
		details: &normalize.RawMatchStats{
			MatchExternalID: "1001",
			Home:            map[string]any{"expected_goals": "1.92"},
			Away:            map[string]any{"expected_goals": "0.85"},
		},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.SyncMatches(ctx, "premier-league", 2025, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	result, err := svc.SyncMatchDetails(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "match_details", result.DataType)

	match := store.matches["1001"]
	require.NotNil(t, match)
	assert.InDelta(t, 1.92, match.HomeXG.Float64, 0.001)
	assert.InDelta(t, 0.85, match.AwayXG.Float64, 0.001)
}

func TestSyncMatchDetails_SkipsWhenProviderHasNone(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{{
			ExternalID:         "1001",
			HomeTeamExternalID: "42",
			AwayTeamExternalID: "50",
			MatchDate:          "2025-09-01T15:00:00Z",
			StatusCode:         "FT",
		}},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.SyncMatches(ctx, "premier-league", 2025, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	result, err := svc.SyncMatchDetails(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped, "No provider statistics is a skip, not an error")
	assert.True(t, result.Success())
}

func TestSyncMatchDetails_RequiresStoredMatch(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeStore(), &fakeSource{})

	_, err := svc.SyncMatchDetails(ctx, "9999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync matches first")
}

func TestSyncStandings_UpsertsTeamStatistics(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		standings: []normalize.RawStanding{
			{TeamExternalID: "42", Points: 25, Played: 10, Wins: 8, Draws: 1, Losses: 1, GoalsFor: 22, GoalsAgainst: 8, Form: "WWDLW"},
			{TeamExternalID: "999", Points: 10}, // never synced
		},
	}
	svc := NewService(store, source)
	seed(t, svc, ctx)

	result, err := svc.SyncStandings(ctx, "premier-league", 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created, "First sync of a team's season row is a create")
	assert.Equal(t, 1, result.Skipped)

	key := fmt.Sprintf("%d:2025", store.teams["42"].ID)
	stats := store.stats[key]
	require.NotNil(t, stats)
	assert.Equal(t, 25, stats.Points)
	assert.Equal(t, 10, stats.MatchesPlayed)
	assert.Equal(t, "WWDLW", stats.Form.String)
	assert.Equal(t, "2025", stats.Season)

	second, err := svc.SyncStandings(ctx, "premier-league", 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated, "Re-syncing an existing season row is an update")
}

func TestSync_EmptyInputIsSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{}
	svc := NewService(store, source)

	result, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 0, result.Processed())
}

func TestSync_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{rawPremierLeague()}}
	svc := NewService(store, source, WithDryRun(true))

	result, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created, "Dry run still counts the work")
	assert.Empty(t, store.leagues, "Dry run must not write rows")
	assert.Empty(t, store.logs, "Dry run must not write audit rows")
}

func TestSync_AppendsAuditLog(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{
		rawPremierLeague(),
		{ExternalID: "", Name: "Ghost League"},
	}}
	svc := NewService(store, source)

	_, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "leagues", entry.DataType)
	assert.Equal(t, normalize.SourceAPIFootball, entry.DataSource)
	assert.Equal(t, 2, entry.TotalRecords)
	assert.Equal(t, 1, entry.SuccessfulRecords)
	assert.Equal(t, 1, entry.FailedRecords)
	assert.Equal(t, models.SyncStatusCompletedWithErrors, entry.SyncStatus)
}

func TestInitialLoad_RunsAllStages(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams:   rawTeams(),
		matches: []normalize.RawMatch{
			{
				ExternalID:         "1001",
				HomeTeamExternalID: "42",
				AwayTeamExternalID: "50",
				MatchDate:          "2025-09-01T15:00:00Z",
				StatusCode:         "NS",
			},
		},
		standings: []normalize.RawStanding{
			{TeamExternalID: "42", Points: 3, Played: 1},
		},
	}
	svc := NewService(store, source)

	results, err := svc.InitialLoad(ctx, "premier-league", 2025)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "leagues", results[0].DataType)
	assert.Equal(t, "teams", results[1].DataType)
	assert.Equal(t, "matches", results[2].DataType)
	assert.Equal(t, "team_statistics", results[3].DataType)

	assert.Len(t, store.leagues, 1)
	assert.Len(t, store.teams, 2)
	assert.Len(t, store.matches, 1)
	assert.Len(t, store.stats, 1)
}

func TestDailySyncAll_OnlyActiveStoredLeagues(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{rawPremierLeague()}}
	svc := NewService(store, source)

	// Nothing stored yet: the daily run has nothing to do
	results, err := svc.DailySyncAll(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, results, "Unstored leagues should not be daily-synced")

	_, err = svc.SyncLeagues(ctx)
	require.NoError(t, err)

	results, err = svc.DailySyncAll(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, results, 2, "Stored active league runs matches and standings")

	// Deactivating the league drops it from the daily run
	store.leagues["39"].IsActive = false
	results, err = svc.DailySyncAll(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetSyncStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{leagues: []normalize.RawLeague{rawPremierLeague()}}
	svc := NewService(store, source)

	_, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)

	status, err := svc.GetSyncStatus(ctx, "", 10)
	require.NoError(t, err)
	assert.Equal(t, normalize.SourceAPIFootball, status.Source)
	assert.Equal(t, 100, status.Quota.Limit)
	assert.Len(t, status.RecentLogs, 1)
}

func TestFullSync_ContinuesPastTeamRecordErrors(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeSource{
		leagues: []normalize.RawLeague{rawPremierLeague()},
		teams: []normalize.RawTeam{
			{Name: "No External ID"},
			{ExternalID: "50", Name: "Manchester City"},
		},
	}
	svc := NewService(store, source)
	_, err := svc.SyncLeagues(ctx)
	require.NoError(t, err)

	results, err := svc.FullSync(ctx, "premier-league", 2025)
	require.NoError(t, err, "record-level team errors should not abort the match batch")
	require.Len(t, results, 2)

	assert.Equal(t, "teams", results[0].DataType)
	assert.Equal(t, 1, results[0].Errors)
	assert.Equal(t, "matches", results[1].DataType)
	assert.True(t, results[1].Success())
}
