package defense

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ourTeam   = 100
	otherTeam = 200
	thirdTeam = 300
)

type fakeOverall struct {
	pct float64
	ok  bool
	err error
}

func (f fakeOverall) GetOpponentThreePointPct(context.Context, int, string) (float64, bool, error) {
	return f.pct, f.ok, f.err
}

type fakeGames struct {
	mu       sync.Mutex
	log      []domain.TeamGame
	logErr   error
	boxes    map[string]*domain.BoxScore
	boxErrs  map[string]error
	logCalls atomic.Int32
	fetched  []string
}

func (f *fakeGames) GetTeamGameLog(context.Context, int, string) ([]domain.TeamGame, error) {
	f.logCalls.Add(1)
	return f.log, f.logErr
}

func (f *fakeGames) GetBoxScore(_ context.Context, gameID string) (*domain.BoxScore, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, gameID)
	f.mu.Unlock()
	if err := f.boxErrs[gameID]; err != nil {
		return nil, err
	}
	return f.boxes[gameID], nil
}

type fakePositions struct {
	labels map[int]string
	calls  atomic.Int32
}

func (f *fakePositions) GetPlayerPosition(_ context.Context, playerID int) (string, error) {
	f.calls.Add(1)
	label, ok := f.labels[playerID]
	if !ok {
		return "", errors.New("player not found")
	}
	return label, nil
}

type mapStore struct {
	mu        sync.Mutex
	profiles  map[ProfileKey]domain.DefenseProfile
	positions map[int]domain.PositionGroup
}

func newMapStore() *mapStore {
	return &mapStore{profiles: map[ProfileKey]domain.DefenseProfile{}, positions: map[int]domain.PositionGroup{}}
}

func (s *mapStore) GetProfile(_ context.Context, key ProfileKey) (domain.DefenseProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[key]
	return p, ok, nil
}

func (s *mapStore) PutProfile(_ context.Context, key ProfileKey, p domain.DefenseProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[key] = p
	return nil
}

func (s *mapStore) DeleteProfile(_ context.Context, key ProfileKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, key)
	return nil
}

func (s *mapStore) GetPosition(_ context.Context, id int) (domain.PositionGroup, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.positions[id]
	return g, ok, nil
}

func (s *mapStore) PutPosition(_ context.Context, id int, g domain.PositionGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[id] = g
	return nil
}

func TestEstimateFromOverallAtBaseline(t *testing.T) {
	p := EstimateFromOverall(domain.LeagueBaseline)
	assert.InDelta(t, 0.365, p.Guard, 1e-12)
	assert.InDelta(t, 0.360, p.Forward, 1e-12)
	assert.InDelta(t, 0.340, p.Center, 1e-12)
	assert.InDelta(t, 0.365, p.Overall, 1e-12)
	assert.Equal(t, domain.SourceEstimated, p.Source)
}

func TestEstimateFromOverallMonotonic(t *testing.T) {
	prev := EstimateFromOverall(0.30)
	for pct := 0.31; pct <= 0.42; pct += 0.01 {
		next := EstimateFromOverall(pct)
		assert.Greater(t, next.Guard, prev.Guard)
		assert.Greater(t, next.Forward, prev.Forward)
		assert.Greater(t, next.Center, prev.Center)
		assert.Greater(t, next.Overall, prev.Overall)
		prev = next
	}
}

func TestEstimateFromOverallDampensCenters(t *testing.T) {
	p := EstimateFromOverall(0.385)
	assert.InDelta(t, 0.385, p.Guard, 1e-12)
	assert.InDelta(t, 0.379, p.Forward, 1e-12)
	assert.InDelta(t, 0.357, p.Center, 1e-12)
}

func TestClosedFormEstimate(t *testing.T) {
	ctx := context.Background()
	team := domain.Team{ID: otherTeam, Abbreviation: "LAL"}

	p, err := NewClosedForm(fakeOverall{pct: 0.38, ok: true}, "2025-26", zerolog.Nop()).Estimate(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceEstimated, p.Source)
	assert.InDelta(t, 0.38, p.Guard, 1e-12)

	p, err = NewClosedForm(fakeOverall{err: errors.New("timeout")}, "2025-26", zerolog.Nop()).Estimate(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceBaseline, p.Source)
	assert.InDelta(t, 0.365, p.Overall, 1e-12)
	assert.InDelta(t, 0.340, p.Center, 1e-12)

	p, err = NewClosedForm(fakeOverall{ok: false}, "2025-26", zerolog.Nop()).Estimate(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceBaseline, p.Source)
}

func TestClosedFormHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClosedForm(fakeOverall{err: context.Canceled}, "2025-26", zerolog.Nop()).Estimate(ctx, domain.Team{ID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func line(player, team, made, attempted int) domain.BoxScoreLine {
	return domain.BoxScoreLine{PlayerID: player, TeamID: team, Made: made, Attempted: attempted}
}

func TestAggregateBoxScoresGuardSplit(t *testing.T) {
	boxes := []*domain.BoxScore{
		{GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{
			line(1, otherTeam, 2, 4),
			line(50, ourTeam, 5, 9),
		}},
		{GameID: "g2", TeamIDs: []int{thirdTeam, ourTeam}, Lines: []domain.BoxScoreLine{
			line(2, thirdTeam, 1, 3),
			line(51, ourTeam, 0, 2),
		}},
	}

	p, used := AggregateBoxScores(ourTeam, boxes, func(int) domain.PositionGroup { return domain.Guard })
	assert.Equal(t, 2, used)
	assert.InDelta(t, 3.0/7.0, p.Guard, 1e-9)
	assert.InDelta(t, 0.4286, p.Guard, 1e-4)
	assert.InDelta(t, domain.LeagueBaseline, p.Forward, 1e-12)
	assert.InDelta(t, domain.LeagueBaseline, p.Center, 1e-12)
	assert.InDelta(t, 3.0/7.0, p.Overall, 1e-9)
	assert.Equal(t, domain.SourceAggregated, p.Source)
	assert.Equal(t, 2, p.GamesUsed)
}

func TestAggregateBoxScoresGroupsAndSkips(t *testing.T) {
	groups := map[int]domain.PositionGroup{1: domain.Guard, 2: domain.Forward, 3: domain.Center, 4: domain.Center}
	boxes := []*domain.BoxScore{
		{GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{
			line(1, otherTeam, 3, 8),
			line(2, otherTeam, 2, 5),
			line(3, otherTeam, 1, 2),
			line(4, otherTeam, 0, 0),
		}},
		{GameID: "unplayed", TeamIDs: []int{ourTeam, otherTeam}},
		{GameID: "no-opponent", TeamIDs: []int{ourTeam}, Lines: []domain.BoxScoreLine{line(9, ourTeam, 1, 1)}},
	}

	p, used := AggregateBoxScores(ourTeam, boxes, func(id int) domain.PositionGroup { return groups[id] })
	assert.Equal(t, 1, used)
	assert.InDelta(t, 3.0/8.0, p.Guard, 1e-9)
	assert.InDelta(t, 2.0/5.0, p.Forward, 1e-9)
	assert.InDelta(t, 1.0/2.0, p.Center, 1e-9)
	assert.InDelta(t, 6.0/15.0, p.Overall, 1e-9)
}

func TestAggregateBoxScoresNothingUsable(t *testing.T) {
	p, used := AggregateBoxScores(ourTeam, nil, func(int) domain.PositionGroup { return domain.Guard })
	assert.Zero(t, used)
	assert.Equal(t, domain.BaselineProfile(), p)
}

func newAggregator(games *fakeGames, positions *fakePositions, store *mapStore) *Aggregator {
	resolver := NewPositionResolver(positions, store, zerolog.Nop())
	return NewAggregator(games, resolver, store, "2025-26", zerolog.Nop())
}

func TestAggregatorEstimate(t *testing.T) {
	games := &fakeGames{
		log: []domain.TeamGame{
			{GameID: "future", Outcome: ""},
			{GameID: "g1", Outcome: "W"},
			{GameID: "broken", Outcome: "L"},
			{GameID: "g2", Outcome: "L"},
		},
		boxes: map[string]*domain.BoxScore{
			"g1": {GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{
				line(1, otherTeam, 2, 4), line(3, otherTeam, 1, 1),
			}},
			"g2": {GameID: "g2", TeamIDs: []int{thirdTeam, ourTeam}, Lines: []domain.BoxScoreLine{
				line(2, thirdTeam, 1, 3), line(4, thirdTeam, 0, 2),
			}},
		},
		boxErrs: map[string]error{"broken": errors.New("502")},
	}
	positions := &fakePositions{labels: map[int]string{1: "Guard", 2: "G", 3: "Center", 4: "Forward"}}
	store := newMapStore()
	agg := newAggregator(games, positions, store)

	team := domain.Team{ID: ourTeam}
	p, err := agg.Estimate(context.Background(), team)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceAggregated, p.Source)
	assert.Equal(t, 2, p.GamesUsed)
	assert.InDelta(t, 3.0/7.0, p.Guard, 1e-9)
	assert.InDelta(t, 0.0, p.Forward, 1e-9)
	assert.InDelta(t, 1.0, p.Center, 1e-9)
	assert.InDelta(t, 4.0/10.0, p.Overall, 1e-9)
	assert.NotContains(t, games.fetched, "future")

	// second call is served from the store
	again, err := agg.Estimate(context.Background(), team)
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.EqualValues(t, 1, games.logCalls.Load())
	assert.EqualValues(t, 4, positions.calls.Load())

	require.NoError(t, agg.Invalidate(context.Background(), ourTeam))
	_, err = agg.Estimate(context.Background(), team)
	require.NoError(t, err)
	assert.EqualValues(t, 2, games.logCalls.Load())
	assert.EqualValues(t, 4, positions.calls.Load(), "positions stay cached across profile invalidation")
}

func TestAggregatorStopsAfterTenUsableGames(t *testing.T) {
	games := &fakeGames{boxes: map[string]*domain.BoxScore{}}
	for i := 0; i < 14; i++ {
		id := string(rune('a' + i))
		games.log = append(games.log, domain.TeamGame{GameID: id, Outcome: "W"})
		games.boxes[id] = &domain.BoxScore{GameID: id, TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{line(1, otherTeam, 1, 2)}}
	}
	// an unplayed box score does not count toward the ten
	games.boxes["b"] = &domain.BoxScore{GameID: "b", TeamIDs: []int{ourTeam, otherTeam}}

	agg := newAggregator(games, &fakePositions{labels: map[int]string{1: "PG"}}, newMapStore())
	p, err := agg.Estimate(context.Background(), domain.Team{ID: ourTeam})
	require.NoError(t, err)
	assert.Equal(t, 10, p.GamesUsed)
	assert.Len(t, games.fetched, 11)
	assert.InDelta(t, 0.5, p.Guard, 1e-9)
}

func TestAggregatorFallsBackWithoutCaching(t *testing.T) {
	tests := []struct {
		name  string
		games *fakeGames
	}{
		{"game log error", &fakeGames{logErr: errors.New("boom")}},
		{"no completed games", &fakeGames{log: []domain.TeamGame{{GameID: "x"}}}},
		{"every box score fails", &fakeGames{
			log:     []domain.TeamGame{{GameID: "x", Outcome: "W"}},
			boxErrs: map[string]error{"x": errors.New("boom")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore()
			agg := newAggregator(tt.games, &fakePositions{}, store)
			p, err := agg.Estimate(context.Background(), domain.Team{ID: ourTeam})
			require.NoError(t, err)
			assert.Equal(t, domain.BaselineProfile(), p)
			assert.Empty(t, store.profiles)
		})
	}
}

func TestPositionResolverDefaultsToGuard(t *testing.T) {
	store := newMapStore()
	positions := &fakePositions{labels: map[int]string{}}
	r := NewPositionResolver(positions, store, zerolog.Nop())

	assert.Equal(t, domain.Guard, r.Group(context.Background(), 42))
	assert.Equal(t, domain.Guard, r.Group(context.Background(), 42))
	assert.EqualValues(t, 2, positions.calls.Load(), "failed lookups are retried")
	assert.Empty(t, store.positions)
}

func TestAggregatorConcurrentCallersShareResult(t *testing.T) {
	games := &fakeGames{
		log: []domain.TeamGame{{GameID: "g1", Outcome: "W"}},
		boxes: map[string]*domain.BoxScore{
			"g1": {GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{line(1, otherTeam, 2, 5)}},
		},
	}
	agg := newAggregator(games, &fakePositions{labels: map[int]string{1: "G"}}, newMapStore())

	var wg sync.WaitGroup
	results := make([]domain.DefenseProfile, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := agg.Estimate(context.Background(), domain.Team{ID: ourTeam})
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		assert.InDelta(t, 0.4, p.Guard, 1e-9)
	}
	assert.LessOrEqual(t, games.logCalls.Load(), int32(len(results)))
}

// cancellingPositions cancels the aggregation context on its first lookup.
type cancellingPositions struct {
	cancel context.CancelFunc
	labels map[int]string
	once   sync.Once
}

func (c *cancellingPositions) GetPlayerPosition(ctx context.Context, playerID int) (string, error) {
	c.once.Do(c.cancel)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.labels[playerID], nil
}

func TestAggregatorDoesNotCacheCancelledAggregation(t *testing.T) {
	games := &fakeGames{
		log: []domain.TeamGame{{GameID: "g1", Outcome: "W"}},
		boxes: map[string]*domain.BoxScore{
			"g1": {GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{
				line(1, otherTeam, 0, 10), line(2, otherTeam, 5, 5),
			}},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	positions := &cancellingPositions{cancel: cancel, labels: map[int]string{1: "C", 2: "G"}}
	store := newMapStore()
	agg := NewAggregator(games, NewPositionResolver(positions, store, zerolog.Nop()), store, "2025-26", zerolog.Nop())

	_, err := agg.compute(ctx, ProfileKey{TeamID: ourTeam, Season: "2025-26"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.profiles)
	assert.Empty(t, store.positions)
}

// gatedGames holds the game log request until released.
type gatedGames struct {
	*fakeGames
	started chan struct{}
	release chan struct{}
	once    sync.Once
	ctxErr  error
}

func (g *gatedGames) GetTeamGameLog(ctx context.Context, teamID int, season string) ([]domain.TeamGame, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	g.ctxErr = ctx.Err()
	return g.fakeGames.GetTeamGameLog(ctx, teamID, season)
}

func TestAggregatorJoinedCallerSurvivesFirstCallerCancel(t *testing.T) {
	games := &gatedGames{
		fakeGames: &fakeGames{
			log: []domain.TeamGame{{GameID: "g1", Outcome: "W"}},
			boxes: map[string]*domain.BoxScore{
				"g1": {GameID: "g1", TeamIDs: []int{ourTeam, otherTeam}, Lines: []domain.BoxScoreLine{line(1, otherTeam, 2, 5)}},
			},
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := newMapStore()
	agg := NewAggregator(games, NewPositionResolver(&fakePositions{labels: map[int]string{1: "G"}}, store, zerolog.Nop()), store, "2025-26", zerolog.Nop())
	team := domain.Team{ID: ourTeam}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := agg.Estimate(firstCtx, team)
		firstErr <- err
	}()
	<-games.started

	type result struct {
		p   domain.DefenseProfile
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := agg.Estimate(context.Background(), team)
		second <- result{p, err}
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(games.release)
	res := <-second
	require.NoError(t, res.err)
	assert.InDelta(t, 0.4, res.p.Guard, 1e-9)
	assert.Equal(t, domain.SourceAggregated, res.p.Source)

	assert.NoError(t, games.ctxErr, "the shared aggregation ignores the first caller's cancel")
	assert.EqualValues(t, 1, games.logCalls.Load())
	assert.Contains(t, store.profiles, ProfileKey{TeamID: ourTeam, Season: "2025-26"})
}
