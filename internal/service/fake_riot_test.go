package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"garen-bot/internal/catalog"
	"garen-bot/internal/config"
	"garen-bot/internal/domain"
	"garen-bot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRiot struct {
	mu sync.Mutex

	accounts   map[string]domain.Account
	summoners  map[string]domain.Summoner
	entries    map[string][]domain.LeagueEntry
	entryErr   map[string]error
	masteries  map[string][]domain.ChampionMastery
	games      map[string]domain.ActiveGame
	rotation   *domain.ChampionRotation
	matchIDs   map[string][]string
	matches    map[string]domain.MatchSummary
	leagueHits int
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		accounts:  map[string]domain.Account{},
		summoners: map[string]domain.Summoner{},
		entries:   map[string][]domain.LeagueEntry{},
		entryErr:  map[string]error{},
		masteries: map[string][]domain.ChampionMastery{},
		games:     map[string]domain.ActiveGame{},
		matchIDs:  map[string][]string{},
		matches:   map[string]domain.MatchSummary{},
	}
}

// addPlayer registers an account, its summoner and optionally a solo entry.
func (f *fakeRiot) addPlayer(riotID, puuid string, solo *domain.LeagueEntry) {
	name, tag, _ := strings.Cut(riotID, "#")
	f.accounts[strings.ToLower(riotID)] = domain.Account{Puuid: puuid, GameName: name, TagLine: tag}
	f.summoners[puuid] = domain.Summoner{Puuid: puuid, SummonerLevel: 100, ProfileIconID: 29}
	if solo != nil {
		e := *solo
		e.QueueType = domain.QueueRankedSolo
		f.entries[puuid] = []domain.LeagueEntry{
			{QueueType: "RANKED_FLEX_SR", Tier: domain.TierIron, Division: domain.DivisionIV},
			e,
		}
	}
}

func (f *fakeRiot) GetAccountByRiotID(_ context.Context, gameName, tagLine string) (*domain.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[strings.ToLower(gameName+"#"+tagLine)]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (f *fakeRiot) GetSummonerByPUUID(_ context.Context, puuid string) (*domain.Summoner, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.summoners[puuid]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (f *fakeRiot) GetLeagueEntries(_ context.Context, puuid string) ([]domain.LeagueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leagueHits++
	if err := f.entryErr[puuid]; err != nil {
		return nil, err
	}
	return append([]domain.LeagueEntry(nil), f.entries[puuid]...), nil
}

func (f *fakeRiot) GetTopMasteries(_ context.Context, puuid string, count int) ([]domain.ChampionMastery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.masteries[puuid]
	if len(m) > count {
		m = m[:count]
	}
	return m, nil
}

func (f *fakeRiot) GetActiveGame(_ context.Context, puuid string) (*domain.ActiveGame, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[puuid]
	if !ok {
		return nil, false, nil
	}
	return &g, true, nil
}

func (f *fakeRiot) GetChampionRotation(context.Context) (*domain.ChampionRotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rotation == nil {
		return nil, domain.ErrNotFound
	}
	r := *f.rotation
	return &r, nil
}

func (f *fakeRiot) GetMatchIDs(_ context.Context, puuid string, count int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.matchIDs[puuid]
	if len(ids) > count {
		ids = ids[:count]
	}
	return ids, nil
}

func (f *fakeRiot) GetMatch(_ context.Context, matchID string) (*domain.MatchSummary, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, false, nil
	}
	return &m, true, nil
}

type staticChampions []domain.Champion

func (s staticChampions) GetChampions(context.Context) ([]domain.Champion, error) {
	return s, nil
}

// newCatalog returns a catalog already loaded, the way the start-up hook
// leaves it.
func newCatalog(t *testing.T) *catalog.Champions {
	t.Helper()

	c := catalog.New(staticChampions{
		{ID: 266, Key: "Aatrox", Name: "Aatrox"},
		{ID: 103, Key: "Ahri", Name: "Ahri"},
		{ID: 62, Key: "MonkeyKing", Name: "Wukong"},
	}, "https://ddragon.test/cdn", "15.24.1", zerolog.Nop())
	require.NoError(t, c.EnsureLoaded(context.Background()))
	return c
}

type fixture struct {
	riot        *fakeRiot
	champions   *catalog.Champions
	players     *repository.LeaderboardRepository
	history     *repository.LPHistoryRepository
	leaderboard *LeaderboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := repository.NewGuildFiles(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		riot:      newFakeRiot(),
		champions: newCatalog(t),
		players:   repository.NewLeaderboardRepository(files, zerolog.Nop()),
		history:   repository.NewLPHistoryRepository(files, zerolog.Nop()),
	}
	cfg := &config.Config{FetchConcurrency: 3}
	f.leaderboard = NewLeaderboardService(cfg, f.riot, f.players, f.history, f.champions, zerolog.Nop())
	f.leaderboard.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func rank(tier domain.Tier, div domain.Division, lp int) *domain.LeagueEntry {
	return &domain.LeagueEntry{Tier: tier, Division: div, LeaguePoints: lp, Wins: 30, Losses: 20}
}
