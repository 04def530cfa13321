package api

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

// routeDoer answers by request path; unknown paths are 404.
type routeDoer struct {
	mu     sync.Mutex
	routes map[string]string
	seen   []string
}

func (d *routeDoer) DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := string(req.URI().Host()) + string(req.URI().PathOriginal())
	if q := string(req.URI().QueryString()); q != "" {
		key += "?" + q
	}
	d.seen = append(d.seen, key)

	body, ok := d.routes[key]
	if !ok {
		resp.SetStatusCode(fasthttp.StatusNotFound)
		return nil
	}
	resp.SetStatusCode(fasthttp.StatusOK)
	resp.SetBodyString(body)
	return nil
}

func newRiot(routes map[string]string) (*RiotClient, *routeDoer) {
	doer := &routeDoer{routes: routes}
	cfg := &config.Config{
		Region:         "euw1",
		Routing:        "europe",
		DDragonBaseURL: "https://ddragon.test/cdn",
		DDragonVersion: "15.24.1",
	}
	client := NewClient("key", nil, time.Second, 3, zerolog.Nop(),
		WithDoer(doer), WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
	return NewRiotClient(cfg, client, zerolog.Nop()), doer
}

func TestGetAccountByRiotIDEscapesPath(t *testing.T) {
	t.Parallel()

	riot, doer := newRiot(map[string]string{
		"europe.api.riotgames.com/riot/account/v1/accounts/by-riot-id/Hide%20on%20bush/KR1": `{"puuid":"p1","gameName":"Hide on bush","tagLine":"KR1"}`,
	})

	acc, found, err := riot.GetAccountByRiotID(context.Background(), "Hide on bush", "KR1")
	require.NoError(t, err)
	require.True(t, found, "seen: %v", doer.seen)
	require.Equal(t, domain.Account{Puuid: "p1", GameName: "Hide on bush", TagLine: "KR1"}, *acc)
}

func TestGetAccountByRiotIDAbsent(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(nil)
	acc, found, err := riot.GetAccountByRiotID(context.Background(), "nobody", "EUW")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, acc)
}

func TestGetLeagueEntriesMapsRanks(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"euw1.api.riotgames.com/lol/league/v4/entries/by-puuid/p1": `[
			{"queueType":"RANKED_FLEX_SR","tier":"MASTER","rank":"I","leaguePoints":120,"wins":10,"losses":5},
			{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II","leaguePoints":40,"wins":30,"losses":20}
		]`,
	})

	entries, err := riot.GetLeagueEntries(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.TierMaster, entries[0].Tier)
	require.Equal(t, domain.DivisionNone, entries[0].Division)

	solo := SoloQueueEntry(entries)
	require.NotNil(t, solo)
	require.Equal(t, domain.TierGold, solo.Tier)
	require.Equal(t, domain.DivisionII, solo.Division)
	require.Equal(t, 40, solo.LeaguePoints)
}

func TestGetLeagueEntriesRejectsUnknownTier(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"euw1.api.riotgames.com/lol/league/v4/entries/by-puuid/p1": `[{"queueType":"RANKED_SOLO_5x5","tier":"WOOD","rank":"IV"}]`,
	})
	_, err := riot.GetLeagueEntries(context.Background(), "p1")
	require.Error(t, err)
}

func TestGetLeagueEntriesRejectsDividedTierWithoutDivision(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"euw1.api.riotgames.com/lol/league/v4/entries/by-puuid/p1": `[{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"","leaguePoints":10}]`,
	})
	_, err := riot.GetLeagueEntries(context.Background(), "p1")
	require.ErrorIs(t, err, domain.ErrUnknownDivision)
}

func TestGetLeagueEntriesNotFoundIsEmpty(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(nil)
	entries, err := riot.GetLeagueEntries(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Nil(t, SoloQueueEntry(entries))
}

func TestGetActiveGame(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"euw1.api.riotgames.com/lol/spectator/v5/active-games/by-summoner/p1": `{
			"gameId": 7001, "gameMode": "CLASSIC", "gameType": "MATCHED", "gameStartTime": 1700000000000, "gameLength": 300,
			"participants": [
				{"puuid":"p1","riotId":"Alpha#EUW","championId":266,"teamId":100},
				{"puuid":"","riotId":"","championId":103,"teamId":200}
			]
		}`,
	})

	game, found, err := riot.GetActiveGame(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(7001), game.GameID)
	require.Equal(t, 5*time.Minute, game.GameLength)
	require.Equal(t, time.UnixMilli(1700000000000).UTC(), game.GameStartTime)
	require.Len(t, game.Participants, 2)
	require.Empty(t, game.Participants[1].Puuid)

	_, found, err = riot.GetActiveGame(context.Background(), "idle")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGetMatchIDsAndMatch(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"europe.api.riotgames.com/lol/match/v5/matches/by-puuid/p1/ids?count=1": `["EUW1_1"]`,
		"europe.api.riotgames.com/lol/match/v5/matches/EUW1_1":                  `{"metadata":{"matchId":"EUW1_1"},"info":{"gameEndTimestamp":1700000000000}}`,
	})

	ids, err := riot.GetMatchIDs(context.Background(), "p1", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"EUW1_1"}, ids)

	match, found, err := riot.GetMatch(context.Background(), ids[0])
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, time.UnixMilli(1700000000000).UTC(), match.GameEndAt)
}

func TestGetChampions(t *testing.T) {
	t.Parallel()

	riot, doer := newRiot(map[string]string{
		"ddragon.test/cdn/15.24.1/data/en_US/champion.json": `{"version":"15.24.1","data":{
			"Aatrox":{"id":"Aatrox","key":"266","name":"Aatrox"},
			"MonkeyKing":{"id":"MonkeyKing","key":"62","name":"Wukong"}
		}}`,
	})

	champs, err := riot.GetChampions(context.Background())
	require.NoError(t, err)
	require.Len(t, champs, 2)

	byID := map[int]domain.Champion{}
	for _, c := range champs {
		byID[c.ID] = c
	}
	require.Equal(t, "Wukong", byID[62].Name)
	require.Equal(t, "MonkeyKing", byID[62].Key)
	require.True(t, strings.HasPrefix(doer.seen[0], "ddragon.test"))
}

func TestGetChampionRotation(t *testing.T) {
	t.Parallel()

	riot, _ := newRiot(map[string]string{
		"euw1.api.riotgames.com/lol/platform/v3/champion-rotations": `{"freeChampionIds":[1,2,3],"freeChampionIdsForNewPlayers":[4],"maxNewPlayerLevel":10}`,
	})
	rot, err := riot.GetChampionRotation(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, rot.FreeChampionIDs)
	require.Equal(t, 10, rot.MaxNewPlayerLevel)
}
