package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"garen-bot/internal/config"
	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// RiotClient exposes the Riot endpoints the bot uses, mapped to domain types.
type RiotClient struct {
	client       *Client
	platformBase string
	regionalBase string
	championURL  string
	logger       zerolog.Logger
}

type RiotOption func(*RiotClient)

// WithBaseURLs points the client at other hosts, e.g. an httptest server.
func WithBaseURLs(platform, regional string) RiotOption {
	return func(r *RiotClient) {
		r.platformBase = platform
		r.regionalBase = regional
	}
}

func WithChampionDataURL(u string) RiotOption {
	return func(r *RiotClient) { r.championURL = u }
}

func NewRiotClient(cfg *config.Config, client *Client, logger zerolog.Logger, opts ...RiotOption) *RiotClient {
	r := &RiotClient{
		client:       client,
		platformBase: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Region),
		regionalBase: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Routing),
		championURL:  cfg.ChampionDataURL(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRiotClientFromConfig is the fx constructor.
func NewRiotClientFromConfig(cfg *config.Config, client *Client, logger zerolog.Logger) *RiotClient {
	return NewRiotClient(cfg, client, logger)
}

func (r *RiotClient) RateLimitInfo() RateLimitInfo {
	return r.client.RateLimitInfo()
}

type accountResponse struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type summonerResponse struct {
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

type leagueEntryResponse struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type masteryResponse struct {
	ChampionID     int   `json:"championId"`
	ChampionLevel  int   `json:"championLevel"`
	ChampionPoints int   `json:"championPoints"`
	LastPlayTime   int64 `json:"lastPlayTime"`
}

type rotationResponse struct {
	FreeChampionIDs              []int `json:"freeChampionIds"`
	FreeChampionIDsForNewPlayers []int `json:"freeChampionIdsForNewPlayers"`
	MaxNewPlayerLevel            int   `json:"maxNewPlayerLevel"`
}

type activeGameResponse struct {
	GameID        int64  `json:"gameId"`
	GameType      string `json:"gameType"`
	GameMode      string `json:"gameMode"`
	GameStartTime int64  `json:"gameStartTime"`
	GameLength    int64  `json:"gameLength"`
	Participants  []struct {
		Puuid      string `json:"puuid"`
		RiotID     string `json:"riotId"`
		ChampionID int    `json:"championId"`
		TeamID     int    `json:"teamId"`
	} `json:"participants"`
}

type matchResponse struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info struct {
		GameEndTimestamp int64 `json:"gameEndTimestamp"`
	} `json:"info"`
}

type championDataResponse struct {
	Version string `json:"version"`
	Data    map[string]struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"data"`
}

func (r *RiotClient) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*domain.Account, bool, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		r.regionalBase, url.PathEscape(gameName), url.PathEscape(tagLine))

	resp, found, err := doRequest[accountResponse](ctx, r.client, "account-v1.by-riot-id", u)
	if err != nil || !found {
		return nil, found, err
	}
	return &domain.Account{Puuid: resp.Puuid, GameName: resp.GameName, TagLine: resp.TagLine}, true, nil
}

func (r *RiotClient) GetSummonerByPUUID(ctx context.Context, puuid string) (*domain.Summoner, bool, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", r.platformBase, url.PathEscape(puuid))

	resp, found, err := doRequest[summonerResponse](ctx, r.client, "summoner-v4.by-puuid", u)
	if err != nil || !found {
		return nil, found, err
	}
	return &domain.Summoner{
		Puuid:         resp.Puuid,
		SummonerLevel: resp.SummonerLevel,
		ProfileIconID: resp.ProfileIconID,
	}, true, nil
}

// GetLeagueEntries returns every ranked queue entry; an unknown player has none.
func (r *RiotClient) GetLeagueEntries(ctx context.Context, puuid string) ([]domain.LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", r.platformBase, url.PathEscape(puuid))

	resp, found, err := doRequest[[]leagueEntryResponse](ctx, r.client, "league-v4.entries", u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	entries := make([]domain.LeagueEntry, 0, len(*resp))
	for _, e := range *resp {
		entry, err := toLeagueEntry(e)
		if err != nil {
			return nil, errors.Wrapf(err, "league entry %s", e.QueueType)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toLeagueEntry(e leagueEntryResponse) (domain.LeagueEntry, error) {
	tier, err := domain.ParseTier(e.Tier)
	if err != nil {
		return domain.LeagueEntry{}, err
	}
	division := domain.DivisionNone
	// apex tiers report "I" but have no division
	if !tier.IsApex() {
		if division, err = domain.ParseDivision(e.Rank); err != nil {
			return domain.LeagueEntry{}, err
		}
		if division == domain.DivisionNone {
			return domain.LeagueEntry{}, errors.Wrapf(domain.ErrUnknownDivision, "%s without division", tier)
		}
	}
	return domain.LeagueEntry{
		QueueType:    e.QueueType,
		Tier:         tier,
		Division:     division,
		LeaguePoints: e.LeaguePoints,
		Wins:         e.Wins,
		Losses:       e.Losses,
	}, nil
}

func (r *RiotClient) GetTopMasteries(ctx context.Context, puuid string, count int) ([]domain.ChampionMastery, error) {
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d",
		r.platformBase, url.PathEscape(puuid), count)

	resp, found, err := doRequest[[]masteryResponse](ctx, r.client, "champion-mastery-v4.top", u)
	if err != nil || !found {
		return nil, err
	}

	masteries := make([]domain.ChampionMastery, 0, len(*resp))
	for _, m := range *resp {
		masteries = append(masteries, domain.ChampionMastery{
			ChampionID:     m.ChampionID,
			ChampionLevel:  m.ChampionLevel,
			ChampionPoints: m.ChampionPoints,
		})
	}
	return masteries, nil
}

// GetActiveGame reports found=false when the player is not in a game.
func (r *RiotClient) GetActiveGame(ctx context.Context, puuid string) (*domain.ActiveGame, bool, error) {
	u := fmt.Sprintf("%s/lol/spectator/v5/active-games/by-summoner/%s", r.platformBase, url.PathEscape(puuid))

	resp, found, err := doRequest[activeGameResponse](ctx, r.client, "spectator-v5.active-games", u)
	if err != nil || !found {
		return nil, found, err
	}

	game := &domain.ActiveGame{
		GameID:       resp.GameID,
		GameMode:     resp.GameMode,
		GameType:     resp.GameType,
		GameLength:   time.Duration(resp.GameLength) * time.Second,
		Participants: make([]domain.Participant, 0, len(resp.Participants)),
	}
	if resp.GameStartTime > 0 {
		game.GameStartTime = time.UnixMilli(resp.GameStartTime).UTC()
	}
	for _, p := range resp.Participants {
		game.Participants = append(game.Participants, domain.Participant{
			Puuid:      p.Puuid,
			RiotID:     p.RiotID,
			ChampionID: p.ChampionID,
			TeamID:     p.TeamID,
		})
	}
	return game, true, nil
}

func (r *RiotClient) GetChampionRotation(ctx context.Context) (*domain.ChampionRotation, error) {
	u := r.platformBase + "/lol/platform/v3/champion-rotations"

	resp, found, err := doRequest[rotationResponse](ctx, r.client, "champion-v3.rotations", u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrap(domain.ErrNotFound, "champion rotation")
	}
	return &domain.ChampionRotation{
		FreeChampionIDs:              resp.FreeChampionIDs,
		FreeChampionIDsForNewPlayers: resp.FreeChampionIDsForNewPlayers,
		MaxNewPlayerLevel:            resp.MaxNewPlayerLevel,
	}, nil
}

func (r *RiotClient) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?count=%d",
		r.regionalBase, url.PathEscape(puuid), count)

	resp, found, err := doRequest[[]string](ctx, r.client, "match-v5.ids", u)
	if err != nil || !found {
		return nil, err
	}
	return *resp, nil
}

func (r *RiotClient) GetMatch(ctx context.Context, matchID string) (*domain.MatchSummary, bool, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", r.regionalBase, url.PathEscape(matchID))

	resp, found, err := doRequest[matchResponse](ctx, r.client, "match-v5.match", u)
	if err != nil || !found {
		return nil, found, err
	}
	summary := &domain.MatchSummary{MatchID: resp.Metadata.MatchID}
	if resp.Info.GameEndTimestamp > 0 {
		summary.GameEndAt = time.UnixMilli(resp.Info.GameEndTimestamp).UTC()
	}
	return summary, true, nil
}

// GetChampions downloads the Data Dragon champion table.
func (r *RiotClient) GetChampions(ctx context.Context) ([]domain.Champion, error) {
	resp, found, err := doRequestWith[championDataResponse](ctx, r.client, "ddragon.champion", r.championURL, requestOptions{static: true})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(domain.ErrNotFound, "champion data at %s", r.championURL)
	}

	champions := make([]domain.Champion, 0, len(resp.Data))
	for _, c := range resp.Data {
		id, err := strconv.Atoi(c.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "champion %s has non-numeric key %q", c.ID, c.Key)
		}
		champions = append(champions, domain.Champion{ID: id, Key: c.ID, Name: c.Name})
	}
	return champions, nil
}

// SoloQueueEntry picks the ranked solo/duo entry, or nil when unranked.
func SoloQueueEntry(entries []domain.LeagueEntry) *domain.LeagueEntry {
	for i := range entries {
		if entries[i].QueueType == domain.QueueRankedSolo {
			return &entries[i]
		}
	}
	return nil
}
