package service

import (
	"context"
	"sync"
	"time"

	"garen-bot/internal/api"
	"garen-bot/internal/catalog"
	"garen-bot/internal/config"
	"garen-bot/internal/constants"
	"garen-bot/internal/domain"
	"garen-bot/internal/ranking"
	"garen-bot/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type AddResult struct {
	Player       domain.GuildPlayer `json:"player"`
	AccountCount int                `json:"account_count"`
}

type PlayerInfo struct {
	RiotID        string   `json:"riot_id"`
	DiscordUserID string   `json:"discord_user_id"`
	Level         int      `json:"level"`
	Online        bool     `json:"online"`
	LPDelta       int      `json:"lp_delta"`
	Rank          RankView `json:"rank"`

	entry *domain.LeagueEntry
}

type GuildInfo struct {
	GuildID string       `json:"guild_id"`
	Date    string       `json:"date"`
	Players []PlayerInfo `json:"players"`
}

type RankingRow struct {
	Position       int      `json:"position"`
	RiotID         string   `json:"riot_id"`
	DiscordUserID  string   `json:"discord_user_id"`
	ProfileIconID  int      `json:"profile_icon_id"`
	ProfileIconURL string   `json:"profile_icon_url"`
	Rank           RankView `json:"rank"`

	entry *domain.LeagueEntry
}

type GuildRanking struct {
	GuildID string       `json:"guild_id"`
	Total   int          `json:"total"`
	Players []RankingRow `json:"players"`
}

type LeaderboardService struct {
	riot        RiotAPI
	players     *repository.LeaderboardRepository
	history     *repository.LPHistoryRepository
	champions   *catalog.Champions
	concurrency int
	now         func() time.Time
	logger      zerolog.Logger
}

func NewLeaderboardService(
	cfg *config.Config,
	riot RiotAPI,
	players *repository.LeaderboardRepository,
	history *repository.LPHistoryRepository,
	champions *catalog.Champions,
	logger zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		riot:        riot,
		players:     players,
		history:     history,
		champions:   champions,
		concurrency: max(cfg.FetchConcurrency, 1),
		now:         time.Now,
		logger:      logger,
	}
}

// AddAccount resolves riotID and links it to the guild for discordUserID.
func (s *LeaderboardService) AddAccount(ctx context.Context, guildID, discordUserID, riotID string) (*AddResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	account, err := resolveAccount(ctx, s.riot, riotID)
	if err != nil {
		return nil, err
	}

	player, err := s.players.AddPlayer(ctx, guildID, discordUserID, account.RiotID().String(), account.Puuid)
	if err != nil {
		return nil, err
	}

	mine, err := s.players.PlayersForDiscordUser(ctx, guildID, discordUserID)
	if err != nil {
		return nil, err
	}
	return &AddResult{Player: player, AccountCount: len(mine)}, nil
}

// Info reports every linked account with today's LP change and online state.
func (s *LeaderboardService) Info(ctx context.Context, guildID string) (*GuildInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	roster, err := s.roster(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("guild_id", guildID).Int("players", len(roster)).Msg("fetching guild info")

	rows, err := fetchAll(ctx, s.concurrency, roster, s.logger, func(ctx context.Context, p domain.GuildPlayer) (*PlayerInfo, error) {
		summoner, solo, found, err := s.rankOf(ctx, p)
		if err != nil || !found {
			return nil, err
		}

		info := &PlayerInfo{
			RiotID:        p.RiotID,
			DiscordUserID: p.DiscordUserID,
			Level:         summoner.SummonerLevel,
			Rank:          newRankView(solo),
			entry:         solo,
		}
		if solo != nil {
			if info.LPDelta, err = s.history.DailyDelta(ctx, guildID, p.Puuid, solo.LeaguePoints); err != nil {
				return nil, errors.Wrap(err, "lp delta")
			}
		}
		info.Online = s.online(ctx, p.Puuid)
		return info, nil
	})
	if err != nil {
		return nil, err
	}

	ranking.SortByScore(rows, func(r PlayerInfo) *domain.LeagueEntry { return r.entry })
	return &GuildInfo{
		GuildID: guildID,
		Date:    s.now().UTC().Format("2006-01-02"),
		Players: rows,
	}, nil
}

// Ranking returns the top limit players by solo rank.
func (s *LeaderboardService) Ranking(ctx context.Context, guildID string, limit int) (*GuildRanking, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.LeaderboardDefaultLimit
	}
	limit = min(limit, constants.LeaderboardMaxLimit)

	roster, err := s.roster(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("guild_id", guildID).Int("players", len(roster)).Int("limit", limit).Msg("computing leaderboard")

	rows, err := fetchAll(ctx, s.concurrency, roster, s.logger, func(ctx context.Context, p domain.GuildPlayer) (*RankingRow, error) {
		summoner, solo, found, err := s.rankOf(ctx, p)
		if err != nil || !found {
			return nil, err
		}
		return &RankingRow{
			RiotID:         p.RiotID,
			DiscordUserID:  p.DiscordUserID,
			ProfileIconID:  summoner.ProfileIconID,
			ProfileIconURL: s.champions.ProfileIconURL(summoner.ProfileIconID),
			Rank:           newRankView(solo),
			entry:          solo,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	ranking.SortByScore(rows, func(r RankingRow) *domain.LeagueEntry { return r.entry })
	total := len(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Position = i + 1
	}
	return &GuildRanking{GuildID: guildID, Total: total, Players: rows}, nil
}

func (s *LeaderboardService) roster(ctx context.Context, guildID string) ([]domain.GuildPlayer, error) {
	roster, err := s.players.ListPlayers(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, errors.Wrapf(domain.ErrNoPlayers, "guild %s", guildID)
	}
	return roster, nil
}

// rankOf reports found=false when the summoner no longer exists.
func (s *LeaderboardService) rankOf(ctx context.Context, p domain.GuildPlayer) (*domain.Summoner, *domain.LeagueEntry, bool, error) {
	summoner, found, err := s.riot.GetSummonerByPUUID(ctx, p.Puuid)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "fetch summoner")
	}
	if !found {
		s.logger.Warn().Str("riot_id", p.RiotID).Msg("summoner not found, skipping")
		return nil, nil, false, nil
	}

	entries, err := s.riot.GetLeagueEntries(ctx, p.Puuid)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "fetch league entries")
	}
	return summoner, api.SoloQueueEntry(entries), true, nil
}

// online is true when the last match ended less than OnlineWindow ago.
// Failures read as offline.
func (s *LeaderboardService) online(ctx context.Context, puuid string) bool {
	ids, err := s.riot.GetMatchIDs(ctx, puuid, constants.OnlineMatchLookback)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to fetch match ids")
		return false
	}
	if len(ids) == 0 {
		return false
	}

	match, found, err := s.riot.GetMatch(ctx, ids[0])
	if err != nil {
		s.logger.Warn().Err(err).Str("match_id", ids[0]).Msg("failed to fetch last match")
		return false
	}
	if !found || match.GameEndAt.IsZero() {
		return false
	}
	return s.now().Sub(match.GameEndAt) < constants.OnlineWindow
}

// fetchAll runs fetch for every player with bounded concurrency. A failing
// player is logged and dropped; results keep roster order. It fails only when
// every player failed.
func fetchAll[T any](
	ctx context.Context,
	limit int,
	roster []domain.GuildPlayer,
	logger zerolog.Logger,
	fetch func(context.Context, domain.GuildPlayer) (*T, error),
) ([]T, error) {
	results := make([]*T, len(roster))

	var (
		mu       sync.Mutex
		failures int
		firstErr error
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, p := range roster {
		g.Go(func() error {
			row, err := fetch(ctx, p)
			if err != nil {
				logger.Error().Err(err).Str("riot_id", p.RiotID).Msg("failed to fetch player, skipping")
				mu.Lock()
				failures++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			results[i] = row
			return nil
		})
	}
	_ = g.Wait()

	if failures > 0 && failures == len(roster) {
		return nil, errors.Wrap(firstErr, "no player data could be fetched")
	}

	out := make([]T, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
