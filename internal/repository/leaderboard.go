package repository

import (
	"context"
	"time"

	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type leaderboardFile struct {
	GuildID string         `json:"guild_id"`
	Players []playerRecord `json:"players"`
}

type playerRecord struct {
	DiscordUserID string `json:"discord_user_id"`
	RiotID        string `json:"riot_id"`
	Puuid         string `json:"puuid"`
	AddedAt       string `json:"added_at"`
}

// Older files carry naive ISO timestamps without a zone.
var addedAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

func parseAddedAt(s string) time.Time {
	for _, layout := range addedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (p playerRecord) toDomain() domain.GuildPlayer {
	return domain.GuildPlayer{
		DiscordUserID: p.DiscordUserID,
		RiotID:        p.RiotID,
		Puuid:         p.Puuid,
		AddedAt:       parseAddedAt(p.AddedAt),
	}
}

type LeaderboardRepository struct {
	files  *GuildFiles
	now    func() time.Time
	logger zerolog.Logger
}

func NewLeaderboardRepository(files *GuildFiles, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{
		files:  files,
		now:    time.Now,
		logger: logger,
	}
}

const leaderboardSuffix = ""

func emptyLeaderboard(guildID string) func() leaderboardFile {
	return func() leaderboardFile {
		return leaderboardFile{GuildID: guildID, Players: []playerRecord{}}
	}
}

// AddPlayer links puuid to the guild. A puuid already present is rejected with
// domain.ErrDuplicateAccount and the file is left as it was.
func (r *LeaderboardRepository) AddPlayer(ctx context.Context, guildID, discordUserID, riotID, puuid string) (domain.GuildPlayer, error) {
	var added playerRecord
	err := updateFile(ctx, r.files, guildID, leaderboardSuffix, emptyLeaderboard(guildID), func(doc *leaderboardFile) error {
		for _, p := range doc.Players {
			if p.Puuid == puuid {
				return errors.Wrapf(domain.ErrDuplicateAccount, "%s in guild %s", riotID, guildID)
			}
		}
		added = playerRecord{
			DiscordUserID: discordUserID,
			RiotID:        riotID,
			Puuid:         puuid,
			AddedAt:       r.now().UTC().Format(time.RFC3339),
		}
		doc.GuildID = guildID
		doc.Players = append(doc.Players, added)
		return nil
	})
	if err != nil {
		return domain.GuildPlayer{}, err
	}

	r.logger.Info().
		Str("guild_id", guildID).
		Str("discord_user_id", discordUserID).
		Str("riot_id", riotID).
		Msg("player added to leaderboard")
	return added.toDomain(), nil
}

// ListPlayers returns the roster in insertion order; a guild without a file has none.
func (r *LeaderboardRepository) ListPlayers(ctx context.Context, guildID string) ([]domain.GuildPlayer, error) {
	doc, err := viewFile(ctx, r.files, guildID, leaderboardSuffix, emptyLeaderboard(guildID))
	if err != nil {
		return nil, err
	}

	players := make([]domain.GuildPlayer, len(doc.Players))
	for i, p := range doc.Players {
		players[i] = p.toDomain()
	}
	return players, nil
}

func (r *LeaderboardRepository) PlayersForDiscordUser(ctx context.Context, guildID, discordUserID string) ([]domain.GuildPlayer, error) {
	all, err := r.ListPlayers(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var mine []domain.GuildPlayer
	for _, p := range all {
		if p.DiscordUserID == discordUserID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}
