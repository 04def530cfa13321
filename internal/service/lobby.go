package service

import (
	"context"
	"time"

	"garen-bot/internal/api"
	"garen-bot/internal/catalog"
	"garen-bot/internal/config"
	"garen-bot/internal/constants"
	"garen-bot/internal/domain"
	"garen-bot/internal/ranking"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const streamerMode = "STREAMER MODE"

type LobbyParticipant struct {
	RiotID       string `json:"riot_id"`
	ChampionID   int    `json:"champion_id"`
	Champion     string `json:"champion"`
	ChampionIcon string `json:"champion_icon,omitempty"`
	TeamID       int    `json:"team_id"`
	Rank         string `json:"rank"`
	Hidden       bool   `json:"hidden"`
}

type Lobby struct {
	GameID       int64              `json:"game_id"`
	GameMode     string             `json:"game_mode"`
	GameType     string             `json:"game_type"`
	StartedAt    time.Time          `json:"started_at"`
	LengthSec    int64              `json:"length_sec"`
	Participants []LobbyParticipant `json:"participants"`
}

type LobbyService struct {
	riot        RiotAPI
	champions   *catalog.Champions
	concurrency int
	logger      zerolog.Logger
}

func NewLobbyService(cfg *config.Config, riot RiotAPI, champions *catalog.Champions, logger zerolog.Logger) *LobbyService {
	return &LobbyService{
		riot:        riot,
		champions:   champions,
		concurrency: max(cfg.FetchConcurrency, 1),
		logger:      logger,
	}
}

// Lobby describes the live game riotID is playing, with each visible
// participant's solo rank.
func (s *LobbyService) Lobby(ctx context.Context, riotID string) (*Lobby, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	account, err := resolveAccount(ctx, s.riot, riotID)
	if err != nil {
		return nil, err
	}

	game, found, err := s.riot.GetActiveGame(ctx, account.Puuid)
	if err != nil {
		return nil, errors.Wrap(err, "fetch active game")
	}
	if !found {
		return nil, errors.Wrapf(domain.ErrNotInGame, "%s", account.RiotID())
	}

	if !s.champions.Loaded() {
		s.logger.Warn().Msg("champion catalog not loaded, lobby champions unknown")
	}

	lobby := &Lobby{
		GameID:       game.GameID,
		GameMode:     game.GameMode,
		GameType:     game.GameType,
		StartedAt:    game.GameStartTime,
		LengthSec:    int64(game.GameLength / time.Second),
		Participants: make([]LobbyParticipant, len(game.Participants)),
	}

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, p := range game.Participants {
		lobby.Participants[i] = LobbyParticipant{
			RiotID:       p.RiotID,
			ChampionID:   p.ChampionID,
			Champion:     s.champions.NameOrUnknown(p.ChampionID),
			ChampionIcon: s.champions.IconURL(p.ChampionID),
			TeamID:       p.TeamID,
		}
		if p.Puuid == "" {
			lobby.Participants[i].Rank = streamerMode
			lobby.Participants[i].Hidden = true
			continue
		}

		g.Go(func() error {
			entries, err := s.riot.GetLeagueEntries(ctx, p.Puuid)
			if err != nil {
				s.logger.Warn().Err(err).Str("riot_id", p.RiotID).Msg("failed to fetch participant rank")
				lobby.Participants[i].Rank = "Unknown"
				return nil
			}
			lobby.Participants[i].Rank = ranking.DisplayRank(api.SoloQueueEntry(entries))
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info().
		Str("riot_id", account.RiotID().String()).
		Str("game_mode", game.GameMode).
		Int("participants", len(lobby.Participants)).
		Msg("lobby fetched")
	return lobby, nil
}
