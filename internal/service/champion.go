package service

import (
	"context"

	"garen-bot/internal/catalog"
	"garen-bot/internal/constants"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type ChampionView struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type Rotation struct {
	Champions          []ChampionView `json:"champions"`
	NewPlayerChampions []ChampionView `json:"new_player_champions"`
	MaxNewPlayerLevel  int            `json:"max_new_player_level"`
}

type ChampionService struct {
	riot      RiotAPI
	champions *catalog.Champions
	logger    zerolog.Logger
}

func NewChampionService(riot RiotAPI, champions *catalog.Champions, logger zerolog.Logger) *ChampionService {
	return &ChampionService{riot: riot, champions: champions, logger: logger}
}

func (s *ChampionService) FreeRotation(ctx context.Context) (*Rotation, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	rotation, err := s.riot.GetChampionRotation(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch champion rotation")
	}

	if !s.champions.Loaded() {
		s.logger.Warn().Msg("champion catalog not loaded, rotation names unknown")
	}

	result := &Rotation{
		Champions:          s.views(rotation.FreeChampionIDs),
		NewPlayerChampions: s.views(rotation.FreeChampionIDsForNewPlayers),
		MaxNewPlayerLevel:  rotation.MaxNewPlayerLevel,
	}
	s.logger.Info().Int("champions", len(result.Champions)).Msg("free rotation fetched")
	return result, nil
}

func (s *ChampionService) views(ids []int) []ChampionView {
	out := make([]ChampionView, 0, len(ids))
	for _, id := range ids {
		out = append(out, ChampionView{
			ID:      id,
			Name:    s.champions.NameOrUnknown(id),
			IconURL: s.champions.IconURL(id),
		})
	}
	return out
}
