package service

import (
	"context"

	"garen-bot/internal/api"
	"garen-bot/internal/catalog"
	"garen-bot/internal/constants"
	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type SummonerProfile struct {
	RiotID         string       `json:"riot_id"`
	Puuid          string       `json:"puuid"`
	Level          int          `json:"level"`
	ProfileIconID  int          `json:"profile_icon_id"`
	ProfileIconURL string       `json:"profile_icon_url"`
	Rank           RankView     `json:"rank"`
	TopMastery     *MasteryView `json:"top_mastery,omitempty"`
}

type MasteryView struct {
	ChampionID int    `json:"champion_id"`
	Champion   string `json:"champion"`
	IconURL    string `json:"icon_url"`
	Level      int    `json:"level"`
	Points     int    `json:"points"`
}

type SummonerService struct {
	riot      RiotAPI
	champions *catalog.Champions
	logger    zerolog.Logger
}

func NewSummonerService(riot RiotAPI, champions *catalog.Champions, logger zerolog.Logger) *SummonerService {
	return &SummonerService{riot: riot, champions: champions, logger: logger}
}

// Lookup gathers level, solo rank and best mastery for a Riot ID.
func (s *SummonerService) Lookup(ctx context.Context, riotID string) (*SummonerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	account, err := resolveAccount(ctx, s.riot, riotID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("riot_id", account.RiotID().String()).Msg("looking up summoner")

	summoner, found, err := s.riot.GetSummonerByPUUID(ctx, account.Puuid)
	if err != nil {
		return nil, errors.Wrap(err, "fetch summoner")
	}
	if !found {
		return nil, errors.Wrapf(domain.ErrNotFound, "summoner for %s", account.RiotID())
	}

	entries, err := s.riot.GetLeagueEntries(ctx, account.Puuid)
	if err != nil {
		return nil, errors.Wrap(err, "fetch league entries")
	}

	masteries, err := s.riot.GetTopMasteries(ctx, account.Puuid, constants.MasteryTopCount)
	if err != nil {
		return nil, errors.Wrap(err, "fetch masteries")
	}

	profile := &SummonerProfile{
		RiotID:         account.RiotID().String(),
		Puuid:          account.Puuid,
		Level:          summoner.SummonerLevel,
		ProfileIconID:  summoner.ProfileIconID,
		ProfileIconURL: s.champions.ProfileIconURL(summoner.ProfileIconID),
		Rank:           newRankView(api.SoloQueueEntry(entries)),
	}

	if len(masteries) > 0 {
		if !s.champions.Loaded() {
			s.logger.Warn().Msg("champion catalog not loaded, omitting mastery")
		}
		top := masteries[0]
		// a champion the catalog cannot name is left out, as in the chat reply
		if name, ok := s.champions.NameForID(top.ChampionID); ok {
			profile.TopMastery = &MasteryView{
				ChampionID: top.ChampionID,
				Champion:   name,
				IconURL:    s.champions.IconURL(top.ChampionID),
				Level:      top.ChampionLevel,
				Points:     top.ChampionPoints,
			}
		}
	}

	return profile, nil
}
