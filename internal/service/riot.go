package service

import (
	"context"

	"garen-bot/internal/domain"
	"garen-bot/internal/ranking"

	"github.com/cockroachdb/errors"
)

// RiotAPI is the subset of api.RiotClient the services call.
type RiotAPI interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*domain.Account, bool, error)
	GetSummonerByPUUID(ctx context.Context, puuid string) (*domain.Summoner, bool, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]domain.LeagueEntry, error)
	GetTopMasteries(ctx context.Context, puuid string, count int) ([]domain.ChampionMastery, error)
	GetActiveGame(ctx context.Context, puuid string) (*domain.ActiveGame, bool, error)
	GetChampionRotation(ctx context.Context) (*domain.ChampionRotation, error)
	GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*domain.MatchSummary, bool, error)
}

// RankView is a solo queue rank ready for display.
type RankView struct {
	Display      string  `json:"display"`
	Tier         string  `json:"tier,omitempty"`
	Division     string  `json:"division,omitempty"`
	LeaguePoints int     `json:"league_points"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Winrate      float64 `json:"winrate"`
	Score        int     `json:"score"`
}

func newRankView(e *domain.LeagueEntry) RankView {
	v := RankView{Display: ranking.DisplayRank(e), Score: ranking.Score(e)}
	if e == nil {
		return v
	}
	v.Tier = e.Tier.String()
	v.Division = e.Division.String()
	v.LeaguePoints = e.LeaguePoints
	v.Wins = e.Wins
	v.Losses = e.Losses
	v.Winrate = ranking.Winrate(e.Wins, e.Losses)
	return v
}

func resolveAccount(ctx context.Context, riot RiotAPI, raw string) (*domain.Account, error) {
	id, err := domain.ParseRiotID(raw)
	if err != nil {
		return nil, err
	}

	account, found, err := riot.GetAccountByRiotID(ctx, id.GameName, id.TagLine)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch account %s", id)
	}
	if !found {
		return nil, errors.Wrapf(domain.ErrNotFound, "account %s", id)
	}
	if account.GameName == "" {
		account.GameName, account.TagLine = id.GameName, id.TagLine
	}
	return account, nil
}
