package repository

import (
	"context"
	"time"

	"garen-bot/internal/constants"
	"garen-bot/internal/domain"

	"github.com/rs/zerolog"
)

const (
	lpHistorySuffix = "_lp_history"
	dateKeyLayout   = "2006-01-02"
)

// LPHistoryRepository keeps the first LP observed per player per UTC day.
type LPHistoryRepository struct {
	files  *GuildFiles
	now    func() time.Time
	logger zerolog.Logger
}

func NewLPHistoryRepository(files *GuildFiles, logger zerolog.Logger) *LPHistoryRepository {
	return &LPHistoryRepository{
		files:  files,
		now:    time.Now,
		logger: logger,
	}
}

func emptyHistory() domain.LPHistory {
	return domain.LPHistory{}
}

// DailyDelta returns currentLP minus today's baseline. The first observation of
// the day becomes the baseline and yields 0. Days older than the retention
// window are dropped on every write.
func (r *LPHistoryRepository) DailyDelta(ctx context.Context, guildID, puuid string, currentLP int) (int, error) {
	now := r.now().UTC()
	today := now.Format(dateKeyLayout)
	cutoff := now.Add(-constants.LPHistoryRetention).Format(dateKeyLayout)

	delta := 0
	err := updateFile(ctx, r.files, guildID, lpHistorySuffix, emptyHistory, func(history *domain.LPHistory) error {
		if *history == nil {
			*history = domain.LPHistory{}
		}

		days, ok := (*history)[puuid]
		if !ok {
			days = make(map[string]int)
			(*history)[puuid] = days
		}

		if baseline, ok := days[today]; ok {
			delta = currentLP - baseline
		} else {
			days[today] = currentLP
		}

		pruned := prune(*history, cutoff)
		if pruned > 0 {
			r.logger.Debug().Str("guild_id", guildID).Int("pruned", pruned).Msg("lp history pruned")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delta, nil
}

// History returns the stored snapshots for a guild.
func (r *LPHistoryRepository) History(ctx context.Context, guildID string) (domain.LPHistory, error) {
	return viewFile(ctx, r.files, guildID, lpHistorySuffix, emptyHistory)
}

// prune drops date keys before cutoff and players left without any.
func prune(history domain.LPHistory, cutoff string) int {
	removed := 0
	for puuid, days := range history {
		for date := range days {
			if date < cutoff {
				delete(days, date)
				removed++
			}
		}
		if len(days) == 0 {
			delete(history, puuid)
		}
	}
	return removed
}
