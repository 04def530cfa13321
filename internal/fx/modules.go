package fx

import (
	"context"

	"garen-bot/internal/api"
	"garen-bot/internal/catalog"
	"garen-bot/internal/config"
	"garen-bot/internal/constants"
	"garen-bot/internal/logger"
	"garen-bot/internal/middleware"
	"garen-bot/internal/ratelimit"
	"garen-bot/internal/repository"
	"garen-bot/internal/server"
	"garen-bot/internal/service"
	"garen-bot/internal/stats"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideLimiter(cfg *config.Config, logger zerolog.Logger) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimitCalls, logger)
}

func ProvideHandler(
	summoners *service.SummonerService,
	leaderboards *service.LeaderboardService,
	champions *service.ChampionService,
	lobbies *service.LobbyService,
	patchNotes *service.PatchNoteService,
	champs *catalog.Champions,
	riot *api.RiotClient,
	logger zerolog.Logger,
) *server.Handler {
	return server.NewHandler(summoners, leaderboards, champions, lobbies, patchNotes, champs, riot, logger)
}

// prefetchCatalog loads the champion table off the request path and keeps
// retrying with backoff until it succeeds or the app stops.
func prefetchCatalog(lc fx.Lifecycle, champions *catalog.Champions, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := champions.Prefetch(ctx,
					constants.CatalogFetchTimeout,
					constants.CatalogRetryBackoff,
					constants.CatalogRetryMax,
				)
				if err != nil {
					logger.Warn().Err(err).Msg("champion catalog never loaded")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startThrottleJanitor(lc fx.Lifecycle, throttle *middleware.Throttle) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			throttle.StartJanitor(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(stats.NewRecorder),
	// riot api
	fx.Provide(ProvideLimiter),
	fx.Provide(api.NewClientFromConfig),
	fx.Provide(
		fx.Annotate(
			api.NewRiotClientFromConfig,
			fx.As(fx.Self()),
			fx.As(new(service.RiotAPI)),
			fx.As(new(catalog.Fetcher)),
		),
	),
	fx.Provide(
		fx.Annotate(
			api.NewPatchNotesClientFromConfig,
			fx.As(new(service.PatchNoteSource)),
		),
	),
	fx.Provide(catalog.NewFromConfig),
	// repos
	fx.Provide(repository.NewGuildFilesFromConfig),
	fx.Provide(repository.NewLeaderboardRepository),
	fx.Provide(repository.NewLPHistoryRepository),
	// svc
	fx.Provide(service.NewSummonerService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewChampionService),
	fx.Provide(service.NewLobbyService),
	fx.Provide(service.NewPatchNoteService),
	// server
	fx.Provide(middleware.NewThrottleFromConfig),
	fx.Provide(ProvideHandler),
	fx.Invoke(prefetchCatalog),
	fx.Invoke(startThrottleJanitor),
)
