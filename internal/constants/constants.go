package constants

import "time"

const (
	RateLimitWindow      = 1 * time.Second
	DefaultRetryAfter    = 1 * time.Second
	TransientRetryDelay  = 1 * time.Second
	CatalogFetchTimeout  = 15 * time.Second
	CatalogRetryBackoff  = 5 * time.Second
	CatalogRetryMax      = 5 * time.Minute
	CommandTimeout       = 60 * time.Second
	OnlineWindow         = 5 * time.Minute
	LPHistoryRetention   = 7 * 24 * time.Hour
	ThrottleIdleTTL      = 15 * time.Minute
	ThrottleCleanupEvery = 2 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
	StatsTTL        = 24 * time.Hour
)

const (
	LeaderboardDefaultLimit = 15
	LeaderboardMaxLimit     = 50
	MasteryTopCount         = 1
	OnlineMatchLookback     = 1
)
