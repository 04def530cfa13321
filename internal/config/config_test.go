package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-test")
	t.Setenv("REGION", "KR")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, "kr", cfg.Region)
	require.Equal(t, "asia", cfg.Routing)
	require.Equal(t, 20, cfg.RateLimitCalls)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, "https://ddragon.leagueoflegends.com/cdn/15.24.1/data/en_US/champion.json", cfg.ChampionDataURL())
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "")

	_, err := Load(zerolog.Nop())
	require.ErrorContains(t, err, "RIOT_API_KEY")
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-test")
	t.Setenv("RATE_LIMIT_CALLS", "lots")

	_, err := Load(zerolog.Nop())
	require.ErrorContains(t, err, "RATE_LIMIT_CALLS")
}

func TestLoad_TimeoutAcceptsSeconds(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-test")
	t.Setenv("RIOT_REQUEST_TIMEOUT", "4")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 4*time.Second, cfg.RequestTimeout)
}

func TestRoutingFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "americas", RoutingFor("br1"))
	require.Equal(t, "sea", RoutingFor("oc1"))
	require.Equal(t, "europe", RoutingFor("unknown"))
}
