package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey     string
	Region         string
	Routing        string
	DDragonBaseURL string
	DDragonVersion string
	PatchNotesURL  string
	DataDir        string

	RateLimitCalls int
	RequestTimeout time.Duration
	MaxRetries     int

	FetchConcurrency int

	ServerPort    string
	LogLevel      string
	ThrottleRPS   float64
	ThrottleBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

var regionRouting = map[string]string{
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"kr":   "asia",
	"jp1":  "asia",
	"na1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"br1":  "americas",
	"oc1":  "sea",
}

// RoutingFor maps a platform region to its regional routing value.
func RoutingFor(region string) string {
	if routing, ok := regionRouting[strings.ToLower(region)]; ok {
		return routing
	}
	return "europe"
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	var p parser
	cfg := &Config{
		RiotAPIKey:     getEnv("RIOT_API_KEY", ""),
		Region:         strings.ToLower(getEnv("REGION", "euw1")),
		DDragonBaseURL: strings.TrimRight(getEnv("DDRAGON_BASE_URL", "https://ddragon.leagueoflegends.com/cdn"), "/"),
		DDragonVersion: getEnv("DDRAGON_VERSION", "15.24.1"),
		PatchNotesURL:  getEnv("PATCH_NOTES_URL", "https://www.leagueoflegends.com/fr-fr/news/tags/patch-notes/"),
		DataDir:        getEnv("DATA_DIR", "data/leaderboards"),

		RateLimitCalls: p.int("RATE_LIMIT_CALLS", 20),
		RequestTimeout: p.duration("RIOT_REQUEST_TIMEOUT", 10*time.Second),
		MaxRetries:     p.int("RIOT_MAX_RETRIES", 3),

		FetchConcurrency: p.int("LEADERBOARD_FETCH_CONCURRENCY", 4),

		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ThrottleRPS:   p.float("THROTTLE_RPS", 5),
		ThrottleBurst: p.int("THROTTLE_BURST", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", 0),
	}
	if p.err != nil {
		return nil, p.err
	}
	cfg.Routing = RoutingFor(cfg.Region)

	if cfg.RiotAPIKey == "" {
		return nil, errors.New("RIOT_API_KEY is required")
	}
	if cfg.RateLimitCalls < 1 {
		return nil, errors.Newf("RATE_LIMIT_CALLS must be positive, got %d", cfg.RateLimitCalls)
	}
	if cfg.MaxRetries < 1 {
		return nil, errors.Newf("RIOT_MAX_RETRIES must be positive, got %d", cfg.MaxRetries)
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	logger.Info().
		Str("region", cfg.Region).
		Str("routing", cfg.Routing).
		Str("ddragon_version", cfg.DDragonVersion).
		Str("data_dir", cfg.DataDir).
		Int("rate_limit_calls", cfg.RateLimitCalls).
		Dur("request_timeout", cfg.RequestTimeout).
		Int("max_retries", cfg.MaxRetries).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("redis_stats", cfg.RedisAddr != "").
		Msg("configuration loaded")

	return cfg, nil
}

// ChampionDataURL is the versioned Data Dragon champion catalog.
func (c *Config) ChampionDataURL() string {
	return c.DDragonBaseURL + "/" + c.DDragonVersion + "/data/en_US/champion.json"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "invalid %s", key)
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "invalid %s", key)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		// plain integers are seconds, like the REQUEST_TIMEOUT the bot always used
		secs, convErr := strconv.Atoi(raw)
		if convErr == nil {
			return time.Duration(secs) * time.Second
		}
		if p.err == nil {
			p.err = errors.Wrapf(err, "invalid %s", key)
		}
	}
	return v
}

var Module = fx.Provide(Load)
