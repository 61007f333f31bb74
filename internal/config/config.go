package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StrategyEstimate = "estimate"
	StrategyBoxScore = "boxscore"

	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string
	Season     string

	NBAStatsBaseURL    string
	ESPNBaseURL        string
	NBARequestInterval time.Duration

	DefenseStrategy      string
	DefenseCache         string
	RedisURL             string
	DefenderRegistryPath string

	MinAttemptsPerGame float64
	RosterScanLimit    int
	ScanConcurrency    int
	TopPicksLimit      int
	PlayerIndexTTL     time.Duration
	WarmupSchedule     string
}

func Load() (*Config, error) {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:               getEnv("DB_PATH", "threes.db"),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Season:               getEnv("SEASON", CurrentSeason(time.Now())),
		NBAStatsBaseURL:      getEnv("NBA_STATS_BASE_URL", "https://stats.nba.com/stats"),
		ESPNBaseURL:          getEnv("ESPN_BASE_URL", "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"),
		DefenseStrategy:      getEnv("DEFENSE_STRATEGY", StrategyBoxScore),
		DefenseCache:         getEnv("DEFENSE_CACHE", CacheMemory),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DefenderRegistryPath: getEnv("DEFENDER_REGISTRY_PATH", ""),
		WarmupSchedule:       getEnv("WARMUP_SCHEDULE", ""),
	}

	var err error
	if cfg.NBARequestInterval, err = getEnvDuration("NBA_REQUEST_INTERVAL", constants.NBARequestInterval); err != nil {
		return nil, err
	}
	if cfg.PlayerIndexTTL, err = getEnvDuration("PLAYER_INDEX_TTL", constants.PlayerIndexTTL); err != nil {
		return nil, err
	}
	if cfg.MinAttemptsPerGame, err = getEnvFloat("MIN_ATTEMPTS_PER_GAME", constants.MinAttemptsPerGame); err != nil {
		return nil, err
	}
	if cfg.RosterScanLimit, err = getEnvInt("ROSTER_SCAN_LIMIT", constants.RosterScanLimit); err != nil {
		return nil, err
	}
	if cfg.ScanConcurrency, err = getEnvInt("SCAN_CONCURRENCY", constants.ScanConcurrency); err != nil {
		return nil, err
	}
	if cfg.TopPicksLimit, err = getEnvInt("TOP_PICKS_LIMIT", constants.TopPicksLimit); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DefenseStrategy {
	case StrategyEstimate, StrategyBoxScore:
	default:
		return fmt.Errorf("%w: DEFENSE_STRATEGY must be %q or %q, got %q", ErrInvalidConfig, StrategyEstimate, StrategyBoxScore, c.DefenseStrategy)
	}
	switch c.DefenseCache {
	case CacheMemory, CacheSQLite, CacheRedis:
	default:
		return fmt.Errorf("%w: DEFENSE_CACHE must be memory, sqlite or redis, got %q", ErrInvalidConfig, c.DefenseCache)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.ScanConcurrency < 1 {
		return fmt.Errorf("%w: SCAN_CONCURRENCY must be at least 1", ErrInvalidConfig)
	}
	if c.RosterScanLimit < 1 || c.TopPicksLimit < 1 {
		return fmt.Errorf("%w: ROSTER_SCAN_LIMIT and TOP_PICKS_LIMIT must be positive", ErrInvalidConfig)
	}
	if c.MinAttemptsPerGame < 0 {
		return fmt.Errorf("%w: MIN_ATTEMPTS_PER_GAME must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CurrentSeason names the NBA season in progress on the given day, e.g.
// "2025-26" from October 2025 through September 2026.
func CurrentSeason(now time.Time) string {
	start := now.Year()
	if now.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// Log reports the effective configuration once the logger exists.
func Log(cfg *Config, logger zerolog.Logger) {
	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("season", cfg.Season).
		Str("defense_strategy", cfg.DefenseStrategy).
		Str("defense_cache", cfg.DefenseCache).
		Dur("nba_request_interval", cfg.NBARequestInterval).
		Float64("min_attempts_per_game", cfg.MinAttemptsPerGame).
		Int("scan_concurrency", cfg.ScanConcurrency).
		Msg("configuration loaded")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, v)
	}
	return d, nil
}

var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(Log),
)
