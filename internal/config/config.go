package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Recommend RecommendConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	LogDebug    bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

type RecommendConfig struct {
	Workers        int
	ScoringTimeout time.Duration
	CorpusLimit    int
	WeightsFile    string
	SnapshotLimit  int
	DefaultLimit   int
	MaxLimit       int
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

func Load() (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string) bool {
		raw := opt(key)
		if raw == "" {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
		}
		return v
	}
	// Durations are plain integers in the given unit, like REDIS_TTL=600.
	optDuration := func(key string, unit, def time.Duration) time.Duration {
		return time.Duration(optInt(key, int(def/unit))) * unit
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     optBool("LOG_JSON"),
		LogDebug:    optBool("LOG_DEBUG"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT_SECONDS", time.Second, 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME_SECONDS", time.Second, 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_SECONDS", time.Second, 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_SECONDS", time.Second, 0),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
		TTL:      optDuration("REDIS_TTL", time.Second, 600*time.Second),
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	cfg.JWT = JWTConfig{
		AccessSecret: req("JWT_ACCESS_SECRET"),
		Issuer:       opt("JWT_ISSUER"),
	}

	cfg.Recommend = RecommendConfig{
		Workers:        optInt("RECOMMEND_WORKERS", runtime.NumCPU()),
		ScoringTimeout: optDuration("RECOMMEND_SCORING_TIMEOUT_MS", time.Millisecond, 2*time.Second),
		CorpusLimit:    optInt("RECOMMEND_CORPUS_LIMIT", 2000),
		WeightsFile:    opt("RECOMMEND_WEIGHTS_FILE"),
		SnapshotLimit:  optInt("RECOMMEND_SNAPSHOT_LIMIT", 50),
		DefaultLimit:   optInt("RECOMMEND_DEFAULT_LIMIT", 20),
		MaxLimit:       optInt("RECOMMEND_MAX_LIMIT", 50),
	}
	if cfg.Recommend.Workers == 0 {
		cfg.Recommend.Workers = runtime.NumCPU()
	}
	if cfg.Recommend.MaxLimit > 0 && cfg.Recommend.SnapshotLimit > cfg.Recommend.MaxLimit {
		invalid = append(invalid, "RECOMMEND_SNAPSHOT_LIMIT")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr joins host and port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}
