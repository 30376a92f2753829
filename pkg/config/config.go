package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Matching MatchingConfig
	Cron     CronConfig
	Outbox   OutboxConfig
	Limits   RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Matching.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GARMENTZ_APP_ENV" required:"true"`
	Port         string `envconfig:"GARMENTZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GARMENTZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GARMENTZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind        string `envconfig:"GARMENTZ_SERVICE_KIND" default:"api"`
	AutoMigrate bool   `envconfig:"GARMENTZ_AUTO_MIGRATE" default:"false"`
}

type DBConfig struct {
	DSN    string `envconfig:"GARMENTZ_DB_DSN"`
	Driver string `envconfig:"GARMENTZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GARMENTZ_DB_HOST"`
	LegacyPort     int    `envconfig:"GARMENTZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GARMENTZ_DB_USER"`
	LegacyPassword string `envconfig:"GARMENTZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"GARMENTZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"GARMENTZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GARMENTZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GARMENTZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GARMENTZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GARMENTZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GARMENTZ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GARMENTZ_REDIS_ADDR"`
	Password     string        `envconfig:"GARMENTZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"GARMENTZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GARMENTZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GARMENTZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GARMENTZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GARMENTZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GARMENTZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GARMENTZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GARMENTZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GARMENTZ_JWT_EXPIRATION_MINUTES" default:"60"`
}

// MatchingConfig tunes the supplier matching pipeline.
type MatchingConfig struct {
	TopK        int           `envconfig:"GARMENTZ_MATCHING_TOP_K" default:"5"`
	CacheTTL    time.Duration `envconfig:"GARMENTZ_MATCHING_CACHE_TTL" default:"30s"`
	StatsSource string        `envconfig:"GARMENTZ_MATCHING_STATS_SOURCE" default:"scan"`
}

// UsesAggregate reports whether supplier statistics come from the maintained aggregate.
func (m MatchingConfig) UsesAggregate() bool {
	return strings.EqualFold(strings.TrimSpace(m.StatsSource), StatsSourceAggregate)
}

func (m MatchingConfig) validate() error {
	if m.TopK <= 0 {
		return fmt.Errorf("%s must be positive", EnvMatchingTopK)
	}
	source := strings.ToLower(strings.TrimSpace(m.StatsSource))
	if source != StatsSourceScan && source != StatsSourceAggregate {
		return fmt.Errorf("%s must be %q or %q", EnvMatchingStatsSource, StatsSourceScan, StatsSourceAggregate)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GARMENTZ_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"GARMENTZ_CRON_LOCK_TTL" default:"10m"`

	OutboxRetention time.Duration `envconfig:"GARMENTZ_CRON_OUTBOX_RETENTION" default:"720h"`
}

// RateLimitConfig throttles admin write endpoints per actor. Zero disables it.
type RateLimitConfig struct {
	Window      time.Duration `envconfig:"GARMENTZ_RATE_LIMIT_WINDOW" default:"1m"`
	AdminWrites int           `envconfig:"GARMENTZ_RATE_LIMIT_ADMIN_WRITES" default:"120"`
}

type OutboxConfig struct {
	Enabled bool `envconfig:"GARMENTZ_OUTBOX_ENABLED" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
