package config

const (
	EnvPrefix = "GARMENTZ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StatsSourceScan      = "scan"
	StatsSourceAggregate = "aggregate"
)

const (
	EnvAppEnv              = "GARMENTZ_APP_ENV"
	EnvPort                = "GARMENTZ_APP_PORT"
	EnvDBDSN               = "GARMENTZ_DB_DSN"
	EnvDBHost              = "GARMENTZ_DB_HOST"
	EnvDBUser              = "GARMENTZ_DB_USER"
	EnvDBName              = "GARMENTZ_DB_NAME"
	EnvRedisURL            = "GARMENTZ_REDIS_URL"
	EnvJWTSecret           = "GARMENTZ_JWT_SECRET"
	EnvJWTIssuer           = "GARMENTZ_JWT_ISSUER"
	EnvMatchingTopK        = "GARMENTZ_MATCHING_TOP_K"
	EnvMatchingCacheTTL    = "GARMENTZ_MATCHING_CACHE_TTL"
	EnvMatchingStatsSource = "GARMENTZ_MATCHING_STATS_SOURCE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
