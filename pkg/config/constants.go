package config

// EnvPrefix is intentionally empty: every field names its variable in full
// through its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "FARMLOG_APP_ENV"
	EnvPort   = "FARMLOG_APP_PORT"

	EnvDBDSN  = "FARMLOG_DB_DSN"
	EnvDBHost = "FARMLOG_DB_HOST"
	EnvDBUser = "FARMLOG_DB_USER"
	EnvDBName = "FARMLOG_DB_NAME"

	EnvRedisURL = "FARMLOG_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
