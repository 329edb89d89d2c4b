package config

const EnvPrefix = "TMS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "TMS_APP_ENV"
	EnvPort        = "TMS_APP_PORT"
	EnvLogLevel    = "TMS_LOG_LEVEL"
	EnvCORSOrigins = "TMS_CORS_ORIGINS"

	EnvDBDSN      = "TMS_DB_DSN"
	EnvDBHost     = "TMS_DB_HOST"
	EnvDBPort     = "TMS_DB_PORT"
	EnvDBUser     = "TMS_DB_USER"
	EnvDBPassword = "TMS_DB_PASSWORD"
	EnvDBName     = "TMS_DB_NAME"
	EnvDBSSLMode  = "TMS_DB_SSLMODE"

	EnvRedisURL = "TMS_REDIS_URL"

	EnvUseSQLite   = "TMS_USE_SQLITE"
	EnvSQLitePath  = "TMS_SQLITE_PATH"
	EnvAutoMigrate = "TMS_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
