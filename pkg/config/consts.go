package config

const (
	// EnvPrefix scopes every environment variable this service reads.
	EnvPrefix = "FLOWMAZON"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "FLOWMAZON_APP_ENV"
	EnvPort       = "FLOWMAZON_APP_PORT"
	EnvDBDSN      = "FLOWMAZON_DB_DSN"
	EnvDBHost     = "FLOWMAZON_DB_HOST"
	EnvDBUser     = "FLOWMAZON_DB_USER"
	EnvDBName     = "FLOWMAZON_DB_NAME"
	EnvRedisURL   = "FLOWMAZON_REDIS_URL"
	EnvJWTSecret  = "FLOWMAZON_JWT_SECRET"
	EnvJWTIssuer  = "FLOWMAZON_JWT_ISSUER"
	EnvJWTExpMins = "FLOWMAZON_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
