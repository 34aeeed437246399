package config

const (
	// EnvPrefix is empty because every variable carries an explicit WV_
	// prefixed envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "WV_APP_ENV"
	EnvPort                   = "WV_APP_PORT"
	EnvDBDSN                  = "WV_DB_DSN"
	EnvDBHost                 = "WV_DB_HOST"
	EnvDBUser                 = "WV_DB_USER"
	EnvDBName                 = "WV_DB_NAME"
	EnvRedisURL               = "WV_REDIS_URL"
	EnvJWTSecret              = "WV_JWT_SECRET"
	EnvJWTIssuer              = "WV_JWT_ISSUER"
	EnvJWTExpMins             = "WV_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WV_REFRESH_TOKEN_TTL_MINUTES"
	EnvSMTPHost               = "WV_SMTP_HOST"
	EnvSMTPFrom               = "WV_SMTP_FROM"
	EnvReminderTimezone       = "WV_REMINDER_TIMEZONE"
	EnvReminderRunAt          = "WV_REMINDER_RUN_AT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
