package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SMTP          SMTPConfig
	Reminder      ReminderConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reminder.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WV_APP_ENV" required:"true"`
	Port         string `envconfig:"WV_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WV_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WV_DB_DSN"`
	Driver string `envconfig:"WV_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WV_DB_HOST"`
	LegacyPort     int    `envconfig:"WV_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WV_DB_USER"`
	LegacyPassword string `envconfig:"WV_DB_PASSWORD"`
	LegacyName     string `envconfig:"WV_DB_NAME"`
	LegacySSLMode  string `envconfig:"WV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WV_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WV_REDIS_ADDR"`
	Password     string        `envconfig:"WV_REDIS_PASSWORD"`
	DB           int           `envconfig:"WV_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WV_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WV_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WV_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WV_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WV_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WV_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WV_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WV_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WV_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WV_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WV_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WV_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WV_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WV_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WV_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WV_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WV_AUTO_MIGRATE" default:"false"`
}

type SMTPConfig struct {
	Host     string `envconfig:"WV_SMTP_HOST"`
	Port     int    `envconfig:"WV_SMTP_PORT" default:"587"`
	Username string `envconfig:"WV_SMTP_USERNAME"`
	Password string `envconfig:"WV_SMTP_PASSWORD"`
	From     string `envconfig:"WV_SMTP_FROM"`
}

// ReminderConfig drives the daily expiry scan. Timezone picks which
// calendar day counts as "today"; RunAt is the local wall-clock time the
// scan is aligned to.
type ReminderConfig struct {
	Timezone          string        `envconfig:"WV_REMINDER_TIMEZONE" default:"UTC"`
	RunAt             string        `envconfig:"WV_REMINDER_RUN_AT" default:"07:00"`
	SuppressionWindow time.Duration `envconfig:"WV_REMINDER_SUPPRESSION_WINDOW" default:"12h"`
	ScanInterval      time.Duration `envconfig:"WV_REMINDER_SCAN_INTERVAL" default:"24h"`
}

// Location resolves the configured reference timezone.
func (r ReminderConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(r.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

func (r ReminderConfig) validate() error {
	if _, err := r.Location(); err != nil {
		return err
	}
	if r.RunAt != "" {
		if _, err := time.Parse("15:04", r.RunAt); err != nil {
			return fmt.Errorf("invalid reminder run_at %q: %w", r.RunAt, err)
		}
	}
	if r.SuppressionWindow < 0 {
		return fmt.Errorf("reminder suppression window must not be negative")
	}
	return nil
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
