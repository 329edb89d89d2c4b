package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Database returns the connection settings to open, pointing at the sqlite
// file when the sqlite flag is set.
func (c *Config) Database() DBConfig {
	if !c.FeatureFlags.UseSQLite {
		return c.DB
	}
	out := c.DB
	out.Driver = "sqlite"
	out.DSN = c.FeatureFlags.SQLitePath
	return out
}

type AppConfig struct {
	Env          string   `envconfig:"TMS_APP_ENV" required:"true"`
	Port         string   `envconfig:"TMS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"TMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"TMS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"TMS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TMS_DB_DSN"`
	Driver string `envconfig:"TMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TMS_DB_HOST"`
	LegacyPort     int    `envconfig:"TMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TMS_DB_USER"`
	LegacyPassword string `envconfig:"TMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address disables idempotent replays.
type RedisConfig struct {
	URL          string        `envconfig:"TMS_REDIS_URL"`
	Address      string        `envconfig:"TMS_REDIS_ADDR"`
	Password     string        `envconfig:"TMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite      bool          `envconfig:"TMS_USE_SQLITE" default:"false"`
	SQLitePath     string        `envconfig:"TMS_SQLITE_PATH" default:"tms.db"`
	AutoMigrate    bool          `envconfig:"TMS_AUTO_MIGRATE" default:"false"`
	IdempotencyTTL time.Duration `envconfig:"TMS_IDEMPOTENCY_TTL" default:"24h"`
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
