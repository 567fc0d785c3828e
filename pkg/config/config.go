package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Remote       RemoteConfig
	Realtime     RealtimeConfig
	Reservations ReservationsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig points at the embedded cart store. The store is a local sqlite
// file; it holds only client-staged state, never server-committed rows.
type DBConfig struct {
	Path            string        `envconfig:"STOCKDESK_DB_PATH" default:"stockdesk.db"`
	BusyTimeout     time.Duration `envconfig:"STOCKDESK_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"STOCKDESK_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"STOCKDESK_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKDESK_REDIS_URL"`
	Address      string        `envconfig:"STOCKDESK_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RemoteConfig locates the authoritative reservation server.
type RemoteConfig struct {
	BaseURL   string        `envconfig:"STOCKDESK_REMOTE_BASE_URL" required:"true"`
	APIToken  string        `envconfig:"STOCKDESK_REMOTE_API_TOKEN"`
	Timeout   time.Duration `envconfig:"STOCKDESK_REMOTE_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"STOCKDESK_REMOTE_USER_AGENT" default:"stockdesk-backend"`
}

type RealtimeConfig struct {
	CreatedChannel string `envconfig:"STOCKDESK_REALTIME_CREATED_CHANNEL" default:"reservation.created"`
	UpdatedChannel string `envconfig:"STOCKDESK_REALTIME_UPDATED_CHANNEL" default:"reservation.updated"`
}

type ReservationsConfig struct {
	SubmitGuardTTL time.Duration `envconfig:"STOCKDESK_SUBMIT_GUARD_TTL" default:"30s"`
	NotesMaxLength int           `envconfig:"STOCKDESK_NOTES_MAX_LENGTH" default:"250"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKDESK_AUTO_MIGRATE" default:"false"`
}
