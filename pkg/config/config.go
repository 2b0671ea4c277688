package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "tradeyard"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRADEYARD_DB_DSN"
	EnvDBHost = "TRADEYARD_DB_HOST"
	EnvDBUser = "TRADEYARD_DB_USER"
	EnvDBName = "TRADEYARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Settlement   SettlementConfig
	PubSub       PubSubConfig
	GCP          GCPConfig
	Outbox       OutboxConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Settlement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRADEYARD_APP_ENV" required:"true"`
	Port         string `envconfig:"TRADEYARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRADEYARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRADEYARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRADEYARD_DB_DSN"`
	Driver string `envconfig:"TRADEYARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRADEYARD_DB_HOST"`
	LegacyPort     int    `envconfig:"TRADEYARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRADEYARD_DB_USER"`
	LegacyPassword string `envconfig:"TRADEYARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRADEYARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRADEYARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRADEYARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRADEYARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRADEYARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRADEYARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRADEYARD_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"TRADEYARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRADEYARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRADEYARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRADEYARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRADEYARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRADEYARD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRADEYARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRADEYARD_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRADEYARD_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig throttles the money-movement endpoints. Zero values
// disable the corresponding limiter.
type RateLimitConfig struct {
	MoneyWindow    time.Duration `envconfig:"TRADEYARD_RATE_LIMIT_MONEY_WINDOW" default:"1m"`
	MoneyIPLimit   int           `envconfig:"TRADEYARD_RATE_LIMIT_MONEY_IP_LIMIT" default:"30"`
	MoneyUserLimit int           `envconfig:"TRADEYARD_RATE_LIMIT_MONEY_USER_LIMIT" default:"10"`
}

// SettlementConfig tunes the money-movement rules.
type SettlementConfig struct {
	// WalletPointsPerUnit converts refunded currency into wallet points.
	WalletPointsPerUnit string `envconfig:"TRADEYARD_WALLET_POINTS_PER_UNIT" default:"1"`
	// DefaultCommissionRate applies when a shop has no earnings history yet.
	DefaultCommissionRate string `envconfig:"TRADEYARD_DEFAULT_COMMISSION_RATE" default:"10"`

	pointsPerUnit decimal.Decimal
	defaultRate   decimal.Decimal
}

func (s *SettlementConfig) validate() error {
	points, err := decimal.NewFromString(strings.TrimSpace(s.WalletPointsPerUnit))
	if err != nil || points.IsNegative() {
		return fmt.Errorf("invalid wallet points per unit %q", s.WalletPointsPerUnit)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(s.DefaultCommissionRate))
	if err != nil || rate.IsNegative() {
		return fmt.Errorf("invalid default commission rate %q", s.DefaultCommissionRate)
	}
	s.pointsPerUnit = points
	s.defaultRate = rate
	return nil
}

// PointsPerUnit returns the parsed wallet conversion ratio.
func (s SettlementConfig) PointsPerUnit() decimal.Decimal {
	if s.pointsPerUnit.IsZero() && s.WalletPointsPerUnit != "0" {
		if v, err := decimal.NewFromString(s.WalletPointsPerUnit); err == nil {
			return v
		}
	}
	return s.pointsPerUnit
}

// DefaultRate returns the parsed fallback commission rate.
func (s SettlementConfig) DefaultRate() decimal.Decimal {
	if s.defaultRate.IsZero() && s.DefaultCommissionRate != "0" {
		if v, err := decimal.NewFromString(s.DefaultCommissionRate); err == nil {
			return v
		}
	}
	return s.defaultRate
}

type GCPConfig struct {
	ProjectID       string `envconfig:"TRADEYARD_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"TRADEYARD_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	SettlementTopic        string `envconfig:"TRADEYARD_PUBSUB_SETTLEMENT_TOPIC" default:"ty-settlement-events"`
	SettlementSubscription string `envconfig:"TRADEYARD_PUBSUB_SETTLEMENT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRADEYARD_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRADEYARD_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRADEYARD_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
