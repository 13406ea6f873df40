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
	EnvPrefix = "TAGANDTAKE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TAGANDTAKE_DB_DSN"
	EnvDBHost = "TAGANDTAKE_DB_HOST"
	EnvDBUser = "TAGANDTAKE_DB_USER"
	EnvDBName = "TAGANDTAKE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	Stripe  StripeConfig
	Pricing PricingConfig
	Recall  RecallConfig
	Cron    CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TAGANDTAKE_APP_ENV" required:"true"`
	Port         string `envconfig:"TAGANDTAKE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TAGANDTAKE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAGANDTAKE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"TAGANDTAKE_APP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TAGANDTAKE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TAGANDTAKE_DB_DSN"`
	Driver string `envconfig:"TAGANDTAKE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TAGANDTAKE_DB_HOST"`
	LegacyPort     int    `envconfig:"TAGANDTAKE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TAGANDTAKE_DB_USER"`
	LegacyPassword string `envconfig:"TAGANDTAKE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TAGANDTAKE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TAGANDTAKE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TAGANDTAKE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TAGANDTAKE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TAGANDTAKE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TAGANDTAKE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TAGANDTAKE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TAGANDTAKE_REDIS_ADDR"`
	Password     string        `envconfig:"TAGANDTAKE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TAGANDTAKE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TAGANDTAKE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TAGANDTAKE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TAGANDTAKE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TAGANDTAKE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TAGANDTAKE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StripeConfig carries credentials for both webhook endpoints: the platform
// endpoint and the connected-account endpoint have separate signing secrets.
type StripeConfig struct {
	APIKey                 string        `envconfig:"TAGANDTAKE_STRIPE_API_KEY"`
	PlatformWebhookSecret  string        `envconfig:"TAGANDTAKE_STRIPE_PLATFORM_WEBHOOK_SECRET"`
	ConnectedWebhookSecret string        `envconfig:"TAGANDTAKE_STRIPE_CONNECTED_WEBHOOK_SECRET"`
	Env                    string        `envconfig:"TAGANDTAKE_STRIPE_ENV" default:"test"`
	CallTimeout            time.Duration `envconfig:"TAGANDTAKE_STRIPE_CALL_TIMEOUT" default:"10s"`
	WebhookEventTTL        time.Duration `envconfig:"TAGANDTAKE_STRIPE_WEBHOOK_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PricingConfig holds the platform-wide fee parameters fed into the pricing
// engine. Store commission rates live on the store row, not here.
type PricingConfig struct {
	PlatformCommissionRate decimal.Decimal `envconfig:"TAGANDTAKE_PRICING_PLATFORM_COMMISSION_RATE" default:"0.05"`
	PlatformFlatFee        decimal.Decimal `envconfig:"TAGANDTAKE_PRICING_PLATFORM_FLAT_FEE" default:"1.00"`
}

type RecallConfig struct {
	CollectionWindowDays int             `envconfig:"TAGANDTAKE_RECALL_COLLECTION_WINDOW_DAYS" default:"21"`
	FallbackDeadlineHour int             `envconfig:"TAGANDTAKE_RECALL_FALLBACK_DEADLINE_HOUR" default:"17"`
	StorageFee           decimal.Decimal `envconfig:"TAGANDTAKE_RECALL_STORAGE_FEE" default:"1.00"`
	StorageFeeInterval   time.Duration   `envconfig:"TAGANDTAKE_RECALL_STORAGE_FEE_INTERVAL" default:"168h"`
	StorageFeeGraceDays  int             `envconfig:"TAGANDTAKE_RECALL_STORAGE_FEE_GRACE_DAYS" default:"7"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TAGANDTAKE_CRON_INTERVAL" default:"1h"`

	TransferRetryBase        time.Duration `envconfig:"TAGANDTAKE_TRANSFER_RETRY_BASE" default:"1h"`
	TransferRetryCap         time.Duration `envconfig:"TAGANDTAKE_TRANSFER_RETRY_CAP" default:"24h"`
	TransferRetryMaxAttempts int           `envconfig:"TAGANDTAKE_TRANSFER_RETRY_MAX_ATTEMPTS" default:"10"`
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
