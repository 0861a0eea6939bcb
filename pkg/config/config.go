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
	JWT          JWTConfig
	Paystack     PaystackConfig
	Cart         CartConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"ARTMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"ARTMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARTMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARTMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARTMARKET_DB_DSN"`
	Driver string `envconfig:"ARTMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARTMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"ARTMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARTMARKET_DB_USER"`
	LegacyPassword string `envconfig:"ARTMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARTMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARTMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARTMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARTMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARTMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARTMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARTMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARTMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"ARTMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARTMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARTMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARTMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARTMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARTMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARTMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARTMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARTMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARTMARKET_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PaystackConfig holds the credentials and endpoints for the payment gateway.
type PaystackConfig struct {
	SecretKey       string        `envconfig:"ARTMARKET_PAYSTACK_SECRET_KEY" required:"true"`
	BaseURL         string        `envconfig:"ARTMARKET_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL     string        `envconfig:"ARTMARKET_PAYSTACK_CALLBACK_URL" required:"true"`
	Timeout         time.Duration `envconfig:"ARTMARKET_PAYSTACK_TIMEOUT" default:"10s"`
	ReferencePrefix string        `envconfig:"ARTMARKET_PAYSTACK_REFERENCE_PREFIX" default:"Tiimbooktu"`
}

type CartConfig struct {
	CacheTTL time.Duration `envconfig:"ARTMARKET_CART_CACHE_TTL" default:"10m"`
}

// WebhookConfig tunes the deferred finalization worker.
type WebhookConfig struct {
	FinalizerQueueSize int           `envconfig:"ARTMARKET_WEBHOOK_FINALIZER_QUEUE" default:"64"`
	FinalizerTimeout   time.Duration `envconfig:"ARTMARKET_WEBHOOK_FINALIZER_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ARTMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ARTMARKET_AUTO_MIGRATE" default:"false"`
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
