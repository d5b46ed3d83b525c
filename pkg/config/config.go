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
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Settings     SettingsConfig
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
	Env          string `envconfig:"ADEGA_APP_ENV" required:"true"`
	Port         string `envconfig:"ADEGA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ADEGA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ADEGA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ADEGA_DB_DSN"`
	Driver string `envconfig:"ADEGA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ADEGA_DB_HOST"`
	LegacyPort     int    `envconfig:"ADEGA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ADEGA_DB_USER"`
	LegacyPassword string `envconfig:"ADEGA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ADEGA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ADEGA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ADEGA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ADEGA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ADEGA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ADEGA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ADEGA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ADEGA_REDIS_ADDR"`
	Password     string        `envconfig:"ADEGA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ADEGA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ADEGA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ADEGA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ADEGA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ADEGA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ADEGA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ADEGA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ADEGA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ADEGA_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ADEGA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ADEGA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ADEGA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ADEGA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ADEGA_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	// DeliveryFeeFallback is used when the store settings row is missing.
	DeliveryFeeFallback string        `envconfig:"ADEGA_CHECKOUT_DELIVERY_FEE_FALLBACK" default:"5.00"`
	IdempotencyTTL      time.Duration `envconfig:"ADEGA_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `envconfig:"ADEGA_SETTINGS_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ADEGA_AUTO_MIGRATE" default:"false"`
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
