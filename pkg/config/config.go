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
	Cart         CartConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
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
	Env          string `envconfig:"FLOWMAZON_APP_ENV" required:"true"`
	Port         string `envconfig:"FLOWMAZON_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"FLOWMAZON_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"FLOWMAZON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLOWMAZON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLOWMAZON_DB_DSN"`
	Driver string `envconfig:"FLOWMAZON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLOWMAZON_DB_HOST"`
	LegacyPort     int    `envconfig:"FLOWMAZON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLOWMAZON_DB_USER"`
	LegacyPassword string `envconfig:"FLOWMAZON_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLOWMAZON_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLOWMAZON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLOWMAZON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLOWMAZON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLOWMAZON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLOWMAZON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLOWMAZON_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLOWMAZON_REDIS_ADDR"`
	Password     string        `envconfig:"FLOWMAZON_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLOWMAZON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLOWMAZON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLOWMAZON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLOWMAZON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLOWMAZON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLOWMAZON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FLOWMAZON_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FLOWMAZON_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FLOWMAZON_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"FLOWMAZON_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FLOWMAZON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FLOWMAZON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FLOWMAZON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FLOWMAZON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FLOWMAZON_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	CookieName   string        `envconfig:"FLOWMAZON_CART_COOKIE_NAME" default:"flowmazon_cart"`
	CookieMaxAge time.Duration `envconfig:"FLOWMAZON_CART_COOKIE_MAX_AGE" default:"720h"`
	CookieSecure bool          `envconfig:"FLOWMAZON_CART_COOKIE_SECURE" default:"true"`
}

type CheckoutConfig struct {
	Currency       string `envconfig:"FLOWMAZON_CHECKOUT_CURRENCY" default:"usd"`
	MinChargeCents int64  `envconfig:"FLOWMAZON_CHECKOUT_MIN_CHARGE_CENTS" default:"50"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"FLOWMAZON_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"FLOWMAZON_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"FLOWMAZON_STRIPE_ENV" default:"test"`
	EventTTL      time.Duration `envconfig:"FLOWMAZON_STRIPE_EVENT_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLOWMAZON_AUTO_MIGRATE" default:"false"`
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
