package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Shipping     ShippingConfig
	Reconcile    ReconcileConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateProd(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateProd rejects settings that are only safe on a laptop.
func (c *Config) validateProd() error {
	if !c.App.IsProd() {
		return nil
	}
	if c.DB.IsSQLite() {
		return fmt.Errorf("sqlite is not supported when %s=%s", EnvAppEnv, c.App.Env)
	}
	for _, origin := range c.HTTP.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("wildcard CORS origin is not allowed when %s=%s", EnvAppEnv, c.App.Env)
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SHIPFEE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHIPFEE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHIPFEE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHIPFEE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"SHIPFEE_SERVICE_KIND" default:"api"`
}

// HTTPConfig covers the public surface of the API service.
type HTTPConfig struct {
	CORSOrigins []string `envconfig:"SHIPFEE_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`

	// Per-IP budget for the public calculate endpoint. A zero limit disables it.
	CalculateRateLimit  int           `envconfig:"SHIPFEE_HTTP_CALCULATE_RATE_LIMIT" default:"60"`
	CalculateRateWindow time.Duration `envconfig:"SHIPFEE_HTTP_CALCULATE_RATE_WINDOW" default:"1m"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHIPFEE_DB_DSN"`
	Driver string `envconfig:"SHIPFEE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHIPFEE_DB_HOST"`
	Port     int    `envconfig:"SHIPFEE_DB_PORT" default:"5432"`
	User     string `envconfig:"SHIPFEE_DB_USER"`
	Password string `envconfig:"SHIPFEE_DB_PASSWORD"`
	Name     string `envconfig:"SHIPFEE_DB_NAME"`
	SSLMode  string `envconfig:"SHIPFEE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHIPFEE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHIPFEE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHIPFEE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHIPFEE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHIPFEE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SHIPFEE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHIPFEE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHIPFEE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHIPFEE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHIPFEE_REDIS_WRITE_TIMEOUT" default:"5s"`

	// IdempotencyTTL bounds how long a stored response can be replayed.
	IdempotencyTTL time.Duration `envconfig:"SHIPFEE_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHIPFEE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHIPFEE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHIPFEE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHIPFEE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHIPFEE_AUTO_MIGRATE" default:"false"`
}

// ShippingConfig holds calculator constants. Decimal values are kept as
// strings and parsed on access.
type ShippingConfig struct {
	DefaultItemWeightKg string `envconfig:"SHIPFEE_SHIPPING_DEFAULT_ITEM_WEIGHT_KG" default:"0.5"`
	ReconcileTolerance  string `envconfig:"SHIPFEE_SHIPPING_RECONCILE_TOLERANCE" default:"0.01"`
	SameRegionMinDays   int    `envconfig:"SHIPFEE_SHIPPING_SAME_REGION_MIN_DAYS" default:"1"`
	SameRegionMaxDays   int    `envconfig:"SHIPFEE_SHIPPING_SAME_REGION_MAX_DAYS" default:"2"`
	OutOfRegionMinDays  int    `envconfig:"SHIPFEE_SHIPPING_OUT_OF_REGION_MIN_DAYS" default:"3"`
	OutOfRegionMaxDays  int    `envconfig:"SHIPFEE_SHIPPING_OUT_OF_REGION_MAX_DAYS" default:"5"`
}

func (s ShippingConfig) DefaultItemWeight() decimal.Decimal {
	return decimal.RequireFromString(s.DefaultItemWeightKg)
}

func (s ShippingConfig) Tolerance() decimal.Decimal {
	return decimal.RequireFromString(s.ReconcileTolerance)
}

func (s ShippingConfig) validate() error {
	weight, err := decimal.NewFromString(s.DefaultItemWeightKg)
	if err != nil || weight.IsNegative() {
		return fmt.Errorf("%s must be a non-negative decimal", EnvDefaultItemWeight)
	}
	tol, err := decimal.NewFromString(s.ReconcileTolerance)
	if err != nil || tol.IsNegative() {
		return fmt.Errorf("%s must be a non-negative decimal", EnvReconcileTolerance)
	}
	if s.SameRegionMinDays > s.SameRegionMaxDays || s.OutOfRegionMinDays > s.OutOfRegionMaxDays {
		return fmt.Errorf("delivery windows must have min <= max")
	}
	return nil
}

type ReconcileConfig struct {
	Lookback  time.Duration `envconfig:"SHIPFEE_RECONCILE_LOOKBACK" default:"168h"`
	BatchSize int           `envconfig:"SHIPFEE_RECONCILE_BATCH_SIZE" default:"100"`
	AutoFix   bool          `envconfig:"SHIPFEE_RECONCILE_AUTO_FIX" default:"false"`
	Interval  time.Duration `envconfig:"SHIPFEE_RECONCILE_INTERVAL" default:"1h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHIPFEE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SHIPFEE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHIPFEE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"SHIPFEE_PUBSUB_ORDERS_TOPIC" default:"shipfee-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHIPFEE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHIPFEE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHIPFEE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:shipfee.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
