package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "KASUWA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Paystack   PaystackConfig
	Delivery   DeliveryConfig
	Commission CommissionConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
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
	Env          string `envconfig:"KASUWA_APP_ENV" required:"true"`
	Port         string `envconfig:"KASUWA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KASUWA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KASUWA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KASUWA_DB_DSN"`
	Driver string `envconfig:"KASUWA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KASUWA_DB_HOST"`
	Port     int    `envconfig:"KASUWA_DB_PORT" default:"5432"`
	User     string `envconfig:"KASUWA_DB_USER"`
	Password string `envconfig:"KASUWA_DB_PASSWORD"`
	Name     string `envconfig:"KASUWA_DB_NAME"`
	SSLMode  string `envconfig:"KASUWA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KASUWA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KASUWA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KASUWA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KASUWA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KASUWA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KASUWA_REDIS_ADDR"`
	Password     string        `envconfig:"KASUWA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KASUWA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KASUWA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KASUWA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KASUWA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KASUWA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KASUWA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KASUWA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KASUWA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KASUWA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PaystackConfig struct {
	SecretKey       string        `envconfig:"KASUWA_PAYSTACK_SECRET_KEY" required:"true"`
	BaseURL         string        `envconfig:"KASUWA_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackBaseURL string        `envconfig:"KASUWA_PAYSTACK_CALLBACK_BASE_URL" required:"true"`
	Timeout         time.Duration `envconfig:"KASUWA_PAYSTACK_TIMEOUT" default:"30s"`
	WebhookTTL      time.Duration `envconfig:"KASUWA_PAYSTACK_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type DeliveryConfig struct {
	RatePerKm         string        `envconfig:"KASUWA_DELIVERY_RATE_PER_KM" default:"15.00"`
	DefaultDistanceKm string        `envconfig:"KASUWA_DELIVERY_DEFAULT_DISTANCE_KM" default:"5"`
	MatchRadiusKm     float64       `envconfig:"KASUWA_DELIVERY_MATCH_RADIUS_KM" default:"8.05"`
	CourierCapacity   int           `envconfig:"KASUWA_DELIVERY_COURIER_CAPACITY" default:"2"`
	LocationTTL       time.Duration `envconfig:"KASUWA_DELIVERY_LOCATION_TTL" default:"0"`
}

type CommissionConfig struct {
	RatePercent     int   `envconfig:"KASUWA_COMMISSION_RATE_PERCENT" default:"10"`
	MinAmountMinor  int64 `envconfig:"KASUWA_COMMISSION_MIN_AMOUNT_MINOR" default:"100"`
	ReferralEnabled bool  `envconfig:"KASUWA_COMMISSION_REFERRAL_ENABLED" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KASUWA_GCP_PROJECT_ID" required:"true"`
	ApplicationCredentials string `envconfig:"KASUWA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SettlementTopic        string `envconfig:"KASUWA_PUBSUB_SETTLEMENT_TOPIC" required:"true"`
	SettlementSubscription string `envconfig:"KASUWA_PUBSUB_SETTLEMENT_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"KASUWA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"KASUWA_OUTBOX_PUBLISH_POLL_INTERVAL" default:"500ms"`
	MaxAttempts    int           `envconfig:"KASUWA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"KASUWA_OUTBOX_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("KASUWA_DB_DSN is required for the sqlite driver")
	}

	missing := []string{}
	for env, value := range map[string]string{
		"KASUWA_DB_HOST": db.Host,
		"KASUWA_DB_USER": db.User,
		"KASUWA_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either KASUWA_DB_DSN or %s are required", strings.Join(missing, ", "))
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
