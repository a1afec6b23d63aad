package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Kafka Kafka `validate:"required"`

	Postgres Postgres `validate:"required"`

	Cache Cache `validate:"required"`

	Sync Sync `validate:"required"`

	Identity Identity `validate:"required"`
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type Kafka struct {
	GroupID string   `validate:"required"`
	Brokers []string `validate:"required,min=1,dive,hostname_port"`
	Topic   string   `validate:"required"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	Migrate bool

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

// Cache — параметры локального файлового кеша коллекций.
type Cache struct {
	Dir    string        `validate:"required"`
	Prefix string        `validate:"required"`
	TTL    time.Duration `validate:"gt=0"`
}

// Sync — параметры слоя синхронизации: постраничная подгрузка,
// окно тишины поиска, бюджет ретраев очереди и probe сети.
type Sync struct {
	PageSize   uint64        `validate:"gte=1"`
	Debounce   time.Duration `validate:"gt=0"`
	MaxRetries int           `validate:"gte=1"`

	RetryInitialDelay time.Duration `validate:"gt=0"`
	RetryMaxDelay     time.Duration `validate:"gte=0"`
	RetryMultiplier   float64       `validate:"gte=1"`

	ProbeURL      string        `validate:"required,url"`
	ProbeInterval time.Duration `validate:"gt=0"`
	ProbeTimeout  time.Duration `validate:"gt=0"`
}

type Identity struct {
	JWTSecret string `validate:"required"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Kafka: Kafka{
			GroupID: env("KAFKA_GROUP_ID", "order-sync"),
			Topic:   env("KAFKA_TOPIC", "order-changes"),
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "orders"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			Migrate: envBool("POSTGRES_MIGRATE", true),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Cache: Cache{
			Dir:    env("CACHE_DIR", os.TempDir()),
			Prefix: env("CACHE_PREFIX", "ordersync_"),
			TTL:    envDuration("CACHE_TTL", 24*time.Hour),
		},

		Sync: Sync{
			PageSize:   uint64(envInt("SYNC_PAGE_SIZE", 20)),
			Debounce:   envDuration("SYNC_SEARCH_DEBOUNCE", 600*time.Millisecond),
			MaxRetries: envInt("SYNC_MAX_RETRIES", 5),

			RetryInitialDelay: envDuration("SYNC_RETRY_INITIAL_DELAY", 500*time.Millisecond),
			RetryMaxDelay:     envDuration("SYNC_RETRY_MAX_DELAY", 30*time.Second),
			RetryMultiplier:   2,

			ProbeURL:      env("SYNC_PROBE_URL", "http://localhost:8080/health"),
			ProbeInterval: envDuration("SYNC_PROBE_INTERVAL", 15*time.Second),
			ProbeTimeout:  envDuration("SYNC_PROBE_TIMEOUT", 3*time.Second),
		},

		Identity: Identity{
			JWTSecret: env("JWT_SECRET", ""),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
