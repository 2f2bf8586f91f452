package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Lock     LockConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Tracing  TracingConfig
	Stock    StockConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type StorageConfig struct {
	Driver string // postgres or memory
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	Migrate         bool
}

type LockConfig struct {
	Backend      string // redis or local
	TTLSeconds   int
	Retries      int
	RetryDelayMS int
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	ItemTTLSeconds int
}

type KafkaConfig struct {
	Brokers         []string
	StockTopic      string
	DeliveriesTopic string
	GroupID         string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type TracingConfig struct {
	Endpoint   string
	AuthHeader string
}

type StockConfig struct {
	AllowInactiveMovement bool
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "development"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
			HTTPPort: getEnv("HTTP_PORT", ":9092"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "inventory"),
			Password:        getEnv("POSTGRES_PASSWORD", "inventory"),
			DBName:          getEnv("POSTGRES_DB", "school_inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			Migrate:         getEnvBool("POSTGRES_MIGRATE", true),
		},
		Lock: LockConfig{
			Backend:      strings.ToLower(getEnv("LOCK_BACKEND", "redis")),
			TTLSeconds:   getEnvInt("LOCK_TTL_SECONDS", 5),
			Retries:      getEnvInt("LOCK_RETRIES", 50),
			RetryDelayMS: getEnvInt("LOCK_RETRY_DELAY_MS", 20),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			ItemTTLSeconds: getEnvInt("CACHE_ITEM_TTL_SECONDS", 300),
		},
		Kafka: KafkaConfig{
			Brokers:         getEnvSlice("KAFKA_BROKERS", nil),
			StockTopic:      getEnv("KAFKA_TOPIC_STOCK_EVENTS", "inventory.stock-events"),
			DeliveriesTopic: getEnv("KAFKA_TOPIC_DELIVERIES", "inventory.supplier-deliveries"),
			GroupID:         getEnv("KAFKA_GROUP_ID", "school-inventory"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", nil),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_INDEX", "items"),
		},
		Tracing: TracingConfig{
			Endpoint:   getEnv("OTEL_ENDPOINT", ""),
			AuthHeader: getEnv("OTEL_AUTH_HEADER", ""),
		},
		Stock: StockConfig{
			AllowInactiveMovement: getEnvBool("ALLOW_INACTIVE_STOCK_MOVEMENT", false),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSlice splits a comma separated list, dropping blanks. An empty value yields nil.
func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
