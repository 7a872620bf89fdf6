package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
	ProviderService ServiceConfig
	BookingService  ServiceConfig
	AuthService     ServiceConfig
	Pricing         PricingConfig
	Feeds           FeedsConfig
	Features        FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	RequestsTopic string
	PrefillTopic  string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PricingConfig struct {
	TaxRate float64
}

type FeedsConfig struct {
	RefreshInterval time.Duration
}

type FeatureFlags struct {
	EnableSubmitEvents    bool
	EnablePrefillConsumer bool
	EnableFeedCache       bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "motohub"),
			Password:     getEnvString("DB_PASSWORD", "motohub"),
			Name:         getEnvString("DB_NAME", "motohub_carts"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 0)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnvString("KAFKA_BROKERS", "localhost:9092"), ","),
			RequestsTopic: getEnvString("KAFKA_REQUESTS_TOPIC", "service-requests"),
			PrefillTopic:  getEnvString("KAFKA_PREFILL_TOPIC", "cart-prefill"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "cart-service"),
		},
		ProviderService: ServiceConfig{
			BaseURL: getEnvString("PROVIDER_SERVICE_URL", "http://localhost:8085"),
			Timeout: time.Duration(getEnvInt("PROVIDER_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		BookingService: ServiceConfig{
			BaseURL: getEnvString("BOOKING_SERVICE_URL", "http://localhost:8086"),
			Timeout: time.Duration(getEnvInt("BOOKING_SERVICE_TIMEOUT", 30)) * time.Second,
		},
		AuthService: ServiceConfig{
			BaseURL: getEnvString("AUTH_SERVICE_URL", "http://localhost:8087"),
			Timeout: time.Duration(getEnvInt("AUTH_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		Pricing: PricingConfig{
			TaxRate: getEnvFloat("TAX_RATE", 0.05),
		},
		Feeds: FeedsConfig{
			RefreshInterval: time.Duration(getEnvInt("FEED_REFRESH_INTERVAL", 30)) * time.Second,
		},
		Features: FeatureFlags{
			EnableSubmitEvents:    getEnvBool("ENABLE_SUBMIT_EVENTS", true),
			EnablePrefillConsumer: getEnvBool("ENABLE_PREFILL_CONSUMER", true),
			EnableFeedCache:       getEnvBool("ENABLE_FEED_CACHE", true),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
