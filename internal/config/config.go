package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MockMode bool
	Enabled  bool
}

// StorageConfig points at a Supabase-compatible object storage endpoint.
// Screenshots land in Bucket under the payment-screenshots/ prefix.
type StorageConfig struct {
	ProjectURL     string
	ServiceRoleKey string
	Bucket         string
}

type AuthConfig struct {
	OIDCIssuer string
	SessionTTL time.Duration
}

type PaymentConfig struct {
	UPIID     string
	PayeeName string
}

func Load() *Config {
	kafkaEnabled := getEnvBool("KAFKA_ENABLED", true)
	mockMode := getEnvBool("KAFKA_MOCK_MODE", false)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "bookings_user"),
			Password:     getEnv("DB_PASSWORD", "bookings_pass"),
			Database:     getEnv("DB_NAME", "bookingsdb"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID:  getEnv("KAFKA_GROUP_ID", "booking-service-group"),
			Topic:    getEnv("KAFKA_TOPIC_BOOKING_EVENTS", "booking-events"),
			Enabled:  kafkaEnabled,
			MockMode: mockMode,
		},
		Storage: StorageConfig{
			ProjectURL:     getEnv("STORAGE_PROJECT_URL", "http://localhost:54321"),
			ServiceRoleKey: getEnv("STORAGE_SERVICE_ROLE_KEY", ""),
			Bucket:         getEnv("STORAGE_BUCKET", "payment-screenshots"),
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
			SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Payment: PaymentConfig{
			UPIID:     getEnv("UPI_ID", "irfan93940@oksbi"),
			PayeeName: getEnv("UPI_PAYEE_NAME", "Solve & Code"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
